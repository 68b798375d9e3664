package trace

import (
	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// ApportionThoughts attaches free-text agent thoughts to normalized steps.
//
// Correlation is positional, not causal: the thought list is divided across
// steps by count, with a two-entry overlap window, so a step's attached
// thoughts are a best guess at what the agent was thinking around that
// point. The Approximate flag on the result records exactly that. Thoughts
// embedded directly in a step's log_* actions are exact and are folded in
// on top.
func ApportionThoughts(steps []models.NormalizedStep, thoughts []models.Thought) {
	for i := range steps {
		step := &steps[i]
		st := &models.StepThoughts{
			Actions:      []string{},
			Observations: []string{},
			Decisions:    []string{},
		}

		if len(thoughts) > 0 {
			// The mapping is a guess even when this step's window comes up
			// empty, so the flag tracks the attempt, not the yield.
			st.Approximate = true

			per := len(thoughts) / step.StepNumber
			if per < 1 {
				per = 1
			}
			start := (step.StepNumber - 1) * per
			end := start + per + 2
			if end > len(thoughts) {
				end = len(thoughts)
			}
			if start < len(thoughts) {
				for _, th := range thoughts[start:end] {
					switch th.Type {
					case "action":
						st.Actions = append(st.Actions, th.Message)
					case "observation":
						st.Observations = append(st.Observations, th.Message)
					case "decision":
						st.Decisions = append(st.Decisions, th.Message)
					}
				}
			}
		}

		for _, a := range step.Actions {
			message, _ := a.Details["message"].(string)
			if message == "" {
				continue
			}
			switch a.Type {
			case models.ActionLogAction:
				st.Actions = append(st.Actions, message)
			case models.ActionLogObservation:
				st.Observations = append(st.Observations, message)
			case models.ActionLogDecision:
				st.Decisions = append(st.Decisions, message)
			}
		}

		switch {
		case len(st.Actions) > 0:
			step.ActionSummary = st.Actions[0]
		case len(st.Decisions) > 0:
			step.ActionSummary = "Decision: " + st.Decisions[0]
		case len(st.Observations) > 0:
			step.ActionSummary = "Observation: " + st.Observations[0]
		}

		step.Thoughts = st
	}
}
