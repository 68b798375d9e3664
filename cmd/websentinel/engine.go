package main

import (
	"github.com/AdarshSingh-ASR/WebSentinel/internal/agent"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/narrative"
)

// newEngine picks the agent engine. The mock engine fabricates a short
// successful run, which is useful for demos and local API testing.
func newEngine(mock bool, modelID string) agent.Engine {
	if mock {
		return &agent.MockEngine{}
	}
	return agent.NewCopilotEngine(modelID, nil)
}

// newPlanner picks the analysis planner. Mock runs skip the LLM and rely on
// the deterministic fallback narrative.
func newPlanner(mock bool, modelID string) narrative.Planner {
	if mock {
		return nil
	}
	return narrative.NewCopilotPlanner(modelID)
}
