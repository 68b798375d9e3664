// Package narrative turns a structured compliance report into prose. The
// preferred path is an LLM-backed planning call; any failure there falls
// back to a deterministic template, so callers always get a narrative.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"sync"

	copilot "github.com/github/copilot-sdk/go"
)

// Planner produces an opaque response for an analysis prompt. The response
// shape is not firmly specified by the backing library, so consumers must
// run it through the extraction cascade.
type Planner interface {
	Plan(ctx context.Context, prompt string) (any, error)
}

// CopilotPlanner answers analysis prompts through a Copilot session.
type CopilotPlanner struct {
	client    *copilot.Client
	modelID   string
	startOnce sync.Once
}

// NewCopilotPlanner creates a planner. modelID may be blank.
func NewCopilotPlanner(modelID string) *CopilotPlanner {
	client := copilot.NewClient(&copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	})
	return &CopilotPlanner{client: client, modelID: modelID}
}

// Plan sends the prompt through a fresh session and returns the collected
// assistant text wrapped in the shape the extraction cascade probes first.
func (p *CopilotPlanner) Plan(ctx context.Context, prompt string) (any, error) {
	var startErr error
	p.startOnce.Do(func() {
		startErr = p.client.Start(ctx)
	})
	if startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", startErr)
	}

	session, err := p.client.CreateSession(ctx, &copilot.SessionConfig{
		Model: p.modelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	var parts []string
	unsubscribe := session.On(func(event copilot.SessionEvent) {
		switch event.Type {
		case copilot.AssistantMessage, copilot.AssistantMessageDelta:
			if event.Data.Content != nil {
				parts = append(parts, *event.Data.Content)
			}
		}
	})
	defer unsubscribe()

	if _, err := session.SendAndWait(ctx, copilot.MessageOptions{Prompt: prompt}); err != nil {
		return nil, fmt.Errorf("analysis prompt failed: %w", err)
	}

	return map[string]any{
		"outputs": map[string]any{
			"final_output": map[string]any{"value": strings.Join(parts, "")},
		},
	}, nil
}

// Close stops the underlying client.
func (p *CopilotPlanner) Close() error {
	return p.client.Stop()
}

var _ Planner = (*CopilotPlanner)(nil)
