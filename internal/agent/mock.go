package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/thoughtlog"
)

// MockEngine fabricates a plausible trace without touching a browser or an
// LLM. It is used by tests and by dry runs.
type MockEngine struct {
	// FailWith, when non-empty, makes every Execute report an inline failure.
	FailWith string
}

func (e *MockEngine) Initialize(ctx context.Context) error { return nil }

func (e *MockEngine) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to MockEngine.Execute")
	}

	thoughts := req.Thoughts
	if thoughts == nil {
		thoughts = thoughtlog.NopLogger{}
	}

	if e.FailWith != "" {
		_ = thoughts.Log(thoughtlog.TypeError, e.FailWith)
		return &Response{
			Steps:    nil,
			Success:  false,
			ErrorMsg: e.FailWith,
		}, nil
	}

	targetURL := "https://example.com"

	_ = thoughts.LogAction("Navigating to the target page")
	_ = thoughts.LogObservation("Page loaded with expected content")
	_ = thoughts.LogDecision("Task goal reached, finishing up")
	thoughts.CountScreenshot()

	start := time.Now()
	steps := []models.RawStep{
		map[string]any{
			"model_output": map[string]any{
				"action": []any{
					map[string]any{"go_to_url": map[string]any{"url": targetURL}},
				},
			},
			"result": []any{
				map[string]any{
					"extracted_content": "Navigated to " + targetURL,
					"is_done":           false,
					"success":           true,
				},
			},
		},
		map[string]any{
			"model_output": map[string]any{
				"action": []any{
					map[string]any{"take_screenshot_now": map[string]any{"description": "final state"}},
				},
			},
			"result": []any{
				map[string]any{
					"extracted_content": "Screenshot captured",
					"is_done":           false,
					"success":           true,
				},
			},
		},
		map[string]any{
			"model_output": map[string]any{
				"action": []any{
					map[string]any{"done": map[string]any{"text": "Task completed", "success": true}},
				},
			},
			"result": []any{
				map[string]any{
					"extracted_content": "Task completed",
					"is_done":           true,
					"success":           true,
				},
			},
		},
	}

	return &Response{
		Steps:       steps,
		FinalOutput: "Task completed",
		Success:     true,
		DurationMs:  time.Since(start).Milliseconds(),
	}, nil
}

// mockPNG is just a PNG signature, enough to exercise the screenshot
// pipeline without a real image.
var mockPNG = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func (e *MockEngine) CaptureScreenshot(ctx context.Context, taskID string) ([]byte, error) {
	return mockPNG, nil
}

func (e *MockEngine) Shutdown(ctx context.Context) error { return nil }

var _ Engine = (*MockEngine)(nil)
