package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotEngine runs browser-automation tasks through Copilot sessions.
type CopilotEngine struct {
	defaultModelID string
	client         copilotClient
	startOnce      sync.Once
}

// CopilotEngineOptions customizes engine construction, mainly for tests.
type CopilotEngineOptions struct {
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotEngine creates an engine. defaultModelID may be blank, in which
// case the CLI chooses its own fallback model.
func NewCopilotEngine(defaultModelID string, options *CopilotEngineOptions) *CopilotEngine {
	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	var client copilotClient
	if options == nil || options.NewCopilotClient == nil {
		client = newCopilotClient(copilotOptions)
	} else {
		client = options.NewCopilotClient(copilotOptions)
	}

	return &CopilotEngine{
		defaultModelID: defaultModelID,
		client:         client,
	}
}

// Initialize is a no-op beyond context validation; the client starts
// lazily on first Execute.
func (e *CopilotEngine) Initialize(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Execute runs one task through a fresh session. Errors the agent reports
// inline come back in Response.ErrorMsg; only transport-level failures
// return an error.
func (e *CopilotEngine) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to CopilotEngine.Execute")
	}
	if req.Timeout <= 0 {
		return nil, fmt.Errorf("positive Timeout is required")
	}

	var startErr error
	e.startOnce.Do(func() {
		// The client's autostart runs into trouble when triggered from
		// multiple goroutines, so start it exactly once here.
		startErr = e.client.Start(ctx)
	})
	if startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", startErr)
	}

	modelID := e.defaultModelID
	if req.ModelID != "" {
		modelID = req.ModelID
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	start := time.Now()

	session, err := e.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               modelID,
		OnPermissionRequest: allowAllTools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	collector := newStepCollector(req.Thoughts)
	unsubscribe := session.On(collector.On)
	defer unsubscribe()

	_, err = session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: req.Prompt,
	})

	errMsg := collector.ErrorMessage()
	if err != nil {
		errMsg = err.Error()
	}

	return &Response{
		Steps:       collector.Steps(),
		FinalOutput: collector.FinalOutput(),
		Success:     err == nil && collector.ErrorMessage() == "",
		ErrorMsg:    errMsg,
		DurationMs:  time.Since(start).Milliseconds(),
	}, nil
}

// CaptureScreenshot is unsupported: the SDK does not expose the browser
// surface outside a running session. Callers treat the error as a skipped
// capture.
func (e *CopilotEngine) CaptureScreenshot(ctx context.Context, taskID string) ([]byte, error) {
	return nil, fmt.Errorf("manual screenshot capture is not available outside a session")
}

// Shutdown stops the underlying client.
func (e *CopilotEngine) Shutdown(ctx context.Context) error {
	return e.client.Stop()
}

var _ Engine = (*CopilotEngine)(nil)

func allowAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "approved"}, nil
}
