// Package agent drives the external browser-automation agent for one task
// and hands back the raw step trace it produced. The trace shape is owned
// by the backend, not by us, so steps are returned opaque and normalized
// downstream.
package agent

import (
	"context"
	"time"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/thoughtlog"
)

// Engine abstracts the browser-automation backend.
type Engine interface {
	// Initialize prepares the engine for use.
	Initialize(ctx context.Context) error

	// Execute runs a single task to completion. Inline agent errors are
	// reported in the response, not the error return.
	Execute(ctx context.Context, req *Request) (*Response, error)

	// CaptureScreenshot grabs the current browser state outside the normal
	// step flow. Best-effort: engines without that capability return an
	// error, which callers tolerate.
	CaptureScreenshot(ctx context.Context, taskID string) ([]byte, error)

	// Shutdown cleans up engine resources.
	Shutdown(ctx context.Context) error
}

// Request describes one task run.
type Request struct {
	TaskID  string
	Prompt  string
	ModelID string

	// Timeout bounds the whole run. Required.
	Timeout time.Duration

	// Thoughts receives the agent's free-text commentary as it happens.
	// Optional; defaults to a no-op recorder.
	Thoughts thoughtlog.Recorder
}

// Response carries everything one run produced.
type Response struct {
	Steps       []models.RawStep
	FinalOutput string
	Success     bool
	ErrorMsg    string
	DurationMs  int64
}
