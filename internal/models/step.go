package models

// RawStep is one opaque action/result record as emitted by the external
// browser-automation agent. Its shape is backend-defined and varies between
// versions, so it is carried as-is until the trace normalizer runs.
type RawStep = any

// Action type tags produced by the trace normalizer.
const (
	ActionNavigate       = "navigate"
	ActionInput          = "input"
	ActionClick          = "click"
	ActionLogAction      = "log_action"
	ActionLogObservation = "log_observation"
	ActionLogDecision    = "log_decision"
	ActionExtractContent = "extract_content"
	ActionScreenshot     = "screenshot"
	ActionDone           = "done"
	ActionUnknown        = "unknown"
)

// Success status values for a normalized step.
const (
	StepSuccess   = "success"
	StepFailed    = "failed"
	StepEmpty     = "empty"
	StepCompleted = "completed"
	StepUnknown   = "unknown"
)

// StepAction is one recognized action inside a step.
type StepAction struct {
	Type    string         `json:"type"`
	Details map[string]any `json:"details"`
}

// StepResult is one result record inside a step. Success is a pointer so
// "backend did not report" stays distinct from an explicit false.
type StepResult struct {
	Content string `json:"content"`
	IsDone  bool   `json:"is_done"`
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StepThoughts holds free-text agent commentary attached to a step. The
// correlation between thoughts and steps is positional, not causal, so
// Approximate is always true when apportionment was used.
type StepThoughts struct {
	Actions      []string `json:"actions"`
	Observations []string `json:"observations"`
	Decisions    []string `json:"decisions"`
	Approximate  bool     `json:"approximate"`
}

// NormalizedStep is the canonical representation of one agent step.
type NormalizedStep struct {
	StepNumber          int            `json:"step_number"`
	Actions             []StepAction   `json:"actions"`
	Results             []StepResult   `json:"results"`
	ActionSummary       string         `json:"action_summary"`
	ResultSummary       string         `json:"result_summary"`
	SuccessStatus       string         `json:"success_status"`
	ScreenshotReference string         `json:"screenshot_reference,omitempty"`
	Thoughts            *StepThoughts  `json:"thoughts,omitempty"`
	Details             map[string]any `json:"details,omitempty"`
	Diagnostic          string         `json:"diagnostic,omitempty"`
}

// ScreenshotAsset is one persisted screenshot file.
type ScreenshotAsset struct {
	FilePath   string `json:"file_path"`
	URL        string `json:"url"`
	StepNumber int    `json:"step_number"`
}

// Thought is one parsed line from a task's thought log.
type Thought struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}
