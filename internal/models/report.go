package models

import "time"

// ExecutionResult aggregates everything captured from one task run. It is
// written once after the run finishes and never mutated afterwards.
type ExecutionResult struct {
	TaskID      string            `json:"task_id"`
	Success     bool              `json:"success"`
	Steps       []NormalizedStep  `json:"execution_steps"`
	Screenshots []ScreenshotAsset `json:"screenshots"`
	FinalOutput string            `json:"final_output,omitempty"`
	Error       string            `json:"error,omitempty"`
	DurationMs  int64             `json:"duration_ms"`
	Timestamp   time.Time         `json:"timestamp"`
}

// ScreenshotCompliance is the screenshot-count verdict of a compliance check.
type ScreenshotCompliance struct {
	Required          int  `json:"required"`
	Captured          int  `json:"captured"`
	MeetsRequirements bool `json:"meets_requirements"`
}

// ExecutionSummary condenses an ExecutionResult for reporting.
type ExecutionSummary struct {
	Success             bool   `json:"success"`
	StepsCompleted      int    `json:"steps_completed"`
	ScreenshotsCaptured int    `json:"screenshots_captured"`
	Error               string `json:"error,omitempty"`
}

// ComplianceReport is the structured verdict on whether a run met its
// URL-access and screenshot requirements. It is derived data, recomputable
// at any time from an ExecutionResult and the original TaskInstructions.
type ComplianceReport struct {
	TaskID               string               `json:"task_id"`
	TargetURL            string               `json:"target_url"`
	TargetURLAccessed    bool                 `json:"target_url_accessed"`
	ScreenshotCompliance ScreenshotCompliance `json:"screenshot_compliance"`
	Recommendations      []string             `json:"recommendations"`
	ExecutionSummary     ExecutionSummary     `json:"execution_summary"`
	Timestamp            time.Time            `json:"timestamp"`
}

// Analysis provenance markers.
const (
	AnalysisMethodPlanner  = "planner"
	AnalysisMethodFallback = "fallback"
)

// AnalysisResult is a compliance report plus its narrative, tagged with how
// the narrative was produced so callers can distinguish provenance.
type AnalysisResult struct {
	TaskID    string           `json:"task_id"`
	Report    ComplianceReport `json:"analysis_report"`
	Narrative string           `json:"analysis_content"`
	Method    string           `json:"analysis_method"`
	Timestamp time.Time        `json:"timestamp"`
}
