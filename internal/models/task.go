// Package models defines the domain types shared across the pipeline:
// task instructions, normalized execution steps, screenshot assets, and
// the reports derived from them.
package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ScreenshotInstruction describes one screenshot the caller wants captured
// during the run.
type ScreenshotInstruction struct {
	StepDescription string `json:"step_description" yaml:"step_description"`
	Filename        string `json:"filename" yaml:"filename"`
}

// TaskInstructions is the immutable input for one task run.
type TaskInstructions struct {
	TargetURL              string                  `json:"target_url" yaml:"target_url"`
	TaskDescription        string                  `json:"task_description" yaml:"task_description"`
	ScreenshotInstructions []ScreenshotInstruction `json:"screenshot_instructions" yaml:"screenshot_instructions"`
}

// Validate checks the fields that must be present before a task can start.
func (t *TaskInstructions) Validate() error {
	if strings.TrimSpace(t.TargetURL) == "" {
		return fmt.Errorf("target_url is required")
	}
	if strings.TrimSpace(t.TaskDescription) == "" {
		return fmt.Errorf("task_description is required")
	}
	for i, instr := range t.ScreenshotInstructions {
		if strings.TrimSpace(instr.StepDescription) == "" {
			return fmt.Errorf("screenshot_instructions[%d]: step_description is required", i)
		}
	}
	return nil
}

// TaskRecord tracks one task through its lifecycle. It is owned and mutated
// only by the orchestrator; everything else reads snapshots.
type TaskRecord struct {
	TaskID       string           `json:"task_id"`
	Status       TaskStatus       `json:"status"`
	Progress     string           `json:"progress,omitempty"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      *time.Time       `json:"end_time,omitempty"`
	Instructions TaskInstructions `json:"instructions"`
	Results      *ExecutionResult `json:"results,omitempty"`
	Analysis     *AnalysisResult  `json:"analysis,omitempty"`
	Error        string           `json:"error,omitempty"`
}
