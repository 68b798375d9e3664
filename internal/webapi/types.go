package webapi

import (
	"context"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// TaskService is the surface the handlers need from the orchestrator.
type TaskService interface {
	StartTask(instr models.TaskInstructions) (string, error)
	Status(taskID string) (*models.TaskRecord, error)
	Tasks() []*models.TaskRecord
	Results(taskID string) (*models.ExecutionResult, error)
	Analyze(ctx context.Context, taskID string) (*models.AnalysisResult, error)
	ThoughtLogPath(taskID string) string
	OutputLogPath(taskID string) string
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ExecuteResponse acknowledges a queued task.
type ExecuteResponse struct {
	TaskID         string `json:"task_id"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	CheckStatusURL string `json:"check_status_url"`
}

// StatusResponse reports a task's lifecycle state.
type StatusResponse struct {
	TaskID    string `json:"task_id"`
	Status    string `json:"status"`
	Progress  string `json:"progress,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
	Error     string `json:"error,omitempty"`
}

// TaskSummary is one entry in the task list.
type TaskSummary struct {
	TaskID    string `json:"task_id"`
	Status    string `json:"status"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
}

// TaskListResponse lists all known tasks.
type TaskListResponse struct {
	Tasks []TaskSummary `json:"tasks"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ThoughtsResponse returns a task's parsed thought log.
type ThoughtsResponse struct {
	TaskID   string           `json:"task_id"`
	Thoughts []models.Thought `json:"thoughts"`
}

// APIInfoResponse describes the API at the root path.
type APIInfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}
