package orchestrator

import (
	"fmt"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// NotReadyError reports that a task exists but has not reached the state
// the caller needs. The message names the current status so clients can
// tell "still running" from "wrong terminal state".
type NotReadyError struct {
	TaskID string
	Status models.TaskStatus
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("task %s is still %s", e.TaskID, e.Status)
}
