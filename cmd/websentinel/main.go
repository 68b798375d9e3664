package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Everything succeeded
	ExitTaskFailed = 1 // A task ran but did not complete successfully
	ExitError      = 2 // Configuration or runtime error
)

// TaskFailureError indicates that the agent ran to completion but the task
// itself failed.
type TaskFailureError struct {
	Message string
}

func (e *TaskFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var taskFailureErr *TaskFailureError
		if errors.As(err, &taskFailureErr) {
			os.Exit(ExitTaskFailed)
		}

		os.Exit(ExitError)
	}
}
