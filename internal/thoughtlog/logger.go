// Package thoughtlog records the free-text commentary an agent emits while
// running a task. Entries are line-oriented so the file stays readable and
// parseable even if the process dies mid-run.
package thoughtlog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Thought categories. ACTION, OBSERVATION and DECISION are the ones the
// trace normalizer correlates back to steps; everything else is diagnostic.
const (
	TypeAction      = "ACTION"
	TypeObservation = "OBSERVATION"
	TypeDecision    = "DECISION"
	TypeError       = "ERROR"
	TypeInfo        = "INFO"
)

const timestampLayout = "2006-01-02 15:04:05"

// Recorder is the write side of a thought log. Logger and NopLogger both
// satisfy it.
type Recorder interface {
	Path() string
	Log(thoughtType, message string) error
	LogAction(message string) error
	LogObservation(message string) error
	LogDecision(message string) error
	CountScreenshot()
}

// Logger appends timestamped thought lines to a per-task file. Safe for
// concurrent use.
type Logger struct {
	mu   sync.Mutex
	f    *os.File
	path string

	actions      int
	observations int
	decisions    int
	errors       int
	screenshots  int
}

// New opens (or creates) the thought log at path in append mode.
func New(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open thought log: %w", err)
	}
	return &Logger{f: f, path: path}, nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Log writes one `[timestamp] TYPE: message` line.
func (l *Logger) Log(thoughtType, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch thoughtType {
	case TypeAction:
		l.actions++
	case TypeObservation:
		l.observations++
	case TypeDecision:
		l.decisions++
	case TypeError:
		l.errors++
	}

	line := fmt.Sprintf("[%s] %s: %s\n", time.Now().Format(timestampLayout), thoughtType, message)
	if _, err := l.f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write thought: %w", err)
	}
	return nil
}

// LogAction records what the agent is doing.
func (l *Logger) LogAction(message string) error { return l.Log(TypeAction, message) }

// LogObservation records what the agent sees.
func (l *Logger) LogObservation(message string) error { return l.Log(TypeObservation, message) }

// LogDecision records the agent's reasoning.
func (l *Logger) LogDecision(message string) error { return l.Log(TypeDecision, message) }

// CountScreenshot bumps the screenshot counter for the session summary.
func (l *Logger) CountScreenshot() {
	l.mu.Lock()
	l.screenshots++
	l.mu.Unlock()
}

// Close writes a session summary block and closes the file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sep := strings.Repeat("=", 50)
	summary := fmt.Sprintf("\n%s\nSESSION SUMMARY:\n- Actions: %d\n- Observations: %d\n- Decisions: %d\n- Errors: %d\n- Screenshots: %d\nSession End: %s\n%s\n",
		sep, l.actions, l.observations, l.decisions, l.errors, l.screenshots,
		time.Now().Format(timestampLayout), sep)

	if _, err := l.f.WriteString(summary); err != nil {
		l.f.Close()
		return fmt.Errorf("failed to write session summary: %w", err)
	}
	return l.f.Close()
}

var _ Recorder = (*Logger)(nil)

// NopLogger discards all thoughts. Useful in tests and dry runs.
type NopLogger struct{}

var _ Recorder = NopLogger{}

func (NopLogger) Path() string                    { return "" }
func (NopLogger) Log(_, _ string) error           { return nil }
func (NopLogger) LogAction(_ string) error        { return nil }
func (NopLogger) LogObservation(_ string) error   { return nil }
func (NopLogger) LogDecision(_ string) error      { return nil }
func (NopLogger) CountScreenshot()                {}
func (NopLogger) Close() error                    { return nil }
