// Package artifacts persists everything a task run leaves behind: the
// execution log, compliance reports, screenshots, thought logs and raw
// output captures. All filenames are deterministic functions of the task
// id, a label and a timestamp so a task's artifacts can be found again
// without a database.
package artifacts

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

const fileTimestampLayout = "20060102_150405"

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Store writes and locates task artifacts under a base directory.
// Screenshots live in a screenshots/ subdirectory so they can be served
// statically.
type Store struct {
	LogsDir        string
	ScreenshotsDir string
}

// NewStore creates a store rooted at baseDir and ensures its directories
// exist.
func NewStore(baseDir string) (*Store, error) {
	s := &Store{
		LogsDir:        baseDir,
		ScreenshotsDir: filepath.Join(baseDir, "screenshots"),
	}
	if err := os.MkdirAll(s.ScreenshotsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directories: %w", err)
	}
	return s, nil
}

// sanitizeName makes a string safe for use in a filename.
func sanitizeName(name string) string {
	s := unsafeNameChars.ReplaceAllString(name, "_")
	if s == "" {
		return "unnamed"
	}
	return s
}

func executionLogName(taskID string, ts time.Time) string {
	return fmt.Sprintf("browser_execution_%s_%s.json", sanitizeName(taskID), ts.Format(fileTimestampLayout))
}

func reportName(taskID string, ts time.Time) string {
	return fmt.Sprintf("review_report_%s_%s.json", sanitizeName(taskID), ts.Format(fileTimestampLayout))
}

func screenshotName(taskID, label string, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s.png", sanitizeName(taskID), sanitizeName(label), ts.Format(fileTimestampLayout))
}

// ThoughtLogPath returns the per-task thought log location.
func (s *Store) ThoughtLogPath(taskID string) string {
	return filepath.Join(s.LogsDir, fmt.Sprintf("agent_thoughts_%s.txt", sanitizeName(taskID)))
}

// OutputLogPath returns the per-task agent output capture location.
func (s *Store) OutputLogPath(taskID string) string {
	return filepath.Join(s.LogsDir, fmt.Sprintf("agent_output_%s.txt", sanitizeName(taskID)))
}

// NewOutputLog opens the per-task output capture file for appending.
func (s *Store) NewOutputLog(taskID string) (io.WriteCloser, error) {
	f, err := os.OpenFile(s.OutputLogPath(taskID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output log: %w", err)
	}
	return f, nil
}

// WriteExecutionLog persists an ExecutionResult as indented JSON and
// returns the file path. The filename timestamp comes from the result
// itself so re-saving the same result targets the same file.
func (s *Store) WriteExecutionLog(result *models.ExecutionResult) (string, error) {
	path := filepath.Join(s.LogsDir, executionLogName(result.TaskID, result.Timestamp))
	if err := writeJSONFile(path, result); err != nil {
		return "", fmt.Errorf("failed to write execution log: %w", err)
	}
	return path, nil
}

// WriteReport persists a ComplianceReport as indented JSON.
func (s *Store) WriteReport(report *models.ComplianceReport) (string, error) {
	path := filepath.Join(s.LogsDir, reportName(report.TaskID, report.Timestamp))
	if err := writeJSONFile(path, report); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// WriteScreenshot persists raw PNG bytes for a step and returns the asset.
func (s *Store) WriteScreenshot(taskID, label string, stepNumber int, data []byte) (models.ScreenshotAsset, error) {
	name := screenshotName(taskID, label, time.Now())
	path := filepath.Join(s.ScreenshotsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.ScreenshotAsset{}, fmt.Errorf("failed to write screenshot: %w", err)
	}
	return models.ScreenshotAsset{
		FilePath:   path,
		URL:        "/screenshots/" + name,
		StepNumber: stepNumber,
	}, nil
}

// WriteScreenshotBase64 decodes base64 (or data-URI) content and persists it.
func (s *Store) WriteScreenshotBase64(taskID, label string, stepNumber int, encoded string) (models.ScreenshotAsset, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return models.ScreenshotAsset{}, fmt.Errorf("failed to decode screenshot data: %w", err)
	}
	return s.WriteScreenshot(taskID, label, stepNumber, data)
}

// CopyScreenshot copies an existing image file into the screenshots
// directory under a deterministic name.
func (s *Store) CopyScreenshot(taskID, label string, stepNumber int, srcPath string) (models.ScreenshotAsset, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return models.ScreenshotAsset{}, fmt.Errorf("failed to read screenshot source: %w", err)
	}
	return s.WriteScreenshot(taskID, label, stepNumber, data)
}

// FindExecutionLog returns the newest execution log for a task, or an
// empty string when none exists.
func (s *Store) FindExecutionLog(taskID string) (string, error) {
	pattern := filepath.Join(s.LogsDir, fmt.Sprintf("browser_execution_%s_*.json", sanitizeName(taskID)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// LoadExecutionResult reads a task's newest execution log back into memory.
func (s *Store) LoadExecutionResult(taskID string) (*models.ExecutionResult, error) {
	path, err := s.FindExecutionLog(taskID)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("no execution log found for task %s", taskID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read execution log: %w", err)
	}
	var result models.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse execution log %s: %w", path, err)
	}
	return &result, nil
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
