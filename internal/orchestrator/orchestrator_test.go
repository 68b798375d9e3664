package orchestrator

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/agent"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/artifacts"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

func validInstructions() models.TaskInstructions {
	return models.TaskInstructions{
		TargetURL:       "https://example.com",
		TaskDescription: "look at the homepage",
	}
}

func newTestOrchestrator(t *testing.T, engine agent.Engine) *Orchestrator {
	t.Helper()
	arts, err := artifacts.NewStore(t.TempDir())
	require.NoError(t, err)

	o, err := New(Options{
		Engine:    engine,
		Artifacts: arts,
		Timeout:   time.Minute,
	})
	require.NoError(t, err)
	return o
}

func TestStartTaskRejectsInvalidInstructions(t *testing.T) {
	o := newTestOrchestrator(t, &agent.MockEngine{})

	_, err := o.StartTask(models.TaskInstructions{TargetURL: "https://x.com"})
	require.ErrorContains(t, err, "task_description")
}

func TestTaskLifecycleSuccess(t *testing.T) {
	o := newTestOrchestrator(t, &agent.MockEngine{})

	taskID, err := o.StartTask(validInstructions())
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	o.Wait()

	record, err := o.Status(taskID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, record.Status)
	require.NotNil(t, record.EndTime)

	results, err := o.Results(taskID)
	require.NoError(t, err)
	assert.True(t, results.Success)
	assert.Len(t, results.Steps, 3)
	for i, step := range results.Steps {
		assert.Equal(t, i+1, step.StepNumber)
	}

	// The mock logged thoughts, so the first step picks up commentary.
	require.NotNil(t, results.Steps[0].Thoughts)
	assert.NotEmpty(t, results.Steps[0].Thoughts.Actions)
}

func TestTaskLifecycleFailure(t *testing.T) {
	o := newTestOrchestrator(t, &agent.MockEngine{FailWith: "browser exploded"})

	taskID, err := o.StartTask(validInstructions())
	require.NoError(t, err)

	o.Wait()

	record, err := o.Status(taskID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, record.Status)
	assert.Equal(t, "browser exploded", record.Error)

	// Results are still persisted for failed runs.
	results, err := o.Results(taskID)
	require.NoError(t, err)
	assert.False(t, results.Success)
	assert.Equal(t, "browser exploded", results.Error)
}

// noCaptureEngine behaves like the mock but cannot take out-of-band
// screenshots.
type noCaptureEngine struct {
	agent.MockEngine
}

func (noCaptureEngine) CaptureScreenshot(context.Context, string) ([]byte, error) {
	return nil, errors.New("no browser attached")
}

func TestManualScreenshotsBracketTheRun(t *testing.T) {
	o := newTestOrchestrator(t, &agent.MockEngine{})

	taskID, err := o.StartTask(validInstructions())
	require.NoError(t, err)
	o.Wait()

	results, err := o.Results(taskID)
	require.NoError(t, err)
	require.Len(t, results.Screenshots, 2)
	assert.Contains(t, results.Screenshots[0].FilePath, "_initial_")
	assert.Contains(t, results.Screenshots[1].FilePath, "_final_")
	assert.Equal(t, 0, results.Screenshots[0].StepNumber)

	// The files really exist on disk.
	for _, shot := range results.Screenshots {
		_, err := os.Stat(shot.FilePath)
		assert.NoError(t, err)
	}
}

func TestManualScreenshotFailureIsTolerated(t *testing.T) {
	o := newTestOrchestrator(t, &noCaptureEngine{})

	taskID, err := o.StartTask(validInstructions())
	require.NoError(t, err)
	o.Wait()

	record, err := o.Status(taskID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, record.Status)

	results, err := o.Results(taskID)
	require.NoError(t, err)
	assert.Empty(t, results.Screenshots)
}

func TestResultsNotReady(t *testing.T) {
	o := newTestOrchestrator(t, &agent.MockEngine{})

	// Create the record without running the pipeline.
	record := &models.TaskRecord{
		TaskID:       "task_pending",
		Status:       models.StatusRunning,
		Instructions: validInstructions(),
		StartTime:    time.Now(),
	}
	require.NoError(t, o.store.Create(record))

	_, err := o.Results("task_pending")
	var notReady *NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, models.StatusRunning, notReady.Status)
	assert.Contains(t, err.Error(), "running")
}

func TestUnknownTaskID(t *testing.T) {
	o := newTestOrchestrator(t, &agent.MockEngine{})

	_, err := o.Status("nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = o.Results("nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = o.Analyze(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAnalyzeCompletedTask(t *testing.T) {
	o := newTestOrchestrator(t, &agent.MockEngine{})

	taskID, err := o.StartTask(validInstructions())
	require.NoError(t, err)
	o.Wait()

	analysis, err := o.Analyze(context.Background(), taskID)
	require.NoError(t, err)

	// No planner is configured, so provenance is the fallback.
	assert.Equal(t, models.AnalysisMethodFallback, analysis.Method)
	assert.NotEmpty(t, analysis.Narrative)
	assert.True(t, analysis.Report.TargetURLAccessed)

	record, err := o.Status(taskID)
	require.NoError(t, err)
	require.NotNil(t, record.Analysis)

	// Re-analysis regenerates the report rather than erroring.
	again, err := o.Analyze(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, analysis.Report.TargetURLAccessed, again.Report.TargetURLAccessed)
}

func TestAnalyzeRequiresCompletedStatus(t *testing.T) {
	o := newTestOrchestrator(t, &agent.MockEngine{FailWith: "nope"})

	taskID, err := o.StartTask(validInstructions())
	require.NoError(t, err)
	o.Wait()

	_, err = o.Analyze(context.Background(), taskID)
	var notReady *NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, models.StatusFailed, notReady.Status)
}

func TestNewTaskID(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 123456000, time.UTC)
	assert.Equal(t, "task_20260314_092653_123456", NewTaskID(ts))
}

func TestMemoryStoreSnapshots(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Create(&models.TaskRecord{TaskID: "a", Status: models.StatusPending}))

	got, err := s.Get("a")
	require.NoError(t, err)
	got.Status = models.StatusFailed // mutating the snapshot

	fresh, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, fresh.Status)

	require.Error(t, s.Create(&models.TaskRecord{TaskID: "a"}))
	require.ErrorIs(t, s.Update("missing", func(*models.TaskRecord) {}), ErrTaskNotFound)
}
