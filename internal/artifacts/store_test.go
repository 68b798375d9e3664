package artifacts

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestDeterministicNames(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	assert.Equal(t, "browser_execution_task_1_20260314_092653.json", executionLogName("task_1", ts))
	assert.Equal(t, "review_report_task_1_20260314_092653.json", reportName("task_1", ts))
	assert.Equal(t, "task_1_initial_20260314_092653.png", screenshotName("task_1", "initial", ts))

	// Path separators and other unsafe characters never reach the filesystem.
	assert.Equal(t, "browser_execution_a_b_c_20260314_092653.json", executionLogName("a/b c", ts))
}

func TestWriteAndLoadExecutionLog(t *testing.T) {
	store := newTestStore(t)

	result := &models.ExecutionResult{
		TaskID:    "task_20260314_092653_000001",
		Success:   true,
		Steps:     []models.NormalizedStep{{StepNumber: 1, ActionSummary: "navigate"}},
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	path, err := store.WriteExecutionLog(result)
	require.NoError(t, err)
	require.FileExists(t, path)

	loaded, err := store.LoadExecutionResult(result.TaskID)
	require.NoError(t, err)
	assert.Equal(t, result.TaskID, loaded.TaskID)
	assert.True(t, loaded.Success)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, "navigate", loaded.Steps[0].ActionSummary)
}

func TestLoadExecutionResultMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadExecutionResult("nope")
	require.ErrorContains(t, err, "no execution log found")
}

func TestWriteScreenshot(t *testing.T) {
	store := newTestStore(t)

	asset, err := store.WriteScreenshot("task_1", "step_2", 2, []byte("png-bytes"))
	require.NoError(t, err)

	assert.FileExists(t, asset.FilePath)
	assert.Equal(t, 2, asset.StepNumber)
	assert.Equal(t, "/screenshots/"+filepath.Base(asset.FilePath), asset.URL)

	data, err := os.ReadFile(asset.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestWriteScreenshotBase64RejectsGarbage(t *testing.T) {
	store := newTestStore(t)

	_, err := store.WriteScreenshotBase64("task_1", "x", 1, "!!not-base64!!")
	require.ErrorContains(t, err, "decode")
}

func TestLogPathsAreDeterministic(t *testing.T) {
	store := newTestStore(t)

	// Both per-task logs must be derivable from the task id alone so the
	// serving endpoints need no directory scan.
	assert.Equal(t, filepath.Join(store.LogsDir, "agent_thoughts_task_a.txt"),
		store.ThoughtLogPath("task_a"))
	assert.Equal(t, filepath.Join(store.LogsDir, "agent_output_task_a.txt"),
		store.OutputLogPath("task_a"))
}

func TestArchiveRoundTrip(t *testing.T) {
	store := newTestStore(t)

	result := &models.ExecutionResult{TaskID: "task_a", Timestamp: time.Now()}
	_, err := store.WriteExecutionLog(result)
	require.NoError(t, err)
	_, err = store.WriteScreenshot("task_a", "final", 3, []byte("img"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.Archive(&buf))

	zr, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	require.Len(t, names, 2)
	assert.Contains(t, names[0]+names[1], "browser_execution_task_a_")
}

func TestArchiveTaskFiltersOtherTasks(t *testing.T) {
	store := newTestStore(t)

	_, err := store.WriteExecutionLog(&models.ExecutionResult{TaskID: "task_a", Timestamp: time.Now()})
	require.NoError(t, err)
	_, err = store.WriteExecutionLog(&models.ExecutionResult{TaskID: "task_b", Timestamp: time.Now()})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.ArchiveTask(&buf, "task_a"))

	zr, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	require.Len(t, names, 1)
	assert.Contains(t, names[0], "task_a")
}
