package webapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/orchestrator"
)

// stubService is a canned TaskService for handler tests.
type stubService struct {
	records   map[string]*models.TaskRecord
	results   map[string]*models.ExecutionResult
	analyses  map[string]*models.AnalysisResult
	startErr  error
	lastInstr models.TaskInstructions
	logsDir   string
}

func newStubService() *stubService {
	return &stubService{
		records:  map[string]*models.TaskRecord{},
		results:  map[string]*models.ExecutionResult{},
		analyses: map[string]*models.AnalysisResult{},
	}
}

func (s *stubService) StartTask(instr models.TaskInstructions) (string, error) {
	if s.startErr != nil {
		return "", s.startErr
	}
	if err := instr.Validate(); err != nil {
		return "", err
	}
	s.lastInstr = instr
	return "task_stub_000001", nil
}

func (s *stubService) Status(taskID string) (*models.TaskRecord, error) {
	record, ok := s.records[taskID]
	if !ok {
		return nil, orchestrator.ErrTaskNotFound
	}
	return record, nil
}

func (s *stubService) Tasks() []*models.TaskRecord {
	out := make([]*models.TaskRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out
}

func (s *stubService) Results(taskID string) (*models.ExecutionResult, error) {
	record, ok := s.records[taskID]
	if !ok {
		return nil, orchestrator.ErrTaskNotFound
	}
	if !record.Status.Terminal() {
		return nil, &orchestrator.NotReadyError{TaskID: taskID, Status: record.Status}
	}
	return s.results[taskID], nil
}

func (s *stubService) Analyze(_ context.Context, taskID string) (*models.AnalysisResult, error) {
	record, ok := s.records[taskID]
	if !ok {
		return nil, orchestrator.ErrTaskNotFound
	}
	if record.Status != models.StatusCompleted {
		return nil, &orchestrator.NotReadyError{TaskID: taskID, Status: record.Status}
	}
	return s.analyses[taskID], nil
}

func (s *stubService) ThoughtLogPath(taskID string) string {
	return filepath.Join(s.logsDir, "agent_thoughts_"+taskID+".txt")
}

func (s *stubService) OutputLogPath(taskID string) string {
	return filepath.Join(s.logsDir, "agent_output_"+taskID+".txt")
}

func newTestServer(t *testing.T, svc *stubService) *httptest.Server {
	t.Helper()
	if svc.logsDir == "" {
		svc.logsDir = t.TempDir()
	}
	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandlers(svc, "", nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExecuteTest(t *testing.T) {
	svc := newStubService()
	srv := newTestServer(t, svc)

	body := `{"target_url":"https://example.com","task_description":"check the homepage"}`
	resp, err := http.Post(srv.URL+"/execute-test", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ExecuteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "task_stub_000001", out.TaskID)
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, "/task-status/task_stub_000001", out.CheckStatusURL)
	assert.Equal(t, "https://example.com", svc.lastInstr.TargetURL)
}

func TestExecuteTestRejectsInvalidBody(t *testing.T) {
	srv := newTestServer(t, newStubService())

	resp, err := http.Post(srv.URL+"/execute-test", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecuteTestRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t, newStubService())

	resp, err := http.Post(srv.URL+"/execute-test", "application/json",
		strings.NewReader(`{"target_url":"https://example.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out.Error, "task_description")
}

func TestTaskStatus(t *testing.T) {
	svc := newStubService()
	end := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.records["task_a"] = &models.TaskRecord{
		TaskID:    "task_a",
		Status:    models.StatusCompleted,
		Progress:  "Task completed",
		StartTime: end.Add(-time.Minute),
		EndTime:   &end,
	}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/task-status/task_a")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "completed", out.Status)
	assert.Equal(t, "2026-01-02T03:04:05Z", out.EndTime)
}

func TestTaskStatusNotFound(t *testing.T) {
	srv := newTestServer(t, newStubService())

	resp, err := http.Get(srv.URL + "/task-status/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskResultsConflictWhileRunning(t *testing.T) {
	svc := newStubService()
	svc.records["task_b"] = &models.TaskRecord{TaskID: "task_b", Status: models.StatusRunning}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/task-results/task_b")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out.Error, "running")
}

func TestTaskResults(t *testing.T) {
	svc := newStubService()
	svc.records["task_c"] = &models.TaskRecord{TaskID: "task_c", Status: models.StatusCompleted}
	svc.results["task_c"] = &models.ExecutionResult{
		TaskID:  "task_c",
		Success: true,
		Steps: []models.NormalizedStep{
			{StepNumber: 1, ActionSummary: "Navigating to webpage"},
		},
	}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/task-results/task_c")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ExecutionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	require.Len(t, out.Steps, 1)
	assert.Equal(t, "Navigating to webpage", out.Steps[0].ActionSummary)
}

func TestAnalyzeResults(t *testing.T) {
	svc := newStubService()
	svc.records["task_d"] = &models.TaskRecord{TaskID: "task_d", Status: models.StatusCompleted}
	svc.analyses["task_d"] = &models.AnalysisResult{
		TaskID:    "task_d",
		Narrative: "**AI Analysis Report**",
		Method:    models.AnalysisMethodFallback,
	}
	srv := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/analyze-results/task_d", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, models.AnalysisMethodFallback, out.Method)
}

func TestAnalyzeResultsHTMLFormat(t *testing.T) {
	svc := newStubService()
	svc.records["task_e"] = &models.TaskRecord{TaskID: "task_e", Status: models.StatusCompleted}
	svc.analyses["task_e"] = &models.AnalysisResult{
		TaskID:    "task_e",
		Narrative: "**bold claim**",
		Method:    models.AnalysisMethodPlanner,
	}
	srv := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/analyze-results/task_e?format=html", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<strong>bold claim</strong>")
}

func TestTasksList(t *testing.T) {
	svc := newStubService()
	svc.records["task_f"] = &models.TaskRecord{
		TaskID:    "task_f",
		Status:    models.StatusRunning,
		StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out TaskListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "task_f", out.Tasks[0].TaskID)
	assert.Equal(t, "running", out.Tasks[0].Status)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, newStubService())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "healthy", out.Status)
	assert.NotEmpty(t, out.Timestamp)
}

func TestAgentThoughts(t *testing.T) {
	svc := newStubService()
	svc.logsDir = t.TempDir()
	svc.records["task_g"] = &models.TaskRecord{TaskID: "task_g", Status: models.StatusCompleted}

	log := "[2026-01-02 03:04:05] ACTION: clicked login\n" +
		"[2026-01-02 03:04:06] OBSERVATION: form appeared\n"
	require.NoError(t, os.WriteFile(svc.ThoughtLogPath("task_g"), []byte(log), 0o644))

	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/agent-thoughts/task_g")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ThoughtsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Thoughts, 2)
	assert.Equal(t, "action", out.Thoughts[0].Type)
	assert.Equal(t, "clicked login", out.Thoughts[0].Message)
}

func TestAgentThoughtsMissingLogIsEmpty(t *testing.T) {
	svc := newStubService()
	svc.records["task_h"] = &models.TaskRecord{TaskID: "task_h", Status: models.StatusCompleted}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/agent-thoughts/task_h")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ThoughtsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Thoughts)
}

func TestOutputLog(t *testing.T) {
	svc := newStubService()
	svc.logsDir = t.TempDir()
	svc.records["task_i"] = &models.TaskRecord{TaskID: "task_i", Status: models.StatusCompleted}
	require.NoError(t, os.WriteFile(svc.OutputLogPath("task_i"), []byte("all checks passed"), 0o644))

	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/logs/task_i/output")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "all checks passed", string(body))
}

func TestThoughtLogPlainText(t *testing.T) {
	svc := newStubService()
	svc.logsDir = t.TempDir()
	svc.records["task_k"] = &models.TaskRecord{TaskID: "task_k", Status: models.StatusCompleted}
	log := "[2026-01-02 03:04:05] ACTION: clicked login\n"
	require.NoError(t, os.WriteFile(svc.ThoughtLogPath("task_k"), []byte(log), 0o644))

	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/logs/task_k/thoughts")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, log, string(body))
}

func TestOutputLogMissing(t *testing.T) {
	svc := newStubService()
	svc.records["task_j"] = &models.TaskRecord{TaskID: "task_j", Status: models.StatusCompleted}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/logs/task_j/output")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The miss stays plain text like the endpoint itself.
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "no output log found for task task_j")
}

func TestAPIInfo(t *testing.T) {
	srv := newTestServer(t, newStubService())

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out APIInfoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out.Endpoints, "POST /execute-test")
}

func TestCORSMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORSMiddleware(inner, "https://dashboard.local")

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "https://dashboard.local")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
