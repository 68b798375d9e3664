package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/narrative"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/orchestrator"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/thoughtlog"
)

// Version is set at build time or defaults to dev.
var Version = "1.0.0"

// Handlers holds the HTTP handler methods for the task API.
type Handlers struct {
	service        TaskService
	screenshotsDir string
	logger         *slog.Logger
}

// NewHandlers creates a new Handlers backed by the given task service.
// screenshotsDir is served statically under /screenshots/.
func NewHandlers(service TaskService, screenshotsDir string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{service: service, screenshotsDir: screenshotsDir, logger: logger}
}

// HandleExecuteTest accepts task instructions and queues a background task.
func (h *Handlers) HandleExecuteTest(w http.ResponseWriter, r *http.Request) {
	var instr models.TaskInstructions
	if err := json.NewDecoder(r.Body).Decode(&instr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	taskID, err := h.service.StartTask(instr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("task queued", "task_id", taskID, "target_url", instr.TargetURL)

	writeJSON(w, http.StatusOK, ExecuteResponse{
		TaskID:         taskID,
		Status:         string(models.StatusPending),
		Message:        "Task started successfully",
		CheckStatusURL: "/task-status/" + taskID,
	})
}

// HandleTaskStatus reports where a task is in its lifecycle.
func (h *Handlers) HandleTaskStatus(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Status(r.PathValue("id"))
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	resp := StatusResponse{
		TaskID:    record.TaskID,
		Status:    string(record.Status),
		Progress:  record.Progress,
		StartTime: record.StartTime.Format(time.RFC3339),
		Error:     record.Error,
	}
	if record.EndTime != nil {
		resp.EndTime = record.EndTime.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleTaskResults returns the normalized execution result for a finished
// task.
func (h *Handlers) HandleTaskResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.PathValue("id"))
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleAnalyzeResults runs compliance analysis plus narrative enrichment
// for a completed task. Pass ?format=html to get the narrative rendered as
// HTML instead of the JSON payload.
func (h *Handlers) HandleAnalyzeResults(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.service.Analyze(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, rerr := narrative.RenderHTML(analysis.Narrative)
		if rerr != nil {
			writeError(w, http.StatusInternalServerError, rerr.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html)) //nolint:errcheck
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// HandleTasks lists all known tasks, oldest first.
func (h *Handlers) HandleTasks(w http.ResponseWriter, _ *http.Request) {
	records := h.service.Tasks()

	resp := TaskListResponse{Tasks: make([]TaskSummary, 0, len(records))}
	for _, record := range records {
		summary := TaskSummary{
			TaskID:    record.TaskID,
			Status:    string(record.Status),
			StartTime: record.StartTime.Format(time.RFC3339),
		}
		if record.EndTime != nil {
			summary.EndTime = record.EndTime.Format(time.RFC3339)
		}
		resp.Tasks = append(resp.Tasks, summary)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HandleAgentThoughts returns the parsed thought log for a task.
func (h *Handlers) HandleAgentThoughts(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")
	if _, err := h.service.Status(taskID); err != nil {
		h.writeTaskError(w, err)
		return
	}

	thoughts, err := thoughtlog.Load(h.service.ThoughtLogPath(taskID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if thoughts == nil {
		thoughts = []models.Thought{}
	}
	writeJSON(w, http.StatusOK, ThoughtsResponse{TaskID: taskID, Thoughts: thoughts})
}

// HandleOutputLog streams the captured agent output as plain text.
func (h *Handlers) HandleOutputLog(w http.ResponseWriter, r *http.Request) {
	h.serveLogFile(w, r, h.service.OutputLogPath, "output")
}

// HandleThoughtLog streams the raw thought log as plain text.
func (h *Handlers) HandleThoughtLog(w http.ResponseWriter, r *http.Request) {
	h.serveLogFile(w, r, h.service.ThoughtLogPath, "thought")
}

func (h *Handlers) serveLogFile(w http.ResponseWriter, r *http.Request, path func(string) string, kind string) {
	taskID := r.PathValue("id")
	if _, err := h.service.Status(taskID); err != nil {
		h.writeTaskError(w, err)
		return
	}

	data, err := os.ReadFile(path(taskID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// These endpoints serve plain text, so the miss does too.
			http.Error(w, fmt.Sprintf("no %s log found for task %s", kind, taskID), http.StatusNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// HandleAPIInfo describes the API at the root path.
func (h *Handlers) HandleAPIInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, APIInfoResponse{
		Message: "WebSentinel website testing API",
		Version: Version,
		Endpoints: map[string]string{
			"POST /execute-test":            "queue a browser automation task",
			"GET /task-status/{id}":         "task lifecycle state",
			"GET /task-results/{id}":        "normalized execution result",
			"POST /analyze-results/{id}":    "compliance analysis and narrative",
			"GET /tasks":                    "list all tasks",
			"GET /agent-thoughts/{id}":      "agent commentary log",
			"GET /logs/{id}/output":         "raw agent output",
			"GET /logs/{id}/thoughts":       "raw agent thought log",
			"GET /screenshots/{file}":       "captured screenshots",
			"GET /health":                   "health check",
		},
	})
}

// writeTaskError maps service errors onto HTTP statuses. Unknown tasks are
// 404, tasks in the wrong state are 409, everything else is 500.
func (h *Handlers) writeTaskError(w http.ResponseWriter, err error) {
	var notReady *orchestrator.NotReadyError
	switch {
	case errors.Is(err, orchestrator.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.As(err, &notReady):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// RegisterRoutes registers all task API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("POST /execute-test", h.HandleExecuteTest)
	mux.HandleFunc("GET /task-status/{id}", h.HandleTaskStatus)
	mux.HandleFunc("GET /task-results/{id}", h.HandleTaskResults)
	mux.HandleFunc("POST /analyze-results/{id}", h.HandleAnalyzeResults)
	mux.HandleFunc("GET /tasks", h.HandleTasks)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /agent-thoughts/{id}", h.HandleAgentThoughts)
	mux.HandleFunc("GET /logs/{id}/output", h.HandleOutputLog)
	mux.HandleFunc("GET /logs/{id}/thoughts", h.HandleThoughtLog)
	mux.HandleFunc("GET /{$}", h.HandleAPIInfo)

	if h.screenshotsDir != "" {
		fs := http.FileServer(http.Dir(h.screenshotsDir))
		mux.Handle("GET /screenshots/", http.StripPrefix("/screenshots/", fs))
	}
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
