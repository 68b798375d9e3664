// Package orchestrator sequences one task's full pipeline: invoke the
// browser agent, normalize the trace, analyze compliance, enrich the
// narrative, and persist results along the way. Task lifecycle state lives
// in a process-wide store keyed by task id.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/agent"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/artifacts"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/compliance"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/narrative"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/thoughtlog"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/trace"
)

const defaultTaskTimeout = 10 * time.Minute

// Options configures an Orchestrator.
type Options struct {
	Engine    agent.Engine
	Planner   narrative.Planner // nil disables LLM narratives, fallback still works
	Store     TaskStore         // nil gets a fresh MemoryStore
	Artifacts *artifacts.Store
	Logger    *slog.Logger
	Timeout   time.Duration // per-task agent timeout
	ModelID   string
}

// Orchestrator owns task lifecycle state and runs each task's pipeline in
// its own goroutine.
type Orchestrator struct {
	engine     agent.Engine
	store      TaskStore
	arts       *artifacts.Store
	normalizer *trace.Normalizer
	enricher   *narrative.Enricher
	logger     *slog.Logger
	timeout    time.Duration
	modelID    string

	wg sync.WaitGroup
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("an agent engine is required")
	}
	if opts.Artifacts == nil {
		return nil, fmt.Errorf("an artifact store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryStore()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}

	return &Orchestrator{
		engine:     opts.Engine,
		store:      store,
		arts:       opts.Artifacts,
		normalizer: trace.NewNormalizer(opts.Artifacts, logger),
		enricher:   narrative.NewEnricher(opts.Planner, logger),
		logger:     logger,
		timeout:    timeout,
		modelID:    opts.ModelID,
	}, nil
}

// NewTaskID derives a task id from a timestamp, microsecond-qualified so
// ids minted in the same second stay distinct.
func NewTaskID(now time.Time) string {
	return fmt.Sprintf("task_%s_%06d", now.Format("20060102_150405"), now.Nanosecond()/1000)
}

// StartTask validates the instructions, registers a pending record, and
// kicks off the pipeline in the background. It returns the new task id
// immediately.
func (o *Orchestrator) StartTask(instr models.TaskInstructions) (string, error) {
	if err := instr.Validate(); err != nil {
		return "", fmt.Errorf("invalid task instructions: %w", err)
	}

	taskID := NewTaskID(time.Now())
	record := &models.TaskRecord{
		TaskID:       taskID,
		Status:       models.StatusPending,
		Progress:     "Task queued for execution",
		StartTime:    time.Now(),
		Instructions: instr,
	}
	if err := o.store.Create(record); err != nil {
		return "", err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.runTask(taskID, instr)
	}()

	return taskID, nil
}

// runTask executes the pipeline for one task. It never panics outward;
// every failure becomes a failed terminal status with whatever partial
// artifacts could still be written.
func (o *Orchestrator) runTask(taskID string, instr models.TaskInstructions) {
	o.setProgress(taskID, models.StatusRunning, "Initializing browser agent...")

	thoughts := o.openThoughtLog(taskID)

	o.setProgress(taskID, models.StatusRunning, "Executing automation task...")

	initial := o.captureManualScreenshot(taskID, "initial")

	resp, err := o.engine.Execute(context.Background(), &agent.Request{
		TaskID:   taskID,
		Prompt:   agent.BuildTaskPrompt(instr),
		ModelID:  o.modelID,
		Timeout:  o.timeout,
		Thoughts: thoughts,
	})

	final := o.captureManualScreenshot(taskID, "final")

	if closer, ok := thoughts.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil {
			o.logger.Warn("failed to close thought log", "task_id", taskID, "error", cerr)
		}
	}

	o.setProgress(taskID, models.StatusRunning, "Saving results and screenshots...")

	result := o.buildResult(taskID, resp, err)
	if initial != nil {
		result.Screenshots = append([]models.ScreenshotAsset{*initial}, result.Screenshots...)
	}
	if final != nil {
		result.Screenshots = append(result.Screenshots, *final)
	}

	if _, werr := o.arts.WriteExecutionLog(result); werr != nil {
		o.logger.Error("failed to persist execution log", "task_id", taskID, "error", werr)
	}
	if resp != nil && resp.FinalOutput != "" {
		o.writeOutputLog(taskID, resp.FinalOutput)
	}

	status := models.StatusCompleted
	progress := "Task completed"
	if !result.Success {
		status = models.StatusFailed
		progress = "Task failed"
	}

	now := time.Now()
	uerr := o.store.Update(taskID, func(record *models.TaskRecord) {
		record.Status = status
		record.Progress = progress
		record.EndTime = &now
		record.Results = result
		record.Error = result.Error
	})
	if uerr != nil {
		o.logger.Error("failed to update task record", "task_id", taskID, "error", uerr)
	}

	o.logger.Info("task finished",
		"task_id", taskID,
		"status", status,
		"steps", len(result.Steps),
		"screenshots", len(result.Screenshots))
}

// buildResult normalizes whatever the engine produced, even on failure, so
// partial traces still end up in the execution log.
func (o *Orchestrator) buildResult(taskID string, resp *agent.Response, execErr error) *models.ExecutionResult {
	result := &models.ExecutionResult{
		TaskID:      taskID,
		Timestamp:   time.Now(),
		Steps:       []models.NormalizedStep{},
		Screenshots: []models.ScreenshotAsset{},
	}

	switch {
	case execErr != nil:
		result.Error = execErr.Error()
	case resp == nil:
		result.Error = "agent engine returned no response"
	default:
		result.Success = resp.Success
		result.Error = resp.ErrorMsg
		result.FinalOutput = resp.FinalOutput
		result.DurationMs = resp.DurationMs

		steps, assets := o.normalizer.Normalize(taskID, resp.Steps)

		thoughts, terr := thoughtlog.Load(o.arts.ThoughtLogPath(taskID))
		if terr != nil {
			o.logger.Warn("failed to load agent thoughts", "task_id", taskID, "error", terr)
		}
		trace.ApportionThoughts(steps, thoughts)

		result.Steps = steps
		result.Screenshots = assets
	}

	return result
}

// Status returns the current task record.
func (o *Orchestrator) Status(taskID string) (*models.TaskRecord, error) {
	return o.store.Get(taskID)
}

// Tasks lists all known task records.
func (o *Orchestrator) Tasks() []*models.TaskRecord {
	return o.store.List()
}

// Results returns a task's execution result once the task is terminal.
func (o *Orchestrator) Results(taskID string) (*models.ExecutionResult, error) {
	record, err := o.store.Get(taskID)
	if err != nil {
		return nil, err
	}
	if !record.Status.Terminal() {
		return nil, &NotReadyError{TaskID: taskID, Status: record.Status}
	}
	if record.Results == nil {
		return o.arts.LoadExecutionResult(taskID)
	}
	return record.Results, nil
}

// Analyze runs (or re-runs) the compliance analysis and narrative
// enrichment for a completed task. The report is always regenerated fresh
// from the stored execution result.
func (o *Orchestrator) Analyze(ctx context.Context, taskID string) (*models.AnalysisResult, error) {
	record, err := o.store.Get(taskID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.StatusCompleted {
		return nil, &NotReadyError{TaskID: taskID, Status: record.Status}
	}

	results := record.Results
	if results == nil {
		results, err = o.arts.LoadExecutionResult(taskID)
		if err != nil {
			return nil, err
		}
	}

	report := compliance.Analyze(results, record.Instructions)
	if _, werr := o.arts.WriteReport(report); werr != nil {
		o.logger.Warn("failed to persist compliance report", "task_id", taskID, "error", werr)
	}

	analysis := o.enricher.Enrich(ctx, report, record.Instructions)

	uerr := o.store.Update(taskID, func(record *models.TaskRecord) {
		record.Analysis = analysis
	})
	if uerr != nil {
		o.logger.Error("failed to store analysis", "task_id", taskID, "error", uerr)
	}

	return analysis, nil
}

// ThoughtLogPath exposes the location of a task's thought log.
func (o *Orchestrator) ThoughtLogPath(taskID string) string {
	return o.arts.ThoughtLogPath(taskID)
}

// OutputLogPath exposes the location of a task's captured agent output.
func (o *Orchestrator) OutputLogPath(taskID string) string {
	return o.arts.OutputLogPath(taskID)
}

// Wait blocks until all in-flight task pipelines finish.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Shutdown waits for running tasks and stops the agent engine.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.Wait()
	return o.engine.Shutdown(ctx)
}

// captureManualScreenshot asks the engine for an out-of-band screenshot so
// runs are bracketed by initial and final page states. Capture failure is
// tolerated; manual shots are extras, not requirements.
func (o *Orchestrator) captureManualScreenshot(taskID, label string) *models.ScreenshotAsset {
	data, err := o.engine.CaptureScreenshot(context.Background(), taskID)
	if err != nil || len(data) == 0 {
		if err != nil {
			o.logger.Debug("manual screenshot capture skipped",
				"task_id", taskID, "label", label, "error", err)
		}
		return nil
	}
	asset, err := o.arts.WriteScreenshot(taskID, label, 0, data)
	if err != nil {
		o.logger.Warn("failed to save manual screenshot",
			"task_id", taskID, "label", label, "error", err)
		return nil
	}
	return &asset
}

func (o *Orchestrator) openThoughtLog(taskID string) thoughtlog.Recorder {
	logger, err := thoughtlog.New(o.arts.ThoughtLogPath(taskID))
	if err != nil {
		o.logger.Warn("failed to open thought log, thoughts will be dropped",
			"task_id", taskID, "error", err)
		return thoughtlog.NopLogger{}
	}
	return logger
}

func (o *Orchestrator) writeOutputLog(taskID, output string) {
	w, err := o.arts.NewOutputLog(taskID)
	if err != nil {
		o.logger.Warn("failed to open output log", "task_id", taskID, "error", err)
		return
	}
	defer w.Close()
	if _, err := w.Write([]byte(output)); err != nil {
		o.logger.Warn("failed to write output log", "task_id", taskID, "error", err)
	}
}

func (o *Orchestrator) setProgress(taskID string, status models.TaskStatus, progress string) {
	err := o.store.Update(taskID, func(record *models.TaskRecord) {
		record.Status = status
		record.Progress = progress
	})
	if err != nil {
		o.logger.Error("failed to update task progress", "task_id", taskID, "error", err)
	}
}
