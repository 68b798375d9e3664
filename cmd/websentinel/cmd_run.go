package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/artifacts"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/config"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/orchestrator"
)

const statusPollInterval = 200 * time.Millisecond

// taskOutcome pairs an instruction file with its finished task record.
type taskOutcome struct {
	path   string
	record *models.TaskRecord
}

func newRunCommand() *cobra.Command {
	var (
		artifactsDir string
		modelID      string
		timeout      time.Duration
		mock         bool
		parallel     bool
		workers      int
		analyze      bool
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:   "run <instructions-file>...",
		Short: "Execute website tests from instruction files",
		Long: `Execute one or more website tests described by instruction files.

Instruction files are JSON or YAML with a target_url, a task_description,
and optional screenshot_instructions. Each file becomes one task; pass
--parallel to run them concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate every file before starting any task.
			instructions := make([]models.TaskInstructions, 0, len(args))
			for _, path := range args {
				instr, err := config.LoadInstructions(path)
				if err != nil {
					return err
				}
				instructions = append(instructions, instr)
			}

			arts, err := artifacts.NewStore(artifactsDir)
			if err != nil {
				return fmt.Errorf("failed to prepare artifacts directory: %w", err)
			}

			orch, err := orchestrator.New(orchestrator.Options{
				Engine:    newEngine(mock, modelID),
				Planner:   newPlanner(mock, modelID),
				Artifacts: arts,
				Timeout:   timeout,
				ModelID:   modelID,
			})
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				orch.Shutdown(shutdownCtx) //nolint:errcheck
			}()

			outcomes := make([]taskOutcome, len(args))

			eg, ctx := errgroup.WithContext(cmd.Context())
			if parallel {
				eg.SetLimit(workers)
			} else {
				eg.SetLimit(1)
			}
			for i := range args {
				eg.Go(func() error {
					record, err := runSingleTask(ctx, orch, instructions[i])
					if err != nil {
						return fmt.Errorf("%s: %w", args[i], err)
					}
					outcomes[i] = taskOutcome{path: args[i], record: record}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			failed := 0
			for _, outcome := range outcomes {
				fmt.Fprintln(cmd.OutOrStdout(), FormatTaskReport(outcome.path, outcome.record))
				if outcome.record.Status != models.StatusCompleted {
					failed++
				}
			}

			if analyze {
				for _, outcome := range outcomes {
					if outcome.record.Status != models.StatusCompleted {
						continue
					}
					analysis, err := orch.Analyze(cmd.Context(), outcome.record.TaskID)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), FormatAnalysis(analysis))
				}
			}

			if outputPath != "" {
				records := make([]*models.TaskRecord, 0, len(outcomes))
				for _, outcome := range outcomes {
					records = append(records, outcome.record)
				}
				if err := writeResultsFile(outputPath, records); err != nil {
					return err
				}
			}

			if failed > 0 {
				return &TaskFailureError{
					Message: fmt.Sprintf("%d of %d tasks failed", failed, len(outcomes)),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "logs", "Directory for logs and screenshots")
	cmd.Flags().StringVar(&modelID, "model", "", "Model to use for automation and analysis")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Per-task agent timeout")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use the mock agent engine instead of Copilot")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Run tasks concurrently")
	cmd.Flags().IntVar(&workers, "workers", 4, "Number of concurrent workers (requires --parallel)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Run compliance analysis after each completed task")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON file for task records")

	return cmd
}

func writeResultsFile(path string, records []*models.TaskRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// runSingleTask starts a task and polls until it reaches a terminal status.
func runSingleTask(ctx context.Context, orch *orchestrator.Orchestrator, instr models.TaskInstructions) (*models.TaskRecord, error) {
	taskID, err := orch.StartTask(instr)
	if err != nil {
		return nil, err
	}

	for {
		record, err := orch.Status(taskID)
		if err != nil {
			return nil, err
		}
		if record.Status.Terminal() {
			return record, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(statusPollInterval):
		}
	}
}
