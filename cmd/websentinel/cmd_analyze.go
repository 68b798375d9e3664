package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/artifacts"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/compliance"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/config"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/narrative"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		artifactsDir     string
		instructionsPath string
		targetURL        string
		modelID          string
		useLLM           bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <task-id>",
		Short: "Analyze a finished task's execution log",
		Long: `Analyze the most recent execution log for a task id.

The compliance report checks whether the target URL was reached and whether
the required screenshots were captured. Pass --instructions to reuse the
original instruction file; otherwise supply --target-url directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]

			arts, err := artifacts.NewStore(artifactsDir)
			if err != nil {
				return fmt.Errorf("failed to open artifacts directory: %w", err)
			}

			result, err := arts.LoadExecutionResult(taskID)
			if err != nil {
				return err
			}

			var instr models.TaskInstructions
			if instructionsPath != "" {
				instr, err = config.LoadInstructions(instructionsPath)
				if err != nil {
					return err
				}
			}
			if targetURL != "" {
				instr.TargetURL = targetURL
			}

			report := compliance.Analyze(result, instr)
			if _, err := arts.WriteReport(report); err != nil {
				slog.Warn("failed to persist compliance report", "task_id", taskID, "error", err)
			}

			var planner narrative.Planner
			if useLLM {
				planner = narrative.NewCopilotPlanner(modelID)
			}
			enricher := narrative.NewEnricher(planner, slog.Default())
			analysis := enricher.Enrich(cmd.Context(), report, instr)

			fmt.Fprintln(cmd.OutOrStdout(), FormatAnalysis(analysis))
			return nil
		},
	}

	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "logs", "Directory holding execution logs")
	cmd.Flags().StringVar(&instructionsPath, "instructions", "", "Instruction file the task was run with")
	cmd.Flags().StringVar(&targetURL, "target-url", "", "Target URL to check against")
	cmd.Flags().StringVar(&modelID, "model", "", "Model to use for the analysis narrative")
	cmd.Flags().BoolVar(&useLLM, "llm", false, "Generate the narrative with an LLM instead of the fallback template")

	return cmd
}
