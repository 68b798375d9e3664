package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var targetURL string

	cmd := &cobra.Command{
		Use:   "init [output-file]",
		Short: "Create a task instruction file interactively",
		Long: `Create a task instruction file through an interactive wizard.

The wizard asks for the target URL, the test to perform, and any screenshots
to capture, then writes a YAML file that websentinel run accepts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := "task.yaml"
			if len(args) == 1 {
				outputPath = args[0]
			}

			if _, err := os.Stat(outputPath); err == nil {
				return fmt.Errorf("%s already exists", outputPath)
			}

			instr, err := wizard.RunTaskWizard(cmd.InOrStdin(), cmd.OutOrStdout(), targetURL)
			if err != nil {
				return err
			}

			content, err := wizard.GenerateInstructionsYAML(instr)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Run it with: websentinel run %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetURL, "target-url", "", "Pre-populate the target URL field")

	return cmd
}
