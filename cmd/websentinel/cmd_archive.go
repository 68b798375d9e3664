package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/artifacts"
)

func newArchiveCommand() *cobra.Command {
	var (
		artifactsDir string
		taskID       string
	)

	cmd := &cobra.Command{
		Use:   "archive [output-file]",
		Short: "Bundle execution logs and screenshots into an archive",
		Long: `Bundle the artifacts directory into a zstd-compressed tar archive.

This captures execution logs, compliance reports, thought logs, and
screenshots for sharing or long-term storage.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := fmt.Sprintf("websentinel_%s.tar.zst", time.Now().Format("20060102_150405"))
			if len(args) == 1 {
				outputPath = args[0]
			}

			arts, err := artifacts.NewStore(artifactsDir)
			if err != nil {
				return fmt.Errorf("failed to open artifacts directory: %w", err)
			}

			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outputPath, err)
			}
			defer f.Close()

			if taskID != "" {
				err = arts.ArchiveTask(f, taskID)
			} else {
				err = arts.Archive(f)
			}
			if err != nil {
				return fmt.Errorf("failed to write archive: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "logs", "Directory holding execution logs")
	cmd.Flags().StringVar(&taskID, "task", "", "Archive only this task's artifacts")

	return cmd
}
