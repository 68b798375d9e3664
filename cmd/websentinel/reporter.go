package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// numberPrinter formats counts with locale-aware separators.
var numberPrinter = message.NewPrinter(language.English)

const (
	colStep    = 4
	colAction  = 42
	colStatus  = 10
	maxSummary = 40
)

// formatDuration formats a duration in a consistent, human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

// FormatTaskReport renders a finished task as a terminal report.
func FormatTaskReport(path string, record *models.TaskRecord) string {
	var b strings.Builder

	statusIcon := "✅ completed"
	if record.Status != models.StatusCompleted {
		statusIcon = "❌ " + string(record.Status)
	}

	fmt.Fprintf(&b, "%s (%s)\n", path, record.TaskID)
	fmt.Fprintf(&b, "  Status: %s", statusIcon)
	if record.EndTime != nil {
		fmt.Fprintf(&b, " | Duration: %s", formatDuration(record.EndTime.Sub(record.StartTime)))
	}
	b.WriteString("\n")

	result := record.Results
	if result == nil {
		if record.Error != "" {
			fmt.Fprintf(&b, "  Error: %s\n", record.Error)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "  Steps: %s | Screenshots: %s\n",
		numberPrinter.Sprintf("%d", len(result.Steps)),
		numberPrinter.Sprintf("%d", len(result.Screenshots)))
	if result.Error != "" {
		fmt.Fprintf(&b, "  Error: %s\n", result.Error)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s %s\n",
			padRight("#", colStep),
			padRight("Action", colAction),
			padRight("Status", colStatus))
		for _, step := range result.Steps {
			fmt.Fprintf(&b, "  %s %s %s\n",
				padRight(fmt.Sprintf("%d", step.StepNumber), colStep),
				padRight(truncateCell(step.ActionSummary, maxSummary), colAction),
				padRight(step.SuccessStatus, colStatus))
		}
	}

	return b.String()
}

// FormatAnalysis renders an analysis result for the terminal.
func FormatAnalysis(analysis *models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analysis for %s (%s)\n", analysis.TaskID, analysis.Method)

	report := analysis.Report
	fmt.Fprintf(&b, "  Target URL accessed: %t\n", report.TargetURLAccessed)
	fmt.Fprintf(&b, "  Screenshots: %s of %s required\n",
		numberPrinter.Sprintf("%d", report.ScreenshotCompliance.Captured),
		numberPrinter.Sprintf("%d", report.ScreenshotCompliance.Required))
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&b, "  - %s\n", rec)
	}

	b.WriteString("\n")
	b.WriteString(analysis.Narrative)
	b.WriteString("\n")
	return b.String()
}

// truncateCell shortens a cell to maxLen runes, replacing the last rune
// with "…" if needed.
func truncateCell(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
