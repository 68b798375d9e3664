// Package compliance grades one task run against its instructions: was the
// target URL accessed, were the required screenshots captured, and what
// should the caller look at next. Analysis is a pure function over the
// execution result, so a report can be regenerated at any time.
package compliance

import (
	"fmt"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// Analyze builds a ComplianceReport from an execution result and the
// instructions the task started with. Deterministic given identical inputs;
// a failure inside one URL heuristic skips that heuristic only.
func Analyze(result *models.ExecutionResult, instr models.TaskInstructions) *models.ComplianceReport {
	accessed := targetURLAccessed(result.Steps, instr.TargetURL)

	required := len(instr.ScreenshotInstructions)
	captured := len(result.Screenshots)
	meets := required == 0 || captured >= required

	report := &models.ComplianceReport{
		TaskID:            result.TaskID,
		TargetURL:         instr.TargetURL,
		TargetURLAccessed: accessed,
		ScreenshotCompliance: models.ScreenshotCompliance{
			Required:          required,
			Captured:          captured,
			MeetsRequirements: meets,
		},
		Recommendations: recommendations(result, instr, accessed),
		ExecutionSummary: models.ExecutionSummary{
			Success:             result.Success,
			StepsCompleted:      len(result.Steps),
			ScreenshotsCaptured: captured,
			Error:               result.Error,
		},
		Timestamp: result.Timestamp,
	}
	return report
}

func targetURLAccessed(steps []models.NormalizedStep, targetURL string) bool {
	if targetURL == "" {
		return false
	}
	for _, h := range urlHeuristics {
		if runHeuristic(h, steps, targetURL) {
			return true
		}
	}
	return false
}

func runHeuristic(h urlHeuristic, steps []models.NormalizedStep, targetURL string) (hit bool) {
	defer func() {
		if recover() != nil {
			hit = false
		}
	}()
	return h.check(steps, targetURL)
}

// recommendations builds the ordered, additive recommendation list. Each
// condition appends independently; the list is never deduplicated or
// reordered afterwards.
func recommendations(result *models.ExecutionResult, instr models.TaskInstructions, accessed bool) []string {
	recs := []string{}

	required := len(instr.ScreenshotInstructions)
	captured := len(result.Screenshots)

	if !result.Success {
		recs = append(recs, "Task execution failed - check error logs")
	}
	if !accessed {
		recs = append(recs, fmt.Sprintf("Target URL %s may not have been properly accessed", instr.TargetURL))
	}
	if required > 0 && captured < required {
		recs = append(recs, "Not all required screenshots were captured")
	}

	if result.Success {
		recs = append(recs, "Task appears to have completed successfully")
		if accessed {
			recs = append(recs, fmt.Sprintf("Target URL %s was successfully accessed", instr.TargetURL))
		}
		if captured > 0 {
			recs = append(recs, fmt.Sprintf("Successfully captured %d screenshots", captured))
		}
		if steps := len(result.Steps); steps > 0 {
			recs = append(recs, fmt.Sprintf("Completed %d execution steps", steps))
		}
	}

	return recs
}
