// Package trace converts the heterogeneous step records produced by the
// browser-automation backend into a uniform step list plus a screenshot
// manifest. The backend's record shape varies between versions, so every
// step goes through an ordered cascade of shape detectors and the first
// match wins. A step that defeats every detector degrades to a placeholder
// instead of failing the run.
package trace

import (
	"fmt"
	"log/slog"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

const (
	defaultActionSummary = "Unknown action"
	defaultResultSummary = "No result available"
)

// ScreenshotWriter persists screenshot data discovered inside raw steps.
// artifacts.Store satisfies it.
type ScreenshotWriter interface {
	WriteScreenshot(taskID, label string, stepNumber int, data []byte) (models.ScreenshotAsset, error)
	WriteScreenshotBase64(taskID, label string, stepNumber int, encoded string) (models.ScreenshotAsset, error)
	CopyScreenshot(taskID, label string, stepNumber int, srcPath string) (models.ScreenshotAsset, error)
}

// Normalizer turns raw agent steps into NormalizedSteps.
type Normalizer struct {
	shots  ScreenshotWriter
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer. shots may be nil, in which case
// screenshot extraction is skipped entirely.
func NewNormalizer(shots ScreenshotWriter, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{shots: shots, logger: logger}
}

// Normalize converts a raw step sequence into exactly len(raw) normalized
// steps, numbered 1..N in arrival order, plus the screenshot assets found
// along the way. It never fails: per-step problems degrade that one step.
func (n *Normalizer) Normalize(taskID string, raw []models.RawStep) ([]models.NormalizedStep, []models.ScreenshotAsset) {
	steps := make([]models.NormalizedStep, 0, len(raw))
	var assets []models.ScreenshotAsset

	for i, rs := range raw {
		step := n.normalizeStep(i+1, rs)

		if n.shots != nil {
			if asset, ok := n.extractScreenshot(taskID, i+1, rs); ok {
				step.ScreenshotReference = asset.URL
				assets = append(assets, asset)
			}
		}

		steps = append(steps, step)
	}
	return steps, assets
}

func (n *Normalizer) normalizeStep(num int, raw models.RawStep) (step models.NormalizedStep) {
	step = placeholderStep(num)

	defer func() {
		if r := recover(); r != nil {
			step = placeholderStep(num)
			step.Diagnostic = fmt.Sprintf("step normalization panicked: %v", r)
			n.logger.Warn("recovered while normalizing step", "step", num, "panic", r)
		}
	}()

	for _, decode := range stepDecoders {
		if decoded, ok := decode(num, raw); ok {
			return decoded
		}
	}

	step.Diagnostic = "no shape detector matched"
	return step
}

func placeholderStep(num int) models.NormalizedStep {
	return models.NormalizedStep{
		StepNumber:    num,
		Actions:       []models.StepAction{},
		Results:       []models.StepResult{},
		ActionSummary: defaultActionSummary,
		ResultSummary: defaultResultSummary,
		SuccessStatus: models.StepUnknown,
	}
}
