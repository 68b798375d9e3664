package compliance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

func navigateStep(urlValue string) models.NormalizedStep {
	return models.NormalizedStep{
		StepNumber: 1,
		Actions: []models.StepAction{
			{Type: models.ActionNavigate, Details: map[string]any{"url": urlValue}},
		},
		ActionSummary: "Step 1: navigate",
		ResultSummary: "Completed 1 actions",
		SuccessStatus: models.StepSuccess,
	}
}

func instructionsFor(targetURL string, shots int) models.TaskInstructions {
	instr := models.TaskInstructions{
		TargetURL:       targetURL,
		TaskDescription: "verify the site",
	}
	for i := 0; i < shots; i++ {
		instr.ScreenshotInstructions = append(instr.ScreenshotInstructions,
			models.ScreenshotInstruction{StepDescription: "shot", Filename: "shot.png"})
	}
	return instr
}

func TestNavigateActionTrailingSlashInsensitive(t *testing.T) {
	result := &models.ExecutionResult{
		TaskID:  "t1",
		Success: true,
		Steps:   []models.NormalizedStep{navigateStep("https://x.com/")},
	}

	report := Analyze(result, instructionsFor("https://x.com", 0))
	assert.True(t, report.TargetURLAccessed)
}

func TestResultContentNavigationPhrase(t *testing.T) {
	result := &models.ExecutionResult{
		TaskID:  "t1",
		Success: true,
		Steps: []models.NormalizedStep{
			{
				StepNumber: 1,
				Results: []models.StepResult{
					{Content: "🔗 Navigated to https://x.com/"},
				},
			},
		},
	}

	report := Analyze(result, instructionsFor("https://x.com/", 0))
	assert.True(t, report.TargetURLAccessed)
}

func TestEmptyStepsNotAccessed(t *testing.T) {
	result := &models.ExecutionResult{TaskID: "t1", Success: false}

	report := Analyze(result, instructionsFor("https://x.com/", 0))
	assert.False(t, report.TargetURLAccessed)
	assert.Contains(t, report.Recommendations,
		"Target URL https://x.com/ may not have been properly accessed")
}

func TestEmptyTargetURLNeverAccessed(t *testing.T) {
	result := &models.ExecutionResult{
		TaskID:  "t1",
		Success: true,
		Steps:   []models.NormalizedStep{navigateStep("https://x.com/")},
	}

	report := Analyze(result, models.TaskInstructions{TaskDescription: "no url"})
	assert.False(t, report.TargetURLAccessed)
}

func TestRawActionHeuristicSurvivesJSONRoundTrip(t *testing.T) {
	step := models.NormalizedStep{
		StepNumber: 1,
		Details: map[string]any{
			"actions": []map[string]any{
				{"type": "navigate", "details": map[string]any{"url": "https://x.com/home"}},
			},
		},
	}

	// Round-trip through JSON the way a reloaded execution log arrives.
	data, err := json.Marshal(models.ExecutionResult{TaskID: "t1", Steps: []models.NormalizedStep{step}})
	require.NoError(t, err)
	var reloaded models.ExecutionResult
	require.NoError(t, json.Unmarshal(data, &reloaded))

	report := Analyze(&reloaded, instructionsFor("https://x.com", 0))
	assert.True(t, report.TargetURLAccessed)
}

func TestStepTextHeuristic(t *testing.T) {
	result := &models.ExecutionResult{
		TaskID:  "t1",
		Success: true,
		Steps: []models.NormalizedStep{
			{
				StepNumber: 1,
				Details: map[string]any{
					"raw_action": "goto the landing page",
				},
				ActionSummary: "short summary",
			},
		},
	}

	report := Analyze(result, instructionsFor("https://x.com", 0))
	assert.True(t, report.TargetURLAccessed)
}

func TestDomainFallbackHeuristic(t *testing.T) {
	result := &models.ExecutionResult{
		TaskID:  "t1",
		Success: true,
		Steps: []models.NormalizedStep{
			{
				StepNumber:    1,
				ActionSummary: "opened a page on x.com somewhere",
			},
		},
	}

	report := Analyze(result, instructionsFor("https://x.com/deep/path", 0))
	assert.True(t, report.TargetURLAccessed)
}

func TestURLDetectionShortCircuits(t *testing.T) {
	// Only heuristic 1 can match this step; the overall verdict must still
	// be true without help from the later heuristics.
	step := models.NormalizedStep{
		StepNumber: 1,
		Actions: []models.StepAction{
			{Type: models.ActionNavigate, Details: map[string]any{"url": "https://x.com/"}},
		},
		ActionSummary: "opening page",
		ResultSummary: "ok",
	}
	result := &models.ExecutionResult{TaskID: "t1", Success: true, Steps: []models.NormalizedStep{step}}

	report := Analyze(result, instructionsFor("https://x.com", 0))
	require.True(t, report.TargetURLAccessed)

	for _, h := range urlHeuristics[1:] {
		assert.False(t, h.check(result.Steps, "https://x.com"),
			"later heuristic %s should not be needed", h.name)
	}
}

func TestScreenshotCompliance(t *testing.T) {
	base := &models.ExecutionResult{TaskID: "t1", Success: true}

	report := Analyze(base, instructionsFor("https://x.com", 0))
	assert.True(t, report.ScreenshotCompliance.MeetsRequirements)

	withTwo := &models.ExecutionResult{
		TaskID: "t1", Success: true,
		Screenshots: []models.ScreenshotAsset{{}, {}},
	}
	report = Analyze(withTwo, instructionsFor("https://x.com", 3))
	assert.False(t, report.ScreenshotCompliance.MeetsRequirements)
	assert.Contains(t, report.Recommendations, "Not all required screenshots were captured")

	withThree := &models.ExecutionResult{
		TaskID: "t1", Success: true,
		Screenshots: []models.ScreenshotAsset{{}, {}, {}},
	}
	report = Analyze(withThree, instructionsFor("https://x.com", 3))
	assert.True(t, report.ScreenshotCompliance.MeetsRequirements)
}

func TestPositiveRecommendations(t *testing.T) {
	result := &models.ExecutionResult{
		TaskID:  "t1",
		Success: true,
		Steps: []models.NormalizedStep{
			navigateStep("https://x.com/"),
		},
		Screenshots: []models.ScreenshotAsset{{}, {}, {}, {}, {}},
	}

	report := Analyze(result, instructionsFor("https://x.com", 0))

	assert.Equal(t, []string{
		"Task appears to have completed successfully",
		"Target URL https://x.com was successfully accessed",
		"Successfully captured 5 screenshots",
		"Completed 1 execution steps",
	}, report.Recommendations)
}

func TestFailedRunRecommendations(t *testing.T) {
	result := &models.ExecutionResult{
		TaskID:  "t1",
		Success: false,
		Error:   "browser crashed",
	}

	report := Analyze(result, instructionsFor("https://x.com", 2))

	assert.Equal(t, []string{
		"Task execution failed - check error logs",
		"Target URL https://x.com may not have been properly accessed",
		"Not all required screenshots were captured",
	}, report.Recommendations)
	assert.Equal(t, "browser crashed", report.ExecutionSummary.Error)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	result := &models.ExecutionResult{
		TaskID:      "t1",
		Success:     true,
		Steps:       []models.NormalizedStep{navigateStep("https://x.com/")},
		Screenshots: []models.ScreenshotAsset{{}},
		Timestamp:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	instr := instructionsFor("https://x.com", 1)

	first, err := json.Marshal(Analyze(result, instr))
	require.NoError(t, err)
	second, err := json.Marshal(Analyze(result, instr))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
