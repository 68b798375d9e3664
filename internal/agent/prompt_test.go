package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

func TestBuildTaskPrompt(t *testing.T) {
	prompt := BuildTaskPrompt(models.TaskInstructions{
		TargetURL:       "https://example.com",
		TaskDescription: "Search for a product and open the first result",
		ScreenshotInstructions: []models.ScreenshotInstruction{
			{StepDescription: "Homepage loaded", Filename: "home.png"},
			{StepDescription: "Search results visible"},
		},
	})

	assert.Contains(t, prompt, "Navigate to: https://example.com")
	assert.Contains(t, prompt, "Search for a product")
	assert.Contains(t, prompt, "log_action(message)")
	assert.Contains(t, prompt, "1. Homepage loaded (save as home.png)")
	assert.Contains(t, prompt, "2. Search results visible (save as screenshot_2.png)")
}

func TestBuildTaskPromptWithoutScreenshots(t *testing.T) {
	prompt := BuildTaskPrompt(models.TaskInstructions{
		TargetURL:       "https://example.com",
		TaskDescription: "Just look around",
	})
	assert.NotContains(t, prompt, "Additional Screenshot Requirements")
}
