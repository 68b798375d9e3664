package agent

import (
	"fmt"
	"strings"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// BuildTaskPrompt turns task instructions into the prompt sent to the
// browser agent. The logging directives teach the agent to narrate its
// reasoning through the log_* tools so the trace normalizer can attach
// natural-language context to each step.
func BuildTaskPrompt(instr models.TaskInstructions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Navigate to: %s\n\n", instr.TargetURL)
	fmt.Fprintf(&b, "Task: %s\n\n", instr.TaskDescription)

	b.WriteString(`LOGGING INSTRUCTIONS:
1. Use log_action(message) to log what you are doing at each step with detailed context.
2. Use log_observation(message) to log what you see and understand about the page.
3. Use log_decision(message) to log your reasoning and decision-making process.
4. Use take_screenshot_now(description) whenever something important happens.

IMPORTANT: Be detailed and descriptive in your logging so every step of your reasoning and actions can be tracked.
`)

	if len(instr.ScreenshotInstructions) > 0 {
		b.WriteString("\nAdditional Screenshot Requirements:")
		for i, shot := range instr.ScreenshotInstructions {
			filename := shot.Filename
			if filename == "" {
				filename = fmt.Sprintf("screenshot_%d.png", i+1)
			}
			fmt.Fprintf(&b, "\n%d. %s (save as %s)", i+1, shot.StepDescription, filename)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRemember: use the logging functions throughout your execution.")
	return b.String()
}
