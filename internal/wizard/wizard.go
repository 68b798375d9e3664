// Package wizard collects task instructions interactively.
package wizard

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

const instructionsYAMLTemplate = `# WebSentinel task instructions
target_url: {{ .TargetURL }}
task_description: >
  {{ .TaskDescription }}
{{- if .ScreenshotInstructions }}
screenshot_instructions:
{{- range .ScreenshotInstructions }}
  - step_description: {{ .StepDescription }}
{{- if .Filename }}
    filename: {{ .Filename }}
{{- end }}
{{- end }}
{{- end }}
`

// RunTaskWizard runs an interactive huh form to collect task instructions.
// If initialURL is non-empty, it pre-populates the target URL field.
func RunTaskWizard(in io.Reader, out io.Writer, initialURL string) (*models.TaskInstructions, error) {
	var (
		targetURL      = initialURL
		description    string
		screenshotsRaw string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target URL").
				Description("The website the agent should test").
				Placeholder("https://example.com").
				Value(&targetURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Task description").
				Description("What should the agent verify?").
				Placeholder("Check that the login form works").
				Value(&description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("task description is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Screenshots").
				Description("Comma-separated moments to capture, empty for none").
				Placeholder("after page load, after submitting the form").
				Value(&screenshotsRaw),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	instr := &models.TaskInstructions{
		TargetURL:       strings.TrimSpace(targetURL),
		TaskDescription: strings.TrimSpace(description),
	}
	for _, step := range splitAndTrim(screenshotsRaw) {
		instr.ScreenshotInstructions = append(instr.ScreenshotInstructions,
			models.ScreenshotInstruction{StepDescription: step})
	}
	return instr, nil
}

// GenerateInstructionsYAML renders an instructions file from the collected
// answers.
func GenerateInstructionsYAML(instr *models.TaskInstructions) (string, error) {
	tmpl, err := template.New("instructions").Parse(instructionsYAMLTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, instr); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("target URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter a full URL including the scheme")
	}
	return nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
