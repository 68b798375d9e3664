package compliance

import (
	"net/url"
	"strings"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// urlHeuristic is one detection rule for "was the target URL accessed".
// Each rule inspects a different representation of the same step list,
// because the normalizer's output shape has drifted across automation
// backend versions. The rules run in order and the first hit wins.
type urlHeuristic struct {
	name  string
	check func(steps []models.NormalizedStep, targetURL string) bool
}

var urlHeuristics = []urlHeuristic{
	{"navigate_action", navigateActionMatch},
	{"raw_action", rawActionMatch},
	{"result_content", resultContentMatch},
	{"step_text", stepTextMatch},
	{"target_domain", targetDomainMatch},
}

// navigateActionMatch: a typed navigate action whose url starts with the
// target (trailing slash stripped from the target first).
func navigateActionMatch(steps []models.NormalizedStep, targetURL string) bool {
	prefix := strings.TrimRight(targetURL, "/")
	for _, step := range steps {
		for _, action := range step.Actions {
			if action.Type != models.ActionNavigate {
				continue
			}
			if u, ok := action.Details["url"].(string); ok && strings.HasPrefix(u, prefix) {
				return true
			}
		}
	}
	return false
}

// rawActionMatch: the same navigate check over the raw action maps kept in
// each step's details, which survive even when the typed view drifts.
func rawActionMatch(steps []models.NormalizedStep, targetURL string) bool {
	prefix := strings.TrimRight(targetURL, "/")
	for _, step := range steps {
		for _, raw := range rawActions(step) {
			typ, _ := raw["type"].(string)
			if typ != models.ActionNavigate {
				continue
			}
			details, _ := raw["details"].(map[string]any)
			if u, ok := details["url"].(string); ok && strings.HasPrefix(u, prefix) {
				return true
			}
		}
	}
	return false
}

// resultContentMatch: a result whose content mentions both "navigated to"
// and the target URL.
func resultContentMatch(steps []models.NormalizedStep, targetURL string) bool {
	target := strings.ToLower(targetURL)
	for _, step := range steps {
		for _, result := range step.Results {
			content := strings.ToLower(result.Content)
			if strings.Contains(content, "navigated to") && strings.Contains(content, target) {
				return true
			}
		}
	}
	return false
}

// stepTextMatch: navigation keywords, the literal target URL, or the
// phrase "navigated to" anywhere in a step's action or result text.
func stepTextMatch(steps []models.NormalizedStep, targetURL string) bool {
	target := strings.ToLower(targetURL)
	for _, step := range steps {
		actionText := strings.ToLower(stepActionText(step))
		resultText := strings.ToLower(stepResultText(step))

		if strings.Contains(actionText, "navigate") || strings.Contains(actionText, "goto") ||
			strings.Contains(actionText, target) ||
			strings.Contains(resultText, "navigated to") ||
			strings.Contains(resultText, target) {
			return true
		}
	}
	return false
}

// targetDomainMatch: last resort, the target's host name appearing anywhere
// in a step's combined text.
func targetDomainMatch(steps []models.NormalizedStep, targetURL string) bool {
	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	domain := strings.ToLower(parsed.Host)

	for _, step := range steps {
		text := strings.ToLower(stepActionText(step) + " " + stepResultText(step))
		if strings.Contains(text, domain) {
			return true
		}
	}
	return false
}

// rawActions reads the raw action maps out of a step's details, tolerating
// the type change a JSON round trip introduces.
func rawActions(step models.NormalizedStep) []map[string]any {
	switch v := step.Details["actions"].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// stepActionText prefers the full captured action text over the truncated
// summary so URLs are not lost to truncation.
func stepActionText(step models.NormalizedStep) string {
	if raw, ok := step.Details["raw_action"].(string); ok && raw != "" {
		return raw
	}
	return step.ActionSummary
}

func stepResultText(step models.NormalizedStep) string {
	if raw, ok := step.Details["raw_result"].(string); ok && raw != "" {
		return raw
	}
	return step.ResultSummary
}
