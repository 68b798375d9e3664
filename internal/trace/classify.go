package trace

import "strings"

const summaryBudget = 60

// Keyword groups for free-text action classification. Checked in order;
// first matching group wins.
var actionKeywordGroups = []struct {
	label    string
	keywords []string
}{
	{"navigation", []string{"navigate", "goto", "visit"}},
	{"interaction", []string{"click", "tap", "press"}},
	{"input", []string{"type", "input", "enter", "fill"}},
	{"scroll", []string{"scroll", "swipe"}},
	{"wait", []string{"wait", "pause", "sleep"}},
	{"capture", []string{"screenshot", "capture", "image"}},
	{"search", []string{"search", "find", "locate"}},
	{"extraction", []string{"extract", "get", "read"}},
}

func classifyActionType(actionText string) string {
	if actionText == "" || actionText == "N/A" {
		return "unknown"
	}
	lower := strings.ToLower(actionText)
	for _, group := range actionKeywordGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.label
			}
		}
	}
	return "other"
}

func extractActionSummary(actionText string) string {
	if actionText == "" || actionText == "N/A" {
		return "No action specified"
	}

	firstLine := firstLineOf(actionText)
	lower := strings.ToLower(firstLine)

	switch {
	case strings.Contains(lower, "navigate") || strings.Contains(lower, "goto"):
		return "Navigating to webpage"
	case strings.Contains(lower, "click"):
		return "Clicking element"
	case strings.Contains(lower, "type") || strings.Contains(lower, "input"):
		return "Entering text"
	case strings.Contains(lower, "scroll"):
		return "Scrolling page"
	case strings.Contains(lower, "wait"):
		return "Waiting for element"
	case strings.Contains(lower, "screenshot"):
		return "Taking screenshot"
	case strings.Contains(lower, "search"):
		return "Searching"
	default:
		return truncate(firstLine, summaryBudget)
	}
}

func extractResultSummary(resultText string) string {
	if resultText == "" || resultText == "N/A" {
		return defaultResultSummary
	}

	firstLine := firstLineOf(resultText)
	lower := strings.ToLower(firstLine)

	switch {
	case strings.Contains(lower, "success"):
		return "Action completed successfully"
	case strings.Contains(lower, "failed") || strings.Contains(lower, "error"):
		return "Action failed"
	case strings.Contains(lower, "found"):
		return "Element found"
	case strings.Contains(lower, "loaded"):
		return "Page loaded"
	case strings.Contains(lower, "clicked"):
		return "Click performed"
	case strings.Contains(lower, "typed"):
		return "Text entered"
	case strings.Contains(firstLine, "[]") || strings.Contains(lower, "empty"):
		return "No results returned"
	default:
		return truncate(firstLine, summaryBudget)
	}
}

func determineSuccessStatus(resultText string) string {
	if resultText == "" || resultText == "N/A" {
		return "unknown"
	}

	lower := strings.ToLower(resultText)

	switch {
	case containsAny(lower, "success", "completed", "done", "found"):
		return "success"
	case containsAny(lower, "failed", "error", "exception", "timeout", "not found"):
		return "failed"
	case strings.Contains(resultText, "[]") || containsAny(lower, "empty", "none"):
		return "empty"
	case strings.TrimSpace(resultText) != "":
		return "completed"
	default:
		return "unknown"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstLineOf(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

func truncate(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	return s[:budget] + "..."
}
