package narrative

import (
	"fmt"
	"strings"
)

// Object-repr prefixes that mark content as an unserialized internal object
// rather than real prose.
var objectReprPrefixes = []string{"Run(id=", "PlanRun(id=", "<"}

// usable reports whether extracted content looks like actual narrative text
// instead of an accidental object dump.
func usable(content string) bool {
	content = strings.TrimSpace(content)
	if len(content) < 5 {
		return false
	}
	for _, prefix := range objectReprPrefixes {
		if strings.HasPrefix(content, prefix) {
			return false
		}
	}
	if strings.Contains(content, "object at 0x") {
		return false
	}
	return true
}

// stepOutputKeys are the well-known names probed inside a response's
// step_outputs map, in priority order.
var stepOutputKeys = []string{"$analysis", "analysis", "result", "output"}

// altFieldNames are the last-resort attribute names probed on the response.
var altFieldNames = []string{"result", "content", "response", "text", "analysis", "summary"}

// stepFieldNames are probed on each entry of a response's steps list.
var stepFieldNames = []string{"output", "result", "content", "response", "text"}

// extractNarrative walks the known response shapes in priority order and
// returns the first usable string plus the method that found it.
func extractNarrative(resp any) (string, string, bool) {
	if resp == nil {
		return "", "", false
	}

	if s, ok := resp.(string); ok {
		if usable(s) {
			return strings.TrimSpace(s), "string", true
		}
		return "", "", false
	}

	m, ok := resp.(map[string]any)
	if !ok {
		return "", "", false
	}

	if outputs, ok := m["outputs"].(map[string]any); ok {
		if content, ok := fromFinalOutput(outputs["final_output"]); ok {
			return content, "outputs_final_output", true
		}
		if stepOutputs, ok := outputs["step_outputs"].(map[string]any); ok {
			for _, key := range stepOutputKeys {
				if content, ok := fromFinalOutput(stepOutputs[key]); ok {
					return content, "outputs_step_outputs_" + key, true
				}
			}
		}
	}

	if content, ok := fromFinalOutput(m["final_output"]); ok {
		return content, "final_output", true
	}
	if content, ok := fromFinalOutput(m["output"]); ok {
		return content, "output", true
	}

	if steps, ok := m["steps"].([]any); ok {
		for i, rawStep := range steps {
			step, ok := rawStep.(map[string]any)
			if !ok {
				continue
			}
			for _, field := range stepFieldNames {
				if content, ok := fromFinalOutput(step[field]); ok {
					return content, fmt.Sprintf("step_%d_%s", i, field), true
				}
			}
		}
	}

	for _, field := range altFieldNames {
		if content, ok := fromFinalOutput(m[field]); ok {
			return content, "attribute_" + field, true
		}
	}

	return "", "", false
}

// fromFinalOutput coerces one candidate value into usable text, unwrapping
// a {value: ...} container if present.
func fromFinalOutput(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		if usable(val) {
			return strings.TrimSpace(val), true
		}
		return "", false
	case map[string]any:
		if inner, ok := val["value"]; ok {
			return fromFinalOutput(inner)
		}
		return "", false
	default:
		s := fmt.Sprintf("%v", val)
		if usable(s) {
			return strings.TrimSpace(s), true
		}
		return "", false
	}
}
