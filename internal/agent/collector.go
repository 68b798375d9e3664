package agent

import (
	"encoding/json"
	"fmt"

	copilot "github.com/github/copilot-sdk/go"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/internal/thoughtlog"
)

const sessionFailedUnknown = "session failed with unknown error"

// stepCollector listens to session events and assembles raw step records
// in the structured shape the trace normalizer recognizes: one step per
// completed tool call, with the tool's arguments mapped to a typed action
// and the tool's result attached as the step result.
type stepCollector struct {
	thoughts thoughtlog.Recorder

	steps       []models.RawStep
	outputParts []string
	errorMsg    string
	done        chan struct{}

	pending map[string]map[string]any // tool call id -> action item
	order   []string
}

func newStepCollector(thoughts thoughtlog.Recorder) *stepCollector {
	if thoughts == nil {
		thoughts = thoughtlog.NopLogger{}
	}
	return &stepCollector{
		thoughts: thoughts,
		done:     make(chan struct{}),
		pending:  map[string]map[string]any{},
	}
}

// Steps returns the raw steps collected so far, in tool start order.
func (c *stepCollector) Steps() []models.RawStep {
	return c.steps
}

// FinalOutput returns the concatenated assistant message text.
func (c *stepCollector) FinalOutput() string {
	out := ""
	for _, part := range c.outputParts {
		out += part
	}
	return out
}

// ErrorMessage returns the session error, if one was reported.
func (c *stepCollector) ErrorMessage() string {
	return c.errorMsg
}

// Done is closed when the session reaches a terminal event.
func (c *stepCollector) Done() <-chan struct{} {
	return c.done
}

// On is the session event callback, intended for [copilot.Session.On].
func (c *stepCollector) On(event copilot.SessionEvent) {
	switch event.Type {
	case copilot.AssistantMessage, copilot.AssistantMessageDelta:
		if event.Data.Content != nil && *event.Data.Content != "" {
			c.outputParts = append(c.outputParts, *event.Data.Content)
		}

	case copilot.ToolExecutionStart:
		if event.Data.ToolName == nil || event.Data.ToolCallID == nil {
			return
		}
		action := actionItem(*event.Data.ToolName, event.Data.Arguments)
		c.pending[*event.Data.ToolCallID] = action
		c.order = append(c.order, *event.Data.ToolCallID)
		c.recordThought(*event.Data.ToolName, event.Data.Arguments)

	case copilot.ToolExecutionComplete:
		if event.Data.ToolCallID == nil {
			return
		}
		action, ok := c.pending[*event.Data.ToolCallID]
		if !ok {
			return
		}
		delete(c.pending, *event.Data.ToolCallID)

		result := map[string]any{
			"extracted_content": resultContent(event.Data.Result),
			"is_done":           false,
		}
		if event.Data.Success != nil {
			result["success"] = *event.Data.Success
		}

		c.steps = append(c.steps, map[string]any{
			"model_output": map[string]any{"action": []any{action}},
			"result":       []any{result},
		})

	case copilot.SessionIdle, copilot.SessionError:
		if event.Type == copilot.SessionError {
			if event.Data.Message == nil || *event.Data.Message == "" {
				c.errorMsg = sessionFailedUnknown
			} else {
				c.errorMsg = *event.Data.Message
			}
		}
		select {
		case <-c.done:
		default:
			close(c.done)
		}
	}
}

// toolActionShapes maps backend tool names to the structured action records
// the normalizer understands. Unlisted tools pass through under their own
// name and normalize as unknown actions.
var toolActionShapes = map[string]string{
	"navigate":         "go_to_url",
	"go_to_url":        "go_to_url",
	"browser_navigate": "go_to_url",
	"click":            "click_element_by_index",
	"type":             "input_text",
	"input_text":       "input_text",
	"screenshot":       "take_screenshot_now",
	"take_screenshot":  "take_screenshot_now",
	"log_action":       "log_action",
	"log_observation":  "log_observation",
	"log_decision":     "log_decision",
	"extract_content":  "extract_content",
	"done":             "done",
}

func actionItem(toolName string, arguments any) map[string]any {
	key, ok := toolActionShapes[toolName]
	if !ok {
		key = toolName
	}
	params, _ := arguments.(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	return map[string]any{key: params}
}

func (c *stepCollector) recordThought(toolName string, arguments any) {
	params, _ := arguments.(map[string]any)
	message, _ := params["message"].(string)

	switch toolName {
	case "log_action":
		c.logThought(c.thoughts.LogAction, message)
	case "log_observation":
		c.logThought(c.thoughts.LogObservation, message)
	case "log_decision":
		c.logThought(c.thoughts.LogDecision, message)
	case "screenshot", "take_screenshot", "take_screenshot_now":
		c.thoughts.CountScreenshot()
	}
}

func (c *stepCollector) logThought(log func(string) error, message string) {
	if message == "" {
		return
	}
	// A thought that fails to persist should not interrupt the session.
	_ = log(message)
}

func resultContent(result *copilot.Result) string {
	if result == nil {
		return ""
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
