package trace

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// stepDecoder attempts to interpret one raw step. The decoders are tried in
// order and the first one that recognizes the shape wins; adding support
// for a new backend shape means appending one entry here.
type stepDecoder func(num int, raw models.RawStep) (models.NormalizedStep, bool)

var stepDecoders = []stepDecoder{
	decodeStructured,
	decodePair,
	decodeLoose,
}

// structuredStep mirrors the backend's fully structured history record: a
// model output holding typed actions and a parallel list of action results.
type structuredStep struct {
	ModelOutput structuredModelOutput `mapstructure:"model_output"`
	Result      []map[string]any      `mapstructure:"result"`
}

type structuredModelOutput struct {
	Action       []map[string]any `mapstructure:"action"`
	CurrentState map[string]any   `mapstructure:"current_state"`
}

type structuredResult struct {
	ExtractedContent string `mapstructure:"extracted_content"`
	Content          string `mapstructure:"content"`
	IsDone           bool   `mapstructure:"is_done"`
	Success          *bool  `mapstructure:"success"`
	Error            string `mapstructure:"error"`
}

// actionShapes maps the backend's single-key action records to our tags.
// Checked in order; the first key present on an action item decides its type.
var actionShapes = []struct {
	key   string
	typ   string
	build func(params map[string]any) map[string]any
}{
	{"go_to_url", models.ActionNavigate, func(p map[string]any) map[string]any {
		return map[string]any{"url": p["url"]}
	}},
	{"input_text", models.ActionInput, func(p map[string]any) map[string]any {
		return map[string]any{"text": p["text"], "index": p["index"]}
	}},
	{"click_element_by_index", models.ActionClick, func(p map[string]any) map[string]any {
		return map[string]any{"index": p["index"]}
	}},
	{"log_action", models.ActionLogAction, func(p map[string]any) map[string]any {
		return map[string]any{"message": p["message"]}
	}},
	{"log_observation", models.ActionLogObservation, func(p map[string]any) map[string]any {
		return map[string]any{"message": p["message"]}
	}},
	{"log_decision", models.ActionLogDecision, func(p map[string]any) map[string]any {
		return map[string]any{"message": p["message"]}
	}},
	{"done", models.ActionDone, func(p map[string]any) map[string]any {
		return map[string]any{"text": p["text"], "success": p["success"]}
	}},
	{"extract_content", models.ActionExtractContent, func(p map[string]any) map[string]any {
		return map[string]any{"goal": p["goal"]}
	}},
	{"take_screenshot_now", models.ActionScreenshot, func(p map[string]any) map[string]any {
		return map[string]any{"description": p["description"]}
	}},
}

func decodeStructured(num int, raw models.RawStep) (models.NormalizedStep, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return models.NormalizedStep{}, false
	}
	if _, hasOutput := m["model_output"]; !hasOutput {
		return models.NormalizedStep{}, false
	}
	if _, hasResult := m["result"]; !hasResult {
		return models.NormalizedStep{}, false
	}

	var s structuredStep
	if err := mapstructure.Decode(m, &s); err != nil {
		return models.NormalizedStep{}, false
	}

	actions := make([]models.StepAction, 0, len(s.ModelOutput.Action))
	for _, item := range s.ModelOutput.Action {
		actions = append(actions, classifyActionItem(item))
	}

	results := make([]models.StepResult, 0, len(s.Result))
	for _, item := range s.Result {
		var r structuredResult
		if err := mapstructure.Decode(item, &r); err != nil {
			continue
		}
		content := r.ExtractedContent
		if content == "" {
			content = r.Content
		}
		results = append(results, models.StepResult{
			Content: content,
			IsDone:  r.IsDone,
			Success: r.Success,
			Error:   r.Error,
		})
	}

	// Every result must either not report success or report true.
	succeeded := true
	for _, r := range results {
		if r.Success != nil && !*r.Success {
			succeeded = false
			break
		}
	}

	status := models.StepSuccess
	if !succeeded {
		status = models.StepFailed
	}

	step := models.NormalizedStep{
		StepNumber:    num,
		Actions:       actions,
		Results:       results,
		ActionSummary: fmt.Sprintf("Step %d: %s", num, joinActionTypes(actions)),
		ResultSummary: fmt.Sprintf("Completed %d actions", len(results)),
		SuccessStatus: status,
		Details: map[string]any{
			"actions": actionMaps(actions),
		},
	}
	if len(s.ModelOutput.CurrentState) > 0 {
		step.Details["brain_state"] = s.ModelOutput.CurrentState
	}
	return step, true
}

func decodePair(num int, raw models.RawStep) (models.NormalizedStep, bool) {
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() < 2 {
		return models.NormalizedStep{}, false
	}

	actionText := coerceString(rv.Index(0).Interface())
	resultText := coerceString(rv.Index(1).Interface())

	step := models.NormalizedStep{
		StepNumber:    num,
		Actions:       []models.StepAction{},
		Results:       []models.StepResult{},
		ActionSummary: extractActionSummary(actionText),
		ResultSummary: extractResultSummary(resultText),
		SuccessStatus: determineSuccessStatus(resultText),
		Details: map[string]any{
			"raw_action":  actionText,
			"raw_result":  resultText,
			"action_type": classifyActionType(actionText),
		},
	}
	return step, true
}

// Field names probed, in priority order, when a map has no recognized
// structure. The first present non-empty field per category wins.
var (
	actionFields    = []string{"model_output", "action", "input", "query", "tool_calls"}
	resultFields    = []string{"result", "output", "response", "content"}
	timestampFields = []string{"timestamp", "time", "created_at"}
)

func decodeLoose(num int, raw models.RawStep) (models.NormalizedStep, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return models.NormalizedStep{}, false
	}

	step := placeholderStep(num)
	step.Details = map[string]any{}

	if actionText, found := probeFields(m, actionFields); found {
		step.ActionSummary = extractActionSummary(actionText)
		step.Details["raw_action"] = actionText
		step.Details["action_type"] = classifyActionType(actionText)
	}
	if resultText, found := probeFields(m, resultFields); found {
		step.ResultSummary = extractResultSummary(resultText)
		step.SuccessStatus = determineSuccessStatus(resultText)
		step.Details["raw_result"] = resultText
	}
	if ts, found := probeFields(m, timestampFields); found {
		step.Details["timestamp"] = ts
	}
	return step, true
}

func probeFields(m map[string]any, fields []string) (string, bool) {
	for _, field := range fields {
		v, present := m[field]
		if !present || v == nil {
			continue
		}
		s := coerceString(v)
		if s != "" && s != "N/A" {
			return s, true
		}
	}
	return "", false
}

func classifyActionItem(item map[string]any) models.StepAction {
	for _, shape := range actionShapes {
		v, present := item[shape.key]
		if !present || v == nil {
			continue
		}
		params, _ := v.(map[string]any)
		if params == nil {
			params = map[string]any{}
		}
		return models.StepAction{Type: shape.typ, Details: shape.build(params)}
	}
	return models.StepAction{Type: models.ActionUnknown, Details: map[string]any{}}
}

func joinActionTypes(actions []models.StepAction) string {
	if len(actions) == 0 {
		return models.ActionUnknown
	}
	out := ""
	for i, a := range actions {
		if i > 0 {
			out += ", "
		}
		out += a.Type
	}
	return out
}

func actionMaps(actions []models.StepAction) []map[string]any {
	out := make([]map[string]any, 0, len(actions))
	for _, a := range actions {
		out = append(out, map[string]any{"type": a.Type, "details": a.Details})
	}
	return out
}

func coerceString(v any) string {
	if v == nil {
		return "N/A"
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
