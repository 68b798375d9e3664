package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
	"github.com/AdarshSingh-ASR/WebSentinel/schemas"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// instructionsSchema is the compiled JSON Schema for instruction files.
var instructionsSchema *jsonschema.Schema

func init() {
	instructionsSchema = mustCompileSchema(schemas.TaskInstructionsSchemaJSON, "task_instructions.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// LoadInstructions reads a task instruction file, JSON or YAML by
// extension, validates it against the embedded schema, and decodes it.
func LoadInstructions(path string) (models.TaskInstructions, error) {
	var instr models.TaskInstructions

	data, err := os.ReadFile(path)
	if err != nil {
		return instr, fmt.Errorf("reading instructions file: %w", err)
	}

	var doc any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return instr, fmt.Errorf("parsing %s: %w", path, err)
		}
		doc = convertToJSONCompatible(doc)
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return instr, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if errs := validateInstructions(doc); len(errs) > 0 {
		return instr, fmt.Errorf("invalid instructions in %s:\n  %s", path, strings.Join(errs, "\n  "))
	}

	// Round-trip through JSON so both formats decode via the json tags.
	raw, err := json.Marshal(doc)
	if err != nil {
		return instr, err
	}
	if err := json.Unmarshal(raw, &instr); err != nil {
		return instr, fmt.Errorf("decoding %s: %w", path, err)
	}
	return instr, nil
}

// ValidateInstructionsBytes validates raw JSON against the instruction
// schema and returns one message per violation.
func ValidateInstructionsBytes(data []byte) []string {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	return validateInstructions(doc)
}

func validateInstructions(instance any) []string {
	err := instructionsSchema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible converts YAML-decoded values to JSON-compatible
// types. yaml.v3 decodes to map[string]any which is fine, but nested
// containers need the same treatment.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
