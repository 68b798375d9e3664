// Package schemas embeds the JSON Schemas used to validate user-supplied
// files before they reach the rest of the system.
package schemas

import _ "embed"

// TaskInstructionsSchemaJSON is the JSON Schema for task instruction files.
//
//go:embed task_instructions.schema.json
var TaskInstructionsSchemaJSON string
