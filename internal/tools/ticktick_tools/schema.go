package ticktick_tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

const taskItemSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "project_id"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "project_id": {"type": "string", "minLength": 1},
    "content": {"type": "string"},
    "desc": {"type": "string"},
    "start_date": {"type": "string"},
    "due_date": {"type": "string"},
    "time_zone": {"type": "string"},
    "priority": {"type": "integer", "enum": [0, 1, 3, 5]},
    "is_all_day": {"type": "boolean"},
    "sort_order": {"type": "integer", "minimum": 0}
  }
}`

const subtaskItemSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "content": {"type": "string"},
    "priority": {"type": "integer", "enum": [0, 1, 3, 5]}
  }
}`

var (
	taskItemSchema    = jsonschema.MustCompileString("task_item.json", taskItemSchemaJSON)
	subtaskItemSchema = jsonschema.MustCompileString("subtask_item.json", subtaskItemSchemaJSON)
)

// validateItem checks item against schema and converts the most specific
// violation into a ValidationError.
func validateItem(schema *jsonschema.Schema, item map[string]interface{}) error {
	err := schema.Validate(item)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return errors.Wrap(err, "schema validation failed")
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	return ticktick.NewValidationError(field, "%s", leaf.Message)
}

// itemsSchema returns raw as a map for mcp.Items so the advertised tool
// schema and the validation schema stay the same document.
func itemsSchema(raw string) map[string]any {
	var schema map[string]any
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		panic(fmt.Sprintf("invalid item schema: %v", err))
	}
	delete(schema, "$schema")
	return schema
}
