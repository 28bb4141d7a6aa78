package todo

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// todosSchema validates the "todos" slot before it is trusted. Legacy
// payloads may omit "archived" (and timestamps); those are migrated on load,
// not rejected.
const todosSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "text", "completed"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"text": {"type": "string"},
			"completed": {"type": "boolean"},
			"archived": {"type": "boolean"},
			"createdAt": {"type": "string"},
			"updatedAt": {"type": "string"}
		}
	}
}`

var compiledTodosSchema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("todos.schema.json", bytes.NewReader([]byte(todosSchema))); err != nil {
		panic(err)
	}
	return c.MustCompile("todos.schema.json")
}()

// validateTodosPayload checks raw against the slot schema.
func validateTodosPayload(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse todos slot: %w", err)
	}
	if err := compiledTodosSchema.Validate(doc); err != nil {
		return fmt.Errorf("validate todos slot: %w", err)
	}
	return nil
}
