package clientconfig

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Veraticus/claims-triage/internal/model"
)

const schemaURL = "client-config.schema.json"

func schemaDocument() map[string]any {
	rule := map[string]any{
		"type":                 "object",
		"required":             []string{"text", "category"},
		"additionalProperties": false,
		"properties": map[string]any{
			"text":     map[string]any{"type": "string", "minLength": 1},
			"category": map[string]any{"type": "string", "minLength": 1},
		},
	}
	rules := map[string]any{"type": "array", "items": rule}

	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"required":             []string{"name", "columns"},
		"additionalProperties": false,
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": 1},
			"columns": map[string]any{
				"type":                 "object",
				"minProperties":        1,
				"propertyNames":        map[string]any{"enum": model.LogicalFields},
				"additionalProperties": map[string]any{"type": "string", "pattern": `\S`},
			},
			"teams": map[string]any{
				"type":        "array",
				"uniqueItems": true,
				"items":       map[string]any{"type": "string", "minLength": 2},
			},
			"rules": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"edit": rules,
					"note": rules,
				},
			},
		},
	}
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaDocument())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(string(b))); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// validateDocument checks a decoded JSON document against the client file schema.
func validateDocument(doc []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return nil
}
