// Package validate checks input values against the schemas carried by an
// input definition before they are marshalled.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/specx2/apimarshal/core/ir"
)

const schemaResource = "input.json"

// ValidationError wraps a schema violation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "input validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator validates value records for one input definition.
type Validator struct {
	schema *jsonschema.Schema
	binary map[string]bool
}

// New compiles the object schema of def. Binary body properties are not
// validated since their payloads have no JSON form.
func New(def ir.InputDefinition) (*Validator, error) {
	raw, err := json.Marshal(inputSchema(def, false))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema: %w", err)
	}

	schema, err := compileJSONSchema(raw)
	if err != nil {
		return nil, err
	}

	binary := make(map[string]bool)
	for _, f := range def.Fields() {
		if f.Spec.IsBody() && f.Spec.BodyKind == ir.BodyBinary {
			binary[f.Property] = true
		}
	}

	return &Validator{schema: schema, binary: binary}, nil
}

// Validate checks values. Nil values count as absent.
func (v *Validator) Validate(values map[string]interface{}) error {
	doc := make(map[string]interface{}, len(values))
	for name, value := range values {
		if value == nil || v.binary[name] {
			continue
		}
		doc[name] = value
	}

	normalized, err := normalize(doc)
	if err != nil {
		return &ValidationError{Err: err}
	}

	if err := v.schema.Validate(normalized); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

func compileJSONSchema(raw json.RawMessage) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaResource, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add input schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile input schema: %w", err)
	}
	return schema, nil
}

// normalize round-trips value through JSON so the validator sees the same
// types a decoded request would have. Numbers stay exact.
func normalize(value interface{}) (interface{}, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
