package apimarshal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/specx2/apimarshal/core/ir"
)

// PrepareArguments turns tool call arguments into a value record for op.
// Binary bodies are decoded from base64 and strings are coerced for numeric
// and boolean schemas. args is not modified.
func PrepareArguments(op ir.Operation, args map[string]interface{}) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(args))
	for name, value := range args {
		values[name] = value

		spec, ok := op.Input.Lookup(name)
		if !ok || value == nil {
			continue
		}

		if spec.IsBody() && spec.BodyKind == ir.BodyBinary {
			encoded, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%s: binary payload must be a base64 string", name)
			}
			decoded, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			values[name] = ir.Binary(decoded)
			continue
		}

		if coerced, changed := coerceValueForSchema(value, spec.Schema); changed {
			values[name] = coerced
		}
	}
	return values, nil
}

func coerceValueForSchema(value interface{}, schema ir.Schema) (interface{}, bool) {
	s, ok := value.(string)
	if !ok || schema == nil {
		return value, false
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" || schemaAllowsType(schema, "string") {
		return value, false
	}
	if schemaAllowsType(schema, "integer") {
		if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return json.Number(trimmed), true
		}
	}
	if schemaAllowsType(schema, "number") {
		if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return json.Number(trimmed), true
		}
	}
	if schemaAllowsType(schema, "boolean") {
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed, true
		}
	}
	return value, false
}

func schemaAllowsType(schema ir.Schema, typ string) bool {
	if schema == nil {
		return false
	}
	if schema.Type() == typ {
		return true
	}

	if rawTypes, ok := schema["type"].([]interface{}); ok {
		for _, item := range rawTypes {
			if s, ok := item.(string); ok && s == typ {
				return true
			}
		}
	}

	for _, key := range []string{"anyOf", "oneOf", "allOf"} {
		candidates, ok := schema[key].([]interface{})
		if !ok {
			continue
		}
		for _, candidate := range candidates {
			if m, ok := candidate.(map[string]interface{}); ok && schemaAllowsType(ir.Schema(m), typ) {
				return true
			}
			if m, ok := candidate.(ir.Schema); ok && schemaAllowsType(m, typ) {
				return true
			}
		}
	}
	return false
}
