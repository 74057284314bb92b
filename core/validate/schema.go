package validate

import (
	"github.com/specx2/apimarshal/core/ir"
)

// InputSchema describes the value record of def as a JSON schema object.
// Binary bodies are described as base64 strings.
func InputSchema(def ir.InputDefinition) ir.Schema {
	return inputSchema(def, true)
}

func inputSchema(def ir.InputDefinition, includeBinary bool) ir.Schema {
	properties := make(map[string]interface{}, def.Len())
	var required []string

	for _, f := range def.Fields() {
		spec := f.Spec
		binary := spec.IsBody() && spec.BodyKind == ir.BodyBinary
		if binary && !includeBinary {
			continue
		}

		prop := propertySchema(spec, binary)
		properties[f.Property] = prop
		if spec.Required {
			required = append(required, f.Property)
		}
	}

	schema := ir.Schema{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func propertySchema(spec ir.ParamSpec, binary bool) ir.Schema {
	var prop ir.Schema
	switch {
	case binary:
		prop = ir.Schema{"type": "string", "contentEncoding": "base64"}
	case spec.Schema != nil:
		prop = spec.Schema.Clone()
	case spec.IsBody() && spec.BodyKind == ir.BodyText:
		prop = ir.Schema{"type": "string"}
	default:
		prop = ir.Schema{}
	}

	if spec.Description != "" {
		if _, ok := prop["description"]; !ok {
			prop["description"] = spec.Description
		}
	}
	if spec.Example != nil && !binary {
		if _, ok := prop["examples"]; !ok {
			prop["examples"] = []interface{}{spec.Example}
		}
	}
	return prop
}
