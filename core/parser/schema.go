package parser

import (
	"encoding/json"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	"sigs.k8s.io/yaml"

	"github.com/specx2/apimarshal/core/ir"
)

// convertSchema renders proxy with every reference inlined and converts it to
// a JSON schema. Schemas that cannot be rendered (circular references)
// become the empty schema, which accepts anything.
func (p *OpenAPIParser) convertSchema(proxy *base.SchemaProxy) ir.Schema {
	if proxy == nil {
		return nil
	}
	schema := proxy.Schema()
	if schema == nil {
		return ir.Schema{}
	}

	rendered, err := schema.RenderInline()
	if err != nil {
		p.logger.Debug("schema not inlined", "error", err)
		return ir.Schema{}
	}

	data, err := yaml.YAMLToJSON(rendered)
	if err != nil {
		return ir.Schema{}
	}

	var schemaMap map[string]interface{}
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return ir.Schema{}
	}

	return ConvertToJSONSchema(schemaMap, p.openapi30)
}

// ConvertToJSONSchema rewrites OpenAPI schema dialect into JSON schema. For
// 3.0 documents "nullable: true" becomes an anyOf with null.
func ConvertToJSONSchema(openAPISchema map[string]interface{}, isOpenAPI30 bool) ir.Schema {
	result := make(ir.Schema)

	for key, value := range openAPISchema {
		switch key {
		case "nullable":
			if isOpenAPI30 && value == true {
				continue
			}
			result[key] = value
		case "type":
			if isOpenAPI30 && openAPISchema["nullable"] == true {
				result["anyOf"] = []interface{}{
					map[string]interface{}{"type": value},
					map[string]interface{}{"type": "null"},
				}
				continue
			}
			result[key] = value
		case "properties":
			if props, ok := value.(map[string]interface{}); ok {
				convertedProps := make(map[string]interface{})
				for propName, propSchema := range props {
					if propMap, ok := propSchema.(map[string]interface{}); ok {
						convertedProps[propName] = ConvertToJSONSchema(propMap, isOpenAPI30)
					} else {
						convertedProps[propName] = propSchema
					}
				}
				result[key] = convertedProps
			} else {
				result[key] = value
			}
		case "items", "additionalProperties", "not":
			if nested, ok := value.(map[string]interface{}); ok {
				result[key] = ConvertToJSONSchema(nested, isOpenAPI30)
			} else {
				result[key] = value
			}
		case "allOf", "anyOf", "oneOf":
			if schemas, ok := value.([]interface{}); ok {
				convertedSchemas := make([]interface{}, len(schemas))
				for i, schema := range schemas {
					if schemaMap, ok := schema.(map[string]interface{}); ok {
						convertedSchemas[i] = ConvertToJSONSchema(schemaMap, isOpenAPI30)
					} else {
						convertedSchemas[i] = schema
					}
				}
				result[key] = convertedSchemas
			} else {
				result[key] = value
			}
		default:
			result[key] = value
		}
	}

	return result
}
