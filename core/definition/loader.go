// Package definition loads operation definitions from the native YAML
// format or from OpenAPI documents.
//
// A native file maps operation ids to their HTTP shape; input properties keep
// the order they are written in:
//
//	operations:
//	  getPet:
//	    method: GET
//	    path: /pets/{id}
//	    input:
//	      id: {in: path, schema: {type: integer}}
//	      verbose: {in: query, name: v}
//	      note: {in: body-text}
package definition

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/multierr"
	yaml "go.yaml.in/yaml/v4"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/parser"
)

var ErrNoOperations = errors.New("no operations defined")

// LoadError locates a problem in a definitions file.
type LoadError struct {
	Source    string
	Line      int
	Operation string
	Err       error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(":")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:", e.Line)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	if e.Operation != "" {
		fmt.Fprintf(&b, "operation %q: ", e.Operation)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type operationDoc struct {
	Method      string    `yaml:"method"`
	Path        string    `yaml:"path"`
	Summary     string    `yaml:"summary"`
	Description string    `yaml:"description"`
	Tags        []string  `yaml:"tags"`
	Input       yaml.Node `yaml:"input"`
}

type paramDoc struct {
	In          string      `yaml:"in"`
	Name        string      `yaml:"name"`
	Required    *bool       `yaml:"required"`
	Description string      `yaml:"description"`
	Schema      yaml.Node   `yaml:"schema"`
	Example     interface{} `yaml:"example"`
}

// LoadFile reads path and loads it with Load, or with the OpenAPI importer
// when the document declares an "openapi" or "swagger" version.
func LoadFile(path string, opts ...parser.Option) ([]ir.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}

	if isOpenAPI(data) {
		opts = append([]parser.Option{parser.WithSpecURL(path)}, opts...)
		ops, err := parser.Parse(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return ops, nil
	}
	return Load(data, path)
}

func isOpenAPI(data []byte) bool {
	var probe map[string]interface{}
	if err := sigsyaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, openapi := probe["openapi"]
	_, swagger := probe["swagger"]
	return openapi || swagger
}

// Load parses a native definitions document. source names the document in
// errors and in each operation's Source. All operation errors are reported.
func Load(data []byte, source string) ([]ir.Operation, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	operations := lookup(&root, "operations")
	if operations == nil || len(operations.Content) == 0 {
		return nil, &LoadError{Source: source, Err: ErrNoOperations}
	}
	if operations.Kind != yaml.MappingNode {
		return nil, &LoadError{Source: source, Line: operations.Line, Err: errors.New("operations must be a mapping")}
	}

	var (
		ops  []ir.Operation
		errs error
	)
	for i := 0; i+1 < len(operations.Content); i += 2 {
		key, value := operations.Content[i], operations.Content[i+1]
		op, err := loadOperation(key.Value, value)
		if err != nil {
			errs = multierr.Append(errs, &LoadError{Source: source, Line: key.Line, Operation: key.Value, Err: err})
			continue
		}
		if source != "" {
			op.Source = fmt.Sprintf("%s:%d", source, key.Line)
		}
		ops = append(ops, op)
	}
	if errs != nil {
		return nil, errs
	}
	return ops, nil
}

func loadOperation(id string, node *yaml.Node) (ir.Operation, error) {
	var doc operationDoc
	if err := node.Decode(&doc); err != nil {
		return ir.Operation{}, err
	}

	method := strings.ToUpper(strings.TrimSpace(doc.Method))
	if method == "" {
		method = http.MethodGet
	}
	if doc.Path == "" {
		return ir.Operation{}, errors.New("path is required")
	}

	fields, err := loadInput(&doc.Input)
	if err != nil {
		return ir.Operation{}, err
	}
	def, err := ir.NewInputDefinition(fields...)
	if err != nil {
		return ir.Operation{}, err
	}

	return ir.Operation{
		ID:          id,
		Method:      method,
		Path:        doc.Path,
		Summary:     doc.Summary,
		Description: doc.Description,
		Tags:        doc.Tags,
		Input:       def,
	}, nil
}

func loadInput(node *yaml.Node) ([]ir.Field, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: input must be a mapping", node.Line)
	}

	fields := make([]ir.Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var doc paramDoc
		if err := value.Decode(&doc); err != nil {
			return nil, fmt.Errorf("line %d: input %q: %w", key.Line, key.Value, err)
		}

		spec, err := paramSpec(doc)
		if err != nil {
			return nil, fmt.Errorf("line %d: input %q: %w", key.Line, key.Value, err)
		}
		fields = append(fields, ir.F(key.Value, spec))
	}
	return fields, nil
}

func paramSpec(doc paramDoc) (ir.ParamSpec, error) {
	location, kind, err := ir.ParseLocation(doc.In)
	if err != nil {
		return ir.ParamSpec{}, err
	}

	spec := ir.ParamSpec{
		Location:    location,
		BodyKind:    kind,
		Name:        doc.Name,
		Required:    location == ir.LocationPath,
		Description: doc.Description,
		Example:     doc.Example,
	}
	if doc.Required != nil {
		spec.Required = *doc.Required
	}

	if doc.Schema.Kind != 0 {
		schema, err := schemaFromNode(&doc.Schema)
		if err != nil {
			return ir.ParamSpec{}, err
		}
		spec.Schema = schema
	}
	return spec, nil
}

// schemaFromNode converts a YAML schema to its JSON form so numbers and maps
// have the types a JSON schema compiler expects.
func schemaFromNode(node *yaml.Node) (ir.Schema, error) {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return nil, err
	}
	data, err := sigsyaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	var schema ir.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("schema must be a mapping: %w", err)
	}
	return schema, nil
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
