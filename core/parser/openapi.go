package parser

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"

	"github.com/specx2/apimarshal/core/ir"
)

// BodyProperty is the property name given to an imported request body.
const BodyProperty = "body"

var operationIDCleaner = regexp.MustCompile(`[^A-Za-z0-9]+`)

// OpenAPIParser converts OpenAPI documents into operations.
type OpenAPIParser struct {
	specURL   string
	logger    *slog.Logger
	version   string
	openapi30 bool
}

// NewParser returns a parser configured by opts.
func NewParser(opts ...Option) *OpenAPIParser {
	p := &OpenAPIParser{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is a shorthand for NewParser(opts...).ParseSpec(spec).
func Parse(spec []byte, opts ...Option) ([]ir.Operation, error) {
	return NewParser(opts...).ParseSpec(spec)
}

// GetVersion returns the version of the last parsed document.
func (p *OpenAPIParser) GetVersion() string {
	return p.version
}

// ParseSpec imports every operation of spec in document order. Methods of a
// path item are visited in a fixed order.
func (p *OpenAPIParser) ParseSpec(spec []byte) ([]ir.Operation, error) {
	version, err := DetectOpenAPIVersion(spec)
	if err != nil {
		return nil, err
	}
	p.version = version
	p.openapi30 = strings.HasPrefix(version, "3.0")

	document, err := p.loadDocument(spec)
	if err != nil {
		return nil, &ParseError{Message: "failed to create document", Err: err}
	}
	model, err := document.BuildV3Model()
	if err != nil {
		return nil, &ParseError{Message: "failed to build v3 model", Err: err}
	}

	doc := model.Model
	var operations []ir.Operation
	if doc.Paths == nil || doc.Paths.PathItems == nil {
		return operations, nil
	}

	seen := make(map[string]string)
	for path, pathItem := range doc.Paths.PathItems.FromOldest() {
		if pathItem == nil {
			continue
		}

		for _, entry := range pathOperations(pathItem) {
			if entry.op == nil {
				continue
			}

			op, err := p.convertOperation(path, entry.method, pathItem.Parameters, entry.op)
			if err != nil {
				return nil, err
			}
			if prev, dup := seen[op.ID]; dup {
				return nil, &ParseError{
					Path:    op.Source,
					Message: fmt.Sprintf("operation id %q already used by %s", op.ID, prev),
				}
			}
			seen[op.ID] = op.Source
			operations = append(operations, op)
		}
	}

	p.logger.Debug("openapi document parsed", "version", version, "operations", len(operations))
	return operations, nil
}

type methodOperation struct {
	method string
	op     *v3.Operation
}

func pathOperations(item *v3.PathItem) []methodOperation {
	return []methodOperation{
		{http.MethodGet, item.Get},
		{http.MethodPut, item.Put},
		{http.MethodPost, item.Post},
		{http.MethodDelete, item.Delete},
		{http.MethodOptions, item.Options},
		{http.MethodHead, item.Head},
		{http.MethodPatch, item.Patch},
		{http.MethodTrace, item.Trace},
	}
}

func (p *OpenAPIParser) convertOperation(path, method string, common []*v3.Parameter, operation *v3.Operation) (ir.Operation, error) {
	source := method + " " + path
	id := operation.OperationId
	if id == "" {
		id = DefaultOperationID(method, path)
	}

	params := mergeParameters(common, operation.Parameters)
	var body *bodyChoice
	if operation.RequestBody != nil {
		body = p.chooseBody(operation.RequestBody, source)
	}

	fields := p.convertInput(params, body)
	def, err := ir.NewInputDefinition(fields...)
	if err != nil {
		return ir.Operation{}, &ParseError{Path: source, Message: "invalid input definition", Err: err}
	}

	return ir.Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		Tags:        operation.Tags,
		Input:       def,
		Source:      source,
	}, nil
}

// DefaultOperationID derives an id for operations that declare none, e.g.
// "get_users_id" for GET /users/{id}.
func DefaultOperationID(method, path string) string {
	cleaned := strings.Trim(operationIDCleaner.ReplaceAllString(path, "_"), "_")
	if cleaned == "" {
		return strings.ToLower(method)
	}
	return strings.ToLower(method) + "_" + cleaned
}

// mergeParameters lets operation parameters replace path-item parameters
// with the same name and location.
func mergeParameters(common, own []*v3.Parameter) []*v3.Parameter {
	key := func(param *v3.Parameter) string {
		return strings.ToLower(param.In) + ":" + param.Name
	}

	overridden := make(map[string]bool, len(own))
	for _, param := range own {
		if param != nil {
			overridden[key(param)] = true
		}
	}

	merged := make([]*v3.Parameter, 0, len(common)+len(own))
	for _, param := range common {
		if param != nil && !overridden[key(param)] {
			merged = append(merged, param)
		}
	}
	for _, param := range own {
		if param != nil {
			merged = append(merged, param)
		}
	}
	return merged
}

// convertInput maps parameters and the chosen body to fields. A wire name
// used by more than one location, or equal to the body property, gets the
// property name "<name>__<location>" and keeps its wire name as override.
func (p *OpenAPIParser) convertInput(params []*v3.Parameter, body *bodyChoice) []ir.Field {
	counts := make(map[string]int, len(params)+1)
	for _, param := range params {
		counts[param.Name]++
	}
	if body != nil {
		counts[BodyProperty]++
	}

	fields := make([]ir.Field, 0, len(params)+1)
	for _, param := range params {
		location, _, err := ir.ParseLocation(param.In)
		if err != nil || location == ir.LocationBody {
			p.logger.Debug("parameter skipped", "name", param.Name, "in", param.In)
			continue
		}

		spec := ir.ParamSpec{
			Location:    location,
			Required:    location == ir.LocationPath || (param.Required != nil && *param.Required),
			Description: param.Description,
			Schema:      p.parameterSchema(param),
			Example:     exampleValue(param.Example),
		}

		property := param.Name
		if counts[param.Name] > 1 {
			property = param.Name + "__" + location.String()
			spec.Name = param.Name
		}
		fields = append(fields, ir.F(property, spec))
	}

	if body != nil {
		spec := ir.ParamSpec{
			Location:    ir.LocationBody,
			BodyKind:    body.kind,
			Required:    body.required,
			Description: body.description,
			Schema:      body.schema,
		}
		fields = append(fields, ir.F(BodyProperty, spec))
	}
	return fields
}

func (p *OpenAPIParser) parameterSchema(param *v3.Parameter) ir.Schema {
	if param.Schema != nil {
		return p.convertSchema(param.Schema)
	}
	// content-style parameters carry their schema in a single media type
	if param.Content != nil {
		for _, media := range param.Content.FromOldest() {
			if media != nil && media.Schema != nil {
				return p.convertSchema(media.Schema)
			}
		}
	}
	return nil
}

type bodyChoice struct {
	kind        ir.BodyKind
	mediaType   string
	schema      ir.Schema
	required    bool
	description string
}

// chooseBody picks the media type of a request body: JSON first, then any
// text type, then the first remaining one sent as raw bytes.
func (p *OpenAPIParser) chooseBody(requestBody *v3.RequestBody, source string) *bodyChoice {
	if requestBody.Content == nil || requestBody.Content.Len() == 0 {
		return nil
	}

	mediaType, media, kind := selectMediaType(requestBody.Content)
	choice := &bodyChoice{
		kind:        kind,
		mediaType:   mediaType,
		required:    requestBody.Required != nil && *requestBody.Required,
		description: requestBody.Description,
	}
	if kind != ir.BodyBinary && media != nil {
		choice.schema = p.convertSchema(media.Schema)
	}
	if requestBody.Content.Len() > 1 {
		p.logger.Debug("request body media type selected", "operation", source, "media_type", mediaType)
	}
	return choice
}

func selectMediaType(content *orderedmap.Map[string, *v3.MediaType]) (string, *v3.MediaType, ir.BodyKind) {
	var (
		textType, otherType string
		textMedia           *v3.MediaType
		otherMedia          *v3.MediaType
	)

	for mediaType, media := range content.FromOldest() {
		switch mediaKind(mediaType) {
		case ir.BodyJSON:
			return mediaType, media, ir.BodyJSON
		case ir.BodyText:
			if textType == "" {
				textType, textMedia = mediaType, media
			}
		default:
			if otherType == "" {
				otherType, otherMedia = mediaType, media
			}
		}
	}

	if textType != "" {
		return textType, textMedia, ir.BodyText
	}
	return otherType, otherMedia, ir.BodyBinary
}

func mediaKind(mediaType string) ir.BodyKind {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return ir.BodyJSON
	case strings.HasPrefix(mt, "text/"):
		return ir.BodyText
	default:
		return ir.BodyBinary
	}
}
