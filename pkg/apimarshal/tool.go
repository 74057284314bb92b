package apimarshal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/specx2/apimarshal/core/executor"
	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/validate"
)

// Tool serves one operation as an MCP tool.
type Tool struct {
	tool      mcp.Tool
	op        ir.Operation
	validator *validate.Validator
	executor  *executor.Executor
	logger    *slog.Logger
}

// NewTool builds the tool for op. Its input schema is derived from the
// operation's input definition.
func NewTool(name string, op ir.Operation, exec *executor.Executor, logger *slog.Logger) (*Tool, error) {
	inputSchemaJSON, err := json.Marshal(validate.InputSchema(op.Input))
	if err != nil {
		return nil, fmt.Errorf("tool %s: failed to marshal input schema: %w", name, err)
	}

	validator, err := validate.New(op.Input)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	options := []mcp.ToolOption{
		mcp.WithDescription(toolDescription(op)),
		mcp.WithRawInputSchema(inputSchemaJSON),
	}
	if derived := deriveToolAnnotations(op.Method, op.Summary); derived != nil {
		options = append(options, mcp.WithToolAnnotation(*derived))
	}

	tool := mcp.NewTool(name, options...)
	tool.Meta = mcp.NewMetaFromMap(buildToolMeta(op))

	if logger == nil {
		logger = slog.Default()
	}

	return &Tool{
		tool:      tool,
		op:        op,
		validator: validator,
		executor:  exec,
		logger:    logger.With("tool", name),
	}, nil
}

func (t *Tool) Tool() mcp.Tool {
	return t.tool
}

func (t *Tool) Name() string {
	return t.tool.Name
}

func (t *Tool) Operation() ir.Operation {
	return t.op
}

// Run handles a tools/call request. Failures are reported as error results,
// never as Go errors.
func (t *Tool) Run(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		args = make(map[string]interface{})
	}
	t.logger.Debug("tool called", "arguments", len(args))

	values, err := PrepareArguments(t.op, args)
	if err != nil {
		return errorResult("Failed to parse arguments: ", err), nil
	}

	if err := t.validator.Validate(values); err != nil {
		return errorResult("Parameter validation failed: ", err), nil
	}

	req, err := t.executor.Marshal(t.op, values)
	if err != nil {
		return errorResult("Failed to build request: ", err), nil
	}

	resp, err := t.executor.Do(ctx, req)
	if err != nil {
		var httpErr *executor.HTTPError
		if errors.As(err, &httpErr) {
			return errorResult("", httpErr), nil
		}
		return errorResult("Request failed: ", err), nil
	}

	return successResult(resp), nil
}

func toolDescription(op ir.Operation) string {
	switch {
	case op.Description != "":
		return op.Description
	case op.Summary != "":
		return op.Summary
	default:
		return strings.ToUpper(op.Method) + " " + op.Path
	}
}

func errorResult(prefix string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.NewTextContent(prefix + err.Error()),
		},
	}
}

func successResult(resp *executor.Response) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(resp.Body)),
		},
	}
	switch decoded := resp.Result().(type) {
	case map[string]interface{}:
		result.StructuredContent = decoded
	case []interface{}:
		result.StructuredContent = map[string]interface{}{"result": decoded}
	}
	return result
}

func buildToolMeta(op ir.Operation) map[string]any {
	operation := map[string]any{
		"method": strings.ToUpper(op.Method),
		"path":   op.Path,
	}
	if op.ID != "" {
		operation["operationId"] = op.ID
	}
	if op.Source != "" {
		operation["source"] = op.Source
	}
	if prop, ok := op.Input.BodyProperty(); ok {
		spec, _ := op.Input.Lookup(prop)
		operation["body"] = map[string]any{
			"property":    prop,
			"contentType": string(spec.BodyKind.ContentType()),
		}
	}

	meta := map[string]any{"operation": operation}
	if tags := uniqueStrings(op.Tags); len(tags) > 0 {
		meta["tags"] = tags
	}
	return meta
}

func deriveToolAnnotations(method, summary string) *mcp.ToolAnnotation {
	switch strings.ToUpper(method) {
	case "GET", "HEAD":
		return annotationFor(true, false, true, summary)
	case "PUT", "DELETE":
		return annotationFor(false, true, true, summary)
	default:
		return nil
	}
}

func annotationFor(readOnly, destructive, idempotent bool, summary string) *mcp.ToolAnnotation {
	openWorld := true
	return &mcp.ToolAnnotation{
		Title:           summary,
		ReadOnlyHint:    &readOnly,
		DestructiveHint: &destructive,
		IdempotentHint:  &idempotent,
		OpenWorldHint:   &openWorld,
	}
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
