package apimarshal_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/mapper"
	"github.com/specx2/apimarshal/pkg/apimarshal"
)

type recorded struct {
	uri         string
	body        string
	contentType string
	apiKey      string
}

func newBackend(t *testing.T, status int, reply string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.uri = r.URL.RequestURI()
		rec.body = string(body)
		rec.contentType = r.Header.Get("Content-Type")
		rec.apiKey = r.Header.Get("X-Api-Key")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func operations() []ir.Operation {
	return []ir.Operation{
		{
			ID:      "getItem",
			Method:  "GET",
			Path:    "/items/{id}",
			Summary: "Fetch an item",
			Tags:    []string{"items", "items"},
			Input: ir.MustInputDefinition(
				ir.F("id", ir.InPath().WithSchema(ir.Schema{"type": "integer"})),
				ir.F("expand", ir.InQuery().WithSchema(ir.Schema{"type": "boolean"})),
			),
		},
		{
			ID:     "uploadItem",
			Method: "POST",
			Path:   "/items",
			Input: ir.MustInputDefinition(
				ir.F("data", ir.InBodyBinary().Require()),
			),
		},
	}
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNewServerRegistersTools(t *testing.T) {
	srv, err := apimarshal.NewServer(operations(),
		apimarshal.WithBaseURL("http://example.invalid"),
		apimarshal.WithCustomNames(map[string]string{"uploadItem": "upload"}),
	)
	require.NoError(t, err)

	tools := srv.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "getItem", tools[0].Name())
	assert.Equal(t, "upload", tools[1].Name())

	get := tools[0].Tool()
	assert.Equal(t, "Fetch an item", get.Description)
	require.NotNil(t, get.Annotations.ReadOnlyHint)
	assert.True(t, *get.Annotations.ReadOnlyHint)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(get.RawInputSchema, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []interface{}{"id"}, schema["required"])

	upload, ok := srv.Tool("upload")
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(upload.Tool().RawInputSchema, &schema))
	data := schema["properties"].(map[string]interface{})["data"].(map[string]interface{})
	assert.Equal(t, "base64", data["contentEncoding"])
}

func TestNewServerRejectsDuplicateToolNames(t *testing.T) {
	_, err := apimarshal.NewServer(operations(),
		apimarshal.WithCustomNames(map[string]string{"uploadItem": "getItem"}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tool name "getItem"`)
}

func TestToolRunSuccess(t *testing.T) {
	backend, rec := newBackend(t, http.StatusOK, `{"id":5,"name":"lamp"}`)
	srv, err := apimarshal.NewServer(operations(),
		apimarshal.WithBaseURL(backend.URL),
		apimarshal.WithHTTPClientConfig(&apimarshal.HTTPClientConfig{
			Headers: map[string]string{"X-Api-Key": "k"},
		}),
	)
	require.NoError(t, err)

	tool, ok := srv.Tool("getItem")
	require.True(t, ok)

	result, err := tool.Run(context.Background(), callRequest("getItem", map[string]interface{}{
		"id":     float64(5),
		"expand": "true",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError, resultText(t, result))

	assert.Equal(t, "/items/5?expand=true", rec.uri)
	assert.Equal(t, "k", rec.apiKey)
	assert.Equal(t, `{"id":5,"name":"lamp"}`, resultText(t, result))
	assert.Equal(t, map[string]interface{}{"id": json.Number("5"), "name": "lamp"}, result.StructuredContent)
}

func TestToolRunBinaryUpload(t *testing.T) {
	backend, rec := newBackend(t, http.StatusCreated, "ok")
	srv, err := apimarshal.NewServer(operations(), apimarshal.WithBaseURL(backend.URL))
	require.NoError(t, err)

	tool, _ := srv.Tool("uploadItem")
	result, err := tool.Run(context.Background(), callRequest("uploadItem", map[string]interface{}{
		"data": "aGVsbG8=",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, "hello", rec.body)
	assert.Equal(t, "application/octet-stream", rec.contentType)
	assert.Equal(t, "ok", resultText(t, result))
	assert.Nil(t, result.StructuredContent)
}

func TestToolRunErrors(t *testing.T) {
	backend, _ := newBackend(t, http.StatusNotFound, "no such item")
	srv, err := apimarshal.NewServer(operations(), apimarshal.WithBaseURL(backend.URL))
	require.NoError(t, err)
	get, _ := srv.Tool("getItem")
	upload, _ := srv.Tool("uploadItem")

	tests := []struct {
		name     string
		tool     *apimarshal.Tool
		args     map[string]interface{}
		contains string
	}{
		{name: "missing path variable", tool: get, args: map[string]interface{}{}, contains: "Parameter validation failed"},
		{name: "wrong type", tool: get, args: map[string]interface{}{"id": "abc"}, contains: "Parameter validation failed"},
		{name: "bad base64", tool: upload, args: map[string]interface{}{"data": "%%%"}, contains: "Failed to parse arguments"},
		{name: "http error", tool: get, args: map[string]interface{}{"id": float64(9)}, contains: "HTTP 404: Client Error - no such item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.tool.Run(context.Background(), callRequest(tt.tool.Name(), tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.contains)
		})
	}
}

func TestToolRunMissingPathVariableWithoutSchema(t *testing.T) {
	op := ir.Operation{
		ID:     "loose",
		Method: "GET",
		Path:   "/things/{id}",
		Input:  ir.MustInputDefinition(ir.F("id", ir.InPath().Optional())),
	}
	srv, err := apimarshal.NewServer([]ir.Operation{op}, apimarshal.WithBaseURL("http://example.invalid"))
	require.NoError(t, err)

	tool, _ := srv.Tool("loose")
	result, err := tool.Run(context.Background(), callRequest("loose", map[string]interface{}{"id": ""}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Failed to build request")
	assert.Contains(t, resultText(t, result), "id")
}

func TestNewServerOperationMaps(t *testing.T) {
	srv, err := apimarshal.NewServer(operations(),
		apimarshal.WithOperationMaps([]mapper.OperationMap{{Methods: []string{"POST"}, Exclude: true}}),
	)
	require.NoError(t, err)
	require.Len(t, srv.Tools(), 1)
	assert.Equal(t, "getItem", srv.Tools()[0].Name())
	assert.Equal(t, []string{"items"}, srv.Tools()[0].Operation().Tags)
}

func TestNewServerFromSpec(t *testing.T) {
	spec := []byte(`{
  "openapi": "3.1.0",
  "info": {"title": "Test", "version": "1.0.0"},
  "paths": {
    "/ping": {"get": {"operationId": "ping", "summary": "Ping"}}
  }
}`)

	srv, err := apimarshal.NewServerFromSpec(spec, apimarshal.WithBaseURL("http://example.invalid"))
	require.NoError(t, err)
	require.Len(t, srv.Tools(), 1)
	assert.Equal(t, "ping", srv.Tools()[0].Name())
	assert.Equal(t, "http://example.invalid", srv.Executor().Endpoint())

	_, err = apimarshal.NewServerFromSpec([]byte(`{"swagger":"2.0"}`))
	assert.Error(t, err)
}

func TestNewServerGlobalTags(t *testing.T) {
	srv, err := apimarshal.NewServer(operations(),
		apimarshal.WithGlobalTags("public", " public "),
		apimarshal.WithGlobalTags("v1"),
	)
	require.NoError(t, err)
	require.Len(t, srv.Tools(), 2)
	assert.Equal(t, []string{"items", "public", "v1"}, srv.Tools()[0].Operation().Tags)
	assert.Equal(t, []string{"public", "v1"}, srv.Tools()[1].Operation().Tags)
}

func TestNewServerInputSchemaExamples(t *testing.T) {
	op := ir.Operation{
		ID:     "search",
		Method: "GET",
		Path:   "/search",
		Input:  ir.MustInputDefinition(ir.F("q", ir.InQuery().WithSchema(ir.Schema{"type": "string"}).WithExample("lamp"))),
	}
	srv, err := apimarshal.NewServer([]ir.Operation{op})
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(srv.Tools()[0].Tool().RawInputSchema, &schema))
	q := schema["properties"].(map[string]interface{})["q"].(map[string]interface{})
	assert.Equal(t, []interface{}{"lamp"}, q["examples"])
}

func TestPrepareArguments(t *testing.T) {
	ops := operations()
	args := map[string]interface{}{"id": " 12 ", "expand": "true", "extra": "x"}

	values, err := apimarshal.PrepareArguments(ops[0], args)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12"), values["id"])
	assert.Equal(t, true, values["expand"])
	assert.Equal(t, "x", values["extra"])
	assert.Equal(t, " 12 ", args["id"])

	values, err = apimarshal.PrepareArguments(ops[1], map[string]interface{}{"data": "aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, ir.Binary("hello"), values["data"])

	_, err = apimarshal.PrepareArguments(ops[1], map[string]interface{}{"data": 5})
	assert.ErrorContains(t, err, "base64 string")
}
