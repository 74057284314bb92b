// Package apimarshal serves operation definitions as MCP tools. Each call
// validates its arguments, marshals them into an HTTP request and returns
// the response.
package apimarshal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/specx2/apimarshal/core/executor"
	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/mapper"
	"github.com/specx2/apimarshal/core/parser"
)

type Server struct {
	mcpServer *server.MCPServer
	executor  *executor.Executor
	tools     []*Tool
	options   *ServerOptions
}

// NewServer registers one tool per operation.
func NewServer(operations []ir.Operation, opts ...ServerOption) (*Server, error) {
	options := defaultServerOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	exec := executor.New(options.BaseURL,
		executor.WithHTTPClient(prepareHTTPClient(options)),
		executor.WithLogger(options.Logger),
	)

	s := &Server{
		mcpServer: server.NewMCPServer(
			options.ServerName,
			options.ServerVersion,
			server.WithToolCapabilities(false),
		),
		executor: exec,
		options:  options,
	}

	if err := s.registerTools(operations); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return s, nil
}

// NewServerFromSpec imports an OpenAPI document and serves its operations.
func NewServerFromSpec(spec []byte, opts ...ServerOption) (*Server, error) {
	options := defaultServerOptions()
	for _, opt := range opts {
		opt(options)
	}

	operations, err := parser.Parse(spec, options.ParserOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spec: %w", err)
	}
	return NewServer(operations, opts...)
}

func (s *Server) registerTools(operations []ir.Operation) error {
	m := mapper.NewOperationMapper(s.options.OperationMaps).WithGlobalTags(s.options.GlobalTags...)
	if s.options.MapFunc != nil {
		m = m.WithMapFunc(s.options.MapFunc)
	}
	operations = m.Map(operations)

	names := make(map[string]string, len(operations))
	for _, op := range operations {
		name := s.toolName(op)
		if prev, dup := names[name]; dup {
			return fmt.Errorf("tool name %q used by %s and %s", name, prev, op.ID)
		}
		names[name] = op.ID

		tool, err := NewTool(name, op, s.executor, s.options.Logger)
		if err != nil {
			return err
		}
		s.mcpServer.AddTool(tool.Tool(), tool.Run)
		s.tools = append(s.tools, tool)
	}
	s.options.Logger.Info("tools registered", "count", len(s.tools), "endpoint", s.executor.Endpoint())
	return nil
}

func (s *Server) toolName(op ir.Operation) string {
	if name, ok := s.options.CustomNames[op.ID]; ok && name != "" {
		return name
	}
	if op.ID != "" {
		return op.ID
	}
	return parser.DefaultOperationID(op.Method, op.Path)
}

// Tools returns the registered tools in registration order.
func (s *Server) Tools() []*Tool {
	tools := make([]*Tool, len(s.tools))
	copy(tools, s.tools)
	return tools
}

// Tool returns the tool registered under name.
func (s *Server) Tool(name string) (*Tool, bool) {
	for _, t := range s.tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

func (s *Server) Executor() *executor.Executor {
	return s.executor
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over in and out until ctx is done or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
