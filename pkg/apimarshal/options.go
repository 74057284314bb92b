package apimarshal

import (
	"log/slog"
	"time"

	"github.com/specx2/apimarshal/core/executor"
	"github.com/specx2/apimarshal/core/mapper"
	"github.com/specx2/apimarshal/core/parser"
)

// HTTPClientConfig describes the HTTP client used when no client is given.
type HTTPClientConfig struct {
	Timeout time.Duration
	Headers map[string]string
}

type ServerOptions struct {
	HTTPClient    executor.HTTPClient
	HTTPConfig    *HTTPClientConfig
	BaseURL       string
	CustomNames   map[string]string
	OperationMaps []mapper.OperationMap
	MapFunc       mapper.MapFunc
	GlobalTags    []string
	ParserOptions []parser.Option
	Logger        *slog.Logger
	ServerName    string
	ServerVersion string
}

func defaultServerOptions() *ServerOptions {
	return &ServerOptions{
		ServerName:    "apimarshal",
		ServerVersion: "1.0.0",
	}
}

type ServerOption func(*ServerOptions)

// WithHTTPClient sets the client used for every call. It takes precedence
// over WithHTTPClientConfig.
func WithHTTPClient(client executor.HTTPClient) ServerOption {
	return func(opts *ServerOptions) {
		opts.HTTPClient = client
	}
}

func WithHTTPClientConfig(cfg *HTTPClientConfig) ServerOption {
	return func(opts *ServerOptions) {
		opts.HTTPConfig = cfg
	}
}

// WithBaseURL sets the endpoint operation paths are appended to.
func WithBaseURL(url string) ServerOption {
	return func(opts *ServerOptions) {
		opts.BaseURL = url
	}
}

// WithCustomNames maps operation ids to tool names.
func WithCustomNames(names map[string]string) ServerOption {
	return func(opts *ServerOptions) {
		opts.CustomNames = names
	}
}

// WithOperationMaps filters and tags operations before they are registered.
// The first matching map decides.
func WithOperationMaps(maps []mapper.OperationMap) ServerOption {
	return func(opts *ServerOptions) {
		opts.OperationMaps = append(opts.OperationMaps, maps...)
	}
}

func WithMapFunc(fn mapper.MapFunc) ServerOption {
	return func(opts *ServerOptions) {
		opts.MapFunc = fn
	}
}

// WithGlobalTags adds tags to every served operation.
func WithGlobalTags(tags ...string) ServerOption {
	return func(opts *ServerOptions) {
		opts.GlobalTags = append(opts.GlobalTags, tags...)
	}
}

// WithParserOptions configures OpenAPI import in NewServerFromSpec.
func WithParserOptions(parserOpts ...parser.Option) ServerOption {
	return func(opts *ServerOptions) {
		opts.ParserOptions = append(opts.ParserOptions, parserOpts...)
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(opts *ServerOptions) {
		opts.Logger = logger
	}
}

func WithServerInfo(name, version string) ServerOption {
	return func(opts *ServerOptions) {
		opts.ServerName = name
		opts.ServerVersion = version
	}
}

func prepareHTTPClient(opts *ServerOptions) executor.HTTPClient {
	if opts.HTTPClient != nil {
		return opts.HTTPClient
	}

	client := executor.NewDefaultHTTPClient()
	if cfg := opts.HTTPConfig; cfg != nil {
		if cfg.Timeout > 0 {
			client.WithTimeout(cfg.Timeout)
		}
		client.WithHeaders(cfg.Headers)
	}
	return client
}
