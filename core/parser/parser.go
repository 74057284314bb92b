// Package parser imports OpenAPI 3.0 and 3.1 documents as operations with
// input definitions.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"sigs.k8s.io/yaml"
)

// ParseError reports a document or operation that could not be imported.
type ParseError struct {
	Message string
	Path    string
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Option configures an OpenAPIParser.
type Option func(*OpenAPIParser)

// WithSpecURL sets the location relative references are resolved against.
func WithSpecURL(specURL string) Option {
	return func(p *OpenAPIParser) {
		p.specURL = specURL
	}
}

// WithLogger sets the logger used for skipped content.
func WithLogger(logger *slog.Logger) Option {
	return func(p *OpenAPIParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// DetectOpenAPIVersion returns the "openapi" field of a YAML or JSON document.
func DetectOpenAPIVersion(spec []byte) (string, error) {
	var raw struct {
		OpenAPI string `json:"openapi"`
		Swagger string `json:"swagger"`
	}
	if err := yaml.Unmarshal(spec, &raw); err != nil {
		return "", &ParseError{Message: "invalid document", Err: err}
	}
	if raw.OpenAPI == "" {
		if raw.Swagger != "" {
			return "", &ParseError{Message: fmt.Sprintf("unsupported swagger version: %s", raw.Swagger)}
		}
		return "", &ParseError{Message: "missing or invalid 'openapi' field"}
	}
	if !strings.HasPrefix(raw.OpenAPI, "3.0") && !strings.HasPrefix(raw.OpenAPI, "3.1") {
		return "", &ParseError{Message: fmt.Sprintf("unsupported OpenAPI version: %s", raw.OpenAPI)}
	}
	return raw.OpenAPI, nil
}
