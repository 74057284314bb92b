package internal

import (
	"context"
)

type contextKey string

const headersKey contextKey = "call_headers"

// CallHeaders returns headers attached to ctx for a single call.
func CallHeaders(ctx context.Context) map[string]string {
	if headers, ok := ctx.Value(headersKey).(map[string]string); ok {
		return headers
	}
	return nil
}

// WithCallHeaders attaches headers to ctx, merged over any already present.
func WithCallHeaders(ctx context.Context, headers map[string]string) context.Context {
	merged := make(map[string]string, len(headers))
	for k, v := range CallHeaders(ctx) {
		merged[k] = v
	}
	for k, v := range headers {
		merged[k] = v
	}
	return context.WithValue(ctx, headersKey, merged)
}
