package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/specx2/apimarshal/core/internal"
	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/marshal"
)

// NewHTTPRequest 将编组后的请求转换为 *http.Request。通过 WithCallHeaders
// 附加到 ctx 的 Header 会覆盖同名的编组 Header。
func NewHTTPRequest(ctx context.Context, req *marshal.Request) (*http.Request, error) {
	body, err := bodyReader(req.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Range(func(name, value string) bool {
		httpReq.Header.Set(name, value)
		return true
	})
	for name, value := range internal.CallHeaders(ctx) {
		httpReq.Header.Set(name, value)
	}
	return httpReq, nil
}

// WithCallHeaders 附加 Header，基于 ctx 构建的每个请求都会携带。
func WithCallHeaders(ctx context.Context, headers map[string]string) context.Context {
	return internal.WithCallHeaders(ctx, headers)
}

func bodyReader(body interface{}) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(b), nil
	case ir.Binary:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported body type %T", body)
	}
}
