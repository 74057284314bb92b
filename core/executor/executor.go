// Package executor sends marshalled requests over HTTP.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/specx2/apimarshal/core/ir"
	"github.com/specx2/apimarshal/core/marshal"
)

// Executor 将操作输入编组为请求，并发送到同一个 endpoint。
type Executor struct {
	endpoint string
	client   HTTPClient
	logger   *slog.Logger
}

type Option func(*Executor)

func WithHTTPClient(client HTTPClient) Option {
	return func(e *Executor) {
		if client != nil {
			e.client = client
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New 创建 Executor。endpoint 是基础 URL，所有操作路径都拼接在其后。
func New(endpoint string, opts ...Option) *Executor {
	e := &Executor{
		endpoint: endpoint,
		client:   NewDefaultHTTPClient(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Endpoint() string {
	return e.endpoint
}

// Marshal 为 op 构建请求但不发送。
func (e *Executor) Marshal(op ir.Operation, values map[string]interface{}) (*marshal.Request, error) {
	return marshal.Marshal(op, e.endpoint, values)
}

// Execute 编组 values 并发送请求。
func (e *Executor) Execute(ctx context.Context, op ir.Operation, values map[string]interface{}) (*Response, error) {
	req, err := e.Marshal(op, values)
	if err != nil {
		return nil, err
	}
	return e.Do(ctx, req)
}

// Do 发送 req。状态码为 400 及以上时，同时返回响应和 *HTTPError。
func (e *Executor) Do(ctx context.Context, req *marshal.Request) (*Response, error) {
	logger := e.logger.With("call_id", uuid.NewString(), "method", req.Method, "url", req.URL)

	httpReq, err := NewHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}
	logger.Debug("request completed", "status", resp.StatusCode, "duration", time.Since(start), "bytes", len(body))

	if resp.StatusCode >= 400 {
		return resp, CreateHTTPError(resp.StatusCode, string(body))
	}
	return resp, nil
}
