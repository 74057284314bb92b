package executor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// HTTPError 表示状态码为 400 及以上的响应。
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Message, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// CreateHTTPError 根据响应状态码和响应体构建 HTTPError。
func CreateHTTPError(statusCode int, body string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    statusMessage(statusCode),
		Body:       body,
	}
}

func statusMessage(statusCode int) string {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return "Client Error"
	case statusCode >= 500 && statusCode < 600:
		return "Server Error"
	default:
		return http.StatusText(statusCode)
	}
}

// IsRetryableError 判断失败的调用重试后是否可能成功（5xx、408、429 响应，
// 超时以及连接失败）。
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 ||
			httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode == http.StatusRequestTimeout
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errorStr := strings.ToLower(err.Error())
	return strings.Contains(errorStr, "timeout") ||
		strings.Contains(errorStr, "connection") ||
		strings.Contains(errorStr, "network")
}
