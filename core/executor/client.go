package executor

import (
	"net/http"
	"time"
)

// HTTPClient 发送已构建的请求。
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient 包装 http.Client，为每个尚未设置对应 Header 的请求补充默认 Header。
type DefaultHTTPClient struct {
	client  *http.Client
	headers http.Header
}

func NewDefaultHTTPClient() *DefaultHTTPClient {
	return &DefaultHTTPClient{
		client:  &http.Client{},
		headers: make(http.Header),
	}
}

func (c *DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	for key, values := range c.headers {
		if req.Header.Get(key) != "" {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return c.client.Do(req)
}

func (c *DefaultHTTPClient) WithTimeout(timeout time.Duration) *DefaultHTTPClient {
	c.client.Timeout = timeout
	return c
}

// WithHeaders 添加默认 Header，键名会被规范化。
func (c *DefaultHTTPClient) WithHeaders(headers map[string]string) *DefaultHTTPClient {
	for key, value := range headers {
		c.headers.Add(key, value)
	}
	return c
}

func (c *DefaultHTTPClient) Headers() http.Header {
	return c.headers.Clone()
}
