package executor

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
)

// Response 是已完整读取的 HTTP 响应。
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType 返回不带参数的响应媒体类型。
func (r *Response) ContentType() string {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mediaType
}

// Result 在响应体是合法 JSON 时按 JSON 解码，否则按文本返回。数字保留为 json.Number。
func (r *Response) Result() interface{} {
	trimmed := bytes.TrimSpace(r.Body)
	if len(trimmed) == 0 {
		return ""
	}

	if !json.Valid(trimmed) {
		return string(r.Body)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var result interface{}
	if err := dec.Decode(&result); err != nil {
		return string(r.Body)
	}
	return result
}
