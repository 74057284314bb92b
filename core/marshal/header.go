package marshal

import (
	"github.com/specx2/apimarshal/core/ir"
)

const (
	HeaderCookie      = "Cookie"
	HeaderContentType = "Content-Type"
)

// BuildHeaders adds the encoded cookies and the body content type to headers
// and returns it. The set is extended in place, not copied: BuildHeaders owns
// headers for the duration of the call and the caller must not reuse it for a
// different request. A nil headers starts a fresh set.
//
// Cookie is set only when cookies is non-empty and Content-Type only when
// contentType is non-empty. Either replaces an explicit header of the same
// name.
func BuildHeaders(headers, cookies *Values, contentType ir.ContentType) *Values {
	if headers == nil {
		headers = NewValues()
	}
	if encoded, ok := EncodeCookies(cookies); ok {
		headers.Set(HeaderCookie, encoded)
	}
	if contentType != "" {
		headers.Set(HeaderContentType, string(contentType))
	}
	return headers
}
