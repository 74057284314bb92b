// Package marshal turns an operation's input definition and a record of
// values into the pieces of an HTTP request: URL, headers and body.
//
// Everything here is pure and synchronous. Values are assumed to have been
// validated already; the only failure is a path placeholder without a value.
package marshal

import (
	"fmt"

	"github.com/specx2/apimarshal/core/ir"
)

// Request is a marshalled operation ready for a transport.
type Request struct {
	Method string
	URL    string
	Header *Values
	// Body is nil, a string, or a binary payload.
	Body        interface{}
	ContentType ir.ContentType
}

// HasBody reports whether the request carries a body.
func (r *Request) HasBody() bool {
	return r.Body != nil
}

// Marshal classifies values against op.Input and assembles the request for
// endpoint.
func Marshal(op ir.Operation, endpoint string, values map[string]interface{}) (*Request, error) {
	params := Classify(op.Input, values)

	u, err := BuildURL(endpoint, op.Path, params.Path, params.Query)
	if err != nil {
		if op.ID != "" {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		return nil, err
	}

	return &Request{
		Method:      HTTPMethod(op.Method),
		URL:         u,
		Header:      BuildHeaders(params.Header, params.Cookie, params.ContentType),
		Body:        params.Body,
		ContentType: params.ContentType,
	}, nil
}
