package ir

import (
	"fmt"
	"strings"
)

// Location is where a parameter is placed in an HTTP request.
type Location int

const (
	LocationPath Location = iota + 1
	LocationQuery
	LocationHeader
	LocationCookie
	LocationBody
)

func (l Location) String() string {
	switch l {
	case LocationPath:
		return "path"
	case LocationQuery:
		return "query"
	case LocationHeader:
		return "header"
	case LocationCookie:
		return "cookie"
	case LocationBody:
		return "body"
	default:
		return fmt.Sprintf("Location(%d)", int(l))
	}
}

// Valid reports whether l is one of the declared locations.
func (l Location) Valid() bool {
	return l >= LocationPath && l <= LocationBody
}

// BodyKind selects how the single body parameter of an operation is serialized.
type BodyKind int

const (
	BodyJSON BodyKind = iota
	BodyText
	BodyBinary
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "body"
	case BodyText:
		return "body-text"
	case BodyBinary:
		return "body-binary"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// ContentType returns the wire content type for the body kind.
func (k BodyKind) ContentType() ContentType {
	switch k {
	case BodyBinary:
		return ContentTypeOctetStream
	case BodyText:
		return ContentTypeText
	default:
		return ContentTypeJSON
	}
}

// ContentType is a body media type. The zero value means no body.
type ContentType string

const (
	ContentTypeOctetStream ContentType = "application/octet-stream"
	ContentTypeJSON        ContentType = "application/json"
	ContentTypeText        ContentType = "text/plain"
)

// ParseLocation parses a location tag. The body tags "body", "body-text" and
// "body-binary" all map to LocationBody and differ only in the returned kind.
func ParseLocation(tag string) (Location, BodyKind, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "path":
		return LocationPath, BodyJSON, nil
	case "query":
		return LocationQuery, BodyJSON, nil
	case "header":
		return LocationHeader, BodyJSON, nil
	case "cookie":
		return LocationCookie, BodyJSON, nil
	case "body":
		return LocationBody, BodyJSON, nil
	case "body-text":
		return LocationBody, BodyText, nil
	case "body-binary":
		return LocationBody, BodyBinary, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownLocation, tag)
	}
}
