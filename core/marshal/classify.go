package marshal

import (
	"reflect"

	"github.com/specx2/apimarshal/core/ir"
)

// Params holds input values routed to their wire locations.
type Params struct {
	Path   *Values
	Query  *Values
	Header *Values
	Cookie *Values
	// Body is nil, a string, or the unconverted binary payload.
	Body        interface{}
	ContentType ir.ContentType
}

// Classify routes values into per-location buckets following def.
//
// Only properties declared in def are considered, in definition order.
// Absent and nil values are skipped. Body-binary payloads are passed through
// unconverted ([]byte becomes ir.Binary); every other value is converted with
// StringValue, including JSON bodies, so a string given for a JSON body is
// sent verbatim.
func Classify(def ir.InputDefinition, values map[string]interface{}) Params {
	params := Params{
		Path:   NewValues(),
		Query:  NewValues(),
		Header: NewValues(),
		Cookie: NewValues(),
	}

	for _, field := range def.Fields() {
		raw, ok := values[field.Property]
		if !ok || isNil(raw) {
			continue
		}

		spec := field.Spec
		if spec.IsBody() {
			params.Body = bodyValue(spec.BodyKind, raw)
			params.ContentType = spec.BodyKind.ContentType()
			continue
		}

		bucket := params.bucket(spec.Location)
		if bucket == nil {
			continue
		}
		bucket.Set(spec.WireName(field.Property), StringValue(raw))
	}

	return params
}

func (p Params) bucket(location ir.Location) *Values {
	switch location {
	case ir.LocationPath:
		return p.Path
	case ir.LocationQuery:
		return p.Query
	case ir.LocationHeader:
		return p.Header
	case ir.LocationCookie:
		return p.Cookie
	default:
		return nil
	}
}

func bodyValue(kind ir.BodyKind, raw interface{}) interface{} {
	if kind == ir.BodyBinary {
		if b, ok := raw.([]byte); ok {
			return ir.Binary(b)
		}
		return raw
	}
	return StringValue(raw)
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
