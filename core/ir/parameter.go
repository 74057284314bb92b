package ir

// ParamSpec declares where one logical input property is placed on the wire.
type ParamSpec struct {
	Location Location
	// BodyKind is only meaningful when Location is LocationBody.
	BodyKind BodyKind
	// Name overrides the property name as the wire-level key.
	Name        string
	Required    bool
	Description string
	// Schema is the JSON schema of the value, used by validation and tool
	// schema generation. The marshaller never looks at it.
	Schema Schema
	// Example is carried through from imported definitions for documentation.
	Example interface{}
}

// InPath declares a path parameter.
func InPath() ParamSpec { return ParamSpec{Location: LocationPath, Required: true} }

// InQuery declares a query string parameter.
func InQuery() ParamSpec { return ParamSpec{Location: LocationQuery} }

// InHeader declares a header parameter.
func InHeader() ParamSpec { return ParamSpec{Location: LocationHeader} }

// InCookie declares a cookie parameter.
func InCookie() ParamSpec { return ParamSpec{Location: LocationCookie} }

// InBody declares a JSON encoded body.
func InBody() ParamSpec { return ParamSpec{Location: LocationBody, BodyKind: BodyJSON} }

// InBodyText declares a plain text body.
func InBodyText() ParamSpec { return ParamSpec{Location: LocationBody, BodyKind: BodyText} }

// InBodyBinary declares a raw binary body.
func InBodyBinary() ParamSpec { return ParamSpec{Location: LocationBody, BodyKind: BodyBinary} }

// Named returns a copy of p with a wire name override.
func (p ParamSpec) Named(name string) ParamSpec {
	p.Name = name
	return p
}

// WithSchema returns a copy of p carrying the given value schema.
func (p ParamSpec) WithSchema(schema Schema) ParamSpec {
	p.Schema = schema
	return p
}

// WithExample returns a copy of p carrying a sample value.
func (p ParamSpec) WithExample(example interface{}) ParamSpec {
	p.Example = example
	return p
}

// Optional returns a copy of p that does not require a value.
func (p ParamSpec) Optional() ParamSpec {
	p.Required = false
	return p
}

// Require returns a copy of p that requires a value.
func (p ParamSpec) Require() ParamSpec {
	p.Required = true
	return p
}

// WireName returns the key transmitted for property.
func (p ParamSpec) WireName(property string) string {
	if p.Name != "" {
		return p.Name
	}
	return property
}

// IsBody reports whether p is one of the body kinds.
func (p ParamSpec) IsBody() bool {
	return p.Location == LocationBody
}

// Tag is the textual location tag, with body kinds spelled out.
func (p ParamSpec) Tag() string {
	if p.IsBody() {
		return p.BodyKind.String()
	}
	return p.Location.String()
}

// Binary is a raw payload for body-binary parameters. It is never stringified.
type Binary []byte
