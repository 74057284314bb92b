package ir

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrDuplicateProperty = errors.New("duplicate property")
	ErrMultipleBodies    = errors.New("more than one body parameter")
	ErrUnknownLocation   = errors.New("unknown parameter location")
	ErrEmptyProperty     = errors.New("empty property name")
)

// DefinitionError describes why a single property was rejected while
// building an InputDefinition.
type DefinitionError struct {
	Property string
	Err      error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("property %q: %v", e.Property, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// Field pairs a logical property name with its ParamSpec.
type Field struct {
	Property string
	Spec     ParamSpec
}

// F is shorthand for constructing a Field.
func F(property string, spec ParamSpec) Field {
	return Field{Property: property, Spec: spec}
}

// InputDefinition is an ordered mapping from property name to ParamSpec.
// Order follows construction and drives query string and cookie order.
// The zero value is an empty definition.
type InputDefinition struct {
	fields []Field
	index  map[string]int
	body   string
}

// NewInputDefinition validates and builds a definition. Every rejected
// field is reported; the returned error can be split with multierr.Errors.
func NewInputDefinition(fields ...Field) (InputDefinition, error) {
	def := InputDefinition{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	var err error
	for _, f := range fields {
		switch {
		case f.Property == "":
			err = multierr.Append(err, &DefinitionError{Property: f.Property, Err: ErrEmptyProperty})
			continue
		case !f.Spec.Location.Valid():
			err = multierr.Append(err, &DefinitionError{
				Property: f.Property,
				Err:      fmt.Errorf("%w: %v", ErrUnknownLocation, f.Spec.Location),
			})
			continue
		}

		if _, dup := def.index[f.Property]; dup {
			err = multierr.Append(err, &DefinitionError{Property: f.Property, Err: ErrDuplicateProperty})
			continue
		}

		if f.Spec.IsBody() {
			if def.body != "" {
				err = multierr.Append(err, &DefinitionError{
					Property: f.Property,
					Err:      fmt.Errorf("%w: already declared by %q", ErrMultipleBodies, def.body),
				})
				continue
			}
			def.body = f.Property
		}

		def.index[f.Property] = len(def.fields)
		def.fields = append(def.fields, f)
	}

	if err != nil {
		return InputDefinition{}, err
	}
	return def, nil
}

// MustInputDefinition is like NewInputDefinition but panics on error.
func MustInputDefinition(fields ...Field) InputDefinition {
	def, err := NewInputDefinition(fields...)
	if err != nil {
		panic(err)
	}
	return def
}

// Len returns the number of properties.
func (d InputDefinition) Len() int {
	return len(d.fields)
}

// Fields returns the properties in definition order.
func (d InputDefinition) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Lookup returns the spec declared for property.
func (d InputDefinition) Lookup(property string) (ParamSpec, bool) {
	i, ok := d.index[property]
	if !ok {
		return ParamSpec{}, false
	}
	return d.fields[i].Spec, true
}

// BodyProperty returns the name of the body property, if any.
func (d InputDefinition) BodyProperty() (string, bool) {
	return d.body, d.body != ""
}
