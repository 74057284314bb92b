package marshal

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// StringValue converts a single parameter value to its wire string.
//
// Strings pass through unchanged, large integers render as base-10 text,
// numbers and booleans use their canonical text form, and anything else is
// JSON encoded with nested large integers rendered as decimal strings and
// non-finite floats rendered as null.
func StringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case *big.Int:
		if v == nil {
			return "null"
		}
		return v.String()
	case big.Int:
		return v.String()
	case json.Number:
		return v.String()
	case bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return cast.ToString(v)
	}
	return encodeJSON(value)
}

func encodeJSON(value interface{}) string {
	var buf bytes.Buffer
	if err := writeJSON(&buf, jsonSafe(reflect.ValueOf(value), 0)); err != nil {
		return fmt.Sprint(value)
	}
	return buf.String()
}

func writeJSON(buf *bytes.Buffer, value interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

const maxDepth = 1000

var (
	bigIntType        = reflect.TypeOf(big.Int{})
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// jsonSafe walks v and returns an equivalent value in which every large
// integer is a decimal string and every non-finite float is nil. Structs
// become ordered objects following encoding/json field rules. Values that
// marshal themselves are left alone.
func jsonSafe(v reflect.Value, depth int) interface{} {
	if !v.IsValid() {
		return nil
	}
	if depth > maxDepth {
		return v.Interface()
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return jsonSafe(v.Elem(), depth+1)
	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem() == bigIntType {
			return v.Interface().(*big.Int).String()
		}
		if v.Type().Implements(jsonMarshalerType) || v.Type().Implements(textMarshalerType) {
			return v.Interface()
		}
		return jsonSafe(v.Elem(), depth+1)
	}

	if v.Type() == bigIntType {
		n := v.Interface().(big.Int)
		return n.String()
	}
	if m, ok := marshaler(v); ok {
		return m
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return v.Interface()
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key, ok := mapKey(iter.Key())
			if !ok {
				return v.Interface()
			}
			out[key] = jsonSafe(iter.Value(), depth+1)
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		fallthrough
	case reflect.Array:
		out := make([]interface{}, v.Len())
		for i := range out {
			out[i] = jsonSafe(v.Index(i), depth+1)
		}
		return out
	case reflect.Struct:
		return structObject(v, depth)
	}
	return v.Interface()
}

// marshaler returns v, or its address for pointer receivers, when it
// encodes itself.
func marshaler(v reflect.Value) (interface{}, bool) {
	t := v.Type()
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return v.Interface(), true
	}
	if v.CanAddr() {
		pt := reflect.PointerTo(t)
		if pt.Implements(jsonMarshalerType) || pt.Implements(textMarshalerType) {
			return v.Addr().Interface(), true
		}
	}
	return nil, false
}

func isMarshaler(v reflect.Value) bool {
	_, ok := marshaler(v)
	return ok
}

func mapKey(k reflect.Value) (string, bool) {
	if k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String(), true
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		text, err := tm.MarshalText()
		return string(text), err == nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), true
	}
	return "", false
}

func structObject(v reflect.Value, depth int) orderedObject {
	t := v.Type()
	obj := orderedObject{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := v.Field(i)

		if field.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Ptr {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct && inner.Type() != bigIntType && !isMarshaler(inner) {
				obj = append(obj, structObject(inner, depth+1)...)
				continue
			}
		}

		if name == "" {
			name = field.Name
		}
		if hasOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		obj = append(obj, objectField{name: name, value: jsonSafe(fv, depth+1)})
	}
	return obj
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

type objectField struct {
	name  string
	value interface{}
}

// orderedObject is a JSON object that keeps struct field order.
type orderedObject []objectField

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, field.name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, field.value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
