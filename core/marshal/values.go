package marshal

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Values is an insertion-ordered set of wire name/value pairs. Setting a
// name that is already present replaces its value but keeps its position.
//
// Read methods are safe on a nil *Values, which behaves as an empty set.
type Values struct {
	om *orderedmap.OrderedMap[string, string]
}

// NewValues returns an empty set.
func NewValues() *Values {
	return &Values{om: orderedmap.New[string, string]()}
}

// ValuesOf builds a set from a name/value sequence. A dangling name gets an
// empty value.
func ValuesOf(pairs ...string) *Values {
	v := NewValues()
	for i := 0; i < len(pairs); i += 2 {
		if i+1 < len(pairs) {
			v.Set(pairs[i], pairs[i+1])
		} else {
			v.Set(pairs[i], "")
		}
	}
	return v
}

func (v *Values) Set(name, value string) {
	if v.om == nil {
		v.om = orderedmap.New[string, string]()
	}
	v.om.Set(name, value)
}

func (v *Values) Get(name string) (string, bool) {
	if v == nil || v.om == nil {
		return "", false
	}
	return v.om.Get(name)
}

func (v *Values) Len() int {
	if v == nil || v.om == nil {
		return 0
	}
	return v.om.Len()
}

// Range calls fn for each pair in insertion order until fn returns false.
func (v *Values) Range(fn func(name, value string) bool) {
	if v == nil || v.om == nil {
		return
	}
	for pair := v.om.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Names returns the names in insertion order.
func (v *Values) Names() []string {
	names := make([]string, 0, v.Len())
	v.Range(func(name, _ string) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Map returns an unordered copy.
func (v *Values) Map() map[string]string {
	m := make(map[string]string, v.Len())
	v.Range(func(name, value string) bool {
		m[name] = value
		return true
	})
	return m
}
