package ir

type Schema map[string]interface{}

func (s Schema) Type() string {
	if t, ok := s["type"].(string); ok {
		return t
	}
	return ""
}

func (s Schema) Properties() map[string]Schema {
	props := make(map[string]Schema)
	if p, ok := s["properties"].(map[string]interface{}); ok {
		for k, v := range p {
			if schema, ok := v.(map[string]interface{}); ok {
				props[k] = schema
				continue
			}
			if nested, ok := v.(Schema); ok {
				props[k] = nested
			}
		}
	}
	return props
}

// Clone returns a shallow copy; nested values are shared.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	cloned := make(Schema, len(s))
	for k, v := range s {
		cloned[k] = v
	}
	return cloned
}
