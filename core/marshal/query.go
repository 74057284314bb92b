package marshal

import "strings"

// BuildQuery renders vars as a query string with a leading '?'. Names and
// values are percent-encoded and pairs keep insertion order. An empty set
// yields the empty string.
func BuildQuery(vars *Values) string {
	if vars.Len() == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteByte('?')
	first := true
	vars.Range(func(name, value string) bool {
		if !first {
			b.WriteByte('&')
		}
		first = false
		b.WriteString(PercentEncode(name))
		b.WriteByte('=')
		b.WriteString(PercentEncode(value))
		return true
	})
	return b.String()
}

// EncodeCookies joins cookies as name=value pairs separated by ';' without
// any escaping. It reports false when there are no cookies, in which case no
// Cookie header should be sent.
func EncodeCookies(cookies *Values) (string, bool) {
	if cookies.Len() == 0 {
		return "", false
	}

	pairs := make([]string, 0, cookies.Len())
	cookies.Range(func(name, value string) bool {
		pairs = append(pairs, name+"="+value)
		return true
	})
	return strings.Join(pairs, ";"), true
}
