package marshal

import "strings"

// BuildURL concatenates endpoint, the resolved path template and the query
// string. No separators are inserted, so template should begin with '/'.
func BuildURL(endpoint, template string, pathVars, queryVars *Values) (string, error) {
	path, err := BuildPath(template, pathVars)
	if err != nil {
		return "", err
	}
	return endpoint + path + BuildQuery(queryVars), nil
}

// HTTPMethod upper-cases a method token for the wire. Verbs are not validated.
func HTTPMethod(method string) string {
	return strings.ToUpper(method)
}
