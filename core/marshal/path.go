package marshal

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrPathVariableMissing = errors.New("path variable missing")

// PathVariableMissingError reports a template placeholder with no usable value.
type PathVariableMissingError struct {
	Name     string
	Template string
}

func (e *PathVariableMissingError) Error() string {
	return fmt.Sprintf("could not resolve path variable %q in %q", e.Name, e.Template)
}

func (e *PathVariableMissingError) Is(target error) bool {
	return target == ErrPathVariableMissing
}

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// BuildPath substitutes {name} placeholders in template with percent-encoded
// values from vars. A placeholder whose value is missing or empty fails with
// a *PathVariableMissingError; vars not referenced by the template are ignored.
func BuildPath(template string, vars *Values) (string, error) {
	var missing error
	path := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if missing != nil {
			return match
		}
		name := match[1 : len(match)-1]
		value, ok := vars.Get(name)
		if !ok || value == "" {
			missing = &PathVariableMissingError{Name: name, Template: template}
			return match
		}
		return PercentEncode(value)
	})
	if missing != nil {
		return "", missing
	}
	return path, nil
}

// componentUnescaper restores the characters that URI components may carry
// literally but url.QueryEscape escapes.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// PercentEncode escapes s as a single URI component: everything except
// A-Z a-z 0-9 and - _ . ! ~ * ' ( ) is percent-encoded.
func PercentEncode(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
