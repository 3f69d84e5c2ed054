// Package template substitutes {{name}} placeholders in JSON-shaped values.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Substitute walks a JSON-shaped template and replaces every {{name}}
// occurrence in string leaves with the string form of bindings[name].
// Placeholders whose name has no binding stay in place verbatim. The input is
// never mutated; maps and slices come back as fresh structures.
func Substitute(tmpl any, bindings map[string]any) any {
	switch value := tmpl.(type) {
	case string:
		return SubstituteString(value, bindings)
	case map[string]any:
		result := make(map[string]any, len(value))
		for key, item := range value {
			result[key] = Substitute(item, bindings)
		}

		return result
	case []any:
		result := make([]any, len(value))
		for i, item := range value {
			result[i] = Substitute(item, bindings)
		}

		return result
	default:
		return tmpl
	}
}

// SubstituteString replaces every placeholder in a single string. A string
// may carry many placeholders; each is resolved independently.
func SubstituteString(s string, bindings map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-2]

		value, ok := bindings[name]
		if !ok {
			return match
		}

		return Stringify(value)
	})
}

// Stringify renders a binding value the way it would appear in JSON text.
// Whole numbers never pick up an exponent or trailing fraction.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
