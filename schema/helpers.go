package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// IsTruthy applies the dashboard's rule for the error field of a response:
// nil, false, "", 0 and NaN are falsy; everything else is truthy.
func IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// ErrorText renders a truthy error field as a human-readable message.
func ErrorText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return "request failed"
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
