package jobs

import (
	"fmt"
	"strconv"
	"strings"
)

// truthy interprets the mixed value kinds a parameter can arrive as:
// bools from YAML rules, strings from recovered metadata or overrides.
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case int:
		return val != 0
	case float64:
		return val != 0
	default:
		return false
	}
}

// asInt converts a parameter value to int. JSON decoding yields float64,
// YAML yields int, overrides yield strings.
func asInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// asFloat converts a parameter value to float64.
func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asStringSlice normalizes a parameter that should be a list of strings.
// Recovered metadata stores these as JSON arrays; a missing value yields
// an empty slice.
func asStringSlice(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = fmt.Sprintf("%v", item)
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return strings.Split(val, ",")
	default:
		return []string{fmt.Sprintf("%v", val)}
	}
}
