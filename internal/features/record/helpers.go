package record

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseInt64 parses a string or number into an int64
func ParseInt64(val interface{}, defaultVal int64) int64 {
	if val == nil {
		return defaultVal
	}
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
	}
	return defaultVal
}

// SortOrder maps "asc"/"desc" to a Mongo sort direction, descending by default
func SortOrder(s string) int {
	if strings.EqualFold(s, "asc") {
		return 1
	}
	return -1
}

// sanitizeData drops keys that would be interpreted as operators or paths by the store
func sanitizeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			continue
		}
		out[k] = v
	}
	return out
}
