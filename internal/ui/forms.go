package ui

import (
	"strconv"
	"strings"
)

func formString(values map[string][]string, key string) string {
	if values == nil {
		return ""
	}
	return strings.TrimSpace(first(values[key]))
}

func formBool(values map[string][]string, key string) bool {
	v := strings.ToLower(formString(values, key))
	return v == "true" || v == "1" || v == "on" || v == "yes"
}

// formInt64s collects a repeated checkbox field, dropping values that do
// not parse.
func formInt64s(values map[string][]string, key string) []int64 {
	if values == nil {
		return nil
	}
	raw := values[key]
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
