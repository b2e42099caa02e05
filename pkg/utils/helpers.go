package utils

import (
	"strconv"
	"strings"
)

// ParseValue coerces a raw cell string into a typed scalar: int, float64 or
// the trimmed string itself.
func ParseValue(s string) interface{} {
	s = strings.TrimSpace(s)

	// try int
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
