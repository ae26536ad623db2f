package utils

import "strings"

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// NormalizeWhitespace replaces runs of whitespace with a single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateRunes keeps the first maxLength characters of str, without an ellipsis.
func (s *StringHelper) TruncateRunes(str string, maxLength int) string {
	if maxLength < 0 {
		return str
	}

	count := 0
	for i := range str {
		if count == maxLength {
			return str[:i]
		}
		count++
	}

	return str
}
