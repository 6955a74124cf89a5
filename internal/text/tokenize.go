package text

import "strings"

// Tokenize splits normalized text on whitespace runs. It performs no
// normalization; callers pass the output of Normalize.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, isSpace)
}
