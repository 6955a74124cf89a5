// Package text implements the encoding contract shared by the training
// pipeline and the on-device inference runtime: Normalize, Tokenize and
// Encode. Any change here changes persisted ids and must be mirrored by the
// inference side; contract_golden.json under testdata pins the behavior.
package text

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Wake-word misrecognitions are rewritten to the canonical wake word.
const (
	WakeWord = "aeva"

	// keptSymbols survive punctuation stripping so calculator utterances
	// like "2+2" or "3.5 * 4" keep their operators.
	keptSymbols = "+-*/^."
)

// Normalize canonicalizes raw text:
//  1. Lowercase (full Unicode case mapping).
//  2. Trim surrounding whitespace.
//  3. Rewrite the wake-word aliases "ava" and "eva" to "aeva".
//  4. Drop every rune that is not a letter, number, underscore, whitespace
//     or one of + - * / ^ .
//  5. Collapse whitespace runs to a single space and trim.
//
// Alias rewriting runs again after step 4 so aliases joined by stripped
// punctuation are corrected as well. Normalize is idempotent.
func Normalize(s string) string {
	// A Caser is stateful, so one is built per call; Normalize runs on
	// many goroutines during dataset assembly.
	s = cases.Lower(language.Und).String(s)
	s = TrimSpace(s)
	s = correctAliases(s)
	s = strings.Map(keepRune, s)
	s = correctAliases(s)

	return strings.Join(Tokenize(s), " ")
}

// correctAliases rewrites every "va" whose preceding rune is 'a' or 'e' so
// that it is preceded by exactly "ae": "ava" and "eva" become "aeva", while
// "aeva" is left alone. The scan runs right to left because an inserted 'a'
// can form a new "va" with the rune before it.
func correctAliases(s string) string {
	if !strings.Contains(s, "va") {
		return s
	}

	rs := []rune(s)
	for i := len(rs) - 2; i >= 1; i-- {
		if rs[i] != 'v' || rs[i+1] != 'a' {
			continue
		}

		switch {
		case rs[i-1] == 'e' && i >= 2 && rs[i-2] == 'a':
			// already "aeva"
		case rs[i-1] == 'e':
			rs = slices.Insert(rs, i-1, 'a')
		case rs[i-1] == 'a':
			rs = slices.Insert(rs, i, 'e')
		}
	}

	return string(rs)
}

func keepRune(r rune) rune {
	switch {
	case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
		return r
	case isSpace(r):
		return r
	case strings.ContainsRune(keptSymbols, r):
		return r
	default:
		return -1
	}
}

// isSpace reports whether r is whitespace for tokenization purposes:
// Unicode White_Space plus the ASCII information separators U+001C..U+001F,
// which the reference runtime also splits on.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// TrimSpace removes leading and trailing whitespace as defined by the
// tokenizer.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}
