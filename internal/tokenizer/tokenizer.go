// Package tokenizer canonicalizes free text into comparable tokens.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize converts text into a slice of tokens.
// It lowercases the text, folds accents ("Müller" -> "muller"), drops every
// rune that is not a letter, digit or whitespace, and splits on whitespace.
// Punctuation is removed rather than treated as a separator, so "O'Brien"
// becomes "obrien".
//
// Normalize is idempotent: Normalize(Simplify(x)) equals Normalize(x).
func Normalize(text string) []string {
	lowerText := strings.ToLower(text)
	foldedText := foldAccents(lowerText)

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, foldedText)

	tokens := strings.Fields(cleaned)
	if tokens == nil {
		return make([]string, 0) // Return empty slice instead of nil
	}
	return tokens
}

// Simplify returns the normalized form of text as a single string with one
// space between tokens.
func Simplify(text string) string {
	return strings.Join(Normalize(text), " ")
}

// foldAccents strips combining marks after canonical decomposition.
// A new transformer chain is built per call because chains are stateful.
func foldAccents(text string) string {
	if isASCII(text) {
		return text
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

func isASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
