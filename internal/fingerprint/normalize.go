// Package fingerprint implements document fingerprinting with winnowing:
// text normalization, word positions, n-grams, hashing, winnowing and
// collision-checked fingerprint matching.
package fingerprint

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// NormalizeText lowercases text, strips punctuation (keeping apostrophes
// inside contractions) and collapses whitespace into single spaces.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	// cases.Caser is not safe for concurrent use
	lowered := cases.Lower(language.Und).String(text)

	var sb strings.Builder
	sb.Grow(len(lowered))

	pendingSpace := false
	prev := rune(-1)
	for i, r := range lowered {
		next := rune(-1)
		if j := i + utf8.RuneLen(r); j < len(lowered) {
			next, _ = utf8.DecodeRuneInString(lowered[j:])
		}
		current := prev
		prev = r

		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if isPunctuation(r) && !isContraction(current, r, next) {
			continue
		}

		if pendingSpace && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		pendingSpace = false
		sb.WriteRune(r)
	}

	return sb.String()
}

// SplitIntoWords splits normalized text on whitespace.
func SplitIntoWords(text string) []string {
	return strings.Fields(text)
}

// GetWordPositions returns the normalized words of text with their byte
// spans in text itself. The i-th entry corresponds to the i-th word of
// SplitIntoWords(NormalizeText(text)); apostrophes are dropped from the
// word but stay inside the span.
func GetWordPositions(text string) []NormalizedWord {
	positions := make([]NormalizedWord, 0)

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		token := text[start:end]
		word := strings.ReplaceAll(NormalizeText(token), "'", "")
		if word != "" {
			spanStart, spanEnd := trimSpan(token)
			positions = append(positions, NormalizedWord{
				Word:  word,
				Start: start + spanStart,
				End:   start + spanEnd,
			})
		}
		start = -1
	}

	for i, r := range text {
		if unicode.IsSpace(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(text))

	return positions
}

func isPunctuation(r rune) bool {
	if r < utf8.RuneSelf {
		return strings.ContainsRune(asciiPunctuation, r)
	}
	return unicode.IsPunct(r)
}

func isContraction(prev, r, next rune) bool {
	return r == '\'' && prev >= 0 && next >= 0 && unicode.IsLetter(prev) && unicode.IsLetter(next)
}

// trimSpan narrows a token to its first and last letter or digit.
func trimSpan(token string) (int, int) {
	first, last := -1, -1
	for i, r := range token {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if first < 0 {
				first = i
			}
			last = i + utf8.RuneLen(r)
		}
	}
	if first < 0 {
		return 0, len(token)
	}
	return first, last
}
