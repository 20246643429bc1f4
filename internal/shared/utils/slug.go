package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// letters with strokes carry no combining mark to strip
var strokeLetters = strings.NewReplacer("đ", "d", "Đ", "D", "ø", "o", "Ø", "O", "ł", "l", "Ł", "L")

// GenerateSlug lowercases input, strips diacritics and joins the remaining
// words with hyphens: "The Forest Hiker" -> "the-forest-hiker".
func GenerateSlug(input string) string {
	// chains are stateful, so one per call
	foldMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(foldMarks, strokeLetters.Replace(input))
	if err != nil {
		ascii = strokeLetters.Replace(input)
	}

	lower := strings.ToLower(ascii)
	hyphenated := nonSlugChars.ReplaceAllString(lower, "-")
	return strings.Trim(hyphenated, "-")
}
