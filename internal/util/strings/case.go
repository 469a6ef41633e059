// Package strings converts identifiers between naming conventions.
package strings

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits an identifier into words on separators (_ - space) and case
// boundaries. Acronyms stay together: HTTPRequest is [HTTP Request].
func Words(s string) []string {
	var words []string
	var current []rune
	runes := []rune(s)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			// Break before an uppercase letter when the previous char is
			// lowercase or a digit, or when it starts a word after an acronym.
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// ToSnakeCase converts CamelCase to snake_case.
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	return join(Words(s), "_", lower)
}

// ToUpperSnakeCase converts to UPPER_SNAKE_CASE.
func ToUpperSnakeCase(s string) string {
	return join(Words(s), "_", upper)
}

// ToKebabCase converts to kebab-case.
func ToKebabCase(s string) string {
	return join(Words(s), "-", lower)
}

// ToUpperKebabCase converts to UPPER-KEBAB-CASE.
func ToUpperKebabCase(s string) string {
	return join(Words(s), "-", upper)
}

// ToCamelCase converts to lowerCamelCase.
func ToCamelCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	return lower(words[0]) + join(words[1:], "", title)
}

// ToPascalCase converts to UpperCamelCase.
func ToPascalCase(s string) string {
	return join(Words(s), "", title)
}

// ToTitleCase converts to Title Case with spaces.
func ToTitleCase(s string) string {
	return join(Words(s), " ", title)
}

// ToTrainCase converts to Train-Case.
func ToTrainCase(s string) string {
	return join(Words(s), "-", title)
}

// ToFlatCase converts to lowercase with no separators.
func ToFlatCase(s string) string {
	return join(Words(s), "", lower)
}

// ToUpperFlatCase converts to uppercase with no separators.
func ToUpperFlatCase(s string) string {
	return join(Words(s), "", upper)
}

// ToUpper converts to space separated uppercase words: MY RECORD.
func ToUpper(s string) string {
	return join(Words(s), " ", upper)
}

// ToLower converts to space separated lowercase words: my record.
func ToLower(s string) string {
	return join(Words(s), " ", lower)
}

func join(words []string, sep string, convert func(string) string) string {
	converted := make([]string, len(words))
	for i, w := range words {
		converted[i] = convert(w)
	}
	return strings.Join(converted, sep)
}

// Casers keep per-call state, so each conversion gets its own.

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func title(s string) string {
	return cases.Title(language.Und).String(s)
}
