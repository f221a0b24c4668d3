// Package naming converts schema, tag, path and operation names into identifiers.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToUpperCamel lower-cases s, splits it on '_', '-' and ' ' and upper-cases the
// first character of every word: "user_name" -> "UserName".
// Word boundaries inside the input are lost: "userName" -> "Username".
func ToUpperCamel(s string) string {
	if s == "" {
		return ""
	}

	// A Caser is stateful, so one per call.
	lowered := cases.Lower(language.Und).String(s)

	var result strings.Builder
	for _, word := range strings.FieldsFunc(lowered, isSeparator) {
		r, size := utf8.DecodeRuneInString(word)
		result.WriteRune(unicode.ToUpper(r))
		result.WriteString(word[size:])
	}
	return result.String()
}

// ToLowerSnake inserts '_' before every upper-case character except the first
// and lower-cases everything: "UserName" -> "user_name".
func ToLowerSnake(s string) string {
	var result strings.Builder
	result.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteByte('_')
			}
			result.WriteRune(unicode.ToLower(r))
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// ToIdentifier is ToUpperCamel applied to ToLowerSnake, which keeps the word
// boundaries of camelCase input: "createdDate" -> "CreatedDate".
func ToIdentifier(s string) string {
	return ToUpperCamel(ToLowerSnake(s))
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
