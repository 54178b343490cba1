package binding

import (
	"strings"
	"unicode"
)

// Hyphenate converts a property name to its attribute form: "FirstName" -> "first-name".
func Hyphenate(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelCase converts an attribute name to camel case: "first-name" -> "firstName".
func CamelCase(name string) string {
	var b strings.Builder
	upper := false
	for _, r := range name {
		if r == '-' || r == '_' {
			upper = b.Len() > 0
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
