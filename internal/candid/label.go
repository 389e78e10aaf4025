package candid

import (
	"strings"
	"unicode"
)

// keywords are the reserved words of the Candid grammar. A label equal to
// one of them is emitted quoted.
var keywords = map[string]bool{
	"blob":    true,
	"vec":     true,
	"opt":     true,
	"record":  true,
	"variant": true,
	"func":    true,
	"service": true,
	"type":    true,
	"query":   true,
	"oneway":  true,
	"import":  true,
}

func init() {
	for _, n := range primitiveNames {
		keywords[n] = true
	}
}

// IsKeyword reports whether s is a reserved Candid word.
func IsKeyword(s string) bool {
	return keywords[s]
}

// IsDelimiter reports whether r terminates a bare identifier.
func IsDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', ':', ',', ';', '{', '}', '(', ')':
		return true
	}
	return false
}

// NeedsQuote reports whether a label must be quoted to survive a re-parse.
func NeedsQuote(label string) bool {
	if label == "" || IsKeyword(label) || label[0] == '"' {
		return true
	}
	if strings.HasPrefix(label, "μrec_") || strings.HasPrefix(label, "//") || strings.HasPrefix(label, "/*") {
		return true
	}
	for _, r := range label {
		if r == '\\' || unicode.IsSpace(r) || IsDelimiter(r) {
			return true
		}
	}
	return false
}

// QuoteLabel renders a label for emission, quoting it when required.
// Inside quotes '"' and '\' are escaped with a backslash.
func QuoteLabel(label string) string {
	if !NeedsQuote(label) {
		return label
	}
	var b strings.Builder
	b.Grow(len(label) + 2)
	b.WriteByte('"')
	for _, r := range label {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
