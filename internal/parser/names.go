package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var legalForms = []string{"тоо", "ао", "оао", "зао", "ооо"}

var quoteReplacer = strings.NewReplacer(
	"«", `"`, "»", `"`,
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"‘", `"`, "’", `"`, "'", `"`, "`", `"`,
)

var lowerRU = cases.Lower(language.Russian)

// CreditorKey is the grouping key for a creditor name. It is never shown to users.
func CreditorKey(name string) string {
	s := norm.NFC.String(name)
	s = lowerRU.String(s)
	s = quoteReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	for {
		trimmed := false
		for _, form := range legalForms {
			if strings.HasPrefix(s, form+" ") || strings.HasPrefix(s, form+`"`) {
				s = strings.TrimSpace(s[len(form):])
				trimmed = true
			}
		}
		if !trimmed {
			break
		}
	}
	return strings.Trim(s, `" `)
}

// longerName keeps the longer of two display names; current wins ties.
func longerName(current, candidate string) string {
	if utf8.RuneCountInString(candidate) > utf8.RuneCountInString(current) {
		return candidate
	}
	return current
}
