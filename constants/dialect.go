package constants

import (
	"strings"
)

// Dialect tags the credit-report layout a text was recognized as.
type Dialect string

const (
	DialectGKB      Dialect = "GKB"
	DialectPKBFull  Dialect = "PKB_FULL"
	DialectPKBShort Dialect = "PKB_SHORT"
	DialectKazakh   Dialect = "KAZAKH"
	DialectUnknown  Dialect = "UNKNOWN"
)

var allDialects = []Dialect{
	DialectGKB,
	DialectPKBFull,
	DialectPKBShort,
	DialectKazakh,
	DialectUnknown,
}

func DialectsAsStringSlice() []string {
	result := make([]string, len(allDialects))
	for i, d := range allDialects {
		result[i] = string(d)
	}
	return result
}

// CanonicalizeDialect maps loose names ("pkb", "short", "kz") to a Dialect.
func CanonicalizeDialect(input string) (Dialect, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DialectUnknown, false
	}

	synonyms := map[string]Dialect{
		"gkb":   DialectGKB,
		"pkb":   DialectPKBFull,
		"full":  DialectPKBFull,
		"short": DialectPKBShort,
		"kz":    DialectKazakh,
		"kk":    DialectKazakh,
	}
	if d, ok := synonyms[normalized]; ok {
		return d, true
	}
	for _, d := range allDialects {
		if normalized == strings.ToLower(string(d)) {
			return d, true
		}
	}
	return DialectUnknown, false
}
