package constants

import "testing"

func TestCanonicalizeDialect(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
		ok   bool
	}{
		{"gkb", DialectGKB, true},
		{" PKB ", DialectPKBFull, true},
		{"pkb_short", DialectPKBShort, true},
		{"kk", DialectKazakh, true},
		{"UNKNOWN", DialectUnknown, true},
		{"", DialectUnknown, false},
		{"equifax", DialectUnknown, false},
	}
	for _, tt := range tests {
		got, ok := CanonicalizeDialect(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CanonicalizeDialect(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if got := DialectsAsStringSlice(); len(got) != 5 || got[0] != "GKB" {
		t.Errorf("DialectsAsStringSlice = %v", got)
	}
}
