package links

import (
	"strings"
	"testing"
)

func TestAnalyzeSyntaxSignals(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		name     string
		url      string
		wantRisk int
	}{
		// .xyz TLD (25) + no https (15)
		{"suspicious tld without https", "http://bank-update.xyz/verify", 40},
		// shortener (20)
		{"shortener", "https://bit.ly/3xYzAbC", 20},
		// brand lookalike (40)
		{"brand lookalike", "https://paypa1-secure.com/login", 40},
		// literal IP (30) + no https (15)
		{"literal ip", "http://192.168.10.20/update", 45},
		{"clean url", "https://example.com/about", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := AnalyzeSyntax(tt.url, tables)
			if v.RiskScore != tt.wantRisk {
				t.Errorf("AnalyzeSyntax(%q) risk = %d, want %d (flags: %v)",
					tt.url, v.RiskScore, tt.wantRisk, v.Flags)
			}
		})
	}
}

func TestAnalyzeSyntaxFields(t *testing.T) {
	tables := DefaultTables()

	v := AnalyzeSyntax("http://bank-update.xyz/verify", tables)
	if !v.IsSuspiciousTLD {
		t.Error("expected IsSuspiciousTLD for .xyz domain")
	}
	if v.Domain != "bank-update.xyz" {
		t.Errorf("Domain = %q, want bank-update.xyz", v.Domain)
	}

	v = AnalyzeSyntax("https://bit.ly/3xYzAbC", tables)
	if !v.IsShortened {
		t.Error("expected IsShortened for bit.ly")
	}

	v = AnalyzeSyntax("https://alrajhi-bank-update.com/login", tables)
	if v.Impersonating != "الراجحي" {
		t.Errorf("Impersonating = %q, want الراجحي", v.Impersonating)
	}
	found := false
	for _, f := range v.Flags {
		if strings.Contains(f, "انتحال") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected impersonation flag, got %v", v.Flags)
	}
}

func TestAnalyzeSyntaxMalformed(t *testing.T) {
	tables := DefaultTables()

	// Unparseable or hostless input is unscoreable, not an error.
	for _, raw := range []string{"http://%zz-bad", "not-a-url", ""} {
		v := AnalyzeSyntax(raw, tables)
		if v.RiskScore != 0 || len(v.Flags) != 0 {
			t.Errorf("AnalyzeSyntax(%q) = risk %d flags %v, want zero verdict",
				raw, v.RiskScore, v.Flags)
		}
	}
}

func TestAnalyzeSyntaxCap(t *testing.T) {
	tables := DefaultTables()

	// Stack every signal: tld + shortener-substring + two brands + http + ip
	// would exceed 100 if uncapped.
	v := AnalyzeSyntax("http://1.2.3.4.paypa1.g00gle.bit.ly.xyz/x", tables)
	if v.RiskScore > 100 {
		t.Errorf("risk %d exceeds cap", v.RiskScore)
	}
}
