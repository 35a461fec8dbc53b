package links

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Per-signal risk contributions for the syntax-only analyzer.
const (
	riskSuspiciousTLD = 25
	riskShortener     = 20
	riskBrandLookalke = 40
	riskNoHTTPS       = 15
	riskLiteralIP     = 30
)

var dottedQuadPattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// SyntaxVerdict is the result of scoring a URL from its text alone.
// Immutable once produced.
type SyntaxVerdict struct {
	URL             string   `json:"url"`
	Domain          string   `json:"domain"`
	RiskScore       int      `json:"risk_score"`
	Flags           []string `json:"flags"`
	IsShortened     bool     `json:"is_shortened"`
	IsSuspiciousTLD bool     `json:"is_suspicious_tld"`
	Impersonating   string   `json:"impersonating,omitempty"`
}

// AnalyzeSyntax scores a URL without any network access. Risk accumulates
// additively across independent signals and is capped at 100. A URL that
// fails to parse yields a zero-risk verdict with no flags - the caller
// treats malformed input as unscoreable, not as an error.
func AnalyzeSyntax(rawURL string, tables *RiskTables) *SyntaxVerdict {
	v := &SyntaxVerdict{URL: rawURL}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return v
	}
	domain := strings.ToLower(parsed.Host)
	v.Domain = domain

	for _, tld := range tables.SuspiciousTLDs {
		if strings.HasSuffix(domain, tld) {
			v.IsSuspiciousTLD = true
			v.RiskScore += riskSuspiciousTLD
			v.Flags = append(v.Flags, fmt.Sprintf("نطاق مشبوه (%s)", tld))
			break
		}
	}

	for _, shortener := range tables.Shorteners {
		if strings.Contains(domain, shortener) {
			v.IsShortened = true
			v.RiskScore += riskShortener
			v.Flags = append(v.Flags, "رابط مختصر يخفي الوجهة")
			break
		}
	}

	// Each brand fires at most once, but several brands may fire on one URL.
	for _, brand := range tables.Brands {
		for _, fake := range brand.Lookalikes {
			if strings.Contains(domain, fake) {
				v.Impersonating = brand.Brand
				v.RiskScore += riskBrandLookalke
				v.Flags = append(v.Flags, fmt.Sprintf("محاولة انتحال %s", brand.Brand))
				break
			}
		}
	}

	if !strings.HasPrefix(rawURL, "https://") {
		v.RiskScore += riskNoHTTPS
		v.Flags = append(v.Flags, "بدون تشفير HTTPS")
	}

	if dottedQuadPattern.MatchString(domain) {
		v.RiskScore += riskLiteralIP
		v.Flags = append(v.Flags, "يستخدم IP بدل دومين")
	}

	if v.RiskScore > 100 {
		v.RiskScore = 100
	}
	return v
}
