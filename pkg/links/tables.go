// Package links extracts URLs from message text and scores them, both from
// URL shape alone and from the live page content they resolve to.
package links

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BrandLookalikes maps a targeted brand to the lookalike tokens used to
// impersonate it in phishing domains. Kept as an ordered list so analysis
// output is deterministic across runs.
type BrandLookalikes struct {
	Brand      string   `yaml:"brand"`
	Lookalikes []string `yaml:"lookalikes"`
}

// RiskTables holds the static URL risk data. Loaded once at startup;
// analyzer logic never changes when entries are added.
type RiskTables struct {
	SuspiciousTLDs []string          `yaml:"suspicious_tlds"`
	Shorteners     []string          `yaml:"shorteners"`
	Brands         []BrandLookalikes `yaml:"brands"`
}

// DefaultTables returns the built-in risk tables.
func DefaultTables() *RiskTables {
	return &RiskTables{
		SuspiciousTLDs: []string{
			".xyz", ".top", ".click", ".loan", ".work", ".date",
			".racing", ".download", ".gdn", ".win", ".bid", ".trade",
		},
		Shorteners: []string{
			"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly",
			"is.gd", "buff.ly", "cutt.ly", "rb.gy", "shorturl.at",
		},
		Brands: []BrandLookalikes{
			{Brand: "paypal", Lookalikes: []string{"paypa1", "paypai", "paypaI", "paipal", "paypall", "pay-pal"}},
			{Brand: "apple", Lookalikes: []string{"app1e", "appie", "applе", "apple-id", "icloud-verify"}},
			{Brand: "microsoft", Lookalikes: []string{"micros0ft", "microsft", "ms-login", "outlook-verify"}},
			{Brand: "google", Lookalikes: []string{"g00gle", "googie", "google-verify", "gmail-secure"}},
			{Brand: "amazon", Lookalikes: []string{"amaz0n", "amazn", "amazon-prime"}},
			{Brand: "الراجحي", Lookalikes: []string{"alrajhi-bank", "rajhi-secure", "alrajhi-update", "rajhi-verify"}},
			{Brand: "الأهلي", Lookalikes: []string{"alahli-bank", "ahli-secure", "snb-update", "alahli-verify"}},
			{Brand: "stc", Lookalikes: []string{"stc-pay", "stc-reward", "mystc-update", "stc-verify"}},
			{Brand: "الإنماء", Lookalikes: []string{"alinma-bank", "inma-secure"}},
			{Brand: "البلاد", Lookalikes: []string{"albilad-bank", "bilad-secure"}},
		},
	}
}

// LoadTables loads risk tables from risk_tables.yaml in dir, falling back to
// the built-in tables on any error. An empty dir always returns the defaults.
func LoadTables(dir string) *RiskTables {
	if dir == "" {
		return DefaultTables()
	}

	path := filepath.Join(dir, "risk_tables.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Links] Warning: could not read %s: %v. Using built-in tables.", path, err)
		return DefaultTables()
	}

	var tables RiskTables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		log.Printf("[Links] Warning: could not parse %s: %v. Using built-in tables.", path, err)
		return DefaultTables()
	}

	// Partial files inherit the missing sections.
	defaults := DefaultTables()
	if len(tables.SuspiciousTLDs) == 0 {
		tables.SuspiciousTLDs = defaults.SuspiciousTLDs
	}
	if len(tables.Shorteners) == 0 {
		tables.Shorteners = defaults.Shorteners
	}
	if len(tables.Brands) == 0 {
		tables.Brands = defaults.Brands
	}
	return &tables
}
