package links

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTablesMissingFileFallsBack(t *testing.T) {
	tables := LoadTables(t.TempDir())

	defaults := DefaultTables()
	if len(tables.SuspiciousTLDs) != len(defaults.SuspiciousTLDs) {
		t.Errorf("expected built-in TLD table, got %d entries", len(tables.SuspiciousTLDs))
	}
}

func TestLoadTablesPartialFileInheritsDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := "suspicious_tlds:\n  - .evil\n"
	if err := os.WriteFile(filepath.Join(dir, "risk_tables.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	tables := LoadTables(dir)

	if len(tables.SuspiciousTLDs) != 1 || tables.SuspiciousTLDs[0] != ".evil" {
		t.Errorf("SuspiciousTLDs = %v, want [.evil]", tables.SuspiciousTLDs)
	}
	// Sections missing from the file keep the built-in data.
	if len(tables.Shorteners) == 0 || len(tables.Brands) == 0 {
		t.Error("missing sections must inherit the built-in tables")
	}

	v := AnalyzeSyntax("https://login.evil/x", tables)
	if !v.IsSuspiciousTLD {
		t.Error("custom TLD entry not applied")
	}
}

func TestLoadTablesMalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "risk_tables.yaml"), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	tables := LoadTables(dir)
	if len(tables.Brands) != len(DefaultTables().Brands) {
		t.Error("malformed file must fall back to the built-in tables")
	}
}
