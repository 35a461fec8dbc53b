// Package config holds global settings for the Aman service.
// All settings can be configured via environment variables or programmatically.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Risk tier thresholds shared across the service (0-100 scale).
const (
	HighRisk   = 70
	MediumRisk = 40
)

// Config holds global settings for the Aman service.
type Config struct {
	// === Judgment Service (external semantic judge) ===
	// Empty API key disables the judgment signal entirely - it is optional.
	JudgeAPIKey  string // API key for the judgment service (env: GROQ_API_KEY)
	JudgeModel   string // Model identifier for the judgment call
	JudgeBaseURL string // Override base URL (testing / self-hosted gateways)

	// === Persisted State Paths ===
	DataDir  string // Directory for pending + permanent training corpora
	ModelDir string // Directory for model and vectorizer artifacts

	// === Risk Table Data ===
	TablesDir string // Optional directory with YAML risk tables (TLDs, shorteners, brands)

	// === Continuous Learning ===
	RetrainThreshold int           // Pending examples before an automatic retrain fires (default: 20)
	RetrainCooldown  time.Duration // Pause after a failed retrain before the next automatic attempt

	// === Link Scanning ===
	FetchTimeout     time.Duration // Per-page fetch timeout (default: 10s)
	FetchConcurrency int           // Process-wide cap on in-flight page fetches
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		JudgeAPIKey:  GetEnv("GROQ_API_KEY", ""),
		JudgeModel:   GetEnv("AMAN_JUDGE_MODEL", "llama-3.1-8b-instant"),
		JudgeBaseURL: GetEnv("AMAN_JUDGE_BASE_URL", ""),

		DataDir:   GetEnv("AMAN_DATA_DIR", "data"),
		ModelDir:  GetEnv("AMAN_MODEL_DIR", "models"),
		TablesDir: GetEnv("AMAN_TABLES_DIR", ""),

		RetrainThreshold: clampInt(GetEnvInt("AMAN_RETRAIN_THRESHOLD", 20), 1, 100000),
		RetrainCooldown:  time.Duration(GetEnvInt("AMAN_RETRAIN_COOLDOWN_MS", 300000)) * time.Millisecond,

		FetchTimeout:     time.Duration(GetEnvInt("AMAN_FETCH_TIMEOUT_MS", 10000)) * time.Millisecond,
		FetchConcurrency: clampInt(GetEnvInt("AMAN_FETCH_CONCURRENCY", 20), 1, 1000),
	}
}

// PendingPath is the append-only store of not-yet-merged labeled examples.
func (c *Config) PendingPath() string {
	return filepath.Join(c.DataDir, "new_emails.csv")
}

// CorpusPath is the permanent training corpus.
func (c *Config) CorpusPath() string {
	return filepath.Join(c.DataDir, "training_data.csv")
}

// ModelPath is the trained classifier artifact.
func (c *Config) ModelPath() string {
	return filepath.Join(c.ModelDir, "fraud_model.gob")
}

// VectorizerPath is the feature-transform artifact.
func (c *Config) VectorizerPath() string {
	return filepath.Join(c.ModelDir, "vectorizer.gob")
}

// JudgeEnabled reports whether the external judgment signal is configured.
func (c *Config) JudgeEnabled() bool {
	return c.JudgeAPIKey != ""
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Helper functions for environment variable parsing.
// These are exported for use by other packages.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvSlice returns a comma-separated list from an environment variable or a default value.
func GetEnvSlice(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
