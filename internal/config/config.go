package config

import (
	"os"
	"strconv"
)

// Config holds all raceparse configuration.
type Config struct {
	Parse  ParseConfig
	Dedup  DedupConfig
	Output OutputConfig
}

// ParseConfig holds pipeline settings.
type ParseConfig struct {
	Encoding  string
	MinFields int // field-count fallback heuristic minimum (0 = default)
}

// DedupConfig holds duplicate-check settings.
type DedupConfig struct {
	StatePath string // SQLite state database, "" disables duplicate checks
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Format   string // "ndjson" or "summary"
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Parse: ParseConfig{
			Encoding:  getenv("RACEPARSE_ENCODING", "utf-8"),
			MinFields: getenvInt("RACEPARSE_MIN_FIELDS", 0),
		},
		Dedup: DedupConfig{
			StatePath: os.Getenv("RACEPARSE_STATE_DB"),
		},
		Output: OutputConfig{
			Format:   getenv("RACEPARSE_OUTPUT", "summary"),
			LogLevel: getenv("RACEPARSE_LOG_LEVEL", "info"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
