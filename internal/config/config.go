package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment and file.
// Priority: Env vars → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8080")
	ServerPort string

	// UpstreamBaseURL is the Kazadi SecurePay API endpoint
	UpstreamBaseURL string

	// DBPath is the SQLite database location
	DBPath string

	// FrontOrigin is the dashboard origin allowed by CORS
	FrontOrigin string

	// MonthlyQuota is the test-key issuance ceiling per owner per month
	MonthlyQuota int

	// TestKeyTTL is the validity window of a minted test key
	TestKeyTTL time.Duration

	// RevealTTL is the hard server-side expiry of a reveal entry
	RevealTTL time.Duration

	// SweepInterval is how often the expiry sweeper runs
	SweepInterval time.Duration
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() *Config {
	fileConfig, _ := LoadFile() // Ignore error, use defaults

	return &Config{
		ServerPort:      getEnvOrFile("SERVER_PORT", fileConfig.ServerPort, ":8080"),
		UpstreamBaseURL: getEnvOrFile("KAZADI_BASE_URL", fileConfig.UpstreamBaseURL, ""),
		DBPath:          getEnvOrFile("DB_PATH", fileConfig.DBPath, DBPath()),
		FrontOrigin:     getEnvOrFile("FRONT_ORIGIN", fileConfig.FrontOrigin, "http://localhost:3000"),
		MonthlyQuota:    getEnvIntOrFile("MONTHLY_QUOTA", fileConfig.MonthlyQuota, 3),
		TestKeyTTL:      getEnvDurationOrFile("TEST_KEY_TTL", fileConfig.TestKeyTTL, time.Hour),
		RevealTTL:       getEnvDurationOrFile("REVEAL_TTL", fileConfig.RevealTTL, 15*time.Minute),
		SweepInterval:   getEnvDurationOrFile("SWEEP_INTERVAL", fileConfig.SweepInterval, 5*time.Minute),
	}
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvIntOrFile returns env int, file int, or default (in priority order)
func getEnvIntOrFile(key string, fileValue *int, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getEnvDurationOrFile returns env duration, file duration, or default
func getEnvDurationOrFile(key string, fileValue string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	if fileValue != "" {
		if d, err := time.ParseDuration(fileValue); err == nil {
			return d
		}
	}
	return defaultValue
}
