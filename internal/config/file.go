package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort      string `toml:"server_port"`
	UpstreamBaseURL string `toml:"upstream_base_url"`
	DBPath          string `toml:"db_path"`
	FrontOrigin     string `toml:"front_origin"`
	MonthlyQuota    *int   `toml:"monthly_quota"`
	TestKeyTTL      string `toml:"test_key_ttl"`
	RevealTTL       string `toml:"reveal_ttl"`
	SweepInterval   string `toml:"sweep_interval"`
}

// ConfigPath returns the path to the config file (~/.kazadigate/config.toml).
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	cfg := &FileConfig{}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	// If config already exists, do nothing
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := EnsureDataDir(); err != nil {
		return err
	}

	defaultConfig := `# Kazadigate Configuration
# server_port = ":8080"
# upstream_base_url = "https://kazadi-securepay-api-production.up.railway.app"
# front_origin = "http://localhost:3000"

# Issuance policy
# monthly_quota = 3
# test_key_ttl = "1h"

# One-time reveal window (server-side hard expiry)
# reveal_ttl = "15m"

# Expiry sweeper
# sweep_interval = "5m"
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
