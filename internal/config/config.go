// Package config holds the client configuration: compiled-in defaults,
// an optional profile file, environment overrides, then flags on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Backend settings
	APIBaseURL     string
	RequestTimeout time.Duration

	// Query settings
	DefaultTopK int

	// Feature flags
	Verbose bool
}

// profile is the optional YAML profile at ~/.icc-assistant/config.yaml
type profile struct {
	APIBaseURL     string `yaml:"api_base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	DefaultTopK    int    `yaml:"default_top_k"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		// The backend runs model inference per query, so the request
		// timeout sits far above normal network latency.
		APIBaseURL:     "http://localhost:8000/api",
		RequestTimeout: 120 * time.Second,

		DefaultTopK: 5,
	}
}

// Load builds the effective configuration: defaults, then the YAML
// profile if present, then the local .env, then environment variables
func Load() *Config {
	cfg := NewConfig()

	cfg.applyProfile(profilePath())

	// Local .env eases development; absence is not an error
	_ = godotenv.Load()

	cfg.applyEnv()

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API base URL cannot be empty")
	}
	if c.DefaultTopK < 1 || c.DefaultTopK > 10 {
		return fmt.Errorf("default top_k must be between 1 and 10")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// applyProfile overlays the YAML profile file, if one exists
func (c *Config) applyProfile(path string) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("ignoring malformed config profile")
		return
	}

	if p.APIBaseURL != "" {
		c.APIBaseURL = p.APIBaseURL
	}
	if p.TimeoutSeconds > 0 {
		c.RequestTimeout = time.Duration(p.TimeoutSeconds) * time.Second
	}
	if p.DefaultTopK > 0 {
		c.DefaultTopK = p.DefaultTopK
	}
}

// applyEnv overlays environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("RAG_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("RAG_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.RequestTimeout = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("RAG_DEFAULT_TOP_K"); v != "" {
		if topK, err := strconv.Atoi(v); err == nil {
			c.DefaultTopK = topK
		}
	}
}

// profilePath returns the profile location under the user's home
// directory, or "" when no home is known
func profilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".icc-assistant", "config.yaml")
}
