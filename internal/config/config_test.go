package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.DefaultTopK)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RAG_API_URL", "http://rag.internal:9000/api")
	t.Setenv("RAG_TIMEOUT_SECONDS", "30")
	t.Setenv("RAG_DEFAULT_TOP_K", "8")

	cfg := NewConfig()
	cfg.applyEnv()

	assert.Equal(t, "http://rag.internal:9000/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 8, cfg.DefaultTopK)
}

func TestEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RAG_TIMEOUT_SECONDS", "soon")

	cfg := NewConfig()
	cfg.applyEnv()

	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
}

func TestProfileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: http://profile:8000/api\ntimeout_seconds: 60\n"), 0o644))

	cfg := NewConfig()
	cfg.applyProfile(path)

	assert.Equal(t, "http://profile:8000/api", cfg.APIBaseURL)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.DefaultTopK, "unset profile keys keep defaults")
}

func TestProfileMissingFileIsIgnored(t *testing.T) {
	cfg := NewConfig()
	cfg.applyProfile(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
}

func TestProfileMalformedIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644))

	cfg := NewConfig()
	cfg.applyProfile(path)

	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"empty base URL", func(c *Config) { c.APIBaseURL = "" }, false},
		{"top_k below range", func(c *Config) { c.DefaultTopK = 0 }, false},
		{"top_k above range", func(c *Config) { c.DefaultTopK = 11 }, false},
		{"top_k at bounds", func(c *Config) { c.DefaultTopK = 10 }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if tt.wantOK {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
