package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("READ_TIMEOUT", "10s")
	t.Setenv("WRITE_TIMEOUT", "20s")
	t.Setenv("IDLE_TIMEOUT", "30s")
	t.Setenv("DB_PATH", "/tmp/runs.db")
	t.Setenv("SUMMARY_MODEL", "gemini-2.0-flash")
	t.Setenv("SUMMARY_TIMEOUT", "45s")
	t.Setenv("TRANSCRIPT_LANGUAGES", "de, en")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load()
	require.NoError(t, err)

	if cfg.ServerPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.ServerPort)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 20*time.Second {
		t.Errorf("expected 20s, got %s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.IdleTimeout)
	}
	assert.Equal(t, "/tmp/runs.db", cfg.DBPath)
	assert.Equal(t, "gemini-2.0-flash", cfg.Summary.Model)
	assert.Equal(t, 45*time.Second, cfg.Summary.Timeout)
	assert.Equal(t, []string{"de", "en"}, cfg.Transcript.Languages)
	assert.Equal(t, "google-key", cfg.Summary.APIKey)
	assert.Equal(t, DefaultPrompt, cfg.Summary.Prompt)
}

func TestLoadConfig_MissingAPIKeyIsNotAnError(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("SUMMARY_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Summary.APIKey)
}

func TestLoadConfig_OpenAIKey(t *testing.T) {
	t.Setenv("SUMMARY_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Summary.Provider)
	assert.Equal(t, "openai-key", cfg.Summary.APIKey)
}

func TestLoadConfig_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server_port: "7070"
summary:
  model: from-file
  timeout: 90s
transcript:
  languages: [fr]
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "6060")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.ServerPort)
	assert.Equal(t, "from-file", cfg.Summary.Model)
	assert.Equal(t, 90*time.Second, cfg.Summary.Timeout)
	assert.Equal(t, []string{"fr"}, cfg.Transcript.Languages)
	assert.Equal(t, ProviderGemini, cfg.Summary.Provider)
}

func TestLoadConfig_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no port", func(c *Config) { c.ServerPort = "" }, true},
		{"zero read timeout", func(c *Config) { c.ReadTimeout = 0 }, true},
		{"unknown provider", func(c *Config) { c.Summary.Provider = "bard" }, true},
		{"no model", func(c *Config) { c.Summary.Model = "" }, true},
		{"no languages", func(c *Config) { c.Transcript.Languages = nil }, true},
		{"negative client timeout", func(c *Config) { c.Transcript.Timeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
