package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"desktop-agent/internal/infrastructure/env"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "DA_CONFIG_TEST_"

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
retry:
  max_retries: 7
  base_wait: 250ms
ocr:
  engines: [vision, tesseract]
  base_scores:
    tesseract: 0.9
  vision:
    model: some/vision-model
executor:
  human_movement: false
cache_ttl: 2s
`)
	t.Setenv(testPrefix+"VISION_API_KEY", "secret")

	cfg, err := Load(path, env.NewEnvService(testPrefix))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Retry.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseWait)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxWait)
	assert.Equal(t, []string{"vision", "tesseract"}, cfg.OCR.Engines)
	assert.Equal(t, map[string]float64{"tesseract": 0.9}, cfg.OCR.BaseScores)
	assert.Equal(t, "some/vision-model", cfg.OCR.Vision.Model)
	assert.Equal(t, "secret", cfg.OCR.Vision.APIKey)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OCR.Vision.BaseURL)
	assert.False(t, cfg.Executor.HumanMovement)
	assert.Equal(t, 2*time.Second, cfg.CacheTTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "retry:\n  max_retries: 4\n")
	t.Setenv(testPrefix+"MAX_RETRIES", "6")
	t.Setenv(testPrefix+"OCR_ENGINES", " tesseract , ")
	t.Setenv(testPrefix+"TESSERACT_LANGUAGES", "eng+deu")
	t.Setenv(testPrefix+"BASE_WAIT", "2")
	t.Setenv(testPrefix+"SEED", "42")

	cfg, err := Load(path, env.NewEnvService(testPrefix))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Retry.MaxRetries)
	assert.Equal(t, []string{"tesseract"}, cfg.OCR.Engines)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCR.Tesseract.Languages)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseWait)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeFile(t, "retry: [unclosed"), nil)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"retries too low", func(c *Config) { c.Retry.MaxRetries = 2 }, "max_retries 2"},
		{"retries too high", func(c *Config) { c.Retry.MaxRetries = 9 }, "max_retries 9"},
		{"zero base wait", func(c *Config) { c.Retry.BaseWait = 0 }, "base_wait must be positive"},
		{"max below base", func(c *Config) { c.Retry.MaxWait = 100 * time.Millisecond }, "below base_wait"},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }, "cache_ttl"},
		{"no engines", func(c *Config) { c.OCR.Engines = nil }, "ocr.engines is empty"},
		{"unknown engine", func(c *Config) { c.OCR.Engines = []string{"paddleocr"} }, `unknown engine "paddleocr"`},
		{"duplicate engine", func(c *Config) { c.OCR.Engines = []string{"tesseract", "tesseract"} }, "listed twice"},
		{"vision without key", func(c *Config) { c.OCR.Engines = []string{"vision"} }, "VISION_API_KEY"},
		{"score out of range", func(c *Config) { c.OCR.BaseScores = map[string]float64{"vision": 1.2} }, "base_scores.vision"},
		{"empty browser", func(c *Config) { c.Browser.Width = 0 }, "browser size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Retry.MaxRetries = 1
	cfg.CacheTTL = -1

	err := cfg.Validate()
	assert.ErrorContains(t, err, "max_retries")
	assert.ErrorContains(t, err, "cache_ttl")
}
