package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()

	assert.Equal(t, 100000, cfg.LargeDocumentThreshold)
	assert.Equal(t, 504000, cfg.MaxCharsPerChunk)
	assert.Equal(t, 300, cfg.OverlapSize)
	assert.Equal(t, 5, cfg.ParallelThreshold)
	assert.Equal(t, 3, cfg.MaxParallel)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimitDelay)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100, cfg.MinTextLength)
	assert.Equal(t, 0.7, cfg.MetadataRatio)
	assert.Equal(t, 200, cfg.OCRDPI)
	assert.Equal(t, "vie+eng", cfg.OCRLanguages)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yaml := `port: "9090"
ai_endpoint: "http://localhost:1234/v1"
model: "test-model"
pipeline:
  large_document_threshold: 5000
  rate_limit_delay: 250ms
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test-model", cfg.Model)
	assert.Equal(t, "uploads", cfg.UploadDir)

	// explicit values override, everything else keeps defaults
	assert.Equal(t, 5000, cfg.Pipeline.LargeDocumentThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.RateLimitDelay)
	assert.Equal(t, 504000, cfg.Pipeline.MaxCharsPerChunk)
	assert.Equal(t, "vie+eng", cfg.Pipeline.OCRLanguages)
}

func TestLoadConfig_SecretsFromEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("port: \"8080\"\n"), 0644))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEYS", "key-a,key-b")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "key-a,key-b", cfg.GeminiAPIKeys)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
