package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setKeys(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "o-key")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "  ")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	setKeys(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, "o-key", cfg.OpenAIAPIKey)
	assert.Equal(t, ":8080", cfg.WebAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "openai", cfg.ImageProvider)
	assert.Equal(t, "gpt-image-1", cfg.OpenAIImageModel)
	assert.True(t, cfg.FetchPageContent)
	assert.True(t, cfg.BlockPrivateFetch)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 240*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 1200*time.Millisecond, cfg.MediaGroupDebounce)
	assert.Equal(t, 4, cfg.MaxAlbumPhotos)
}

func TestLoadOverridesAndClamps(t *testing.T) {
	setKeys(t)
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("RETRY_MAX_ATTEMPTS", "-2")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "bogus")
	t.Setenv("IMAGE_PROVIDER", "Gemini")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FETCH_PAGE_CONTENT", "false")
	t.Setenv("MAX_ALBUM_PHOTOS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1, cfg.MaxConcurrent)
	assert.Equal(t, 1, cfg.RetryMaxAttempts)
	assert.Equal(t, 240*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "gemini", cfg.ImageProvider)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.FetchPageContent)
	assert.Equal(t, 1, cfg.MaxAlbumPhotos)
}

func TestLoadRejectsUnknownImageProvider(t *testing.T) {
	setKeys(t)
	t.Setenv("IMAGE_PROVIDER", "midjourney")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBot(t *testing.T) {
	setKeys(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err := LoadBot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	cfg, err := LoadBot()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "verbose"}.SlogLevel())
}
