package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	OpenAIAPIKey  string

	WebAddr  string
	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MaxConcurrent   int
	MaxHistoryItems int
	RequestTimeout  time.Duration
	HTTPTimeout     time.Duration

	// MediaGroupDebounce is how long the bot waits for the rest of an album.
	MediaGroupDebounce time.Duration
	MaxAlbumPhotos     int

	GeminiBaseURL     string
	GeminiAPIVersion  string
	GeminiTextModel   string
	GeminiVisionModel string
	GeminiImageModel  string

	OpenAIBaseURL    string
	OpenAITextModel  string
	OpenAIImageModel string

	// ImageProvider is "openai" or "gemini".
	ImageProvider string

	PublicDir            string
	FallbackReferenceURL string
	FetchPageContent     bool
	BlockPrivateFetch    bool

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	CORSOrigins []string
}

// Load reads the web configuration. Both model credentials are required.
func Load() (Config, error) {
	cfg := Config{
		WebAddr:              strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		LogLevel:             strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:                getEnvBool("DEBUG", false),
		PreferIPv4:           getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:        getEnvInt("MAX_CONCURRENT", 4),
		MaxHistoryItems:      getEnvInt("MAX_HISTORY_ITEMS", 50),
		RequestTimeout:       time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 240)) * time.Second,
		HTTPTimeout:          time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		MediaGroupDebounce:   time.Duration(getEnvInt("MEDIA_GROUP_DEBOUNCE_MS", 1200)) * time.Millisecond,
		MaxAlbumPhotos:       getEnvInt("MAX_ALBUM_PHOTOS", 4),
		GeminiBaseURL:        strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion:     strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		GeminiTextModel:      strings.TrimSpace(getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash")),
		GeminiVisionModel:    strings.TrimSpace(getEnv("GEMINI_VISION_MODEL", "gemini-2.5-flash")),
		GeminiImageModel:     strings.TrimSpace(getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image")),
		OpenAIBaseURL:        strings.TrimSpace(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")),
		OpenAITextModel:      strings.TrimSpace(getEnv("OPENAI_TEXT_MODEL", "gpt-4o-mini")),
		OpenAIImageModel:     strings.TrimSpace(getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1")),
		ImageProvider:        strings.ToLower(strings.TrimSpace(getEnv("IMAGE_PROVIDER", "openai"))),
		PublicDir:            strings.TrimSpace(getEnv("PUBLIC_DIR", "public")),
		FallbackReferenceURL: strings.TrimSpace(getEnv("FALLBACK_REFERENCE_URL", "https://hebbkx1anhila5yf.public.blob.vercel-storage.com/1-Wu3DAYco1jsT3Qjz9Bidxj761bkJae.png")),
		FetchPageContent:     getEnvBool("FETCH_PAGE_CONTENT", true),
		BlockPrivateFetch:    getEnvBool("BLOCK_PRIVATE_FETCH", true),
		RetryMaxAttempts:     getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:       time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond,
		RetryMaxDelay:        time.Duration(getEnvInt("RETRY_MAX_DELAY_MS", 8000)) * time.Millisecond,
		CORSOrigins:          splitCSV(getEnv("CORS_ORIGINS", "*")),
	}

	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	switch {
	case cfg.GeminiAPIKey == "":
		return Config{}, errors.New("GEMINI_API_KEY is required (text and vision model credential)")
	case cfg.OpenAIAPIKey == "":
		return Config{}, errors.New("OPENAI_API_KEY is required (image model credential)")
	}

	switch cfg.ImageProvider {
	case "openai", "gemini":
	default:
		return Config{}, errors.New("IMAGE_PROVIDER must be openai or gemini")
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxHistoryItems < 1 {
		cfg.MaxHistoryItems = 1
	}
	if cfg.MaxAlbumPhotos < 1 {
		cfg.MaxAlbumPhotos = 1
	}
	if cfg.RetryMaxAttempts < 1 {
		cfg.RetryMaxAttempts = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 240 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}

	return cfg, nil
}

// LoadBot is Load plus the Telegram token.
func LoadBot() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if cfg.TelegramToken == "" {
		return Config{}, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
