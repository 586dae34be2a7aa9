package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	AdvisoryTimeout   time.Duration
	AdvisoryMaxTokens int

	CameraDevice  int
	CameraMirror  bool
	FrameInterval time.Duration
	PreviewWindow bool

	HTTPAddr       string
	LogLevel       string
	AnalyzerConfig string // путь к YAML с порогами анализатора
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    getString("OPENAI_MODEL", "gpt-4o-mini"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		LogLevel:       getString("LOG_LEVEL", "info"),
		AnalyzerConfig: os.Getenv("ANALYZER_CONFIG"),
	}

	var err error
	if cfg.AdvisoryTimeout, err = getDuration("ADVISORY_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.AdvisoryMaxTokens, err = getInt("ADVISORY_MAX_TOKENS", 200); err != nil {
		return nil, err
	}
	if cfg.CameraDevice, err = getInt("CAMERA_DEVICE", 0); err != nil {
		return nil, err
	}
	if cfg.CameraMirror, err = getBool("CAMERA_MIRROR", true); err != nil {
		return nil, err
	}
	if cfg.FrameInterval, err = getDuration("FRAME_INTERVAL", 30*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.PreviewWindow, err = getBool("PREVIEW_WINDOW", true); err != nil {
		return nil, err
	}

	if cfg.AdvisoryTimeout <= 0 || cfg.FrameInterval <= 0 {
		return nil, fmt.Errorf("ADVISORY_TIMEOUT and FRAME_INTERVAL must be positive")
	}

	return cfg, nil
}

// AdvisoryEnabled сообщает, задан ли ключ внешнего советника
func (c *Config) AdvisoryEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
