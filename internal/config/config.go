// Package config loads the chat client configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/zizi-chat/internal/models"
)

// Config holds all configuration values.
type Config struct {
	// Backend exposing /chat and /feedback
	BaseURL string
	Timeout time.Duration

	// Client-side request limiter (RateLimit <= 0 disables it)
	RateLimit float64
	RateBurst int

	// Presentation
	Greeting string
	BotName  string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig mirrors Config for the optional YAML file.
type fileConfig struct {
	BaseURL   string   `yaml:"base_url"`
	Timeout   string   `yaml:"timeout"`
	RateLimit *float64 `yaml:"rate_limit"`
	RateBurst *int     `yaml:"rate_burst"`
	Greeting  string   `yaml:"greeting"`
	BotName   string   `yaml:"bot_name"`
	LogFile   string   `yaml:"log_file"`
	LogLevel  string   `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:   "http://127.0.0.1:8000",
		Timeout:   60 * time.Second,
		RateLimit: 2,
		RateBurst: 4,
		Greeting:  models.DefaultGreeting,
		BotName:   "Zizi",
		LogFile:   filepath.Join(os.TempDir(), "zizi.log"),
		LogLevel:  slog.LevelInfo,
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// (or ZIZI_CONFIG when path is empty) and environment variables, in that order.
// A .env file in the working directory is loaded first if present.
func Load(path string) (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Defaults()

	if path == "" {
		path = os.Getenv("ZIZI_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		c.Timeout = d
	}
	if fc.RateLimit != nil {
		c.RateLimit = *fc.RateLimit
	}
	if fc.RateBurst != nil {
		c.RateBurst = *fc.RateBurst
	}
	if fc.Greeting != "" {
		c.Greeting = fc.Greeting
	}
	if fc.BotName != "" {
		c.BotName = fc.BotName
	}
	if fc.LogFile != "" {
		c.LogFile = fc.LogFile
	}
	if fc.LogLevel != "" {
		c.LogLevel = parseLogLevel(fc.LogLevel)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BaseURL = getEnv("ZIZI_BASE_URL", c.BaseURL)
	c.Greeting = getEnv("ZIZI_GREETING", c.Greeting)
	c.BotName = getEnv("ZIZI_BOT_NAME", c.BotName)
	c.LogFile = getEnv("ZIZI_LOG_FILE", c.LogFile)

	if v := os.Getenv("ZIZI_LOG_LEVEL"); v != "" {
		c.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv("ZIZI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("ZIZI_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
	if v := os.Getenv("ZIZI_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
}

// Validate checks that the configuration can be used to reach the backend.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base URL %q: missing host", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
