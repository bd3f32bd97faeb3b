package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Content ContentConfig
	OpenAI  OpenAIConfig
	Redis   RedisConfig
	QnA     QnAConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Addr string
}

type ContentConfig struct {
	PostsDir  string
	AboutFile string
}

// OpenAIConfig holds the completion provider settings. An empty APIKey is
// not a startup failure: the gateway reports it per-request so that content
// endpoints keep working on a misconfigured deployment.
type OpenAIConfig struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether the optional compiled-post cache should be wired.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type QnAConfig struct {
	HistoryLimit int
	Timeout      time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		Content: ContentConfig{
			PostsDir:  getEnv("POSTS_DIR", "posts"),
			AboutFile: getEnv("ABOUT_FILE", "data/about.md"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			Model:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature:     getEnvFloat("OPENAI_TEMPERATURE", 0.2),
			MaxOutputTokens: getEnvInt("OPENAI_MAX_OUTPUT_TOKENS", 400),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		QnA: QnAConfig{
			HistoryLimit: getEnvInt("QNA_HISTORY_LIMIT", 6),
			Timeout:      time.Duration(getEnvInt("QNA_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.Content.PostsDir == "" {
		return fmt.Errorf("POSTS_DIR is required")
	}
	if c.Content.AboutFile == "" {
		return fmt.Errorf("ABOUT_FILE is required")
	}
	if c.QnA.HistoryLimit < 0 {
		return fmt.Errorf("QNA_HISTORY_LIMIT must not be negative")
	}
	if c.QnA.Timeout <= 0 {
		return fmt.Errorf("QNA_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
