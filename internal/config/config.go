// Package config loads promptcraft settings from environment variables with
// the PROMPTCRAFT_ prefix and provides defaults for every option.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration settings for the promptcraft application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	KV       KVConfig
	LLM      LLMConfig
	Security SecurityConfig
	Log      LogConfig
	Backup   BackupConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // default: 7373
	Host string // default: 127.0.0.1
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the template and execution store.
type StorageConfig struct {
	Engine      string // sqlite | postgres (default: sqlite)
	DataPath    string // directory holding promptcraft.db (default: ./data)
	PostgresDSN string
}

// SQLitePath returns the database file inside DataPath.
func (s StorageConfig) SQLitePath() string {
	return strings.TrimRight(s.DataPath, "/") + "/promptcraft.db"
}

// KVConfig selects the key-value backend for drafts and usage counters.
type KVConfig struct {
	Backend       string // sqlite | redis | memory (default: sqlite)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string // default: promptcraft:
}

// LLMConfig contains provider configuration.
type LLMConfig struct {
	Provider        string // ollama | openai | anthropic (default: ollama)
	OllamaURL       string
	OllamaModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	MaxTokens       int
	MaxRetries      int
	Timeout         time.Duration
}

// SecurityConfig contains authentication and rate limiting settings.
type SecurityConfig struct {
	Mode           string // development | production (default: development)
	APIToken       string
	RateLimitRPS   float64
	RateLimitBurst int
}

// IsProduction reports whether production mode is active.
func (s SecurityConfig) IsProduction() bool {
	return strings.EqualFold(s.Mode, "production")
}

// LogConfig selects the logger encoder and level.
type LogConfig struct {
	Mode  string // development | production (default: development)
	Level string // debug | info | warn | error (default: info)
}

// BackupConfig contains scheduled SQLite backup settings.
type BackupConfig struct {
	Enabled   bool
	Schedule  string // cron expression (default: @daily)
	Path      string // default: ./backups
	Verify    bool   // default: true
	Retention int    // backups to keep (default: 7)
}

// LoadConfig loads configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PROMPTCRAFT_PORT", 7373),
			Host: getEnv("PROMPTCRAFT_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			Engine:      strings.ToLower(getEnv("PROMPTCRAFT_STORAGE_ENGINE", "sqlite")),
			DataPath:    getEnv("PROMPTCRAFT_DATA_PATH", "./data"),
			PostgresDSN: getEnv("PROMPTCRAFT_POSTGRES_DSN", ""),
		},
		KV: KVConfig{
			Backend:       strings.ToLower(getEnv("PROMPTCRAFT_KV_BACKEND", "sqlite")),
			RedisAddr:     getEnv("PROMPTCRAFT_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("PROMPTCRAFT_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("PROMPTCRAFT_REDIS_DB", 0),
			RedisPrefix:   getEnv("PROMPTCRAFT_REDIS_PREFIX", "promptcraft:"),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(getEnv("PROMPTCRAFT_LLM_PROVIDER", "ollama")),
			OllamaURL:       getEnv("PROMPTCRAFT_OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:     getEnv("PROMPTCRAFT_OLLAMA_MODEL", "qwen2.5:7b"),
			OpenAIAPIKey:    getEnv("PROMPTCRAFT_OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("PROMPTCRAFT_OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:   getEnv("PROMPTCRAFT_OPENAI_BASE_URL", ""),
			AnthropicAPIKey: getEnv("PROMPTCRAFT_ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("PROMPTCRAFT_ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			MaxTokens:       getEnvInt("PROMPTCRAFT_LLM_MAX_TOKENS", 2048),
			MaxRetries:      getEnvInt("PROMPTCRAFT_LLM_MAX_RETRIES", 3),
			Timeout:         getEnvDuration("PROMPTCRAFT_LLM_TIMEOUT", 60*time.Second),
		},
		Security: SecurityConfig{
			Mode:           strings.ToLower(getEnv("PROMPTCRAFT_SECURITY_MODE", "development")),
			APIToken:       getEnv("PROMPTCRAFT_API_TOKEN", ""),
			RateLimitRPS:   getEnvFloat("PROMPTCRAFT_RATE_LIMIT_RPS", 10),
			RateLimitBurst: getEnvInt("PROMPTCRAFT_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Mode:  strings.ToLower(getEnv("PROMPTCRAFT_LOG_MODE", "development")),
			Level: strings.ToLower(getEnv("PROMPTCRAFT_LOG_LEVEL", "info")),
		},
		Backup: BackupConfig{
			Enabled:   getEnvBool("PROMPTCRAFT_BACKUP_ENABLED", false),
			Schedule:  getEnv("PROMPTCRAFT_BACKUP_SCHEDULE", "@daily"),
			Path:      getEnv("PROMPTCRAFT_BACKUP_PATH", "./backups"),
			Verify:    getEnvBool("PROMPTCRAFT_BACKUP_VERIFY", true),
			Retention: getEnvInt("PROMPTCRAFT_BACKUP_RETENTION", 7),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PROMPTCRAFT_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	switch c.Storage.Engine {
	case "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("PROMPTCRAFT_POSTGRES_DSN is required for the postgres storage engine"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage engine %q", c.Storage.Engine))
	}
	switch c.KV.Backend {
	case "sqlite", "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported KV backend %q", c.KV.Backend))
	}
	if c.KV.Backend == "sqlite" && c.Storage.Engine != "sqlite" {
		errs = append(errs, errors.New("the sqlite KV backend requires the sqlite storage engine"))
	}
	switch c.LLM.Provider {
	case "ollama":
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("PROMPTCRAFT_OPENAI_API_KEY is required for the openai provider"))
		}
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("PROMPTCRAFT_ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM provider %q", c.LLM.Provider))
	}
	if c.Security.IsProduction() && c.Security.APIToken == "" {
		errs = append(errs, errors.New("PROMPTCRAFT_API_TOKEN is required in production mode"))
	}
	if c.Backup.Enabled && c.Storage.Engine != "sqlite" {
		errs = append(errs, errors.New("backups are only supported for the sqlite storage engine"))
	}
	return errors.Join(errs...)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvBool recognizes true/1/yes and false/0/no, case-insensitively.
// Anything else yields the default.
func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
