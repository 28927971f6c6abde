package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/terra-clan/interview-console/internal/judge"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/storage"
)

// Judge drivers
const (
	JudgeJudge0 = "judge0"
	JudgeDocker = "docker"
)

// Config holds all configuration for interview-console
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Storage StorageConfig
	Judge   JudgeConfig
	Catalog CatalogConfig
	Cleanup CleanupConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	AllowedOrigins  []string
	SessionTTL      time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig points at the remote interview API
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StorageConfig selects where web sessions live
type StorageConfig struct {
	Driver        string
	DSN           string
	MigrationsDir string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// JudgeConfig selects and configures the code runner
type JudgeConfig struct {
	Driver        string
	Judge0URL     string
	Judge0Key     string
	RapidAPIHost  string
	MaxAttempts   int
	PollInterval  time.Duration
	DockerHost    string
	PullPolicy    string
	MemoryLimitMB int
	CaseTimeout   time.Duration
}

// CatalogConfig holds the languages and fixtures directory
type CatalogConfig struct {
	Dir string
}

// CleanupConfig holds cleanup worker configuration
type CleanupConfig struct {
	Interval time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level slog.Level
}

// Load reads configuration from the environment, after applying a .env file
// from the working directory when one exists
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_URL", "http://localhost:8081"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", storage.DriverMemory),
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
			RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			RedisPrefix:   getEnv("REDIS_KEY_PREFIX", "console:"),
		},
		Judge: JudgeConfig{
			Driver:        getEnv("JUDGE_DRIVER", JudgeJudge0),
			Judge0URL:     getEnv("JUDGE0_URL", "https://judge0-ce.p.rapidapi.com"),
			Judge0Key:     getEnv("JUDGE0_API_KEY", ""),
			RapidAPIHost:  getEnv("JUDGE0_RAPIDAPI_HOST", ""),
			MaxAttempts:   getEnvAsInt("JUDGE0_MAX_ATTEMPTS", 30),
			PollInterval:  getEnvAsDuration("JUDGE0_POLL_INTERVAL", time.Second),
			DockerHost:    getEnv("DOCKER_HOST", "unix:///var/run/docker.sock"),
			PullPolicy:    getEnv("DOCKER_PULL_POLICY", "if-not-present"),
			MemoryLimitMB: getEnvAsInt("JUDGE_MEMORY_LIMIT_MB", 256),
			CaseTimeout:   getEnvAsDuration("JUDGE_CASE_TIMEOUT", 10*time.Second),
		},
		Catalog: CatalogConfig{
			Dir: getEnv("CATALOG_DIR", "./catalog"),
		},
		Cleanup: CleanupConfig{
			Interval: getEnvAsDuration("CLEANUP_INTERVAL", 5*time.Minute),
		},
		Log: LogConfig{
			Level: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL: %q", c.Backend.BaseURL)
	}

	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	switch c.Storage.Driver {
	case storage.DriverMemory:
	case storage.DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("database DSN is required for the postgres driver")
		}
	case storage.DriverRedis:
		if c.Storage.RedisAddress == "" {
			return fmt.Errorf("redis address is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	switch c.Judge.Driver {
	case JudgeJudge0:
		if c.Judge.Judge0URL == "" {
			return fmt.Errorf("judge0 URL is required")
		}
		if c.Judge.MaxAttempts < 1 {
			return fmt.Errorf("judge0 max attempts must be at least 1")
		}
	case JudgeDocker:
		if c.Judge.MemoryLimitMB < 16 {
			return fmt.Errorf("judge memory limit too small: %dMB", c.Judge.MemoryLimitMB)
		}
	default:
		return fmt.Errorf("unknown judge driver: %s", c.Judge.Driver)
	}

	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// StorageOptions maps the settings onto the repository opener
func (c *Config) StorageOptions() storage.Config {
	return storage.Config{
		Driver: c.Storage.Driver,
		Postgres: storage.PostgresConfig{
			DSN:          c.Storage.DSN,
			MaxOpenConns: 25,
			MaxIdleConns: 2,
			MaxLifetime:  30 * time.Minute,
		},
		Redis: storage.RedisConfig{
			Address:   c.Storage.RedisAddress,
			Password:  c.Storage.RedisPassword,
			DB:        c.Storage.RedisDB,
			KeyPrefix: c.Storage.RedisPrefix,
		},
		MigrationsDir: c.Storage.MigrationsDir,
	}
}

// DockerOptions maps the settings onto the container runner
func (c *Config) DockerOptions() judge.DockerConfig {
	return judge.DockerConfig{
		Host:        c.Judge.DockerHost,
		PullPolicy:  c.Judge.PullPolicy,
		MemoryLimit: int64(c.Judge.MemoryLimitMB) * 1024 * 1024,
		CaseTimeout: c.Judge.CaseTimeout,
	}
}

// Runner builds the configured code runner. ids maps language names to
// Judge0 language ids; languages carry the container image for docker.
func (c *Config) Runner(languages []models.Language, ids map[string]int) (judge.Runner, error) {
	switch c.Judge.Driver {
	case JudgeDocker:
		return judge.NewDockerRunner(c.DockerOptions(), languages)
	case JudgeJudge0, "":
		return judge.NewJudge0Client(c.Judge.Judge0URL, c.Judge.Judge0Key,
			judge.WithRapidAPIHost(c.Judge.RapidAPIHost),
			judge.WithLanguageIDs(ids),
			judge.WithPolling(c.Judge.MaxAttempts, c.Judge.PollInterval),
		), nil
	default:
		return nil, fmt.Errorf("unknown judge driver: %s", c.Judge.Driver)
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value, exists := os.LookupEnv(key); exists {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}
