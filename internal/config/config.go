package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Engine    EngineConfig    `mapstructure:"engine"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Report    ReportConfig    `mapstructure:"report"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// StoreConfig selects the backend for users, credentials and conversations
type StoreConfig struct {
	Driver     string `mapstructure:"driver"` // postgres, sqlite or mysql
	SQLitePath string `mapstructure:"sqlite_path"`
	MySQLDSN   string `mapstructure:"mysql_dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	ProviderRetries int           `mapstructure:"provider_retries"`
}

type EngineConfig struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	Fallbacks       []string        `mapstructure:"fallbacks"`
	PromptProfile   string          `mapstructure:"prompt_profile"`
	Timeout         time.Duration   `mapstructure:"timeout"`
	Gemini          GeminiConfig    `mapstructure:"gemini"`
	OpenAI          OpenAIConfig    `mapstructure:"openai"`
	Anthropic       AnthropicConfig `mapstructure:"anthropic"`
	DeepSeek        DeepSeekConfig  `mapstructure:"deepseek"`
	Ollama          OllamaConfig    `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type DeepSeekConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	DefaultModel string `mapstructure:"default_model"`
}

// RateLimitConfig bounds analyses per user in a fixed window
type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type ReportConfig struct {
	MaxUploadMB int `mapstructure:"max_upload_mb"`
}

// MaxUploadBytes returns the upload limit in bytes
func (c ReportConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

type ArchiveConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	MongoURI      string `mapstructure:"mongo_uri"`
	Database      string `mapstructure:"database"`
	Collection    string `mapstructure:"collection"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Store.Driver)
	}
	if c.Store.Driver == "mysql" && c.Store.MySQLDSN == "" {
		return errors.New("store.mysql_dsn is required for the mysql driver")
	}
	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate_limit.max_requests and rate_limit.window must be positive")
	}
	if c.Report.MaxUploadMB <= 0 {
		return errors.New("report.max_upload_mb must be positive")
	}
	if c.Auth.ProviderRetries < 0 {
		return errors.New("auth.provider_retries must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.middleware_timeout", "110s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "insights")
	v.SetDefault("database.database", "insights")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)

	// Store
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "./data/insights.db")

	// Redis
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.access_token_ttl", "24h")
	v.SetDefault("auth.provider_timeout", "30s")
	v.SetDefault("auth.provider_retries", 3)

	// Engine
	v.SetDefault("engine.default_provider", "gemini")
	v.SetDefault("engine.prompt_profile", "comprehensive_analyst")
	v.SetDefault("engine.timeout", "90s")
	v.SetDefault("engine.ollama.default_model", "llama3")

	// Rate limit
	v.SetDefault("rate_limit.max_requests", 15)
	v.SetDefault("rate_limit.window", "24h")

	// Report
	v.SetDefault("report.max_upload_mb", 20)

	// Archive
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.database", "insights")
	v.SetDefault("archive.collection", "analysis_exports")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.password", "POSTGRES_PASSWORD")
	v.BindEnv("database.host", "POSTGRES_HOST")

	// Store
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.mysql_dsn", "MYSQL_DSN")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.host", "REDIS_HOST")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// Engine API keys
	v.BindEnv("engine.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("engine.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("engine.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("engine.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("engine.ollama.host", "OLLAMA_HOST")

	// Archive
	v.BindEnv("archive.mongo_uri", "MONGO_URI")
	v.BindEnv("archive.encryption_key", "ARCHIVE_ENCRYPTION_KEY")
}
