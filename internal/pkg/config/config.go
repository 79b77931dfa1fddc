package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Environment
	Environment string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Queue    QueueConfig
	Storage  StorageConfig
	Session  SessionConfig
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // minutes
	MaxConnIdleTime int // minutes
	LogLevel        string
}

// CacheConfig configures the Redis client backing dialog sessions.
type CacheConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	DialTimeout  int // seconds
	ReadTimeout  int
	WriteTimeout int
	PoolSize     int
	MinIdleConns int
}

// QueueConfig configures the asynq ingestion queue.
type QueueConfig struct {
	Enabled        bool
	RedisHost      string
	RedisPort      int
	RedisPassword  string
	RedisDB        int
	DialTimeout    int
	ReadTimeout    int
	WriteTimeout   int
	Concurrency    int
	MaxRetries     int
	StrictPriority bool
}

// StorageConfig configures upload storage and parsing limits.
type StorageConfig struct {
	BasePath       string
	MaxFileSizeMB  int64
	InsertBatchLen int
}

// SessionConfig configures the input dialog sessions.
type SessionConfig struct {
	TTL time.Duration
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			slog.Debug("no .env file found, using environment variables only")
		}
	}

	setDefaults()

	// Bind environment variables
	viper.AutomaticEnv()

	config := &Config{
		Environment: viper.GetString("ENV"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetString("SERVER_PORT"),
			ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConnections:  viper.GetInt("DB_MAX_CONNECTIONS"),
			MinConnections:  viper.GetInt("DB_MIN_CONNECTIONS"),
			MaxConnLifetime: viper.GetInt("DB_MAX_CONN_LIFETIME_MIN"),
			MaxConnIdleTime: viper.GetInt("DB_MAX_CONN_IDLE_MIN"),
			LogLevel:        viper.GetString("DB_LOG_LEVEL"),
		},
		Cache: CacheConfig{
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetInt("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			DialTimeout:  viper.GetInt("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetInt("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetInt("REDIS_WRITE_TIMEOUT"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		Storage: StorageConfig{
			BasePath:       viper.GetString("STORAGE_PATH"),
			MaxFileSizeMB:  viper.GetInt64("MAX_FILE_SIZE_MB"),
			InsertBatchLen: viper.GetInt("INGEST_INSERT_BATCH"),
		},
		Session: SessionConfig{
			TTL: viper.GetDuration("SESSION_TTL"),
		},
	}

	// The queue shares the Redis instance unless told otherwise.
	config.Queue = QueueConfig{
		Enabled:        viper.GetBool("QUEUE_ENABLED"),
		RedisHost:      config.Cache.Host,
		RedisPort:      config.Cache.Port,
		RedisPassword:  config.Cache.Password,
		RedisDB:        viper.GetInt("QUEUE_REDIS_DB"),
		DialTimeout:    config.Cache.DialTimeout,
		ReadTimeout:    config.Cache.ReadTimeout,
		WriteTimeout:   config.Cache.WriteTimeout,
		Concurrency:    viper.GetInt("WORKER_CONCURRENCY"),
		MaxRetries:     viper.GetInt("WORKER_MAX_RETRIES"),
		StrictPriority: viper.GetBool("WORKER_STRICT_PRIORITY"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "30s")

	// Database defaults
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_NAME", "cbam")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNECTIONS", 20)
	viper.SetDefault("DB_MIN_CONNECTIONS", 2)
	viper.SetDefault("DB_MAX_CONN_LIFETIME_MIN", 30)
	viper.SetDefault("DB_MAX_CONN_IDLE_MIN", 5)
	viper.SetDefault("DB_LOG_LEVEL", "silent")

	// Redis defaults
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)

	// Worker defaults
	viper.SetDefault("QUEUE_ENABLED", true)
	viper.SetDefault("QUEUE_REDIS_DB", 1)
	viper.SetDefault("WORKER_CONCURRENCY", 4)
	viper.SetDefault("WORKER_MAX_RETRIES", 3)
	viper.SetDefault("WORKER_STRICT_PRIORITY", false)

	// File processing defaults
	viper.SetDefault("STORAGE_PATH", "/tmp/cbam-uploads")
	viper.SetDefault("MAX_FILE_SIZE_MB", 50)
	viper.SetDefault("INGEST_INSERT_BATCH", 500)

	viper.SetDefault("SESSION_TTL", "2h")
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Storage.MaxFileSizeMB <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be positive")
	}
	return nil
}

// DSN builds the libpq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LogConfig logs the configuration (hiding sensitive data)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("environment", c.Environment),
		slog.String("server", c.ListenAddr()),
		slog.String("database", fmt.Sprintf("%s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Database)),
		slog.String("redis", fmt.Sprintf("%s:%d", c.Cache.Host, c.Cache.Port)),
		slog.Int("redis_db", c.Cache.DB),
		slog.Bool("queue_enabled", c.Queue.Enabled),
		slog.Int("worker_concurrency", c.Queue.Concurrency),
		slog.Duration("session_ttl", c.Session.TTL),
	)
}
