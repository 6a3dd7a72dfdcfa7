package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Email        EmailConfig
	Feed         FeedConfig
	Notification NotificationConfig
	Logging      LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	CookieSecure    bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type MongoConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type EmailConfig struct {
	Provider    string // "ses" or "log"
	AWSRegion   string
	FromAddress string
}

type FeedConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type NotificationConfig struct {
	Workers        int
	QueueSize      int
	DigestInterval time.Duration
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:            viper.GetString("SERVER_HOST"),
			Port:            viper.GetInt("SERVER_PORT"),
			Env:             viper.GetString("ENV"),
			ReadTimeout:     viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    viper.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: viper.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:  viper.GetStringSlice("ALLOWED_ORIGINS"),
			CookieSecure:    viper.GetBool("COOKIE_SECURE"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),

			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Mongo: MongoConfig{
			URI:         viper.GetString("MONGO_URI"),
			Database:    viper.GetString("MONGO_DATABASE"),
			MaxPoolSize: viper.GetUint64("MONGO_MAX_POOL_SIZE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Provider:    viper.GetString("EMAIL_PROVIDER"),
			AWSRegion:   viper.GetString("AWS_REGION"),
			FromAddress: viper.GetString("EMAIL_FROM"),
		},
		Feed: FeedConfig{
			DefaultPageSize: viper.GetInt("FEED_DEFAULT_PAGE_SIZE"),
			MaxPageSize:     viper.GetInt("FEED_MAX_PAGE_SIZE"),
		},
		Notification: NotificationConfig{
			Workers:        viper.GetInt("NOTIFY_WORKERS"),
			QueueSize:      viper.GetInt("NOTIFY_QUEUE_SIZE"),
			DigestInterval: viper.GetDuration("NOTIFY_DIGEST_INTERVAL"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 7777)
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 15*time.Second)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second)
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 50)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	viper.SetDefault("MONGO_MAX_POOL_SIZE", 50)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "devmatch")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("EMAIL_PROVIDER", "log")
	viper.SetDefault("AWS_REGION", "ap-south-1")
	viper.SetDefault("FEED_DEFAULT_PAGE_SIZE", 10)
	viper.SetDefault("FEED_MAX_PAGE_SIZE", 50)
	viper.SetDefault("NOTIFY_WORKERS", 4)
	viper.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	viper.SetDefault("NOTIFY_DIGEST_INTERVAL", 24*time.Hour)
	viper.SetDefault("LOG_LEVEL", "info")
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return fmt.Errorf("mongo uri and database are required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT expiry must be positive")
	}
	if c.Email.Provider == "ses" && c.Email.FromAddress == "" {
		return fmt.Errorf("EMAIL_FROM is required when EMAIL_PROVIDER=ses")
	}
	if c.Feed.DefaultPageSize <= 0 || c.Feed.MaxPageSize < c.Feed.DefaultPageSize {
		return fmt.Errorf("feed page sizes are inconsistent: default=%d max=%d", c.Feed.DefaultPageSize, c.Feed.MaxPageSize)
	}
	if c.Notification.Workers <= 0 || c.Notification.QueueSize <= 0 {
		return fmt.Errorf("notification workers and queue size must be positive")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address. Empty host disables Redis.
func (c *RedisConfig) GetAddr() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
