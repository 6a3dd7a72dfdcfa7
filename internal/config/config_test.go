package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "devmatch", Password: "secret", DBName: "devmatch", SSLMode: "disable"},
		Mongo:    MongoConfig{URI: "mongodb://localhost:27017", Database: "devmatch"},
		JWT:      JWTConfig{Secret: strings.Repeat("k", 32), ExpiryHours: 24},
		Email:    EmailConfig{Provider: "log"},
		Feed:     FeedConfig{DefaultPageSize: 10, MaxPageSize: 50},
		Notification: NotificationConfig{
			Workers:   4,
			QueueSize: 256,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "database host"},
		{name: "missing db user", mutate: func(c *Config) { c.Database.User = "" }, wantErr: "database user"},
		{name: "missing db name", mutate: func(c *Config) { c.Database.DBName = "" }, wantErr: "database name"},
		{name: "missing mongo database", mutate: func(c *Config) { c.Mongo.Database = "" }, wantErr: "mongo"},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: "JWT secret is required"},
		{name: "short jwt secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "at least 32"},
		{name: "zero expiry", mutate: func(c *Config) { c.JWT.ExpiryHours = 0 }, wantErr: "expiry"},
		{name: "ses without sender", mutate: func(c *Config) { c.Email.Provider = "ses" }, wantErr: "EMAIL_FROM"},
		{name: "max below default", mutate: func(c *Config) { c.Feed.MaxPageSize = 5 }, wantErr: "feed page sizes"},
		{name: "no workers", mutate: func(c *Config) { c.Notification.Workers = 0 }, wantErr: "notification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t,
		"host=localhost port=5432 user=devmatch password=secret dbname=devmatch sslmode=disable",
		cfg.Database.GetDSN(),
	)
}

func TestRedisGetAddr(t *testing.T) {
	assert.Empty(t, (&RedisConfig{Port: 6379}).GetAddr())
	assert.Equal(t, "redis:6379", (&RedisConfig{Host: "redis", Port: 6379}).GetAddr())
}
