package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ORDERS_FILE", "USERS_FILE", "STORE_DRIVER", "SERVER_PORT", "SESSION_TIMEOUT", "REDIS_URL", "AMQP_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "orders.json", cfg.OrdersFile)
	assert.Equal(t, "users.json", cfg.UsersFile)
	assert.Equal(t, DriverJSON, cfg.StoreDriver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.Empty(t, cfg.RedisURL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("SESSION_TIMEOUT", "90")
	t.Setenv("APP_ENV", "development")
	t.Setenv("ORDERS_FILE", "/data/orders.json")

	cfg := Load()
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "/data/orders.json", cfg.OrdersFile)
}

func TestGetEnvAsIntFallsBack(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "soon")
	assert.Equal(t, 3600, getEnvAsInt("SESSION_TIMEOUT", 3600))
}

func TestValidate(t *testing.T) {
	valid := Config{StoreDriver: DriverJSON, OrdersFile: "o.json", UsersFile: "u.json", JWTSecret: "s", ServerPort: "8080", SessionTimeout: 60}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.StoreDriver = "sqlite" }, want: "STORE_DRIVER"},
		{name: "missing orders file", mutate: func(c *Config) { c.OrdersFile = "" }, want: "ORDERS_FILE"},
		{name: "postgres without url", mutate: func(c *Config) { c.StoreDriver = DriverPostgres }, want: "DATABASE_URL"},
		{name: "empty secret", mutate: func(c *Config) { c.JWTSecret = "" }, want: "JWT_SECRET"},
		{name: "zero timeout", mutate: func(c *Config) { c.SessionTimeout = 0 }, want: "SESSION_TIMEOUT"},
		{name: "bad port", mutate: func(c *Config) { c.ServerPort = "http" }, want: "SERVER_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
