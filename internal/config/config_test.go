package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-blog-server/internal/config"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.True(t, c.IsDev())
	require.Equal(t, 168*time.Hour, c.GetMaxSessionAge())
	require.Equal(t, 10, c.GetBcryptCost())
	require.Len(t, c.GetSessionSecret(), 32, "a random secret is generated in DEV")
	require.Empty(t, c.GetDatabaseURL())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
}

func TestLoad_Overrides(t *testing.T) {
	c, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":            ":9000",
		"ENV":             "PROD",
		"SESSION_SECRET":  "super-secret",
		"SESSION_MAX_AGE": "30m",
		"BCRYPT_COST":     "12",
		"DATABASE_URL":    "postgres://blog@localhost/blog",
		"REDIS_ADDR":      "localhost:6379",
		"ALLOWED_ORIGINS": "https://a.example.com,https://b.example.com",
	}))
	require.NoError(t, err)

	require.Equal(t, ":9000", c.GetPort())
	require.False(t, c.IsDev())
	require.Equal(t, []byte("super-secret"), c.GetSessionSecret())
	require.Equal(t, 30*time.Minute, c.GetMaxSessionAge())
	require.Equal(t, 12, c.GetBcryptCost())
	require.Equal(t, "postgres://blog@localhost/blog", c.GetDatabaseURL())
	require.Equal(t, "localhost:6379", c.GetRedisAddr())
	require.Equal(t, "https://a.example.com, https://b.example.com", c.GetAllowedOrigins().String())
}

func TestLoad_SecretRequiredOutsideDev(t *testing.T) {
	_, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV": "PROD",
	}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "SESSION_SECRET is required")
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_MAX_AGE": "forever",
	}))
	require.Error(t, err)
}
