package config

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	IsDev() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type SecurityConfig interface {
	GetSessionSecret() []byte
	GetMaxSessionAge() time.Duration
	GetBcryptCost() int
}

type StorageConfig interface {
	GetDatabaseURL() string
	GetRedisAddr() string
	GetRedisDB() int
}

// values is the raw environment, decoded by go-envconfig
type values struct {
	Port     string `env:"PORT, default=8080"`
	AppName  string `env:"APP_NAME, default=Go Blog"`
	Env      string `env:"ENV, default=DEV"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:3000"`

	SessionSecret string        `env:"SESSION_SECRET"`
	MaxSessionAge time.Duration `env:"SESSION_MAX_AGE, default=168h"`
	BcryptCost    int           `env:"BCRYPT_COST, default=10"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisDB     int    `env:"REDIS_DB, default=0"`
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Storage
}

// New loads .env files (silently skipping missing ones) and then the process environment.
func New() (Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	return Load(context.Background(), envconfig.OsLookuper())
}

// Load decodes the configuration from the given lookuper. Tests use envconfig.MapLookuper.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var v values
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &v,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("[config Load] failed to process environment: %w", err)
	}

	secret := []byte(v.SessionSecret)
	if len(secret) == 0 {
		if v.Env != envDev {
			return nil, fmt.Errorf("[config Load] SESSION_SECRET is required outside %s", envDev)
		}
		// Sessions won't survive a restart in DEV
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("[config Load] generating session secret: %w", err)
		}
	}

	origins := make(AllowedOrigins, len(v.AllowedOrigins))
	for _, o := range v.AllowedOrigins {
		origins[o] = nullValue{}
	}

	return mainConfig{
		EnvVars:  EnvVars{v: v},
		Cors:     Cors{origins: origins},
		Security: Security{secret: secret, maxAge: v.MaxSessionAge, bcryptCost: v.BcryptCost},
		Storage:  Storage{databaseURL: v.DatabaseURL, redisAddr: v.RedisAddr, redisDB: v.RedisDB},
	}, nil
}
