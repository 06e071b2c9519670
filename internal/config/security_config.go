package config

import "time"

type Security struct {
	secret     []byte
	maxAge     time.Duration
	bcryptCost int
}

var _ SecurityConfig = Security{}

// GetSessionSecret returns the HMAC key used to sign session tokens
func (s Security) GetSessionSecret() []byte {
	return s.secret
}

// GetMaxSessionAge is the absolute lifetime of a session from issuance
func (s Security) GetMaxSessionAge() time.Duration {
	return s.maxAge
}

func (s Security) GetBcryptCost() int {
	return s.bcryptCost
}

type Storage struct {
	databaseURL string
	redisAddr   string
	redisDB     int
}

var _ StorageConfig = Storage{}

// GetDatabaseURL returns the Postgres DSN. Empty means in-memory repositories.
func (s Storage) GetDatabaseURL() string {
	return s.databaseURL
}

// GetRedisAddr returns the Redis address for the revocation list. Empty means in-memory.
func (s Storage) GetRedisAddr() string {
	return s.redisAddr
}

func (s Storage) GetRedisDB() int {
	return s.redisDB
}
