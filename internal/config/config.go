// Package config loads runtime configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all values consumed by the service. Missing required
// variables abort startup; a service without a signing secret or database
// coordinates cannot do anything useful.
type Config struct {
	Env           string // application environment (dev/test/prod)
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host
	DBPort        string // database port
	DBName        string // database name
	JWTSecret     string // symmetric secret for signing tokens
	AccessTTLMin  int    // access token time-to-live in minutes
	RefreshTTLMin int    // refresh token time-to-live in minutes
	BcryptCost    int    // bcrypt cost for password hashing
}

// Load reads the configuration from the environment. Required variables are
// enforced by must(); Redis and RabbitMQ settings are read lazily by their
// own constructors because both are optional.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLMin: mustInt("REFRESH_TOKEN_TTL_MIN"),
		BcryptCost:    mustInt("BCRYPT_COST"),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
