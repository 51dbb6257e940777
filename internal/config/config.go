package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultSecretKey = "default_secret_key"

type Config struct {
	SecretKey          string
	DatabaseURL        string
	Port               int
	PasswordSaltLength int
	PasswordIterations int
	SessionMaxAge      time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		SecretKey:   firstNonEmpty(getenv("SECRET_KEY"), getenv("FLASK_KEY"), DefaultSecretKey),
		DatabaseURL: firstNonEmpty(getenv("DATABASE_URL"), getenv("SQL_KEY"), "sqlite:///data/blog.db"),
	}

	var err error
	if cfg.Port, err = intVar(getenv, "PORT", 5002); err != nil {
		return Config{}, err
	}
	if cfg.PasswordSaltLength, err = intVar(getenv, "PASSWORD_SALT_LENGTH", 10); err != nil {
		return Config{}, err
	}
	if cfg.PasswordIterations, err = intVar(getenv, "PASSWORD_ITERATIONS", 600000); err != nil {
		return Config{}, err
	}
	cfg.SessionMaxAge = 24 * time.Hour
	if v := getenv("SESSION_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("SESSION_MAX_AGE: invalid duration %q", v)
		}
		cfg.SessionMaxAge = d
	}
	return cfg, nil
}

func (c Config) InsecureSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

func DefaultLogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})
	return slog.New(handler)
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid positive integer %q", key, v)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
