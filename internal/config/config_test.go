package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, Config{
		SecretKey:          DefaultSecretKey,
		DatabaseURL:        "sqlite:///data/blog.db",
		Port:               5002,
		PasswordSaltLength: 10,
		PasswordIterations: 600000,
		SessionMaxAge:      24 * time.Hour,
	}, cfg)
	assert.True(t, cfg.InsecureSecret())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		"SECRET_KEY":           "s3cret",
		"FLASK_KEY":            "ignored",
		"DATABASE_URL":         "postgres://localhost/blog",
		"PORT":                 "8080",
		"PASSWORD_SALT_LENGTH": "16",
		"PASSWORD_ITERATIONS":  "1000",
		"SESSION_MAX_AGE":      "30m",
	}))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, "postgres://localhost/blog", cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 16, cfg.PasswordSaltLength)
	assert.Equal(t, 1000, cfg.PasswordIterations)
	assert.Equal(t, 30*time.Minute, cfg.SessionMaxAge)
	assert.False(t, cfg.InsecureSecret())
}

func TestFromEnvLegacyNames(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		"FLASK_KEY": "legacy",
		"SQL_KEY":   "sqlite:///legacy.db",
	}))
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.SecretKey)
	assert.Equal(t, "sqlite:///legacy.db", cfg.DatabaseURL)
}

func TestFromEnvInvalid(t *testing.T) {
	for key, value := range map[string]string{
		"PORT":                 "http",
		"PASSWORD_SALT_LENGTH": "-1",
		"PASSWORD_ITERATIONS":  "0",
		"SESSION_MAX_AGE":      "forever",
	} {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(envFrom(map[string]string{key: value}))
			assert.ErrorContains(t, err, key)
		})
	}
}
