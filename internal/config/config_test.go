package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":              "test",
		"APP_PORT":             "8080",
		"DB_USER":              "crms",
		"DB_HOST":              "localhost",
		"DB_PORT":              "3306",
		"DB_NAME":              "crms",
		"JWT_SECRET":           "secret",
		"ACCESS_TOKEN_TTL_MIN": "15",
	} {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://mq:5672/")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("NOTIFICATION_ENABLED", "yes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "amqp://mq:5672/", cfg.RabbitURL)
	assert.True(t, cfg.Notification.Enabled)
	assert.Equal(t, "CRMS Reservation", cfg.Notification.SubjectPrefix)
}

func TestLoadReportsAllProblems(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), `invalid int for ACCESS_TOKEN_TTL_MIN: "soon"`)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CRMS_DOTENV_A=from-file\nCRMS_DOTENV_B=from-file\n"), 0o600))
	t.Setenv("CRMS_DOTENV_A", "")
	os.Unsetenv("CRMS_DOTENV_A")
	t.Setenv("CRMS_DOTENV_B", "from-env")
	t.Cleanup(func() { os.Unsetenv("CRMS_DOTENV_A") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("CRMS_DOTENV_A"))
	assert.Equal(t, "from-env", os.Getenv("CRMS_DOTENV_B"))
}

func TestRateLimitNormalization(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestIdempotencyMethodsUpperCased(t *testing.T) {
	t.Setenv("IDEMPOTENCY_METHODS", "post, patch")
	assert.Equal(t, []string{"POST", "PATCH"}, LoadIdempotencyConfig().Methods)
}

func TestRedisAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}
