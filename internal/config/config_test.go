package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "receptionist"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
	c.ApplyDefaults()
	return c
}

var baseEnv = map[string]string{
	"ENV_FILE":            "",
	"APP_ENV":             "local",
	"APP_PORT":            "8080",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "x",
	"DB_NAME":             "receptionist",
	"DB_SSLMODE":          "",
	"DB_MAX_CONNS":        "",
	"REDIS_HOST":          "localhost",
	"REDIS_PORT":          "6379",
	"REDIS_DB":            "",
	"JWT_SECRET":          "secret",
	"JWT_ACCESS_TTL":      "",
	"JWT_REFRESH_TTL":     "",
	"TWILIO_ACCOUNT_SID":  "",
	"TWILIO_AUTH_TOKEN":   "",
	"TWILIO_FROM_NUMBER":  "",
	"VAPI_WEBHOOK_SECRET": "",
	"VAPI_SERVICE_NAME":   "",
	"ASSISTANT_CACHE_TTL": "",
	"EVENTS_QUEUE":        "",
}

func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	for k, v := range baseEnv {
		t.Setenv(k, v)
	}
	for k, v := range overrides {
		t.Setenv(k, v)
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ENV is required")
	assert.Contains(t, err.Error(), "DB_HOST is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.DB.SSLMode = ""
	c.Auth.JWTIssuer, c.Auth.JWTAudience = "iss", "aud"
	c.Vapi.WebhookSecret = "s"

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_SSLMODE is required in production")
}

func TestApplyDefaults_Local(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())

	assert.Equal(t, "disable", c.DB.SSLMode)
	assert.Equal(t, int32(10), c.DB.MaxConns)
	assert.Equal(t, 15*time.Minute, c.Auth.AccessTokenTTL)
	assert.Equal(t, "vapi-webhook", c.Vapi.ServiceName)
	assert.Equal(t, 5*time.Minute, c.Assistants.CacheTTL)
	assert.Equal(t, "events:calls", c.Events.Queue)
}

func TestValidate_TwilioAllOrNothing(t *testing.T) {
	c := validConfig()
	c.Twilio.AccountSID = "AC123"

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWILIO_FROM_NUMBER")

	c.Twilio.AuthToken, c.Twilio.FromNumber = "tok", "+15550001111"
	assert.NoError(t, c.Validate())
	assert.True(t, c.Twilio.Enabled())
}

func TestValidate_RedisDBNonNegative(t *testing.T) {
	c := validConfig()
	c.Redis.DB = -1

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB must be >= 0")
}

func TestLoad_FromEnvironment(t *testing.T) {
	setEnv(t, map[string]string{
		"ASSISTANT_CACHE_TTL": "90s",
		"DB_MAX_CONNS":        "25",
		"VAPI_WEBHOOK_SECRET": "s3cret",
		"REDIS_DB":            "4",
	})

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr())
	assert.Equal(t, "localhost:6379", c.RedisAddr())
	assert.Equal(t, 90*time.Second, c.Assistants.CacheTTL)
	assert.Equal(t, int32(25), c.DB.MaxConns)
	assert.Equal(t, "s3cret", c.Vapi.WebhookSecret)
	assert.Equal(t, 4, c.Redis.DB)
	assert.Contains(t, c.PostgresDSN(), "sslmode=disable")
}

func TestLoad_ReportsParseErrors(t *testing.T) {
	setEnv(t, map[string]string{"APP_PORT": "http", "JWT_ACCESS_TTL": "soon"})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT must be an integer")
	assert.Contains(t, err.Error(), "JWT_ACCESS_TTL must be a duration")
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	setEnv(t, nil)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BUSINESS_NAME=Acme Plumbing\nAGENT_NAME=Riley\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("AGENT_NAME", "Morgan")
	t.Cleanup(func() { _ = os.Unsetenv("BUSINESS_NAME") })
	_ = os.Unsetenv("BUSINESS_NAME")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Acme Plumbing", c.Branding.BusinessName)
	// the process environment wins over the file
	assert.Equal(t, "Morgan", c.Branding.AgentName)
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	setEnv(t, map[string]string{"ENV_FILE": filepath.Join(t.TempDir(), "absent.env")})

	_, err := Load()
	assert.Error(t, err)
}
