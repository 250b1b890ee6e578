package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.abacatepay.com/v1", cfg.Payment.BaseURL)
	assert.Equal(t, 3600, cfg.Payment.ExpiresIn)
	assert.Equal(t, 2*time.Minute, cfg.Checkout.LockTTL)
	assert.Equal(t, 30*time.Minute, cfg.Checkout.SessionIdleTTL)
	assert.Greater(t, cfg.Server.WriteTimeout, cfg.Payment.HTTPTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingAPIKeyIsNotFatal(t *testing.T) {
	t.Setenv("ABACATEPAY_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Payment.APIKey)
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PIX_EXPIRES_IN", "900")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CHECKOUT_DISTRIBUTED_LOCK", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 900, cfg.Payment.ExpiresIn)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
	assert.False(t, cfg.Checkout.DistributedLock)
}

func TestLoad_WriteTimeoutMustOutlastPaymentCall(t *testing.T) {
	t.Setenv("SERVER_WRITE_TIMEOUT", "30s")
	t.Setenv("PAYMENT_HTTP_TIMEOUT", "30s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_WRITE_TIMEOUT")

	_, err = LoadForFunction()
	require.Error(t, err)
}

func TestLoadForFunction_SkipsDatabaseChecks(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "short")

	cfg, err := LoadForFunction()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Server.FunctionPort)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
