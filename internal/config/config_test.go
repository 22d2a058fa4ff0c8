package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bakery")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 19, cfg.Pricing.StartHour)
	assert.Equal(t, 3, cfg.NumberRetries)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, 600, cfg.RateLimit.PerMinute)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Idempotency.TTL)
	assert.True(t, cfg.Idempotency.Enabled)
	assert.Equal(t, "Asia/Colombo", cfg.Location().String())
	assert.Equal(t, "dev", cfg.App.Version)

	shop := cfg.ShopDefaults()
	assert.Equal(t, "Bakery", shop.Name)
	assert.Equal(t, "Rs.", shop.Currency)
	assert.Equal(t, "Thank you, come again!", shop.ReceiptFooter)

	pool := cfg.Pool()
	assert.Equal(t, int32(25), pool.MaxConns)
	assert.Equal(t, "postgres://localhost/bakery", pool.DSN)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/bakery")
	t.Setenv("SPECIAL_PRICE_START_HOUR", "18")
	t.Setenv("SPECIAL_PRICE_RULE", "hour >= start_hour && weekday != 0")
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("APP_ENV", "production")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	pc := cfg.PricingPolicy()
	assert.Equal(t, 18, pc.StartHour)
	assert.Equal(t, "hour >= start_hour && weekday != 0", pc.Rule)
	assert.Equal(t, time.UTC, pc.Location)
	assert.Equal(t, int32(40), cfg.Pool().MaxConns)
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.Logger().Development)
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/bakery")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=postgres://file/bakery\nLOW_STOCK_THRESHOLD=4\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("LOW_STOCK_THRESHOLD") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.LowStockThreshold)
	assert.Equal(t, "postgres://env/bakery", cfg.DB.URL, "real environment wins over .env")
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database": {"DATABASE_URL": ""},
		"hour out of range": {
			"DATABASE_URL":             "postgres://x",
			"SPECIAL_PRICE_START_HOUR": "24",
		},
		"no retries": {
			"DATABASE_URL":          "postgres://x",
			"NUMBER_RETRY_ATTEMPTS": "0",
		},
		"unknown zone": {
			"DATABASE_URL": "postgres://x",
			"TIMEZONE":     "Mars/Olympus",
		},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(noEnvFile(t))
			assert.Error(t, err)
		})
	}
}
