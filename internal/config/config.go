// Package config loads service settings from the environment, an optional
// config.yaml and .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"bakerypos/internal/domain/pricing"
	"bakerypos/internal/domain/shop"
	"bakerypos/internal/infrastructure/storage/postgres"
	"bakerypos/pkg/logger"
)

// Config is the full service configuration.
type Config struct {
	App         AppConfig
	DB          DBConfig
	JWT         JWTConfig
	Pricing     PricingConfig
	Paging      PagingConfig
	Idempotency IdempotencyConfig
	Cache       CacheConfig
	RateLimit   RateLimitConfig
	Shop        ShopConfig

	Timezone          string
	LowStockThreshold int
	NumberRetries     int
}

// AppConfig holds process level settings.
type AppConfig struct {
	Env      string
	Port     string
	LogLevel string
	Version  string
}

// DBConfig holds PostgreSQL settings.
type DBConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds cashier token settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// PricingConfig holds the special-price window settings.
type PricingConfig struct {
	StartHour int
	Rule      string
}

// PagingConfig bounds list endpoints.
type PagingConfig struct {
	DefaultSize int
	MaxSize     int
}

// IdempotencyConfig controls X-Idempotency-Key handling.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// CacheConfig configures the optional Redis POS catalog cache.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// RateLimitConfig is the per-IP request budget.
type RateLimitConfig struct {
	PerMinute int
}

// ShopConfig is the shop profile used until one is saved through the API.
type ShopConfig struct {
	Name     string
	Address  string
	Phone    string
	Currency string
	Footer   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("TIMEZONE", "Asia/Colombo")
	v.SetDefault("SPECIAL_PRICE_START_HOUR", 19)
	v.SetDefault("SPECIAL_PRICE_RULE", "")
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("MAX_PAGE_SIZE", 100)
	v.SetDefault("IDEMPOTENCY_ENABLED", true)
	v.SetDefault("IDEMPOTENCY_TTL", "10m")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("POS_CACHE_TTL", "5m")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)
	v.SetDefault("NUMBER_RETRY_ATTEMPTS", 3)
	v.SetDefault("SHOP_NAME", "Bakery")
	v.SetDefault("SHOP_ADDRESS", "")
	v.SetDefault("SHOP_PHONE", "")
	v.SetDefault("SHOP_CURRENCY", "Rs.")
	v.SetDefault("SHOP_FOOTER", "Thank you, come again!")
}

// Load reads .env files (if present), then config.yaml (if present), then
// the environment. Environment variables win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Version:  v.GetString("APP_VERSION"),
		},
		DB: DBConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			MinConns: v.GetInt32("DB_MIN_CONNS"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Pricing: PricingConfig{
			StartHour: v.GetInt("SPECIAL_PRICE_START_HOUR"),
			Rule:      v.GetString("SPECIAL_PRICE_RULE"),
		},
		Paging: PagingConfig{
			DefaultSize: v.GetInt("DEFAULT_PAGE_SIZE"),
			MaxSize:     v.GetInt("MAX_PAGE_SIZE"),
		},
		Idempotency: IdempotencyConfig{
			Enabled: v.GetBool("IDEMPOTENCY_ENABLED"),
			TTL:     v.GetDuration("IDEMPOTENCY_TTL"),
		},
		Cache: CacheConfig{
			RedisURL: v.GetString("REDIS_URL"),
			TTL:      v.GetDuration("POS_CACHE_TTL"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Shop: ShopConfig{
			Name:     v.GetString("SHOP_NAME"),
			Address:  v.GetString("SHOP_ADDRESS"),
			Phone:    v.GetString("SHOP_PHONE"),
			Currency: v.GetString("SHOP_CURRENCY"),
			Footer:   v.GetString("SHOP_FOOTER"),
		},
		Timezone:          v.GetString("TIMEZONE"),
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
		NumberRetries:     v.GetInt("NUMBER_RETRY_ATTEMPTS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.DB.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Pricing.StartHour < 0 || c.Pricing.StartHour > 23 {
		return fmt.Errorf("SPECIAL_PRICE_START_HOUR must be 0-23, got %d", c.Pricing.StartHour)
	}
	if c.NumberRetries < 1 {
		return fmt.Errorf("NUMBER_RETRY_ATTEMPTS must be at least 1, got %d", c.NumberRetries)
	}
	if c.Paging.DefaultSize < 1 || c.Paging.MaxSize < c.Paging.DefaultSize {
		return fmt.Errorf("invalid page sizes %d/%d", c.Paging.DefaultSize, c.Paging.MaxSize)
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the dev logger and relaxed security apply.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Location returns the business time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Logger returns the zap logger settings.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:       c.App.LogLevel,
		Development: c.IsDevelopment(),
	}
}

// Pool returns the pgx pool settings.
func (c *Config) Pool() postgres.PoolConfig {
	pc := postgres.DefaultPoolConfig(c.DB.URL)
	if c.DB.MaxConns > 0 {
		pc.MaxConns = c.DB.MaxConns
	}
	if c.DB.MinConns > 0 {
		pc.MinConns = c.DB.MinConns
	}
	return pc
}

// PricingPolicy returns the pricing policy settings.
func (c *Config) PricingPolicy() pricing.Config {
	return pricing.Config{
		StartHour: c.Pricing.StartHour,
		Location:  c.Location(),
		Rule:      c.Pricing.Rule,
	}
}

// ShopDefaults returns the shop profile served before one is saved.
func (c *Config) ShopDefaults() shop.Profile {
	return shop.Profile{
		Name:          c.Shop.Name,
		Address:       c.Shop.Address,
		Phone:         c.Shop.Phone,
		Currency:      c.Shop.Currency,
		ReceiptFooter: c.Shop.Footer,
	}
}
