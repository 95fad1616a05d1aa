package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=butce port=5432 sslmode=disable"

type Config struct {
	AppEnv      string
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	LogLevel  string
	LogFormat string

	ReportingCurrency   string
	AllowedCurrencies   []string
	DefaultInvestTarget int

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBAcquireTimeout  time.Duration // bir isteğin veritabanında bekleyebileceği en uzun süre

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ReportCacheTTL time.Duration

	// Boş değilse açılışta op_manager / gm_manager kullanıcıları oluşturulur
	BootstrapOpsPassword string
	BootstrapGMPassword  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "5000")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("REPORTING_CURRENCY", "USD")
	v.SetDefault("ALLOWED_CURRENCIES", "USD,EUR,TRY,GBP")
	v.SetDefault("DEFAULT_INVEST_TARGET", 20)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_ACQUIRE_TIMEOUT", "10s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REPORT_CACHE_TTL", "60s")

	cfg := &Config{
		AppEnv:               strings.ToLower(v.GetString("APP_ENV")),
		HTTPPort:             v.GetString("HTTP_PORT"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		CORSOrigins:          v.GetString("CORS_ALLOWED_ORIGINS"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		ReportingCurrency:    strings.ToUpper(strings.TrimSpace(v.GetString("REPORTING_CURRENCY"))),
		AllowedCurrencies:    splitList(v.GetString("ALLOWED_CURRENCIES")),
		DefaultInvestTarget:  v.GetInt("DEFAULT_INVEST_TARGET"),
		DBMaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBAcquireTimeout:     v.GetDuration("DB_ACQUIRE_TIMEOUT"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		ReportCacheTTL:       v.GetDuration("REPORT_CACHE_TTL"),
		BootstrapOpsPassword: v.GetString("BOOTSTRAP_OPS_PASSWORD"),
		BootstrapGMPassword:  v.GetString("BOOTSTRAP_GM_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Production güvenlik kontrolleri
func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment değişkeni tanımlanmamış")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET en az 32 karakter olmalıdır")
	}
	if c.ReportingCurrency == "" {
		return errors.New("REPORTING_CURRENCY boş olamaz")
	}
	found := false
	for _, cur := range c.AllowedCurrencies {
		if cur == c.ReportingCurrency {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("ALLOWED_CURRENCIES raporlama para birimini (%s) içermeli", c.ReportingCurrency)
	}
	if c.DefaultInvestTarget <= 0 {
		return errors.New("DEFAULT_INVEST_TARGET pozitif olmalı")
	}
	if c.DBMaxOpenConns <= 0 {
		return errors.New("DB_MAX_OPEN_CONNS pozitif olmalı")
	}
	if c.DBAcquireTimeout <= 0 {
		return errors.New("DB_ACQUIRE_TIMEOUT pozitif olmalı")
	}
	return nil
}

// Warnings lists non-fatal configuration problems worth logging at startup.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		out = append(out, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
