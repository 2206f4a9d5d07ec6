package config

import (
	"errors"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string // postgres URL, or "sqlite:<path>" for local runs
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	SendinblueAPIKey    string // SENDINBLUE_API_KEY for approval notification emails (Brevo)
	MailFrom            string

	// Pricing guardrail, as a percentage (10 = 10%).
	MinMarginPct decimal.Decimal
	// Dedicated HMAC key for approval signatures. Not shared with sessions.
	ApprovalSigningKey string
	BaseCurrency       string
}

// ErrMissingSigningKey is returned in production when APPROVAL_SIGNING_KEY is empty.
var ErrMissingSigningKey = errors.New("APPROVAL_SIGNING_KEY must be set in production")

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PRICING_MIN_MARGIN_PCT", "10")
	viper.SetDefault("BASE_CURRENCY", "QAR")

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	minMargin, err := decimal.NewFromString(strings.TrimSpace(viper.GetString("PRICING_MIN_MARGIN_PCT")))
	if err != nil {
		return nil, errors.New("PRICING_MIN_MARGIN_PCT must be a number")
	}

	cfg := &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:    viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),
		MinMarginPct:        minMargin,
		ApprovalSigningKey:  viper.GetString("APPROVAL_SIGNING_KEY"),
		BaseCurrency:        strings.ToUpper(strings.TrimSpace(viper.GetString("BASE_CURRENCY"))),
	}
	if cfg.Env == "production" && cfg.ApprovalSigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	return cfg, nil
}

// MinMarginFraction converts the configured percentage into a fraction (10 -> 0.10).
func (c *Config) MinMarginFraction() decimal.Decimal {
	return c.MinMarginPct.Div(decimal.NewFromInt(100))
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
