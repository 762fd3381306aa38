package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"

	ValidationFlag   = "flag"
	ValidationReject = "reject"
)

// Config holds the configuration for the application.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// LLM
	LLMProvider  string        `mapstructure:"LLM_PROVIDER"`
	GeminiAPIKey string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string        `mapstructure:"GEMINI_MODEL"`
	GroqAPIKey   string        `mapstructure:"GROQ_API_KEY"`
	GroqModel    string        `mapstructure:"GROQ_MODEL"`
	LLMTimeout   time.Duration `mapstructure:"LLM_TIMEOUT"`

	// Planning
	DiningSource   string `mapstructure:"DINING_SOURCE"`
	Timezone       string `mapstructure:"TIMEZONE"`
	PlanValidation string `mapstructure:"PLAN_VALIDATION"`

	// HTTP
	MaxUploadBytes  int64    `mapstructure:"MAX_UPLOAD_BYTES"`
	RateLimitPerMin int      `mapstructure:"RATE_LIMIT_PER_MIN"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`

	MetricsDBPath string `mapstructure:"METRICS_DB_PATH"`

	// Google Calendar import (optional)
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	OAuthStateSecret   string `mapstructure:"OAUTH_STATE_SECRET"`

	// Location is TIMEZONE resolved.
	Location *time.Location `mapstructure:"-"`
}

var defaults = map[string]any{
	"PORT":                 "8080",
	"ENV":                  "development",
	"LOG_LEVEL":            "info",
	"LLM_PROVIDER":         ProviderGemini,
	"GEMINI_API_KEY":       "",
	"GEMINI_MODEL":         "gemini-1.5-pro",
	"GROQ_API_KEY":         "",
	"GROQ_MODEL":           "llama-3.3-70b-versatile",
	"LLM_TIMEOUT":          "60s",
	"DINING_SOURCE":        "builtin",
	"TIMEZONE":             "America/New_York",
	"PLAN_VALIDATION":      ValidationFlag,
	"MAX_UPLOAD_BYTES":     1 << 20,
	"RATE_LIMIT_PER_MIN":   10,
	"CORS_ORIGINS":         "*",
	"METRICS_DB_PATH":      "data/metrics.db",
	"GOOGLE_CLIENT_ID":     "",
	"GOOGLE_CLIENT_SECRET": "",
	"GOOGLE_REDIRECT_URL":  "",
	"OAUTH_STATE_SECRET":   "",
}

// NewFromEnv reads configuration from the environment, falling back to an
// optional config.yaml in the working directory or ./config.
// Credentials are not required here; the features that need them report
// their absence when used.
func NewFromEnv() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMProvider != ProviderGemini && c.LLMProvider != ProviderGroq {
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderGroq, c.LLMProvider)
	}

	c.PlanValidation = strings.ToLower(strings.TrimSpace(c.PlanValidation))
	if c.PlanValidation != ValidationFlag && c.PlanValidation != ValidationReject {
		return fmt.Errorf("PLAN_VALIDATION must be %q or %q, got %q", ValidationFlag, ValidationReject, c.PlanValidation)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.RateLimitPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must be positive, got %d", c.RateLimitPerMin)
	}

	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	c.CORSOrigins = origins
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GoogleConfigured reports whether every Google import setting is present.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" &&
		c.GoogleRedirectURL != "" && c.OAuthStateSecret != ""
}
