package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

type TurnstileConfig struct {
	SiteKey   string `yaml:"site_key" env:"TURNSTILE_SITE_KEY"`
	SecretKey string `yaml:"secret_key" env:"TURNSTILE_SECRET_KEY"`
	VerifyURL string `yaml:"verify_url" env:"TURNSTILE_VERIFY_URL"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

type EmailConfig struct {
	// Provider selects the delivery backend: "resend" (HTTP API) or "smtp".
	Provider     string     `yaml:"provider" env:"EMAIL_PROVIDER"`
	From         string     `yaml:"from" env:"EMAIL_FROM"`
	To           string     `yaml:"to" env:"EMAIL_TO"`
	ResendAPIKey string     `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	DryRun       bool       `yaml:"dry_run" env:"EMAIL_DRY_RUN"`
	SMTP         SMTPConfig `yaml:"smtp"`
}

type SecurityConfig struct {
	CSRFSecret     string `yaml:"csrf_secret" env:"CSRF_SECRET"`
	CSRFTTLMinutes int    `yaml:"csrf_ttl_minutes" env:"CSRF_TTL_MINUTES"`
}

type StoreConfig struct {
	// DSN enables the shared Postgres-backed record store. Empty means in-memory.
	DSN                  string `yaml:"dsn" env:"DATABASE_URL"`
	TokenTTLMinutes      int    `yaml:"token_ttl_minutes" env:"TOKEN_TTL_MINUTES"`
	SweepIntervalMinutes int    `yaml:"sweep_interval_minutes" env:"SWEEP_INTERVAL_MINUTES"`
	MaxEntries           int    `yaml:"max_entries" env:"STORE_MAX_ENTRIES"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests" env:"RATE_LIMIT_REQUESTS"`
	WindowSeconds int `yaml:"window_seconds" env:"RATE_LIMIT_WINDOW_SECONDS"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

type ProfileLink struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type ProfileExperience struct {
	Role    string   `yaml:"role"`
	Company string   `yaml:"company"`
	Period  string   `yaml:"period"`
	Details []string `yaml:"details"`
}

// ProfileConfig feeds the resume generator.
type ProfileConfig struct {
	Name       string              `yaml:"name"`
	Title      string              `yaml:"title"`
	Email      string              `yaml:"email"`
	Location   string              `yaml:"location"`
	Summary    string              `yaml:"summary"`
	Links      []ProfileLink       `yaml:"links"`
	Experience []ProfileExperience `yaml:"experience"`
	Skills     []string            `yaml:"skills"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Turnstile TurnstileConfig `yaml:"turnstile"`
	Email     EmailConfig     `yaml:"email"`
	Security  SecurityConfig  `yaml:"security"`
	Store     StoreConfig     `yaml:"store"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Profile   ProfileConfig   `yaml:"profile"`
}

// LoadConfig reads config/config.yaml (optional) and applies environment
// overrides on top. Secrets normally arrive via env, not the YAML file.
func LoadConfig() (*Config, error) {
	return loadConfig("config/config.yaml")
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Turnstile.VerifyURL == "" {
		c.Turnstile.VerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	}
	if c.Email.Provider == "" {
		c.Email.Provider = "resend"
	}
	if c.Security.CSRFTTLMinutes <= 0 {
		c.Security.CSRFTTLMinutes = 60
	}
	if c.Store.TokenTTLMinutes <= 0 {
		c.Store.TokenTTLMinutes = 15
	}
	if c.Store.SweepIntervalMinutes <= 0 {
		c.Store.SweepIntervalMinutes = 60
	}
	if c.Store.MaxEntries <= 0 {
		c.Store.MaxEntries = 1000
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 5
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 60
	}
}
