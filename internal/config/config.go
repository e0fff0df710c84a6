package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	ListenAddr string
	BaseURL    string // public site URL, used for Paystack callback URLs
	DBDSN      string

	Paystack PaystackConfig
	SMTP     SMTPConfig
}

type PaystackConfig struct {
	BaseURL   string
	SecretKey string // server-only
	PublicKey string // safe to expose to the browser
}

type SMTPConfig struct {
	Host          string
	Port          string
	Username      string
	Password      string
	TLSMode       string // "", "starttls" or "tls"
	SkipVerifyTLS bool

	FromAddr string
	FromName string
}

// Load reads configuration from the environment. Callers are expected to have
// run godotenv.Load() beforehand in dev.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr: getenv("LISTEN_ADDR", ":8080"),
		BaseURL:    getenv("BASE_URL", "http://localhost:8080"),
		DBDSN:      os.Getenv("DB_DSN"),
		Paystack: PaystackConfig{
			BaseURL:   getenv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
			PublicKey: os.Getenv("PAYSTACK_PUBLIC_KEY"),
		},
		SMTP: SMTPConfig{
			Host:          getenv("SMTP_HOST", "localhost"),
			Port:          getenv("SMTP_PORT", "1025"),
			Username:      os.Getenv("SMTP_USERNAME"),
			Password:      os.Getenv("SMTP_PASSWORD"),
			TLSMode:       os.Getenv("SMTP_TLS_MODE"),
			SkipVerifyTLS: getenvBool("SMTP_SKIP_VERIFY_TLS"),
			FromAddr:      getenv("MAIL_FROM_ADDR", "no-reply@jumlamart.com"),
			FromName:      getenv("MAIL_FROM_NAME", "Jumlamart"),
		},
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("config: DB_DSN is required")
	}
	if cfg.Paystack.SecretKey == "" {
		return Config{}, fmt.Errorf("config: PAYSTACK_SECRET_KEY is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
