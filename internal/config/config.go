package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
)

const defaultJWTSecret = "dev-secret-change-in-production"

var ErrInsecureSecret = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port           string
	Env            string
	DatabaseDSN    string
	JWTSecret      string
	SessionTTL     time.Duration
	KDFIterations  int
	CipherMode     string
	ShareBaseURL   string
	ShareMaxHours  int
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the configuration from the environment and exits on an unsafe production setup.
func Load() Config {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// FromEnv reads the configuration from the environment without validating it.
func FromEnv() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/mdp?parseTime=true"),
		JWTSecret:      getEnv("JWT_SECRET", defaultJWTSecret),
		SessionTTL:     getEnvDuration("SESSION_TTL", time.Hour),
		KDFIterations:  getEnvInt("KDF_ITERATIONS", crypto.DefaultKDFIterations),
		CipherMode:     strings.ToLower(getEnv("CIPHER_MODE", crypto.ModeCBC)),
		ShareBaseURL:   strings.TrimRight(getEnv("SHARE_BASE_URL", "http://localhost:8080"), "/"),
		ShareMaxHours:  getEnvInt("SHARE_MAX_HOURS", 168),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

// Validate rejects settings that would weaken the vault.
func (c Config) Validate() error {
	if c.Env == "production" && c.JWTSecret == defaultJWTSecret {
		return ErrInsecureSecret
	}
	if _, err := crypto.NewFieldCipher(c.CipherMode); err != nil {
		return err
	}
	if c.KDFIterations < crypto.DefaultKDFIterations {
		slog.Warn("KDF_ITERATIONS below minimum, using minimum", "requested", c.KDFIterations, "minimum", crypto.DefaultKDFIterations)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring malformed integer setting", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("ignoring malformed number setting", "key", key, "value", v)
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("ignoring malformed duration setting", "key", key, "value", v)
		return fallback
	}
	return d
}
