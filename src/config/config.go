package config

import (
	cryptoRand "crypto/rand"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      int    `env:"PORT" envDefault:"5000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"gamehost"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	// Auth
	JWTSecret          string `env:"JWT_SECRET"`
	JWTSecretGenerated bool   `env:"-"`
	CookieSecure       bool   `env:"COOKIE_SECURE" envDefault:"false"`

	// Login and first-user registration throttling, per client IP
	AuthRateLimitPerMinute int `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"5"`
	AuthRateLimitBurst     int `env:"AUTH_RATE_LIMIT_BURST" envDefault:"3"`

	// CORS, comma separated
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`

	// Env files that mirror integration settings (project root and server directory)
	EnvFilePaths            []string      `env:"ENV_FILE_PATHS" envSeparator:"," envDefault:".env,server/.env"`
	MirrorReconcileInterval time.Duration `env:"MIRROR_RECONCILE_INTERVAL" envDefault:"1h"`

	// Encryption at rest for stored credentials; 64 hex chars, empty = disabled
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	// Connectivity probes
	CtrlPanelURL      string        `env:"CTRLPANEL_URL" envDefault:"https://panel.example.com"`
	HetrixToolsAPIURL string        `env:"HETRIXTOOLS_API_URL" envDefault:"https://api.hetrixtools.com"`
	ProbeTimeout      time.Duration `env:"PROBE_TIMEOUT" envDefault:"30s"`

	// Plan catalog seed (first boot only)
	PlansSeedFile string `env:"PLANS_SEED_FILE" envDefault:"plans.yaml"`

	// Admin auto-seed (first run only)
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load loads configuration from .env files and environment variables
func Load() (*Config, error) {
	// Missing .env files are fine, the process environment still applies
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Generate JWT secret if not provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = generateRandomSecret(48)
		cfg.JWTSecretGenerated = true
	}

	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	cfg.EnvFilePaths = trimAll(cfg.EnvFilePaths)

	return cfg, nil
}

// DatabaseURL builds the pgx connection string from the DB_* settings
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// generateRandomSecret generates a cryptographically secure random secret for JWT signing
func generateRandomSecret(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	if _, err := cryptoRand.Read(result); err != nil {
		panic("failed to generate random secret: " + err.Error())
	}
	for i := range result {
		result[i] = charset[result[i]%byte(len(charset))]
	}
	return string(result)
}
