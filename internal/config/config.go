package config

import (
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name, e.g. SHOP_SERVER_PORT.
const EnvPrefix = "SHOP"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	JWT        JWTConfig
	S3         S3Config
	Mail       MailConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Coupons    CouponsConfig
	SuperAdmin SuperAdminConfig
	ClientURL  string `default:"http://localhost:3000" usage:"Frontend base URL used in emailed links"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string        `default:"0.0.0.0"`
	Port            int           `default:"8080"`
	ReadTimeout     time.Duration `default:"15s"`
	WriteTimeout    time.Duration `default:"15s"`
	IdleTimeout     time.Duration `default:"60s"`
	ShutdownTimeout time.Duration `default:"30s"`
}

// DatabaseConfig holds database-related configuration.
// URL, when set, takes precedence over the individual connection fields.
type DatabaseConfig struct {
	URL             string
	Host            string `default:"localhost"`
	Port            int    `default:"5432"`
	User            string `default:"postgres"`
	Password        string
	Name            string        `default:"shopfront"`
	MaxConnections  int           `default:"25"`
	MinConnections  int           `default:"5"`
	MaxConnLifetime time.Duration `default:"5m"`
	RunMigrations   bool          `default:"true"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `default:"info"`
	Format string `default:"json"` // "json" or "console"
}

// JWTConfig holds bearer token signing configuration.
type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration `default:"24h"`
	RefreshExpiresIn time.Duration `default:"720h"`
}

// S3Config holds object storage configuration for product and banner images
// and for coupon import files.
type S3Config struct {
	Enabled       bool `default:"false"`
	Bucket        string
	Region        string `default:"us-east-1"`
	ImagePrefix   string `default:"images/"`
	CouponPrefix  string `default:"coupons/"`
	PublicBaseURL string `usage:"Base URL objects are served from; defaults to the bucket virtual-host URL"`
}

// MailConfig holds SMTP configuration.
type MailConfig struct {
	Enabled  bool `default:"false"`
	Host     string
	Port     int `default:"587"`
	Username string
	Password string
	From     string `default:"no-reply@shopfront.local"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*"`
}

// RateLimitConfig controls the per-client limiter applied to /auth routes.
type RateLimitConfig struct {
	Max    int           `default:"20"`
	Window time.Duration `default:"1m"`
}

// CouponsConfig lists the gzip coupon files imported by POST /coupons/import.
type CouponsConfig struct {
	ImportFiles []string
}

// SuperAdminConfig seeds the first super-admin account when none exists.
type SuperAdminConfig struct {
	Name     string `default:"Super Admin"`
	Email    string
	Password string
}

// Load loads configuration from a .env file, config.yaml and SHOP_-prefixed
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:          EnvPrefix,
		SkipFlags:          true,
		AllowUnknownEnvs:   true,
		AllowUnknownFields: true,
		Files:              []string{"config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return errors.New("database host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.User == "" {
			return errors.New("database user is required")
		}
		if c.Database.Name == "" {
			return errors.New("database name is required")
		}
	}

	if c.Database.MaxConnections < 1 {
		return errors.New("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return errors.New("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return errors.New("database min connections cannot exceed max connections")
	}

	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("JWT access and refresh secrets are required")
	}

	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT access and refresh secrets must differ")
	}

	if c.JWT.AccessExpiresIn <= 0 || c.JWT.RefreshExpiresIn <= 0 {
		return errors.New("JWT expiry durations must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return errors.New("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return errors.New("S3 region is required when S3 is enabled")
		}
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			return errors.New("SMTP host is required when mail is enabled")
		}
		if c.Mail.Port < 1 || c.Mail.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Mail.Port)
		}
	}

	if c.RateLimit.Max < 1 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit max and window must be positive")
	}

	if _, err := url.ParseRequestURI(c.ClientURL); err != nil {
		return fmt.Errorf("invalid client URL: %s", c.ClientURL)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
