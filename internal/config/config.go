package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Security  SecurityConfig  `toml:"security"`
	Storage   StorageConfig   `toml:"storage"`
	CORS      CORSConfig      `toml:"cors"`
	Logging   LoggingConfig   `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`

	// MigrateOnStart applies pending migrations before the server listens.
	MigrateOnStart bool `toml:"migrate_on_start"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL          string `toml:"url"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `toml:"host"`
	Port         int           `toml:"port"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds security-related settings
type SecurityConfig struct {
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl"`
}

// StorageConfig selects and configures the asset store.
type StorageConfig struct {
	Driver    string `toml:"driver"` // s3, memory
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json, text
}

// RateLimitConfig throttles the signup and login routes per client address.
type RateLimitConfig struct {
	AuthPerMinute int `toml:"auth_per_minute"`
	Burst         int `toml:"burst"`
}

// Default returns the configuration used before any file or environment is applied.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{MaxOpenConns: 25, MaxIdleConns: 5},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Security: SecurityConfig{TokenTTL: 72 * time.Hour},
		Storage:  StorageConfig{Driver: "s3", Region: "us-east-1", UseSSL: true},
		CORS: CORSConfig{AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
		RateLimit: RateLimitConfig{AuthPerMinute: 20, Burst: 5},
	}
}

// Load builds and validates the configuration. A .env file in the working
// directory is loaded first, then the TOML file at path (or $MUSICSHARE_CONFIG)
// is laid over the defaults, and finally environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Read resolves the configuration like Load but skips validation, for tools
// that only need part of it.
func Read(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("MUSICSHARE_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	loaders := []struct {
		name string
		fn   func() error
	}{
		{"database", cfg.loadDatabase},
		{"server", cfg.loadServer},
		{"security", cfg.loadSecurity},
		{"storage", cfg.loadStorage},
		{"rate limit", cfg.loadRateLimit},
	}
	for _, l := range loaders {
		if err := l.fn(); err != nil {
			return nil, fmt.Errorf("load %s config: %w", l.name, err)
		}
	}
	cfg.loadCORS()
	cfg.loadLogging()

	if v, ok := os.LookupEnv("MIGRATE_ON_START"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MIGRATE_ON_START: %w", err)
		}
		cfg.MigrateOnStart = b
	}

	return cfg, nil
}

func (c *Config) loadDatabase() error {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	} else if host, user, name := os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_NAME"); host != "" && user != "" && name != "" {
		c.Database.URL = fmt.Sprintf(
			"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			user,
			os.Getenv("DB_PASSWORD"),
			host,
			getEnvOrDefault("DB_PORT", "5432"),
			name,
			getEnvOrDefault("DB_SSLMODE", "disable"),
		)
	}

	if err := envInt("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns); err != nil {
		return err
	}
	return envInt("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
}

func (c *Config) loadServer() error {
	c.Server.Host = getEnvOrDefault("HOST", c.Server.Host)
	if err := envInt("PORT", &c.Server.Port); err != nil {
		return err
	}
	if err := envDuration("SERVER_READ_TIMEOUT", &c.Server.ReadTimeout); err != nil {
		return err
	}
	return envDuration("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout)
}

func (c *Config) loadSecurity() error {
	c.Security.JWTSecret = getEnvOrDefault("JWT_SECRET", c.Security.JWTSecret)
	return envDuration("TOKEN_TTL", &c.Security.TokenTTL)
}

func (c *Config) loadStorage() error {
	c.Storage.Driver = strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", c.Storage.Driver))
	c.Storage.Endpoint = getEnvOrDefault("S3_ENDPOINT", c.Storage.Endpoint)
	c.Storage.Region = getEnvOrDefault("S3_REGION", c.Storage.Region)
	c.Storage.Bucket = getEnvOrDefault("S3_BUCKET", c.Storage.Bucket)
	c.Storage.AccessKey = getEnvOrDefault("S3_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = getEnvOrDefault("S3_SECRET_KEY", c.Storage.SecretKey)
	if v, ok := os.LookupEnv("S3_USE_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid S3_USE_SSL: %w", err)
		}
		c.Storage.UseSSL = b
	}
	return nil
}

func (c *Config) loadRateLimit() error {
	if err := envInt("AUTH_RATE_PER_MINUTE", &c.RateLimit.AuthPerMinute); err != nil {
		return err
	}
	return envInt("AUTH_RATE_BURST", &c.RateLimit.Burst)
}

func (c *Config) loadCORS() {
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		return
	}
	var origins []string
	for _, origin := range strings.Split(originsEnv, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.CORS.AllowedOrigins = origins
}

func (c *Config) loadLogging() {
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", c.Logging.Format)
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	if c.Database.URL == "" {
		errors = append(errors, "DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}

	if c.Security.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	} else if len(c.Security.JWTSecret) < 16 {
		errors = append(errors, "JWT_SECRET must be at least 16 characters")
	}
	if c.Security.TokenTTL <= 0 {
		errors = append(errors, "TOKEN_TTL must be positive")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	switch c.Storage.Driver {
	case "memory":
	case "s3":
		if c.Storage.Endpoint == "" {
			errors = append(errors, "S3_ENDPOINT is required when STORAGE_DRIVER is s3")
		}
		if c.Storage.Bucket == "" {
			errors = append(errors, "S3_BUCKET is required when STORAGE_DRIVER is s3")
		}
	default:
		errors = append(errors, "STORAGE_DRIVER must be one of: s3, memory")
	}

	if c.RateLimit.AuthPerMinute < 0 || c.RateLimit.Burst < 0 {
		errors = append(errors, "AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must not be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
