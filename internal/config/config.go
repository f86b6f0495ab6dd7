package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Payment  PaymentConfig  `toml:"payment"`
	Rental   RentalConfig   `toml:"rental"`
	Logging  LoggingConfig  `toml:"logging"`
	Jobs     JobsConfig     `toml:"jobs"`
}

type ServerConfig struct {
	Port      string `toml:"port"`
	JWTSecret string `toml:"jwt_secret"`
}

type DatabaseConfig struct {
	URL               string `toml:"url"`
	MigrationsEnabled bool   `toml:"migrations_enabled"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MinioConfig holds attachment storage settings. An empty endpoint disables
// attachments.
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// PaymentConfig holds gateway credentials. An empty key id disables payments.
type PaymentConfig struct {
	KeyID         string `toml:"key_id"`
	KeySecret     string `toml:"key_secret"`
	WebhookSecret string `toml:"webhook_secret"`
	BaseURL       string `toml:"base_url"`
	Currency      string `toml:"currency"`
}

type RentalConfig struct {
	SendPolicy string `toml:"send_policy"` // strict or legacy
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json or console
}

type JobsConfig struct {
	ReportRefreshInterval Duration `toml:"report_refresh_interval"`
}

// Duration decodes TOML strings such as "5m" into a time.Duration
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{MigrationsEnabled: true},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Minio: MinioConfig{
			Bucket: "rental-attachments",
			Region: "us-east-1",
		},
		Payment: PaymentConfig{Currency: "INR"},
		Rental:  RentalConfig{SendPolicy: "strict"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Jobs:    JobsConfig{ReportRefreshInterval: Duration{5 * time.Minute}},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE, then a .env file, then the process environment. Later
// sources win.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.JWTSecret, "JWT_SECRET")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	setString(&c.Minio.Region, "MINIO_REGION")
	setString(&c.Payment.KeyID, "PAYMENT_KEY_ID")
	setString(&c.Payment.KeySecret, "PAYMENT_KEY_SECRET")
	setString(&c.Payment.WebhookSecret, "PAYMENT_WEBHOOK_SECRET")
	setString(&c.Payment.BaseURL, "PAYMENT_BASE_URL")
	setString(&c.Payment.Currency, "PAYMENT_CURRENCY")
	setString(&c.Rental.SendPolicy, "RENTAL_SEND_POLICY")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	if v, ok := lookup("REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB must be an integer: %w", err)
		}
		c.Redis.DB = db
	}
	if v, ok := lookup("MINIO_USE_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MINIO_USE_SSL must be a boolean: %w", err)
		}
		c.Minio.UseSSL = b
	}
	if v, ok := lookup("MIGRATIONS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MIGRATIONS_ENABLED must be a boolean: %w", err)
		}
		c.Database.MigrationsEnabled = b
	}
	if v, ok := lookup("REPORT_REFRESH_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REPORT_REFRESH_INTERVAL must be a duration: %w", err)
		}
		c.Jobs.ReportRefreshInterval = Duration{d}
	}
	return nil
}

// Validate checks required settings and value ranges
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.Server.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	switch c.Rental.SendPolicy {
	case "strict", "legacy":
	default:
		errs = append(errs, fmt.Errorf("RENTAL_SEND_POLICY must be strict or legacy, got %q", c.Rental.SendPolicy))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format))
	}
	if c.Jobs.ReportRefreshInterval.Duration < time.Second {
		errs = append(errs, errors.New("REPORT_REFRESH_INTERVAL must be at least 1s"))
	}
	if c.Payment.KeyID != "" && (c.Payment.KeySecret == "" || c.Payment.WebhookSecret == "") {
		errs = append(errs, errors.New("PAYMENT_KEY_SECRET and PAYMENT_WEBHOOK_SECRET are required when PAYMENT_KEY_ID is set"))
	}
	return errors.Join(errs...)
}

// AttachmentsEnabled reports whether object storage is configured
func (c *Config) AttachmentsEnabled() bool {
	return c.Minio.Endpoint != ""
}

// PaymentsEnabled reports whether the payment gateway is configured
func (c *Config) PaymentsEnabled() bool {
	return c.Payment.KeyID != ""
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}
