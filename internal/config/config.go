package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	JWT           JWTConfig           `yaml:"jwt"`
	Log           LogConfig           `yaml:"log"`
	Orders        OrdersConfig        `yaml:"orders"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// ServerConfig contains gRPC and HTTP listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	HTTPPort int    `yaml:"http_port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// OrdersConfig tunes order listing and search.
type OrdersConfig struct {
	DefaultPageSize   int32   `yaml:"default_page_size"`
	MaxPageSize       int32   `yaml:"max_page_size"`
	SearchDebounceMS  int     `yaml:"search_debounce_ms"`
	LoadMoreThreshold float64 `yaml:"load_more_threshold"`
	Timezone          string  `yaml:"timezone"` // IANA name used for calendar-day pricing
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	LateOrderReminders string `yaml:"late_order_reminders"`
}

// NotificationsConfig configures the late-order notifiers. A notifier
// without credentials is skipped.
type NotificationsConfig struct {
	SendGridAPIKey          string `yaml:"sendgrid_api_key"`
	FromEmail               string `yaml:"from_email"`
	FromName                string `yaml:"from_name"`
	FirebaseEnabled         bool   `yaml:"firebase_enabled"`
	FirebaseCredentialsFile string `yaml:"firebase_credentials_file"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Load reads configuration from a YAML file. A .env file next to the
// process is loaded first so its values can override the YAML.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes, applies environment overrides and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Notifications
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Notifications.SendGridAPIKey = val
	}
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Notifications.FirebaseCredentialsFile = val
		c.Notifications.FirebaseEnabled = true
	}

	if val := os.Getenv("ORDERS_TIMEZONE"); val != "" {
		c.Orders.Timezone = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = c.Server.Port + 1
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 || c.Server.HTTPPort == c.Server.Port {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}

	// Orders defaults
	if c.Orders.DefaultPageSize == 0 {
		c.Orders.DefaultPageSize = 20
	}
	if c.Orders.MaxPageSize == 0 {
		c.Orders.MaxPageSize = 100
	}
	if c.Orders.DefaultPageSize > c.Orders.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", c.Orders.DefaultPageSize, c.Orders.MaxPageSize)
	}
	if c.Orders.SearchDebounceMS == 0 {
		c.Orders.SearchDebounceMS = 500
	}
	if c.Orders.LoadMoreThreshold == 0 {
		c.Orders.LoadMoreThreshold = 0.8
	}
	if c.Orders.LoadMoreThreshold <= 0 || c.Orders.LoadMoreThreshold > 1 {
		return fmt.Errorf("load more threshold must be in (0, 1]: %v", c.Orders.LoadMoreThreshold)
	}
	if c.Orders.Timezone == "" {
		c.Orders.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Orders.Timezone); err != nil {
		return fmt.Errorf("invalid orders timezone %q: %w", c.Orders.Timezone, err)
	}

	// Scheduler defaults
	if c.Scheduler.LateOrderReminders == "" {
		c.Scheduler.LateOrderReminders = "0 0 * * * *" // hourly
	}

	// Notifications
	if c.Notifications.FirebaseEnabled && c.Notifications.FirebaseCredentialsFile == "" {
		return fmt.Errorf("firebase credentials file is required when firebase is enabled")
	}
	if c.Notifications.SendGridAPIKey != "" && c.Notifications.FromEmail == "" {
		return fmt.Errorf("notifications from_email is required with a sendgrid api key")
	}
	if c.Notifications.FromName == "" {
		c.Notifications.FromName = "RentalDesk"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "rentaldesk"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the HTTP server address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// Location returns the zone used for calendar-day arithmetic. Validate has
// already checked the name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Orders.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SearchDebounce returns the quiet period before a search query is sent.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.Orders.SearchDebounceMS) * time.Millisecond
}

// AccessTokenTTL returns the lifetime of access tokens.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

// RefreshTokenTTL returns the lifetime of refresh tokens.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTokenExpiry) * time.Minute
}
