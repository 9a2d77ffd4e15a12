package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server          ServerConfig       `mapstructure:"server"`
	Database        DatabaseConfig     `mapstructure:"database"`
	Session         SessionConfig      `mapstructure:"session"`
	Verification    VerificationConfig `mapstructure:"verification"`
	RateLimit       RateLimitConfig    `mapstructure:"rate_limit"`
	Email           EmailConfig        `mapstructure:"email"`
	Logging         LoggingConfig      `mapstructure:"logging"`
	IntegrationTest bool               `mapstructure:"integration_test_mode"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
}

type SessionConfig struct {
	// Expiry is the absolute session lifetime; empty means sessions only
	// die when the store is cleared.
	Expiry string `mapstructure:"expiry"`
	// RefreshGrace bounds how long the predecessor token stays valid
	// after a refresh; empty/zero keeps it valid indefinitely.
	RefreshGrace string `mapstructure:"refresh_grace"`
}

type VerificationConfig struct {
	TokenTTL string `mapstructure:"token_ttl"`
	BaseURL  string `mapstructure:"base_url"`
}

type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
	SaveChat      int `mapstructure:"save_chat"`
	Personalize   int `mapstructure:"personalize"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Service string `mapstructure:"service"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	// Read environment variables
	v.AutomaticEnv()

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Override with environment variables
	if mode := os.Getenv("INTEGRATION_TEST_MODE"); mode != "" {
		cfg.IntegrationTest = mode == "true"
	}
	if port := os.Getenv("PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &cfg.Server.Port); err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPass := os.Getenv("DB_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.Name = dbName
	}

	if cfg.IntegrationTest {
		applyIntegrationTestMode(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "chatkit")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("session.expiry", "24h")
	v.SetDefault("session.refresh_grace", "")
	v.SetDefault("verification.token_ttl", "10m")
	v.SetDefault("verification.base_url", "http://localhost:3000")

	// Production rate limits
	v.SetDefault("rate_limit.window_seconds", 60)
	v.SetDefault("rate_limit.max_requests", 10)
	v.SetDefault("rate_limit.save_chat", 5)
	v.SetDefault("rate_limit.personalize", 3)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.from", "noreply@chatkit.local")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.service", "chatkit-backend")
}

// applyIntegrationTestMode shortens rate-limit windows, disables email
// delivery and raises log verbosity so integration suites run fast and
// deterministically.
func applyIntegrationTestMode(cfg *Config) {
	cfg.RateLimit.WindowSeconds = 10
	cfg.RateLimit.MaxRequests = 3
	cfg.RateLimit.SaveChat = 2
	cfg.RateLimit.Personalize = 2
	cfg.Email.Enabled = false
	cfg.Logging.Level = "debug"
	cfg.Server.Mode = "test"
}

// Validate fails fast on broken configuration. Integration test mode
// relaxes the checks so suites can run against throwaway databases.
func (c *Config) Validate() error {
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive, got %d", c.RateLimit.WindowSeconds)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive, got %d", c.RateLimit.MaxRequests)
	}
	if _, err := c.GetVerificationTokenTTL(); err != nil {
		return fmt.Errorf("invalid verification.token_ttl: %w", err)
	}
	if _, err := c.GetSessionExpiry(); err != nil {
		return fmt.Errorf("invalid session.expiry: %w", err)
	}
	if _, err := c.GetRefreshGrace(); err != nil {
		return fmt.Errorf("invalid session.refresh_grace: %w", err)
	}
	if _, err := c.Server.GetShutdownTimeout(); err != nil {
		return fmt.Errorf("invalid server.shutdown_timeout: %w", err)
	}

	if c.IntegrationTest {
		return nil
	}

	if c.Database.Name == "" {
		return fmt.Errorf("database.name must be set")
	}
	if c.Email.Enabled && c.Email.SMTPHost == "" {
		return fmt.Errorf("email.smtp_host must be set when email is enabled")
	}
	if c.Database.Password == "" {
		log.Println("WARNING: database.password is empty in production mode")
	}
	return nil
}

// LimitFor resolves the per-window request cap for an action. Unknown
// actions fall back to the default cap.
func (c *RateLimitConfig) LimitFor(action string) int {
	switch action {
	case "save_chat":
		return c.SaveChat
	case "personalize":
		return c.Personalize
	default:
		return c.MaxRequests
	}
}

func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// GetURL returns the database URL form used by golang-migrate
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

func (c *DatabaseConfig) GetConnMaxLifetime() (time.Duration, error) {
	return parseDuration(c.ConnMaxLifetime)
}

func (c *ServerConfig) GetShutdownTimeout() (time.Duration, error) {
	return parseDuration(c.ShutdownTimeout)
}

func (c *Config) GetSessionExpiry() (time.Duration, error) {
	return parseDuration(c.Session.Expiry)
}

func (c *Config) GetRefreshGrace() (time.Duration, error) {
	return parseDuration(c.Session.RefreshGrace)
}

func (c *Config) GetVerificationTokenTTL() (time.Duration, error) {
	return parseDuration(c.Verification.TokenTTL)
}

// parseDuration parses duration strings like "7d", "24h", "30m"
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	// Handle days (e.g., "7d")
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		_, err := fmt.Sscanf(days, "%d", &d)
		if err != nil {
			return 0, fmt.Errorf("invalid duration format: %s", s)
		}
		return time.Duration(d) * 24 * time.Hour, nil
	}

	// Use standard time.ParseDuration for other formats
	return time.ParseDuration(s)
}
