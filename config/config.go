package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"nfl-playoff-pickem/logging"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Score feed configuration
	Feed FeedConfig `json:"feed"`

	// Periodic job configuration
	Jobs JobsConfig `json:"jobs"`

	// Admin API authentication
	Auth AuthConfig `json:"auth"`

	// Application configuration
	App AppConfig `json:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `json:"port"`
	Host            string        `json:"host"`
	Environment     string        `json:"environment"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BehindProxy     bool          `json:"behind_proxy"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URI      string        `json:"-"`
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"-"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
	// Fall back to the in-memory store when Mongo is unreachable
	AllowMemoryFallback bool `json:"allow_memory_fallback"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// FeedConfig holds score provider configuration
type FeedConfig struct {
	BaseURL           string        `json:"base_url"`
	Timeout           time.Duration `json:"timeout"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	Burst             int           `json:"burst"`
}

// JobsConfig holds the periodic job cadences
type JobsConfig struct {
	Enabled              bool          `json:"enabled"`
	LockCheckInterval    time.Duration `json:"lock_check_interval"`
	ScoreSyncInterval    time.Duration `json:"score_sync_interval"`
	StatsRefreshInterval time.Duration `json:"stats_refresh_interval"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret   string        `json:"-"`
	TokenExpiry time.Duration `json:"token_expiry"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	// Season the job runner works on. Request handlers take the season from the path.
	CurrentSeason int  `json:"current_season"`
	IsDevelopment bool `json:"is_development"`
	SeedOnStartup bool `json:"seed_on_startup"`
}

const defaultJWTSecret = "your-secret-key-change-in-production"

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logging.Warnf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")
	isDevelopment := strings.ToLower(environment) == "development"

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:     environment,
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
			BehindProxy:     getBoolEnv("BEHIND_PROXY", false),
		},
		Database: DatabaseConfig{
			URI:                 getEnv("MONGO_URI", ""),
			Host:                getEnv("DB_HOST", "localhost"),
			Port:                getEnv("DB_PORT", "27017"),
			Username:            getEnv("DB_USERNAME", ""),
			Password:            getEnv("DB_PASSWORD", ""),
			Database:            getEnv("DB_NAME", "playoff_pickem"),
			Timeout:             getDurationEnv("DB_TIMEOUT", 10*time.Second),
			AllowMemoryFallback: getBoolEnv("DB_MEMORY_FALLBACK", isDevelopment),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", "pickem"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		Feed: FeedConfig{
			BaseURL:           getEnv("FEED_BASE_URL", "https://site.api.espn.com/apis/site/v2/sports/football/nfl"),
			Timeout:           getDurationEnv("FEED_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getFloatEnv("FEED_RPS", 2),
			Burst:             getIntEnv("FEED_BURST", 1),
		},
		Jobs: JobsConfig{
			Enabled:              getBoolEnv("JOBS_ENABLED", true),
			LockCheckInterval:    getDurationEnv("JOB_LOCK_CHECK_INTERVAL", time.Minute),
			ScoreSyncInterval:    getDurationEnv("JOB_SCORE_SYNC_INTERVAL", 2*time.Minute),
			StatsRefreshInterval: getDurationEnv("JOB_STATS_REFRESH_INTERVAL", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
			TokenExpiry: getDurationEnv("ADMIN_TOKEN_EXPIRY", 12*time.Hour),
		},
		App: AppConfig{
			CurrentSeason: getIntEnv("CURRENT_SEASON", 2025),
			IsDevelopment: isDevelopment,
			SeedOnStartup: getBoolEnv("SEED_ON_STARTUP", true),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.URI == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port == "" {
			return fmt.Errorf("database port is required")
		}
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed base URL is required")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("feed timeout must be positive")
	}
	if c.Feed.RequestsPerSecond <= 0 {
		return fmt.Errorf("feed requests per second must be positive, got: %v", c.Feed.RequestsPerSecond)
	}
	if c.Feed.Burst < 1 {
		return fmt.Errorf("feed burst must be at least 1, got: %d", c.Feed.Burst)
	}

	// A period shorter than the feed timeout could overlap its own previous run
	if c.Jobs.LockCheckInterval <= 0 || c.Jobs.StatsRefreshInterval <= 0 {
		return fmt.Errorf("job intervals must be positive")
	}
	if c.Jobs.ScoreSyncInterval <= c.Feed.Timeout {
		return fmt.Errorf("score sync interval (%s) must exceed feed timeout (%s)",
			c.Jobs.ScoreSyncInterval, c.Feed.Timeout)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.JWTSecret == defaultJWTSecret && !c.App.IsDevelopment {
		return fmt.Errorf("JWT secret must be changed in production")
	}

	if c.App.CurrentSeason < 2000 || c.App.CurrentSeason > 2100 {
		return fmt.Errorf("current season must be between 2000 and 2100, got: %d", c.App.CurrentSeason)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Environment: %s)", c.GetServerAddress(), c.Server.Environment)
	if c.Database.URI != "" {
		logging.Infof("Database: URI set, db=%s, MemoryFallback=%t", c.Database.Database, c.Database.AllowMemoryFallback)
	} else {
		logging.Infof("Database: %s:%s/%s (Username: %s, Auth: %t, MemoryFallback: %t)",
			c.Database.Host, c.Database.Port, c.Database.Database,
			c.Database.Username, c.Database.Password != "", c.Database.AllowMemoryFallback)
	}
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor)
	logging.Infof("Feed: %s (timeout=%s, rps=%.2f, burst=%d)",
		c.Feed.BaseURL, c.Feed.Timeout, c.Feed.RequestsPerSecond, c.Feed.Burst)
	logging.Infof("Jobs: Enabled=%t, lock-check=%s, score-sync=%s, stats-refresh=%s",
		c.Jobs.Enabled, c.Jobs.LockCheckInterval, c.Jobs.ScoreSyncInterval, c.Jobs.StatsRefreshInterval)
	logging.Infof("App: Season=%d, Development=%t, SeedOnStartup=%t",
		c.App.CurrentSeason, c.App.IsDevelopment, c.App.SeedOnStartup)
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
