package config

import (
	"os"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/services"
)

// ToDatabaseConfig converts Config to database.Config
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		URI:      c.Database.URI,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Database: c.Database.Database,
		Timeout:  c.Database.Timeout,
	}
}

// ToLoggingConfig converts Config to logging.Config
func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Output:      os.Stdout,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor,
	}
}

// ToFeedConfig converts Config to services.FeedConfig
func (c *Config) ToFeedConfig() services.FeedConfig {
	return services.FeedConfig{
		BaseURL:           c.Feed.BaseURL,
		Timeout:           c.Feed.Timeout,
		RequestsPerSecond: c.Feed.RequestsPerSecond,
		Burst:             c.Feed.Burst,
	}
}

// ToJobIntervals converts Config to services.JobIntervals
func (c *Config) ToJobIntervals() services.JobIntervals {
	return services.JobIntervals{
		LockCheck:    c.Jobs.LockCheckInterval,
		ScoreSync:    c.Jobs.ScoreSyncInterval,
		StatsRefresh: c.Jobs.StatsRefreshInterval,
	}
}

// ToAuthConfig converts Config to services.AdminAuthConfig
func (c *Config) ToAuthConfig() services.AdminAuthConfig {
	return services.AdminAuthConfig{
		Secret: c.Auth.JWTSecret,
		Expiry: c.Auth.TokenExpiry,
	}
}
