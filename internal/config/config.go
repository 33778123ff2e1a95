package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process-wide configuration, bound from the environment once
// at startup. Invalid values are fatal there; nothing re-reads the
// environment afterwards.
type Config struct {
	AppEnv       string `envconfig:"APP_ENV" default:"dev"`
	Port         string `envconfig:"PORT" default:"3000"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"./qotd.db"`

	SlackBotToken      string `envconfig:"SLACK_BOT_TOKEN"`
	SlackSigningSecret string `envconfig:"SLACK_SIGNING_SECRET"`

	// AdminUserIDs gate the operator commands (status, manual post, XP grant).
	AdminUserIDs []string `envconfig:"ADMIN_USER_IDS"`

	Daily struct {
		ChannelID string `envconfig:"DAILY_CHANNEL_ID"`
		Hour      int    `envconfig:"DAILY_POST_HOUR" default:"9"`
		Minute    int    `envconfig:"DAILY_POST_MINUTE" default:"0"`
		Timezone  string `envconfig:"DAILY_POST_TIMEZONE" default:"UTC"`
	} `envconfig:""`

	Google struct {
		CredentialsPath string `envconfig:"GOOGLE_CREDENTIALS_PATH"`
		SheetID         string `envconfig:"GOOGLE_SHEET_ID"`
		SheetRange      string `envconfig:"GOOGLE_SHEET_RANGE" default:"Sheet1!A1:O"`
	} `envconfig:""`
}

// Load binds and validates the configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SlackBotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is required")
	}
	if c.SlackSigningSecret == "" {
		return fmt.Errorf("SLACK_SIGNING_SECRET is required")
	}
	if c.Daily.ChannelID == "" {
		return fmt.Errorf("DAILY_CHANNEL_ID is required")
	}
	if c.Daily.Hour < 0 || c.Daily.Hour > 23 {
		return fmt.Errorf("DAILY_POST_HOUR out of range: %d", c.Daily.Hour)
	}
	if c.Daily.Minute < 0 || c.Daily.Minute > 59 {
		return fmt.Errorf("DAILY_POST_MINUTE out of range: %d", c.Daily.Minute)
	}
	if _, err := time.LoadLocation(c.Daily.Timezone); err != nil {
		return fmt.Errorf("invalid DAILY_POST_TIMEZONE %q: %w", c.Daily.Timezone, err)
	}
	if c.Google.SheetID == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID is required")
	}

	return nil
}

// IsAdmin reports whether the given Slack user may run operator commands.
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
