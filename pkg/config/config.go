// Package config provides configuration management for the bot.
// It loads environment variables (optionally from a .env file) and makes them
// available throughout the application.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken string `env:"DISCORD_TOKEN"`
	Prefix   string `env:"COMMAND_PREFIX" envDefault:"!"`

	// Community layout
	IntakeChannelID   string `env:"INTAKE_CHANNEL_ID"`
	AnnounceChannelID string `env:"ANNOUNCE_CHANNEL_ID"`
	WelcomeChannelID  string `env:"WELCOME_CHANNEL_ID"`
	ReaderRoleName    string `env:"READER_ROLE_NAME" envDefault:"Reader"`
	ValidationEmoji   string `env:"VALIDATION_EMOJI" envDefault:"✅"`

	// Leveling
	XPPerClick int `env:"XP_PER_CLICK" envDefault:"10"`
	XPPerLevel int `env:"XP_PER_LEVEL" envDefault:"100"`

	// Moderation
	BannedWords     []string      `env:"BANNED_WORDS" envSeparator:","`
	CensorNoticeTTL time.Duration `env:"CENSOR_NOTICE_TTL" envDefault:"5s"`

	// Storage
	XPFile      string `env:"XP_FILE" envDefault:"xp_data.json"`
	WarnsFile   string `env:"WARNS_FILE" envDefault:"warns_data.json"`
	ArchivePath string `env:"ARCHIVE_PATH" envDefault:"veille.db"`

	// Scraper
	ScraperCommand string        `env:"SCRAPER_COMMAND"`
	ScraperTimeout time.Duration `env:"SCRAPER_TIMEOUT" envDefault:"2m"`

	// Web Server
	Port             string `env:"PORT" envDefault:"3000"`
	WebAllowedHosts  string `env:"WEB_ALLOWED_HOSTS"`
	WebRatePerMinute int    `env:"WEB_RATE_PER_MINUTE" envDefault:"100"`

	// MQTT
	MQTTHost     string `env:"MQTT_HOST"`
	MQTTPort     string `env:"MQTT_PORT" envDefault:"1883"`
	MQTTUser     string `env:"MQTT_USER"`
	MQTTPassword string `env:"MQTT_PASSWORD"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`

	// Logging
	ErrorWebhook string `env:"ERROR_WEBHOOK"`
	LogsWebhook  string `env:"LOGS_WEBHOOK"`
	LogsDir      string `env:"LOGS_DIR" envDefault:"logs"`
}

var (
	Version   = "Dev-Local"
	BuildTime = "Today"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgErr = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	c := &Config{}
	if err := env.Parse(c); err != nil {
		cfgErr = fmt.Errorf("parse env: %w", err)
	}
	c.normalize()
	cfg = c
}

// normalize trims list entries and fills values derived from other settings.
func (c *Config) normalize() {
	words := make([]string, 0, len(c.BannedWords))
	for _, w := range c.BannedWords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	c.BannedWords = words

	if c.WelcomeChannelID == "" {
		c.WelcomeChannelID = c.AnnounceChannelID
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, cfgErr
}

// Get returns the current configuration
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is not set")
	}
	if c.XPPerLevel <= 0 {
		return fmt.Errorf("XP_PER_LEVEL must be positive, got %d", c.XPPerLevel)
	}
	if c.XPPerClick <= 0 {
		return fmt.Errorf("XP_PER_CLICK must be positive, got %d", c.XPPerClick)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// MQTTEnabled returns true when a broker host is configured
func (c *Config) MQTTEnabled() bool {
	return c.MQTTHost != ""
}

// ClientID returns the MQTT client id for this environment
func (c *Config) ClientID() string {
	if c.IsProd() {
		return getEnv("MQTT_CLIENT_ID", "veillebot")
	}
	return getEnv("MQTT_CLIENT_ID", "veillebot_canary")
}
