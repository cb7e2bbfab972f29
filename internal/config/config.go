// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Prefix   string `env:"LIGHT_PREFIX" envDefault:"!light"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`

	Discord DiscordConfig
	Device  DeviceConfig
}

// DiscordConfig holds the chat side settings.
type DiscordConfig struct {
	Token string `env:"DISCORD_TOKEN"`
	// Channels limits the bot to these channel IDs. Empty means every channel.
	Channels []string `env:"DISCORD_CHANNELS" envSeparator:","`
}

// DeviceConfig holds the bulb side settings.
type DeviceConfig struct {
	Host         string        `env:"DEVICE_HOST"`
	Port         int           `env:"DEVICE_PORT" envDefault:"55443"`
	Rate         float64       `env:"DEVICE_RATE" envDefault:"1"`
	RateMax      float64       `env:"DEVICE_RATE_MAX" envDefault:"2"`
	Queue        int           `env:"DEVICE_QUEUE" envDefault:"16"`
	DialAttempts int           `env:"DEVICE_DIAL_ATTEMPTS" envDefault:"5"`
	DialTimeout  time.Duration `env:"DEVICE_DIAL_TIMEOUT" envDefault:"5s"`
}

// Addr returns host:port of the bulb.
func (d DeviceConfig) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// LoadDotEnv loads .env files into the environment. Variables already set
// win. It reports whether any file was read.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load parses the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return finish(&cfg)
}

// FromMap parses environ instead of the process environment.
func FromMap(environ map[string]string) (*Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	channels := cfg.Discord.Channels[:0]
	for _, ch := range cfg.Discord.Channels {
		if ch = strings.TrimSpace(ch); ch != "" {
			channels = append(channels, ch)
		}
	}
	cfg.Discord.Channels = channels

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Prefix == "" || strings.ContainsAny(c.Prefix, " \t\r\n") {
		errs = append(errs, fmt.Errorf("LIGHT_PREFIX must be a single non-empty token, got %q", c.Prefix))
	}
	if c.Device.Port < 1 || c.Device.Port > 65535 {
		errs = append(errs, fmt.Errorf("DEVICE_PORT out of range: %d", c.Device.Port))
	}
	if c.Device.Rate <= 0 {
		errs = append(errs, fmt.Errorf("DEVICE_RATE must be positive, got %v", c.Device.Rate))
	}
	if c.Device.RateMax < c.Device.Rate {
		errs = append(errs, fmt.Errorf("DEVICE_RATE_MAX (%v) is below DEVICE_RATE (%v)", c.Device.RateMax, c.Device.Rate))
	}
	if c.Device.Queue < 1 {
		errs = append(errs, fmt.Errorf("DEVICE_QUEUE must be at least 1, got %d", c.Device.Queue))
	}
	if c.Device.DialAttempts < 1 {
		errs = append(errs, fmt.Errorf("DEVICE_DIAL_ATTEMPTS must be at least 1, got %d", c.Device.DialAttempts))
	}
	return errors.Join(errs...)
}

// RequireDiscord checks the settings the Discord bot needs.
func (c *Config) RequireDiscord() error {
	if c.Discord.Token == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	return nil
}

// RequireDevice checks the settings needed to reach the bulb.
func (c *Config) RequireDevice() error {
	if c.Device.Host == "" {
		return errors.New("DEVICE_HOST is not set")
	}
	return nil
}

// ChannelAllowed reports whether the bot should handle messages from channelID.
func (c DiscordConfig) ChannelAllowed(channelID string) bool {
	if len(c.Channels) == 0 {
		return true
	}
	for _, ch := range c.Channels {
		if ch == channelID {
			return true
		}
	}
	return false
}
