package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "VC_SCANNER_CONFIG"
	databasePathEnv  = "VC_DATABASE_PATH"
	apiIDEnv         = "TELEGRAM_API_ID"
	apiHashEnv       = "TELEGRAM_API_HASH"
	phoneEnv         = "TELEGRAM_PHONE"
	botTokenEnv      = "BOT_TOKEN"
	channelsEnv      = "VC_CHANNELS"
	messageLimitEnv  = "VC_LIMIT"
	defaultStrategy  = "mtproto"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig   `yaml:"logging"`
	Database DatabaseConfig  `yaml:"database"`
	Telegram TelegramConfig  `yaml:"telegram"`
	Bot      BotConfig       `yaml:"bot"`
	Scanner  ScannerConfig   `yaml:"scanner"`
	Channels []ChannelConfig `yaml:"channels"`
}

// LoggingConfig selects the root log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the SQLite file location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TelegramConfig carries MTProto credentials for channel reading.
type TelegramConfig struct {
	APIID       int    `yaml:"apiId"`
	APIHash     string `yaml:"apiHash"`
	Phone       string `yaml:"phone"`
	SessionFile string `yaml:"sessionFile"`
}

// BotConfig wires the interactive command surface.
type BotConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

// ScannerConfig defines scan cadence and fetch limits.
type ScannerConfig struct {
	MessageLimit      int `yaml:"messageLimit"`
	ScanIntervalHours int `yaml:"scanIntervalHours"`
	TickMinutes       int `yaml:"tickMinutes"`
	FetchDelaySeconds int `yaml:"fetchDelaySeconds"`
}

// ScanInterval is the minimum gap between full scans.
func (s ScannerConfig) ScanInterval() time.Duration {
	return time.Duration(s.ScanIntervalHours) * time.Hour
}

// TickInterval bounds scheduling latency, independent of the scan interval.
func (s ScannerConfig) TickInterval() time.Duration {
	return time.Duration(s.TickMinutes) * time.Minute
}

// FetchDelay throttles consecutive source fetches within one scan.
func (s ScannerConfig) FetchDelay() time.Duration {
	return time.Duration(s.FetchDelaySeconds) * time.Second
}

// ChannelConfig describes a single source channel and its fetch strategy.
type ChannelConfig struct {
	Name     string `yaml:"name"`
	Strategy string `yaml:"strategy"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of defaults.
func Load() Config {
	cfg := defaultConfig()

	path := os.Getenv(configPathEnv)
	if path == "" {
		path = "config.yml"
	}
	if raw, err := os.ReadFile(path); err != nil {
		log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
	} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
		log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		cfg = defaultConfig()
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(apiIDEnv); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Telegram.APIID = id
		}
	}
	if v := os.Getenv(apiHashEnv); v != "" {
		c.Telegram.APIHash = v
	}
	if v := os.Getenv(phoneEnv); v != "" {
		c.Telegram.Phone = v
	}
	if v := os.Getenv(botTokenEnv); v != "" {
		c.Bot.Token = v
		c.Bot.Enabled = true
	}
	if v := os.Getenv(messageLimitEnv); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			c.Scanner.MessageLimit = limit
		}
	}
	if v := os.Getenv(channelsEnv); v != "" {
		c.Channels = parseChannelList(v)
	}
}

func (c *Config) normalize() {
	if c.Scanner.MessageLimit <= 0 {
		c.Scanner.MessageLimit = 300
	}
	if c.Scanner.ScanIntervalHours <= 0 {
		c.Scanner.ScanIntervalHours = 72
	}
	if c.Scanner.TickMinutes <= 0 {
		c.Scanner.TickMinutes = 60
	}
	if c.Scanner.FetchDelaySeconds < 0 {
		c.Scanner.FetchDelaySeconds = 0
	}
	for i := range c.Channels {
		c.Channels[i].Name = canonicalChannel(c.Channels[i].Name)
		if c.Channels[i].Strategy == "" {
			c.Channels[i].Strategy = defaultStrategy
		}
	}
}

// parseChannelList splits a comma or semicolon separated channel list into
// channel configs with the default strategy.
func parseChannelList(raw string) []ChannelConfig {
	raw = strings.ReplaceAll(raw, ";", ",")

	var channels []ChannelConfig
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		channels = append(channels, ChannelConfig{Name: canonicalChannel(part), Strategy: defaultStrategy})
	}
	return channels
}

func canonicalChannel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "@") {
		return name
	}
	return "@" + name
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "vc_database.db"},
		Telegram: TelegramConfig{SessionFile: "session.json"},
		Scanner: ScannerConfig{
			MessageLimit:      300,
			ScanIntervalHours: 72,
			TickMinutes:       60,
			FetchDelaySeconds: 2,
		},
	}
}
