package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables honoured when the file leaves the matching field empty.
const (
	EnvBotToken       = "BOT_TOKEN"
	EnvChannelID      = "CHANNEL_ID"
	EnvFilePath       = "FILE_PATH"
	EnvThreshold      = "TIME_BEFORE_FALLEN_BEHIND"
	EnvUpdateInterval = "UPDATE_TIME"
)

// Load reads configuration from a YAML file. A missing file is not an error
// as long as the environment supplies the required settings.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the YAML content
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReportCacheTTL == 0 {
		cfg.Server.ReportCacheTTL = 10 * time.Second
	}
	if cfg.Probe.Timeout == 0 {
		cfg.Probe.Timeout = 500 * time.Millisecond
	}
	if cfg.Probe.MaxConcurrency == 0 {
		cfg.Probe.MaxConcurrency = 16
	}

	return &cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	if cfg.Telegram.Token == "" {
		cfg.Telegram.Token = os.Getenv(EnvBotToken)
	}
	if cfg.Telegram.ChannelID == "" {
		cfg.Telegram.ChannelID = os.Getenv(EnvChannelID)
	}
	if cfg.Nodes.File == "" {
		cfg.Nodes.File = os.Getenv(EnvFilePath)
	}

	var err error
	if cfg.Monitor.Threshold == 0 {
		if cfg.Monitor.Threshold, err = envInt(EnvThreshold); err != nil {
			return err
		}
	}
	if cfg.Monitor.UpdateInterval == 0 {
		if cfg.Monitor.UpdateInterval, err = envInt(EnvUpdateInterval); err != nil {
			return err
		}
	}
	return nil
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
	}
	return n, nil
}

// Validate checks the settings the bot cannot start without.
func (c *AppConfig) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("%w: telegram token is required", ErrInvalidConfig)
	}
	return c.ValidateMonitor()
}

// ValidateMonitor checks only what a single report cycle needs.
func (c *AppConfig) ValidateMonitor() error {
	if c.Nodes.File == "" && len(c.Nodes.Hosts) == 0 {
		return fmt.Errorf("%w: no endpoints configured", ErrInvalidConfig)
	}
	if c.Monitor.Threshold <= 0 {
		return fmt.Errorf("%w: monitor.threshold must be positive", ErrInvalidConfig)
	}
	if c.Monitor.UpdateInterval <= 0 {
		return fmt.Errorf("%w: monitor.update_interval must be positive", ErrInvalidConfig)
	}
	if c.Probe.Timeout < 0 || c.Probe.MaxConcurrency < 0 {
		return fmt.Errorf("%w: probe settings must not be negative", ErrInvalidConfig)
	}
	return nil
}
