package config

import (
	"time"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Telegram TelegramConfig `yaml:"telegram"`
	Nodes    NodesConfig    `yaml:"nodes"`
	Probe    ProbeConfig    `yaml:"probe"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReportCacheTTL time.Duration `yaml:"report_cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// TelegramConfig holds bot credentials and the default destination.
type TelegramConfig struct {
	Token            string `yaml:"token"`
	ChannelID        string `yaml:"channel_id"`
	SubscribeChannel bool   `yaml:"subscribe_channel"` // auto-report to ChannelID from startup
}

// NodesConfig lists the monitored hosts. Hosts from File come first.
type NodesConfig struct {
	File  string   `yaml:"file"`
	Hosts []string `yaml:"hosts"`
}

// ProbeConfig controls the per-endpoint status request.
type ProbeConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrency int           `yaml:"max_concurrency"`
}

// MonitorConfig holds the staleness threshold and recurring report interval, in seconds.
type MonitorConfig struct {
	Threshold      int `yaml:"threshold"`
	UpdateInterval int `yaml:"update_interval"`
}

// ThresholdDuration returns the staleness threshold.
func (m MonitorConfig) ThresholdDuration() time.Duration {
	return time.Duration(m.Threshold) * time.Second
}

// Interval returns the pause between two recurring report cycles.
func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.UpdateInterval) * time.Second
}
