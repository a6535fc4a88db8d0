// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package config

import (
	"time"

	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/sources"
)

// Config is the complete application configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Sources  SourcesConfig  `koanf:"sources"`
	Telegram TelegramConfig `koanf:"telegram"`
	Output   OutputConfig   `koanf:"output"`
	Archive  ArchiveConfig  `koanf:"archive"`
	EventBus EventBusConfig `koanf:"eventbus"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Run      RunConfig      `koanf:"run"`
}

// HTTPConfig tunes outbound requests to the event sources.
type HTTPConfig struct {
	UserAgent     string        `koanf:"user_agent" validate:"required"`
	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
	RatePerSecond float64       `koanf:"rate_per_second" validate:"gte=0"`
	Burst         int           `koanf:"burst" validate:"gte=0"`
}

// BreakerConfig tunes the per-host circuit breaker.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
}

// SourcesConfig selects which registered sources run.
type SourcesConfig struct {
	Disabled []string `koanf:"disabled"`
}

// TelegramConfig holds the Bot API credentials.
type TelegramConfig struct {
	BotToken  string        `koanf:"bot_token"`
	ChatID    string        `koanf:"chat_id"`
	ParseMode string        `koanf:"parse_mode" validate:"oneof=Markdown MarkdownV2 HTML"`
	APIURL    string        `koanf:"api_url" validate:"required,url"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
}

// OutputConfig controls the files written next to the digest.
type OutputConfig struct {
	Dir       string   `koanf:"dir" validate:"required"`
	BackupDir string   `koanf:"backup_dir"`
	Formats   []string `koanf:"formats" validate:"dive,oneof=movies_csv movies_grouped_csv concerts_csv json markdown archive"`
}

// ArchiveConfig enables the BadgerDB snapshot store.
type ArchiveConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// EventBusConfig enables publishing events to NATS JetStream.
type EventBusConfig struct {
	Enabled     bool   `koanf:"enabled"`
	NATSURL     string `koanf:"nats_url"`
	TopicPrefix string `koanf:"topic_prefix" validate:"required"`
}

// ServerConfig controls daemon mode.
type ServerConfig struct {
	Enabled     bool     `koanf:"enabled"`
	ListenAddr  string   `koanf:"listen_addr" validate:"required,hostname_port"`
	Schedule    string   `koanf:"schedule" validate:"required"`
	Timezone    string   `koanf:"timezone" validate:"required"`
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `koanf:"rate_limit" validate:"gte=0"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RunConfig holds per-invocation switches.
type RunConfig struct {
	// DryRun writes the digest to files instead of sending it.
	DryRun bool `koanf:"dry_run"`
}

// FetcherConfig converts the HTTP and breaker sections for sources.NewHTTPFetcher.
func (c *Config) FetcherConfig() sources.HTTPConfig {
	return sources.HTTPConfig{
		UserAgent:     c.HTTP.UserAgent,
		Timeout:       c.HTTP.Timeout,
		RatePerSecond: c.HTTP.RatePerSecond,
		Burst:         c.HTTP.Burst,
		Breaker: sources.BreakerConfig{
			Enabled:      c.Breaker.Enabled,
			MaxRequests:  c.Breaker.MaxRequests,
			Interval:     c.Breaker.Interval,
			Timeout:      c.Breaker.Timeout,
			FailureRatio: c.Breaker.FailureRatio,
			MinRequests:  c.Breaker.MinRequests,
		},
	}
}

// LogConfig converts the logging section for logging.Init.
func (c *Config) LogConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}

// Location returns the schedule time zone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
