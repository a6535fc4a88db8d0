// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/kinoweek/internal/sources"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kinoweek/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultEnvFile is loaded before the environment layer when present.
const DefaultEnvFile = ".env"

// LoadOptions carries command-line overrides into Load.
type LoadOptions struct {
	// Path is an explicit config file; it must exist when set.
	Path string

	// EnvFile replaces DefaultEnvFile.
	EnvFile string

	// DryRun forces run.dry_run on.
	DryRun bool
}

func defaultConfig() *Config {
	httpDefaults := sources.DefaultHTTPConfig()
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:     httpDefaults.UserAgent,
			Timeout:       httpDefaults.Timeout,
			RatePerSecond: httpDefaults.RatePerSecond,
			Burst:         httpDefaults.Burst,
		},
		Breaker: BreakerConfig{
			Enabled:      httpDefaults.Breaker.Enabled,
			MaxRequests:  httpDefaults.Breaker.MaxRequests,
			Interval:     httpDefaults.Breaker.Interval,
			Timeout:      httpDefaults.Breaker.Timeout,
			FailureRatio: httpDefaults.Breaker.FailureRatio,
			MinRequests:  httpDefaults.Breaker.MinRequests,
		},
		Sources: SourcesConfig{
			Disabled: []string{},
		},
		Telegram: TelegramConfig{
			ParseMode: "Markdown",
			APIURL:    "https://api.telegram.org",
			Timeout:   30 * time.Second,
		},
		Output: OutputConfig{
			Dir:       "output",
			BackupDir: "backup",
			Formats:   []string{}, // empty = all
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Path:    "data/archive",
		},
		EventBus: EventBusConfig{
			Enabled:     false,
			NATSURL:     "nats://127.0.0.1:4222",
			TopicPrefix: "kinoweek.events",
		},
		Server: ServerConfig{
			Enabled:     false,
			ListenAddr:  ":8080",
			Schedule:    "0 9 * * 1", // Monday 09:00
			Timezone:    "Europe/Berlin",
			CORSOrigins: []string{"*"},
			RateLimit:   60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads defaults, the config file and the environment, applies opts and
// validates the result.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath, err := findConfigFile(opts.Path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if opts.DryRun {
		cfg.Run.DryRun = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadEnvFile loads KEY=value pairs without overriding variables that are
// already set. A missing default file is not an error.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// findConfigFile returns explicit if set (it must exist), else the first
// existing file from CONFIG_PATH and DefaultConfigPaths, else "".
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"sources.disabled",
	"output.formats",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		trimmed := []string{}
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"http_user_agent":      "http.user_agent",
	"http_timeout":         "http.timeout",
	"http_rate_per_second": "http.rate_per_second",
	"http_burst":           "http.burst",

	"breaker_enabled":       "breaker.enabled",
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_failure_ratio": "breaker.failure_ratio",
	"breaker_min_requests":  "breaker.min_requests",

	"sources_disabled": "sources.disabled",

	"telegram_bot_token":  "telegram.bot_token",
	"telegram_chat_id":    "telegram.chat_id",
	"telegram_parse_mode": "telegram.parse_mode",
	"telegram_api_url":    "telegram.api_url",
	"telegram_timeout":    "telegram.timeout",

	"output_dir":        "output.dir",
	"output_backup_dir": "output.backup_dir",
	"output_formats":    "output.formats",

	"archive_enabled": "archive.enabled",
	"archive_path":    "archive.path",

	"eventbus_enabled":      "eventbus.enabled",
	"nats_url":              "eventbus.nats_url",
	"eventbus_topic_prefix": "eventbus.topic_prefix",

	"server_enabled":     "server.enabled",
	"server_listen_addr": "server.listen_addr",
	"digest_schedule":    "server.schedule",
	"tz":                 "server.timezone",
	"cors_origins":       "server.cors_origins",
	"api_rate_limit":     "server.rate_limit",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"dry_run": "run.dry_run",
}

// envTransformFunc maps an environment variable to its koanf path. Unknown
// variables map to "" and are dropped by the provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
