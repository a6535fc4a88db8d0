// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

/*
Package config loads the KinoWeek configuration.

Layers, lowest priority first:

  - built-in defaults (defaultConfig)
  - an optional YAML file: the -config flag, then CONFIG_PATH, then
    config.yaml, config.yml, /etc/kinoweek/config.yaml
  - environment variables, including a .env file in the working directory

Only the variables listed in envMappings are read; anything else in the
environment is ignored.

# Environment Variables

Delivery:
  - TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID: required unless DRY_RUN=true
  - TELEGRAM_PARSE_MODE: Markdown (default), MarkdownV2 or HTML
  - TELEGRAM_API_URL: Bot API base URL (default: https://api.telegram.org)

Fetching:
  - HTTP_USER_AGENT, HTTP_TIMEOUT (default: 30s)
  - HTTP_RATE_PER_SECOND, HTTP_BURST: per-host pacing (default: 2, 2)
  - BREAKER_ENABLED, BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_FAILURE_RATIO, BREAKER_MIN_REQUESTS
  - SOURCES_DISABLED: comma-separated source IDs to skip

Output:
  - OUTPUT_DIR (default: output), OUTPUT_BACKUP_DIR (default: backup)
  - OUTPUT_FORMATS: comma-separated subset of movies_csv, movies_grouped_csv,
    concerts_csv, json, markdown, archive
  - ARCHIVE_ENABLED, ARCHIVE_PATH: BadgerDB weekly snapshot store
  - EVENTBUS_ENABLED, NATS_URL, EVENTBUS_TOPIC_PREFIX

Daemon mode:
  - SERVER_ENABLED, SERVER_LISTEN_ADDR (default: :8080)
  - DIGEST_SCHEDULE: 5-field cron expression (default: "0 9 * * 1")
  - TZ: schedule time zone (default: Europe/Berlin)
  - CORS_ORIGINS, API_RATE_LIMIT (requests per minute per IP)

Logging:
  - LOG_LEVEL (default: info), LOG_FORMAT (json|console), LOG_CALLER

# Example

	cfg, err := config.Load(config.LoadOptions{Path: *configPath, DryRun: *local})
	if err != nil {
	    logging.Fatal().Err(err).Msg("Invalid configuration")
	}
*/
package config
