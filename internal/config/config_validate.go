// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/kinoweek/internal/delivery"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/scheduler"
	"github.com/tomtom215/kinoweek/internal/validation"
)

// ErrMissingCredentials is returned by Validate when live delivery lacks a
// Telegram credential. It is the delivery sentinel, so callers can match
// either layer's error with one errors.Is check.
var ErrMissingCredentials = delivery.ErrMissingCredentials

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateCredentials(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateArchive(); err != nil {
		return err
	}

	if err := c.validateEventBus(); err != nil {
		return err
	}

	return c.validateServer()
}

// MissingCredentials lists the Telegram variables that are empty.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Telegram.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.ChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	return missing
}

// validateCredentials requires both Telegram credentials unless this is a dry run.
func (c *Config) validateCredentials() error {
	if c.Run.DryRun {
		return nil
	}
	if missing := c.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("%w: %s (set them or use --local)", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is invalid", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("ARCHIVE_PATH is required when ARCHIVE_ENABLED=true")
	}
	return nil
}

func (c *Config) validateEventBus() error {
	if !c.EventBus.Enabled {
		return nil
	}
	if c.EventBus.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTBUS_ENABLED=true")
	}
	u, err := url.Parse(c.EventBus.NATSURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("NATS_URL %q is invalid", c.EventBus.NATSURL)
	}
	return nil
}

// validateServer checks the schedule and time zone even when daemon mode is
// off, since -serve can enable it at start-up.
func (c *Config) validateServer() error {
	if _, err := scheduler.ParseCron(c.Server.Schedule); err != nil {
		return fmt.Errorf("DIGEST_SCHEDULE is invalid: %w", err)
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("TZ %q is invalid: %w", c.Server.Timezone, err)
	}
	return nil
}
