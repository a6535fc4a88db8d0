// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/kinoweek/internal/config"
	"github.com/tomtom215/kinoweek/internal/delivery"
)

func testConfig(t *testing.T, dryRun bool) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "CONFIG_PATH", "DRY_RUN", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	if !dryRun {
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("TELEGRAM_CHAT_ID", "42")
	}
	cfg, err := config.Load(config.LoadOptions{DryRun: dryRun})
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Output.Dir = t.TempDir()
	return cfg
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    flags
		wantErr bool
	}{
		{"none", nil, flags{}, false},
		{"local", []string{"-local"}, flags{local: true}, false},
		{"dry-run alias", []string{"-dry-run"}, flags{local: true}, false},
		{"serve", []string{"-serve", "-run-on-start", "-config", "k.yaml"}, flags{serve: true, runOnStart: true, configPath: "k.yaml"}, false},
		{"version", []string{"--version"}, flags{version: true}, false},
		{"unknown flag", []string{"-bogus"}, flags{}, true},
		{"positional", []string{"extra"}, flags{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseFlags(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestNewChannel(t *testing.T) {
	tests := []struct {
		name   string
		dryRun bool
		want   string
	}{
		{"dry run writes files", true, "file"},
		{"live uses telegram", false, "telegram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := newChannel(testConfig(t, tt.dryRun))
			if err != nil {
				t.Fatalf("newChannel: %v", err)
			}
			if ch.Name() != tt.want {
				t.Errorf("channel = %q, want %q", ch.Name(), tt.want)
			}
		})
	}
}

func TestNewChannelRejectsInvalidChannel(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr error
	}{
		{"live without credentials", func(cfg *config.Config) {
			cfg.Run.DryRun = false
			cfg.Telegram.BotToken = ""
			cfg.Telegram.ChatID = ""
		}, delivery.ErrMissingCredentials},
		{"dry run without output dir", func(cfg *config.Config) {
			cfg.Output.Dir = ""
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, true)
			tt.mutate(cfg)
			ch, err := newChannel(cfg)
			if err == nil {
				t.Fatalf("newChannel() = %v, want error", ch)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	cfg := testConfig(t, true)
	cfg.Run.DryRun = false
	if _, err := newApp(cfg); !errors.Is(err, delivery.ErrMissingCredentials) {
		t.Errorf("newApp() error = %v, want ErrMissingCredentials", err)
	}
}

func TestNewAppWithArchive(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.Archive.Enabled = true
	cfg.Archive.Path = filepath.Join(t.TempDir(), "archive")

	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	if a.archive == nil {
		t.Error("archive not opened")
	}
	if a.bus != nil {
		t.Error("event bus opened while disabled")
	}
	if _, ok := a.channel.(*delivery.FileChannel); !ok {
		t.Errorf("channel = %T, want *delivery.FileChannel", a.channel)
	}
}

type fixedNext time.Time

func (n fixedNext) NextRun() time.Time { return time.Time(n) }

func TestHTTPServerRoutes(t *testing.T) {
	cfg := testConfig(t, true)
	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	srv := a.httpServer(fixedNext(time.Date(2025, 11, 24, 9, 0, 0, 0, time.UTC)))
	if srv.Addr != cfg.Server.ListenAddr {
		t.Errorf("Addr = %q, want %q", srv.Addr, cfg.Server.ListenAddr)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/status", http.StatusOK},
		{"/api/v1/events", http.StatusNotFound},
		{"/api/v1/archive", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}
