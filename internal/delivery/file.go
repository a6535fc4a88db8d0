// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/models"
)

// File names written by FileChannel and WriteBackup.
const (
	MessageFile = "latest_message.txt"
	EventsFile  = "latest_events.json"
)

// FileChannel is the dry-run channel: it writes the digest to Dir and echoes
// the message to Stdout.
type FileChannel struct {
	Dir    string
	Stdout io.Writer
}

// NewFileChannel returns a FileChannel writing to dir and echoing to os.Stdout.
func NewFileChannel(dir string) *FileChannel {
	return &FileChannel{Dir: dir, Stdout: os.Stdout}
}

func (c *FileChannel) Name() string { return "file" }

func (c *FileChannel) SupportsMarkdown() bool { return false }

func (c *FileChannel) MaxContentLength() int { return 0 }

func (c *FileChannel) Validate() error {
	if c.Dir == "" {
		return errors.New("output directory is required")
	}
	return nil
}

// Send writes the message and event files. It never truncates.
func (c *FileChannel) Send(ctx context.Context, msg *Message) (*Result, error) {
	if msg == nil {
		return nil, errors.New("nil message")
	}
	result := &Result{Channel: c.Name()}
	defer func() { recordAttempt(result) }()

	if err := c.Validate(); err != nil {
		result.ErrorMessage = err.Error()
		result.ErrorCode = ErrorCodeInvalidConfig
		return result, nil
	}

	files, err := writeDigest(c.Dir, msg)
	if err != nil {
		result.ErrorMessage = err.Error()
		result.ErrorCode = ErrorCodeIO
		return result, nil
	}

	if c.Stdout != nil {
		rule := "=================================================="
		fmt.Fprintf(c.Stdout, "%s\nMESSAGE PREVIEW\n%s\n%s\n%s\n", rule, rule, msg.Text, rule)
	}

	now := time.Now()
	result.Success = true
	result.DeliveredAt = &now
	result.Files = files
	logging.Ctx(ctx).Info().Str("dir", c.Dir).Strs("files", files).Msg("Digest saved to files")
	return result, nil
}

// WriteBackup stores a copy of a delivered digest in dir.
func WriteBackup(ctx context.Context, dir string, msg *Message) ([]string, error) {
	files, err := writeDigest(dir, msg)
	if err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}
	logging.Ctx(ctx).Debug().Str("dir", dir).Msg("Digest backup written")
	return files, nil
}

// digestFile is the layout of EventsFile.
type digestFile struct {
	GeneratedAt     string               `json:"generated_at"`
	MoviesThisWeek  []models.EventRecord `json:"movies_this_week"`
	CultureThisWeek []models.EventRecord `json:"culture_this_week"`
	BigEventsRadar  []models.EventRecord `json:"big_events_radar"`
}

func writeDigest(dir string, msg *Message) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	msgPath := filepath.Join(dir, MessageFile)
	if err := os.WriteFile(msgPath, []byte(msg.Text), 0o644); err != nil {
		return nil, fmt.Errorf("write message: %w", err)
	}

	data, err := json.MarshalIndent(digestFile{
		GeneratedAt:     msg.Events.GeneratedAt.Format(models.LocalISO),
		MoviesThisWeek:  models.Records(msg.Events.MoviesThisWeek),
		CultureThisWeek: []models.EventRecord{},
		BigEventsRadar:  models.Records(msg.Events.BigEventsRadar),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}
	eventsPath := filepath.Join(dir, EventsFile)
	if err := os.WriteFile(eventsPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write events: %w", err)
	}
	return []string{msgPath, eventsPath}, nil
}
