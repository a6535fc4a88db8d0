// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package delivery sends the rendered digest somewhere a person will read it.
//
// Two channels exist:
//   - Telegram: Bot API sendMessage with Markdown parse mode
//   - File: writes the message and event lists to disk for dry runs
//
// Channels report failures through Result rather than an error so that the
// caller can log the classification (ErrorCode, IsTransient, RetryAfter).
// The returned error is reserved for programming mistakes such as a nil
// message. Credentials are never logged.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/kinoweek/internal/models"
)

// ErrMissingCredentials is returned by Validate when a live channel lacks
// its bot token or chat ID.
var ErrMissingCredentials = errors.New("missing delivery credentials")

// Channel is one delivery target.
type Channel interface {
	// Name returns the channel identifier ("telegram", "file").
	Name() string

	// Validate checks the channel configuration without touching the network.
	Validate() error

	// Send delivers msg. Delivery failures are described in the Result.
	Send(ctx context.Context, msg *Message) (*Result, error)

	// SupportsMarkdown reports whether Text is rendered as Markdown.
	SupportsMarkdown() bool

	// MaxContentLength returns the maximum message length in characters,
	// or 0 when unlimited.
	MaxContentLength() int
}

// Message is one digest ready for delivery.
type Message struct {
	// Text is the rendered digest.
	Text string

	// Events is the result the text was rendered from.
	Events models.CategorizedResult
}

// Result describes one delivery attempt.
type Result struct {
	Success      bool
	Channel      string
	DeliveredAt  *time.Time
	ErrorMessage string
	ErrorCode    string
	IsTransient  bool
	RetryAfter   *time.Duration
	ExternalID   string
	ResponseCode int

	// Files lists paths written by file-backed channels.
	Files []string
}

// Err converts a failed Result into an error, or nil on success.
func (r *Result) Err() error {
	if r == nil || r.Success {
		return nil
	}
	return &Error{Channel: r.Channel, Code: r.ErrorCode, Message: r.ErrorMessage, Transient: r.IsTransient}
}

// Error is a classified delivery failure.
type Error struct {
	Channel   string
	Code      string
	Message   string
	Transient bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s delivery failed (%s): %s", e.Channel, e.Code, e.Message)
}

// Error codes for delivery failures.
const (
	ErrorCodeInvalidConfig     = "INVALID_CONFIG"
	ErrorCodeConnectionFailed  = "CONNECTION_FAILED"
	ErrorCodeAuthFailed        = "AUTH_FAILED"
	ErrorCodeRateLimited       = "RATE_LIMITED"
	ErrorCodeContentTooLarge   = "CONTENT_TOO_LARGE"
	ErrorCodeRecipientNotFound = "RECIPIENT_NOT_FOUND"
	ErrorCodeBadRequest        = "BAD_REQUEST"
	ErrorCodeServerError       = "SERVER_ERROR"
	ErrorCodeTimeout           = "TIMEOUT"
	ErrorCodeIO                = "IO_ERROR"
	ErrorCodeUnknown           = "UNKNOWN"
)

// ChannelRegistry holds the configured channels by name.
type ChannelRegistry struct {
	channels map[string]Channel
}

// NewChannelRegistry returns a registry holding channels.
func NewChannelRegistry(channels ...Channel) *ChannelRegistry {
	r := &ChannelRegistry{channels: make(map[string]Channel, len(channels))}
	for _, ch := range channels {
		r.Register(ch)
	}
	return r
}

// Register adds or replaces a channel.
func (r *ChannelRegistry) Register(ch Channel) {
	r.channels[ch.Name()] = ch
}

// Get retrieves a channel by name.
func (r *ChannelRegistry) Get(name string) (Channel, bool) {
	ch, ok := r.channels[name]
	return ch, ok
}

// List returns the registered channel names, sorted.
func (r *ChannelRegistry) List() []string {
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateAll validates every registered channel and joins the failures.
func (r *ChannelRegistry) ValidateAll() error {
	var errs []error
	for _, name := range r.List() {
		if err := r.channels[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func isTransient(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited, ErrorCodeServerError:
		return true
	default:
		return false
	}
}
