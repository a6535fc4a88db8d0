// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package eventbus publishes each digest event as a Watermill message so that
// other services can consume the weekly program without scraping.
//
// Topics are "<prefix>.movie" and "<prefix>.radar". Message UUIDs are
// name-based (UUID v5 over venue, title and start time), so re-running the
// digest in the same week produces the same IDs and JetStream deduplication
// drops the repeats.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/metrics"
	"github.com/tomtom215/kinoweek/internal/models"
)

// DefaultTopicPrefix is used when Config.TopicPrefix is empty.
const DefaultTopicPrefix = "kinoweek.events"

// Metadata keys set on every message.
const (
	MetaRunID    = "run_id"
	MetaCategory = "category"
	MetaVenue    = "venue"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event bus is closed")

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tomtom215/kinoweek/events"))

// Config holds the NATS publisher settings.
type Config struct {
	URL           string
	TopicPrefix   string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns production defaults for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		TopicPrefix:   DefaultTopicPrefix,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Bus publishes digest events.
type Bus struct {
	pub    message.Publisher
	prefix string

	mu     sync.RWMutex
	closed bool
}

// New wraps any Watermill publisher.
func New(pub message.Publisher, prefix string) *Bus {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Bus{pub: pub, prefix: prefix}
}

// NewNATS connects a JetStream publisher with message ID tracking.
func NewNATS(cfg Config) (*Bus, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL is required")
	}
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())

	natsOpts := []natsgo.Option{
		natsgo.Name("kinoweek"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return New(pub, cfg.TopicPrefix), nil
}

// Topic returns the topic an event is published on.
func (b *Bus) Topic(ev models.Event) string {
	if ev.IsMovie() {
		return b.prefix + ".movie"
	}
	return b.prefix + ".radar"
}

// MessageID derives the stable message UUID of an event.
func MessageID(ev models.Event) string {
	name := ev.Venue + "\x00" + ev.Title + "\x00" + ev.Date.Format(models.LocalISO)
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// NewMessage builds the Watermill message for ev.
func NewMessage(ev models.Event, runID string) (*message.Message, error) {
	payload, err := json.Marshal(ev.Record())
	if err != nil {
		return nil, fmt.Errorf("marshal %q: %w", ev.Title, err)
	}
	msg := message.NewMessage(MessageID(ev), payload)
	msg.Metadata.Set(MetaRunID, runID)
	msg.Metadata.Set(MetaCategory, string(ev.Category))
	msg.Metadata.Set(MetaVenue, ev.Venue)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	return msg, nil
}

// PublishResult publishes every event of result and returns how many were
// sent. It stops at the first failure.
func (b *Bus) PublishResult(ctx context.Context, result models.CategorizedResult) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, ErrClosed
	}

	runID := logging.RunIDFromContext(ctx)
	sent := 0
	for _, list := range [][]models.Event{result.MoviesThisWeek, result.BigEventsRadar} {
		for _, ev := range list {
			if err := ctx.Err(); err != nil {
				return sent, err
			}
			msg, err := NewMessage(ev, runID)
			if err != nil {
				return sent, err
			}
			msg.SetContext(ctx)

			topic := b.Topic(ev)
			if err := b.pub.Publish(topic, msg); err != nil {
				metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
				return sent, fmt.Errorf("publish to %s: %w", topic, err)
			}
			metrics.EventsPublished.WithLabelValues(topic, "success").Inc()
			sent++
		}
	}

	logging.Ctx(ctx).Info().Int("published", sent).Str("prefix", b.prefix).Msg("Events published")
	return sent, nil
}

// Close closes the underlying publisher.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pub.Close()
}
