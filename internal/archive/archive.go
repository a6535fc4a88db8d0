// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package archive keeps one snapshot per ISO week in BadgerDB so that past
// digests survive output directory cleanups.
//
// Keys are "week/2025-W47"; values are the JSON form of
// models.WeeklySnapshot. Writing the same week twice replaces the earlier
// snapshot.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/models"
)

const keyPrefix = "week/"

var (
	// ErrNotFound is returned by Get when no snapshot exists for the week.
	ErrNotFound = errors.New("snapshot not found")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("archive is closed")
)

// Config holds the store settings.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// SyncWrites fsyncs every Put.
	SyncWrites bool

	// InMemory keeps the store in memory only.
	InMemory bool
}

// Store is a BadgerDB-backed snapshot archive.
type Store struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the store.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" && !cfg.InMemory {
		return nil, errors.New("archive path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.MemTableSize = 16 << 20
	opts.ValueLogFileSize = 16 << 20
	opts.NumCompactors = 2
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("Archive opened")
	return &Store{db: db}, nil
}

// Key returns the store key for an ISO week.
func Key(year, week int) string {
	return keyPrefix + models.WeekLabel(year, week)
}

// Put stores snap under its week, replacing any earlier snapshot.
func (s *Store) Put(ctx context.Context, snap models.WeeklySnapshot) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := Key(snap.Meta.Year, snap.Meta.Week)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data))
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	logging.Ctx(ctx).Debug().Str("key", key).
		Int("movies", len(snap.Movies)).
		Int("concerts", len(snap.Concerts)).
		Msg("Snapshot archived")
	return nil
}

// Get loads the snapshot of an ISO week.
func (s *Store) Get(ctx context.Context, year, week int) (models.WeeklySnapshot, error) {
	var snap models.WeeklySnapshot

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return snap, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return snap, err
	}

	key := Key(year, week)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return snap, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", key, err)
	}
	return snap, nil
}

// List returns the week labels ("2025-W47") of every stored snapshot in
// ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	labels := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			labels = append(labels, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return labels, nil
}

// Close closes the underlying database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
