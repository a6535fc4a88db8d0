// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package sources

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tomtom215/kinoweek/internal/logging"
)

// ErrSourceNotFound is wrapped by every *NotFoundError.
var ErrSourceNotFound = errors.New("source not found")

// NotFoundError reports a lookup of an unregistered source ID.
type NotFoundError struct {
	ID    string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source %q not found; available: %s", e.ID, strings.Join(e.Known, ", "))
}

func (e *NotFoundError) Unwrap() error {
	return ErrSourceNotFound
}

// Registration is one registry entry. Type is the type the factory's
// source declares, so ByType always agrees with Source.Type.
type Registration struct {
	ID      string
	Type    Type
	Factory Factory
}

// Registry maps source IDs to factories. Iteration is sorted by ID, so the
// fetch order and the report order do not depend on init order.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register stores factory under id. Replacing an existing id is allowed and
// logged as a warning. Factories must tolerate a zero Env; one source is
// built at registration to read its type.
func (r *Registry) Register(id string, factory Factory) {
	typ := factory(Env{}).Type()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		logging.Warn().Str("source", id).Msg("Source already registered, overwriting")
	}
	r.entries[id] = Registration{ID: id, Type: typ, Factory: factory}
}

// Get returns the registration for id.
func (r *Registry) Get(id string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[id]
	if !ok {
		return Registration{}, &NotFoundError{ID: id, Known: r.sortedIDs()}
	}
	return reg, nil
}

// All returns a copy of every registration, sorted by ID.
func (r *Registry) All() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.sortedIDs()
	out := make([]Registration, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.entries[id])
	}
	return out
}

// ByType returns the registrations whose declared type is typ, sorted by ID.
func (r *Registry) ByType(typ Type) []Registration {
	all := r.All()
	out := all[:0]
	for _, reg := range all {
		if reg.Type == typ {
			out = append(out, reg)
		}
	}
	return out
}

// IDs lists registered IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedIDs()
}

// Len reports the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// sortedIDs must be called with r.mu held.
func (r *Registry) sortedIDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
