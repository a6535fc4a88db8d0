// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package sources

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/tomtom215/kinoweek/internal/models"
)

type namedSource struct {
	Base
}

func (namedSource) Fetch(context.Context) ([]models.Event, error) { return nil, nil }

func factoryFor(id, name string, typ Type) Factory {
	return func(env Env) Source {
		return namedSource{Base: NewBase(id, name, typ, env.Enabled(id), 0)}
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	r.Register("astor_hannover", factoryFor("astor_hannover", "Astor", TypeCinema))
	r.Register("zag_arena", factoryFor("zag_arena", "ZAG Arena", TypeConcert))

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"known cinema", "astor_hannover", false},
		{"known concert", "zag_arena", false},
		{"unknown", "capitol", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := r.Get(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrSourceNotFound) {
					t.Fatalf("Get(%q) error = %v, want ErrSourceNotFound", tt.id, err)
				}
				var nf *NotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("error is not *NotFoundError: %T", err)
				}
				if !strings.Contains(err.Error(), "astor_hannover, zag_arena") {
					t.Errorf("error %q does not list known sources", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%q) unexpected error: %v", tt.id, err)
			}
			if reg.ID != tt.id {
				t.Errorf("reg.ID = %q, want %q", reg.ID, tt.id)
			}
		})
	}
}

func TestRegistryOverwriteReplacesFactory(t *testing.T) {
	r := NewRegistry()
	r.Register("a", factoryFor("a", "First", TypeCinema))
	r.Register("b", factoryFor("b", "B", TypeConcert))
	r.Register("a", factoryFor("a", "Second", TypeCinema))

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	all := r.All()
	if all[0].ID != "a" || all[1].ID != "b" {
		t.Errorf("order = %v, want [a b]", r.IDs())
	}
	if got := all[0].Factory(Env{}).Name(); got != "Second" {
		t.Errorf("overwritten factory builds %q, want Second", got)
	}
}

func TestRegistrySortedByID(t *testing.T) {
	r := NewRegistry()
	r.Register("zag_arena", factoryFor("zag_arena", "ZAG Arena", TypeConcert))
	r.Register("capitol_hannover", factoryFor("capitol_hannover", "Capitol", TypeConcert))
	r.Register("astor_hannover", factoryFor("astor_hannover", "Astor", TypeCinema))

	want := []string{"astor_hannover", "capitol_hannover", "zag_arena"}
	if got := r.IDs(); !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	var got []string
	for _, reg := range r.All() {
		got = append(got, reg.ID)
	}
	if !slices.Equal(got, want) {
		t.Errorf("All() order = %v, want %v", got, want)
	}
	concerts := r.ByType(TypeConcert)
	if len(concerts) != 2 || concerts[0].ID != "capitol_hannover" || concerts[1].ID != "zag_arena" {
		t.Errorf("ByType(concert) = %+v, want capitol_hannover then zag_arena", concerts)
	}
}

func TestRegistryTypeComesFromSource(t *testing.T) {
	r := NewRegistry()
	r.Register("capitol", factoryFor("capitol", "Capitol", TypeConcert))
	r.Register("astor", factoryFor("astor", "Astor", TypeCinema))

	reg, err := r.Get("capitol")
	if err != nil {
		t.Fatal(err)
	}
	if reg.Type != TypeConcert {
		t.Errorf("Type = %q, want %q", reg.Type, TypeConcert)
	}
	for _, reg := range r.All() {
		if src := reg.Factory(Env{}); src.Type() != reg.Type {
			t.Errorf("%s: registered as %q, source declares %q", reg.ID, reg.Type, src.Type())
		}
	}
	if got := r.ByType(TypeCinema); len(got) != 1 || got[0].ID != "astor" {
		t.Errorf("ByType(cinema) = %+v", got)
	}
}

func TestRegistryAllIsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register("a", factoryFor("a", "A", TypeCinema))

	all := r.All()
	all[0].ID = "mutated"
	_ = append(all, Registration{ID: "extra"})

	if got := r.IDs(); len(got) != 1 || got[0] != "a" {
		t.Errorf("registry changed through snapshot: %v", got)
	}
	if _, err := r.Get("a"); err != nil {
		t.Errorf("Get(a) after snapshot mutation: %v", err)
	}
}

func TestRegistryByType(t *testing.T) {
	r := NewRegistry()
	r.Register("astor", factoryFor("astor", "Astor", TypeCinema))
	r.Register("zag", factoryFor("zag", "ZAG", TypeConcert))
	r.Register("capitol", factoryFor("capitol", "Capitol", TypeConcert))

	if got := len(r.ByType(TypeConcert)); got != 2 {
		t.Errorf("ByType(concert) = %d entries, want 2", got)
	}
	if got := r.ByType(TypeCinema); len(got) != 1 || got[0].ID != "astor" {
		t.Errorf("ByType(cinema) = %+v", got)
	}
	if r.Len() != 3 {
		t.Errorf("ByType mutated the registry: Len() = %d", r.Len())
	}
}

func TestEnvEnabled(t *testing.T) {
	env := Env{Disabled: map[string]bool{"zag": true}}
	if env.Enabled("zag") {
		t.Error("zag should be disabled")
	}
	if !env.Enabled("astor") {
		t.Error("astor should be enabled")
	}
	if !(Env{}).Enabled("anything") {
		t.Error("zero Env should enable everything")
	}
}

func TestIsOriginalVersion(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"Sprache: Deutsch", false},
		{"Sprache: Deutsch, Untertitel: Englisch", true},
		{"Sprache: Englisch", true},
		{"Sprache: Englisch, Untertitel: Deutsch", true},
		{"Sprache: Japanisch", true},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := IsOriginalVersion(tt.label); got != tt.want {
				t.Errorf("IsOriginalVersion(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://www.capitol-hannover.de", "/events/foo", "https://www.capitol-hannover.de/events/foo"},
		{"https://www.beichezheinz.de", "programm/2025-11-22/1", "https://www.beichezheinz.de/programm/2025-11-22/1"},
		{"https://www.capitol-hannover.de", "https://tickets.example/x", "https://tickets.example/x"},
		{"https://www.capitol-hannover.de", "", ""},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}
