// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package catalog wires every built-in venue into a sources.Registry.
package catalog

import (
	"sync"

	"github.com/tomtom215/kinoweek/internal/sources"
	"github.com/tomtom215/kinoweek/internal/sources/cinema"
	"github.com/tomtom215/kinoweek/internal/sources/concerts"
)

// RegisterAll adds the built-in sources to reg.
func RegisterAll(reg *sources.Registry) {
	reg.Register(cinema.AstorID, cinema.NewAstor)

	reg.Register(concerts.ZAGArenaID, concerts.NewZAGArena)
	reg.Register(concerts.SwissLifeID, concerts.NewSwissLifeHall)
	reg.Register(concerts.CapitolID, concerts.NewCapitol)
	reg.Register(concerts.FaustID, concerts.NewFaust)
	reg.Register(concerts.MusikZentrumID, concerts.NewMusikZentrum)
	reg.Register(concerts.PavillonID, concerts.NewPavillon)
	reg.Register(concerts.BeiChezHeinzID, concerts.NewBeiChezHeinz)
}

var (
	defaultOnce sync.Once
	defaultReg  *sources.Registry
)

// Default returns the process-wide registry holding the built-in sources.
func Default() *sources.Registry {
	defaultOnce.Do(func() {
		defaultReg = sources.NewRegistry()
		RegisterAll(defaultReg)
	})
	return defaultReg
}
