// internal/matchmaking/finder.go
package matchmaking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Finder runs the bounded rating-proximity search: it repeatedly scans the
// live lobby registry with the composed filter set, widening the tolerance
// zone as time passes, until a compatible lobby turns up or the overall
// deadline expires.
type Finder struct {
	lobbies *LobbyManager
	ltype   LobbyType
	filters *Filters

	timeout time.Duration
	poll    time.Duration

	log *logrus.Logger
}

// NewFinder builds a finder for one search intent. Timeouts come from the
// active configuration.
func NewFinder(m *Managers, ltype LobbyType, filters *Filters) *Finder {
	return &Finder{
		lobbies: m.Lobbies,
		ltype:   ltype,
		filters: filters,
		timeout: m.cfg.SearchTimeout,
		poll:    m.cfg.SearchPoll,
		log:     m.log,
	}
}

// Find runs the zone-escalation loop. It returns nil when no live lobby of
// the requested regime exists (fail fast) or when the overall timeout
// elapses; the caller falls back to spawning a fresh lobby.
func (f *Finder) Find(ctx context.Context) *Lobby {
	if f.lobbies.Len() == 0 || f.lobbies.Counters().ActiveLobbies(f.ltype) == 0 {
		return nil
	}

	zone := ZoneSmall
	deadline := time.NewTimer(f.timeout)
	widen := time.NewTicker(f.timeout / 3)
	poll := time.NewTicker(f.poll)
	defer deadline.Stop()
	defer widen.Stop()
	defer poll.Stop()

	for {
		if l := f.scan(zone); l != nil {
			return l
		}
		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			f.log.WithField("type", f.ltype).Debug("lobby search timed out")
			return nil
		case <-widen.C:
			if zone < ZoneLarge {
				zone++
				f.log.WithFields(logrus.Fields{"type": f.ltype, "zone": int(zone)}).
					Debug("widening search zone")
			}
		case <-poll.C:
		}
	}
}

// scan returns the first searching lobby satisfying every required filter
// and, below the large zone, landing within the optional tolerance band.
func (f *Finder) scan(zone Zone) *Lobby {
	requiredTotal := f.filters.RequiredCount()
	optionalTotal := f.filters.OptionalCount()

	for _, l := range f.lobbies.Lobbies() {
		if l.State() != LobbySearching {
			continue
		}
		res := f.filters.Use(l, zone)
		if res.RequiredPassed != requiredTotal {
			continue
		}
		if band, bounded := zone.OptionalBand(); bounded {
			if optionalTotal-res.OptionalPassed > band {
				continue
			}
		}
		return l
	}
	return nil
}

// FindLobby is the search entry point consumed by the transport layer: it
// builds a finder for the given filter set and runs it.
func (m *Managers) FindLobby(ctx context.Context, ltype LobbyType, filters *Filters) *Lobby {
	return NewFinder(m, ltype, filters).Find(ctx)
}
