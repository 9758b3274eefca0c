// internal/matchmaking/player_manager.go
package matchmaking

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/config"
)

// PlayerManager is the registry owning every live player, keyed by name.
type PlayerManager struct {
	mu      sync.Mutex
	players map[string]*Player

	m   *Managers
	cfg *config.Config
	log *logrus.Logger
}

func newPlayerManager(m *Managers) *PlayerManager {
	return &PlayerManager{
		players: make(map[string]*Player),
		m:       m,
		cfg:     m.cfg,
		log:     m.log,
	}
}

// Spawn creates a player on first activity, loads its profile snapshot and
// waits for the machine to come online. Repeated spawns for a live player
// return the existing instance.
func (pm *PlayerManager) Spawn(ctx context.Context, name string) (*Player, error) {
	pm.mu.Lock()
	if p, ok := pm.players[name]; ok {
		pm.mu.Unlock()
		return p, nil
	}
	p := newPlayer(name, pm)
	pm.players[name] = p
	pm.mu.Unlock()

	go func() {
		profile, err := pm.m.Profiles.FindByName(ctx, name)
		if err != nil {
			pm.log.WithField("player", name).WithError(err).Error("player bootstrap failed")
			p.mu.Lock()
			p.setStateLocked(PlayerDeleted)
			p.mu.Unlock()
			pm.Drop(name)
			return
		}
		p.mu.Lock()
		p.profile = *profile
		p.mu.Unlock()
		if err := p.Event(SignalInit, nil); err != nil {
			pm.log.WithField("player", name).WithError(err).Error("player init failed")
		}
	}()

	if err := p.WaitForState(ctx, PlayerOnline); err != nil {
		pm.Drop(name)
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// Get returns the player by name.
func (pm *PlayerManager) Get(name string) (*Player, bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p, ok := pm.players[name]
	return p, ok
}

// Has reports whether a player is registered under name.
func (pm *PlayerManager) Has(name string) bool {
	_, ok := pm.Get(name)
	return ok
}

// Drop evicts the player from the registry.
func (pm *PlayerManager) Drop(name string) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, ok := pm.players[name]; !ok {
		return false
	}
	delete(pm.players, name)
	return true
}

// Len returns the live player count.
func (pm *PlayerManager) Len() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.players)
}

// sweep drops every player reporting ReadyToDrop.
func (pm *PlayerManager) sweep() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for name, p := range pm.players {
		if p.ReadyToDrop() {
			delete(pm.players, name)
			pm.log.WithField("player", name).Debug("swept player")
		}
	}
}
