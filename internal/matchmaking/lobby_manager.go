// internal/matchmaking/lobby_manager.go
package matchmaking

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/config"
)

// newGameID allocates an external session identifier.
func newGameID() string {
	return uuid.NewString()
}

// LobbyManager is the registry owning every live lobby.
type LobbyManager struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby

	m   *Managers
	cfg *config.Config
	log *logrus.Logger
}

func newLobbyManager(m *Managers) *LobbyManager {
	return &LobbyManager{
		lobbies: make(map[string]*Lobby),
		m:       m,
		cfg:     m.cfg,
		log:     m.log,
	}
}

// Spawn creates a lobby of the given regime together with its four
// command slots and chat room.
func (lm *LobbyManager) Spawn(ltype LobbyType, region string) *Lobby {
	l := &Lobby{
		id:         uuid.NewString(),
		ltype:      ltype,
		region:     region,
		state:      LobbySearching,
		timestamps: map[LobbyState]time.Time{LobbySearching: time.Now()},
		commands:   make(map[CommandType]*Command),
		counters:   lm.m.Counters,
		mgr:        lm,
		log:        lm.log,
	}
	l.commands[CommandOne] = lm.m.Commands.spawnFor(l.id, CommandOne, lm.cfg.SideCapacity)
	l.commands[CommandTwo] = lm.m.Commands.spawnFor(l.id, CommandTwo, lm.cfg.SideCapacity)
	l.commands[Neutrals] = lm.m.Commands.spawnFor(l.id, Neutrals, lm.cfg.NeutralCapacity)
	l.commands[Spectators] = lm.m.Commands.spawnFor(l.id, Spectators, lm.cfg.SpectatorCapacity)

	if room, err := lm.m.Chat.Spawn("lobby", l.id); err == nil {
		l.chat = room
	} else {
		lm.log.WithField("lobby", l.id).WithError(err).Warn("lobby chat spawn failed")
	}

	lm.mu.Lock()
	lm.lobbies[l.id] = l
	lm.mu.Unlock()
	lm.m.Counters.LobbyCreated(ltype)
	lm.log.WithFields(logrus.Fields{"lobby": l.id, "type": ltype, "region": region}).
		Info("lobby spawned")
	return l
}

// Get returns the lobby by id.
func (lm *LobbyManager) Get(id string) (*Lobby, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	l, ok := lm.lobbies[id]
	return l, ok
}

// Has reports whether a lobby exists under id.
func (lm *LobbyManager) Has(id string) bool {
	_, ok := lm.Get(id)
	return ok
}

// Drop tears the lobby down and evicts it from the registry.
func (lm *LobbyManager) Drop(id string) bool {
	lm.mu.Lock()
	l, ok := lm.lobbies[id]
	if ok {
		delete(lm.lobbies, id)
	}
	lm.mu.Unlock()
	if !ok {
		return false
	}
	l.MarkToDelete()
	return true
}

// Lobbies returns a snapshot of the live lobbies.
func (lm *LobbyManager) Lobbies() []*Lobby {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]*Lobby, 0, len(lm.lobbies))
	for _, l := range lm.lobbies {
		out = append(out, l)
	}
	return out
}

// Len returns the live lobby count.
func (lm *LobbyManager) Len() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.lobbies)
}

// Counters exposes the shared tallies.
func (lm *LobbyManager) Counters() *Counters {
	return lm.m.Counters
}

// sweep drops every lobby reporting ReadyToDrop.
func (lm *LobbyManager) sweep() {
	lm.mu.Lock()
	for id, l := range lm.lobbies {
		if l.ReadyToDrop() {
			delete(lm.lobbies, id)
			lm.log.WithField("lobby", id).Debug("swept lobby")
		}
	}
	lm.mu.Unlock()
}
