// internal/matchmaking/team_manager.go
package matchmaking

import (
	"sync"

	"github.com/google/uuid"

	"github.com/anreszii/matchup/internal/config"
	"github.com/sirupsen/logrus"
)

// TeamManager is the registry owning every pre-formed team.
type TeamManager struct {
	mu    sync.Mutex
	teams map[string]*Team

	m   *Managers
	cfg *config.Config
	log *logrus.Logger
}

func newTeamManager(m *Managers) *TeamManager {
	return &TeamManager{
		teams: make(map[string]*Team),
		m:     m,
		cfg:   m.cfg,
		log:   m.log,
	}
}

// Spawn creates a team captained by the creating player and joins the
// captain immediately.
func (tm *TeamManager) Spawn(captain string) (*Team, error) {
	t := &Team{
		id:  uuid.NewString(),
		mgr: tm,
		log: tm.log,
	}
	if room, err := tm.m.Chat.Spawn("team", t.id); err == nil {
		t.chat = room
	} else {
		tm.log.WithField("team", t.id).WithError(err).Warn("team chat spawn failed")
	}

	if err := t.Join(captain); err != nil {
		t.dispose()
		return nil, err
	}

	tm.mu.Lock()
	tm.teams[t.id] = t
	tm.mu.Unlock()
	return t, nil
}

// Get returns the team by id.
func (tm *TeamManager) Get(id string) (*Team, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	t, ok := tm.teams[id]
	return t, ok
}

// Has reports whether a team exists under id.
func (tm *TeamManager) Has(id string) bool {
	_, ok := tm.Get(id)
	return ok
}

// Drop destroys the team and evicts it from the registry.
func (tm *TeamManager) Drop(id string) bool {
	tm.mu.Lock()
	t, ok := tm.teams[id]
	if ok {
		delete(tm.teams, id)
	}
	tm.mu.Unlock()
	if !ok {
		return false
	}
	for _, name := range t.Check() {
		t.Leave(name)
	}
	t.dispose()
	return true
}

// FindByUserName returns the team the given player belongs to.
func (tm *TeamManager) FindByUserName(name string) (*Team, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for _, t := range tm.teams {
		if t.Has(name) {
			return t, true
		}
	}
	return nil, false
}

// sweep drops every team reporting ReadyToDrop.
func (tm *TeamManager) sweep() {
	tm.mu.Lock()
	var drop []*Team
	for id, t := range tm.teams {
		if t.ReadyToDrop() {
			delete(tm.teams, id)
			drop = append(drop, t)
		}
	}
	tm.mu.Unlock()
	for _, t := range drop {
		t.dispose()
		tm.log.WithField("team", t.id).Debug("swept team")
	}
}
