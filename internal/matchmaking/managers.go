// internal/matchmaking/managers.go
package matchmaking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/config"
)

// Deps bundles the injected collaborators. Everything the
// core calls across an asynchronous boundary lives here.
type Deps struct {
	Log      *logrus.Logger
	Profiles ProfileStore
	Chat     ChatService
	Voice    VoiceOrchestrator
	Notify   Notifier
}

// Managers owns the four registries and the shared counters. Registries
// are the sole owners of their entities; everything else refers to them
// by id through these lookups.
type Managers struct {
	Players  *PlayerManager
	Teams    *TeamManager
	Commands *CommandManager
	Lobbies  *LobbyManager

	Counters *Counters

	Profiles ProfileStore
	Chat     ChatService
	Voice    VoiceOrchestrator
	Notify   Notifier

	cfg *config.Config
	log *logrus.Logger

	// OnMatchStart, when set, is invoked after a lobby starts its match.
	// Used to publish match records to the history queue.
	OnMatchStart func(record MatchRecord)
}

// MatchRecord is the summary published when a match starts.
type MatchRecord struct {
	LobbyID   string              `json:"lobby_id"`
	GameID    string              `json:"game_id"`
	Type      LobbyType           `json:"type"`
	Region    string              `json:"region"`
	Map       string              `json:"map"`
	Sides     map[string][]string `json:"sides"`
	StartedAt int64               `json:"started_at"`
}

// NewManagers wires the registries together.
func NewManagers(cfg *config.Config, deps Deps) *Managers {
	log := deps.Log
	if log == nil {
		log = logrus.New()
	}
	m := &Managers{
		Counters: NewCounters(),
		Profiles: deps.Profiles,
		Chat:     deps.Chat,
		Voice:    deps.Voice,
		Notify:   deps.Notify,
		cfg:      cfg,
		log:      log,
	}
	m.Players = newPlayerManager(m)
	m.Teams = newTeamManager(m)
	m.Commands = newCommandManager(m)
	m.Lobbies = newLobbyManager(m)
	return m
}

// Config exposes the active configuration.
func (m *Managers) Config() *config.Config { return m.cfg }

// Run drives the periodic work: the scheduler tick that re-evaluates every
// live lobby (several transitions are purely time-based) and the registry
// sweeps that drop abandoned entities. Blocks until ctx is done.
func (m *Managers) Run(ctx context.Context) {
	tick := time.NewTicker(m.cfg.TickInterval)
	sweep := time.NewTicker(m.cfg.SweepInterval)
	defer tick.Stop()
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			for _, l := range m.Lobbies.Lobbies() {
				l.UpdateState()
			}
		case <-sweep.C:
			m.Players.sweep()
			m.Teams.sweep()
			m.Lobbies.sweep()
			m.Commands.sweep()
		}
	}
}
