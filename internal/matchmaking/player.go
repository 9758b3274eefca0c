// internal/matchmaking/player.go
package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PlayerState enumerates the player lifecycle. The order matters: several
// guards compare states (e.g. a player past PlayerSearching may not join
// another lobby).
type PlayerState int

const (
	PlayerDeleted PlayerState = iota
	PlayerCorrupted
	PlayerOffline
	PlayerIdle
	PlayerOnline
	PlayerSearching
	PlayerReady
	PlayerPreparing
	PlayerPlaying
)

// String implements fmt.Stringer for logging.
func (s PlayerState) String() string {
	switch s {
	case PlayerDeleted:
		return "deleted"
	case PlayerCorrupted:
		return "corrupted"
	case PlayerOffline:
		return "offline"
	case PlayerIdle:
		return "idle"
	case PlayerOnline:
		return "online"
	case PlayerSearching:
		return "searching"
	case PlayerReady:
		return "ready"
	case PlayerPreparing:
		return "preparing"
	case PlayerPlaying:
		return "playing"
	}
	return "unknown"
}

// PlayerSignal is a discrete transition trigger. State is never written
// directly; every mutation goes through Player.Event.
type PlayerSignal string

const (
	SignalInit       PlayerSignal = "init"
	SignalBeIdle     PlayerSignal = "be_idle"
	SignalJoinLobby  PlayerSignal = "join_lobby"
	SignalLeaveLobby PlayerSignal = "leave_lobby"
	SignalBeReady    PlayerSignal = "be_ready"
	SignalBeUnready  PlayerSignal = "be_unready"
	SignalVote       PlayerSignal = "vote"
	SignalPrepare    PlayerSignal = "prepare"
	SignalPlay       PlayerSignal = "play"
	SignalCorrupt    PlayerSignal = "corrupt"
)

// SignalData is the optional payload carried by a signal. join_lobby uses
// it to tell the client which lobby and chat it landed in.
type SignalData struct {
	LobbyID string
	ChatID  string
}

// Player is a per-player state machine plus a cached profile snapshot.
// A player belongs to at most one team, one command and one lobby at a
// time; the owning component keeps the back-references consistent.
type Player struct {
	mu sync.Mutex

	id      uuid.UUID
	name    string
	profile Profile

	lobbyID   string
	teamID    string
	commandID string

	ready bool
	state PlayerState

	// stateChanged is closed and replaced on every transition so that
	// WaitForState can block without polling.
	stateChanged chan struct{}

	idleTimer *time.Timer

	mgr *PlayerManager
	log *logrus.Logger
}

// newPlayer constructs a player in the offline state. The profile snapshot
// is loaded asynchronously during spawn; SignalInit moves it online.
func newPlayer(name string, mgr *PlayerManager) *Player {
	return &Player{
		id:           uuid.New(),
		name:         name,
		state:        PlayerOffline,
		stateChanged: make(chan struct{}),
		mgr:          mgr,
		log:          mgr.log,
	}
}

// ID returns the player's internal id.
func (p *Player) ID() uuid.UUID { return p.id }

// Name returns the player's unique name.
func (p *Player) Name() string { return p.name }

// State returns the current state.
func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// GRI returns the cached rating value.
func (p *Player) GRI() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile.GRI
}

// Guild returns the cached guild id, empty when the player has none.
func (p *Player) Guild() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile.Guild
}

// Profile returns a copy of the cached profile snapshot.
func (p *Player) Profile() Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

// LobbyID returns the id of the lobby the player is in, empty if none.
func (p *Player) LobbyID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lobbyID
}

// TeamID returns the id of the player's pre-formed team, empty if none.
func (p *Player) TeamID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.teamID
}

// CommandID returns the id of the command slot the player occupies.
func (p *Player) CommandID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commandID
}

// IsReady reports the readiness flag.
func (p *Player) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// setStateLocked transitions to st and wakes every WaitForState caller.
func (p *Player) setStateLocked(st PlayerState) {
	if p.state == st {
		return
	}
	p.state = st
	close(p.stateChanged)
	p.stateChanged = make(chan struct{})
}

// Event applies a signal to the state machine. Invalid signal/state
// combinations return ErrWrongState; the state is left untouched.
func (p *Player) Event(sig PlayerSignal, data *SignalData) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch sig {
	case SignalInit:
		if p.state != PlayerOffline && p.state != PlayerIdle {
			return fmt.Errorf("init from %s: %w", p.state, ErrWrongState)
		}
		p.setStateLocked(PlayerOnline)

	case SignalBeIdle:
		if p.state != PlayerOnline {
			return fmt.Errorf("be_idle from %s: %w", p.state, ErrWrongState)
		}
		p.setStateLocked(PlayerIdle)
		p.armIdleTimerLocked()

	case SignalJoinLobby:
		if p.state != PlayerOnline && p.state != PlayerSearching {
			return fmt.Errorf("join_lobby from %s: %w", p.state, ErrWrongState)
		}
		p.setStateLocked(PlayerSearching)
		if data != nil {
			p.lobbyID = data.LobbyID
			p.sendLocked("lobby_joined", map[string]interface{}{
				"lobby_id": data.LobbyID,
				"chat_id":  data.ChatID,
			})
		}

	case SignalLeaveLobby:
		if p.state < PlayerSearching || p.state > PlayerReady {
			return fmt.Errorf("leave_lobby from %s: %w", p.state, ErrWrongState)
		}
		left := p.lobbyID
		p.lobbyID = ""
		p.commandID = ""
		p.ready = false
		p.setStateLocked(PlayerOnline)
		p.sendLocked("lobby_left", map[string]interface{}{"lobby_id": left})

	case SignalBeReady:
		if p.state != PlayerSearching {
			return fmt.Errorf("be_ready from %s: %w", p.state, ErrWrongState)
		}
		p.ready = true
		p.setStateLocked(PlayerReady)

	case SignalBeUnready:
		if p.state != PlayerReady {
			return fmt.Errorf("be_unready from %s: %w", p.state, ErrWrongState)
		}
		p.ready = false
		p.setStateLocked(PlayerSearching)

	case SignalVote:
		// Pushed as the lobby enters voting; the player stays voting-ready.
		if p.state != PlayerReady {
			return fmt.Errorf("vote from %s: %w", p.state, ErrWrongState)
		}

	case SignalPrepare:
		if p.state != PlayerReady {
			return fmt.Errorf("prepare from %s: %w", p.state, ErrWrongState)
		}
		p.setStateLocked(PlayerPreparing)

	case SignalPlay:
		if p.state != PlayerPreparing {
			return fmt.Errorf("play from %s: %w", p.state, ErrWrongState)
		}
		p.setStateLocked(PlayerPlaying)

	case SignalCorrupt:
		p.mu.Unlock()
		p.recover()
		p.mu.Lock()

	default:
		return fmt.Errorf("unknown signal %q: %w", sig, ErrWrongState)
	}
	return nil
}

// armIdleTimerLocked starts the idle self-delete timer. The fired callback
// re-checks the state so any activity between arming and firing makes the
// timer a no-op (stale-timer guard).
func (p *Player) armIdleTimerLocked() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(p.mgr.cfg.IdleTimeout, func() {
		p.mu.Lock()
		stillIdle := p.state == PlayerIdle
		if stillIdle {
			p.setStateLocked(PlayerDeleted)
		}
		p.mu.Unlock()
		if stillIdle {
			p.log.WithField("player", p.name).Info("idle timeout, evicting player")
			p.mgr.Drop(p.name)
		}
	})
}

// recover is the corrupt integrity path: forcibly detach the player from
// whatever lobby/team/command it still references, clear flags and return
// it to online. Used when referenced entities are found missing.
func (p *Player) recover() {
	p.mu.Lock()
	lobbyID := p.lobbyID
	teamID := p.teamID
	p.mu.Unlock()

	if lobbyID != "" {
		if l, ok := p.mgr.m.Lobbies.Get(lobbyID); ok {
			if err := l.Leave(p.name); err != nil {
				p.log.WithFields(logrus.Fields{
					"player": p.name,
					"lobby":  lobbyID,
				}).WithError(err).Error("corrupt recovery: lobby leave failed")
			}
		}
	}
	if teamID != "" {
		if t, ok := p.mgr.m.Teams.Get(teamID); ok {
			t.Leave(p.name)
		}
	}

	p.mu.Lock()
	p.lobbyID = ""
	p.teamID = ""
	p.commandID = ""
	p.ready = false
	p.setStateLocked(PlayerCorrupted)
	p.setStateLocked(PlayerOnline)
	p.mu.Unlock()
	p.log.WithField("player", p.name).Warn("player state recovered")
}

// WaitForState blocks until the player reaches st or ctx is done. Used
// during spawn bootstrap while the profile snapshot loads.
func (p *Player) WaitForState(ctx context.Context, st PlayerState) error {
	for {
		p.mu.Lock()
		if p.state == st {
			p.mu.Unlock()
			return nil
		}
		if p.state == PlayerDeleted {
			// Deleted is terminal; no other state is reachable.
			p.mu.Unlock()
			return ErrUnknownEntity
		}
		ch := p.stateChanged
		p.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Notify sends a best-effort out-of-band message to the player's client.
func (p *Player) Notify(content string) {
	p.mgr.m.Notify.Notify(p.name, content)
}

// sendLocked pushes a typed event to the player's transport session.
func (p *Player) sendLocked(event string, payload map[string]interface{}) {
	p.mgr.m.Notify.Send(p.name, event, payload)
}

// Update refreshes the cached profile fields from the profile store. A
// vanished backing profile is an integrity violation: the player is
// corrupted and self-deletes. Transient store failures keep the cached
// snapshot and are only reported.
func (p *Player) Update(ctx context.Context) error {
	profile, err := p.mgr.m.Profiles.FindByName(ctx, p.name)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			p.log.WithField("player", p.name).WithError(err).Warn("profile refresh failed")
			return err
		}
		p.log.WithField("player", p.name).WithError(err).Error("backing profile is gone")
		if eventErr := p.Event(SignalCorrupt, nil); eventErr != nil {
			return eventErr
		}
		p.mu.Lock()
		p.setStateLocked(PlayerDeleted)
		p.mu.Unlock()
		p.mgr.Drop(p.name)
		return err
	}

	p.mu.Lock()
	p.profile = *profile
	p.mu.Unlock()
	return nil
}

// setTeamID is used by Team join/leave to keep the back-reference in sync.
func (p *Player) setTeamID(id string) {
	p.mu.Lock()
	p.teamID = id
	p.mu.Unlock()
}

// setCommandID is used by Command join/leave.
func (p *Player) setCommandID(id string) {
	p.mu.Lock()
	p.commandID = id
	p.mu.Unlock()
}

// setLobbyID is used by Lobby membership operations.
func (p *Player) setLobbyID(id string) {
	p.mu.Lock()
	p.lobbyID = id
	p.mu.Unlock()
}

// clearReady resets the readiness flag without a full leave, used when a
// lobby regresses from filled back to searching.
func (p *Player) clearReady() {
	p.mu.Lock()
	p.ready = false
	if p.state == PlayerReady {
		p.setStateLocked(PlayerSearching)
	}
	p.mu.Unlock()
}

// forceDetach clears every membership reference and returns the player to
// online regardless of its current state. Used during lobby teardown for
// players past the leavable window (preparing/playing).
func (p *Player) forceDetach() {
	p.mu.Lock()
	p.lobbyID = ""
	p.commandID = ""
	p.ready = false
	if p.state > PlayerOnline {
		p.setStateLocked(PlayerOnline)
	}
	p.mu.Unlock()
}

// ReadyToDrop reports whether the registry sweep may evict this player.
func (p *Player) ReadyToDrop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == PlayerDeleted
}
