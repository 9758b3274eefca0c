// internal/matchmaking/team.go
package matchmaking

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Team is a small fixed-capacity pre-formed group. The captain is always a
// current member; only the captain may trigger team-wide lobby operations
// (enforced by the Lobby, not here).
type Team struct {
	mu sync.Mutex

	id      string
	captain string
	members []string
	chat    ChatRoom

	mgr *TeamManager
	log *logrus.Logger
}

// ID returns the team id.
func (t *Team) ID() string { return t.id }

// Captain returns the current captain's name.
func (t *Team) Captain() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.captain
}

// Size returns the current member count.
func (t *Team) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.members)
}

// Check returns the current member names.
func (t *Team) Check() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.members))
	copy(out, t.members)
	return out
}

// Has reports whether name is a member.
func (t *Team) Has(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexLocked(name) >= 0
}

func (t *Team) indexLocked(name string) int {
	for i, m := range t.members {
		if m == name {
			return i
		}
	}
	return -1
}

// Join adds a player to the team. The first joiner becomes captain. Fails
// when the team is full or the player already belongs to a team.
func (t *Team) Join(name string) error {
	p, ok := t.mgr.m.Players.Get(name)
	if !ok {
		return fmt.Errorf("join team: %w", ErrUnknownEntity)
	}
	if p.TeamID() != "" && p.TeamID() != t.id {
		return ErrAlreadyInTeam
	}
	// A lobby member cannot be picked up by a team: the captain's next
	// team-wide join would commit the player to a second lobby.
	if p.LobbyID() != "" {
		return ErrAlreadyInLobby
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexLocked(name) >= 0 {
		return nil
	}
	if len(t.members) >= t.mgr.cfg.TeamCapacity {
		return ErrTeamFull
	}
	t.members = append(t.members, name)
	if t.captain == "" {
		t.captain = name
	}
	p.setTeamID(t.id)
	if t.chat != nil {
		if err := t.chat.Join(name); err != nil {
			t.log.WithField("team", t.id).WithError(err).Warn("team chat join failed")
		}
	}
	return nil
}

// Leave removes a player. Returns false as an idempotent no-op when the
// team is empty or the player is not a member. If the captain leaves and
// members remain, the earliest remaining joiner is promoted.
func (t *Team) Leave(name string) bool {
	t.mu.Lock()
	idx := t.indexLocked(name)
	if len(t.members) == 0 || idx < 0 {
		t.mu.Unlock()
		return false
	}
	t.members = append(t.members[:idx], t.members[idx+1:]...)
	if t.captain == name {
		t.captain = ""
		if len(t.members) > 0 {
			t.captain = t.members[0]
		}
	}
	chat := t.chat
	t.mu.Unlock()

	if p, ok := t.mgr.m.Players.Get(name); ok {
		p.setTeamID("")
	}
	if chat != nil {
		if err := chat.Leave(name); err != nil {
			t.log.WithField("team", t.id).WithError(err).Warn("team chat leave failed")
		}
	}
	return true
}

// ReadyToDrop reports whether the registry sweep may destroy this team.
// Teams are dropped once emptied.
func (t *Team) ReadyToDrop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.members) == 0
}

// dispose tears down the chat room when the team is swept.
func (t *Team) dispose() {
	t.mu.Lock()
	chat := t.chat
	t.chat = nil
	t.mu.Unlock()
	if chat != nil {
		if err := chat.Delete(); err != nil {
			t.log.WithField("team", t.id).WithError(err).Warn("team chat delete failed")
		}
	}
}
