// internal/matchmaking/command.go
package matchmaking

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/rating"
)

// CommandType names one of the four membership slots inside a lobby.
type CommandType string

const (
	CommandOne  CommandType = "command1"
	CommandTwo  CommandType = "command2"
	Neutrals    CommandType = "neutrals"
	Spectators  CommandType = "spectators"
)

// teamCommands lists the two opposing sides in fill order.
var teamCommands = []CommandType{CommandOne, CommandTwo}

// Command is one lobby side: a capacity-bounded member set with a captain,
// per-team representation tracking and a cached single-guild flag.
// Exactly four commands exist per lobby and share its lifetime.
type Command struct {
	mu sync.Mutex

	id       string
	lobbyID  string
	ctype    CommandType
	capacity int

	members map[string]struct{}
	captain string

	// teamIDs maps a team id to how many of its members sit in this
	// command. A team's id is removed once its last representative leaves.
	teamIDs map[string]int

	oneGuild bool
	chat     ChatRoom

	mgr *CommandManager
	log *logrus.Logger
}

// ID returns the command id.
func (c *Command) ID() string { return c.id }

// LobbyID returns the owning lobby's id.
func (c *Command) LobbyID() string { return c.lobbyID }

// Type returns the command slot type.
func (c *Command) Type() CommandType { return c.ctype }

// Capacity returns the configured member cap.
func (c *Command) Capacity() int { return c.capacity }

// Captain returns the first joiner still present.
func (c *Command) Captain() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captain
}

// Size returns the current member count.
func (c *Command) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.members)
}

// Members returns the member names.
func (c *Command) Members() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.members))
	for name := range c.members {
		out = append(out, name)
	}
	return out
}

// Has reports whether name is a member.
func (c *Command) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.members[name]
	return ok
}

// HasSpace reports whether count more members fit.
func (c *Command) HasSpace(count int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.members)+count <= c.capacity
}

// Join admits a player. Rejects at capacity; on success the captain is set
// if unset, the player's team id is registered for homogeneity tracking
// and the player's back-reference is updated.
func (c *Command) Join(name string) error {
	p, ok := c.mgr.m.Players.Get(name)
	if !ok {
		return fmt.Errorf("command join: %w", ErrUnknownEntity)
	}

	c.mu.Lock()
	if _, ok := c.members[name]; ok {
		c.mu.Unlock()
		return nil
	}
	if len(c.members) >= c.capacity {
		c.mu.Unlock()
		return ErrNoSpace
	}
	c.members[name] = struct{}{}
	if c.captain == "" {
		c.captain = name
	}
	if teamID := p.TeamID(); teamID != "" {
		c.teamIDs[teamID]++
	}
	c.recomputeGuildLocked()
	chat := c.chat
	c.mu.Unlock()

	p.setCommandID(c.id)
	if chat != nil {
		if err := chat.Join(name); err != nil {
			c.log.WithField("command", c.id).WithError(err).Warn("command chat join failed")
		}
	}
	return nil
}

// Leave removes a player; team-id tracking is decremented only when the
// player was the last representative of its team in this command.
func (c *Command) Leave(name string) error {
	c.mu.Lock()
	if _, ok := c.members[name]; !ok {
		c.mu.Unlock()
		return ErrNotMember
	}
	delete(c.members, name)

	if p, ok := c.mgr.m.Players.Get(name); ok {
		if teamID := p.TeamID(); teamID != "" {
			if c.teamIDs[teamID] > 0 {
				c.teamIDs[teamID]--
			}
			if c.teamIDs[teamID] == 0 {
				delete(c.teamIDs, teamID)
			}
		}
		p.setCommandID("")
	}
	if c.captain == name {
		c.captain = ""
		for member := range c.members {
			c.captain = member
			break
		}
	}
	c.recomputeGuildLocked()
	chat := c.chat
	c.mu.Unlock()

	if chat != nil {
		if err := chat.Leave(name); err != nil {
			c.log.WithField("command", c.id).WithError(err).Warn("command chat leave failed")
		}
	}
	return nil
}

// recomputeGuildLocked refreshes the cached single-guild flag. An empty
// command is explicitly not one-guild. The original engine indexed the
// first remaining member unconditionally here, which reads past an empty
// roster; the explicit empty case is a deliberate deviation.
func (c *Command) recomputeGuildLocked() {
	if len(c.members) == 0 {
		c.oneGuild = false
		return
	}
	guild := ""
	first := true
	for name := range c.members {
		p, ok := c.mgr.m.Players.Get(name)
		if !ok {
			c.oneGuild = false
			return
		}
		g := p.Guild()
		if first {
			guild = g
			first = false
			continue
		}
		if g != guild {
			c.oneGuild = false
			return
		}
	}
	c.oneGuild = guild != ""
}

// IsOneGuild reports whether every current member shares one guild.
func (c *Command) IsOneGuild() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.oneGuild
}

// IsReady reports whether every member's ready flag is set.
func (c *Command) IsReady() bool {
	for _, name := range c.Members() {
		p, ok := c.mgr.m.Players.Get(name)
		if !ok || !p.IsReady() {
			return false
		}
	}
	return true
}

// GRI returns the median of member ratings.
func (c *Command) GRI() float64 {
	members := c.Members()
	ratings := make([]float64, 0, len(members))
	for _, name := range members {
		if p, ok := c.mgr.m.Players.Get(name); ok {
			ratings = append(ratings, p.GRI())
		}
	}
	return rating.Median(ratings)
}

// IsOneTeam reports whether the command is full and entirely formed by a
// single pre-formed team. A one-team side refuses member movement that
// would split it.
func (c *Command) IsOneTeam() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.members) < c.capacity || len(c.teamIDs) != 1 {
		return false
	}
	for _, count := range c.teamIDs {
		return count == len(c.members)
	}
	return false
}

// MaxTeamSizeToJoin returns the largest team that still fits, given the
// currently committed team and solo members.
func (c *Command) MaxTeamSizeToJoin() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity - len(c.members)
}

// HasTeam reports whether the given team already has members here.
func (c *Command) HasTeam(teamID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.teamIDs[teamID] > 0
}

// dispose tears down the chat room when the owning lobby is destroyed.
func (c *Command) dispose() {
	c.mu.Lock()
	chat := c.chat
	c.chat = nil
	c.mu.Unlock()
	if chat != nil {
		if err := chat.Delete(); err != nil {
			c.log.WithField("command", c.id).WithError(err).Warn("command chat delete failed")
		}
	}
}
