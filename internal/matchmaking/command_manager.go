// internal/matchmaking/command_manager.go
package matchmaking

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CommandManager is the registry owning every command. Commands are
// spawned four at a time alongside their lobby and dropped with it.
type CommandManager struct {
	mu       sync.Mutex
	commands map[string]*Command

	m   *Managers
	log *logrus.Logger
}

func newCommandManager(m *Managers) *CommandManager {
	return &CommandManager{
		commands: make(map[string]*Command),
		m:        m,
		log:      m.log,
	}
}

// spawnFor creates one command slot for a lobby.
func (cm *CommandManager) spawnFor(lobbyID string, ctype CommandType, capacity int) *Command {
	c := &Command{
		id:       uuid.NewString(),
		lobbyID:  lobbyID,
		ctype:    ctype,
		capacity: capacity,
		members:  make(map[string]struct{}),
		teamIDs:  make(map[string]int),
		mgr:      cm,
		log:      cm.log,
	}
	if room, err := cm.m.Chat.Spawn("command", c.id); err == nil {
		c.chat = room
	} else {
		cm.log.WithField("command", c.id).WithError(err).Warn("command chat spawn failed")
	}

	cm.mu.Lock()
	cm.commands[c.id] = c
	cm.mu.Unlock()
	return c
}

// Get returns the command by id.
func (cm *CommandManager) Get(id string) (*Command, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	c, ok := cm.commands[id]
	return c, ok
}

// Has reports whether a command exists under id.
func (cm *CommandManager) Has(id string) bool {
	_, ok := cm.Get(id)
	return ok
}

// Drop destroys the command and evicts it from the registry.
func (cm *CommandManager) Drop(id string) bool {
	cm.mu.Lock()
	c, ok := cm.commands[id]
	if ok {
		delete(cm.commands, id)
	}
	cm.mu.Unlock()
	if !ok {
		return false
	}
	c.dispose()
	return true
}

// FindByUserName returns the command the given player occupies.
func (cm *CommandManager) FindByUserName(name string) (*Command, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, c := range cm.commands {
		if c.Has(name) {
			return c, true
		}
	}
	return nil, false
}

// sweep drops commands whose owning lobby is gone. Normal teardown goes
// through Lobby deletion; this only catches leaked slots.
func (cm *CommandManager) sweep() {
	cm.mu.Lock()
	var drop []*Command
	for id, c := range cm.commands {
		if !cm.m.Lobbies.Has(c.lobbyID) {
			delete(cm.commands, id)
			drop = append(drop, c)
		}
	}
	cm.mu.Unlock()
	for _, c := range drop {
		c.dispose()
		cm.log.WithField("command", c.id).Debug("swept orphan command")
	}
}
