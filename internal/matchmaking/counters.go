// internal/matchmaking/counters.go
package matchmaking

import "sync"

// Counters are the two shared tallies every lobby mutates: the global
// searching/playing player totals and the per-regime active lobby counts.
// Counter updates happen synchronously with the membership change that
// caused them, never deferred.
type Counters struct {
	mu        sync.Mutex
	searching int
	playing   int
	lobbies   map[LobbyType]int
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{lobbies: make(map[LobbyType]int)}
}

// AddSearching records n players entering the searching bucket.
func (c *Counters) AddSearching(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searching += n
}

// RemoveSearching records n players leaving the searching bucket.
func (c *Counters) RemoveSearching(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searching -= n
	if c.searching < 0 {
		c.searching = 0
	}
}

// MoveToPlaying shifts n players from the searching to the playing bucket.
// Called once when a lobby enters voting.
func (c *Counters) MoveToPlaying(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searching -= n
	if c.searching < 0 {
		c.searching = 0
	}
	c.playing += n
}

// RemovePlaying records n players leaving the playing bucket.
func (c *Counters) RemovePlaying(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing -= n
	if c.playing < 0 {
		c.playing = 0
	}
}

// Searching returns the global searching total.
func (c *Counters) Searching() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searching
}

// Playing returns the global playing total.
func (c *Counters) Playing() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// LobbyCreated bumps the active count for the given regime.
func (c *Counters) LobbyCreated(t LobbyType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobbies[t]++
}

// LobbyDeleted drops the active count for the given regime.
func (c *Counters) LobbyDeleted(t LobbyType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lobbies[t] > 0 {
		c.lobbies[t]--
	}
}

// ActiveLobbies returns the live lobby count for one regime. The finder
// fails fast when this is zero for the requested type.
func (c *Counters) ActiveLobbies(t LobbyType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lobbies[t]
}
