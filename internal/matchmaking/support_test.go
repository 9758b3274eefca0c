// internal/matchmaking/support_test.go
package matchmaking

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/anreszii/matchup/internal/config"
)

// stubProfiles serves profile snapshots from an in-memory map. Setting
// fail makes every lookup return that error, simulating a store outage.
type stubProfiles struct {
	mu       sync.Mutex
	profiles map[string]Profile
	fail     error
}

func newStubProfiles() *stubProfiles {
	return &stubProfiles{profiles: make(map[string]Profile)}
}

func (s *stubProfiles) set(name string, p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[name] = p
}

func (s *stubProfiles) failWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *stubProfiles) FindByName(_ context.Context, name string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	p, ok := s.profiles[name]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

// stubRoom is an in-memory chat room recording membership.
type stubRoom struct {
	mu      sync.Mutex
	id      string
	members map[string]struct{}
	deleted bool
}

func (r *stubRoom) ID() string { return r.id }

func (r *stubRoom) Join(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[name] = struct{}{}
	return nil
}

func (r *stubRoom) Leave(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, name)
	return nil
}

func (r *stubRoom) Message(_, _ string) error { return nil }

func (r *stubRoom) Delete() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = true
	return nil
}

// stubChat spawns stubRooms.
type stubChat struct {
	mu    sync.Mutex
	rooms map[string]*stubRoom
}

func newStubChat() *stubChat {
	return &stubChat{rooms: make(map[string]*stubRoom)}
}

func (c *stubChat) Spawn(roomType, id string) (ChatRoom, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room := &stubRoom{
		id:      fmt.Sprintf("chat:%s:%s", roomType, id),
		members: make(map[string]struct{}),
	}
	c.rooms[room.id] = room
	return room, nil
}

func (c *stubChat) Get(id string) (ChatRoom, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.rooms[id]
	return room, ok
}

// stubVoice records orchestration calls and always succeeds.
type stubVoice struct {
	mu      sync.Mutex
	created []string
	removed []string
	joined  []string
}

func (v *stubVoice) GuildWithFreeChannels(_ context.Context) (string, error) {
	return "guild-1", nil
}

func (v *stubVoice) CreateChannelsForMatch(_ context.Context, _, sessionID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.created = append(v.created, sessionID)
	return nil
}

func (v *stubVoice) RemoveLobby(_ context.Context, _, sessionID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removed = append(v.removed, sessionID)
	return nil
}

func (v *stubVoice) JoinLobby(_ context.Context, _, _, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.joined = append(v.joined, name)
	return nil
}

func (v *stubVoice) LeaveLobby(_ context.Context, _, _, _ string) error { return nil }

// stubNotifier collects delivered events per player.
type stubNotifier struct {
	mu     sync.Mutex
	events map[string][]string
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{events: make(map[string][]string)}
}

func (n *stubNotifier) Notify(name, _ string) {
	n.record(name, "notification")
}

func (n *stubNotifier) Send(name, event string, _ map[string]interface{}) {
	n.record(name, event)
}

func (n *stubNotifier) record(name, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[name] = append(n.events[name], event)
}

func (n *stubNotifier) received(name, event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events[name] {
		if e == event {
			return true
		}
	}
	return false
}

// testConfig returns compact timings so time-based transitions can be
// exercised without long sleeps.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ReadyGrace = 40 * time.Millisecond
	cfg.VoteTurn = 40 * time.Millisecond
	cfg.PreparingGate = 40 * time.Millisecond
	cfg.IdleTimeout = 40 * time.Millisecond
	cfg.SearchTimeout = 120 * time.Millisecond
	cfg.SearchPoll = 5 * time.Millisecond
	return cfg
}

type testEnv struct {
	m        *Managers
	profiles *stubProfiles
	voice    *stubVoice
	notify   *stubNotifier
}

// setupManagers wires the core against in-memory collaborators.
func setupManagers(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		profiles: newStubProfiles(),
		voice:    &stubVoice{},
		notify:   newStubNotifier(),
	}
	env.m = NewManagers(cfg, Deps{
		Log:      logger,
		Profiles: env.profiles,
		Chat:     newStubChat(),
		Voice:    env.voice,
		Notify:   env.notify,
	})
	return env
}

// spawnPlayer seeds a profile and brings the player online.
func (env *testEnv) spawnPlayer(t *testing.T, name string, gri float64, guild string) *Player {
	t.Helper()
	env.profiles.set(name, Profile{Nickname: name, GRI: gri, Guild: guild})
	p, err := env.m.Players.Spawn(context.Background(), name)
	require.NoError(t, err)
	require.Equal(t, PlayerOnline, p.State())
	return p
}

// fillLobby joins count solo players named with the given prefix.
func (env *testEnv) fillLobby(t *testing.T, l *Lobby, prefix string, count int) []*Player {
	t.Helper()
	players := make([]*Player, count)
	for i := 0; i < count; i++ {
		p := env.spawnPlayer(t, fmt.Sprintf("%s%d", prefix, i), 1000, "")
		require.NoError(t, l.Join(p.Name()))
		players[i] = p
	}
	return players
}

// readyAll flags every given player ready in the lobby.
func readyAll(t *testing.T, l *Lobby, players []*Player) {
	t.Helper()
	for _, p := range players {
		require.NoError(t, l.BecomeReady(p.Name()))
	}
}
