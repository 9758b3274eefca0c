// internal/matchmaking/command_test.go
package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.SideCapacity = 2
	env := setupManagers(t, cfg)
	l := env.m.Lobbies.Spawn(Training, "eu")
	side := l.Command(CommandOne)

	env.spawnPlayer(t, "alice", 1000, "")
	env.spawnPlayer(t, "bob", 1000, "")
	env.spawnPlayer(t, "carol", 1000, "")

	require.NoError(t, side.Join("alice"))
	require.NoError(t, side.Join("bob"))
	assert.ErrorIs(t, side.Join("carol"), ErrNoSpace)
	assert.Equal(t, 2, side.Size())
	assert.False(t, side.HasSpace(1))
}

func TestCommandCaptainReassignment(t *testing.T) {
	env := setupManagers(t, nil)
	l := env.m.Lobbies.Spawn(Training, "eu")
	side := l.Command(CommandOne)

	env.spawnPlayer(t, "alice", 1000, "")
	env.spawnPlayer(t, "bob", 1000, "")

	require.NoError(t, side.Join("alice"))
	require.NoError(t, side.Join("bob"))
	assert.Equal(t, "alice", side.Captain())

	require.NoError(t, side.Leave("alice"))
	assert.Equal(t, "bob", side.Captain())

	assert.ErrorIs(t, side.Leave("alice"), ErrNotMember)
}

func TestCommandGuildFlag(t *testing.T) {
	env := setupManagers(t, nil)
	l := env.m.Lobbies.Spawn(Training, "eu")
	side := l.Command(CommandOne)

	// Empty command is never one-guild.
	assert.False(t, side.IsOneGuild())

	env.spawnPlayer(t, "alice", 1000, "wolves")
	env.spawnPlayer(t, "bob", 1000, "wolves")
	env.spawnPlayer(t, "carol", 1000, "")

	require.NoError(t, side.Join("alice"))
	require.NoError(t, side.Join("bob"))
	assert.True(t, side.IsOneGuild())

	// A guildless member breaks homogeneity.
	require.NoError(t, side.Join("carol"))
	assert.False(t, side.IsOneGuild())

	require.NoError(t, side.Leave("carol"))
	assert.True(t, side.IsOneGuild())

	// Emptying the command resets the flag.
	require.NoError(t, side.Leave("alice"))
	require.NoError(t, side.Leave("bob"))
	assert.False(t, side.IsOneGuild())
}

func TestCommandGRIMedian(t *testing.T) {
	env := setupManagers(t, nil)
	l := env.m.Lobbies.Spawn(Training, "eu")
	side := l.Command(CommandOne)

	env.spawnPlayer(t, "alice", 1000, "")
	env.spawnPlayer(t, "bob", 2000, "")
	env.spawnPlayer(t, "carol", 3000, "")

	require.NoError(t, side.Join("alice"))
	require.NoError(t, side.Join("bob"))
	require.NoError(t, side.Join("carol"))
	assert.Equal(t, 2000.0, side.GRI())

	require.NoError(t, side.Leave("carol"))
	assert.Equal(t, 1500.0, side.GRI())
}

func TestCommandTeamTracking(t *testing.T) {
	cfg := testConfig()
	cfg.SideCapacity = 2
	cfg.TeamCapacity = 2
	env := setupManagers(t, cfg)
	l := env.m.Lobbies.Spawn(Training, "eu")
	side := l.Command(CommandOne)

	env.spawnPlayer(t, "alice", 1000, "")
	env.spawnPlayer(t, "bob", 1000, "")
	team, err := env.m.Teams.Spawn("alice")
	require.NoError(t, err)
	require.NoError(t, team.Join("bob"))

	require.NoError(t, side.Join("alice"))
	assert.True(t, side.HasTeam(team.ID()))
	assert.False(t, side.IsOneTeam())

	// Side at capacity and formed by one team locks it.
	require.NoError(t, side.Join("bob"))
	assert.True(t, side.IsOneTeam())
	assert.Equal(t, 0, side.MaxTeamSizeToJoin())

	require.NoError(t, side.Leave("bob"))
	assert.False(t, side.IsOneTeam())
	assert.True(t, side.HasTeam(team.ID()))

	require.NoError(t, side.Leave("alice"))
	assert.False(t, side.HasTeam(team.ID()))
}

func TestCommandIsReady(t *testing.T) {
	env := setupManagers(t, nil)
	l := env.m.Lobbies.Spawn(Training, "eu")
	side := l.Command(CommandOne)

	alice := env.spawnPlayer(t, "alice", 1000, "")
	bob := env.spawnPlayer(t, "bob", 1000, "")
	require.NoError(t, side.Join("alice"))
	require.NoError(t, side.Join("bob"))

	require.NoError(t, alice.Event(SignalJoinLobby, nil))
	require.NoError(t, bob.Event(SignalJoinLobby, nil))
	require.NoError(t, alice.Event(SignalBeReady, nil))
	assert.False(t, side.IsReady())

	require.NoError(t, bob.Event(SignalBeReady, nil))
	assert.True(t, side.IsReady())
}
