// internal/matchmaking/finder_test.go
package matchmaking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFilters(gri float64, region string, ltype LobbyType) *Filters {
	return NewFilters(
		NewGRIFilter(gri),
		NewRegionFilter(region),
		NewRegimeFilter(ltype),
	)
}

func TestFinderFailsFastOnEmptyRegistry(t *testing.T) {
	env := setupManagers(t, nil)
	start := time.Now()
	l := env.m.FindLobby(context.Background(), Rating, searchFilters(1000, "eu", Rating))
	assert.Nil(t, l)
	assert.Less(t, time.Since(start), env.m.Config().SearchTimeout,
		"empty registry must not consume the search window")
}

func TestFinderFailsFastWithoutRegimeLobbies(t *testing.T) {
	env := setupManagers(t, nil)
	lob := env.m.Lobbies.Spawn(Training, "eu")
	p := env.spawnPlayer(t, "host", 1000, "")
	require.NoError(t, lob.Join(p.Name()))

	start := time.Now()
	found := env.m.FindLobby(context.Background(), Rating, searchFilters(1000, "eu", Rating))
	assert.Nil(t, found)
	assert.Less(t, time.Since(start), env.m.Config().SearchTimeout)
}

func TestFinderMatchesCompatibleLobby(t *testing.T) {
	env := setupManagers(t, nil)
	lob := env.m.Lobbies.Spawn(Rating, "eu")
	host := env.spawnPlayer(t, "host", 1000, "")
	require.NoError(t, lob.Join(host.Name()))

	// 1049 quantizes to 1000, inside the small-zone tolerance.
	found := env.m.FindLobby(context.Background(), Rating, searchFilters(1049, "eu", Rating))
	require.NotNil(t, found)
	assert.Equal(t, lob.ID(), found.ID())
}

func TestFinderTimesOutOnMismatch(t *testing.T) {
	env := setupManagers(t, nil)
	lob := env.m.Lobbies.Spawn(Rating, "eu")
	host := env.spawnPlayer(t, "host", 1000, "")
	require.NoError(t, lob.Join(host.Name()))

	found := env.m.FindLobby(context.Background(), Rating, searchFilters(1000, "na", Rating))
	assert.Nil(t, found)
}

func TestFinderWidensZone(t *testing.T) {
	env := setupManagers(t, nil)
	lob := env.m.Lobbies.Spawn(Rating, "eu")
	host := env.spawnPlayer(t, "host", 1000, "")
	require.NoError(t, lob.Join(host.Name()))

	f := NewFinder(env.m, Rating, searchFilters(1300, "eu", Rating))
	// 300 apart: rejected in the small zone, accepted from medium on.
	assert.Nil(t, f.scan(ZoneSmall))
	assert.NotNil(t, f.scan(ZoneMedium))

	// The escalation loop reaches the medium zone before the deadline.
	found := f.Find(context.Background())
	require.NotNil(t, found)
	assert.Equal(t, lob.ID(), found.ID())
}

func TestFinderLargeZoneIgnoresOptional(t *testing.T) {
	env := setupManagers(t, nil)
	lob := env.m.Lobbies.Spawn(Rating, "eu")
	host := env.spawnPlayer(t, "host", 1000, "wolves")
	require.NoError(t, lob.Join(host.Name()))

	filters := searchFilters(1000, "eu", Rating)
	filters.Add(AsOptional(NewGuildFilter("bears")))
	filters.Add(AsOptional(NewRegionFilter("na")))

	f := NewFinder(env.m, Rating, filters)
	// Two failing optional filters exceed the small-zone band of one.
	assert.Nil(t, f.scan(ZoneSmall))
	// The medium band of three tolerates them.
	assert.NotNil(t, f.scan(ZoneMedium))
	// The large zone accepts on required satisfaction alone.
	assert.NotNil(t, f.scan(ZoneLarge))
}

func TestFinderSkipsNonSearchingLobbies(t *testing.T) {
	cfg := testConfig()
	cfg.SideCapacity = 1
	env := setupManagers(t, cfg)
	lob := env.m.Lobbies.Spawn(Rating, "eu")
	players := env.fillLobby(t, lob, "p", 2)
	readyAll(t, lob, players)
	require.Equal(t, LobbyVoting, lob.State())

	f := NewFinder(env.m, Rating, searchFilters(1000, "eu", Rating))
	assert.Nil(t, f.scan(ZoneLarge))
}

func TestGuildFilter(t *testing.T) {
	env := setupManagers(t, nil)
	lob := env.m.Lobbies.Spawn(Rating, "eu")
	wolf := env.spawnPlayer(t, "wolf", 1000, "wolves")
	require.NoError(t, lob.Join(wolf.Name()))

	assert.True(t, NewGuildFilter("wolves").IsValid(lob, ZoneSmall))
	assert.False(t, NewGuildFilter("bears").IsValid(lob, ZoneSmall))

	// A mixed side breaks guild exclusivity.
	stray := env.spawnPlayer(t, "stray", 1000, "")
	require.NoError(t, lob.Join(stray.Name()))
	assert.False(t, NewGuildFilter("wolves").IsValid(lob, ZoneSmall))
}

func TestTeamSpotFilter(t *testing.T) {
	cfg := testConfig()
	cfg.SideCapacity = 2
	cfg.TeamCapacity = 2
	env := setupManagers(t, cfg)
	lob := env.m.Lobbies.Spawn(Rating, "eu")

	assert.True(t, NewTeamSpotFilter(2).IsValid(lob, ZoneSmall))
	assert.False(t, NewTeamSpotFilter(3).IsValid(lob, ZoneSmall))

	// Fill one side with a full team, the spot on the other side remains.
	env.spawnPlayer(t, "cap", 1000, "")
	env.spawnPlayer(t, "mate", 1000, "")
	team, err := env.m.Teams.Spawn("cap")
	require.NoError(t, err)
	require.NoError(t, team.Join("mate"))
	require.NoError(t, lob.Join("cap"))

	assert.True(t, NewTeamSpotFilter(2).IsValid(lob, ZoneSmall))

	// Occupy the second side partially; a full team no longer fits.
	solo := env.spawnPlayer(t, "solo", 1000, "")
	require.NoError(t, lob.Join(solo.Name()))
	assert.False(t, NewTeamSpotFilter(2).IsValid(lob, ZoneSmall))
	assert.True(t, NewTeamSpotFilter(1).IsValid(lob, ZoneSmall))
}

func TestZoneTolerances(t *testing.T) {
	assert.Equal(t, 100.0, ZoneSmall.RatingTolerance())
	assert.Equal(t, 300.0, ZoneMedium.RatingTolerance())
	assert.Equal(t, 600.0, ZoneLarge.RatingTolerance())

	band, bounded := ZoneSmall.OptionalBand()
	assert.Equal(t, 1, band)
	assert.True(t, bounded)
	band, bounded = ZoneMedium.OptionalBand()
	assert.Equal(t, 3, band)
	assert.True(t, bounded)
	_, bounded = ZoneLarge.OptionalBand()
	assert.False(t, bounded)
}
