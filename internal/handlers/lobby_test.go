// internal/handlers/lobby_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anreszii/matchup/internal/auth"
	"github.com/anreszii/matchup/internal/config"
	"github.com/anreszii/matchup/internal/matchmaking"
)

// fakeProfiles serves any requested name with a flat profile so handler
// tests need no database.
type fakeProfiles struct{}

func (fakeProfiles) FindByName(_ context.Context, name string) (*matchmaking.Profile, error) {
	return &matchmaking.Profile{Nickname: name, GRI: 1000}, nil
}

type fakeRoom struct{ id string }

func (r fakeRoom) ID() string { return r.id }

func (fakeRoom) Join(string) error { return nil }

func (fakeRoom) Leave(string) error { return nil }

func (fakeRoom) Message(_, _ string) error { return nil }

func (fakeRoom) Delete() error { return nil }

type fakeChat struct{}

func (fakeChat) Spawn(roomType, id string) (matchmaking.ChatRoom, error) {
	return fakeRoom{id: "chat:" + roomType + ":" + id}, nil
}
func (fakeChat) Get(string) (matchmaking.ChatRoom, bool) { return nil, false }

type fakeVoice struct{}

func (fakeVoice) GuildWithFreeChannels(context.Context) (string, error) { return "g", nil }

func (fakeVoice) CreateChannelsForMatch(_ context.Context, _, _ string) error { return nil }

func (fakeVoice) RemoveLobby(_ context.Context, _, _ string) error { return nil }

func (fakeVoice) JoinLobby(_ context.Context, _, _, _ string) error { return nil }

func (fakeVoice) LeaveLobby(_ context.Context, _, _, _ string) error { return nil }

type fakeNotifier struct{}

func (fakeNotifier) Notify(_, _ string) {}

func (fakeNotifier) Send(_, _ string, _ map[string]interface{}) {}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	auth.Init() // ephemeral keys, no env needed
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m := matchmaking.NewManagers(config.Default(), matchmaking.Deps{
		Log:      logger,
		Profiles: fakeProfiles{},
		Chat:     fakeChat{},
		Voice:    fakeVoice{},
		Notify:   fakeNotifier{},
	})
	return NewServer(m, NewHub(logger), logger)
}

func doRequest(t *testing.T, h http.HandlerFunc, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.CreateJWT(name)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Cookie", "auth_token="+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateLobby(t *testing.T) {
	srv := newTestServer(t)
	w := doRequest(t, srv.CreateLobbyHandler(), "alice", `{"type":"rating","region":"eu"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, "rating", resp["type"])
	assert.Equal(t, "searching", resp["state"])
}

func TestCreateLobbyRejectsUnknownType(t *testing.T) {
	srv := newTestServer(t)
	w := doRequest(t, srv.CreateLobbyHandler(), "alice", `{"type":"ranked"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateLobbyUnauthorized(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"type":"rating"}`))
	w := httptest.NewRecorder()
	srv.CreateLobbyHandler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJoinAndLeaveLobby(t *testing.T) {
	srv := newTestServer(t)
	l := srv.M.Lobbies.Spawn(matchmaking.Rating, "eu")

	body := `{"lobby_id":"` + l.ID() + `"}`
	w := doRequest(t, srv.JoinLobbyHandler(), "alice", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, l.Players(), "alice")

	// Joining a second lobby conflicts.
	other := srv.M.Lobbies.Spawn(matchmaking.Rating, "eu")
	w = doRequest(t, srv.JoinLobbyHandler(), "alice", `{"lobby_id":"`+other.ID()+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, srv.LeaveLobbyHandler(), "alice", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, l.Players(), "alice")
}

func TestJoinMissingLobby(t *testing.T) {
	srv := newTestServer(t)
	w := doRequest(t, srv.JoinLobbyHandler(), "alice", `{"lobby_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindLobbySpawnsWhenNoneMatch(t *testing.T) {
	srv := newTestServer(t)
	w := doRequest(t, srv.FindLobbyHandler(), "alice", `{"type":"rating","region":"eu"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["spawned"])
	assert.Equal(t, 1, srv.M.Lobbies.Len())

	// The next searcher lands in the lobby just spawned.
	w = doRequest(t, srv.FindLobbyHandler(), "bob", `{"type":"rating","region":"eu"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["spawned"])
	assert.Equal(t, 1, srv.M.Lobbies.Len())
}

func TestTeamEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv.CreateTeamHandler(), "alice", `{}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	teamID, _ := resp["id"].(string)
	require.NotEmpty(t, teamID)
	assert.Equal(t, "alice", resp["captain"])

	w = doRequest(t, srv.JoinTeamHandler(), "bob", `{"team_id":"`+teamID+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["members"], 2)

	w = doRequest(t, srv.LeaveTeamHandler(), "bob", `{}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	team, ok := srv.M.Teams.Get(teamID)
	require.True(t, ok)
	assert.Equal(t, 1, team.Size())
}
