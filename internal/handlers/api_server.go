// internal/handlers/api_server.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/auth"
	"github.com/anreszii/matchup/internal/matchmaking"
)

// Server bundles the matchmaking core and the notification hub for the
// HTTP surface.
type Server struct {
	M   *matchmaking.Managers
	Hub *Hub
	Log *logrus.Logger
}

// NewServer wires the transport surface.
func NewServer(m *matchmaking.Managers, hub *Hub, log *logrus.Logger) *Server {
	return &Server{M: m, Hub: hub, Log: log}
}

// playerName resolves the acting player from the auth cookie or bearer
// token.
func (srv *Server) playerName(r *http.Request) (string, error) {
	token := ""
	if c, err := r.Cookie("auth_token"); err == nil {
		token = c.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else if q := r.URL.Query().Get("token"); q != "" {
		token = q
	}
	if token == "" {
		return "", fmt.Errorf("missing auth token")
	}
	return auth.AuthenticateJWT(token)
}

// actingPlayer resolves and, on first activity, spawns the acting player.
func (srv *Server) actingPlayer(w http.ResponseWriter, r *http.Request) (*matchmaking.Player, bool) {
	name, err := srv.playerName(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	p, err := srv.M.Players.Spawn(r.Context(), name)
	if err != nil {
		http.Error(w, "unknown player profile", http.StatusNotFound)
		return nil, false
	}
	return p, true
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps core sentinel errors onto HTTP statuses and emits a
// machine-readable cause.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	switch {
	case errors.Is(err, matchmaking.ErrNotCaptain), errors.Is(err, matchmaking.ErrNotYourTurn):
		code = http.StatusForbidden
	case errors.Is(err, matchmaking.ErrUnknownEntity), errors.Is(err, matchmaking.ErrNotMember),
		errors.Is(err, matchmaking.ErrProfileNotFound):
		code = http.StatusNotFound
	case errors.Is(err, matchmaking.ErrWrongState), errors.Is(err, matchmaking.ErrNoSpace),
		errors.Is(err, matchmaking.ErrTeamFull), errors.Is(err, matchmaking.ErrAlreadyInLobby),
		errors.Is(err, matchmaking.ErrAlreadyInTeam), errors.Is(err, matchmaking.ErrMapUnavailable),
		errors.Is(err, matchmaking.ErrOneTeamLocked):
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]interface{}{"error": err.Error()})
}

// lobbySummary is the wire shape of a lobby.
func lobbySummary(l *matchmaking.Lobby) map[string]interface{} {
	commands := make(map[string][]string, 4)
	for t, c := range l.Commands() {
		commands[string(t)] = c.Members()
	}
	return map[string]interface{}{
		"id":       l.ID(),
		"type":     string(l.Type()),
		"region":   l.Region(),
		"state":    l.State().String(),
		"gri":      l.GRI(),
		"players":  l.Players(),
		"commands": commands,
		"maps":     l.Maps(),
		"map":      l.Map(),
		"owner":    l.Owner(),
		"game_id":  l.GameID(),
	}
}
