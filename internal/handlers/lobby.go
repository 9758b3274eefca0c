// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/anreszii/matchup/internal/matchmaking"
)

// lobbyRequest is the common body for lobby membership operations.
type lobbyRequest struct {
	LobbyID string `json:"lobby_id"`
	Map     string `json:"map,omitempty"`
	Command string `json:"command,omitempty"`
}

// decodeLobby reads the request body and resolves the target lobby.
func (srv *Server) decodeLobby(w http.ResponseWriter, r *http.Request) (*matchmaking.Lobby, *lobbyRequest, bool) {
	var req lobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return nil, nil, false
	}
	l, ok := srv.M.Lobbies.Get(req.LobbyID)
	if !ok {
		http.Error(w, "lobby not found", http.StatusNotFound)
		return nil, nil, false
	}
	return l, &req, true
}

// CreateLobbyHandler spawns a fresh lobby.
func (srv *Server) CreateLobbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := srv.actingPlayer(w, r); !ok {
			return
		}
		var req struct {
			Type   string `json:"type"`
			Region string `json:"region"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		ltype := matchmaking.LobbyType(req.Type)
		switch ltype {
		case matchmaking.Training, matchmaking.Arcade, matchmaking.Rating:
		default:
			http.Error(w, "unknown lobby type", http.StatusBadRequest)
			return
		}
		l := srv.M.Lobbies.Spawn(ltype, req.Region)
		writeJSON(w, http.StatusOK, lobbySummary(l))
	}
}

// ListLobbiesHandler returns a summary of every live lobby plus the
// shared counters.
func (srv *Server) ListLobbiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbies := srv.M.Lobbies.Lobbies()
		out := make([]map[string]interface{}, 0, len(lobbies))
		for _, l := range lobbies {
			out = append(out, lobbySummary(l))
		}
		c := srv.M.Counters
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"lobbies":   out,
			"searching": c.Searching(),
			"playing":   c.Playing(),
		})
	}
}

// JoinLobbyHandler admits the acting player (or its whole team when it is
// the captain) into a lobby.
func (srv *Server) JoinLobbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		l, _, ok := srv.decodeLobby(w, r)
		if !ok {
			return
		}
		if err := l.Join(p.Name()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lobbySummary(l))
	}
}

// LeaveLobbyHandler removes the acting player, cascading its team if it
// is the captain.
func (srv *Server) LeaveLobbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		l, _, ok := srv.decodeLobby(w, r)
		if !ok {
			return
		}
		if err := l.Leave(p.Name()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	}
}

// ReadyHandler flags the acting player ready.
func (srv *Server) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		l, _, ok := srv.decodeLobby(w, r)
		if !ok {
			return
		}
		if err := l.BecomeReady(p.Name()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	}
}

// UnreadyHandler clears the acting player's ready flag.
func (srv *Server) UnreadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		l, _, ok := srv.decodeLobby(w, r)
		if !ok {
			return
		}
		if err := l.BecomeUnready(p.Name()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	}
}

// VoteHandler casts the acting captain's map ban.
func (srv *Server) VoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		l, req, ok := srv.decodeLobby(w, r)
		if !ok {
			return
		}
		if err := l.Vote(p.Name(), req.Map); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"remaining": l.Maps(),
			"map":       l.Map(),
		})
	}
}

// MoveHandler relocates the acting player between sides.
func (srv *Server) MoveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		l, req, ok := srv.decodeLobby(w, r)
		if !ok {
			return
		}
		if err := l.Move(p.Name(), matchmaking.CommandType(req.Command)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	}
}

// StartHandler begins the match once the preparing gate has elapsed.
func (srv *Server) StartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := srv.actingPlayer(w, r); !ok {
			return
		}
		l, _, ok := srv.decodeLobby(w, r)
		if !ok {
			return
		}
		if !l.ReadyToStart() {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"started": false,
				"state":   l.State().String(),
			})
			return
		}
		started := l.Start()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"started": started,
			"game_id": l.GameID(),
			"map":     l.Map(),
		})
	}
}

// DeleteLobbyHandler tears a lobby down explicitly.
func (srv *Server) DeleteLobbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := srv.actingPlayer(w, r); !ok {
			return
		}
		l, _, ok := srv.decodeLobby(w, r)
		if !ok {
			return
		}
		srv.M.Lobbies.Drop(l.ID())
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	}
}
