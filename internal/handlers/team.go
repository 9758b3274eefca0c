// internal/handlers/team.go
package handlers

import (
	"encoding/json"
	"net/http"
)

// CreateTeamHandler spawns a team captained by the acting player.
func (srv *Server) CreateTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		t, err := srv.M.Teams.Spawn(p.Name())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":      t.ID(),
			"captain": t.Captain(),
			"members": t.Check(),
		})
	}
}

// JoinTeamHandler adds the acting player to an existing team.
func (srv *Server) JoinTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		var req struct {
			TeamID string `json:"team_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		t, ok := srv.M.Teams.Get(req.TeamID)
		if !ok {
			http.Error(w, "team not found", http.StatusNotFound)
			return
		}
		if err := t.Join(p.Name()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":      t.ID(),
			"captain": t.Captain(),
			"members": t.Check(),
		})
	}
}

// LeaveTeamHandler removes the acting player from its team. Leaving a
// team you are not in is an idempotent no-op.
func (srv *Server) LeaveTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		left := false
		if t, ok := srv.M.Teams.FindByUserName(p.Name()); ok {
			left = t.Leave(p.Name())
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"left": left})
	}
}
