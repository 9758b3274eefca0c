// internal/handlers/search.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/anreszii/matchup/internal/matchmaking"
)

// FindLobbyHandler runs the zone-escalation search for the acting player
// and joins the match it lands on. When the search comes back empty a
// fresh lobby is spawned instead.
func (srv *Server) FindLobbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := srv.actingPlayer(w, r)
		if !ok {
			return
		}
		var req struct {
			Type      string `json:"type"`
			Region    string `json:"region"`
			GuildOnly bool   `json:"guild_only"`
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

		filters := matchmaking.NewFilters(
			matchmaking.NewGRIFilter(p.GRI()),
			matchmaking.NewRegionFilter(req.Region),
			matchmaking.NewRegimeFilter(ltype),
		)
		if req.GuildOnly {
			if p.Guild() == "" {
				http.Error(w, "player has no guild", http.StatusConflict)
				return
			}
			filters.Add(matchmaking.NewGuildFilter(p.Guild()))
		}
		if teamID := p.TeamID(); teamID != "" {
			if team, ok := srv.M.Teams.Get(teamID); ok {
				filters.Add(matchmaking.NewTeamSpotFilter(team.Size()))
			}
		}

		l := srv.M.FindLobby(r.Context(), ltype, filters)
		spawned := false
		if l == nil {
			l = srv.M.Lobbies.Spawn(ltype, req.Region)
			spawned = true
		}
		if err := l.Join(p.Name()); err != nil {
			writeError(w, err)
			return
		}
		resp := lobbySummary(l)
		resp["spawned"] = spawned
		writeJSON(w, http.StatusOK, resp)
	}
}
