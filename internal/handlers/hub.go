// internal/handlers/hub.go
package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/middleware"
)

// session is one player's live notification channel.
type session struct {
	name   string
	cancel context.CancelFunc
	out    chan map[string]interface{}
}

// write pushes a message onto the session's out channel non-blockingly.
func (s *session) write(log *logrus.Logger, msg map[string]interface{}) {
	select {
	case s.out <- msg:
	default:
		msgType, _ := msg["type"].(string)
		log.WithFields(logrus.Fields{"player": s.name, "type": msgType}).
			Warn("session channel full, dropped message")
	}
}

// Hub maps player names to their live websocket sessions and implements
// matchmaking.Notifier. Delivery is fire-and-forget: a player without a
// session simply misses the message.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*session
	log      *logrus.Logger
}

// NewHub returns an empty hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		log:      log,
	}
}

// Notify sends a plain out-of-band message.
func (h *Hub) Notify(name, content string) {
	h.Send(name, "notification", map[string]interface{}{"msg": content})
}

// Send delivers a typed event to whichever session is aliased to name.
// The write happens under the hub lock so it cannot race a session
// replacement closing the channel.
func (h *Hub) Send(name, event string, payload map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[name]
	if !ok {
		return
	}
	s.write(h.log, map[string]interface{}{
		"type":    event,
		"payload": payload,
	})
}

// register installs a session, replacing and tearing down any previous
// one for the same player.
func (h *Hub) register(s *session) {
	h.mu.Lock()
	old, had := h.sessions[s.name]
	h.sessions[s.name] = s
	if had && old != s {
		close(old.out)
	}
	h.mu.Unlock()
	if had && old != s && old.cancel != nil {
		old.cancel()
	}
}

// unregister removes the session if it is still the current one.
func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	if cur, ok := h.sessions[s.name]; ok && cur == s {
		delete(h.sessions, s.name)
	}
	h.mu.Unlock()
}

// WSHandler upgrades the connection and pumps hub messages to the client
// until it disconnects.
func (srv *Server) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := srv.playerName(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"matchup"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			srv.Log.WithError(err).Warn("websocket accept error")
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")
		middleware.LogWebSocketConnect(srv.Log, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		s := &session{
			name:   name,
			cancel: cancel,
			out:    make(chan map[string]interface{}, 16),
		}
		srv.Hub.register(s)
		defer srv.Hub.unregister(s)

		go func() {
			for msg := range s.out {
				if err := wsjson.Write(ctx, c, msg); err != nil {
					cancel()
					return
				}
			}
		}()

		// Read loop: the notify channel is one-way, but reading detects
		// disconnects and keeps control frames flowing.
		var readErr error
		for {
			var in map[string]interface{}
			if readErr = wsjson.Read(ctx, c, &in); readErr != nil {
				break
			}
		}
		cancel()
		middleware.LogWebSocketDisconnect(srv.Log, r.RemoteAddr, r.URL.Path, readErr)
		c.Close(websocket.StatusNormalClosure, "bye")
	}
}
