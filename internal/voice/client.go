// internal/voice/client.go
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client talks to the voice-session orchestrator sitting in front of the
// social platform. Every call here is best-effort from the matchmaking
// core's point of view: callers log failures and move on.
type Client struct {
	base  string
	token string
	http  *http.Client
	log   *logrus.Logger
}

// NewClient builds a client for the orchestrator at base.
func NewClient(base, token string, log *logrus.Logger) *Client {
	return &Client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 10 * time.Second},
		log:   log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("voice orchestrator: %s %s returned %s", method, path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// GuildWithFreeChannels asks which guild still has voice capacity.
func (c *Client) GuildWithFreeChannels(ctx context.Context) (string, error) {
	var res struct {
		Guild string `json:"guild"`
	}
	if err := c.do(ctx, http.MethodGet, "/guilds/free", nil, &res); err != nil {
		return "", err
	}
	if res.Guild == "" {
		return "", fmt.Errorf("no guild with free channels")
	}
	return res.Guild, nil
}

// CreateChannelsForMatch provisions the per-side voice channels.
func (c *Client) CreateChannelsForMatch(ctx context.Context, guildRef, sessionID string) error {
	path := fmt.Sprintf("/guilds/%s/matches", guildRef)
	return c.do(ctx, http.MethodPost, path, map[string]string{"session_id": sessionID}, nil)
}

// RemoveLobby tears the match channels down.
func (c *Client) RemoveLobby(ctx context.Context, guildRef, sessionID string) error {
	path := fmt.Sprintf("/guilds/%s/matches/%s", guildRef, sessionID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// JoinLobby connects a player to the match channels.
func (c *Client) JoinLobby(ctx context.Context, guildRef, sessionID, name string) error {
	path := fmt.Sprintf("/guilds/%s/matches/%s/members", guildRef, sessionID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"name": name}, nil)
}

// LeaveLobby disconnects a player from the match channels.
func (c *Client) LeaveLobby(ctx context.Context, guildRef, sessionID, name string) error {
	path := fmt.Sprintf("/guilds/%s/matches/%s/members/%s", guildRef, sessionID, name)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
