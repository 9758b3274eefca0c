// internal/matchmaking/services.go
package matchmaking

import "context"

// Profile is the cached snapshot of a player's persistent profile. The
// matchmaking core never writes profiles; it only refreshes this snapshot
// through the ProfileStore.
type Profile struct {
	Nickname    string
	DiscordNick string
	GRI         float64
	Guild       string
	Prefix      string
}

// ProfileStore resolves a player name to its persistent profile.
// Implementations must return ErrProfileNotFound when no profile exists.
type ProfileStore interface {
	FindByName(ctx context.Context, name string) (*Profile, error)
}

// ChatRoom is one chat channel bound to a lobby, command or team.
type ChatRoom interface {
	ID() string
	Join(name string) error
	Leave(name string) error
	Message(from, content string) error
	Delete() error
}

// ChatService spawns and resolves chat rooms. One room exists per
// Lobby/Command/Team instance.
type ChatService interface {
	Spawn(roomType, id string) (ChatRoom, error)
	Get(id string) (ChatRoom, bool)
}

// VoiceOrchestrator drives voice-channel lifecycle on the external social
// platform. Every call is best-effort: failures are logged by the caller
// and never block lobby state progression.
type VoiceOrchestrator interface {
	GuildWithFreeChannels(ctx context.Context) (string, error)
	CreateChannelsForMatch(ctx context.Context, guildRef, sessionID string) error
	RemoveLobby(ctx context.Context, guildRef, sessionID string) error
	JoinLobby(ctx context.Context, guildRef, sessionID, name string) error
	LeaveLobby(ctx context.Context, guildRef, sessionID, name string) error
}

// Notifier delivers fire-and-forget messages to whichever transport
// session is currently aliased to a player name.
type Notifier interface {
	Notify(name, content string)
	Send(name, event string, payload map[string]interface{})
}
