// internal/matchmaking/errors.go
package matchmaking

import "errors"

// Caller-input errors. These are surfaced to the transport layer verbatim
// and are never retried internally.
var (
	ErrWrongState     = errors.New("operation not valid in current state")
	ErrNoSpace        = errors.New("not enough space")
	ErrTeamFull       = errors.New("team is full")
	ErrNotCaptain     = errors.New("only the captain may do this")
	ErrNotYourTurn    = errors.New("not your voting turn")
	ErrMapUnavailable = errors.New("map is not among the remaining candidates")
	ErrAlreadyInLobby = errors.New("player is already in a lobby")
	ErrAlreadyInTeam  = errors.New("player is already in a team")
	ErrNotMember      = errors.New("player is not a member")
	ErrOneTeamLocked  = errors.New("side is formed by a single team")
	ErrUnknownEntity  = errors.New("no such entity")
)

// ErrProfileNotFound signals that the backing profile for a player could
// not be located. Player bootstrap fails with it; Player.Update treats it
// as an integrity violation and fires the corrupt recovery path.
var ErrProfileNotFound = errors.New("profile not found")
