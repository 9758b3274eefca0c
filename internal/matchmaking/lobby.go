// internal/matchmaking/lobby.go
package matchmaking

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/rating"
)

// LobbyType is the lobby's match regime.
type LobbyType string

const (
	Training LobbyType = "training"
	Arcade   LobbyType = "arcade"
	Rating   LobbyType = "rating"
)

// LobbyState enumerates the match lifecycle. States are strictly ordered
// except the two regressions: filled may fall back to searching, and
// deleted is a terminal side-state reachable from anywhere.
type LobbyState int

const (
	LobbySearching LobbyState = iota
	LobbyFilled
	LobbyVoting
	LobbyPreparing
	LobbyStarted
	LobbyDeleted
)

// String implements fmt.Stringer for logging.
func (s LobbyState) String() string {
	switch s {
	case LobbySearching:
		return "searching"
	case LobbyFilled:
		return "filled"
	case LobbyVoting:
		return "voting"
	case LobbyPreparing:
		return "preparing"
	case LobbyStarted:
		return "started"
	case LobbyDeleted:
		return "deleted"
	}
	return "unknown"
}

// Lobby orchestrates four commands through the match lifecycle. All of its
// mutations are serialized behind one mutex so join/leave/vote/updateState
// never interleave destructively.
type Lobby struct {
	mu sync.Mutex

	id     string
	ltype  LobbyType
	region string
	state  LobbyState

	maps        []string
	selectedMap string
	turn        CommandType

	// timestamps records when each state was entered. Time-based
	// transitions are re-derived from these on every tick, so clearing an
	// entry on regression implicitly invalidates the stale timer.
	timestamps map[LobbyState]time.Time
	lastVote   time.Time

	owner      string
	gameID     string
	voiceGuild string

	commands map[CommandType]*Command
	chat     ChatRoom

	// joinedOnce guards the delete-on-empty rule so a freshly spawned
	// lobby is not swept before its first member arrives.
	joinedOnce bool

	counters *Counters
	mgr      *LobbyManager
	log      *logrus.Logger
}

// ID returns the lobby id.
func (l *Lobby) ID() string { return l.id }

// Type returns the match regime.
func (l *Lobby) Type() LobbyType { return l.ltype }

// Region returns the lobby's region.
func (l *Lobby) Region() string { return l.region }

// State returns the current lifecycle state.
func (l *Lobby) State() LobbyState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Command returns one of the four slots.
func (l *Lobby) Command(t CommandType) *Command {
	return l.commands[t]
}

// Commands returns the four slots keyed by type.
func (l *Lobby) Commands() map[CommandType]*Command {
	out := make(map[CommandType]*Command, len(l.commands))
	for t, c := range l.commands {
		out[t] = c
	}
	return out
}

// Players returns the names committed to the two opposing sides.
func (l *Lobby) Players() []string {
	var out []string
	for _, t := range teamCommands {
		out = append(out, l.commands[t].Members()...)
	}
	return out
}

// Members returns every name in the lobby including neutrals and
// spectators.
func (l *Lobby) Members() []string {
	var out []string
	for _, c := range l.commands {
		out = append(out, c.Members()...)
	}
	return out
}

// Maps returns the remaining vote candidates.
func (l *Lobby) Maps() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.maps))
	copy(out, l.maps)
	return out
}

// Map returns the selected map, empty until voting concludes.
func (l *Lobby) Map() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectedMap
}

// VotingCaptain returns the captain whose turn it is to vote.
func (l *Lobby) VotingCaptain() string {
	l.mu.Lock()
	turn := l.turn
	l.mu.Unlock()
	if turn == "" {
		return ""
	}
	return l.commands[turn].Captain()
}

// Owner returns the captain owning the external game session.
func (l *Lobby) Owner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

// GameID returns the external session id, empty before preparing.
func (l *Lobby) GameID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gameID
}

// GRI returns the median rating across both sides.
func (l *Lobby) GRI() float64 {
	var ratings []float64
	for _, name := range l.Players() {
		if p, ok := l.mgr.m.Players.Get(name); ok {
			ratings = append(ratings, p.GRI())
		}
	}
	return rating.Median(ratings)
}

// fullSize is the committed-player total that fills the lobby.
func (l *Lobby) fullSize() int {
	return 2 * l.commands[CommandOne].Capacity()
}

// sideSizeLocked is the current committed-player total across both sides.
func (l *Lobby) sideSizeLocked() int {
	return l.commands[CommandOne].Size() + l.commands[CommandTwo].Size()
}

// HasSpace reports whether count players fit into the sides together.
func (l *Lobby) HasSpace(count int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sideSizeLocked()+count <= l.fullSize()
}

// CanAddTeam reports whether the whole team fits into a single side.
func (l *Lobby) CanAddTeam(teamID string) bool {
	t, ok := l.mgr.m.Teams.Get(teamID)
	if !ok {
		return false
	}
	size := t.Size()
	for _, ct := range teamCommands {
		c := l.commands[ct]
		if !c.IsOneTeam() && c.MaxTeamSizeToJoin() >= size {
			return true
		}
	}
	return false
}

// Join admits a player or, when the player captains a pre-formed team, the
// whole team atomically. Only valid while the lobby is still searching.
func (l *Lobby) Join(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != LobbySearching {
		return fmt.Errorf("lobby %s is %s: %w", l.id, l.state, ErrWrongState)
	}
	p, ok := l.mgr.m.Players.Get(name)
	if !ok {
		return fmt.Errorf("join: %w", ErrUnknownEntity)
	}
	if p.LobbyID() != "" {
		return ErrAlreadyInLobby
	}
	if st := p.State(); st > PlayerSearching || st < PlayerOnline {
		return fmt.Errorf("player is %s: %w", st, ErrWrongState)
	}

	if teamID := p.TeamID(); teamID != "" {
		team, ok := l.mgr.m.Teams.Get(teamID)
		if !ok {
			// Dangling team reference, recover the player.
			l.log.WithFields(logrus.Fields{"player": name, "team": teamID}).
				Error("player references missing team")
			go p.Event(SignalCorrupt, nil)
			return fmt.Errorf("join: %w", ErrUnknownEntity)
		}
		if team.Captain() != name {
			return ErrNotCaptain
		}
		return l.joinWithTeamLocked(team)
	}

	if err := l.joinSoloLocked(p, l.pickSideLocked(1)); err != nil {
		return err
	}
	l.updateStateLocked()
	return nil
}

// joinWithTeamLocked admits every team member into one side. Capacity and
// membership constraints are re-validated before anyone is admitted so a
// failing member never leaves the team half-committed.
func (l *Lobby) joinWithTeamLocked(team *Team) error {
	size := team.Size()
	var side *Command
	for _, ct := range teamCommands {
		c := l.commands[ct]
		if !c.IsOneTeam() && c.MaxTeamSizeToJoin() >= size {
			side = c
			break
		}
	}
	if side == nil {
		return ErrNoSpace
	}

	for _, member := range team.Check() {
		p, ok := l.mgr.m.Players.Get(member)
		if !ok {
			l.log.WithFields(logrus.Fields{"team": team.ID(), "player": member}).
				Error("team member missing from registry")
			continue
		}
		if p.LobbyID() != "" {
			return ErrAlreadyInLobby
		}
		if st := p.State(); st > PlayerSearching || st < PlayerOnline {
			return fmt.Errorf("team member %s is %s: %w", member, st, ErrWrongState)
		}
	}

	for _, member := range team.Check() {
		p, ok := l.mgr.m.Players.Get(member)
		if !ok {
			continue
		}
		if err := l.joinSoloLocked(p, side); err != nil {
			return err
		}
	}
	l.updateStateLocked()
	return nil
}

// pickSideLocked chooses the team command with the most free space.
func (l *Lobby) pickSideLocked(count int) *Command {
	var best *Command
	for _, ct := range teamCommands {
		c := l.commands[ct]
		if !c.HasSpace(count) {
			continue
		}
		if best == nil || c.Size() < best.Size() {
			best = c
		}
	}
	return best
}

// joinSoloLocked commits one player into the given side.
func (l *Lobby) joinSoloLocked(p *Player, side *Command) error {
	if side == nil {
		return ErrNoSpace
	}
	if err := side.Join(p.Name()); err != nil {
		return err
	}
	p.setLobbyID(l.id)
	l.joinedOnce = true

	chatID := ""
	if l.chat != nil {
		chatID = l.chat.ID()
		if err := l.chat.Join(p.Name()); err != nil {
			l.log.WithField("lobby", l.id).WithError(err).Warn("lobby chat join failed")
		}
	}
	l.counters.AddSearching(1)
	if err := p.Event(SignalJoinLobby, &SignalData{LobbyID: l.id, ChatID: chatID}); err != nil {
		l.log.WithFields(logrus.Fields{"lobby": l.id, "player": p.Name()}).
			WithError(err).Error("join_lobby signal rejected")
	}
	return nil
}

// Leave removes a player, cascading the whole team out when its captain
// leaves. Only valid at or before filled.
func (l *Lobby) Leave(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state > LobbyFilled {
		return fmt.Errorf("lobby %s is %s: %w", l.id, l.state, ErrWrongState)
	}
	p, ok := l.mgr.m.Players.Get(name)
	if !ok {
		return fmt.Errorf("leave: %w", ErrUnknownEntity)
	}

	if teamID := p.TeamID(); teamID != "" {
		if team, ok := l.mgr.m.Teams.Get(teamID); ok && team.Captain() == name {
			for _, member := range team.Check() {
				if mp, ok := l.mgr.m.Players.Get(member); ok {
					l.leaveSoloLocked(mp)
				}
			}
			l.updateStateLocked()
			return nil
		}
	}

	if err := l.leaveSoloLocked(p); err != nil {
		return err
	}
	l.updateStateLocked()
	return nil
}

// leaveSoloLocked removes one player from its command, keeps the counters
// in step and clears the filled timestamp so a stale ready-timeout cannot
// fire against the changed roster.
func (l *Lobby) leaveSoloLocked(p *Player) error {
	var cmd *Command
	for _, c := range l.commands {
		if c.Has(p.Name()) {
			cmd = c
			break
		}
	}
	if cmd == nil {
		return ErrNotMember
	}
	if err := cmd.Leave(p.Name()); err != nil {
		return err
	}
	if l.chat != nil {
		if err := l.chat.Leave(p.Name()); err != nil {
			l.log.WithField("lobby", l.id).WithError(err).Warn("lobby chat leave failed")
		}
	}
	l.counters.RemoveSearching(1)
	delete(l.timestamps, LobbyFilled)
	p.setLobbyID("")
	if err := p.Event(SignalLeaveLobby, nil); err != nil {
		// Player may be in a non-leavable state (e.g. kicked while idle);
		// detach its references regardless.
		p.clearReady()
	}
	return nil
}

// Move relocates a player between the two sides. Blocked once either side
// is fully formed by a single team.
func (l *Lobby) Move(name string, dst CommandType) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state > LobbyFilled {
		return fmt.Errorf("lobby %s is %s: %w", l.id, l.state, ErrWrongState)
	}
	// Moves relocate between the two sides only; neutral and spectator
	// slots are not a move destination.
	if dst != CommandOne && dst != CommandTwo {
		return fmt.Errorf("no side %q: %w", dst, ErrUnknownEntity)
	}
	target := l.commands[dst]
	var src *Command
	for _, c := range l.commands {
		if c.Has(name) {
			src = c
			break
		}
	}
	if src == nil {
		return ErrNotMember
	}
	if src == target {
		return nil
	}
	if src.IsOneTeam() || target.IsOneTeam() {
		return ErrOneTeamLocked
	}
	if !target.HasSpace(1) {
		return ErrNoSpace
	}
	if err := src.Leave(name); err != nil {
		return err
	}
	if err := target.Join(name); err != nil {
		return err
	}
	l.updateStateLocked()
	return nil
}

// BecomeReady flags a member ready and re-evaluates the state machine.
func (l *Lobby) BecomeReady(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.mgr.m.Players.Get(name)
	if !ok || p.LobbyID() != l.id {
		return ErrNotMember
	}
	if p.IsReady() {
		return nil
	}
	if err := p.Event(SignalBeReady, nil); err != nil {
		return err
	}
	l.updateStateLocked()
	return nil
}

// BecomeUnready clears a member's readiness flag.
func (l *Lobby) BecomeUnready(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.mgr.m.Players.Get(name)
	if !ok || p.LobbyID() != l.id {
		return ErrNotMember
	}
	return p.Event(SignalBeUnready, nil)
}

// Vote casts the acting captain's map ban. Only the captain whose turn it
// is may vote; the voted map leaves the candidate set and the turn flips.
func (l *Lobby) Vote(name, mapName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != LobbyVoting {
		return fmt.Errorf("lobby %s is %s: %w", l.id, l.state, ErrWrongState)
	}
	if l.commands[l.turn].Captain() != name {
		return ErrNotYourTurn
	}
	return l.castVoteLocked(mapName)
}

// castVoteLocked removes mapName from the candidates, flips the turn and
// decides the map once one candidate remains.
func (l *Lobby) castVoteLocked(mapName string) error {
	idx := -1
	for i, m := range l.maps {
		if m == mapName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrMapUnavailable
	}
	l.maps = append(l.maps[:idx], l.maps[idx+1:]...)
	l.lastVote = time.Now()
	if l.turn == CommandOne {
		l.turn = CommandTwo
	} else {
		l.turn = CommandOne
	}
	l.notifyAllLocked("map_voted", map[string]interface{}{
		"map":       mapName,
		"remaining": append([]string(nil), l.maps...),
		"turn":      l.commands[l.turn].Captain(),
	})

	if len(l.maps) == 1 {
		l.decideMapLocked()
	}
	return nil
}

// decideMapLocked fixes the last remaining candidate as the match map and
// advances to preparing.
func (l *Lobby) decideMapLocked() {
	l.selectedMap = l.maps[0]
	l.toPreparingLocked()
}

// Start begins the match. Fails when the lobby has not reached preparing
// or no map is selected; on success every player receives the play signal.
func (l *Lobby) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != LobbyPreparing || l.selectedMap == "" {
		return false
	}
	l.state = LobbyStarted
	l.timestamps[LobbyStarted] = time.Now()

	for _, name := range l.Players() {
		if p, ok := l.mgr.m.Players.Get(name); ok {
			if err := p.Event(SignalPlay, nil); err != nil {
				l.log.WithFields(logrus.Fields{"lobby": l.id, "player": name}).
					WithError(err).Error("play signal rejected")
			}
		}
	}
	l.notifyAllLocked("match_started", map[string]interface{}{
		"game_id": l.gameID,
		"map":     l.selectedMap,
		"owner":   l.owner,
	})

	if cb := l.mgr.m.OnMatchStart; cb != nil {
		record := MatchRecord{
			LobbyID:   l.id,
			GameID:    l.gameID,
			Type:      l.ltype,
			Region:    l.region,
			Map:       l.selectedMap,
			StartedAt: l.timestamps[LobbyStarted].Unix(),
			Sides: map[string][]string{
				string(CommandOne): l.commands[CommandOne].Members(),
				string(CommandTwo): l.commands[CommandTwo].Members(),
			},
		}
		go cb(record)
	}
	return true
}

// ReadyToStart reports whether the preparing gate has elapsed with a map
// selected. The transport layer polls this before calling Start.
func (l *Lobby) ReadyToStart() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != LobbyPreparing || l.selectedMap == "" {
		return false
	}
	entered, ok := l.timestamps[LobbyPreparing]
	return ok && time.Since(entered) >= l.mgr.cfg.PreparingGate
}

// MarkToDelete tears the lobby down from any state.
func (l *Lobby) MarkToDelete() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleteLocked()
}

// ReadyToDrop reports whether the registry sweep may evict this lobby.
func (l *Lobby) ReadyToDrop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == LobbyDeleted
}

// UpdateState re-evaluates the state machine. Invoked by the scheduler
// tick as well as after every membership change, because several
// transitions are purely time-based.
func (l *Lobby) UpdateState() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updateStateLocked()
}

func (l *Lobby) updateStateLocked() {
	if l.state == LobbyDeleted {
		return
	}
	if l.joinedOnce && len(l.Members()) == 0 {
		l.deleteLocked()
		return
	}

	switch l.state {
	case LobbySearching:
		if l.sideSizeLocked() >= l.fullSize() {
			l.toFilledLocked()
		}

	case LobbyFilled:
		if l.sideSizeLocked() < l.fullSize() {
			l.backToSearchingLocked(false)
			return
		}
		if l.commands[CommandOne].IsReady() && l.commands[CommandTwo].IsReady() {
			l.toVotingLocked()
			return
		}
		entered, ok := l.timestamps[LobbyFilled]
		if ok && time.Since(entered) >= l.mgr.cfg.ReadyGrace {
			l.kickUnreadyLocked()
		}

	case LobbyVoting:
		if time.Since(l.lastVote) >= l.mgr.cfg.VoteTurn {
			l.autoVoteLocked()
		}
	}
}

// toFilledLocked announces that both sides are at capacity.
func (l *Lobby) toFilledLocked() {
	l.state = LobbyFilled
	l.timestamps[LobbyFilled] = time.Now()
	l.notifyAllLocked("lobby_filled", map[string]interface{}{
		"ready_grace_sec": int(l.mgr.cfg.ReadyGrace.Seconds()),
	})
}

// backToSearchingLocked regresses a no-longer-full lobby. When resignal is
// set (explicit downgrade after ready-timeout kicks) the remaining players
// receive the join_lobby signal again.
func (l *Lobby) backToSearchingLocked(resignal bool) {
	l.state = LobbySearching
	delete(l.timestamps, LobbyFilled)

	chatID := ""
	if l.chat != nil {
		chatID = l.chat.ID()
	}
	for _, name := range l.Players() {
		p, ok := l.mgr.m.Players.Get(name)
		if !ok {
			continue
		}
		p.clearReady()
		if resignal {
			if err := p.Event(SignalJoinLobby, &SignalData{LobbyID: l.id, ChatID: chatID}); err != nil {
				l.log.WithFields(logrus.Fields{"lobby": l.id, "player": name}).
					WithError(err).Error("rejoin signal rejected")
			}
		}
	}
}

// kickUnreadyLocked evicts every side member whose ready flag is still
// unset once the grace period expires, then explicitly downgrades back to
// searching if anyone was removed.
func (l *Lobby) kickUnreadyLocked() {
	kicked := 0
	for _, name := range l.Players() {
		p, ok := l.mgr.m.Players.Get(name)
		if !ok {
			continue
		}
		if !p.IsReady() {
			if err := l.leaveSoloLocked(p); err == nil {
				kicked++
				p.Notify("removed from lobby: ready check expired")
			}
		}
	}
	if kicked > 0 {
		l.log.WithFields(logrus.Fields{"lobby": l.id, "kicked": kicked}).
			Info("ready grace expired")
		l.backToSearchingLocked(true)
	}
}

// toVotingLocked starts the map vote: membership moves from the searching
// to the playing bucket and command1's captain votes first.
func (l *Lobby) toVotingLocked() {
	l.state = LobbyVoting
	l.timestamps[LobbyVoting] = time.Now()
	l.lastVote = l.timestamps[LobbyVoting]
	l.turn = CommandOne
	l.maps = append([]string(nil), l.mgr.cfg.Maps...)
	l.counters.MoveToPlaying(l.sideSizeLocked())

	for _, name := range l.Players() {
		if p, ok := l.mgr.m.Players.Get(name); ok {
			if err := p.Event(SignalVote, nil); err != nil {
				l.log.WithFields(logrus.Fields{"lobby": l.id, "player": name}).
					WithError(err).Error("vote signal rejected")
			}
		}
	}
	l.notifyAllLocked("voting_started", map[string]interface{}{
		"maps": append([]string(nil), l.maps...),
		"turn": l.commands[l.turn].Captain(),
	})
}

// autoVoteLocked casts a pseudo-random ban on behalf of the stalled
// captain so voting can never deadlock.
func (l *Lobby) autoVoteLocked() {
	if len(l.maps) <= 1 {
		return
	}
	pick := l.maps[rand.Intn(len(l.maps))]
	l.log.WithFields(logrus.Fields{
		"lobby":   l.id,
		"captain": l.commands[l.turn].Captain(),
		"map":     pick,
	}).Info("vote turn expired, auto-voting")
	if err := l.castVoteLocked(pick); err != nil {
		l.log.WithField("lobby", l.id).WithError(err).Error("auto-vote failed")
	}
}

// toPreparingLocked picks a random owning captain, allocates the external
// session id and kicks off best-effort voice-channel orchestration.
func (l *Lobby) toPreparingLocked() {
	l.state = LobbyPreparing
	l.timestamps[LobbyPreparing] = time.Now()

	captains := []string{
		l.commands[CommandOne].Captain(),
		l.commands[CommandTwo].Captain(),
	}
	l.owner = captains[rand.Intn(len(captains))]
	l.gameID = newGameID()

	for _, name := range l.Players() {
		if p, ok := l.mgr.m.Players.Get(name); ok {
			if err := p.Event(SignalPrepare, nil); err != nil {
				l.log.WithFields(logrus.Fields{"lobby": l.id, "player": name}).
					WithError(err).Error("prepare signal rejected")
			}
		}
	}
	l.notifyAllLocked("match_preparing", map[string]interface{}{
		"map":     l.selectedMap,
		"owner":   l.owner,
		"game_id": l.gameID,
	})

	go l.setupVoice(l.gameID, l.Players())
}

// setupVoice requests voice channels for the match and connects every
// player. Failures are logged and never block the state machine.
func (l *Lobby) setupVoice(gameID string, members []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	voice := l.mgr.m.Voice
	guild, err := voice.GuildWithFreeChannels(ctx)
	if err != nil {
		l.log.WithField("lobby", l.id).WithError(err).Warn("no guild with free voice channels")
		return
	}
	if err := voice.CreateChannelsForMatch(ctx, guild, gameID); err != nil {
		l.log.WithField("lobby", l.id).WithError(err).Warn("voice channel creation failed")
		return
	}
	l.mu.Lock()
	l.voiceGuild = guild
	l.mu.Unlock()

	for _, name := range members {
		if err := voice.JoinLobby(ctx, guild, gameID, name); err != nil {
			l.log.WithFields(logrus.Fields{"lobby": l.id, "player": name}).
				WithError(err).Warn("voice join failed")
		}
	}
}

// deleteLocked tears the lobby down: members are evicted with cascading
// back-reference cleanup, the four commands and the chat are destroyed and
// the external voice session is removed best-effort.
func (l *Lobby) deleteLocked() {
	if l.state == LobbyDeleted {
		return
	}
	inPlay := l.state >= LobbyVoting
	sides := l.sideSizeLocked()

	for _, c := range l.commands {
		for _, name := range c.Members() {
			if err := c.Leave(name); err != nil {
				continue
			}
			if l.chat != nil {
				l.chat.Leave(name)
			}
			if p, ok := l.mgr.m.Players.Get(name); ok {
				p.setLobbyID("")
				if err := p.Event(SignalLeaveLobby, nil); err != nil {
					p.forceDetach()
				}
			}
		}
	}
	if inPlay {
		l.counters.RemovePlaying(sides)
	} else {
		l.counters.RemoveSearching(sides)
	}

	for _, c := range l.commands {
		l.mgr.m.Commands.Drop(c.ID())
	}
	if l.chat != nil {
		if err := l.chat.Delete(); err != nil {
			l.log.WithField("lobby", l.id).WithError(err).Warn("lobby chat delete failed")
		}
		l.chat = nil
	}
	if l.gameID != "" && l.voiceGuild != "" {
		guild, gameID := l.voiceGuild, l.gameID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := l.mgr.m.Voice.RemoveLobby(ctx, guild, gameID); err != nil {
				l.log.WithField("lobby", l.id).WithError(err).Warn("voice teardown failed")
			}
		}()
	}

	l.counters.LobbyDeleted(l.ltype)
	l.state = LobbyDeleted
	l.log.WithField("lobby", l.id).Info("lobby deleted")
}

// notifyAllLocked fans an event out to every member.
func (l *Lobby) notifyAllLocked(event string, payload map[string]interface{}) {
	for _, name := range l.Members() {
		l.mgr.m.Notify.Send(name, event, payload)
	}
}
