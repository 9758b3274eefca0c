// internal/matchmaking/filters.go
package matchmaking

import "github.com/anreszii/matchup/internal/rating"

// Zone is the search-tolerance tier. It widens as the search ages so a
// long-waiting candidate eventually accepts looser matches.
type Zone int32

const (
	ZoneSmall Zone = iota
	ZoneMedium
	ZoneLarge
)

// griQuantum is the step ratings are rounded to before comparison.
// Coarsening keeps matching fast and avoids over-fitting to noisy
// per-match rating swings.
const griQuantum = 100

// RatingTolerance returns the maximum quantized GRI distance accepted in
// this zone.
func (z Zone) RatingTolerance() float64 {
	switch z {
	case ZoneSmall:
		return 100
	case ZoneMedium:
		return 300
	default:
		return 600
	}
}

// OptionalBand returns the accepted shortfall of passed optional filters
// and whether the band applies at all. The large zone accepts on required
// satisfaction alone.
func (z Zone) OptionalBand() (int, bool) {
	switch z {
	case ZoneSmall:
		return 1, true
	case ZoneMedium:
		return 3, true
	default:
		return 0, false
	}
}

// FilterPriority splits admission predicates into hard requirements and
// soft preferences.
type FilterPriority string

const (
	Required FilterPriority = "required"
	Optional FilterPriority = "optional"
)

// Filter is a stateless-after-construction admission predicate over a
// candidate lobby.
type Filter interface {
	Type() string
	Priority() FilterPriority
	IsValid(l *Lobby, zone Zone) bool
}

// Filters is a composed predicate set.
type Filters struct {
	items []Filter
}

// NewFilters composes the given filters.
func NewFilters(filters ...Filter) *Filters {
	return &Filters{items: filters}
}

// Add appends a filter.
func (f *Filters) Add(filter Filter) {
	f.items = append(f.items, filter)
}

// RequiredCount returns how many required filters are composed.
func (f *Filters) RequiredCount() int {
	n := 0
	for _, filter := range f.items {
		if filter.Priority() == Required {
			n++
		}
	}
	return n
}

// OptionalCount returns how many optional filters are composed.
func (f *Filters) OptionalCount() int {
	return len(f.items) - f.RequiredCount()
}

// FilterResult tallies how many filters of each priority passed for one
// candidate lobby.
type FilterResult struct {
	RequiredPassed int
	OptionalPassed int
}

// Use evaluates every filter against the candidate.
func (f *Filters) Use(l *Lobby, zone Zone) FilterResult {
	var res FilterResult
	for _, filter := range f.items {
		if !filter.IsValid(l, zone) {
			continue
		}
		if filter.Priority() == Required {
			res.RequiredPassed++
		} else {
			res.OptionalPassed++
		}
	}
	return res
}

type griFilter struct {
	gri float64
}

// NewGRIFilter matches lobbies whose median rating, quantized to the
// nearest 100, lies within the current zone's tolerance of the
// candidate's own quantized rating.
func NewGRIFilter(gri float64) Filter {
	return &griFilter{gri: gri}
}

func (f *griFilter) Type() string             { return "gri" }
func (f *griFilter) Priority() FilterPriority { return Required }

func (f *griFilter) IsValid(l *Lobby, zone Zone) bool {
	mine := rating.Round(f.gri, griQuantum)
	theirs := rating.Round(l.GRI(), griQuantum)
	return rating.InRange(mine, theirs, zone.RatingTolerance())
}

type regionFilter struct {
	region string
}

// NewRegionFilter matches lobbies hosted in the given region.
func NewRegionFilter(region string) Filter {
	return &regionFilter{region: region}
}

func (f *regionFilter) Type() string                  { return "region" }
func (f *regionFilter) Priority() FilterPriority      { return Required }
func (f *regionFilter) IsValid(l *Lobby, _ Zone) bool { return l.Region() == f.region }

type regimeFilter struct {
	ltype LobbyType
}

// NewRegimeFilter matches lobbies of the given match regime.
func NewRegimeFilter(ltype LobbyType) Filter {
	return &regimeFilter{ltype: ltype}
}

func (f *regimeFilter) Type() string                  { return "regime" }
func (f *regimeFilter) Priority() FilterPriority      { return Required }
func (f *regimeFilter) IsValid(l *Lobby, _ Zone) bool { return l.Type() == f.ltype }

type guildFilter struct {
	guild string
}

// NewGuildFilter matches lobbies whose committed side members all belong
// to the given guild. Added only for guild-exclusive searches.
func NewGuildFilter(guild string) Filter {
	return &guildFilter{guild: guild}
}

func (f *guildFilter) Type() string             { return "guild" }
func (f *guildFilter) Priority() FilterPriority { return Required }

func (f *guildFilter) IsValid(l *Lobby, _ Zone) bool {
	for _, name := range l.Players() {
		p, ok := l.mgr.m.Players.Get(name)
		if !ok || p.Guild() != f.guild {
			return false
		}
	}
	return true
}

type teamSpotFilter struct {
	size int
}

// NewTeamSpotFilter matches lobbies where a pre-formed team of the given
// size still fits into one side. Added only when searching with a team.
func NewTeamSpotFilter(size int) Filter {
	return &teamSpotFilter{size: size}
}

func (f *teamSpotFilter) Type() string             { return "team" }
func (f *teamSpotFilter) Priority() FilterPriority { return Required }

func (f *teamSpotFilter) IsValid(l *Lobby, _ Zone) bool {
	for _, ct := range teamCommands {
		c := l.Command(ct)
		if !c.IsOneTeam() && c.MaxTeamSizeToJoin() >= f.size {
			return true
		}
	}
	return false
}

// optionalFilter downgrades a filter to a soft preference.
type optionalFilter struct {
	Filter
}

// AsOptional wraps a filter so it counts against the optional band
// instead of being a hard requirement.
func AsOptional(f Filter) Filter {
	return &optionalFilter{Filter: f}
}

func (f *optionalFilter) Priority() FilterPriority { return Optional }
