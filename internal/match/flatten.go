package match

import (
	"slices"
	"strings"
	"time"
)

// Result is the outcome of a match from the attached team's perspective.
type Result string

const (
	Win     Result = "Win"
	Loss    Result = "Loss"
	Draw    Result = "Draw"
	Unknown Result = "Unknown"
)

// Suffixes of the two columns derived from every statistic.
const (
	TeamSuffix     = "_team"
	OpponentSuffix = "_opponent"
)

// Base column names, in output order.
const (
	ColTeam         = "team"
	ColMatchID      = "match_id"
	ColTournament   = "tournament"
	ColDate         = "date"
	ColHomeTeam     = "home_team"
	ColAwayTeam     = "away_team"
	ColHomeScore    = "home_score"
	ColAwayScore    = "away_score"
	ColIsHome       = "is_home"
	ColOpponent     = "opponent"
	ColGoalsFor     = "goals_for"
	ColGoalsAgainst = "goals_against"
	ColResult       = "result"
)

// BaseColumns lists the columns every flattened row has.
var BaseColumns = []string{
	ColTeam, ColMatchID, ColTournament, ColDate,
	ColHomeTeam, ColAwayTeam, ColHomeScore, ColAwayScore,
	ColIsHome, ColOpponent, ColGoalsFor, ColGoalsAgainst, ColResult,
}

// RenamedStatPrefix is prepended to a statistic name whose derived columns
// would shadow a base column ("home" would yield home_team).
const RenamedStatPrefix = "stat_"

var baseColumnSet = func() map[string]bool {
	m := make(map[string]bool, len(BaseColumns))
	for _, c := range BaseColumns {
		m[c] = true
	}
	return m
}()

// StatKey maps a raw statistic name to the key its two columns are derived
// from. The second result reports whether the name had to be renamed.
func StatKey(name string) (string, bool) {
	key := NormalizeStatName(name)
	if baseColumnSet[key+TeamSuffix] || baseColumnSet[key+OpponentSuffix] {
		return RenamedStatPrefix + key, true
	}
	return key, false
}

// Stat holds one statistic seen from the attached team's side.
type Stat struct {
	Team     Value
	Opponent Value
}

// Stats maps normalized statistic names to values, remembering the order in
// which names were first set. Setting an existing name replaces its value
// but keeps its position.
type Stats struct {
	names  []string
	values map[string]Stat
}

func (s *Stats) Set(name string, st Stat) {
	if s.values == nil {
		s.values = make(map[string]Stat)
	}
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = st
}

func (s Stats) Get(name string) (Stat, bool) {
	st, ok := s.values[name]
	return st, ok
}

// Names returns the normalized names in first-set order.
func (s Stats) Names() []string {
	return append([]string(nil), s.names...)
}

func (s Stats) Len() int { return len(s.names) }

// Flattened is one match seen from the perspective of the team whose
// document it came from.
type Flattened struct {
	Team         string
	MatchID      Value
	Tournament   Value
	Date         Value
	HomeTeam     Value
	AwayTeam     Value
	HomeScore    Value
	AwayScore    Value
	IsHome       bool
	Opponent     Value
	GoalsFor     Value
	GoalsAgainst Value
	Result       Result
	Stats        Stats

	// Renamed lists the keys of statistics moved under RenamedStatPrefix
	// because they clashed with a base column.
	Renamed []string
}

// NormalizeStatName lowercases a statistic name and replaces spaces with
// underscores.
func NormalizeStatName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// Flatten derives the perspective-oriented row for r. It never fails: values
// that cannot be coerced leave the result Unknown and are copied verbatim.
func Flatten(r Raw) Flattened {
	home, _ := r.HomeTeam.Str()
	isHome := r.HomeTeam.Kind() == String && home == r.Team

	f := Flattened{
		Team:       r.Team,
		MatchID:    r.ID,
		Tournament: r.Tournament,
		Date:       parseDay(r.Day),
		HomeTeam:   r.HomeTeam,
		AwayTeam:   r.AwayTeam,
		HomeScore:  r.HomeScore,
		AwayScore:  r.AwayScore,
		IsHome:     isHome,
	}
	if isHome {
		f.Opponent, f.GoalsFor, f.GoalsAgainst = r.AwayTeam, r.HomeScore, r.AwayScore
	} else {
		f.Opponent, f.GoalsFor, f.GoalsAgainst = r.HomeTeam, r.AwayScore, r.HomeScore
	}
	f.Result = outcome(f.GoalsFor, f.GoalsAgainst)

	for _, st := range r.Statistics {
		name, renamed := StatKey(st.Name.Text())
		if renamed && !slices.Contains(f.Renamed, name) {
			f.Renamed = append(f.Renamed, name)
		}
		if isHome {
			f.Stats.Set(name, Stat{Team: st.Home, Opponent: st.Away})
		} else {
			f.Stats.Set(name, Stat{Team: st.Away, Opponent: st.Home})
		}
	}
	return f
}

func outcome(goalsFor, goalsAgainst Value) Result {
	gf, ok := goalsFor.Int()
	if !ok {
		return Unknown
	}
	ga, ok := goalsAgainst.Int()
	if !ok {
		return Unknown
	}
	switch {
	case gf > ga:
		return Win
	case gf < ga:
		return Loss
	default:
		return Draw
	}
}

// Unmatched reports whether the team label equals neither side's name. Such
// rows are oriented as away matches, which is usually wrong.
func (f Flattened) Unmatched() bool {
	if f.IsHome {
		return false
	}
	away, ok := f.AwayTeam.Str()
	return !ok || away != f.Team
}

// Columns returns the row's own column names: the base columns followed by
// the two derived columns of every statistic.
func (f Flattened) Columns() []string {
	cols := make([]string, 0, len(BaseColumns)+2*f.Stats.Len())
	cols = append(cols, BaseColumns...)
	for _, name := range f.Stats.names {
		cols = append(cols, name+TeamSuffix, name+OpponentSuffix)
	}
	return cols
}

// Field returns the value of a column. Unknown columns are Missing.
func (f Flattened) Field(column string) Value {
	switch column {
	case ColTeam:
		return StringValue(f.Team)
	case ColMatchID:
		return f.MatchID
	case ColTournament:
		return f.Tournament
	case ColDate:
		return f.Date
	case ColHomeTeam:
		return f.HomeTeam
	case ColAwayTeam:
		return f.AwayTeam
	case ColHomeScore:
		return f.HomeScore
	case ColAwayScore:
		return f.AwayScore
	case ColIsHome:
		return BoolValue(f.IsHome)
	case ColOpponent:
		return f.Opponent
	case ColGoalsFor:
		return f.GoalsFor
	case ColGoalsAgainst:
		return f.GoalsAgainst
	case ColResult:
		return StringValue(string(f.Result))
	}
	if name, ok := strings.CutSuffix(column, OpponentSuffix); ok {
		st, _ := f.Stats.Get(name)
		return st.Opponent
	}
	if name, ok := strings.CutSuffix(column, TeamSuffix); ok {
		st, _ := f.Stats.Get(name)
		return st.Team
	}
	return Value{}
}

var dayLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// parseDay reads the match day. Numbers are Unix seconds; strings that fit
// none of the known layouts are kept as they are.
func parseDay(v Value) Value {
	switch v.Kind() {
	case Number:
		secs, _ := v.Float()
		return DateValue(time.Unix(int64(secs), 0).UTC())
	case String:
		s, _ := v.Str()
		s = strings.TrimSpace(s)
		for _, layout := range dayLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return DateValue(t)
			}
		}
	}
	return v
}
