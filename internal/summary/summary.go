// Package summary reduces the flattened match table into one ranked season
// summary per team.
package summary

import (
	"math"
	"sort"
	"strings"

	"github.com/albapepper/scoracle-sheets/internal/match"
)

// AvgPrefix prefixes the column name of an averaged statistic.
const AvgPrefix = "avg_"

// Base column names, in output order.
const (
	ColTeam           = "team"
	ColMatches        = "matches"
	ColWins           = "wins"
	ColDraws          = "draws"
	ColLosses         = "losses"
	ColGoalsFor       = "goals_for"
	ColGoalsAgainst   = "goals_against"
	ColGoalDifference = "goal_difference"
	ColPoints         = "points"
)

var BaseColumns = []string{
	ColTeam, ColMatches, ColWins, ColDraws, ColLosses,
	ColGoalsFor, ColGoalsAgainst, ColGoalDifference, ColPoints,
}

// Team is the season summary of one team.
type Team struct {
	Team           string
	Matches        int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int

	// GoalsValid is false when a goal value of the team failed integer
	// coercion and the goal totals fell back to zero.
	GoalsValid bool

	// Averages maps avg_<column> to the mean of a numeric _team column,
	// rounded to two decimals.
	Averages map[string]float64
}

// Points scores a record 3-1-0.
func Points(wins, draws int) int {
	return 3*wins + draws
}

// Table is the ranked summary table.
type Table struct {
	Columns []string
	Rows    []Team
}

// Aggregate builds one summary per team of t. Rows are ranked by points,
// then goal difference, then goals scored, then team label.
func Aggregate(t *match.Table) *Table {
	avgCols := averageColumns(t.Columns)

	groups := make(map[string][]match.Flattened)
	var order []string
	for _, r := range t.Rows {
		if _, ok := groups[r.Team]; !ok {
			order = append(order, r.Team)
		}
		groups[r.Team] = append(groups[r.Team], r)
	}

	rows := make([]Team, 0, len(order))
	for _, team := range order {
		rows = append(rows, reduce(team, groups[team], avgCols))
	}
	Rank(rows)

	cols := append([]string(nil), BaseColumns...)
	for _, c := range avgCols {
		for _, r := range rows {
			if _, ok := r.Averages[AvgPrefix+c]; ok {
				cols = append(cols, AvgPrefix+c)
				break
			}
		}
	}
	return &Table{Columns: cols, Rows: rows}
}

// averageColumns picks the per-team statistic columns eligible for
// averaging.
func averageColumns(columns []string) []string {
	var out []string
	for _, c := range columns {
		if c == match.ColGoalsFor || c == match.ColGoalsAgainst {
			continue
		}
		if strings.HasSuffix(c, match.TeamSuffix) {
			out = append(out, c)
		}
	}
	return out
}

func reduce(team string, rows []match.Flattened, avgCols []string) Team {
	s := Team{Team: team, Matches: len(rows), GoalsValid: true}

	for _, r := range rows {
		switch r.Result {
		case match.Win:
			s.Wins++
		case match.Draw:
			s.Draws++
		case match.Loss:
			s.Losses++
		}
		gf, okF := r.GoalsFor.Int()
		ga, okA := r.GoalsAgainst.Int()
		if !okF || !okA {
			s.GoalsValid = false
		}
		s.GoalsFor += gf
		s.GoalsAgainst += ga
	}
	if !s.GoalsValid {
		s.GoalsFor, s.GoalsAgainst = 0, 0
	}
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	s.Points = Points(s.Wins, s.Draws)

	for _, c := range avgCols {
		if mean, ok := average(rows, c); ok {
			if s.Averages == nil {
				s.Averages = make(map[string]float64)
			}
			s.Averages[AvgPrefix+c] = round2(mean)
		}
	}
	return s
}

// average is the mean of a column over rows. A column counts only when every
// present value is a number and at least one is present.
func average(rows []match.Flattened, column string) (float64, bool) {
	var sum float64
	var n int
	for _, r := range rows {
		v := r.Field(column)
		if v.IsMissing() {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return 0, false
		}
		sum += f
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Rank sorts summaries best first.
func Rank(rows []Team) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})
}

// Field returns the value of a summary column. Averages a team has no
// numeric data for are Missing.
func (s Team) Field(column string) match.Value {
	switch column {
	case ColTeam:
		return match.StringValue(s.Team)
	case ColMatches:
		return num(s.Matches)
	case ColWins:
		return num(s.Wins)
	case ColDraws:
		return num(s.Draws)
	case ColLosses:
		return num(s.Losses)
	case ColGoalsFor:
		return num(s.GoalsFor)
	case ColGoalsAgainst:
		return num(s.GoalsAgainst)
	case ColGoalDifference:
		return num(s.GoalDifference)
	case ColPoints:
		return num(s.Points)
	}
	if avg, ok := s.Averages[column]; ok {
		return match.NumberValue(avg)
	}
	return match.Value{}
}

func num(n int) match.Value { return match.NumberValue(float64(n)) }

// Grid lays the summary rows out along the table's columns.
func (t *Table) Grid() [][]match.Value {
	grid := make([][]match.Value, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]match.Value, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = r.Field(c)
		}
		grid[i] = row
	}
	return grid
}

// Lookup returns the summary of one team.
func (t *Table) Lookup(team string) (Team, bool) {
	for _, r := range t.Rows {
		if r.Team == team {
			return r, true
		}
	}
	return Team{}, false
}
