package match

import (
	"sort"
	"time"
)

// Table is the flattened match table: rows ordered by team label then
// ascending date, and the union of every row's columns.
type Table struct {
	Columns []string
	Rows    []Flattened
}

// NewTable orders rows by team and date and collects their columns in order
// of first appearance. Rows without a parsed date sort after dated rows of
// the same team; ties keep their input order.
func NewTable(rows []Flattened) *Table {
	t := &Table{
		Columns: unionColumns(rows),
		Rows:    append([]Flattened(nil), rows...),
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		ta, okA := a.Date.Time()
		tb, okB := b.Date.Time()
		switch {
		case okA && okB:
			return ta.Before(tb)
		default:
			return okA && !okB
		}
	})
	return t
}

func unionColumns(rows []Flattened) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for _, c := range r.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	if cols == nil {
		cols = append(cols, BaseColumns...)
	}
	return cols
}

// Teams returns the distinct team labels in table order.
func (t *Table) Teams() []string {
	var teams []string
	for i, r := range t.Rows {
		if i == 0 || r.Team != t.Rows[i-1].Team {
			teams = append(teams, r.Team)
		}
	}
	return teams
}

// ForTeam returns the rows of one team, in table order.
func (t *Table) ForTeam(team string) []Flattened {
	var rows []Flattened
	for _, r := range t.Rows {
		if r.Team == team {
			rows = append(rows, r)
		}
	}
	return rows
}

// Values lays a row out along the table's columns.
func (t *Table) Values(r Flattened) []Value {
	out := make([]Value, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = r.Field(c)
	}
	return out
}

// Grid lays out rows along the table's columns.
func (t *Table) Grid(rows []Flattened) [][]Value {
	grid := make([][]Value, len(rows))
	for i, r := range rows {
		grid[i] = t.Values(r)
	}
	return grid
}

// Span returns the earliest and latest parsed match dates.
func (t *Table) Span() (first, last time.Time, ok bool) {
	for _, r := range t.Rows {
		d, has := r.Date.Time()
		if !has {
			continue
		}
		if !ok || d.Before(first) {
			first = d
		}
		if !ok || d.After(last) {
			last = d
		}
		ok = true
	}
	return first, last, ok
}
