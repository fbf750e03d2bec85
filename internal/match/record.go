// Package match defines the raw match records read from team documents and
// the perspective-normalized rows derived from them.
//
// A team document is a JSON array of match objects. Every field is decoded
// into a Value so that a malformed score or statistic never rejects the
// whole document; coercion happens later, where the value is used.
package match

import (
	"encoding/json"
	"fmt"
)

// RawStatistic is one named two-sided statistic of a match.
type RawStatistic struct {
	Name Value `json:"name"`
	Home Value `json:"home"`
	Away Value `json:"away"`
}

// Raw is a match as stored in a team document. Team is attached by the
// loader and identifies whose document the match came from.
type Raw struct {
	Team       string         `json:"-"`
	ID         Value          `json:"id"`
	Tournament Value          `json:"tournament"`
	Day        Value          `json:"day"`
	HomeTeam   Value          `json:"homeTeam"`
	AwayTeam   Value          `json:"awayTeam"`
	HomeScore  Value          `json:"homeScore"`
	AwayScore  Value          `json:"awayScore"`
	Statistics []RawStatistic `json:"statistics"`
}

// DecodeDocument parses a team document and tags every match with team.
// The document must be a JSON array of objects.
func DecodeDocument(team string, data []byte) ([]Raw, error) {
	var records []Raw
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode team document: %w", err)
	}
	for i := range records {
		records[i].Team = team
	}
	return records, nil
}
