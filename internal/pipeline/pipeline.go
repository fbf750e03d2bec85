// Package pipeline runs a load through flattening and aggregation and keeps
// the resulting tables together as a Report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/albapepper/scoracle-sheets/internal/loader"
	"github.com/albapepper/scoracle-sheets/internal/match"
	"github.com/albapepper/scoracle-sheets/internal/summary"
)

// Report is the outcome of one run.
type Report struct {
	Load    *loader.Result
	Matches *match.Table
	Teams   *summary.Table
	BuiltAt time.Time

	// Unmatched counts rows whose team label matched neither side's name.
	Unmatched int

	// RenamedStats holds the keys of statistics stored under
	// match.RenamedStatPrefix, sorted.
	RenamedStats []string
}

// Summary returns a human-readable summary of the report.
func (r *Report) Summary() string {
	return fmt.Sprintf("matches=%d teams=%d unmatched=%d %s",
		len(r.Matches.Rows), len(r.Teams.Rows), r.Unmatched, r.Load.Summary())
}

// Run loads records from src and builds the report. Load failures that
// leave no records abort the run.
func Run(ctx context.Context, src loader.Source, workers int, logger *slog.Logger) (*Report, error) {
	start := time.Now()
	loaded, err := src.Load(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	logger.Info("Found matches", "count", len(loaded.Records))

	rows := FlattenAll(loaded.Records, workers)
	report := Build(rows, logger)
	report.Load = loaded

	logger.Info("Report built",
		"duration", time.Since(start).Round(time.Millisecond),
		"summary", report.Summary())
	return report, nil
}

// Build tables the flattened rows and aggregates them. Orientation and goal
// coercion problems are logged, not fatal.
func Build(rows []match.Flattened, logger *slog.Logger) *Report {
	report := &Report{Load: &loader.Result{}, BuiltAt: time.Now()}

	unmatched := make(map[string]int)
	renamed := make(map[string]int)
	for _, r := range rows {
		if r.Unmatched() {
			report.Unmatched++
			unmatched[r.Team]++
		}
		for _, key := range r.Renamed {
			renamed[key]++
		}
	}
	for team, n := range unmatched {
		logger.Warn("Team label matches neither side; rows treated as away matches",
			"team", team, "rows", n)
	}
	for key, n := range renamed {
		report.RenamedStats = append(report.RenamedStats, key)
		logger.Warn("Statistic name clashes with a base column; columns renamed",
			"columns", key+match.TeamSuffix+", "+key+match.OpponentSuffix, "rows", n)
	}
	sort.Strings(report.RenamedStats)

	report.Matches = match.NewTable(rows)
	report.Teams = summary.Aggregate(report.Matches)

	for _, s := range report.Teams.Rows {
		if !s.GoalsValid {
			logger.Warn("Non-integer goal value; goal totals zeroed for team", "team", s.Team)
		}
	}
	if first, last, ok := report.Matches.Span(); ok {
		logger.Debug("Match dates",
			"first", first.Format(match.DateLayout), "last", last.Format(match.DateLayout))
	}
	return report
}

// FlattenAll flattens records with a fixed pool of workers. Results keep the
// order of records whatever the worker count.
func FlattenAll(records []match.Raw, workers int) []match.Flattened {
	out := make([]match.Flattened, len(records))
	if workers < 1 {
		workers = 1
	}
	if workers > len(records) {
		workers = len(records)
	}
	if workers <= 1 {
		for i, r := range records {
			out[i] = match.Flatten(r)
		}
		return out
	}

	ch := make(chan int, len(records))
	for i := range records {
		ch <- i
	}
	close(ch)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				out[i] = match.Flatten(records[i])
			}
		}()
	}
	wg.Wait()
	return out
}
