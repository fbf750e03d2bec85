package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/scoracle-sheets/internal/db"
	"github.com/albapepper/scoracle-sheets/internal/match"
)

// Querier is the part of a pgx pool the Postgres source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads team documents from the team_documents table, one
// row per team. A row whose payload does not decode is skipped like an
// unreadable file.
type PostgresSource struct {
	q Querier
}

func Postgres(q Querier) *PostgresSource {
	return &PostgresSource{q: q}
}

func (s *PostgresSource) Load(ctx context.Context, logger *slog.Logger) (*Result, error) {
	rows, err := s.q.Query(ctx, db.StmtTeamDocuments)
	if err != nil {
		return nil, fmt.Errorf("query team documents: %w", err)
	}
	defer rows.Close()

	var result Result
	for rows.Next() {
		var team, payload string
		if err := rows.Scan(&team, &payload); err != nil {
			return nil, fmt.Errorf("scan team document: %w", err)
		}
		ref := "team_documents/" + team
		records, err := match.DecodeDocument(team, []byte(payload))
		if err != nil {
			logger.Error("Skipping team document", "row", ref, "error", err)
			result.Fail(ref, err)
			continue
		}
		result.Add(records)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read team documents: %w", err)
	}

	logger.Info("Team documents loaded", "source", "postgres", "summary", result.Summary())
	if len(result.Records) == 0 {
		return &result, ErrNoData
	}
	return &result, nil
}
