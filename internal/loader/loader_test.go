package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const twoMatches = `[
	{"id": 1, "homeTeam": "Arsenal", "awayTeam": "Chelsea", "homeScore": 2, "awayScore": 1},
	{"id": 2, "homeTeam": "Spurs", "awayTeam": "Arsenal", "homeScore": 0, "awayScore": 0}
]`

func TestDirSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Arsenal.json", twoMatches)
	writeFile(t, dir, "Chelsea.json", `[{"id": 1, "homeTeam": "Arsenal", "awayTeam": "Chelsea", "homeScore": 2, "awayScore": 1}]`)
	writeFile(t, dir, "notes.txt", "not a team")

	res, err := Dir(dir).Load(context.Background(), discard)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Documents != 2 || res.Loaded != 2 || len(res.Failures) != 0 {
		t.Errorf("summary = %s", res.Summary())
	}
	if len(res.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(res.Records))
	}
	teams := map[string]int{}
	for _, r := range res.Records {
		teams[r.Team]++
	}
	if teams["Arsenal"] != 2 || teams["Chelsea"] != 1 {
		t.Errorf("team labels = %v", teams)
	}
}

func TestDirSource_SkipsBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Arsenal.json", twoMatches)
	writeFile(t, dir, "Broken.json", `[{"id": 1,`)
	writeFile(t, dir, "Object.json", `{"id": 1}`)

	res, err := Dir(dir).Load(context.Background(), discard)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Records) != 2 {
		t.Errorf("records = %d, want 2", len(res.Records))
	}
	if len(res.Failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(res.Failures))
	}
	if got := filepath.Base(res.Failures[0].Path); got != "Broken.json" {
		t.Errorf("first failure = %s, want Broken.json", got)
	}
}

func TestDirSource_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "archive")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "Arsenal.json", twoMatches)
	writeFile(t, dir, ".hidden.json", twoMatches)

	res, err := Dir(dir).Load(context.Background(), discard)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if res == nil || res.Documents != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestDirSource_NoData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Empty.json", `[]`)
	writeFile(t, dir, "Broken.json", `nope`)

	res, err := Dir(dir).Load(context.Background(), discard)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if res.Loaded != 1 || len(res.Failures) != 1 {
		t.Errorf("summary = %s", res.Summary())
	}
}

func TestDirSource_MissingFolder(t *testing.T) {
	_, err := Dir(filepath.Join(t.TempDir(), "Premier League")).Load(context.Background(), discard)
	if !errors.Is(err, ErrDirNotFound) {
		t.Fatalf("err = %v, want ErrDirNotFound", err)
	}
}

func TestDirSource_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Arsenal.json", twoMatches)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Dir(dir).Load(ctx, discard); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestTeamLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{filepath.Join("data", "Premier League", "Arsenal.json"), "Arsenal"},
		{"Brighton & Hove Albion.json", "Brighton & Hove Albion"},
		{"Paris Saint-Germain.v2.json", "Paris Saint-Germain.v2"},
	}
	for _, tt := range tests {
		if got := TeamLabel(tt.in); got != tt.want {
			t.Errorf("TeamLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Postgres source
// ---------------------------------------------------------------------------

type fakeRows struct {
	data [][2]string
	i    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	*dest[0].(*string) = row[0]
	*dest[1].(*string) = row[1]
	return nil
}

type fakeQuerier struct {
	rows *fakeRows
	sql  string
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = sql
	return q.rows, nil
}

func TestPostgresSource_Load(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][2]string{
		{"Arsenal", twoMatches},
		{"Broken", `{`},
	}}}

	res, err := Postgres(q).Load(context.Background(), discard)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if q.sql != "team_documents" {
		t.Errorf("query = %q, want the prepared statement name", q.sql)
	}
	if len(res.Records) != 2 || res.Records[0].Team != "Arsenal" {
		t.Errorf("records = %+v", res.Records)
	}
	if len(res.Failures) != 1 || res.Failures[0].Path != "team_documents/Broken" {
		t.Errorf("failures = %v", res.Failures)
	}
}

func TestPostgresSource_Empty(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{}}
	if _, err := Postgres(q).Load(context.Background(), discard); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}
