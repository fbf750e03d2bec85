package match

import (
	"reflect"
	"testing"
	"time"
)

func decodeOne(t *testing.T, team, doc string) Raw {
	t.Helper()
	records, err := DecodeDocument(team, []byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	return records[0]
}

const arsenalWin = `[{"id":1,"tournament":"EPL","day":"2023-01-01","homeTeam":"Arsenal","awayTeam":"Chelsea","homeScore":2,"awayScore":1,"statistics":[{"name":"Possession","home":60,"away":40}]}]`

func TestFlatten_HomeWin(t *testing.T) {
	f := Flatten(decodeOne(t, "Arsenal", arsenalWin))

	if !f.IsHome {
		t.Error("expected is_home=true")
	}
	if got := f.Opponent.Text(); got != "Chelsea" {
		t.Errorf("opponent = %q, want Chelsea", got)
	}
	if n, _ := f.GoalsFor.Int(); n != 2 {
		t.Errorf("goals_for = %d, want 2", n)
	}
	if n, _ := f.GoalsAgainst.Int(); n != 1 {
		t.Errorf("goals_against = %d, want 1", n)
	}
	if f.Result != Win {
		t.Errorf("result = %s, want Win", f.Result)
	}
	if v, _ := f.Field("possession_team").Float(); v != 60 {
		t.Errorf("possession_team = %v, want 60", v)
	}
	if v, _ := f.Field("possession_opponent").Float(); v != 40 {
		t.Errorf("possession_opponent = %v, want 40", v)
	}
	d, ok := f.Date.Time()
	if !ok || !d.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v (parsed=%v), want 2023-01-01", d, ok)
	}
	if f.Unmatched() {
		t.Error("home match reported as unmatched")
	}
}

func TestFlatten_AwayPerspective(t *testing.T) {
	f := Flatten(decodeOne(t, "Chelsea", arsenalWin))

	if f.IsHome {
		t.Error("expected is_home=false")
	}
	if got := f.Opponent.Text(); got != "Arsenal" {
		t.Errorf("opponent = %q, want Arsenal", got)
	}
	if f.Result != Loss {
		t.Errorf("result = %s, want Loss", f.Result)
	}
	if v, _ := f.Field("possession_team").Float(); v != 40 {
		t.Errorf("possession_team = %v, want 40", v)
	}
	if v, _ := f.Field("possession_opponent").Float(); v != 60 {
		t.Errorf("possession_opponent = %v, want 60", v)
	}
}

func TestFlatten_UnparsableScore(t *testing.T) {
	doc := `[{"id":1,"tournament":"EPL","day":"2023-01-01","homeTeam":"Arsenal","awayTeam":"Chelsea","homeScore":"N/A","awayScore":1}]`
	f := Flatten(decodeOne(t, "Arsenal", doc))

	if f.Result != Unknown {
		t.Errorf("result = %s, want Unknown", f.Result)
	}
	if s, ok := f.GoalsFor.Str(); !ok || s != "N/A" {
		t.Errorf("goals_for = %#v, want raw \"N/A\"", f.GoalsFor)
	}
	if n, ok := f.GoalsAgainst.Int(); !ok || n != 1 {
		t.Errorf("goals_against = %#v, want 1", f.GoalsAgainst)
	}
}

func TestFlatten_MissingScore(t *testing.T) {
	doc := `[{"homeTeam":"Arsenal","awayTeam":"Chelsea","homeScore":1}]`
	f := Flatten(decodeOne(t, "Arsenal", doc))
	if f.Result != Unknown {
		t.Errorf("result = %s, want Unknown", f.Result)
	}
	if !f.GoalsAgainst.IsMissing() {
		t.Errorf("goals_against = %#v, want missing", f.GoalsAgainst)
	}
}

func TestFlatten_ResultTable(t *testing.T) {
	tests := []struct {
		name       string
		home, away Value
		want       Result
	}{
		{"win", NumberValue(3), NumberValue(0), Win},
		{"loss", NumberValue(0), NumberValue(2), Loss},
		{"draw", NumberValue(1), NumberValue(1), Draw},
		{"numeric strings", StringValue(" 2 "), StringValue("1"), Win},
		{"decimal string", StringValue("2.0"), NumberValue(1), Unknown},
		{"null", Value{}, NumberValue(1), Unknown},
		{"float truncates", NumberValue(2.7), NumberValue(2), Draw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Raw{Team: "A", HomeTeam: StringValue("A"), AwayTeam: StringValue("B"), HomeScore: tt.home, AwayScore: tt.away}
			if got := Flatten(r).Result; got != tt.want {
				t.Errorf("result = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFlatten_ResultMirrors(t *testing.T) {
	scores := [][2]float64{{0, 0}, {1, 0}, {0, 3}, {4, 4}, {5, 2}}
	for _, s := range scores {
		r := Raw{
			HomeTeam: StringValue("A"), AwayTeam: StringValue("B"),
			HomeScore: NumberValue(s[0]), AwayScore: NumberValue(s[1]),
		}
		r.Team = "A"
		home := Flatten(r)
		r.Team = "B"
		away := Flatten(r)

		mirror := map[Result]Result{Win: Loss, Loss: Win, Draw: Draw}
		if mirror[home.Result] != away.Result {
			t.Errorf("%v: home=%s away=%s are not mirrored", s, home.Result, away.Result)
		}
	}
}

func TestFlatten_IsHomeRequiresExactName(t *testing.T) {
	doc := `[{"homeTeam":"Arsenal FC","awayTeam":"Chelsea","homeScore":2,"awayScore":1}]`
	f := Flatten(decodeOne(t, "Arsenal", doc))

	if f.IsHome {
		t.Error("is_home must require an exact name match")
	}
	if !f.Unmatched() {
		t.Error("label matching neither side should be reported as unmatched")
	}
	// Treated as an away match.
	if f.Opponent.Text() != "Arsenal FC" || f.Result != Loss {
		t.Errorf("opponent=%q result=%s, want away orientation", f.Opponent.Text(), f.Result)
	}
}

func TestFlatten_DuplicateStatisticLastWins(t *testing.T) {
	doc := `[{"homeTeam":"A","awayTeam":"B","homeScore":0,"awayScore":0,"statistics":[
		{"name":"Ball Possession","home":50,"away":50},
		{"name":"Shots","home":10,"away":3},
		{"name":"ball possession","home":61,"away":39}
	]}]`
	f := Flatten(decodeOne(t, "A", doc))

	if got := f.Stats.Names(); !reflect.DeepEqual(got, []string{"ball_possession", "shots"}) {
		t.Fatalf("stat names = %v", got)
	}
	if v, _ := f.Field("ball_possession_team").Float(); v != 61 {
		t.Errorf("ball_possession_team = %v, want 61", v)
	}
	if v, _ := f.Field("ball_possession_opponent").Float(); v != 39 {
		t.Errorf("ball_possession_opponent = %v, want 39", v)
	}
	want := append(append([]string{}, BaseColumns...),
		"ball_possession_team", "ball_possession_opponent", "shots_team", "shots_opponent")
	if got := f.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v\nwant %v", got, want)
	}
}

func TestFlatten_TwoFieldsPerStatistic(t *testing.T) {
	doc := `[{"homeTeam":"A","awayTeam":"B","statistics":[
		{"name":"Corner kicks","home":"5","away":2},
		{"name":"Passes","home":400,"away":null}
	]}]`
	f := Flatten(decodeOne(t, "A", doc))
	if got := len(f.Columns()) - len(BaseColumns); got != 4 {
		t.Errorf("derived columns = %d, want 4", got)
	}
	if s, _ := f.Field("corner_kicks_team").Str(); s != "5" {
		t.Errorf("corner_kicks_team = %q, want \"5\" kept as text", s)
	}
	if !f.Field("passes_opponent").IsMissing() {
		t.Error("passes_opponent should be missing")
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	r := decodeOne(t, "Arsenal", arsenalWin)
	if a, b := Flatten(r), Flatten(r); !reflect.DeepEqual(a, b) {
		t.Errorf("flatten is not deterministic:\n%#v\n%#v", a, b)
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in     Value
		want   string
		parsed bool
	}{
		{StringValue("2023-08-12"), "2023-08-12", true},
		{StringValue("2023-08-12T19:30:00Z"), "2023-08-12", true},
		{StringValue("2023-08-12 19:30:00"), "2023-08-12", true},
		{StringValue("12/08/2023"), "2023-08-12", true},
		{NumberValue(1691868600), "2023-08-12", true},
		{StringValue("someday"), "someday", false},
		{Value{}, "", false},
	}
	for _, tt := range tests {
		got := parseDay(tt.in)
		if _, ok := got.Time(); ok != tt.parsed {
			t.Errorf("parseDay(%q) parsed=%v, want %v", tt.in.Text(), ok, tt.parsed)
		}
		if got.Text() != tt.want {
			t.Errorf("parseDay(%q) = %q, want %q", tt.in.Text(), got.Text(), tt.want)
		}
	}
}

func TestFlatten_StatClashingWithBaseColumn(t *testing.T) {
	doc := `[{"id":1,"homeTeam":"Arsenal","awayTeam":"Chelsea","homeScore":2,"awayScore":1,
		"statistics":[{"name":"Home","home":7,"away":3},{"name":"away","home":1,"away":2}]}]`
	f := Flatten(decodeOne(t, "Arsenal", doc))

	if got := f.Field(ColHomeTeam).Text(); got != "Arsenal" {
		t.Errorf("home_team = %q, want Arsenal", got)
	}
	if v, _ := f.Field("stat_home_team").Float(); v != 7 {
		t.Errorf("stat_home_team = %v, want 7", v)
	}
	if v, _ := f.Field("stat_home_opponent").Float(); v != 3 {
		t.Errorf("stat_home_opponent = %v, want 3", v)
	}
	if v, _ := f.Field("stat_away_team").Float(); v != 1 {
		t.Errorf("stat_away_team = %v, want 1", v)
	}
	if want := []string{"stat_home", "stat_away"}; !reflect.DeepEqual(f.Renamed, want) {
		t.Errorf("renamed = %v, want %v", f.Renamed, want)
	}

	seen := make(map[string]int)
	for _, c := range f.Columns() {
		seen[c]++
		if seen[c] > 1 {
			t.Errorf("column %q listed twice", c)
		}
	}
	if n := len(f.Columns()); n != len(BaseColumns)+4 {
		t.Errorf("columns = %d, want %d", n, len(BaseColumns)+4)
	}
}

func TestStatKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		renamed bool
	}{
		{"Ball Possession", "ball_possession", false},
		{"Home", "stat_home", true},
		{"AWAY", "stat_away", true},
		{"home goals", "home_goals", false},
		{"Opponent", "opponent", false},
	}
	for _, tt := range tests {
		key, renamed := StatKey(tt.name)
		if key != tt.key || renamed != tt.renamed {
			t.Errorf("StatKey(%q) = %q, %v, want %q, %v", tt.name, key, renamed, tt.key, tt.renamed)
		}
	}
}
