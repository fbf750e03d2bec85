package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// Fixed sheet names.
const (
	AllMatchesSheet = "All Matches"
	SummarySheet    = "Team Summary"
)

// ReservedSheet is a name spreadsheet applications keep for themselves.
// Excel repairs a workbook that uses it.
const ReservedSheet = "History"

// MaxSheetName is the longest sheet name the xlsx format accepts.
const MaxSheetName = 31

// ErrNameCollision is matched by a CollisionError.
var ErrNameCollision = errors.New("sheet name collision")

// CollisionError reports two teams, or a team and a fixed sheet, whose
// sheet names are the same after sanitization.
type CollisionError struct {
	Sheet  string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("sheet name collision: %q and %q both map to sheet %q", e.First, e.Second, e.Sheet)
}

func (e *CollisionError) Is(target error) bool { return target == ErrNameCollision }

var sheetReplacer = strings.NewReplacer(
	"/", "_", `\`, "_",
	":", "_", "*", "_", "?", "_", "[", "_", "]", "_",
)

// SheetName turns a team label into a valid sheet name: path separators and
// other forbidden characters become underscores and the result is cut to 31
// characters.
func SheetName(team string) string {
	name := sheetReplacer.Replace(team)
	if utf8.RuneCountInString(name) > MaxSheetName {
		name = string([]rune(name)[:MaxSheetName])
	}
	// a sheet name cannot start or end with an apostrophe
	if strings.HasPrefix(name, "'") {
		name = "_" + name[1:]
	}
	if strings.HasSuffix(name, "'") {
		name = name[:len(name)-1] + "_"
	}
	if name == "" {
		name = "_"
	}
	return name
}

// SheetNames maps each team to its sheet name. Names are compared without
// regard to case, as spreadsheet applications do. The fixed sheets and
// ReservedSheet are taken before any team.
func SheetNames(teams []string) (map[string]string, error) {
	owner := map[string]string{
		strings.ToLower(AllMatchesSheet): AllMatchesSheet,
		strings.ToLower(SummarySheet):    SummarySheet,
		strings.ToLower(ReservedSheet):   ReservedSheet,
	}
	names := make(map[string]string, len(teams))
	for _, team := range teams {
		name := SheetName(team)
		key := strings.ToLower(name)
		if prev, ok := owner[key]; ok {
			return nil, &CollisionError{Sheet: name, First: prev, Second: team}
		}
		owner[key] = team
		names[team] = name
	}
	return names, nil
}

// DefaultFileName names the workbook after the input folder and the time of
// the run: <folder>_stats_YYYYMMDD_HHMMSS.xlsx.
func DefaultFileName(dir string, now time.Time) string {
	folder := filepath.Base(filepath.Clean(dir))
	return fmt.Sprintf("%s_stats_%s.xlsx", folder, now.Format("20060102_150405"))
}
