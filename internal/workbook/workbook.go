// Package workbook lays the match and summary tables out as sheets of one
// xlsx file. It adds no data of its own: every cell comes from a table.
package workbook

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/albapepper/scoracle-sheets/internal/match"
	"github.com/albapepper/scoracle-sheets/internal/summary"
)

// Sheet describes one emitted sheet.
type Sheet struct {
	Name string
	Team string // empty for the fixed sheets
	Rows int
}

// Build assembles the workbook in memory. It fails with ErrNameCollision
// before anything is laid out when two team sheets would share a name.
func Build(matches *match.Table, teams *summary.Table) (*excelize.File, []Sheet, error) {
	labels := matches.Teams()
	names, err := SheetNames(labels)
	if err != nil {
		return nil, nil, err
	}

	f := excelize.NewFile()
	w, err := newSheetWriter(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	if err := f.SetSheetName(f.GetSheetName(0), AllMatchesSheet); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("rename first sheet: %w", err)
	}
	sheets := []Sheet{{Name: AllMatchesSheet, Rows: len(matches.Rows)}}
	if err := w.write(AllMatchesSheet, matches.Columns, matches.Grid(matches.Rows)); err != nil {
		f.Close()
		return nil, nil, err
	}

	if err := w.add(SummarySheet, teams.Columns, teams.Grid()); err != nil {
		f.Close()
		return nil, nil, err
	}
	sheets = append(sheets, Sheet{Name: SummarySheet, Rows: len(teams.Rows)})

	for _, team := range labels {
		rows := matches.ForTeam(team)
		if err := w.add(names[team], matches.Columns, matches.Grid(rows)); err != nil {
			f.Close()
			return nil, nil, err
		}
		sheets = append(sheets, Sheet{Name: names[team], Team: team, Rows: len(rows)})
	}

	f.SetActiveSheet(0)
	return f, sheets, nil
}

// Write builds the workbook and saves it to path. The file appears complete
// or not at all: it is written next to path and renamed into place.
func Write(path string, matches *match.Table, teams *summary.Table) ([]Sheet, error) {
	f, sheets, err := Build(matches, teams)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sheets-*.xlsx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("move workbook into place: %w", err)
	}
	return sheets, nil
}

// Bytes renders the workbook in memory.
func Bytes(matches *match.Table, teams *summary.Table) ([]byte, error) {
	f, _, err := Build(matches, teams)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// --------------------------------------------------------------------------
// Sheet writer
// --------------------------------------------------------------------------

type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	dateStyle   int
}

func newSheetWriter(f *excelize.File) (*sheetWriter, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	// built-in format 14: m/d/yyyy, shown in the reader's locale
	date, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, fmt.Errorf("date style: %w", err)
	}
	return &sheetWriter{f: f, headerStyle: header, dateStyle: date}, nil
}

func (w *sheetWriter) add(name string, columns []string, grid [][]match.Value) error {
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	return w.write(name, columns, grid)
}

// write streams a header row and the grid into an existing sheet.
func (w *sheetWriter) write(name string, columns []string, grid [][]match.Value) error {
	sw, err := w.f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("open sheet %q: %w", name, err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header of %q: %w", name, err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: w.headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header of %q: %w", name, err)
	}

	for i, values := range grid {
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = w.cell(v)
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(ref, row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, name, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet %q: %w", name, err)
	}
	return nil
}

// cell converts a Value to what the stream writer expects. Missing values
// become empty cells.
func (w *sheetWriter) cell(v match.Value) interface{} {
	switch v.Kind() {
	case match.Number:
		f, _ := v.Float()
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case match.String:
		s, _ := v.Str()
		return s
	case match.Bool:
		b, _ := v.Bool()
		return b
	case match.Date:
		t, _ := v.Time()
		return excelize.Cell{StyleID: w.dateStyle, Value: t}
	default:
		return nil
	}
}
