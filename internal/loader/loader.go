// Package loader collects raw match records from team documents, one
// document per team. A document that cannot be read is skipped and
// reported; only an empty overall result fails the load.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/albapepper/scoracle-sheets/internal/match"
)

var (
	// ErrNoData is returned when no document produced any record.
	ErrNoData = errors.New("no match data found")

	// ErrDirNotFound is returned when the input folder does not exist.
	ErrDirNotFound = errors.New("input folder not found")
)

// Source yields the raw match records of every team.
type Source interface {
	Load(ctx context.Context, logger *slog.Logger) (*Result, error)
}

// DirSource reads every *.json file directly inside a folder. The file name
// without its extension is the team label.
type DirSource struct {
	Path string
}

func Dir(path string) *DirSource {
	return &DirSource{Path: path}
}

// TeamLabel derives the team label from a document path.
func TeamLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads the folder. Files are visited in name order.
func (d *DirSource) Load(ctx context.Context, logger *slog.Logger) (*Result, error) {
	info, err := os.Stat(d.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, d.Path)
		}
		return nil, fmt.Errorf("stat input folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirNotFound, d.Path)
	}

	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}
	var files []string
	for _, e := range entries {
		// hidden files are never team documents
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(d.Path, e.Name()))
	}
	sort.Strings(files)

	logger.Info("Loading team documents", "folder", d.Path, "files", len(files))

	var result Result
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := readDocument(path)
		if err != nil {
			logger.Error("Skipping team document", "file", path, "error", err)
			result.Fail(path, err)
			continue
		}
		logger.Debug("Loaded team document", "file", path, "records", len(records))
		result.Add(records)
	}

	logger.Info("Team documents loaded", "summary", result.Summary())
	if len(result.Records) == 0 {
		return &result, ErrNoData
	}
	return &result, nil
}

func readDocument(path string) ([]match.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return match.DecodeDocument(TeamLabel(path), data)
}
