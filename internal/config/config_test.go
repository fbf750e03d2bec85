package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InputDir != DefaultInputDir || cfg.Source != SourceDir || cfg.Workers != 1 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.OutputPath != "" {
		t.Errorf("output = %q, want empty (derived at run time)", cfg.OutputPath)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheets.yaml")
	yml := strings.Join([]string{
		"input_dir: La Liga",
		"workers: 4",
		"report_ttl: 90s",
		"cors_allow_origins: [https://example.com]",
	}, "\n")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHEETS_WORKERS", "8")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InputDir != "La Liga" {
		t.Errorf("input_dir = %q, want value from file", cfg.InputDir)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d, env must override the file", cfg.Workers)
	}
	if cfg.ReportTTL != 90*time.Second {
		t.Errorf("report_ttl = %v", cfg.ReportTTL)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSAllowOrigins, want) {
		t.Errorf("cors = %v, want %v", cfg.CORSAllowOrigins, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown source", map[string]string{"SHEETS_SOURCE": "ftp"}},
		{"postgres without url", map[string]string{"SHEETS_SOURCE": SourcePostgres, "DATABASE_URL": ""}},
		{"zero workers", map[string]string{"SHEETS_WORKERS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
