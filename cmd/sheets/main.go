// Command sheets turns a folder of per-team match statistics into a
// spreadsheet workbook.
//
// Usage:
//
//	sheets build "Premier League"
//	sheets build "Premier League" --out pl.xlsx --workers 4 --csv matches.csv
//	sheets build --source postgres
//	sheets summary "Premier League"
//	sheets teams "Premier League"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/scoracle-sheets/internal/config"
	"github.com/albapepper/scoracle-sheets/internal/db"
	"github.com/albapepper/scoracle-sheets/internal/loader"
	"github.com/albapepper/scoracle-sheets/internal/pipeline"
	"github.com/albapepper/scoracle-sheets/internal/workbook"
)

// options shared by every subcommand.
type options struct {
	configPath string
	source     string
	workers    int
}

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	var opts options
	root := &cobra.Command{
		Use:           "sheets",
		Short:         "Per-team match statistics to spreadsheet workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&opts.source, "source", "", "Record source (dir, postgres); default from config")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Flatten worker count; default from config")

	root.AddCommand(buildCmd(&opts))
	root.AddCommand(summaryCmd(&opts))
	root.AddCommand(teamsCmd(&opts))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// build command
// --------------------------------------------------------------------------

func buildCmd(opts *options) *cobra.Command {
	var out, csvPath string
	cmd := &cobra.Command{
		Use:   "build [folder]",
		Short: "Build the workbook from a folder of team documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args, func(rc *runContext) error {
				path := out
				if path == "" {
					path = rc.cfg.OutputPath
				}
				if path == "" {
					path = workbook.DefaultFileName(rc.cfg.InputDir, time.Now())
				}

				sheets, err := workbook.Write(path, rc.report.Matches, rc.report.Teams)
				if err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
				rc.logger.Info("Workbook written", "path", path, "sheets", len(sheets))

				if csvPath != "" {
					if err := writeCSVFile(csvPath, rc.report); err != nil {
						return err
					}
					rc.logger.Info("Match table exported", "path", csvPath)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Excel file created: %s\n", path)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, s := range sheets {
					fmt.Fprintf(tw, "  %s\t%d rows\n", s.Name, s.Rows)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output workbook path (default <folder>_stats_<timestamp>.xlsx)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also export the match table as CSV")
	return cmd
}

func writeCSVFile(path string, report *pipeline.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	m := report.Matches
	if err := workbook.WriteCSV(f, m.Columns, m.Grid(m.Rows)); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

// --------------------------------------------------------------------------
// summary command
// --------------------------------------------------------------------------

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [folder]",
		Short: "Print the ranked team summary as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args, func(rc *runContext) error {
				t := rc.report.Teams
				return workbook.WriteCSV(cmd.OutOrStdout(), t.Columns, t.Grid())
			})
		},
	}
}

// --------------------------------------------------------------------------
// teams command
// --------------------------------------------------------------------------

func teamsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "teams [folder]",
		Short: "List teams with their sheet names and match counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args, func(rc *runContext) error {
				teams := rc.report.Matches.Teams()
				names, err := workbook.SheetNames(teams)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TEAM\tSHEET\tMATCHES")
				for _, team := range teams {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", team, names[team], len(rc.report.Matches.ForTeam(team)))
				}
				return tw.Flush()
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

type runContext struct {
	cfg    *config.Config
	logger *slog.Logger
	report *pipeline.Report
}

// runReport handles config loading, source selection, signal handling, and
// the pipeline run, then hands the report to fn.
func runReport(opts *options, args []string, fn func(rc *runContext) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(args) == 1 {
		cfg.InputDir = args[0]
	}
	if opts.source != "" {
		cfg.Source = opts.source
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Debug)

	src, closeSrc, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	report, err := pipeline.Run(ctx, src, cfg.Workers, logger)
	if err != nil {
		if errors.Is(err, loader.ErrDirNotFound) {
			fmt.Fprintf(os.Stderr, "%s folder not found. Please make sure the folder exists.\n", cfg.InputDir)
			listFolders(os.Stderr, ".")
		}
		return err
	}
	return fn(&runContext{cfg: cfg, logger: logger, report: report})
}

// openSource returns the configured record source and a cleanup func.
func openSource(ctx context.Context, cfg *config.Config) (loader.Source, func(), error) {
	if cfg.Source != config.SourcePostgres {
		return loader.Dir(cfg.InputDir), func() {}, nil
	}
	pool, err := db.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return loader.Postgres(pool), pool.Close, nil
}

// listFolders prints the sub-directories of dir.
func listFolders(w io.Writer, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	fmt.Fprintln(w, "Available folders:")
	for _, e := range entries {
		if e.IsDir() {
			fmt.Fprintf(w, "  - %s\n", filepath.Join(dir, e.Name()))
		}
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
