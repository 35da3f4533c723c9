package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spacesedan/sentiboard/config"
	"github.com/spacesedan/sentiboard/internal/dashboard"
	"github.com/spacesedan/sentiboard/internal/db"
	"github.com/spacesedan/sentiboard/internal/export"
	"github.com/spacesedan/sentiboard/internal/history"
	"github.com/spacesedan/sentiboard/internal/logging"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/report"
	"github.com/spacesedan/sentiboard/internal/sentiment"
)

var errConflictingHistory = errors.New("-history and -archive cannot be combined; the archive already holds the history it saved")

type options struct {
	historyCSV string
	archive    string
	exportCSV  string
	asJSON     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.historyCSV, "history", "", "CSV export to preload into the history (not with -archive)")
	flag.StringVar(&opts.archive, "archive", "", "SQLite archive to load before and save after the analysis (not with -history)")
	flag.StringVar(&opts.exportCSV, "export", "", "write the resulting history as CSV to this path")
	flag.BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("APP_ENV"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	text, err := readInput(flag.Args(), os.Stdin)
	if err != nil {
		slog.Error("[Analyze] Failed to read input", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, opts, text, os.Stdout); err != nil {
		if errors.Is(err, models.ErrEmptyText) {
			fmt.Fprintln(os.Stderr, "Please enter some text to analyze.")
			os.Exit(2)
		}
		slog.Error("[Analyze] Failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func run(ctx context.Context, cfg *config.Config, opts options, text string, out io.Writer) error {
	if opts.archive != "" && opts.historyCSV != "" {
		return errConflictingHistory
	}

	var analyzer sentiment.Analyzer = sentiment.NewVaderAnalyzer()
	if cfg.StripMarkdown {
		analyzer = sentiment.PlainTextAnalyzer{Next: analyzer}
	}
	service := dashboard.NewService(analyzer, history.NewStore(nil), sentiment.DefaultThresholds)

	var archive *db.SQLiteArchive
	if opts.archive != "" {
		a, err := db.OpenSQLiteArchive(opts.archive)
		if err != nil {
			return err
		}
		defer a.Close()
		archive = a

		records, err := archive.Load(ctx)
		if err != nil {
			return err
		}
		if _, err := service.Import(records); err != nil {
			return err
		}
	}

	if opts.historyCSV != "" {
		if err := importCSV(service, opts.historyCSV); err != nil {
			return err
		}
	}

	analysis, err := service.Analyze(text)
	if err != nil {
		return err
	}

	r, err := report.Build(service, analysis)
	if err != nil {
		return err
	}

	if archive != nil {
		if err := archive.Save(ctx, service.History()); err != nil {
			return err
		}
	}
	if opts.exportCSV != "" {
		if err := exportCSV(service.History(), opts.exportCSV); err != nil {
			return err
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	_, err = io.WriteString(out, report.Render(r))
	return err
}

func importCSV(service *dashboard.Service, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := export.ReadCSV(f)
	if err != nil {
		return err
	}
	_, err = service.Import(records)
	return err
}

func exportCSV(records []models.AnalysisRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
