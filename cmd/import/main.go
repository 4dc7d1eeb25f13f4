// Package main implements the word list import tool. It reads an XLSX or CSV
// word list into the configured database and can enrich the new words
// straight away.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/importer"
	"github.com/phrazzld/scry-words/internal/platform/database"
	"github.com/phrazzld/scry-words/internal/platform/gemini"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/task"
)

// options are the command-line flags.
type options struct {
	File       string
	Layout     importer.Config
	Enrich     bool
	EnrichWait time.Duration
}

func parseFlags(args []string) (options, error) {
	opts := options{Layout: importer.DefaultConfig()}

	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.StringVar(&opts.File, "file", "", "word list to import (.xlsx, .xlsm or .csv)")
	fs.StringVar(&opts.Layout.SheetName, "sheet", opts.Layout.SheetName, "sheet to read from an XLSX file; empty means the first sheet")
	fs.BoolVar(&opts.Layout.SkipHeader, "skip-header", opts.Layout.SkipHeader, "skip the first row")
	fs.StringVar(&opts.Layout.RawColumn, "raw-col", opts.Layout.RawColumn, "column with the Arabic word")
	fs.StringVar(&opts.Layout.EnglishColumn, "english-col", opts.Layout.EnglishColumn, "column with the English gloss")
	fs.StringVar(&opts.Layout.DutchColumn, "dutch-col", opts.Layout.DutchColumn, "column with the Dutch gloss")
	fs.BoolVar(&opts.Enrich, "enrich", false, "enrich the imported words with Gemini")
	fs.DurationVar(&opts.EnrichWait, "enrich-delay", time.Second, "pause between enrichment requests")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.File == "" {
		return opts, errors.New("-file is required")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	ctx := context.Background()
	var enricher enrichment.Enricher
	if opts.Enrich {
		if !cfg.LLM.Enabled() {
			log.Fatalf("Enrichment requested but no Gemini API key is configured")
		}
		e, err := gemini.NewEnricher(ctx, l, cfg.LLM)
		if err != nil {
			log.Fatalf("Failed to initialize enricher: %v", err)
		}
		enricher = e
	}

	if err := run(ctx, cfg, opts, enricher, l, os.Stdout); err != nil {
		l.Error("import failed", "error", err)
		os.Exit(1)
	}
}

// run imports the word list and, when enricher is set, enriches every word
// the import created.
func run(
	ctx context.Context,
	cfg *config.Config,
	opts options,
	enricher enrichment.Enricher,
	logger *slog.Logger,
	out io.Writer,
) error {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(ctx, db, database.MigrateUp, logger); err != nil {
		return err
	}

	words := database.NewWordStore(db, logger)
	result, err := importer.New(words, logger).ImportFile(ctx, opts.File, opts.Layout)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Processed %d rows: %d created, %d skipped, %d errors\n",
		result.TotalProcessed, result.Created, result.Skipped, len(result.Errors))
	for _, msg := range result.Errors {
		_, _ = fmt.Fprintf(out, "  %s\n", msg)
	}

	if enricher == nil || len(result.CreatedIDs) == 0 {
		return nil
	}

	enriched := 0
	for i, id := range result.CreatedIDs {
		if i > 0 && opts.EnrichWait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.EnrichWait):
			}
		}

		t, err := task.NewEnrichWordTask(id, words, enricher, nil, logger)
		if err != nil {
			return err
		}
		if err := t.Execute(ctx); err != nil {
			_, _ = fmt.Fprintf(out, "  enrichment failed for %s: %v\n", id, err)
			continue
		}
		enriched++
	}
	_, _ = fmt.Fprintf(out, "Enriched %d of %d new words\n", enriched, len(result.CreatedIDs))
	return nil
}
