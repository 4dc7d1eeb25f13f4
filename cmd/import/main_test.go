package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/platform/database"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-file", "words.xlsx", "-sheet", "Lesson 1", "-skip-header=false", "-enrich"})
	require.NoError(t, err)
	assert.Equal(t, "words.xlsx", opts.File)
	assert.Equal(t, "Lesson 1", opts.Layout.SheetName)
	assert.False(t, opts.Layout.SkipHeader)
	assert.True(t, opts.Enrich)
	assert.Equal(t, "A", opts.Layout.RawColumn)

	_, err = parseFlags([]string{"-sheet", "Sheet1"})
	assert.Error(t, err, "file is required")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "words.csv")
	require.NoError(t, os.WriteFile(list, []byte("arabic,english,dutch\nكتاب,book,boek\nقلم,pen,pen\n"), 0o600))

	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver: "sqlite",
		URL:    "file:" + filepath.Join(dir, "words.db") + "?_foreign_keys=on",
	}}
	log, _ := logger.NewTestLogger(t)
	opts, err := parseFlags([]string{"-file", list, "-enrich-delay", "0s"})
	require.NoError(t, err)

	enricher := &testutils.FakeEnricher{}
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, opts, enricher, log, &out))
	assert.Contains(t, out.String(), "Processed 2 rows: 2 created, 0 skipped, 0 errors")
	assert.Contains(t, out.String(), "Enriched 2 of 2 new words")
	assert.Len(t, enricher.EnrichCalls(), 2)

	out.Reset()
	require.NoError(t, run(context.Background(), cfg, opts, nil, log, &out))
	assert.Contains(t, out.String(), "0 created, 2 skipped")

	db, err := database.Open(context.Background(), cfg.Database, log)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	words, err := database.NewWordStore(db, log).List(context.Background())
	require.NoError(t, err)
	require.Len(t, words, 2)
	for _, w := range words {
		assert.True(t, w.Enriched)
	}
}
