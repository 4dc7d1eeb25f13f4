package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `arabic,english,dutch
كتاب,book,boek
مدرسة,school,school
كتاب,book again,boek opnieuw
,orphan,wees
`

func newTestImporter(t *testing.T) (*Importer, *testutils.MemStores) {
	t.Helper()
	stores := testutils.NewMemStores()
	log, _ := logger.NewTestLogger(t)
	imp := New(stores.Words, log)
	imp.now = func() time.Time { return testutils.FixedNow }
	return imp, stores
}

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sheet1"
	for r, row := range rows {
		for c, value := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	imp, stores := newTestImporter(t)

	result, err := imp.ImportCSV(ctx, strings.NewReader(sampleCSV), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 5")
	assert.Equal(t, []string{domain.WordID("كتاب"), domain.WordID("مدرسة")}, result.CreatedIDs)

	word, err := stores.Words.Get(ctx, domain.WordID("كتاب"))
	require.NoError(t, err)
	assert.Equal(t, "book", word.English, "first occurrence wins")
	assert.Equal(t, "boek", word.Dutch)
	assert.False(t, word.Enriched)
	assert.Equal(t, testutils.FixedNow, word.CreatedAt)
}

func TestImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	imp, stores := newTestImporter(t)

	_, err := imp.ImportCSV(ctx, strings.NewReader(sampleCSV), DefaultConfig())
	require.NoError(t, err)

	again, err := imp.ImportCSV(ctx, strings.NewReader(sampleCSV), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 3, again.Skipped)
	assert.Empty(t, again.CreatedIDs)

	count, err := stores.Words.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImportXLSX(t *testing.T) {
	ctx := context.Background()

	t.Run("custom columns", func(t *testing.T) {
		imp, stores := newTestImporter(t)
		buf := buildWorkbook(t, [][]string{
			{"#", "nl", "en", "ar"},
			{"1", "huis", "house", "بيت"},
			{"2", "deur", "door", "باب"},
		})

		cfg := Config{SheetName: "Sheet1", SkipHeader: true, RawColumn: "D", EnglishColumn: "C", DutchColumn: "B"}
		result, err := imp.ImportXLSX(ctx, buf, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)

		word, err := stores.Words.Get(ctx, domain.WordID("باب"))
		require.NoError(t, err)
		assert.Equal(t, "door", word.English)
		assert.Equal(t, "deur", word.Dutch)
	})

	t.Run("empty sheet name uses the first sheet", func(t *testing.T) {
		imp, _ := newTestImporter(t)
		buf := buildWorkbook(t, [][]string{{"قلم", "pen", "pen"}})

		result, err := imp.ImportXLSX(ctx, buf, Config{RawColumn: "A", EnglishColumn: "B", DutchColumn: "C"})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
	})

	t.Run("missing sheet", func(t *testing.T) {
		imp, _ := newTestImporter(t)
		buf := buildWorkbook(t, [][]string{{"قلم", "pen", "pen"}})

		_, err := imp.ImportXLSX(ctx, buf, Config{SheetName: "Nope", RawColumn: "A"})
		assert.Error(t, err)
	})

	t.Run("not a workbook", func(t *testing.T) {
		imp, _ := newTestImporter(t)
		_, err := imp.ImportXLSX(ctx, strings.NewReader("plain text"), DefaultConfig())
		assert.Error(t, err)
	})
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "words.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))

	imp, _ := newTestImporter(t)
	result, err := imp.ImportFile(ctx, csvPath, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	txtPath := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(sampleCSV), 0o600))
	_, err = imp.ImportFile(ctx, txtPath, DefaultConfig())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = imp.ImportFile(ctx, filepath.Join(dir, "missing.csv"), DefaultConfig())
	assert.Error(t, err)
}

func TestImportRowsSkipsBlankRows(t *testing.T) {
	imp, _ := newTestImporter(t)
	rows := [][]string{
		{"قلم", "pen", "pen"},
		{},
		{"  ", "", ""},
		{"باب"},
	}

	result, err := imp.ImportRows(context.Background(), rows, Config{RawColumn: "A", EnglishColumn: "B", DutchColumn: "C"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Errors)
}

func TestColumnToIndex(t *testing.T) {
	tests := []struct {
		column string
		want   int
	}{
		{"A", 0},
		{"c", 2},
		{"Z", 25},
		{"AA", 26},
		{"", -1},
		{"1", -1},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, columnToIndex(tt.column))
		})
	}
}
