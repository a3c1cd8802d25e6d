package library

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindlesync/internal/testutil"
)

func createLibrary(t *testing.T, ddl string, rows ...[]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "BookData.sqlite")
	db, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(ddl)
	require.NoError(t, err)
	for _, r := range rows {
		placeholders := "?"
		for i := 1; i < len(r); i++ {
			placeholders += ", ?"
		}
		_, err = db.Exec("INSERT INTO ZBOOK VALUES ("+placeholders+")", r...)
		require.NoError(t, err)
	}
	return path
}

func TestOpenSQLite_MissingFile(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "nope.sqlite"))
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestSQLiteSource_Rows(t *testing.T) {
	ctx := context.Background()
	meta, err := testutil.KindleMetadata(testutil.KindleAttrs{Title: "Dune", ASIN: "B00B7NPRY8"})
	require.NoError(t, err)

	t.Run("zero rows", func(t *testing.T) {
		path := createLibrary(t, `CREATE TABLE ZBOOK (Z_PK INTEGER PRIMARY KEY, ZDISPLAYTITLE TEXT, ZSYNCMETADATAATTRIBUTES BLOB)`)
		src, err := OpenSQLite(path)
		require.NoError(t, err)
		defer src.Close()

		rows, err := src.Rows(ctx)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("title and metadata columns", func(t *testing.T) {
		path := createLibrary(t,
			`CREATE TABLE ZBOOK (Z_PK INTEGER PRIMARY KEY, ZDISPLAYTITLE TEXT, ZSYNCMETADATAATTRIBUTES BLOB)`,
			[]any{1, "Dune", meta},
			[]any{2, "Untitled", nil},
		)
		src, err := OpenSQLite(path)
		require.NoError(t, err)
		defer src.Close()

		rows, err := src.Rows(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Dune", rows[0].DisplayTitle)
		assert.Equal(t, meta, rows[0].Metadata)
		assert.True(t, rows[0].HasMetadata)
		assert.Empty(t, rows[1].Metadata)
		assert.True(t, rows[1].HasMetadata)
	})

	t.Run("metadata column absent", func(t *testing.T) {
		path := createLibrary(t,
			`CREATE TABLE ZBOOK (Z_PK INTEGER PRIMARY KEY, ZDISPLAYTITLE TEXT)`,
			[]any{1, "Only Title"},
		)
		src, err := OpenSQLite(path)
		require.NoError(t, err)
		defer src.Close()

		rows, err := src.Rows(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Only Title", rows[0].DisplayTitle)
		assert.False(t, rows[0].HasMetadata)
	})
}
