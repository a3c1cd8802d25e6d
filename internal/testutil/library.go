package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// KindleLibrary writes a BookData.sqlite with one ZBOOK row per entry and
// returns its path.
func KindleLibrary(t *testing.T, books ...KindleAttrs) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "BookData.sqlite")
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		t.Fatalf("open library: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE ZBOOK (Z_PK INTEGER PRIMARY KEY, ZDISPLAYTITLE TEXT, ZSYNCMETADATAATTRIBUTES BLOB)`); err != nil {
		t.Fatalf("create ZBOOK: %v", err)
	}
	for i, b := range books {
		meta, err := KindleMetadata(b)
		if err != nil {
			t.Fatalf("archive %q: %v", b.Title, err)
		}
		if _, err := db.Exec(`INSERT INTO ZBOOK VALUES (?, ?, ?)`, i+1, b.Title, meta); err != nil {
			t.Fatalf("insert %q: %v", b.Title, err)
		}
	}
	return path
}
