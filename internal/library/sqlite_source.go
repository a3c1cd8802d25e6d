package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	columnDisplayTitle = "ZDISPLAYTITLE"
	columnMetadata     = "ZSYNCMETADATAATTRIBUTES"
)

type SQLiteSource struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens the library database read-only. The file must exist.
func OpenSQLite(path string) (*SQLiteSource, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat library database: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open library database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping library database: %w", err)
	}
	return &SQLiteSource{db: db, path: path}, nil
}

func (s *SQLiteSource) Path() string { return s.path }

func (s *SQLiteSource) Close() error { return s.db.Close() }

func (s *SQLiteSource) Rows(ctx context.Context) ([]Row, error) {
	const q = `SELECT * FROM ZBOOK`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query ZBOOK: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read ZBOOK columns: %w", err)
	}
	titleIdx, metaIdx := -1, -1
	for i, c := range cols {
		switch c {
		case columnDisplayTitle:
			titleIdx = i
		case columnMetadata:
			metaIdx = i
		}
	}

	out := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan ZBOOK row: %w", err)
		}

		var r Row
		if titleIdx >= 0 {
			r.DisplayTitle = asString(values[titleIdx])
		}
		if metaIdx >= 0 {
			r.HasMetadata = true
			r.Metadata = asBytes(values[metaIdx])
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ZBOOK: %w", err)
	}
	return out, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	default:
		return nil
	}
}
