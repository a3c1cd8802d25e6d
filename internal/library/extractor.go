package library

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"kindlesync/internal/entity"
	"kindlesync/internal/platform/nskeyed"
)

// Attribute paths inside the resolved sync metadata.
var (
	pathTitle           = []string{"attributes", "title"}
	pathAuthor          = []string{"attributes", "authors", "author"}
	pathPublisher       = []string{"attributes", "publishers", "publisher"}
	pathASIN            = []string{"attributes", "ASIN"}
	pathContentTag      = []string{"attributes", "content_tags", "tag"}
	pathPurchaseDate    = []string{"attributes", "purchase_date"}
	pathPublicationDate = []string{"attributes", "publication_date"}
)

// NSDate stores seconds relative to this instant.
var appleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

type Extractor struct {
	src    Source
	logger *slog.Logger
}

func NewExtractor(src Source, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{src: src, logger: logger}
}

// Extract returns one record per library row, in table order. Rows whose
// metadata cannot be decoded keep their display title and empty fields.
func (e *Extractor) Extract(ctx context.Context) ([]entity.Book, error) {
	rows, err := e.src.Rows(ctx)
	if err != nil {
		return nil, err
	}

	books := make([]entity.Book, 0, len(rows))
	missingColumn := false
	for i, row := range rows {
		if !row.HasMetadata {
			missingColumn = true
		}
		books = append(books, e.record(i, row))
	}
	if missingColumn {
		e.logger.Warn("library has no metadata column; only titles extracted", "column", columnMetadata)
	}
	return books, nil
}

func (e *Extractor) record(i int, row Row) entity.Book {
	b := entity.Book{Title: row.DisplayTitle}
	if len(row.Metadata) == 0 {
		return b
	}

	meta, ok := nskeyed.Resolve(row.Metadata)
	if !ok {
		e.logger.Debug("metadata not decodable", "row", i, "title", row.DisplayTitle)
		return b
	}
	return Project(row.DisplayTitle, meta)
}

// Project builds a record from resolved metadata. displayTitle wins over the
// metadata title when non-empty.
func Project(displayTitle string, meta nskeyed.Value) entity.Book {
	b := entity.Book{
		Title:           displayTitle,
		Author:          textAt(meta, pathAuthor),
		Publisher:       textAt(meta, pathPublisher),
		ASIN:            textAt(meta, pathASIN),
		ContentTag:      textAt(meta, pathContentTag),
		PurchaseDate:    dateAt(meta, pathPurchaseDate),
		PublicationDate: dateAt(meta, pathPublicationDate),
	}
	if b.Title == "" {
		b.Title = textAt(meta, pathTitle)
	}
	return b
}

func textAt(meta nskeyed.Value, path []string) string {
	v, ok := meta.Lookup(path...)
	if !ok {
		return ""
	}
	s, _ := v.Text()
	return s
}

// dateAt accepts plain strings, plist dates and archived NSDate objects.
func dateAt(meta nskeyed.Value, path []string) string {
	v, ok := meta.Lookup(path...)
	if !ok {
		return ""
	}
	if raw, ok := v.Scalar(); ok {
		if t, ok := raw.(time.Time); ok {
			return t.UTC().Format(time.RFC3339)
		}
	}
	if secs, ok := v.Get("NS.time"); ok {
		if f, ok := asFloat(secs); ok {
			nanos := time.Duration(f * float64(time.Second))
			return appleEpoch.Add(nanos).UTC().Format(time.RFC3339)
		}
	}
	s, _ := v.Text()
	return s
}

func asFloat(v nskeyed.Value) (float64, bool) {
	raw, ok := v.Scalar()
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
