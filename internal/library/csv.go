package library

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"kindlesync/internal/entity"
)

// DefaultCSVPath is where extracted records are written unless told otherwise.
const DefaultCSVPath = "cleaned_result.csv"

var csvHeader = []string{"title", "author", "publisher", "asin", "content_tag", "purchase_date", "publication_date"}

func WriteCSV(w io.Writer, books []entity.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range books {
		rec := []string{b.Title, b.Author, b.Publisher, b.ASIN, b.ContentTag, b.PurchaseDate, b.PublicationDate}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads records written by WriteCSV. Columns are matched by header
// name; unknown columns are ignored and a missing title column is an error.
func ReadCSV(r io.Reader) ([]entity.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []entity.Book{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := idx["title"]; !ok {
		return nil, fmt.Errorf("csv has no title column")
	}

	books := []entity.Book{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		books = append(books, entity.Book{
			Title:           field("title"),
			Author:          field("author"),
			Publisher:       field("publisher"),
			ASIN:            field("asin"),
			ContentTag:      field("content_tag"),
			PurchaseDate:    field("purchase_date"),
			PublicationDate: field("publication_date"),
		})
	}
	return books, nil
}

// TitleToASIN maps titles to identifiers for records carrying both. A later
// row with the same title replaces an earlier one.
func TitleToASIN(books []entity.Book) map[string]string {
	m := make(map[string]string)
	for _, b := range books {
		if b.Title == "" || b.ASIN == "" {
			continue
		}
		m[b.Title] = b.ASIN
	}
	return m
}
