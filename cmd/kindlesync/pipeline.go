package main

import (
	"context"
	"fmt"

	"kindlesync/internal/entity"
	"kindlesync/internal/ingest"
	"kindlesync/internal/library"
)

// pipeline runs whole jobs: read the input, then hand it to the
// synchronizer.
type pipeline struct {
	records  func(ctx context.Context) ([]entity.Book, error)
	sync     *ingest.Service
	backfill *ingest.Service
	csvPath  string
	opts     ingest.SyncOptions
}

func (p *pipeline) SyncLibrary(ctx context.Context) (*ingest.Run, error) {
	books, err := p.records(ctx)
	if err != nil {
		return nil, err
	}
	return p.sync.Sync(ctx, books, p.opts)
}

func (p *pipeline) BackfillFromCSV(ctx context.Context) (*ingest.Run, error) {
	mapping, err := readTitleToASIN(p.csvPath)
	if err != nil {
		return nil, err
	}
	return p.backfill.BackfillIdentifiers(ctx, mapping)
}

func readTitleToASIN(path string) (map[string]string, error) {
	f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	books, err := library.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return library.TitleToASIN(books), nil
}
