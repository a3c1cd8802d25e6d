package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindlesync/internal/catalog"
	"kindlesync/internal/entity"
	"kindlesync/internal/ingest"
	"kindlesync/internal/library"
	"kindlesync/internal/retry"
)

func instantPolicy() retry.Policy {
	p := retry.Default()
	p.MaxAttempts = 2
	p.Sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return p
}

func writeExport(t *testing.T, books ...entity.Book) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, library.WriteCSV(f, books))
	require.NoError(t, f.Close())
	return path
}

func TestPipeline_BackfillFromCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := catalog.NewMockRepository(ctrl)
	index := catalog.NewIndex(repo, catalog.DefaultPropertyNames(), instantPolicy(), nil)
	svc := ingest.NewService(index, repo, nil, nil, instantPolicy(), nil, nil)

	repo.EXPECT().QueryPages(gomock.Any(), catalog.PageQuery{MissingASIN: true}).Return(catalog.PageBatch{
		Pages: []catalog.Page{{ID: "p1", Title: "Dune"}, {ID: "p2", Title: "Unknown"}},
	}, nil)
	repo.EXPECT().UpdateASIN(gomock.Any(), "p1", "B000000001").Return(nil)

	p := &pipeline{
		backfill: svc,
		csvPath: writeExport(t,
			entity.Book{Title: "Dune", ASIN: "B000000001"},
			entity.Book{Title: "Emma"},
		),
	}

	run, err := p.BackfillFromCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ingest.Tally{Seen: 2, Updated: 1, Skipped: 1}, run.Tally)
	assert.Equal(t, ingest.StatusCompleted, run.Status)
}

func TestPipeline_BackfillFromCSV_MissingExport(t *testing.T) {
	p := &pipeline{csvPath: filepath.Join(t.TempDir(), "absent.csv")}

	run, err := p.BackfillFromCSV(context.Background())
	assert.Nil(t, run)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_SyncLibrary_ReadError(t *testing.T) {
	readErr := errors.New("library locked")
	p := &pipeline{
		records: func(ctx context.Context) ([]entity.Book, error) { return nil, readErr },
	}

	run, err := p.SyncLibrary(context.Background())
	assert.Nil(t, run)
	assert.ErrorIs(t, err, readErr)
}
