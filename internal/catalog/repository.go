package catalog

import (
	"context"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=catalog

// Repository is the remote store. Implementations make a single attempt per
// call; retries belong to the caller.
type Repository interface {
	QueryPages(ctx context.Context, q PageQuery) (PageBatch, error)
	Schema(ctx context.Context) (Schema, error)
	CreatePage(ctx context.Context, p NewPage) (string, error)
	UpdateASIN(ctx context.Context, pageID, asin string) error
}

// PageQuery selects one batch of pages.
type PageQuery struct {
	Cursor      string
	MissingASIN bool
	TitleEquals string
}

// PageBatch is one page of query results.
type PageBatch struct {
	Pages      []Page
	NextCursor string
	HasMore    bool
}
