package catalog

import (
	"context"
	"errors"
	"log/slog"

	"kindlesync/internal/retry"
)

var errStop = errors.New("stop")

// Index answers membership questions about the remote catalog. Every
// remote read goes through the retry policy; exhausted or permanent errors
// are returned to the caller.
type Index struct {
	repo   Repository
	props  PropertyNames
	policy retry.Policy
	logger *slog.Logger
}

func NewIndex(repo Repository, props PropertyNames, policy retry.Policy, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{repo: repo, props: props, policy: policy, logger: logger}
}

// EachPage calls fn for every page matching q, following cursors until the
// result set is exhausted. fn returning an error stops the scan.
func (x *Index) EachPage(ctx context.Context, q PageQuery, fn func(Page) error) error {
	for {
		batch, err := retry.Do(ctx, x.policy, "query catalog", func(ctx context.Context) (PageBatch, error) {
			return x.repo.QueryPages(ctx, q)
		})
		if err != nil {
			return err
		}
		for _, p := range batch.Pages {
			if err := fn(p); err != nil {
				return err
			}
		}
		if !batch.HasMore || batch.NextCursor == "" {
			return nil
		}
		q.Cursor = batch.NextCursor
	}
}

func (x *Index) collect(ctx context.Context, q PageQuery) ([]Page, error) {
	pages := []Page{}
	err := x.EachPage(ctx, q, func(p Page) error {
		pages = append(pages, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// Pages returns every page of the catalog.
func (x *Index) Pages(ctx context.Context) ([]Page, error) {
	return x.collect(ctx, PageQuery{})
}

// PagesMissingASIN returns pages whose ASIN property is blank.
func (x *Index) PagesMissingASIN(ctx context.Context) ([]Page, error) {
	return x.collect(ctx, PageQuery{MissingASIN: true})
}

// FindByTitle returns the first page titled exactly title.
func (x *Index) FindByTitle(ctx context.Context, title string) (Page, error) {
	var found *Page
	err := x.EachPage(ctx, PageQuery{TitleEquals: title}, func(p Page) error {
		if p.Title != title {
			return nil
		}
		found = &p
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return Page{}, err
	}
	if found == nil {
		return Page{}, ErrNotFound
	}
	return *found, nil
}

// LoadExistingIdentifiers returns the set of non-blank ASINs in the catalog.
func (x *Index) LoadExistingIdentifiers(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	err := x.EachPage(ctx, PageQuery{}, func(p Page) error {
		if p.ASIN != "" {
			ids[p.ASIN] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// LoadExistingTitles returns the set of page titles in the catalog.
func (x *Index) LoadExistingTitles(ctx context.Context) (map[string]struct{}, error) {
	titles := make(map[string]struct{})
	err := x.EachPage(ctx, PageQuery{}, func(p Page) error {
		if p.Title != "" {
			titles[p.Title] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// Schema returns the catalog schema.
func (x *Index) Schema(ctx context.Context) (Schema, error) {
	return retry.Do(ctx, x.policy, "read catalog schema", x.repo.Schema)
}

// LoadAllowedValues returns the options of a select-like property. A missing
// property yields no values.
func (x *Index) LoadAllowedValues(ctx context.Context, property string) ([]string, error) {
	schema, err := x.Schema(ctx)
	if err != nil {
		return nil, err
	}
	return schema.Options(property), nil
}

// Load builds a Snapshot with one scan of the catalog plus one schema read.
func (x *Index) Load(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot(nil, nil)
	err := x.EachPage(ctx, PageQuery{}, func(p Page) error {
		snap.addPage(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	schema, err := x.Schema(ctx)
	if err != nil {
		return nil, err
	}
	snap.Tags = schema.Options(x.props.Tags)
	snap.Types = schema.Options(x.props.Type)
	if len(snap.Tags) == 0 {
		x.logger.Warn("catalog tag property has no options; classification disabled", "property", x.props.Tags)
	}
	if len(snap.Types) == 0 {
		x.logger.Warn("catalog type property has no options; classification disabled", "property", x.props.Type)
	}

	x.logger.Info("catalog loaded",
		"identifiers", len(snap.identifiers),
		"titles", len(snap.titles),
		"tags", len(snap.Tags),
		"types", len(snap.Types),
	)
	return snap, nil
}
