// Package enrich completes a library record with public book metadata and a
// model-chosen classification before it is written to the catalog.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"kindlesync/internal/classify"
	"kindlesync/internal/entity"
	"kindlesync/internal/platform/googlebooks"
	"kindlesync/internal/retry"
)

// DefaultCacheSize bounds the title lookup cache.
const DefaultCacheSize = 512

// BooksClient looks a title up in a public metadata service.
type BooksClient interface {
	SearchByTitle(ctx context.Context, title string) (*googlebooks.SearchResponse, error)
}

// Classifier picks tags and a type from the request vocabularies.
type Classifier interface {
	Classify(ctx context.Context, req classify.Request) (classify.Result, error)
}

// Vocabulary holds the closed value sets a classification may use.
type Vocabulary struct {
	Tags  []string
	Types []string
}

func (v Vocabulary) Complete() bool { return len(v.Tags) > 0 && len(v.Types) > 0 }

// Result is the enriched record.
type Result struct {
	Book        entity.Book
	Description string
	Tags        []string
	Type        string
}

// lookup is a cached metadata answer. found is false when the service had no
// match, which is cached too.
type lookup struct {
	info  googlebooks.VolumeInfo
	found bool
}

type Enricher struct {
	books      BooksClient
	classifier Classifier
	policy     retry.Policy
	cache      *lru.Cache[string, lookup]
	logger     *slog.Logger
}

// New builds an Enricher. classifier may be nil, in which case records are
// never classified. Metadata lookups are retried only on transient failures.
func New(books BooksClient, classifier Classifier, policy retry.Policy, cacheSize int, logger *slog.Logger) (*Enricher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, lookup](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("enrich: create cache: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		books:      books,
		classifier: classifier,
		policy:     policy.With(googlebooks.IsTransient),
		cache:      cache,
		logger:     logger,
	}, nil
}

// Enrich fills an empty author or publisher from the first matching volume,
// captures its description and classifies the book. A metadata lookup that
// still fails after retries is returned as an error. A classification
// failure only leaves Tags and Type empty.
func (e *Enricher) Enrich(ctx context.Context, book entity.Book, vocab Vocabulary) (Result, error) {
	res := Result{Book: book, Tags: []string{}}

	meta, err := e.lookup(ctx, book.Title)
	if err != nil {
		return Result{}, err
	}
	if meta.found {
		if res.Book.Author == "" && len(meta.info.Authors) > 0 {
			res.Book.Author = strings.Join(meta.info.Authors, ", ")
		}
		if res.Book.Publisher == "" {
			res.Book.Publisher = meta.info.Publisher
		}
		res.Description = strings.TrimSpace(meta.info.Description)
	}

	if e.classifier == nil || !vocab.Complete() {
		return res, nil
	}
	class, err := e.classifier.Classify(ctx, classify.Request{
		Title:       book.Title,
		Description: res.Description,
		Tags:        vocab.Tags,
		Types:       vocab.Types,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		e.logger.Warn("classification failed", "title", book.Title, "error", err)
		return res, nil
	}
	if class.Tags != nil {
		res.Tags = class.Tags
	}
	res.Type = class.Type
	return res, nil
}

func (e *Enricher) lookup(ctx context.Context, title string) (lookup, error) {
	if l, ok := e.cache.Get(title); ok {
		return l, nil
	}
	resp, err := retry.Do(ctx, e.policy, "books lookup", func(ctx context.Context) (*googlebooks.SearchResponse, error) {
		return e.books.SearchByTitle(ctx, title)
	})
	if err != nil {
		return lookup{}, fmt.Errorf("enrich: look up %q: %w", title, err)
	}
	var l lookup
	if v, ok := resp.First(); ok {
		l = lookup{info: v.VolumeInfo, found: true}
	}
	e.cache.Add(title, l)
	return l, nil
}
