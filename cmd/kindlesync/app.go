package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"kindlesync/internal/catalog"
	"kindlesync/internal/classify"
	"kindlesync/internal/config"
	"kindlesync/internal/enrich"
	"kindlesync/internal/entity"
	"kindlesync/internal/ingest"
	"kindlesync/internal/library"
	"kindlesync/internal/logging"
	"kindlesync/internal/platform/claude"
	"kindlesync/internal/platform/gemini"
	"kindlesync/internal/platform/googlebooks"
	"kindlesync/internal/platform/notion"
	"kindlesync/internal/retry"
)

// app carries what every command shares: configuration, the logger and
// lazily built clients.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	logClose io.Closer

	// notionBaseURL and booksBaseURL point clients at test servers.
	notionBaseURL string
	booksBaseURL  string
	now           func() time.Time
}

func (a *app) init() error {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	a.cfg, a.logger, a.logClose = cfg, logger, closer
	if a.now == nil {
		a.now = time.Now
	}
	return nil
}

func (a *app) close() {
	if a.logClose != nil {
		_ = a.logClose.Close()
	}
}

func (a *app) policy() retry.Policy {
	p := retry.Default()
	p.MaxAttempts = a.cfg.RetryMaxAttempts
	p.Logger = a.logger
	return p
}

func (a *app) notionPolicy() retry.Policy {
	p := a.policy().With(notion.IsRetryable)
	p.RetryAfter = notion.RetryAfter
	return p
}

func (a *app) propertyNames() catalog.PropertyNames {
	p := a.cfg.Notion.Properties
	return catalog.PropertyNames{
		Title:           p.Title,
		Author:          p.Author,
		Publisher:       p.Publisher,
		ASIN:            p.ASIN,
		PurchaseDate:    p.PurchaseDate,
		PublicationDate: p.PublicationDate,
		Tags:            p.Tags,
		Type:            p.Type,
	}
}

// catalog returns the Notion-backed repository and its index.
func (a *app) catalog() (*catalog.NotionRepo, *catalog.Index, error) {
	if err := a.cfg.RequireNotion(); err != nil {
		return nil, nil, err
	}
	client := notion.NewClient(notion.Config{
		Token:   a.cfg.Notion.Token,
		BaseURL: a.notionBaseURL,
		RPS:     a.cfg.Notion.RPS,
	})
	repo := catalog.NewNotionRepo(client, a.cfg.Notion.DatabaseID, a.propertyNames())
	return repo, catalog.NewIndex(repo, a.propertyNames(), a.notionPolicy(), a.logger), nil
}

// readLibrary extracts every record from the local database.
func (a *app) readLibrary(ctx context.Context) ([]entity.Book, error) {
	src, err := library.OpenSQLite(a.cfg.KindleDBPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return library.NewExtractor(src, a.logger).Extract(ctx)
}

func (a *app) filterOptions() (library.FilterOptions, error) {
	opts := library.FilterOptions{ExcludeTags: a.cfg.ExcludeContentTags}
	if a.cfg.PurchaseDateSince != "" {
		since, err := library.ParseSince(a.cfg.PurchaseDateSince, a.now())
		if err != nil {
			return opts, fmt.Errorf("PURCHASE_DATE_SINCE: %w", err)
		}
		opts.Since = &since
	}
	return opts, nil
}

// records returns the filtered library.
func (a *app) records(ctx context.Context) ([]entity.Book, error) {
	opts, err := a.filterOptions()
	if err != nil {
		return nil, err
	}
	all, err := a.readLibrary(ctx)
	if err != nil {
		return nil, err
	}
	kept := library.Filter(all, opts)
	a.logger.Info("library read", "rows", len(all), "kept", len(kept))
	return kept, nil
}

// generator builds the configured text-generation backend, or nil when
// classification is off.
func (a *app) generator(ctx context.Context) (classify.Generator, error) {
	e := a.cfg.Enrichment
	switch e.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, gemini.Config{APIKey: e.GeminiAPIKey, Model: e.GeminiModel})
	case config.ProviderAnthropic:
		return claude.NewClient(claude.Config{APIKey: e.AnthropicAPIKey, Model: e.AnthropicModel})
	default:
		return nil, nil
	}
}

func (a *app) enricher(ctx context.Context) (*enrich.Enricher, error) {
	if err := a.cfg.RequireEnrichment(); err != nil {
		return nil, err
	}
	gen, err := a.generator(ctx)
	if err != nil {
		return nil, err
	}
	var classifier enrich.Classifier
	if gen != nil {
		classifier = classify.New(gen, a.policy(), a.logger)
	} else {
		a.logger.Warn("no classifier configured; pages are created without tags or type")
	}
	books := googlebooks.NewClient(googlebooks.Config{
		APIKey:  a.cfg.Enrichment.GoogleBooksAPIKey,
		BaseURL: a.booksBaseURL,
	})
	return enrich.New(books, classifier, a.policy(), a.cfg.Enrichment.CacheSize, a.logger)
}

// ledger opens the run history store. Without DB_DSN runs are not kept.
func (a *app) ledger(ctx context.Context) (ingest.Repository, func(), error) {
	if a.cfg.Ledger.DSN == "" {
		return ingest.NopRepo{}, func() {}, nil
	}
	if err := a.cfg.RequireLedger(); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, a.cfg.Ledger.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping ledger: %w", err)
	}
	return ingest.NewPostgresRepo(pool), pool.Close, nil
}

// service wires the synchronizer. The returned func releases the ledger.
func (a *app) service(ctx context.Context, metrics *ingest.Metrics) (*ingest.Service, func(), error) {
	repo, index, err := a.catalog()
	if err != nil {
		return nil, nil, err
	}
	enricher, err := a.enricher(ctx)
	if err != nil {
		return nil, nil, err
	}
	runs, closeRuns, err := a.ledger(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := ingest.NewService(index, repo, enricher, runs, a.notionPolicy(), metrics, a.logger)
	return svc, closeRuns, nil
}

// backfillService wires the synchronizer for ASIN updates, which never
// enrich.
func (a *app) backfillService(ctx context.Context, metrics *ingest.Metrics) (*ingest.Service, func(), error) {
	repo, index, err := a.catalog()
	if err != nil {
		return nil, nil, err
	}
	runs, closeRuns, err := a.ledger(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ingest.NewService(index, repo, nil, runs, a.notionPolicy(), metrics, a.logger), closeRuns, nil
}

func openCSV(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	return f, nil
}
