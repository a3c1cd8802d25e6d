package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kindlesync/internal/catalog"
	"kindlesync/internal/enrich"
	"kindlesync/internal/entity"
	"kindlesync/internal/retry"
)

// Enricher completes a record before it is written.
type Enricher interface {
	Enrich(ctx context.Context, book entity.Book, vocab enrich.Vocabulary) (enrich.Result, error)
}

type SyncOptions struct {
	// DedupTitle also treats records that carry an ASIN as duplicates when
	// their title is already in the catalog.
	DedupTitle bool
	// Limit processes only the first Limit records. Zero means all.
	Limit int
}

type Service struct {
	index    *catalog.Index
	pages    catalog.Repository
	enricher Enricher
	runs     Repository
	policy   retry.Policy
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the synchronizer. pages receives writes under policy;
// index serves all reads. runs and metrics may be nil.
func NewService(index *catalog.Index, pages catalog.Repository, enricher Enricher, runs Repository, policy retry.Policy, metrics *Metrics, logger *slog.Logger) *Service {
	if runs == nil {
		runs = NopRepo{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		index:    index,
		pages:    pages,
		enricher: enricher,
		runs:     runs,
		policy:   policy,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Sync creates a catalog page for every record not already present, in
// input order. Failures on single records are tallied and the batch goes
// on; only a failure to load the catalog or a cancelled context ends the run
// early.
func (s *Service) Sync(ctx context.Context, records []entity.Book, opts SyncOptions) (*Run, error) {
	return s.sync(ctx, KindSync, records, opts)
}

// Register syncs a single record with title deduplication.
func (s *Service) Register(ctx context.Context, book entity.Book) (*Run, error) {
	return s.sync(ctx, KindRegister, []entity.Book{book}, SyncOptions{DedupTitle: true})
}

func (s *Service) sync(ctx context.Context, kind Kind, records []entity.Book, opts SyncOptions) (run *Run, err error) {
	run, err = s.start(ctx, kind)
	if err != nil {
		return nil, err
	}
	defer func() { s.finish(ctx, run, err) }()

	snap, err := s.index.Load(ctx)
	if err != nil {
		return run, fmt.Errorf("load catalog: %w", err)
	}
	vocab := enrich.Vocabulary{Tags: snap.Tags, Types: snap.Types}

	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	for i, book := range records {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		run.Tally.Seen++
		log := s.logger.With("n", i+1, "of", len(records), "title", book.Title)

		if strings.TrimSpace(book.Title) == "" {
			log.Warn("record has no title; not registered", "asin", book.ASIN)
			run.Tally.Skipped++
			s.metrics.record(kind, OutcomeSkipped)
			continue
		}

		if reason, dup := snap.Duplicate(book, opts.DedupTitle); dup {
			log.Info("already in catalog", "match", reason)
			run.Tally.Skipped++
			s.metrics.record(kind, OutcomeSkipped)
			continue
		}

		enriched, err := s.enricher.Enrich(ctx, book, vocab)
		if err != nil {
			if ctx.Err() != nil {
				return run, ctx.Err()
			}
			log.Error("metadata lookup failed", "error", err)
			run.fail(book.Title, err)
			s.metrics.record(kind, OutcomeFailed)
			continue
		}

		page := catalog.NewPage{
			Book:        enriched.Book,
			Tags:        enriched.Tags,
			Type:        enriched.Type,
			Description: enriched.Description,
		}
		id, err := retry.Do(ctx, s.policy, "create page", func(ctx context.Context) (string, error) {
			return s.pages.CreatePage(ctx, page)
		})
		if err != nil {
			if ctx.Err() != nil {
				return run, ctx.Err()
			}
			log.Error("create page failed", "error", err)
			run.fail(book.Title, err)
			s.metrics.record(kind, OutcomeFailed)
			continue
		}

		snap.Add(enriched.Book)
		run.Tally.Created++
		s.metrics.record(kind, OutcomeCreated)
		log.Info("registered", "page", id, "tags", strings.Join(enriched.Tags, ","), "type", enriched.Type)
	}
	return run, nil
}

// BackfillIdentifiers writes the ASIN of every catalog page whose ASIN is
// blank and whose title is in titleToASIN. Pages that already carry an
// ASIN are never touched.
func (s *Service) BackfillIdentifiers(ctx context.Context, titleToASIN map[string]string) (run *Run, err error) {
	run, err = s.start(ctx, KindBackfill)
	if err != nil {
		return nil, err
	}
	defer func() { s.finish(ctx, run, err) }()

	pages, err := s.index.PagesMissingASIN(ctx)
	if err != nil {
		return run, fmt.Errorf("list pages missing ASIN: %w", err)
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		run.Tally.Seen++
		asin := strings.TrimSpace(titleToASIN[p.Title])
		if p.ASIN != "" || asin == "" {
			run.Tally.Skipped++
			s.metrics.record(KindBackfill, OutcomeSkipped)
			continue
		}

		err := s.policy.Do(ctx, "update ASIN", func(ctx context.Context) error {
			return s.pages.UpdateASIN(ctx, p.ID, asin)
		})
		if err != nil {
			if ctx.Err() != nil {
				return run, ctx.Err()
			}
			s.logger.Error("update ASIN failed", "title", p.Title, "page", p.ID, "error", err)
			run.fail(p.Title, err)
			s.metrics.record(KindBackfill, OutcomeFailed)
			continue
		}
		run.Tally.Updated++
		s.metrics.record(KindBackfill, OutcomeUpdated)
		s.logger.Info("ASIN filled", "title", p.Title, "asin", asin)
	}
	return run, nil
}

// SetASIN writes asin on the page titled title. A page that already has an
// ASIN is left alone unless force is set.
func (s *Service) SetASIN(ctx context.Context, title, asin string, force bool) (catalog.Page, error) {
	asin = strings.TrimSpace(asin)
	if asin == "" {
		return catalog.Page{}, errors.New("asin must not be empty")
	}
	page, err := s.index.FindByTitle(ctx, title)
	if err != nil {
		return catalog.Page{}, err
	}
	if page.ASIN != "" && !force {
		return page, fmt.Errorf("%w: %q has %s", catalog.ErrASINPresent, title, page.ASIN)
	}
	err = s.policy.Do(ctx, "update ASIN", func(ctx context.Context) error {
		return s.pages.UpdateASIN(ctx, page.ID, asin)
	})
	if err != nil {
		return page, err
	}
	page.ASIN = asin
	s.logger.Info("ASIN set", "title", title, "asin", asin)
	return page, nil
}

func (s *Service) start(ctx context.Context, kind Kind) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    StatusRunning,
		StartedAt: s.now(),
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

func (s *Service) finish(ctx context.Context, run *Run, err error) {
	now := s.now()
	run.FinishedAt = &now
	if err != nil && run.Error == "" {
		run.Error = err.Error()
	}
	if run.Error != "" {
		run.Status = StatusFailed
	} else {
		run.Status = StatusCompleted
	}
	s.metrics.observe(run)

	// The run context may be cancelled already; the ledger write must not be.
	if updateErr := s.runs.UpdateRun(context.WithoutCancel(ctx), run); updateErr != nil {
		s.logger.Error("failed to update run", "run", run.ID, "error", updateErr)
	}
	s.logger.Info("run finished",
		"run", run.ID,
		"kind", run.Kind,
		"status", run.Status,
		"created", run.Tally.Created,
		"updated", run.Tally.Updated,
		"skipped", run.Tally.Skipped,
		"failed", run.Tally.Failed,
	)
}
