package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"kindlesync/internal/catalog"
	"kindlesync/internal/httpx"
	"kindlesync/internal/ingest"
)

const maxRequestBytes = 1 << 20

func newServeCmd(a *app) *cobra.Command {
	var opts ingest.SyncOptions
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "server",
		Short:   "Serve job triggers, catalog views and metrics over HTTP",
		Long: `Start an HTTP server. POST /jobs/sync and POST /jobs/backfill run the
same work as the sync and backfill commands. Only one job runs at a time.
Jobs and the /v1/catalog views require the X-Internal-Secret header.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.RequireServer(); err != nil {
				return err
			}
			ctx := cmd.Context()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := ingest.NewMetrics(reg)

			syncSvc, closeSync, err := a.service(ctx, metrics)
			if err != nil {
				return err
			}
			defer closeSync()
			backfillSvc, closeBackfill, err := a.backfillService(ctx, metrics)
			if err != nil {
				return err
			}
			defer closeBackfill()
			_, index, err := a.catalog()
			if err != nil {
				return err
			}

			p := &pipeline{
				records:  a.records,
				sync:     syncSvc,
				backfill: backfillSvc,
				csvPath:  a.cfg.CSVPath,
				opts:     opts,
			}
			handler := a.routes(ctx, ingest.NewHTTPHandler(p), catalog.NewHTTPHandler(index), reg)
			return a.listen(ctx, handler)
		},
	}
	cmd.Flags().BoolVar(&opts.DedupTitle, "dedup-title", false, "also skip records whose title is already present")
	return cmd
}

func (a *app) routes(ctx context.Context, jobs *ingest.HTTPHandler, pages *catalog.HTTPHandler, reg *prometheus.Registry) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Throttle before the secret check so failed guesses are limited too.
	limiter := httpx.NewRateLimitMiddleware(ctx, a.cfg.Server.RateLimitRPS, 1)
	protect := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h, limiter.Middleware, httpx.RequireSecret(a.cfg.Server.Secret))
	}
	router.Handle("/jobs/sync", protect(postOnly(jobs.Sync)))
	router.Handle("/jobs/backfill", protect(postOnly(jobs.Backfill)))

	router.Handle("/v1/catalog/pages", protect(pages.ListPages))
	router.Handle("/v1/catalog/schema", protect(pages.GetSchema))

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(a.logger),
		httpx.RecoveryMiddleware(a.logger),
		httpx.SecurityHeadersMiddleware,
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
	)
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
			return
		}
		h(w, r)
	}
}

// listen serves until ctx is cancelled, then drains in-flight requests.
func (a *app) listen(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:        a.cfg.Server.Addr,
		Handler:     handler,
		ReadTimeout: 5 * time.Second,
		// Jobs can run for minutes; no write timeout.
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
