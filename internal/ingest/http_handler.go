package ingest

import (
	"context"
	"net/http"
	"sync"

	"kindlesync/internal/httpx"
)

// Pipeline runs whole jobs: reading the local library or export, then
// syncing.
type Pipeline interface {
	SyncLibrary(ctx context.Context) (*Run, error)
	BackfillFromCSV(ctx context.Context) (*Run, error)
}

// HTTPHandler triggers jobs over HTTP. One job runs at a time.
type HTTPHandler struct {
	pipeline Pipeline
	mu       sync.Mutex
}

func NewHTTPHandler(pipeline Pipeline) *HTTPHandler {
	return &HTTPHandler{pipeline: pipeline}
}

// Sync handles POST /jobs/sync
// @Summary Trigger a library sync
// @Description Read the local library and register new titles in the catalog
// @Tags jobs
// @Produce json
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Success 200 {object} httpx.SuccessResponse
// @Success 202 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /jobs/sync [post]
func (h *HTTPHandler) Sync(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.pipeline.SyncLibrary)
}

// Backfill handles POST /jobs/backfill
// @Summary Trigger an ASIN backfill
// @Description Fill blank ASINs in the catalog from the exported CSV
// @Tags jobs
// @Produce json
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /jobs/backfill [post]
func (h *HTTPHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.pipeline.BackfillFromCSV)
}

func (h *HTTPHandler) run(w http.ResponseWriter, r *http.Request, job func(context.Context) (*Run, error)) {
	if !h.mu.TryLock() {
		httpx.JSONError(w, r, http.StatusConflict, "RUN_IN_PROGRESS", "another job is running", nil)
		return
	}
	defer h.mu.Unlock()

	run, err := job(r.Context())
	if err != nil {
		var details []httpx.ErrorDetail
		if run != nil {
			details = []httpx.ErrorDetail{{Field: "run_id", Message: run.ID}}
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "JOB_FAILED", err.Error(), details)
		return
	}
	if run.Tally.Failed > 0 {
		httpx.JSONAccepted(w, r, run)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}
