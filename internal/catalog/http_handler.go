package catalog

import (
	"net/http"

	"kindlesync/internal/httpx"
)

// HTTPHandler exposes read-only catalog views.
type HTTPHandler struct {
	index *Index
}

func NewHTTPHandler(index *Index) *HTTPHandler {
	return &HTTPHandler{index: index}
}

// ListPages handles GET /v1/catalog/pages
// @Summary List catalog pages
// @Tags catalog
// @Produce json
// @Param missing_asin query bool false "Only pages whose ASIN is blank"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/catalog/pages [get]
func (h *HTTPHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
		return
	}

	var (
		pages []Page
		err   error
	)
	switch r.URL.Query().Get("missing_asin") {
	case "", "false", "0":
		pages, err = h.index.Pages(r.Context())
	case "true", "1":
		pages, err = h.index.PagesMissingASIN(r.Context())
	default:
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid query parameters",
			[]httpx.ErrorDetail{{Field: "missing_asin", Message: "must be a boolean"}})
		return
	}
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadGateway, "CATALOG_UNAVAILABLE", err.Error(), nil)
		return
	}
	httpx.JSONSuccess(w, r, pages, map[string]interface{}{"total": len(pages)})
}

// GetSchema handles GET /v1/catalog/schema
// @Summary Show the catalog schema
// @Tags catalog
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/catalog/schema [get]
func (h *HTTPHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
		return
	}
	schema, err := h.index.Schema(r.Context())
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadGateway, "CATALOG_UNAVAILABLE", err.Error(), nil)
		return
	}
	httpx.JSONSuccess(w, r, schema, nil)
}
