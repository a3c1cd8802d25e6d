package notion

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrTransport marks failures where no API response was received.
var ErrTransport = errors.New("notion: transport error")

// Error codes returned by the API.
const (
	CodeRateLimited            = "rate_limited"
	CodeInternalServerError    = "internal_server_error"
	CodeServiceUnavailable     = "service_unavailable"
	CodeConflictError          = "conflict_error"
	CodeDatabaseUnavailable    = "database_connection_unavailable"
	CodeGatewayTimeout         = "gateway_timeout"
	CodeObjectNotFound         = "object_not_found"
	CodeValidationError        = "validation_error"
	CodeUnauthorized           = "unauthorized"
	CodeRestrictedResource     = "restricted_resource"
	CodeInvalidRequest         = "invalid_request"
	CodeInvalidJSON            = "invalid_json"
	CodeMissingVersion         = "missing_version"
	CodeInvalidRequestURL      = "invalid_request_url"
	CodeUnsupportedContentType = "unsupported_content_type"
)

// Error represents a Notion API error response.
type Error struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// RetryAfter is the server-requested wait, when the response carried one.
	RetryAfter time.Duration `json:"-"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion: %s (%d): %s", e.Code, e.Status, e.Message)
}

var retryableCodes = map[string]bool{
	CodeRateLimited:         true,
	CodeInternalServerError: true,
	CodeServiceUnavailable:  true,
	CodeConflictError:       true,
	CodeDatabaseUnavailable: true,
	CodeGatewayTimeout:      true,
}

// IsRetryable reports whether err is a transient API or transport failure.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrTransport) {
		return true
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return retryableCodes[apiErr.Code] || apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
}

// RetryAfter returns the wait requested by a rate_limited response.
func RetryAfter(err error) (time.Duration, bool) {
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.RetryAfter <= 0 {
		return 0, false
	}
	if apiErr.Code != CodeRateLimited && apiErr.Status != http.StatusTooManyRequests {
		return 0, false
	}
	return apiErr.RetryAfter, true
}

// IsNotFound reports whether err is an object_not_found response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && (apiErr.Code == CodeObjectNotFound || apiErr.Status == http.StatusNotFound)
}

func parseRetryAfter(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
