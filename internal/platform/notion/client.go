// Package notion is a small client for the parts of the Notion API used to
// keep a book database: database schema reads, database queries and page
// creation and updates.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Notion API base URL.
	BaseURL = "https://api.notion.com/v1"
	// APIVersion is the pinned Notion API version.
	APIVersion = "2022-06-28"
	// DefaultRPS matches Notion's documented average request limit.
	DefaultRPS = 3
	// PageSize is the largest page the query endpoint returns.
	PageSize = 100
)

type Config struct {
	Token   string
	BaseURL string
	// RPS caps outgoing requests per second. Zero uses DefaultRPS; negative
	// disables throttling.
	RPS        float64
	HTTPClient *http.Client
}

// Client is a rate-limited Notion API client.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = BaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Limit(cfg.RPS)
	switch {
	case cfg.RPS == 0:
		limit = DefaultRPS
	case cfg.RPS < 0:
		limit = rate.Inf
	}
	return &Client{
		token:      cfg.Token,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// do performs one HTTP request. Failures before a response arrives wrap
// ErrTransport; API failures are *Error.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp, respBody)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("failed to parse %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response, body []byte) error {
	apiErr := &Error{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr = &Error{Message: strings.TrimSpace(string(body))}
	}
	apiErr.Status = resp.StatusCode
	if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
		apiErr.RetryAfter = d
	}
	return apiErr
}

// GetDatabase retrieves a database and its property schema.
func (c *Client) GetDatabase(ctx context.Context, id string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/databases/"+id, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// QueryOptions defines options for querying a database.
type QueryOptions struct {
	Filter      any    `json:"filter,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// QueryDatabase fetches one page of results.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, opts *QueryOptions) (*QueryResponse, error) {
	if opts == nil {
		opts = &QueryOptions{}
	}
	if opts.PageSize == 0 {
		opts.PageSize = PageSize
	}

	var resp QueryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", opts, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePageRequest is the body of POST /pages.
type CreatePageRequest struct {
	Parent     Parent                   `json:"parent"`
	Properties map[string]PropertyValue `json:"properties"`
	Children   []Block                  `json:"children,omitempty"`
}

func (c *Client) CreatePage(ctx context.Context, req *CreatePageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePageRequest is the body of PATCH /pages/{id}. Only the listed
// properties change.
type UpdatePageRequest struct {
	Properties map[string]PropertyValue `json:"properties"`
}

func (c *Client) UpdatePage(ctx context.Context, id string, req *UpdatePageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPatch, "/pages/"+id, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Ping checks the token against the users/me endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var me struct {
		Object string `json:"object"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &me); err != nil {
		return err
	}
	if me.Object != "user" {
		return errors.New("unexpected users/me response")
	}
	return nil
}
