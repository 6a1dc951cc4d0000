// Package airtable lists table rows through the Airtable REST API.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragbot/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.RecordSource = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.airtable.com/v0"
	DefaultTimeout    = 30 * time.Second
	DefaultPageSize   = 100
	DefaultMaxRetries = 3
)

// Config holds configuration for the Airtable client.
type Config struct {
	// APIKey is a personal access token (required).
	APIKey string

	// BaseID identifies the base, e.g. "appXXXXXXXXXXXXXX" (required).
	BaseID string

	// BaseURL is the API root (default: https://api.airtable.com/v0).
	BaseURL string

	// Timeout bounds one page request (default: 30s).
	Timeout time.Duration

	// MaxRetries is how often a rate-limited page is retried (default: 3).
	MaxRetries int
}

// Client reads records from one Airtable base.
type Client struct {
	http       *http.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	apiKey     string
	baseID     string
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLimiter replaces the rate limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// listResponse is one page of GET /{base}/{table}.
type listResponse struct {
	Records []struct {
		ID          string         `json:"id"`
		CreatedTime string         `json:"createdTime"`
		Fields      map[string]any `json:"fields"`
	} `json:"records"`
	Offset string `json:"offset"`
}

// errorResponse is the Airtable error envelope. Error is either an object
// or, for some 404s, a bare string.
type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// NewClient creates an Airtable client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" || cfg.BaseID == "" {
		var missing []string
		if cfg.APIKey == "" {
			missing = append(missing, domain.EnvAirtableAPIKey)
		}
		if cfg.BaseID == "" {
			missing = append(missing, domain.EnvAirtableBaseID)
		}
		return nil, &domain.ConfigurationError{Missing: missing}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	c := &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		limiter:    ratelimit.New(ratelimit.ServiceAirtable),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		baseID:     cfg.BaseID,
		maxRetries: cfg.MaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseID returns the base identifier used in record links.
func (c *Client) BaseID() string {
	return c.baseID
}

// ListRecords returns every record of table, following offsets until the
// last page.
func (c *Client) ListRecords(ctx context.Context, table string) ([]domain.Record, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: table name is required", domain.ErrInvalidInput)
	}

	var (
		records []domain.Record
		offset  string
		pages   int
	)
	for {
		page, err := c.fetchPage(ctx, table, offset)
		if err != nil {
			return nil, err
		}
		pages++

		for _, r := range page.Records {
			rec := domain.Record{ID: r.ID, Fields: r.Fields}
			if t, err := time.Parse(time.RFC3339, r.CreatedTime); err == nil {
				rec.CreatedAt = t
			}
			records = append(records, rec)
		}

		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	logger.Debug("Fetched %d records from %s in %d pages", len(records), table, pages)
	return records, nil
}

// fetchPage gets one page, retrying only on 429.
func (c *Client) fetchPage(ctx context.Context, table, offset string) (*listResponse, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, retryAfter, err := c.doList(ctx, table, offset)
		if err == nil {
			return page, nil
		}
		if retryAfter < 0 || attempt >= c.maxRetries {
			return nil, err
		}

		logger.Warn("Airtable rate limited on %s, backing off", table)
		c.limiter.Backoff(retryAfter)
	}
}

// doList performs one request. retryAfter is negative when the error is not
// worth retrying.
func (c *Client) doList(ctx context.Context, table, offset string) (*listResponse, time.Duration, error) {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(DefaultPageSize))
	if offset != "" {
		q.Set("offset", offset)
	}
	endpoint := c.baseURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, -1, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, -1, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeError(resp, table)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, ratelimit.RetryAfter(resp.Header.Get("Retry-After")), apiErr
		}
		return nil, -1, apiErr
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, -1, fmt.Errorf("decode response: %w", err)
	}
	return &page, 0, nil
}

func decodeError(resp *http.Response, table string) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Table: table}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var env errorResponse
	if json.Unmarshal(body, &env) != nil || len(env.Error) == 0 {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if json.Unmarshal(env.Error, &detail) == nil {
		apiErr.Type = detail.Type
		apiErr.Message = detail.Message
		return apiErr
	}

	var code string
	if json.Unmarshal(env.Error, &code) == nil {
		apiErr.Type = code
	}
	return apiErr
}
