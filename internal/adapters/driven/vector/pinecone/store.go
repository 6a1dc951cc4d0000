// Package pinecone stores vectors in Pinecone serverless indexes over its
// REST API. The control plane manages indexes; each index then has its own
// data plane host for upserts and queries.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/ragbot/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultControlURL   = "https://api.pinecone.io"
	DefaultAPIVersion   = "2024-07"
	DefaultTimeout      = 30 * time.Second
	DefaultReadyTimeout = 2 * time.Minute
	DefaultPollInterval = 2 * time.Second
	DefaultBatchSize    = 100
	DefaultMaxRetries   = 3
)

// Config holds configuration for the Pinecone store.
type Config struct {
	// APIKey authenticates every request (required).
	APIKey string

	// Cloud and Region place new serverless indexes (default: aws, us-east-1).
	Cloud  string
	Region string

	// ControlURL is the index management API root.
	ControlURL string

	// APIVersion is sent as X-Pinecone-API-Version.
	APIVersion string

	// Timeout bounds one HTTP request.
	Timeout time.Duration

	// ReadyTimeout bounds how long EnsureIndex waits for a new index.
	ReadyTimeout time.Duration

	// PollInterval is the delay between readiness checks.
	PollInterval time.Duration

	// BatchSize is the number of vectors per upsert request.
	BatchSize int

	// MaxRetries is how often a rate-limited request is retried.
	MaxRetries int
}

// Store manages Pinecone indexes.
type Store struct {
	cfg     Config
	http    *http.Client
	control *ratelimit.Limiter
	data    *ratelimit.Limiter
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Store) {
		s.http = hc
	}
}

// WithLimiters replaces the control and data plane rate limiters.
func WithLimiters(control, data *ratelimit.Limiter) Option {
	return func(s *Store) {
		s.control = control
		s.data = data
	}
}

// indexModel is the control plane description of an index.
type indexModel struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

func (m indexModel) info() domain.IndexInfo {
	return domain.IndexInfo{
		Name:      m.Name,
		Dimension: m.Dimension,
		Metric:    m.Metric,
		Host:      m.Host,
		Ready:     m.Status.Ready,
	}
}

type createIndexRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Spec      struct {
		Serverless struct {
			Cloud  string `json:"cloud"`
			Region string `json:"region"`
		} `json:"serverless"`
	} `json:"spec"`
}

// NewStore creates a Pinecone store.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{Missing: []string{domain.EnvPineconeAPIKey}}
	}
	if cfg.Cloud == "" {
		cfg.Cloud = domain.DefaultCloud
	}
	if cfg.Region == "" {
		cfg.Region = domain.DefaultRegion
	}
	if cfg.ControlURL == "" {
		cfg.ControlURL = DefaultControlURL
	}
	cfg.ControlURL = strings.TrimRight(cfg.ControlURL, "/")
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	s := &Store{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		control: ratelimit.New(ratelimit.ServicePineconeControl),
		data:    ratelimit.New(ratelimit.ServicePineconeData),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListIndexes returns every index in the project.
func (s *Store) ListIndexes(ctx context.Context) ([]domain.IndexInfo, error) {
	var out struct {
		Indexes []indexModel `json:"indexes"`
	}
	if err := s.do(ctx, s.control, http.MethodGet, s.cfg.ControlURL+"/indexes", nil, &out, "list indexes"); err != nil {
		return nil, err
	}

	infos := make([]domain.IndexInfo, 0, len(out.Indexes))
	for _, m := range out.Indexes {
		infos = append(infos, m.info())
	}
	return infos, nil
}

// EnsureIndex creates a serverless cosine index when missing and waits
// until it reports ready.
func (s *Store) EnsureIndex(ctx context.Context, name string, dimensions int) (domain.IndexInfo, error) {
	if name == "" || dimensions <= 0 {
		return domain.IndexInfo{}, fmt.Errorf("%w: index name and positive dimensions required", domain.ErrInvalidInput)
	}

	model, err := s.describe(ctx, name)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		logger.Info("Creating Pinecone index %s (%d dimensions, %s/%s)", name, dimensions, s.cfg.Cloud, s.cfg.Region)
		if err := s.create(ctx, name, dimensions); err != nil && !IsConflict(err) {
			return domain.IndexInfo{}, err
		}
		model, err = s.waitReady(ctx, name)
		if err != nil {
			return domain.IndexInfo{}, err
		}
	default:
		return domain.IndexInfo{}, err
	}

	if model.Dimension != dimensions {
		return domain.IndexInfo{}, &domain.DimensionMismatchError{
			Expected: model.Dimension,
			Actual:   dimensions,
			Where:    "index " + name,
		}
	}
	if !model.Status.Ready {
		if model, err = s.waitReady(ctx, name); err != nil {
			return domain.IndexInfo{}, err
		}
	}
	return model.info(), nil
}

// Open resolves the index host and returns a data plane handle.
func (s *Store) Open(ctx context.Context, name string) (driven.VectorIndex, error) {
	model, err := s.describe(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
		}
		return nil, err
	}
	if model.Host == "" {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrIndexNotReady)
	}
	return &Index{
		store:      s,
		name:       name,
		dimensions: model.Dimension,
		baseURL:    hostURL(model.Host),
	}, nil
}

// DeleteIndex removes an index and all its vectors.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	endpoint := s.cfg.ControlURL + "/indexes/" + url.PathEscape(name)
	if err := s.do(ctx, s.control, http.MethodDelete, endpoint, nil, nil, "delete index"); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

func (s *Store) describe(ctx context.Context, name string) (indexModel, error) {
	var model indexModel
	endpoint := s.cfg.ControlURL + "/indexes/" + url.PathEscape(name)
	err := s.do(ctx, s.control, http.MethodGet, endpoint, nil, &model, "describe index")
	return model, err
}

func (s *Store) create(ctx context.Context, name string, dimensions int) error {
	req := createIndexRequest{Name: name, Dimension: dimensions, Metric: domain.DefaultMetric}
	req.Spec.Serverless.Cloud = s.cfg.Cloud
	req.Spec.Serverless.Region = s.cfg.Region
	return s.do(ctx, s.control, http.MethodPost, s.cfg.ControlURL+"/indexes", req, nil, "create index")
}

// waitReady polls the index description until it is ready or
// ReadyTimeout elapses.
func (s *Store) waitReady(ctx context.Context, name string) (indexModel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		model, err := s.describe(ctx, name)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			if ctx.Err() != nil {
				return indexModel{}, fmt.Errorf("index %s: %w", name, domain.ErrIndexNotReady)
			}
			return indexModel{}, err
		}
		if err == nil && model.Status.Ready {
			return model, nil
		}
		logger.Debug("Waiting for Pinecone index %s (state %s)", name, model.Status.State)

		select {
		case <-ctx.Done():
			return indexModel{}, fmt.Errorf("index %s: %w", name, domain.ErrIndexNotReady)
		case <-ticker.C:
		}
	}
}

// do sends one JSON request, retrying only on 429. A nil out discards the
// response body.
func (s *Store) do(ctx context.Context, limiter *ratelimit.Limiter, method, endpoint string, in, out any, op string) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		payload = b
	}

	for attempt := 0; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		retryAfter, err := s.send(ctx, method, endpoint, payload, out, op)
		if err == nil {
			return nil
		}
		if retryAfter < 0 || attempt >= s.cfg.MaxRetries {
			return err
		}

		logger.Warn("Pinecone rate limited on %s, backing off", op)
		limiter.Backoff(retryAfter)
	}
}

func (s *Store) send(ctx context.Context, method, endpoint string, payload []byte, out any, op string) (time.Duration, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return -1, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Api-Key", s.cfg.APIKey)
	req.Header.Set("X-Pinecone-API-Version", s.cfg.APIVersion)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return -1, fmt.Errorf("%s: send request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp, op)
		if resp.StatusCode == http.StatusTooManyRequests {
			return ratelimit.RetryAfter(resp.Header.Get("Retry-After")), apiErr
		}
		return -1, apiErr
	}

	if out == nil {
		return 0, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return -1, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return 0, nil
}

// hostURL turns the bare host Pinecone reports into a base URL.
func hostURL(host string) string {
	host = strings.TrimRight(host, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}
