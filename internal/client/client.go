// Package client fetches review logs, statistics and filter options from the
// review backend over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/sirupsen/logrus"
)

// Endpoint paths of the review backend.
const (
	LogsPath          = "/api/review/logs"
	StatsPath         = "/api/review/stats"
	FilterOptionsPath = "/api/review/filter-options"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 32 << 20

// Client is the HTTP implementation of contract.ReviewFetcher.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

var _ contract.ReviewFetcher = &Client{} // Compile-time check

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = contract.DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = contract.NewDiscardLogger()
	}
	return c
}

// FetchLogs requests the review events matching q.
func (c *Client) FetchLogs(ctx context.Context, q schema.Query) (schema.LogsResponse, error) {
	var resp schema.LogsResponse
	err := c.get(ctx, "logs", LogsPath, q, &resp)
	return resp, err
}

// FetchStats requests the aggregate statistics matching q.
func (c *Client) FetchStats(ctx context.Context, q schema.Query) (schema.StatsResponse, error) {
	var resp schema.StatsResponse
	err := c.get(ctx, "stats", StatsPath, q, &resp)
	return resp, err
}

// FetchFilterOptions requests the known authors and project names.
func (c *Client) FetchFilterOptions(ctx context.Context, q schema.Query) (schema.FilterOptionsResponse, error) {
	var resp schema.FilterOptionsResponse
	err := c.get(ctx, "filter options", FilterOptionsPath, q, &resp)
	return resp, err
}

// envelope picks the error field out of any response body.
type envelope struct {
	Error any `json:"error"`
}

// get performs one request and decodes the body into out. A truthy error
// field fails the request whatever the status code; otherwise a non-2xx
// status or an undecodable body is a transport failure.
func (c *Client) get(ctx context.Context, op, path string, q schema.Query, out any) error {
	target := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return contract.NewTransportError(op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return contract.NewTransportError(op, err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	c.logger.WithFields(logrus.Fields{
		"op":      op,
		"url":     target,
		"status":  res.StatusCode,
		"bytes":   len(body),
		"latency": time.Since(start),
	}).Debug("Backend request")
	if err != nil {
		return contract.NewTransportError(op, err)
	}

	var env envelope
	envErr := json.Unmarshal(body, &env)
	if envErr == nil && schema.IsTruthy(env.Error) {
		return contract.NewApplicationError(op, schema.ErrorText(env.Error))
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return contract.NewTransportError(op, fmt.Errorf("server returned %s", res.Status))
	}
	if envErr != nil {
		return contract.NewTransportError(op, fmt.Errorf("invalid response body: %w", envErr))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return contract.NewTransportError(op, fmt.Errorf("invalid response body: %w", err))
	}
	return nil
}
