// Package httpfeed reads the category and raw intent feeds from the REST API
// that fronts the normalizer.
package httpfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"intentdash/internal/core"
	"intentdash/internal/feed"
)

const (
	categoriesPath = "/intents"
	intentsPath    = "/data"

	// Upper bound on a feed body; the real payloads are a few KB.
	maxBodyBytes = 4 << 20
)

type categoriesResponse struct {
	Categories *[]core.CategoryRecord `json:"categories"`
}

type intentsResponse struct {
	CSVData *[]core.IntentRecord `json:"csv_data"`
}

// Client issues one GET per fetch. It does not retry and does not cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New returns a client for the API rooted at baseURL (e.g. https://host/prod).
// timeout bounds each fetch on top of the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
	return NewWithHTTPClient(baseURL, &http.Client{Transport: transport}, timeout)
}

// NewWithHTTPClient is New with a caller supplied *http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client, timeout time.Duration) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		timeout:    timeout,
	}
}

// CloseIdleConnections releases pooled connections on shutdown.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// FetchCategories implements feed.CategoryReader. Records are returned as the
// API sent them, including entries with a null count.
func (c *Client) FetchCategories(ctx context.Context) ([]core.CategoryRecord, error) {
	endpoint := c.baseURL + categoriesPath
	var body categoriesResponse
	if err := c.getJSON(ctx, feed.FeedCategories, endpoint, &body); err != nil {
		return nil, err
	}
	if body.Categories == nil {
		return nil, &feed.FetchError{
			Feed:     feed.FeedCategories,
			Endpoint: endpoint,
			Kind:     feed.KindDecode,
			Err:      errors.New(`response has no "categories" field`),
		}
	}
	slog.DebugContext(ctx, "Category feed fetched", "endpoint", endpoint, "records", len(*body.Categories))
	return *body.Categories, nil
}

// FetchIntents implements feed.IntentReader.
func (c *Client) FetchIntents(ctx context.Context) ([]core.IntentRecord, error) {
	endpoint := c.baseURL + intentsPath
	var body intentsResponse
	if err := c.getJSON(ctx, feed.FeedIntents, endpoint, &body); err != nil {
		return nil, err
	}
	if body.CSVData == nil {
		return nil, &feed.FetchError{
			Feed:     feed.FeedIntents,
			Endpoint: endpoint,
			Kind:     feed.KindDecode,
			Err:      errors.New(`response has no "csv_data" field`),
		}
	}
	slog.DebugContext(ctx, "Intent feed fetched", "endpoint", endpoint, "records", len(*body.CSVData))
	return *body.CSVData, nil
}

func (c *Client) getJSON(ctx context.Context, feedName, endpoint string, dst any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &feed.FetchError{Feed: feedName, Endpoint: endpoint, Kind: feed.KindNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &feed.FetchError{Feed: feedName, Endpoint: endpoint, Kind: feed.KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &feed.FetchError{Feed: feedName, Endpoint: endpoint, Kind: feed.KindStatus, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return &feed.FetchError{Feed: feedName, Endpoint: endpoint, Kind: feed.KindDecode, Err: err}
	}
	return nil
}
