// Package probe checks the sync status of a single node.
//
// A probe is one bounded GET against the node's /status endpoint. Every
// failure (network error, timeout, non-2xx, malformed body) is folded into
// an unreachable result; nothing is retried.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/monitoring/metrics"
)

var (
	ErrBadStatusCode   = errors.New("unexpected http status")
	ErrMalformedStatus = errors.New("malformed status response")
)

// maxBodySize caps how much of a status response is read.
const maxBodySize = 1 << 20

// HTTPProber implements report.Prober over plain HTTP.
type HTTPProber struct {
	httpClient *http.Client
	timeout    time.Duration
	now        func() time.Time
	log        *slog.Logger
}

// Option configures an HTTPProber.
type Option func(*HTTPProber)

// WithClock replaces the wall clock used to compute lag.
func WithClock(now func() time.Time) Option {
	return func(p *HTTPProber) {
		p.now = now
	}
}

// WithHTTPClient replaces the underlying client. The per-request timeout
// still applies through the request context.
func WithHTTPClient(c *http.Client) Option {
	return func(p *HTTPProber) {
		p.httpClient = c
	}
}

// NewHTTPProber creates a prober with a hard per-request timeout.
func NewHTTPProber(timeout time.Duration, opts ...Option) *HTTPProber {
	p := &HTTPProber{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: timeout,
		now:     time.Now,
		log:     slog.Default().With("component", "probe"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe checks one endpoint and classifies it against threshold.
func (p *HTTPProber) Probe(ctx context.Context, ep domain.Endpoint, threshold time.Duration) domain.ProbeResult {
	start := time.Now()
	height, blockTime, err := p.fetch(ctx, ep.URL)
	latency := time.Since(start)

	metrics.ProbeLatency.WithLabelValues(ep.ShortID).Observe(latency.Seconds())

	var result domain.ProbeResult
	if err != nil {
		p.log.Debug("Node unreachable", "endpoint", ep.Host, "error", err)
		result = domain.ProbeResult{Status: domain.StatusUnreachable, Err: err}
	} else {
		result = Classify(height, blockTime, p.now(), threshold)
		metrics.EndpointLag.WithLabelValues(ep.ShortID).Set(result.Lag.Seconds())
		metrics.EndpointBlockHeight.WithLabelValues(ep.ShortID).Set(float64(height))
	}
	result.Latency = latency

	metrics.ProbesTotal.WithLabelValues(ep.ShortID, string(result.Status)).Inc()
	return result
}

// Classify computes the lag of blockTime behind now, truncated to whole
// seconds, and marks the node healthy when lag <= threshold. The full elapsed
// time counts, so a block days old is never mistaken for a fresh one. A block
// time ahead of now yields a negative lag and is healthy.
func Classify(height int64, blockTime, now time.Time, threshold time.Duration) domain.ProbeResult {
	lag := now.Sub(blockTime).Truncate(time.Second)

	status := domain.StatusHealthy
	if lag > threshold {
		status = domain.StatusUnhealthy
	}

	return domain.ProbeResult{
		Status:      status,
		BlockHeight: height,
		BlockTime:   blockTime,
		Lag:         lag,
	}
}

type statusResponse struct {
	Result struct {
		SyncInfo struct {
			LatestBlockHeight json.Number `json:"latest_block_height"`
			LatestBlockTime   string      `json:"latest_block_time"`
		} `json:"sync_info"`
	} `json:"result"`
}

func (p *HTTPProber) fetch(ctx context.Context, url string) (int64, time.Time, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("status call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, time.Time{}, fmt.Errorf("%w: %d", ErrBadStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("read response: %w", err)
	}

	return parseStatus(body)
}

func parseStatus(body []byte) (int64, time.Time, error) {
	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrMalformedStatus, err)
	}

	info := status.Result.SyncInfo
	height, err := strconv.ParseInt(info.LatestBlockHeight.String(), 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: latest_block_height %q", ErrMalformedStatus, info.LatestBlockHeight)
	}

	blockTime, err := time.Parse(time.RFC3339Nano, info.LatestBlockTime)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: latest_block_time %q", ErrMalformedStatus, info.LatestBlockTime)
	}

	return height, blockTime.UTC(), nil
}
