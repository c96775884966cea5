// Package report runs one probe cycle over every endpoint and turns the
// results into a HealthReport.
package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/monitoring/metrics"
)

// Prober checks a single endpoint. Implementations must fold every failure
// into an unreachable result instead of returning an error.
type Prober interface {
	Probe(ctx context.Context, ep domain.Endpoint, threshold time.Duration) domain.ProbeResult
}

// Config holds the aggregator settings.
type Config struct {
	Endpoints      []domain.Endpoint
	Threshold      time.Duration
	MaxConcurrency int // 0 means one goroutine per endpoint
}

// Aggregator fans probes out over all endpoints and fans the results back in
// registry order. It keeps no state between cycles.
type Aggregator struct {
	cfg    Config
	prober Prober
	log    *slog.Logger
}

// NewAggregator creates a new report aggregator.
func NewAggregator(cfg Config, prober Prober) *Aggregator {
	return &Aggregator{
		cfg:    cfg,
		prober: prober,
		log:    slog.Default().With("component", "report"),
	}
}

// Endpoints returns the monitored endpoints in registry order.
func (a *Aggregator) Endpoints() []domain.Endpoint {
	return a.cfg.Endpoints
}

// Threshold returns the staleness threshold used for classification.
func (a *Aggregator) Threshold() time.Duration {
	return a.cfg.Threshold
}

// Build probes every endpoint once. With includeAll every endpoint gets an
// entry; otherwise only unhealthy and unreachable ones do, and nil is
// returned when there is nothing to report.
func (a *Aggregator) Build(ctx context.Context, includeAll bool) *domain.HealthReport {
	cycleID := uuid.NewString()
	start := time.Now()

	results := a.probeAll(ctx)

	report := &domain.HealthReport{CycleID: cycleID}
	report.Summary.Total = len(results)
	for i, res := range results {
		if res.Healthy() {
			report.Summary.Healthy++
			if !includeAll {
				continue
			}
		}
		report.Entries = append(report.Entries, domain.ReportEntry{
			Position: i + 1,
			Endpoint: a.cfg.Endpoints[i],
			Result:   res,
		})
	}

	mode := "problems"
	if includeAll {
		mode = "full"
	}
	metrics.ReportCycles.WithLabelValues(mode).Inc()
	metrics.HealthyEndpoints.Set(float64(report.Summary.Healthy))

	a.log.Debug("Report cycle finished",
		"cycle", cycleID,
		"mode", mode,
		"healthy", report.Summary.Healthy,
		"total", report.Summary.Total,
		"duration", time.Since(start),
	)

	if !includeAll && report.Summary.Unhealthy() == 0 {
		return nil
	}
	return report
}

func (a *Aggregator) probeAll(ctx context.Context) []domain.ProbeResult {
	results := make([]domain.ProbeResult, len(a.cfg.Endpoints))

	var g errgroup.Group
	if a.cfg.MaxConcurrency > 0 {
		g.SetLimit(a.cfg.MaxConcurrency)
	}

	for i, ep := range a.cfg.Endpoints {
		g.Go(func() error {
			// Each goroutine owns results[i]; no further synchronisation needed.
			results[i] = a.prober.Probe(ctx, ep, a.cfg.Threshold)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
