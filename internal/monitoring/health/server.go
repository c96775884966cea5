// Package health exposes the monitor over HTTP for probes and scrapers.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/monitoring/report"
)

// ReportBuilder produces a fresh report.
type ReportBuilder interface {
	Build(ctx context.Context, includeAll bool) *domain.HealthReport
	Endpoints() []domain.Endpoint
}

// SubscriptionCounter reports how many auto-report schedules are running.
type SubscriptionCounter interface {
	Count() int
}

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	builder       ReportBuilder
	subscriptions SubscriptionCounter
	server        *http.Server
}

// NewServer creates a new health server.
func NewServer(builder ReportBuilder, subscriptions SubscriptionCounter, port int) *Server {
	s := &Server{
		builder:       builder,
		subscriptions: subscriptions,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routing for the server, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/report", s.handleReport)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status        string `json:"status"`
	Endpoints     int    `json:"endpoints"`
	Subscriptions int    `json:"subscriptions"`
}

// EndpointReport is the JSON view of one endpoint in a report.
type EndpointReport struct {
	Node        int       `json:"node"`
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	BlockHeight int64     `json:"block_height,omitempty"`
	BlockTime   time.Time `json:"block_time,omitzero"`
	LagSeconds  *int64    `json:"lag_seconds,omitempty"`
	Line        string    `json:"line"`
}

// ReportResponse is the JSON view of a full report.
type ReportResponse struct {
	Cycle          string           `json:"cycle"`
	Healthy        int              `json:"healthy"`
	Total          int              `json:"total"`
	HealthyPercent float64          `json:"healthy_percent"`
	Endpoints      []EndpointReport `json:"endpoints"`
}

// handleHealth is a liveness check for the monitor itself; it does not
// probe any node.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:        "ok",
		Endpoints:     len(s.builder.Endpoints()),
		Subscriptions: s.subscriptions.Count(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep := s.builder.Build(r.Context(), true)
	if rep == nil {
		http.Error(w, "no report", http.StatusServiceUnavailable)
		return
	}

	response := ReportResponse{
		Cycle:          rep.CycleID,
		Healthy:        rep.Summary.Healthy,
		Total:          rep.Summary.Total,
		HealthyPercent: rep.Summary.Percent(),
		Endpoints:      make([]EndpointReport, 0, len(rep.Entries)),
	}
	for _, e := range rep.Entries {
		er := EndpointReport{
			Node:   e.Position,
			ID:     e.Endpoint.ShortID,
			Status: string(e.Result.Status),
			Line:   report.FormatEntry(e),
		}
		if e.Result.Status != domain.StatusUnreachable {
			lag := int64(e.Result.Lag.Seconds())
			er.BlockHeight = e.Result.BlockHeight
			er.BlockTime = e.Result.BlockTime
			er.LagSeconds = &lag
		}
		response.Endpoints = append(response.Endpoints, er)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
