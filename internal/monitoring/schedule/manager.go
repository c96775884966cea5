// Package schedule owns the per-subscriber auto-report loops.
//
// Each subscriber gets exactly one goroutine that runs a problems-only
// report cycle, delivers the result when there is one, then sleeps for the
// update interval. Loops are independent of each other and of on-demand
// requests, and run until the manager is stopped at process shutdown.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/monitoring/metrics"
	"github.com/vietddude/nodewatch/internal/monitoring/report"
)

// ErrStopped is returned by Subscribe once the manager has been stopped.
var ErrStopped = errors.New("schedule manager stopped")

// ReportBuilder produces one report per call; nil means nothing to deliver.
type ReportBuilder interface {
	Build(ctx context.Context, includeAll bool) *domain.HealthReport
}

// Notifier delivers a rendered report to a destination.
type Notifier interface {
	Send(ctx context.Context, dest domain.SubscriberID, text string, format domain.Format) error
}

// SubscribeResult tells whether Subscribe started a new schedule.
type SubscribeResult int

const (
	Unknown SubscribeResult = iota
	Started
	AlreadyActive
)

func (r SubscribeResult) String() string {
	switch r {
	case Unknown:
		return "unknown"
	case Started:
		return "started"
	case AlreadyActive:
		return "already_active"
	default:
		return fmt.Sprintf("SubscribeResult(%d)", int(r))
	}
}

type schedule struct {
	subscriber domain.SubscriberID
}

// Manager enforces at most one schedule per subscriber.
type Manager struct {
	builder  ReportBuilder
	notifier Notifier
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	schedules map[domain.SubscriberID]*schedule
	stopped   bool

	log *slog.Logger
}

// NewManager creates a schedule manager. Schedules start on Subscribe.
func NewManager(builder ReportBuilder, notifier Notifier, interval time.Duration) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		builder:   builder,
		notifier:  notifier,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		schedules: make(map[domain.SubscriberID]*schedule),
		log:       slog.Default().With("component", "schedule"),
	}
}

// Interval returns the pause between two cycles of a schedule.
func (m *Manager) Interval() time.Duration {
	return m.interval
}

// Subscribe starts a schedule for id unless one is already running.
func (m *Manager) Subscribe(id domain.SubscriberID) (SubscribeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return Unknown, ErrStopped
	}
	if _, ok := m.schedules[id]; ok {
		return AlreadyActive, nil
	}

	s := &schedule{subscriber: id}
	m.schedules[id] = s
	metrics.ActiveSubscriptions.Set(float64(len(m.schedules)))

	m.wg.Add(1)
	go m.run(s)

	m.log.Info("Auto-report schedule started", "subscriber", id, "interval", m.interval)
	return Started, nil
}

// Active returns the subscribers with a running schedule, sorted.
func (m *Manager) Active() []domain.SubscriberID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]domain.SubscriberID, 0, len(m.schedules))
	for id := range m.schedules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the number of running schedules.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.schedules)
}

// OnDemand builds a full report and delivers it to id before returning.
// It does not touch any schedule.
func (m *Manager) OnDemand(ctx context.Context, id domain.SubscriberID) error {
	r := m.builder.Build(ctx, true)
	if r == nil {
		return nil
	}
	return m.deliver(ctx, id, r)
}

// Stop cancels every schedule and waits for the loops to exit or ctx to end.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()

	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) run(s *schedule) {
	defer m.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-timer.C:
		}

		m.cycle(s)
		timer.Reset(m.interval)
	}
}

// cycle runs one problems-only report for s. Delivery failures are logged
// and the schedule carries on with the next cycle.
func (m *Manager) cycle(s *schedule) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("Auto-report cycle panicked", "subscriber", s.subscriber, "panic", r)
		}
	}()

	r := m.builder.Build(m.ctx, false)
	if r == nil {
		m.log.Debug("All nodes healthy, nothing to report", "subscriber", s.subscriber)
		return
	}

	if err := m.deliver(m.ctx, s.subscriber, r); err != nil {
		if m.ctx.Err() != nil {
			return
		}
		m.log.Warn("Auto-report delivery failed", "subscriber", s.subscriber, "cycle", r.CycleID, "error", err)
	}
}

func (m *Manager) deliver(ctx context.Context, id domain.SubscriberID, r *domain.HealthReport) error {
	err := m.notifier.Send(ctx, id, report.Text(r), domain.FormatMarkdown)
	if err == nil {
		metrics.Deliveries.WithLabelValues("ok").Inc()
		return nil
	}

	metrics.Deliveries.WithLabelValues("error").Inc()
	var derr *domain.DeliveryError
	if errors.As(err, &derr) {
		return err
	}
	return &domain.DeliveryError{Destination: id, Err: err}
}
