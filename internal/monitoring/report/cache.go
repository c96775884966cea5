package report

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/nodewatch/internal/core/domain"
)

// Builder is anything that produces a report per call.
type Builder interface {
	Build(ctx context.Context, includeAll bool) *domain.HealthReport
	Endpoints() []domain.Endpoint
}

// Cache reuses the last full report for ttl. It sits in front of the HTTP
// report endpoint so frequent scrapes do not probe every node each time.
// Problems-only builds always go through.
type Cache struct {
	builder Builder
	ttl     time.Duration

	mu       sync.Mutex
	cached   *domain.HealthReport
	cachedAt time.Time
}

// NewCache creates a new report cache with the given TTL.
func NewCache(builder Builder, ttl time.Duration) *Cache {
	return &Cache{
		builder: builder,
		ttl:     ttl,
	}
}

// Build returns the cached full report if within TTL, otherwise builds fresh.
// A fresh full build ignores cancellation of ctx: the result is shared with
// later callers, so one caller going away must not turn it into a report of
// unreachable nodes.
func (c *Cache) Build(ctx context.Context, includeAll bool) *domain.HealthReport {
	if !includeAll {
		return c.builder.Build(ctx, false)
	}

	// Held across the build so concurrent scrapes share one cycle.
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.cachedAt) < c.ttl {
		return c.cached
	}

	r := c.builder.Build(context.WithoutCancel(ctx), true)
	c.cached = r
	c.cachedAt = time.Now()
	return r
}

// Endpoints returns the endpoints of the underlying builder.
func (c *Cache) Endpoints() []domain.Endpoint {
	return c.builder.Endpoints()
}

// Invalidate clears the cache, forcing the next call to build fresh.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.cachedAt = time.Time{}
	c.mu.Unlock()
}
