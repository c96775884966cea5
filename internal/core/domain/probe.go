package domain

import "time"

type ProbeStatus string

const (
	StatusHealthy     ProbeStatus = "healthy"
	StatusUnhealthy   ProbeStatus = "unhealthy"
	StatusUnreachable ProbeStatus = "unreachable"
)

// ProbeResult is the outcome of one status check against one endpoint.
// Height, block time and lag are zero for unreachable endpoints.
type ProbeResult struct {
	Status      ProbeStatus
	BlockHeight int64
	BlockTime   time.Time
	Lag         time.Duration
	Latency     time.Duration
	Err         error
}

// Healthy reports whether the endpoint counts towards the healthy total.
func (r ProbeResult) Healthy() bool {
	return r.Status == StatusHealthy
}
