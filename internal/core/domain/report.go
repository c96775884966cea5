package domain

// ReportEntry is one endpoint's line in a report. Position is 1-based and
// matches the endpoint's place in the registry.
type ReportEntry struct {
	Position int
	Endpoint Endpoint
	Result   ProbeResult
}

// Summary is always computed over every endpoint of a cycle.
type Summary struct {
	Healthy int
	Total   int
}

// Percent returns the healthy share in the range [0, 100].
func (s Summary) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.Healthy) / float64(s.Total)
}

// Unhealthy counts unhealthy and unreachable endpoints together.
func (s Summary) Unhealthy() int {
	return s.Total - s.Healthy
}

// HealthReport is the result of one cycle.
type HealthReport struct {
	CycleID string
	Entries []ReportEntry
	Summary Summary
}
