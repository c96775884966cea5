package report

import (
	"fmt"
	"strings"

	"github.com/vietddude/nodewatch/internal/core/domain"
)

// Status markers. Unreachable and unhealthy are kept apart so a stale node
// can be told from a dead one at a glance.
const (
	GlyphHealthy     = "✅"
	GlyphUnhealthy   = "❌"
	GlyphUnreachable = "⚠️"
)

const blockTimeLayout = "2006-01-02T15:04:05"

// Glyph returns the marker for a probe status.
func Glyph(status domain.ProbeStatus) string {
	switch status {
	case domain.StatusHealthy:
		return GlyphHealthy
	case domain.StatusUnhealthy:
		return GlyphUnhealthy
	default:
		return GlyphUnreachable
	}
}

// FormatEntry renders one endpoint line.
func FormatEntry(e domain.ReportEntry) string {
	if e.Result.Status == domain.StatusUnreachable {
		return fmt.Sprintf("Node %d, unreachable: ..XXX.%s %s", e.Position, e.Endpoint.ShortID, GlyphUnreachable)
	}
	return fmt.Sprintf("Node %d, IP: ..XXX.%s, Block %d, Time %s, Δ: %d s  %s",
		e.Position,
		e.Endpoint.ShortID,
		e.Result.BlockHeight,
		e.Result.BlockTime.UTC().Format(blockTimeLayout),
		int64(e.Result.Lag.Seconds()),
		Glyph(e.Result.Status),
	)
}

// FormatSummary renders the bold summary line in Telegram Markdown.
func FormatSummary(s domain.Summary) string {
	return fmt.Sprintf("*Nodes Summary: %d/%d %s (%.2f%%)*", s.Healthy, s.Total, GlyphHealthy, s.Percent())
}

// Lines returns the endpoint lines of a report in registry order.
func Lines(r *domain.HealthReport) []string {
	lines := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		lines = append(lines, FormatEntry(e))
	}
	return lines
}

// Text renders the whole report as a single message.
func Text(r *domain.HealthReport) string {
	var b strings.Builder
	for _, line := range Lines(r) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(FormatSummary(r.Summary))
	return b.String()
}
