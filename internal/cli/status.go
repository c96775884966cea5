package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/nodewatch/internal/control"
	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/monitoring/report"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe every node once and print a full report",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if err := cfg.ValidateMonitor(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	controlCfg, err := control.ConfigFrom(cfg)
	if err != nil {
		slog.Error("Failed to load endpoints", "error", err)
		os.Exit(1)
	}

	rep := control.NewAggregator(controlCfg).Build(context.Background(), true)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NODE\tID\tBLOCK\tTIME\tLAG\tSTATUS")

	for _, e := range rep.Entries {
		if e.Result.Status == domain.StatusUnreachable {
			_, _ = fmt.Fprintf(w, "%d\t%s\t-\t-\t-\t%s %s\n",
				e.Position, e.Endpoint.Host, report.Glyph(e.Result.Status), e.Result.Status)
			continue
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%ds\t%s %s\n",
			e.Position,
			e.Endpoint.Host,
			e.Result.BlockHeight,
			e.Result.BlockTime.Format("2006-01-02T15:04:05Z"),
			int64(e.Result.Lag.Seconds()),
			report.Glyph(e.Result.Status),
			e.Result.Status,
		)
	}
	_ = w.Flush()

	s := rep.Summary
	fmt.Printf("\nHealthy: %d/%d (%.2f%%)\n", s.Healthy, s.Total, s.Percent())
	if s.Unhealthy() > 0 {
		os.Exit(2)
	}
}
