package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/monitoring/metrics"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func statusBody(height string, blockTime time.Time) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":-1,"result":{"node_info":{},"sync_info":{"latest_block_height":%s,"latest_block_time":%q,"catching_up":false}}}`,
		height, blockTime.Format(time.RFC3339Nano))
}

func newNode(t *testing.T, handler http.HandlerFunc) domain.Endpoint {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return domain.NewEndpoint(strings.TrimPrefix(server.URL, "http://"))
}

func serveBody(t *testing.T, body string) domain.Endpoint {
	return newNode(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("expected path /status, got %s", r.URL.Path)
			http.Error(w, "invalid path", http.StatusNotFound)
			return
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected method GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func newTestProber(timeout time.Duration) *HTTPProber {
	return NewHTTPProber(timeout, WithClock(func() time.Time { return testNow }))
}

func TestProbe_Healthy(t *testing.T) {
	ep := serveBody(t, statusBody(`"1234567"`, testNow.Add(-30*time.Second-400*time.Millisecond)))

	result := newTestProber(time.Second).Probe(context.Background(), ep, 60*time.Second)

	if result.Status != domain.StatusHealthy {
		t.Fatalf("expected healthy, got %s (err=%v)", result.Status, result.Err)
	}
	if result.BlockHeight != 1234567 {
		t.Errorf("expected height 1234567, got %d", result.BlockHeight)
	}
	if result.Lag != 30*time.Second {
		t.Errorf("expected lag truncated to 30s, got %v", result.Lag)
	}
}

func TestProbe_NumericHeight(t *testing.T) {
	ep := serveBody(t, statusBody(`98765`, testNow.Add(-5*time.Second)))

	result := newTestProber(time.Second).Probe(context.Background(), ep, 60*time.Second)

	if result.Status != domain.StatusHealthy || result.BlockHeight != 98765 {
		t.Fatalf("expected healthy at 98765, got %s at %d (err=%v)", result.Status, result.BlockHeight, result.Err)
	}
}

func TestProbe_Unhealthy(t *testing.T) {
	ep := serveBody(t, statusBody(`"100"`, testNow.Add(-90*time.Second)))

	result := newTestProber(time.Second).Probe(context.Background(), ep, 60*time.Second)

	if result.Status != domain.StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", result.Status)
	}
	if result.Lag != 90*time.Second {
		t.Errorf("expected lag 90s, got %v", result.Lag)
	}
}

func TestProbe_OffsetTimestamp(t *testing.T) {
	// 13:59:30+02:00 is 11:59:30Z, thirty seconds before testNow.
	ep := serveBody(t, `{"result":{"sync_info":{"latest_block_height":"7","latest_block_time":"2024-03-01T13:59:30.123456789+02:00"}}}`)

	result := newTestProber(time.Second).Probe(context.Background(), ep, 60*time.Second)

	if result.Status != domain.StatusHealthy {
		t.Fatalf("expected healthy, got %s (err=%v)", result.Status, result.Err)
	}
	if result.Lag != 29*time.Second {
		t.Errorf("expected lag 29s, got %v", result.Lag)
	}
}

func TestProbe_Unreachable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: ErrBadStatusCode,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>gateway</html>"))
			},
			wantErr: ErrMalformedStatus,
		},
		{
			name: "missing sync info",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"result":{}}`))
			},
			wantErr: ErrMalformedStatus,
		},
		{
			name: "bad block time",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"result":{"sync_info":{"latest_block_height":"1","latest_block_time":"yesterday"}}}`))
			},
			wantErr: ErrMalformedStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := newNode(t, tt.handler)

			result := newTestProber(time.Second).Probe(context.Background(), ep, 60*time.Second)

			if result.Status != domain.StatusUnreachable {
				t.Fatalf("expected unreachable, got %s", result.Status)
			}
			if !errors.Is(result.Err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, result.Err)
			}
			if result.BlockHeight != 0 || !result.BlockTime.IsZero() || result.Lag != 0 {
				t.Errorf("expected empty block fields, got %+v", result)
			}
		})
	}
}

func TestProbe_Timeout(t *testing.T) {
	release := make(chan struct{})
	ep := newNode(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	result := newTestProber(50*time.Millisecond).Probe(context.Background(), ep, 60*time.Second)

	if result.Status != domain.StatusUnreachable {
		t.Fatalf("expected unreachable, got %s", result.Status)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("probe did not respect timeout, took %v", elapsed)
	}
}

func TestProbe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	ep := domain.NewEndpoint(strings.TrimPrefix(server.URL, "http://"))
	server.Close()

	result := newTestProber(time.Second).Probe(context.Background(), ep, 60*time.Second)

	if result.Status != domain.StatusUnreachable {
		t.Fatalf("expected unreachable, got %s", result.Status)
	}
}

func TestClassify(t *testing.T) {
	threshold := 60 * time.Second

	tests := []struct {
		name      string
		blockTime time.Time
		want      domain.ProbeStatus
		wantLag   time.Duration
	}{
		{"exactly at threshold", testNow.Add(-60 * time.Second), domain.StatusHealthy, 60 * time.Second},
		{"sub-second past threshold truncates", testNow.Add(-60*time.Second - 900*time.Millisecond), domain.StatusHealthy, 60 * time.Second},
		{"one second past threshold", testNow.Add(-61 * time.Second), domain.StatusUnhealthy, 61 * time.Second},
		// Only the seconds part of a multi-day lag would be 30s; the full lag must count.
		{"two days and thirty seconds", testNow.Add(-48*time.Hour - 30*time.Second), domain.StatusUnhealthy, 48*time.Hour + 30*time.Second},
		{"block time in the future", testNow.Add(10 * time.Second), domain.StatusHealthy, -10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(42, tt.blockTime, testNow, threshold)
			if got.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Status)
			}
			if got.Lag != tt.wantLag {
				t.Errorf("expected lag %v, got %v", tt.wantLag, got.Lag)
			}
			if got.BlockHeight != 42 {
				t.Errorf("expected height 42, got %d", got.BlockHeight)
			}
		})
	}
}

func TestProbe_MetricsUseShortID(t *testing.T) {
	ep := serveBody(t, statusBody(`"42"`, testNow.Add(-time.Second)))

	result := newTestProber(time.Second).Probe(context.Background(), ep, 60*time.Second)
	if result.Status != domain.StatusHealthy {
		t.Fatalf("expected healthy, got %s (err=%v)", result.Status, result.Err)
	}

	if metrics.ProbesTotal.DeleteLabelValues(ep.Host, string(domain.StatusHealthy)) {
		t.Errorf("metrics expose the node address %s", ep.Host)
	}
	if !metrics.ProbesTotal.DeleteLabelValues(ep.ShortID, string(domain.StatusHealthy)) {
		t.Errorf("expected a probe counter labelled %q", ep.ShortID)
	}
	if metrics.EndpointLag.DeleteLabelValues(ep.Host) {
		t.Errorf("lag gauge exposes the node address %s", ep.Host)
	}
}
