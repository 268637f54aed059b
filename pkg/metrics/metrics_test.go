package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/matzehuels/btlive/pkg/observability"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.SyncConnectsTotal == nil || r.RelayoutDuration == nil || r.TogglesTotal == nil || r.RendersTotal == nil {
		t.Fatal("collectors not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Fatal("registry not initialized")
	}
	// Two registries never collide.
	_ = NewRegistry()
}

func TestSyncHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.OnConnect(ctx, "a")
	r.OnConnect(ctx, "b")
	r.OnStateChange(ctx, "Connecting", "Streaming")
	r.OnUpdate(ctx, 3)
	r.OnUpdate(ctx, 2)
	r.OnMalformed(ctx)
	r.OnDisconnect(ctx, "heartbeat")

	if got := counterValue(t, r.SyncConnectsTotal); got != 2 {
		t.Errorf("connects = %v, want 2", got)
	}
	if got := counterValue(t, r.SyncColorsTotal); got != 5 {
		t.Errorf("colors = %v, want 5", got)
	}
	if got := gaugeValue(t, r.SyncState.WithLabelValues("Streaming")); got != 1 {
		t.Errorf("state Streaming = %v, want 1", got)
	}
	if got := gaugeValue(t, r.SyncState.WithLabelValues("Connecting")); got != 0 {
		t.Errorf("state Connecting = %v, want 0", got)
	}
	if got := counterValue(t, r.SyncDisconnectsTotal.WithLabelValues("heartbeat")); got != 1 {
		t.Errorf("disconnects = %v, want 1", got)
	}
}

func TestRelayoutAndViewerHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.OnRelayoutStart(ctx, 2)
	r.OnRelayoutComplete(ctx, 10*time.Millisecond, 2048, nil)
	r.OnRelayoutComplete(ctx, time.Second, 0, errors.New("502"))
	r.OnToggle(ctx, "A", true)
	r.OnToggle(ctx, "A", false)
	r.OnSurfaceReplaced(ctx, 7, 6)

	if got := counterValue(t, r.RelayoutRequestsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("relayout success = %v", got)
	}
	if got := counterValue(t, r.RelayoutRequestsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("relayout error = %v", got)
	}
	if got := counterValue(t, r.TogglesTotal.WithLabelValues("collapse")); got != 1 {
		t.Errorf("collapse toggles = %v", got)
	}
	if got := gaugeValue(t, r.SurfaceNodes); got != 7 {
		t.Errorf("surface nodes = %v", got)
	}
}

func TestServerHooksAndHandler(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.OnStreamOpen(ctx)
	r.OnStreamOpen(ctx)
	r.OnStreamClose(ctx, 12)
	r.OnRender(ctx, 5, time.Millisecond, nil)
	r.OnStatus(ctx, "SUCCESS")

	if got := gaugeValue(t, r.StreamsOpen); got != 1 {
		t.Errorf("open streams = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"btlive_server_stream_frames_total 12", "btlive_server_status_reports_total{state=\"SUCCESS\"} 1"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("exposition missing %q", name)
		}
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	r := NewRegistry()
	r.Install()
	if observability.Sync() != r || observability.Server() != r {
		t.Error("Install did not register hooks")
	}
}
