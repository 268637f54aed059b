// Package metrics implements the observability hooks with Prometheus
// collectors.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/btlive/pkg/observability"
)

// Registry holds all btlive collectors on a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// Live sync
	SyncConnectsTotal    prometheus.Counter
	SyncStateChanges     *prometheus.CounterVec
	SyncState            *prometheus.GaugeVec
	SyncUpdatesTotal     prometheus.Counter
	SyncColorsTotal      prometheus.Counter
	SyncMalformedTotal   prometheus.Counter
	SyncDisconnectsTotal *prometheus.CounterVec

	// Relayout
	RelayoutRequestsTotal *prometheus.CounterVec
	RelayoutDuration      prometheus.Histogram
	RelayoutResponseBytes prometheus.Histogram
	RelayoutNodes         prometheus.Histogram

	// Viewer
	TogglesTotal         *prometheus.CounterVec
	SurfaceReplacedTotal prometheus.Counter
	SurfaceNodes         prometheus.Gauge
	SurfaceEdges         prometheus.Gauge

	// Server
	RendersTotal       *prometheus.CounterVec
	RenderDuration     prometheus.Histogram
	StreamsOpen        prometheus.Gauge
	StreamFramesTotal  prometheus.Counter
	StatusReportsTotal *prometheus.CounterVec
}

// NewRegistry creates a registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initSyncMetrics()
	r.initRelayoutMetrics()
	r.initViewerMetrics()
	r.initServerMetrics()
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Install registers r as every observability hook.
func (r *Registry) Install() {
	observability.SetSyncHooks(r)
	observability.SetRelayoutHooks(r)
	observability.SetViewerHooks(r)
	observability.SetServerHooks(r)
}

func (r *Registry) initSyncMetrics() {
	f := promauto.With(r.registry)
	r.SyncConnectsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "btlive_sync_connects_total",
		Help: "Stream connection attempts",
	})
	r.SyncStateChanges = f.NewCounterVec(prometheus.CounterOpts{
		Name: "btlive_sync_state_changes_total",
		Help: "Stream state machine transitions",
	}, []string{"from", "to"})
	r.SyncState = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "btlive_sync_state",
		Help: "Current stream state (1 for the active state)",
	}, []string{"state"})
	r.SyncUpdatesTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "btlive_sync_updates_total",
		Help: "Parsed color payloads",
	})
	r.SyncColorsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "btlive_sync_colors_total",
		Help: "Colors merged from payloads",
	})
	r.SyncMalformedTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "btlive_sync_malformed_total",
		Help: "Chunks whose trailing JSON failed to parse",
	})
	r.SyncDisconnectsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "btlive_sync_disconnects_total",
		Help: "Stream disconnects by reason",
	}, []string{"reason"})
}

func (r *Registry) initRelayoutMetrics() {
	f := promauto.With(r.registry)
	r.RelayoutRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "btlive_relayout_requests_total",
		Help: "Relayout requests by outcome",
	}, []string{"status"})
	r.RelayoutDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "btlive_relayout_duration_seconds",
		Help:    "Relayout request latency",
		Buckets: prometheus.DefBuckets,
	})
	r.RelayoutResponseBytes = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "btlive_relayout_response_bytes",
		Help:    "Size of relayout responses",
		Buckets: []float64{1000, 10000, 100000, 1000000, 10000000},
	})
	r.RelayoutNodes = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "btlive_relayout_nodes",
		Help:    "Collapsed nodes sent per relayout",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})
}

func (r *Registry) initViewerMetrics() {
	f := promauto.With(r.registry)
	r.TogglesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "btlive_viewer_toggles_total",
		Help: "Accepted collapse and expand toggles",
	}, []string{"action"})
	r.SurfaceReplacedTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "btlive_viewer_surface_replaced_total",
		Help: "Drawings attached or replaced",
	})
	r.SurfaceNodes = f.NewGauge(prometheus.GaugeOpts{
		Name: "btlive_viewer_surface_nodes",
		Help: "Nodes in the current drawing",
	})
	r.SurfaceEdges = f.NewGauge(prometheus.GaugeOpts{
		Name: "btlive_viewer_surface_edges",
		Help: "Edges in the current drawing",
	})
}

func (r *Registry) initServerMetrics() {
	f := promauto.With(r.registry)
	r.RendersTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "btlive_server_renders_total",
		Help: "Graphviz renders by outcome",
	}, []string{"status"})
	r.RenderDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "btlive_server_render_duration_seconds",
		Help:    "Graphviz render latency",
		Buckets: prometheus.DefBuckets,
	})
	r.StreamsOpen = f.NewGauge(prometheus.GaugeOpts{
		Name: "btlive_server_streams_open",
		Help: "Open /msg streams",
	})
	r.StreamFramesTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "btlive_server_stream_frames_total",
		Help: "Frames written to /msg streams",
	})
	r.StatusReportsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "btlive_server_status_reports_total",
		Help: "Node status reports by state",
	}, []string{"state"})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// =============================================================================
// observability.SyncHooks
// =============================================================================

func (r *Registry) OnConnect(ctx context.Context, attempt string) {
	r.SyncConnectsTotal.Inc()
}

func (r *Registry) OnStateChange(ctx context.Context, from, to string) {
	r.SyncStateChanges.WithLabelValues(from, to).Inc()
	r.SyncState.WithLabelValues(from).Set(0)
	r.SyncState.WithLabelValues(to).Set(1)
}

func (r *Registry) OnUpdate(ctx context.Context, colors int) {
	r.SyncUpdatesTotal.Inc()
	r.SyncColorsTotal.Add(float64(colors))
}

func (r *Registry) OnMalformed(ctx context.Context) {
	r.SyncMalformedTotal.Inc()
}

func (r *Registry) OnDisconnect(ctx context.Context, reason string) {
	r.SyncDisconnectsTotal.WithLabelValues(reason).Inc()
}

// =============================================================================
// observability.RelayoutHooks
// =============================================================================

func (r *Registry) OnRelayoutStart(ctx context.Context, nodes int) {
	r.RelayoutNodes.Observe(float64(nodes))
}

func (r *Registry) OnRelayoutComplete(ctx context.Context, duration time.Duration, size int, err error) {
	r.RelayoutRequestsTotal.WithLabelValues(outcome(err)).Inc()
	r.RelayoutDuration.Observe(duration.Seconds())
	if err == nil {
		r.RelayoutResponseBytes.Observe(float64(size))
	}
}

// =============================================================================
// observability.ViewerHooks
// =============================================================================

func (r *Registry) OnToggle(ctx context.Context, id string, collapsed bool) {
	action := "expand"
	if collapsed {
		action = "collapse"
	}
	r.TogglesTotal.WithLabelValues(action).Inc()
}

func (r *Registry) OnSurfaceReplaced(ctx context.Context, nodes, edges int) {
	r.SurfaceReplacedTotal.Inc()
	r.SurfaceNodes.Set(float64(nodes))
	r.SurfaceEdges.Set(float64(edges))
}

// =============================================================================
// observability.ServerHooks
// =============================================================================

func (r *Registry) OnRender(ctx context.Context, nodes int, duration time.Duration, err error) {
	r.RendersTotal.WithLabelValues(outcome(err)).Inc()
	r.RenderDuration.Observe(duration.Seconds())
}

func (r *Registry) OnStreamOpen(ctx context.Context) {
	r.StreamsOpen.Inc()
}

func (r *Registry) OnStreamClose(ctx context.Context, frames int) {
	r.StreamsOpen.Dec()
	r.StreamFramesTotal.Add(float64(frames))
}

func (r *Registry) OnStatus(ctx context.Context, state string) {
	r.StatusReportsTotal.WithLabelValues(state).Inc()
}

var (
	_ observability.SyncHooks     = (*Registry)(nil)
	_ observability.RelayoutHooks = (*Registry)(nil)
	_ observability.ViewerHooks   = (*Registry)(nil)
	_ observability.ServerHooks   = (*Registry)(nil)
)
