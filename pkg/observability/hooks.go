// Package observability provides hooks for metrics and tracing.
//
// Components emit events through hook interfaces without depending on a
// particular backend. Each interface has a no-op default; main registers
// real implementations (see pkg/metrics) at startup:
//
//	func main() {
//	    m := metrics.New(prometheus.DefaultRegisterer)
//	    observability.SetSyncHooks(m)
//	    observability.SetRelayoutHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	observability.Relayout().OnRelayoutStart(ctx, len(dims))
//	// ... request ...
//	observability.Relayout().OnRelayoutComplete(ctx, time.Since(start), len(body), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Live Sync Hooks
// =============================================================================

// SyncHooks receives events from the live color stream client.
type SyncHooks interface {
	// OnConnect records the start of a connection attempt.
	OnConnect(ctx context.Context, attempt string)

	// OnStateChange records a state machine transition.
	OnStateChange(ctx context.Context, from, to string)

	// OnUpdate records a parsed payload and how many colors it carried.
	OnUpdate(ctx context.Context, colors int)

	// OnMalformed records a chunk whose trailing JSON did not parse.
	OnMalformed(ctx context.Context)

	// OnDisconnect records why a connection ended: "heartbeat", "error",
	// "status" or "eof".
	OnDisconnect(ctx context.Context, reason string)
}

// =============================================================================
// Relayout Hooks
// =============================================================================

// RelayoutHooks receives events from the relayout client.
type RelayoutHooks interface {
	OnRelayoutStart(ctx context.Context, nodes int)
	OnRelayoutComplete(ctx context.Context, duration time.Duration, size int, err error)
}

// =============================================================================
// Viewer Hooks
// =============================================================================

// ViewerHooks receives events from the viewer controller.
type ViewerHooks interface {
	// OnToggle records an accepted collapse or expand.
	OnToggle(ctx context.Context, id string, collapsed bool)

	// OnSurfaceReplaced records a new drawing taking over.
	OnSurfaceReplaced(ctx context.Context, nodes, edges int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the layout server.
type ServerHooks interface {
	// OnRender records a Graphviz render.
	OnRender(ctx context.Context, nodes int, duration time.Duration, err error)

	// OnStreamOpen and OnStreamClose bracket a /msg stream.
	OnStreamOpen(ctx context.Context)
	OnStreamClose(ctx context.Context, frames int)

	// OnStatus records a status report applied to the color map.
	OnStatus(ctx context.Context, state string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSyncHooks is a no-op implementation of SyncHooks.
type NoopSyncHooks struct{}

func (NoopSyncHooks) OnConnect(context.Context, string)             {}
func (NoopSyncHooks) OnStateChange(context.Context, string, string) {}
func (NoopSyncHooks) OnUpdate(context.Context, int)                 {}
func (NoopSyncHooks) OnMalformed(context.Context)                   {}
func (NoopSyncHooks) OnDisconnect(context.Context, string)          {}

// NoopRelayoutHooks is a no-op implementation of RelayoutHooks.
type NoopRelayoutHooks struct{}

func (NoopRelayoutHooks) OnRelayoutStart(context.Context, int)                         {}
func (NoopRelayoutHooks) OnRelayoutComplete(context.Context, time.Duration, int, error) {}

// NoopViewerHooks is a no-op implementation of ViewerHooks.
type NoopViewerHooks struct{}

func (NoopViewerHooks) OnToggle(context.Context, string, bool)      {}
func (NoopViewerHooks) OnSurfaceReplaced(context.Context, int, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRender(context.Context, int, time.Duration, error) {}
func (NoopServerHooks) OnStreamOpen(context.Context)                        {}
func (NoopServerHooks) OnStreamClose(context.Context, int)                  {}
func (NoopServerHooks) OnStatus(context.Context, string)                    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	syncHooks     SyncHooks     = NoopSyncHooks{}
	relayoutHooks RelayoutHooks = NoopRelayoutHooks{}
	viewerHooks   ViewerHooks   = NoopViewerHooks{}
	serverHooks   ServerHooks   = NoopServerHooks{}
	hooksMu       sync.RWMutex
)

// SetSyncHooks registers live sync hooks. Nil is ignored.
func SetSyncHooks(h SyncHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		syncHooks = h
	}
}

// SetRelayoutHooks registers relayout hooks. Nil is ignored.
func SetRelayoutHooks(h RelayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		relayoutHooks = h
	}
}

// SetViewerHooks registers viewer hooks. Nil is ignored.
func SetViewerHooks(h ViewerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		viewerHooks = h
	}
}

// SetServerHooks registers server hooks. Nil is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Sync returns the registered live sync hooks.
func Sync() SyncHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return syncHooks
}

// Relayout returns the registered relayout hooks.
func Relayout() RelayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return relayoutHooks
}

// Viewer returns the registered viewer hooks.
func Viewer() ViewerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return viewerHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	syncHooks = NoopSyncHooks{}
	relayoutHooks = NoopRelayoutHooks{}
	viewerHooks = NoopViewerHooks{}
	serverHooks = NoopServerHooks{}
}
