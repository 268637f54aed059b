// Package server is the layout service: it renders the behavior tree,
// streams node colors, re-renders on relayout requests and ingests node
// status updates.
//
// Endpoints:
//
//	GET  /             page embedding the drawing and a status bar
//	GET  /surface.svg  initial drawing
//	GET  /msg          color stream, one JSON object per interval
//	POST /relayout     re-render with per-node sizes
//	POST /status       node status updates
//	GET  /data         random demo states
//	GET  /tree.json    the tree
//	GET  /metrics      metrics, when a handler is given
package server

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/btlive/pkg/colors"
	"github.com/matzehuels/btlive/pkg/dag"
	"github.com/matzehuels/btlive/pkg/errors"
	"github.com/matzehuels/btlive/pkg/observability"
	"github.com/matzehuels/btlive/pkg/render"
)

// DefaultInterval is the pause between stream frames.
const DefaultInterval = 250 * time.Millisecond

// Renderer turns a tree into an SVG drawing.
type Renderer interface {
	Render(ctx context.Context, g *dag.DAG, opts render.Options) ([]byte, error)
}

// Graphviz renders with the embedded Graphviz.
type Graphviz struct{}

// Render implements [Renderer].
func (Graphviz) Render(ctx context.Context, g *dag.DAG, opts render.Options) ([]byte, error) {
	return render.RenderSVG(ctx, render.ToDOT(g, opts))
}

// Options configures a Server.
type Options struct {
	Tree *dag.DAG
	// Renderer defaults to [Graphviz].
	Renderer Renderer
	// Interval between stream frames.
	Interval time.Duration
	Logger   *log.Logger
	// Now defaults to time.Now; it stamps stream frames.
	Now func() time.Time
}

// Server holds the tree, its drawing and the node colors.
type Server struct {
	tree     *dag.DAG
	renderer Renderer
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time

	byLabel map[string]string
	colors  *colors.Table

	mu       sync.RWMutex
	base     []byte
	updated  time.Time
	statuses int
}

// New renders the initial drawing and returns a server.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "no tree")
	}
	if opts.Renderer == nil {
		opts.Renderer = Graphviz{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	s := &Server{
		tree:     opts.Tree,
		renderer: opts.Renderer,
		interval: opts.Interval,
		logger:   logger,
		now:      opts.Now,
		byLabel:  make(map[string]string),
		colors:   colors.NewTable(),
	}
	for _, n := range s.tree.Nodes() {
		s.colors.Set(n.ID, colors.UnknownFill)
		if n.Label != "" {
			if _, dup := s.byLabel[n.Label]; !dup {
				s.byLabel[n.Label] = n.ID
			}
		}
	}

	base, err := s.render(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.base = base
	s.logger.Info("rendered tree", "nodes", s.tree.NodeCount(), "edges", s.tree.EdgeCount(), "bytes", len(base))
	return s, nil
}

// Base returns the initial drawing.
func (s *Server) Base() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

// Relayout renders the tree with per-node sizes in inches and spacing
// derived from the largest size. Ids not in the tree are ignored.
func (s *Server) Relayout(ctx context.Context, dims map[string]render.Dims) ([]byte, error) {
	return s.render(ctx, dims)
}

func (s *Server) render(ctx context.Context, dims map[string]render.Dims) ([]byte, error) {
	opts := render.SpacingFor(dims)
	opts.Dims = dims
	if dims != nil {
		// a relayout keeps the current colors in the new drawing
		opts.Fills = s.colors.Snapshot()
	}

	start := time.Now()
	svg, err := s.renderer.Render(ctx, s.tree, opts)
	elapsed := time.Since(start)
	observability.Server().OnRender(ctx, s.tree.NodeCount(), elapsed, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render tree")
	}
	s.logger.Debug("rendered", "dims", len(dims), "nodesep", opts.NodeSep, "ranksep", opts.RankSep, "elapsed", elapsed)
	return svg, nil
}

// Resolve maps a status key to a node id: ids match first, then labels.
func (s *Server) Resolve(key string) (string, bool) {
	if _, ok := s.tree.Node(key); ok {
		return key, true
	}
	id, ok := s.byLabel[key]
	return id, ok
}

// SetState records the state of a node.
func (s *Server) SetState(ctx context.Context, id string, st colors.State) {
	s.colors.Set(id, st.Color())
	s.mu.Lock()
	s.updated = s.now()
	s.statuses++
	s.mu.Unlock()
	observability.Server().OnStatus(ctx, st.String())
}

// ApplyStatus records a batch of raw statuses keyed by node id or label.
// Unknown keys are skipped; unknown statuses get the unknown fill.
func (s *Server) ApplyStatus(ctx context.Context, batch map[string]json.RawMessage) (applied int, skipped []string) {
	for key, raw := range batch {
		id, ok := s.Resolve(key)
		if !ok {
			skipped = append(skipped, key)
			continue
		}
		s.SetState(ctx, id, colors.ParseState(raw))
		applied++
	}
	if len(skipped) > 0 {
		s.logger.Debug("skipped status for unknown nodes", "keys", skipped)
	}
	return applied, skipped
}

// Frame returns one stream payload: the timestamp in unix nanoseconds and
// the color of every node.
func (s *Server) Frame() map[string]any {
	snap := s.colors.Snapshot()
	frame := make(map[string]any, len(snap)+1)
	for id, c := range snap {
		frame[id] = c
	}
	frame["timestamp"] = s.now().UnixNano()
	return frame
}

// RandomStates returns a random state per node, keyed by id.
func (s *Server) RandomStates() map[string]int {
	states := make(map[string]int, s.tree.NodeCount())
	for _, n := range s.tree.Nodes() {
		states[n.ID] = rand.IntN(int(colors.Failure)) + 1
	}
	return states
}

// RunDemo applies random states every interval until ctx is done.
func (s *Server) RunDemo(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batch := make(map[string]json.RawMessage)
			for id, st := range s.RandomStates() {
				batch[id] = json.RawMessage(strconv.Itoa(st))
			}
			s.ApplyStatus(ctx, batch)
		}
	}
}

// Stats summarises status ingest.
type Stats struct {
	Nodes    int       `json:"nodes"`
	Statuses int       `json:"statuses"`
	Updated  time.Time `json:"updated,omitzero"`
}

// Stats returns ingest counters.
func (s *Server) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Nodes: s.tree.NodeCount(), Statuses: s.statuses, Updated: s.updated}
}
