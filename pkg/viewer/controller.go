package viewer

import (
	"context"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/btlive/pkg/collapse"
	"github.com/matzehuels/btlive/pkg/colors"
	"github.com/matzehuels/btlive/pkg/errors"
	"github.com/matzehuels/btlive/pkg/fonts"
	"github.com/matzehuels/btlive/pkg/index"
	"github.com/matzehuels/btlive/pkg/livesync"
	"github.com/matzehuels/btlive/pkg/observability"
	"github.com/matzehuels/btlive/pkg/overlay"
	"github.com/matzehuels/btlive/pkg/relayout"
	"github.com/matzehuels/btlive/pkg/surface"
	"github.com/matzehuels/btlive/pkg/visibility"
)

// ErrNoSurface is returned before the first surface is attached.
var ErrNoSurface = errors.New(errors.ErrCodeNotFound, "no surface attached")

// Relayouter requests a re-rendered drawing for the given overlay sizes.
// *relayout.Client implements it.
type Relayouter interface {
	Relayout(ctx context.Context, dims map[string]overlay.Dims) ([]byte, error)
}

// Listener receives a snapshot after every change. Listeners run one at a
// time in change order. They may call read-only controller methods but
// must not mutate the controller.
type Listener func(Snapshot)

// Options configures a Controller.
type Options struct {
	// Store holds the collapsed set. Defaults to an in-memory store.
	Store *collapse.Store
	// Colors is the shared color table. Defaults to a new table.
	Colors *colors.Table
	// Relayout enables relayout requests after toggles. Nil disables them.
	Relayout Relayouter
	// Debounce is the quiet period before a relayout request.
	Debounce    time.Duration
	Measurer    fonts.Measurer
	Attachments []Attachment
	Logger      *log.Logger
}

// state is the render state of one attached surface.
type state struct {
	doc *surface.Document
	idx *index.Index
}

// Controller owns the render state.
type Controller struct {
	opts   Options
	logger *log.Logger

	mu        sync.Mutex
	cur       *state
	dims      map[string]overlay.Dims
	status    string
	version   int
	listeners []Listener

	emitMu sync.Mutex

	ctx       context.Context
	cancel    context.CancelFunc
	debouncer *relayout.Debouncer
}

// New returns a controller without a surface.
func New(opts Options) *Controller {
	if opts.Store == nil {
		opts.Store = collapse.New(nil)
	}
	if opts.Colors == nil {
		opts.Colors = colors.NewTable()
	}
	if opts.Measurer == nil {
		opts.Measurer = fonts.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		opts:   opts,
		logger: logger,
		dims:   make(map[string]overlay.Dims),
		ctx:    ctx,
		cancel: cancel,
	}
	if opts.Relayout != nil {
		c.debouncer = relayout.NewDebouncer(ctx, opts.Debounce, c.relayoutScheduled)
	}
	return c
}

// Close stops scheduled relayouts. A relayout in flight completes.
func (c *Controller) Close() {
	if c.debouncer != nil {
		c.debouncer.Stop()
	}
	c.cancel()
}

// Listen registers l.
func (c *Controller) Listen(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Attached reports whether a surface is attached.
func (c *Controller) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur != nil
}

// Attach installs the first surface. Calling it again replaces the
// surface like [Controller.ReplaceSurface].
func (c *Controller) Attach(ctx context.Context, doc *surface.Document) {
	c.mu.Lock()
	c.install(ctx, doc)
	c.unlockAndEmit()
}

// ReplaceSurface parses svg and swaps it in. A parse failure leaves the
// current surface, overlays and colors untouched.
func (c *Controller) ReplaceSurface(ctx context.Context, svg []byte) error {
	doc, err := surface.Parse(svg)
	if err != nil {
		c.logger.Error("rejected replacement surface", "err", err)
		return err
	}
	c.Attach(ctx, doc)
	return nil
}

// install rebuilds the render state around doc. Caller holds mu.
func (c *Controller) install(ctx context.Context, doc *surface.Document) {
	doc.SetMeasurer(c.opts.Measurer)
	for _, a := range c.opts.Attachments {
		if err := a.Attach(doc); err != nil {
			c.logger.Warn("surface attachment failed", "err", err)
		}
	}
	idx := index.Build(doc, c.opts.Colors, c.logger)
	st := &state{doc: doc, idx: idx}

	c.dims = make(map[string]overlay.Dims)
	for _, id := range c.opts.Store.IDs() {
		if !idx.HasChildren(id) {
			continue
		}
		c.drawOverlay(st, id)
	}
	c.applyVisibility(st)
	c.applyColors(st)

	first := c.cur == nil
	c.cur = st
	c.version++
	nodes, edges := len(idx.Nodes()), len(idx.Edges())
	if first {
		c.logger.Info("surface attached", "nodes", nodes, "edges", edges, "collapsed", len(c.dims))
	} else {
		c.logger.Debug("surface replaced", "nodes", nodes, "edges", edges, "collapsed", len(c.dims))
	}
	observability.Viewer().OnSurfaceReplaced(ctx, nodes, edges)
}

// Toggle flips the collapse state of id and reports the new state. A node
// without children is not collapsible: the call changes nothing and
// reports changed == false.
func (c *Controller) Toggle(ctx context.Context, id string) (collapsed, changed bool, err error) {
	if err := errors.ValidateNodeID(id); err != nil {
		return false, false, err
	}
	c.mu.Lock()
	st := c.cur
	if st == nil {
		c.mu.Unlock()
		return false, false, ErrNoSurface
	}
	if _, ok := st.idx.Node(id); !ok {
		c.mu.Unlock()
		return false, false, errors.New(errors.ErrCodeNotFound, "unknown node %q", id)
	}

	collapsed, changed = c.opts.Store.Toggle(ctx, id, st.idx.HasChildren(id))
	if !changed {
		c.mu.Unlock()
		c.logger.Debug("ignored toggle of leaf node", "id", id)
		return false, false, nil
	}
	if collapsed {
		c.drawOverlay(st, id)
	} else {
		c.removeOverlay(st, id)
	}
	c.applyVisibility(st)
	c.version++
	c.logger.Debug("toggled node", "id", id, "collapsed", collapsed)
	observability.Viewer().OnToggle(ctx, id, collapsed)
	c.unlockAndEmit()

	if c.debouncer != nil {
		c.debouncer.Trigger()
	}
	return collapsed, true, nil
}

// ApplyUpdate merges a color update into the table and repaints shapes
// and overlay rows.
func (c *Controller) ApplyUpdate(u livesync.Update) {
	c.opts.Colors.Merge(u.Colors)
	c.mu.Lock()
	if c.cur == nil {
		c.mu.Unlock()
		return
	}
	c.applyColors(c.cur)
	c.version++
	c.unlockAndEmit()
}

// SetStatus replaces the status line.
func (c *Controller) SetStatus(status string) {
	c.mu.Lock()
	if c.status == status {
		c.mu.Unlock()
		return
	}
	c.status = status
	c.version++
	c.unlockAndEmit()
}

// Status returns the status line.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Dims returns a copy of the collapsed overlay sizes in inches.
func (c *Controller) Dims() map[string]overlay.Dims {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.dims)
}

// SVG serialises the current drawing.
func (c *Controller) SVG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return nil, ErrNoSurface
	}
	return c.cur.doc.Bytes()
}

// Relayout sends the current overlay sizes to the layout server and swaps
// in the returned drawing. On failure the current state stays as it is.
// The request runs without holding the controller lock; changes made
// while it is in flight are reapplied to the new surface.
func (c *Controller) Relayout(ctx context.Context) error {
	if c.opts.Relayout == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "relayout is not configured")
	}
	if !c.Attached() {
		return ErrNoSurface
	}
	dims := c.Dims()
	svg, err := c.opts.Relayout.Relayout(ctx, dims)
	if err != nil {
		return err
	}
	return c.ReplaceSurface(ctx, svg)
}

// ScheduleRelayout triggers a debounced relayout.
func (c *Controller) ScheduleRelayout() {
	if c.debouncer != nil {
		c.debouncer.Trigger()
	}
}

// WaitRelayout blocks until no relayout is scheduled or running.
func (c *Controller) WaitRelayout() {
	if c.debouncer != nil {
		c.debouncer.Wait()
	}
}

func (c *Controller) relayoutScheduled(ctx context.Context) {
	if err := c.Relayout(ctx); err != nil {
		c.logger.Error("relayout failed, keeping current layout", "err", err)
	}
}

// drawOverlay collapses id on st. Caller holds mu.
func (c *Controller) drawOverlay(st *state, id string) {
	n, ok := st.idx.Node(id)
	if !ok || !n.HasShape() {
		c.logger.Warn("cannot draw overlay for node without shape", "id", id)
		return
	}
	overlay.Prepare(n)
	box, ok := n.Bounds()
	if !ok {
		c.logger.Warn("cannot read node geometry", "id", id)
		return
	}
	l, ok := overlay.Compute(overlay.Input{
		ID:      id,
		Box:     box,
		Tree:    overlay.BuildSubtree(st.idx.Children, id),
		Label:   st.idx.Label,
		Measure: st.doc,
	})
	if !ok {
		return
	}
	overlay.Draw(st.doc, n, l, c.opts.Colors.Get)
	c.dims[id] = l.Dims
}

// removeOverlay expands id on st. Caller holds mu.
func (c *Controller) removeOverlay(st *state, id string) {
	if n, ok := st.idx.Node(id); ok {
		overlay.Remove(n)
	}
	delete(c.dims, id)
}

func (c *Controller) applyVisibility(st *state) {
	eng := visibility.New(st.idx, c.opts.Store.Contains)
	visibility.Apply(st.idx, eng.Compute())
}

func (c *Controller) applyColors(st *state) {
	for _, id := range st.idx.Nodes() {
		if n, ok := st.idx.Node(id); ok {
			n.SetFill(c.opts.Colors.Get(id))
		}
	}
	overlay.Recolor(st.doc, c.opts.Colors.Get)
}

// unlockAndEmit releases mu and delivers a snapshot to listeners. emitMu is
// taken before mu is released so snapshots arrive in change order.
func (c *Controller) unlockAndEmit() {
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	listeners := slices.Clone(c.listeners)
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()
	for _, l := range listeners {
		l(snap)
	}
}
