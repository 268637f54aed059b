package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/btlive/pkg/colors"
	"github.com/matzehuels/btlive/pkg/dag"
	"github.com/matzehuels/btlive/pkg/fonts"
	"github.com/matzehuels/btlive/pkg/livesync"
	"github.com/matzehuels/btlive/pkg/relayout"
	"github.com/matzehuels/btlive/pkg/render"
	"github.com/matzehuels/btlive/pkg/server"
	"github.com/matzehuels/btlive/pkg/surface"
	"github.com/matzehuels/btlive/pkg/surface/surfacetest"
	"github.com/matzehuels/btlive/pkg/viewer"
)

// columnRenderer draws the tree with surfacetest so no Graphviz is needed.
type columnRenderer struct{}

func (columnRenderer) Render(_ context.Context, g *dag.DAG, _ render.Options) ([]byte, error) {
	b := surfacetest.New()
	for _, n := range g.Nodes() {
		b.Node(n.ID, n.DisplayLabel(), "")
	}
	for _, e := range g.Edges() {
		b.RawEdge(e.From + "->" + e.To)
	}
	return b.Bytes(), nil
}

func TestViewerAgainstServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := dag.New(nil)
	for _, id := range []string{"1", "2", "3"} {
		_ = tree.AddNode(dag.Node{ID: id})
	}
	_ = tree.AddEdge(dag.Edge{From: "1", To: "2"})
	_ = tree.AddEdge(dag.Edge{From: "2", To: "3"})

	srv, err := server.New(ctx, server.Options{Tree: tree, Renderer: columnRenderer{}, Interval: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	var relayouts atomic.Int32
	routes := srv.Handler(nil)
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/relayout" {
			relayouts.Add(1)
		}
		routes.ServeHTTP(w, r)
	}))
	defer hs.Close()
	// the stream handler only returns once the client goes away
	defer cancel()

	ctrl := viewer.New(viewer.Options{
		Relayout: relayout.New(relayout.Options{URL: hs.URL + "/relayout"}),
		Debounce: 10 * time.Millisecond,
		Measurer: fonts.Fallback{},
	})
	defer ctrl.Close()

	resp, err := http.Get(hs.URL + "/surface.svg")
	if err != nil {
		t.Fatal(err)
	}
	buf, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if err := ctrl.ReplaceSurface(ctx, buf); err != nil {
		t.Fatal(err)
	}

	updates := make(chan struct{}, 16)
	client := livesync.New(livesync.Options{
		URL: hs.URL + "/msg",
		OnUpdate: func(u livesync.Update) {
			ctrl.ApplyUpdate(u)
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	})
	go client.Run(ctx)

	srv.SetState(ctx, "3", colors.Failure)
	deadline := time.After(5 * time.Second)
	for colorOf(t, ctrl, "3") != colors.Failure.Color() {
		select {
		case <-updates:
		case <-deadline:
			t.Fatal("color update never reached the drawing")
		}
	}

	if _, _, err := ctrl.Toggle(ctx, "2"); err != nil {
		t.Fatal(err)
	}
	ctrl.WaitRelayout()
	if relayouts.Load() != 1 {
		t.Errorf("relayout requests = %d, want 1", relayouts.Load())
	}
	snap := ctrl.Snapshot()
	doc, err := surface.Parse(snap.SVG)
	if err != nil {
		t.Fatal(err)
	}
	var rows []string
	for _, r := range doc.OverlayRects() {
		rows = append(rows, r.NodeID())
	}
	if len(rows) != 2 || rows[0] != "2" || rows[1] != "3" {
		t.Errorf("overlay rows after relayout = %v", rows)
	}
	if _, ok := ctrl.Dims()["2"]; !ok {
		t.Error("dims for 2 missing after relayout")
	}
}

func colorOf(t *testing.T, c *viewer.Controller, id string) string {
	t.Helper()
	for _, n := range c.Snapshot().Nodes {
		if n.ID == id {
			return n.Color
		}
	}
	return ""
}
