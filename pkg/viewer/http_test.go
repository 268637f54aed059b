package viewer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/btlive/pkg/surface/surfacetest"
	"github.com/matzehuels/btlive/pkg/viewer"
)

func TestHandler(t *testing.T) {
	c := newController(t, viewer.Options{}, surfacetest.Chain("A->B", "B->C"))
	c.SetStatus("Last update: 12:00:00")
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	srv := httptest.NewServer(viewer.Handler(c, metrics, nil))
	defer srv.Close()

	tests := []struct {
		name        string
		method      string
		path        string
		wantCode    int
		wantType    string
		wantContain string
	}{
		{"index", http.MethodGet, "/", 200, "text/html", `id="last_update">Last update: 12:00:00<`},
		{"surface", http.MethodGet, "/surface.svg", 200, "image/svg+xml", `<svg`},
		{"status", http.MethodGet, "/status", 200, "application/json", `"status":"Last update: 12:00:00"`},
		{"metrics", http.MethodGet, "/metrics", 200, "", "# metrics"},
		{"toggle", http.MethodPost, "/toggle/A", 200, "application/json", `"collapsed":true`},
		{"toggle leaf", http.MethodPost, "/toggle/C", 200, "application/json", `"changed":false`},
		{"toggle unknown", http.MethodPost, "/toggle/Z", 404, "application/json", `NOT_FOUND`},
		{"toggle needs post", http.MethodGet, "/toggle/A", 405, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			var body bytes.Buffer
			if _, err := body.ReadFrom(resp.Body); err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantCode, body.String())
			}
			if tt.wantType != "" && !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
			}
			if !strings.Contains(body.String(), tt.wantContain) {
				t.Errorf("body does not contain %q:\n%s", tt.wantContain, body.String())
			}
		})
	}

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st viewer.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if len(st.Collapsed) != 1 || st.Collapsed[0] != "A" {
		t.Errorf("collapsed = %v after toggle", st.Collapsed)
	}
}

func TestHandlerWithoutSurface(t *testing.T) {
	c := viewer.New(viewer.Options{})
	defer c.Close()
	srv := httptest.NewServer(viewer.Handler(c, nil, nil))
	defer srv.Close()

	for _, path := range []string{"/", "/surface.svg"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", path, resp.StatusCode)
		}
	}
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /metrics without handler = %d", resp.StatusCode)
	}
}

func TestHandlerTogglesOverlayRow(t *testing.T) {
	ctx := context.Background()
	c := newController(t, viewer.Options{}, surfacetest.Chain("A->B", "B->C"))
	if _, _, err := c.Toggle(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(viewer.Handler(c, nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`data-node-id="B"`, `getAttribute("data-node-id")`} {
		if !strings.Contains(string(page), want) {
			t.Errorf("page does not contain %s", want)
		}
	}

	// B is hidden inside A's overlay but can still be collapsed from its row.
	resp, err = http.Post(srv.URL+"/toggle/B", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var tr viewer.ToggleResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if !tr.Collapsed || !tr.Changed {
		t.Errorf("toggle B = %+v", tr)
	}
	if got := c.Snapshot().Collapsed; !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("collapsed = %v, want [A B]", got)
	}
}
