package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/btlive/internal/config"
	"github.com/matzehuels/btlive/pkg/errors"
	"github.com/matzehuels/btlive/pkg/storage"
	"github.com/matzehuels/btlive/pkg/viewer"
)

const treeJSON = `{
  "nodes": [
    {"id": "1", "label": "Root", "kind": "Sequence"},
    {"id": "2", "label": "Check", "kind": "Condition"},
    {"id": "3", "label": "Act", "kind": "Action"}
  ],
  "edges": [{"from": "1", "to": "2"}, {"from": "1", "to": "3"}]
}`

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	return New(&bytes.Buffer{}, log.InfoLevel)
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommand(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	want := []string{"completion", "render", "serve", "version", "view"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			found = found || g == name
		}
		if !found {
			t.Errorf("subcommand %q missing from %v", name, got)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestConfigFlag(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "log_level = \"debug\"\n[storage]\nkey = \"custom\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, c, "--config", path, "version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if c.cfg.Storage.Key != "custom" {
		t.Errorf("storage key = %q", c.cfg.Storage.Key)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("[viewer]\nrelayout_attempts = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := execute(t, newTestCLI(t), "--config", bad, "version")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad config error = %v", err)
	}
}

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"serve bad addr", []string{"serve", "--addr", "nowhere", "tree.json"}},
		{"view bad server", []string{"view", "--server", "::not a url"}},
		{"view zero attempts", []string{"view", "--relayout-attempts", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, newTestCLI(t), tt.args...)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestServeWithoutTree(t *testing.T) {
	err := execute(t, newTestCLI(t), "serve")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestRenderDOT(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tree.json")
	if err := os.WriteFile(in, []byte(treeJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, newTestCLI(t), "render", "--format", "dot", in); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "tree.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "digraph") || !strings.Contains(string(dot), `"1" -> "2"`) {
		t.Errorf("dot output = %s", dot)
	}

	if err := execute(t, newTestCLI(t), "render", "--format", "png", in); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestOverrideViewer(t *testing.T) {
	c := newTestCLI(t)
	cmd := c.viewCommand()
	if err := cmd.ParseFlags([]string{"--server", "http://bt:9000", "--relayout-attempts", "3"}); err != nil {
		t.Fatal(err)
	}
	var flags config.ViewerConfig
	flags.Server = "http://bt:9000"
	flags.RelayoutAttempts = 3
	opts := config.Default().Viewer
	overrideViewer(cmd, &opts, flags)
	if opts.Server != "http://bt:9000" || opts.RelayoutAttempts != 3 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Addr != ":8080" || opts.Heartbeat != config.Default().Viewer.Heartbeat {
		t.Errorf("unset flags changed defaults: %+v", opts)
	}
}

func TestDisplayURL(t *testing.T) {
	tests := []struct{ addr, want string }{
		{":8000", "http://localhost:8000"},
		{"0.0.0.0:8080", "http://localhost:8080"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000"},
		{"[::1]:8000", "http://[::1]:8000"},
		{"bt.local", "http://bt.local"},
	}
	for _, tt := range tests {
		if got := displayURL(tt.addr); got != tt.want {
			t.Errorf("displayURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	if dir, err := stateDir(); err != nil || dir != "/tmp/state/btlive" {
		t.Errorf("stateDir() = %q, %v", dir, err)
	}
}

func TestOpenStorage(t *testing.T) {
	c := newTestCLI(t)
	st, err := c.openStorage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if _, ok := st.(*storage.FileStorage); !ok {
		t.Errorf("default storage = %T, want file storage", st)
	}

	c.cfg.Storage.URI = "memory"
	st, err = c.openStorage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*storage.MemoryStorage); !ok {
		t.Errorf("storage = %T, want memory", st)
	}

	c.cfg.Storage.URI = "ftp://nowhere"
	if _, err := c.openStorage(context.Background()); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestFetchSurface(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		if !strings.HasPrefix(r.UserAgent(), "btlive/") {
			t.Errorf("User-Agent = %q", r.UserAgent())
		}
		w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()

	svg, err := fetchSurface(context.Background(), srv.URL+"/surface.svg")
	if err != nil {
		t.Fatal(err)
	}
	if string(svg) != "<svg/>" || calls.Load() != 2 {
		t.Errorf("svg = %q after %d calls", svg, calls.Load())
	}

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()
	_, err = fetchSurface(context.Background(), notFound.URL)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("404 error = %v", err)
	}
}

func TestOutputWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.svg")
	write := outputWriter(path, log.New(&bytes.Buffer{}))

	write(viewer.Snapshot{Version: 1})
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("empty snapshot written")
	}

	write(viewer.Snapshot{Version: 2, SVG: []byte("<svg>a</svg>")})
	if got, _ := os.ReadFile(path); string(got) != "<svg>a</svg>" {
		t.Errorf("file = %q", got)
	}
	write(viewer.Snapshot{Version: 3, SVG: []byte("<svg>b</svg>")})
	if got, _ := os.ReadFile(path); string(got) != "<svg>b</svg>" {
		t.Errorf("file = %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
