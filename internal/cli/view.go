package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/btlive/internal/config"
	"github.com/matzehuels/btlive/pkg/buildinfo"
	"github.com/matzehuels/btlive/pkg/collapse"
	"github.com/matzehuels/btlive/pkg/errors"
	"github.com/matzehuels/btlive/pkg/fonts"
	"github.com/matzehuels/btlive/pkg/httputil"
	"github.com/matzehuels/btlive/pkg/livesync"
	"github.com/matzehuels/btlive/pkg/metrics"
	"github.com/matzehuels/btlive/pkg/relayout"
	"github.com/matzehuels/btlive/pkg/surface"
	"github.com/matzehuels/btlive/pkg/viewer"
)

const (
	fetchAttempts = 5
	fetchDelay    = 500 * time.Millisecond
)

// viewCommand creates the view command, which attaches to a layout server.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		flags config.ViewerConfig
		tui   bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Watch a behavior tree served by btlive serve",
		Long: `View fetches the drawing from a layout server, keeps node colors live
and serves the drawing with collapsible subtrees. Collapse state persists
across runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.Viewer
			overrideViewer(cmd, &opts, flags)
			c.cfg.Viewer = opts
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			return c.runView(cmd.Context(), opts, tui)
		},
	}

	cmd.Flags().StringVarP(&flags.Server, "server", "s", "", "layout server URL (default http://localhost:8000)")
	cmd.Flags().StringVar(&flags.Addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().DurationVar(&flags.Heartbeat, "heartbeat", 0, "longest silence before reconnecting")
	cmd.Flags().DurationVar(&flags.ReconnectDelay, "reconnect-delay", 0, "wait before reconnecting")
	cmd.Flags().DurationVar(&flags.Debounce, "debounce", 0, "quiet period before a relayout request")
	cmd.Flags().IntVar(&flags.RelayoutAttempts, "relayout-attempts", 0, "tries per relayout request")
	cmd.Flags().StringVarP(&flags.Output, "out", "o", "", "write the drawing to this file on every change")
	cmd.Flags().BoolVar(&flags.Metrics, "metrics", false, "serve prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&tui, "tui", false, "show an interactive node list")

	return cmd
}

// overrideViewer copies flags the user set over file values.
func overrideViewer(cmd *cobra.Command, opts *config.ViewerConfig, flags config.ViewerConfig) {
	f := cmd.Flags()
	if f.Changed("server") {
		opts.Server = flags.Server
	}
	if f.Changed("addr") {
		opts.Addr = flags.Addr
	}
	if f.Changed("heartbeat") {
		opts.Heartbeat = flags.Heartbeat
	}
	if f.Changed("reconnect-delay") {
		opts.ReconnectDelay = flags.ReconnectDelay
	}
	if f.Changed("debounce") {
		opts.Debounce = flags.Debounce
	}
	if f.Changed("relayout-attempts") {
		opts.RelayoutAttempts = flags.RelayoutAttempts
	}
	if f.Changed("out") {
		opts.Output = flags.Output
	}
	if f.Changed("metrics") {
		opts.Metrics = flags.Metrics
	}
}

func (c *CLI) runView(ctx context.Context, opts config.ViewerConfig, tui bool) error {
	logger := loggerFromContext(ctx)
	base := strings.TrimRight(opts.Server, "/")

	prog := newProgress(logger)
	svg, err := fetchSurface(ctx, base+"/surface.svg")
	if err != nil {
		return err
	}
	doc, err := surface.Parse(svg)
	if err != nil {
		return err
	}
	prog.done("Fetched drawing", "server", base, "bytes", len(svg))

	st, err := c.openStorage(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	store := collapse.New(st, collapse.WithKey(c.cfg.Storage.Key), collapse.WithLogger(logger))
	store.Load(ctx)

	var metricsHandler http.Handler
	if opts.Metrics {
		reg := metrics.NewRegistry()
		reg.Install()
		metricsHandler = reg.Handler()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := viewer.New(viewer.Options{
		Store: store,
		Relayout: relayout.New(relayout.Options{
			URL:      base + "/relayout",
			Attempts: opts.RelayoutAttempts,
			Logger:   logger,
		}),
		Debounce:    opts.Debounce,
		Measurer:    fonts.Default(),
		Attachments: []viewer.Attachment{viewer.Fit},
		Logger:      logger,
	})
	defer ctrl.Close()
	if opts.Output != "" {
		ctrl.Listen(outputWriter(opts.Output, logger))
	}
	ctrl.Attach(ctx, doc)

	var client *livesync.Client
	client = livesync.New(livesync.Options{
		URL:            base + "/msg",
		Heartbeat:      opts.Heartbeat,
		ReconnectDelay: opts.ReconnectDelay,
		Logger:         logger,
		OnUpdate: func(u livesync.Update) {
			ctrl.ApplyUpdate(u)
			ctrl.SetStatus(client.Status())
		},
		OnStateChange: func(livesync.State) {
			ctrl.SetStatus(client.Status())
		},
	})

	if tui {
		// the node list owns the terminal
		logger.SetOutput(io.Discard)
	} else {
		printSuccess("Viewing %s at %s", base, StyleLink.Render(displayURL(opts.Addr)))
		printDetail("%d nodes collapsed", store.Len())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := client.Run(gctx); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return listenAndServe(gctx, opts.Addr, viewer.Handler(ctrl, metricsHandler, logger), logger)
	})
	if tui {
		g.Go(func() error {
			defer cancel()
			return runNodeList(gctx, ctrl)
		})
	}
	return g.Wait()
}

// fetchSurface downloads the initial drawing, retrying while the server
// starts up.
func fetchSurface(ctx context.Context, url string) ([]byte, error) {
	var svg []byte
	err := httputil.Retry(ctx, fetchAttempts, fetchDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", buildinfo.UserAgent())
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()
		if err := httputil.CheckResponse(resp); err != nil {
			return err
		}
		svg, err = httputil.ReadBody(resp.Body)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)
	}
	return svg, nil
}

// outputWriter returns a listener that writes every new drawing to path.
// Writes go through a temporary file so readers never see a partial file.
func outputWriter(path string, logger *log.Logger) viewer.Listener {
	var last []byte
	return func(s viewer.Snapshot) {
		if len(s.SVG) == 0 || string(s.SVG) == string(last) {
			return
		}
		if err := writeFileAtomic(path, s.SVG); err != nil {
			logger.Warn("write drawing", "path", path, "err", err)
			return
		}
		last = s.SVG
		logger.Debug("wrote drawing", "path", path, "version", s.Version)
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".btlive-*.svg")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
