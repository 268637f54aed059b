package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/btlive/internal/config"
	"github.com/matzehuels/btlive/pkg/errors"
	"github.com/matzehuels/btlive/pkg/io"
	"github.com/matzehuels/btlive/pkg/metrics"
	"github.com/matzehuels/btlive/pkg/server"
)

// serveCommand creates the serve command, which runs the layout server.
func (c *CLI) serveCommand() *cobra.Command {
	var flags config.ServerConfig

	cmd := &cobra.Command{
		Use:   "serve [tree.json]",
		Short: "Serve a behavior tree drawing and stream its node states",
		Long: `Serve renders the tree, streams node colors on /msg, re-renders on
POST /relayout and accepts node states on POST /status.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.Server
			if len(args) == 1 {
				opts.Tree = args[0]
			}
			overrideServer(cmd, &opts, flags)
			c.cfg.Server = opts
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", "", "listen address (default :8000)")
	cmd.Flags().DurationVar(&flags.Interval, "interval", 0, "pause between stream frames")
	cmd.Flags().BoolVar(&flags.Demo, "demo", false, "feed random node states")
	cmd.Flags().DurationVar(&flags.DemoInterval, "demo-interval", 0, "pause between random states")
	cmd.Flags().BoolVar(&flags.Metrics, "metrics", false, "serve prometheus metrics on /metrics")

	return cmd
}

// overrideServer copies flags the user set over file values.
func overrideServer(cmd *cobra.Command, opts *config.ServerConfig, flags config.ServerConfig) {
	f := cmd.Flags()
	if f.Changed("addr") {
		opts.Addr = flags.Addr
	}
	if f.Changed("interval") {
		opts.Interval = flags.Interval
	}
	if f.Changed("demo") {
		opts.Demo = flags.Demo
	}
	if f.Changed("demo-interval") {
		opts.DemoInterval = flags.DemoInterval
	}
	if f.Changed("metrics") {
		opts.Metrics = flags.Metrics
	}
}

func (c *CLI) runServe(cmd *cobra.Command, opts config.ServerConfig) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if opts.Tree == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "no tree file: pass one or set server.tree")
	}
	prog := newProgress(logger)
	g, err := io.ImportJSON(opts.Tree)
	if err != nil {
		return err
	}
	srv, err := server.New(ctx, server.Options{
		Tree:     g,
		Interval: opts.Interval,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	prog.done("Rendered "+opts.Tree, "nodes", g.NodeCount())

	var metricsHandler http.Handler
	if opts.Metrics {
		reg := metrics.NewRegistry()
		reg.Install()
		metricsHandler = reg.Handler()
	}
	if opts.Demo {
		go srv.RunDemo(ctx, opts.DemoInterval)
	}

	printSuccess("Serving %s", StyleLink.Render(displayURL(opts.Addr)))
	printStats(g.NodeCount(), g.EdgeCount())
	return listenAndServe(ctx, opts.Addr, srv.Handler(metricsHandler), logger)
}
