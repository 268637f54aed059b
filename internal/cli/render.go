package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/btlive/pkg/io"
	"github.com/matzehuels/btlive/pkg/render"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string // output file path; defaults to the input with a new extension
	format string // "svg" or "dot"
}

// renderCommand creates the render command, which draws a tree file once
// without starting a server.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Render a behavior tree to SVG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input with .svg/.dot)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format := strings.ToLower(opts.format)
	if format != formatSVG && format != formatDOT {
		return fmt.Errorf("unknown format %q (want svg or dot)", opts.format)
	}

	g, err := io.ImportJSON(input)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	dot := render.ToDOT(g, render.Options{})
	data := []byte(dot)
	if format == formatSVG {
		if data, err = render.RenderSVG(ctx, dot); err != nil {
			return err
		}
	}
	prog.done("Rendered "+input, "format", format)

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	printStats(g.NodeCount(), g.EdgeCount())
	printFile(out)
	return nil
}
