package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/cache"
	"github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/render"
	"github.com/matzehuels/nodeflow/pkg/render/nodelink"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
	formatPDF = "pdf"
	formatPNG = "png"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatPDF: true, formatPNG: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path; "-" writes to stdout
	format   string  // svg, dot, pdf or png; inferred from output when empty
	detailed bool    // show node IDs and parameters in labels
	ports    bool    // draw nodes as records with port fields
	rankDir  string  // Graphviz rankdir
	overlay  bool    // execute the graph and color nodes by outcome
	scale    float64 // PNG scale factor
	noCache  bool    // bypass the artifact cache
}

// renderCommand creates the render command for generating node-link
// diagrams of a document.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{rankDir: "LR", scale: 2.0}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph document as a diagram",
		Long: `Render a graph document as a node-link diagram.

The format is taken from --format, then from the output extension, and
defaults to SVG. PDF and PNG output require rsvg-convert (librsvg).
Rendered SVG is cached by document content unless --run or --no-cache
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveFormat(args[0], &opts); err != nil {
				return err
			}
			return c.renderGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node IDs and parameters")
	cmd.Flags().BoolVar(&opts.ports, "ports", false, "draw port fields and connect edges to them")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", opts.rankDir, "layout direction: LR, TB, RL, BT")
	cmd.Flags().BoolVar(&opts.overlay, "run", false, "execute the graph and color nodes by outcome")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// resolveFormat fills in the format and output path.
func resolveFormat(input string, opts *renderOpts) error {
	if opts.format == "" && opts.output != "" && opts.output != "-" {
		opts.format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
	}
	if opts.format == "" {
		opts.format = formatSVG
	}
	if !validFormats[opts.format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'svg', 'dot', 'pdf', or 'png')", opts.format)
	}
	switch strings.ToUpper(opts.rankDir) {
	case "LR", "TB", "RL", "BT":
		opts.rankDir = strings.ToUpper(opts.rankDir)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid rankdir: %s", opts.rankDir)
	}
	if opts.output == "" {
		opts.output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	return nil
}

func (c *CLI) renderGraph(ctx context.Context, path string, opts renderOpts) error {
	prog := newProgress(loggerFromContext(ctx))

	g, doc, err := c.loadGraph(path)
	if err != nil {
		return err
	}

	dopts := nodelink.Options{Detailed: opts.detailed, Ports: opts.ports, RankDir: opts.rankDir}
	if opts.overlay {
		res := c.newEngine().Process(ctx, g)
		if !res.Succeeded() {
			printWarning(c.out, "run %s; rendering partial outcome", res.Status)
		}
		dopts.States = nodelink.StatesFromRun(res)
	}
	dot := nodelink.ToDOT(g, dopts)

	var (
		data   []byte
		cached bool
	)
	if opts.format == formatDOT {
		data = []byte(dot)
	} else {
		data, cached, err = c.renderSVG(ctx, doc, dot, opts)
		if err != nil {
			return err
		}
		data, err = convertSVG(ctx, data, opts)
		if err != nil {
			return err
		}
	}

	if opts.output == "-" {
		_, err := c.out.Write(data)
		return err
	}
	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory")
		}
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}

	prog.done(fmt.Sprintf("Rendered %s", opts.format))
	printSuccess(c.out, "Rendered %s diagram", strings.ToUpper(opts.format))
	printFile(c.out, opts.output)
	printStats(c.out, g.NodeCount(), g.EdgeCount(), cached)
	return nil
}

// renderSVG renders dot, reusing a cached artifact for the same document
// and layout options. Overlays depend on a run and are never cached.
func (c *CLI) renderSVG(ctx context.Context, doc graph.Document, dot string, opts renderOpts) ([]byte, bool, error) {
	compute := func() ([]byte, error) { return nodelink.RenderSVG(ctx, dot) }
	if opts.overlay || opts.noCache {
		data, err := compute()
		return data, false, wrapRender(err)
	}

	docHash, err := cache.DocumentHash(doc)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	key := cache.NewDefaultKeyer().ArtifactKey(docHash, cache.ArtifactKeyOpts{
		Format:   formatSVG,
		RankDir:  opts.rankDir,
		Ports:    opts.ports,
		Detailed: opts.detailed,
	})

	cc := c.newCache(ctx, false)
	defer cc.Close()

	data, hit, err := cache.Fetch(ctx, cc, key, "artifact", c.cfg.CacheTTL(), compute)
	return data, hit, wrapRender(err)
}

// convertSVG turns SVG into the requested raster or PDF format.
func convertSVG(ctx context.Context, svg []byte, opts renderOpts) ([]byte, error) {
	if opts.format == formatSVG {
		return svg, nil
	}

	spin := startSpinner(ctx, os.Stderr, fmt.Sprintf("Converting to %s...", strings.ToUpper(opts.format)))
	defer spin.Stop()

	var (
		data []byte
		err  error
	)
	switch opts.format {
	case formatPDF:
		data, err = render.ToPDF(ctx, svg)
	case formatPNG:
		data, err = render.ToPNG(ctx, svg, opts.scale)
	}
	if err != nil {
		if stderrors.Is(err, render.ErrConverterMissing) {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "%s output unavailable", opts.format)
		}
		return nil, wrapRender(err)
	}
	return data, nil
}

func wrapRender(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "render")
}
