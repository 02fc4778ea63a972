package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
	"github.com/matzehuels/nodeflow/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the short node ID and parameter values in labels.
	// When false, only the display name is shown.
	Detailed bool

	// Ports draws nodes as records with a field per port.
	Ports bool

	// RankDir is the Graphviz rankdir; empty means "TB".
	RankDir string

	// States colors nodes by run state. Nodes without a state are white.
	States map[string]State
}

// ToDOT converts a graph to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes appear in graph insertion order and edges in edge insertion order,
// so the output is deterministic.
func ToDOT(g *graph.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, opts)
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID()), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		buf.WriteString("  " + fmtEdge(g, e, opts) + ";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n node.Node, detailed bool) string {
	if !detailed {
		return n.Name()
	}

	id := n.ID()
	if len(id) > 8 {
		id = id[:8]
	}
	parts := []string{n.Name(), id}
	params := n.Params()
	for _, k := range slices.Sorted(maps.Keys(params)) {
		parts = append(parts, fmt.Sprintf("%s = %v", k, params[k]))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n node.Node, opts Options) []string {
	label := fmtLabel(n, opts.Detailed)
	var attrs []string
	if opts.Ports {
		attrs = append(attrs, "shape=record", "label=\""+recordLabel(n, label)+"\"")
	} else {
		attrs = append(attrs, "label="+quote(label))
	}
	if state, ok := opts.States[n.ID()]; ok {
		attrs = append(attrs, "fillcolor="+quote(state.Color()))
		if state == StateSkipped {
			attrs = append(attrs, "fontcolor=grey40")
		}
	}
	return attrs
}

// recordLabel lays out inputs, the title and outputs along the rank
// direction. Field names are i<n> and o<n> by port index.
func recordLabel(n node.Node, title string) string {
	var sections []string
	if in := n.Inputs(); len(in) > 0 {
		sections = append(sections, "{"+recordFields("i", in)+"}")
	}
	sections = append(sections, recordEscape(title))
	if out := n.Outputs(); len(out) > 0 {
		sections = append(sections, "{"+recordFields("o", out)+"}")
	}
	return "{" + strings.Join(sections, "|") + "}"
}

func recordFields(prefix string, ports []string) string {
	fields := make([]string, len(ports))
	for i, p := range ports {
		fields[i] = fmt.Sprintf("<%s%d> %s", prefix, i, recordEscape(p))
	}
	return strings.Join(fields, "|")
}

func fmtEdge(g *graph.Graph, e graph.Edge, opts Options) string {
	src, dst := quote(e.SourceNodeID), quote(e.TargetNodeID)
	if opts.Ports {
		sn, _ := g.Node(e.SourceNodeID)
		dn, _ := g.Node(e.TargetNodeID)
		si := slices.Index(sn.Outputs(), e.SourceOutput)
		di := slices.Index(dn.Inputs(), e.TargetInput)
		if si >= 0 && di >= 0 {
			return fmt.Sprintf("%s:o%d -> %s:i%d", src, si, dst, di)
		}
		// Undeclared ports have no record field to attach to.
		return fmt.Sprintf("%s -> %s [label=%s, style=dashed]", src, dst, quote(portLabel(e)))
	}
	return fmt.Sprintf("%s -> %s [label=%s]", src, dst, quote(portLabel(e)))
}

func portLabel(e graph.Edge) string {
	if e.SourceOutput == e.TargetInput {
		return e.SourceOutput
	}
	return e.SourceOutput + " → " + e.TargetInput
}

// quote returns s as a DOT double-quoted string. Newlines become \n line
// breaks.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// recordEscape escapes record label metacharacters. The result is meant to
// be placed inside a DOT double-quoted string as is.
func recordEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`, `"`, `\"`,
		"{", `\{`, "}", `\}`, "|", `\|`, "<", `\<`, ">", `\>`,
		"\n", `\n`,
	)
	return r.Replace(s)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// matching pixel size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
