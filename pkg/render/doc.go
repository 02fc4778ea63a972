// Package render provides visualization rendering for nodeflow graphs.
//
// # Overview
//
// This package contains format conversion shared by the renderers:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Node-link diagrams of pipelines (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g, opts))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin
// (Linux). [ErrConverterMissing] is returned when rsvg-convert is not on
// the PATH.
//
// [nodelink]: github.com/matzehuels/nodeflow/pkg/render/nodelink
package render
