// Package nodes provides the built-in node types shipped with nodeflow.
//
// # Catalogue
//
// Scalar nodes operate on float64 values:
//
//   - Constant: emits its "value" parameter
//   - Add: sums inputs "a" and "b" into "sum"
//   - Scale: multiplies "value" by the "factor" parameter
//   - Fail: always fails with its "message" parameter
//
// Image nodes operate on [image.Image] values:
//
//   - Load Image: decodes the PNG, JPEG or GIF file at "path" as grayscale
//   - Save Image: encodes its input as PNG at "path"
//   - Grayscale: converts to 8-bit gray
//   - Blur: box filter with an odd "kernel_size"
//   - Canny Edge: Canny edge detection with "threshold1" and "threshold2"
//
// Display publishes its input through the [node.Observer] on the execution
// context and produces no outputs.
//
// Nodes that receive no value on a required input forward nil on their
// outputs instead of failing, so a partially wired graph still runs.
//
// # Registration
//
// [Register] adds every built-in to a [node.Registry]. [DefaultRegistry]
// returns a registry holding only the built-ins:
//
//	reg := nodes.DefaultRegistry()
//	g, report, err := graph.ReadGraphFile("pipeline.json", reg)
package nodes
