// Package render groups the output backends for beeswarm layouts.
//
// A [plot.Layout] is already in figure pixel coordinates, so rendering is a
// straight drawing pass with no further geometry. The [sink] subpackage holds
// the backends:
//
//   - SVG: a standalone document built with a byte buffer
//   - PNG: rasterized natively with golang.org/x/image/vector, no external tools
//   - JSON: the layout itself, readable with [plot.Unmarshal]
//
// Every backend draws circles with their final radius, which is smaller than
// the requested marker size for lanes resolved with the shrink policy.
//
// [plot.Layout]: github.com/matzehuels/beeswarm/pkg/plot.Layout
// [plot.Unmarshal]: github.com/matzehuels/beeswarm/pkg/plot.Unmarshal
// [sink]: github.com/matzehuels/beeswarm/pkg/render/sink
package render
