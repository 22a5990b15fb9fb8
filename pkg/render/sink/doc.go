// Package sink renders beeswarm layouts to output formats.
//
// # Overview
//
// A "sink" transforms a computed [plot.Layout] into a final output format:
//
//   - SVG: vector output built with [RenderSVG]
//   - PNG: raster output built natively with [RenderPNG], no external tools
//   - JSON: the layout itself, for caching and round-trip rendering
//
// Every sink draws the same figure: a white background, the plotting frame,
// tick marks and labels on the left and bottom axes, one circle per placed
// point with its final (possibly shrunk) radius, and a hue legend when the
// layout has hue levels.
//
// Basic usage:
//
//	svg := sink.RenderSVG(layout, sink.WithTitle("tips by day"))
//	png, err := sink.RenderPNG(layout, sink.WithPNGScale(2))
//
// # Coordinates
//
// Layout coordinates have y growing upward. Sinks flip y when writing output.
//
// # Colors
//
// Points take their color from [Palette] by hue index; points without hue use
// the first palette color. [WithHighlightOverflow] outlines the points that
// the overflow policy clipped or redrew.
package sink
