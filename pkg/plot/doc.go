// Package plot turns a dataset into a positioned beeswarm layout.
//
// # Overview
//
// [Build] is the host side of the swarm solver. It:
//
//  1. Groups observations into lanes, one per category or, with hue dodging,
//     one per (category, hue) pair
//  2. Fixes the figure geometry: the plotting frame, the value axis and the
//     categorical axis with their scales
//  3. Converts every observation into a pixel-space marker whose radius is
//     derived from the marker size, edge width and DPI
//  4. Resolves every lane with a [swarm.Layouter] in parallel
//  5. Collects positions, overflow statistics and warnings into a [Layout]
//
// The result is a self-contained description of the figure that the sinks in
// pkg/render/sink draw and that the pipeline caches.
//
// # Coordinates
//
// Display coordinates are pixels with the origin at the bottom-left corner of
// the figure and y growing upward. Sinks that draw in a y-down space flip the
// y coordinate themselves.
//
// For a vertical plot (orientation x) categories sit along x at positions
// 0, 1, ... n-1 and values run along y. Horizontal plots (orientation y) swap
// the axes and list categories top to bottom.
//
// # Native scale
//
// With [Options.NativeScale] numeric category labels are placed at their own
// values instead of at 0..n-1. The lane width is then measured in units of
// the smallest gap between distinct categories in scaled space, so a log
// categorical scale gets lanes of equal visual width.
package plot
