package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/beeswarm/pkg/pipeline"
)

// addDatasetFlags binds the column mapping and layout settings to opts.
//
// Flags are bound with zero defaults so that --config values can fill the
// gaps before pipeline defaults are applied; the help text names the
// effective default instead.
func addDatasetFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()

	f.StringVarP(&opts.Columns.Value, "value", "y", "", "numeric value column (required)")
	f.StringVarP(&opts.Columns.Category, "category", "x", "", "category column (default: a single lane)")
	f.StringVar(&opts.Columns.Hue, "hue", "", "hue column used for colour and dodging")
	f.BoolVar(&opts.Refresh, "refresh", false, "recompute the layout even if it is cached")

	f.StringVar(&opts.Orient, "orient", "", "category axis: x (default) or y")
	f.Float64Var(&opts.Width, "width", 0, "figure width in pixels (default 800)")
	f.Float64Var(&opts.Height, "height", 0, "figure height in pixels (default 600)")
	f.Float64Var(&opts.DPI, "dpi", 0, "pixels per inch (default 100)")
	f.Float64VarP(&opts.MarkerSize, "size", "s", 0, "marker diameter in points (default 5)")
	f.Float64Var(&opts.LineWidth, "linewidth", 0, "marker edge width in points")
	f.Float64Var(&opts.Alpha, "alpha", 0, "marker opacity in (0, 1]")
	f.Float64Var(&opts.LaneWidth, "lane-width", 0, "lane width as a fraction of the category spacing (default 0.8)")
	f.BoolVar(&opts.Dodge, "dodge", false, "split each lane into one sub-lane per hue level")
	f.BoolVar(&opts.NativeScale, "native-scale", false, "place numeric categories at their own values")
	f.StringVar(&opts.ValueScale, "value-scale", "", "value axis scale: linear (default) or log")
	f.StringVar(&opts.CategoryScale, "category-scale", "", "category axis scale with --native-scale: linear (default) or log")
	f.StringSliceVar(&opts.Order, "order", nil, "category order (comma-separated)")
	f.StringSliceVar(&opts.HueOrder, "hue-order", nil, "hue order (comma-separated)")

	f.StringVar(&opts.Overflow, "overflow", "", "overflow policy: gutters (default), shrink or random")
	f.Float64Var(&opts.WarnThreshold, "warn-threshold", 0, "overflow fraction that triggers a warning (default 0.05)")
	f.Float64Var(&opts.ShrinkFactor, "shrink-factor", 0, "radius multiplier per shrink iteration (default 0.9)")
	f.IntVar(&opts.MaxIterations, "max-iterations", 0, "shrink iteration cap (default 200)")
	f.Uint64Var(&opts.Seed, "seed", 0, "seed for the random overflow policy (default 42)")
	f.IntVar(&opts.Workers, "workers", 0, "lanes resolved in parallel (default: number of CPUs)")
}

// addRenderFlags binds the render settings shared by render commands.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()

	f.StringVar(&opts.Title, "title", "", "figure title")
	f.Float64Var(&opts.Scale, "scale", 0, "PNG pixel scale (default 1)")
	f.BoolVar(&opts.HighlightOverflow, "highlight-overflow", false, "outline points that were pushed into the gutters")
	f.BoolVar(&opts.NoLegend, "no-legend", false, "omit the hue legend")
}
