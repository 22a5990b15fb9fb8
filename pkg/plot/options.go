package plot

import (
	"math"
	"runtime"

	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/swarm"
)

// Figure defaults.
const (
	DefaultWidth      = 800.0
	DefaultHeight     = 600.0
	DefaultDPI        = 100.0
	DefaultMarkerSize = 5.0
	DefaultLaneWidth  = swarm.DefaultWidth
)

// Margins around the plotting frame, in pixels.
type Margins struct {
	Left, Right, Top, Bottom float64
}

// DefaultMargins leaves room for tick labels on the left and bottom axes.
var DefaultMargins = Margins{Left: 72, Right: 24, Top: 24, Bottom: 56}

// Options configures [Build].
type Options struct {
	Orient swarm.Orientation

	// Width and Height are the figure size in pixels.
	Width, Height float64
	Margins       *Margins

	// DPI converts point sizes into pixels.
	DPI float64
	// MarkerSize is the marker diameter in points.
	MarkerSize float64
	// LineWidth is the marker edge width in points.
	LineWidth float64
	// Alpha is the fill opacity recorded for the sinks; 0 means opaque.
	Alpha float64

	// LaneWidth is the lane width as a fraction of the native width.
	LaneWidth float64
	// Dodge splits every lane into one sub-lane per hue level.
	Dodge bool
	// NativeScale places numeric categories at their own values.
	NativeScale bool

	ValueScale    Scale
	CategoryScale Scale

	// Order and HueOrder fix the level order. Observations whose level is
	// missing from a non-empty order are left out.
	Order    []string
	HueOrder []string

	Overflow      swarm.Policy
	WarnThreshold float64
	ShrinkFactor  float64
	MaxIterations int
	Seed          uint64

	// Workers bounds the number of lanes resolved concurrently.
	Workers int

	// Layouter replaces the default resolver built from the fields above.
	Layouter swarm.Layouter
	// Progress receives shrink notices from the default resolver.
	Progress func(swarm.Progress)
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Orient == "" {
		o.Orient = swarm.OrientX
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Margins == nil {
		m := DefaultMargins
		o.Margins = &m
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.MarkerSize == 0 {
		o.MarkerSize = DefaultMarkerSize
	}
	if o.LaneWidth == 0 {
		o.LaneWidth = DefaultLaneWidth
	}
	if o.ValueScale == "" {
		o.ValueScale = ScaleLinear
	}
	if o.CategoryScale == "" {
		o.CategoryScale = ScaleLinear
	}
	if o.Overflow == "" {
		o.Overflow = swarm.PolicyGutters
	}
	if o.WarnThreshold == 0 {
		o.WarnThreshold = swarm.DefaultWarnThreshold
	}
	if o.Seed == 0 {
		o.Seed = swarm.DefaultSeed
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
}

// Validate checks the figure options. Swarm settings are checked when the
// resolver is built.
func (o *Options) Validate() error {
	m := o.Margins
	if m == nil {
		m = &DefaultMargins
	}
	if !positive(o.Width) || !positive(o.Height) {
		return errors.New(errors.ErrCodeInvalidConfig, "figure size must be positive, got %gx%g", o.Width, o.Height)
	}
	if o.Width <= m.Left+m.Right || o.Height <= m.Top+m.Bottom {
		return errors.New(errors.ErrCodeInvalidConfig, "figure %gx%g is too small for its margins", o.Width, o.Height)
	}
	if !positive(o.DPI) {
		return errors.New(errors.ErrCodeInvalidConfig, "dpi must be positive, got %g", o.DPI)
	}
	if !nonNegative(o.MarkerSize) || !nonNegative(o.LineWidth) {
		return errors.New(errors.ErrCodeInvalidMarker, "marker size and line width must be non-negative, got %g and %g", o.MarkerSize, o.LineWidth)
	}
	if !nonNegative(o.LaneWidth) {
		return errors.New(errors.ErrCodeInvalidConfig, "lane width must be non-negative, got %g", o.LaneWidth)
	}
	if math.IsNaN(o.Alpha) || o.Alpha < 0 || o.Alpha > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "alpha must be within [0, 1], got %g", o.Alpha)
	}
	if _, err := swarm.ParseOrientation(string(o.Orient)); err != nil {
		return err
	}
	if _, err := ParseScale(string(o.ValueScale)); err != nil {
		return err
	}
	cs, err := ParseScale(string(o.CategoryScale))
	if err != nil {
		return err
	}
	if cs == ScaleLog && !o.NativeScale {
		return errors.New(errors.ErrCodeInvalidScale, "a log categorical scale requires native scale")
	}
	return nil
}

// Radius returns the marker radius in pixels: half the marker diameter plus
// the edge width, converted from points.
func (o *Options) Radius() float64 {
	return (o.MarkerSize + o.LineWidth) / 2 * o.DPI / 72
}

func (o *Options) resolverConfig(laneWidth float64) swarm.Config {
	return swarm.Config{
		Orient:        o.Orient,
		Width:         laneWidth,
		WarnThreshold: o.WarnThreshold,
		Overflow:      o.Overflow,
		ShrinkFactor:  o.ShrinkFactor,
		MaxIterations: o.MaxIterations,
		Seed:          o.Seed,
	}
}

func positive(v float64) bool    { return v > 0 && !math.IsInf(v, 0) }
func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }
