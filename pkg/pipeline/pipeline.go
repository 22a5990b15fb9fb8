// Package pipeline provides the load → layout → render pipeline behind the
// beeswarm CLI and HTTP server.
//
// By centralizing this logic both entry points share the same defaults,
// validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read observations from a CSV, TSV or JSON dataset
//  2. Layout: group observations into lanes and resolve each lane as a swarm
//  3. Render: draw the layout as SVG, PNG or JSON
//
// Each stage can be run on its own or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{
//	    Input:    "tips.csv",
//	    Columns:  dataset.Columns{Category: "day", Value: "total_bill"},
//	    Overflow: "shrink",
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beeswarm/pkg/cache"
	"github.com/matzehuels/beeswarm/pkg/dataset"
	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/plot"
	"github.com/matzehuels/beeswarm/pkg/swarm"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	DefaultWidth         = plot.DefaultWidth
	DefaultHeight        = plot.DefaultHeight
	DefaultDPI           = plot.DefaultDPI
	DefaultMarkerSize    = plot.DefaultMarkerSize
	DefaultLaneWidth     = plot.DefaultLaneWidth
	DefaultOverflow      = string(swarm.PolicyGutters)
	DefaultWarnThreshold = swarm.DefaultWarnThreshold
	DefaultShrinkFactor  = swarm.DefaultShrinkFactor
	DefaultMaxIterations = swarm.DefaultMaxIterations
	DefaultSeed          = swarm.DefaultSeed
	DefaultPNGScale      = 1.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Input is a dataset path; Data holds an inline dataset in
	// DataFormat instead (used by the HTTP API).
	Input      string          `json:"input,omitempty"`
	Data       string          `json:"data,omitempty"`
	DataFormat string          `json:"data_format,omitempty"`
	Columns    dataset.Columns `json:"columns"`
	Refresh    bool            `json:"refresh,omitempty"`

	// Layout options
	Orient        string   `json:"orient,omitempty"`
	Width         float64  `json:"width,omitempty"`
	Height        float64  `json:"height,omitempty"`
	DPI           float64  `json:"dpi,omitempty"`
	MarkerSize    float64  `json:"marker_size,omitempty"`
	LineWidth     float64  `json:"line_width,omitempty"`
	Alpha         float64  `json:"alpha,omitempty"`
	LaneWidth     float64  `json:"lane_width,omitempty"`
	Dodge         bool     `json:"dodge,omitempty"`
	NativeScale   bool     `json:"native_scale,omitempty"`
	ValueScale    string   `json:"value_scale,omitempty"`
	CategoryScale string   `json:"category_scale,omitempty"`
	Order         []string `json:"order,omitempty"`
	HueOrder      []string `json:"hue_order,omitempty"`
	Overflow      string   `json:"overflow,omitempty"`
	WarnThreshold float64  `json:"warn_threshold,omitempty"`
	ShrinkFactor  float64  `json:"shrink_factor,omitempty"`
	MaxIterations int      `json:"max_iterations,omitempty"`
	Seed          uint64   `json:"seed,omitempty"`

	// Render options
	Formats           []string `json:"formats,omitempty"`
	Title             string   `json:"title,omitempty"`
	Scale             float64  `json:"scale,omitempty"` // PNG pixel scale
	HighlightOverflow bool     `json:"highlight_overflow,omitempty"`
	NoLegend          bool     `json:"no_legend,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger `json:"-"`
	Workers int         `json:"-"`
	// OnProgress receives shrink notices after they are logged. Lanes are
	// resolved concurrently, so it must be safe for concurrent use.
	OnProgress func(swarm.Progress) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Table is the loaded dataset.
	Table *dataset.Table

	// DatasetHash is the content hash of the dataset.
	DatasetHash string

	// Layout is the resolved beeswarm layout.
	Layout plot.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Lanes      int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the dataset source and column mapping.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" && o.Data == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input or data is required")
	}
	if o.Input != "" && o.Data != "" {
		return errors.New(errors.ErrCodeInvalidInput, "input and data are mutually exclusive")
	}
	if o.Data != "" {
		o.DataFormat = strings.ToLower(strings.TrimSpace(o.DataFormat))
		if o.DataFormat == "" {
			o.DataFormat = "csv"
		}
		if _, ok := inlineReaders[o.DataFormat]; !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid data_format: %q (must be one of: csv, tsv, json)", o.DataFormat)
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Columns.Validate()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Orient == "" {
		o.Orient = string(swarm.OrientX)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
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
		o.ValueScale = string(plot.ScaleLinear)
	}
	if o.CategoryScale == "" {
		o.CategoryScale = string(plot.ScaleLinear)
	}
	if o.Overflow == "" {
		o.Overflow = DefaultOverflow
	}
	if o.WarnThreshold == 0 {
		o.WarnThreshold = DefaultWarnThreshold
	}
	if o.ShrinkFactor == 0 {
		o.ShrinkFactor = DefaultShrinkFactor
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
// Policy, orientation and scale names are normalized in place.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	policy, err := swarm.ParsePolicy(o.Overflow)
	if err != nil {
		return err
	}
	o.Overflow = string(policy)
	orient, err := swarm.ParseOrientation(o.Orient)
	if err != nil {
		return err
	}
	o.Orient = string(orient)
	for _, s := range []*string{&o.ValueScale, &o.CategoryScale} {
		parsed, err := plot.ParseScale(*s)
		if err != nil {
			return err
		}
		*s = string(parsed)
	}
	opts := o.PlotOptions()
	return opts.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// PlotOptions converts the layout options for [plot.Build]. Shrink progress
// is logged at debug level and forwarded to OnProgress.
func (o *Options) PlotOptions() plot.Options {
	logger, onProgress := o.Logger, o.OnProgress
	return plot.Options{
		Orient:        swarm.Orientation(o.Orient),
		Width:         o.Width,
		Height:        o.Height,
		DPI:           o.DPI,
		MarkerSize:    o.MarkerSize,
		LineWidth:     o.LineWidth,
		Alpha:         o.Alpha,
		LaneWidth:     o.LaneWidth,
		Dodge:         o.Dodge,
		NativeScale:   o.NativeScale,
		ValueScale:    plot.Scale(o.ValueScale),
		CategoryScale: plot.Scale(o.CategoryScale),
		Order:         o.Order,
		HueOrder:      o.HueOrder,
		Overflow:      swarm.Policy(o.Overflow),
		WarnThreshold: o.WarnThreshold,
		ShrinkFactor:  o.ShrinkFactor,
		MaxIterations: o.MaxIterations,
		Seed:          o.Seed,
		Workers:       o.Workers,
		Progress: func(p swarm.Progress) {
			if logger != nil {
				logger.Debug(strings.TrimSuffix(p.Message(), "."),
					"center", p.Center, "iteration", p.Iteration, "overflow", p.Overflow)
			}
			if onProgress != nil {
				onProgress(p)
			}
		},
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Category:      o.Columns.Category,
		Value:         o.Columns.Value,
		Hue:           o.Columns.Hue,
		Orient:        o.Orient,
		Width:         o.Width,
		Height:        o.Height,
		DPI:           o.DPI,
		MarkerSize:    o.MarkerSize,
		LineWidth:     o.LineWidth,
		Alpha:         o.Alpha,
		LaneWidth:     o.LaneWidth,
		Dodge:         o.Dodge,
		NativeScale:   o.NativeScale,
		ValueScale:    o.ValueScale,
		CategoryScale: o.CategoryScale,
		Order:         o.Order,
		HueOrder:      o.HueOrder,
		Overflow:      o.Overflow,
		WarnThreshold: o.WarnThreshold,
		ShrinkFactor:  o.ShrinkFactor,
		MaxIterations: o.MaxIterations,
		Seed:          o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:            format,
		Title:             o.Title,
		HighlightOverflow: o.HighlightOverflow,
		NoLegend:          o.NoLegend,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
