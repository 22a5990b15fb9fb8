package server

import (
	"github.com/matzehuels/beeswarm/pkg/buildinfo"
	"github.com/matzehuels/beeswarm/pkg/dataset"
	"github.com/matzehuels/beeswarm/pkg/pipeline"
	"github.com/matzehuels/beeswarm/pkg/store"
)

// LayoutRequest resolves a layout from an inline dataset.
type LayoutRequest struct {
	Data       string `json:"data" validate:"required"`
	DataFormat string `json:"data_format,omitempty" validate:"omitempty,oneof=csv tsv json"`

	Category string `json:"category,omitempty" validate:"omitempty,max=128"`
	Value    string `json:"value" validate:"required,max=128"`
	Hue      string `json:"hue,omitempty" validate:"omitempty,max=128"`

	Orient        string   `json:"orient,omitempty" validate:"omitempty,oneof=x y v h vertical horizontal"`
	Width         float64  `json:"width,omitempty" validate:"gte=0,lte=8192"`
	Height        float64  `json:"height,omitempty" validate:"gte=0,lte=8192"`
	DPI           float64  `json:"dpi,omitempty" validate:"gte=0,lte=1200"`
	MarkerSize    float64  `json:"marker_size,omitempty" validate:"gte=0,lte=500"`
	LineWidth     float64  `json:"line_width,omitempty" validate:"gte=0,lte=50"`
	Alpha         float64  `json:"alpha,omitempty" validate:"gte=0,lte=1"`
	LaneWidth     float64  `json:"lane_width,omitempty" validate:"gte=0,lte=10"`
	Dodge         bool     `json:"dodge,omitempty"`
	NativeScale   bool     `json:"native_scale,omitempty"`
	ValueScale    string   `json:"value_scale,omitempty" validate:"omitempty,oneof=linear log"`
	CategoryScale string   `json:"category_scale,omitempty" validate:"omitempty,oneof=linear log"`
	Order         []string `json:"order,omitempty" validate:"max=1000"`
	HueOrder      []string `json:"hue_order,omitempty" validate:"max=100"`

	// Overflow is checked by the resolver so that an unknown policy reports
	// the configuration error itself.
	Overflow      string  `json:"overflow,omitempty" validate:"max=32"`
	WarnThreshold float64 `json:"warn_threshold,omitempty" validate:"gte=0,lte=1"`
	ShrinkFactor  float64 `json:"shrink_factor,omitempty" validate:"gte=0,lt=1"`
	MaxIterations int     `json:"max_iterations,omitempty" validate:"gte=0,lte=10000"`
	Seed          uint64  `json:"seed,omitempty"`
}

func (r *LayoutRequest) options() pipeline.Options {
	return pipeline.Options{
		Data:          r.Data,
		DataFormat:    r.DataFormat,
		Columns:       dataset.Columns{Category: r.Category, Value: r.Value, Hue: r.Hue},
		Orient:        r.Orient,
		Width:         r.Width,
		Height:        r.Height,
		DPI:           r.DPI,
		MarkerSize:    r.MarkerSize,
		LineWidth:     r.LineWidth,
		Alpha:         r.Alpha,
		LaneWidth:     r.LaneWidth,
		Dodge:         r.Dodge,
		NativeScale:   r.NativeScale,
		ValueScale:    r.ValueScale,
		CategoryScale: r.CategoryScale,
		Order:         r.Order,
		HueOrder:      r.HueOrder,
		Overflow:      r.Overflow,
		WarnThreshold: r.WarnThreshold,
		ShrinkFactor:  r.ShrinkFactor,
		MaxIterations: r.MaxIterations,
		Seed:          r.Seed,
	}
}

// LayoutResponse is a stored layout.
type LayoutResponse struct {
	store.Record
	Cached bool `json:"cached"`
}

// RenderRequest renders either a stored layout or an inline dataset.
type RenderRequest struct {
	LayoutID string         `json:"layout_id,omitempty" validate:"omitempty,uuid"`
	Layout   *LayoutRequest `json:"layout,omitempty" validate:"required_without=LayoutID,excluded_with=LayoutID"`

	Format            string  `json:"format,omitempty" validate:"omitempty,oneof=svg png json"`
	Title             string  `json:"title,omitempty" validate:"max=200"`
	Scale             float64 `json:"scale,omitempty" validate:"gte=0,lte=8"`
	HighlightOverflow bool    `json:"highlight_overflow,omitempty"`
	NoLegend          bool    `json:"no_legend,omitempty"`
}

func (r *RenderRequest) apply(opts *pipeline.Options) {
	format := r.Format
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}
	opts.Title = r.Title
	opts.Scale = r.Scale
	opts.HighlightOverflow = r.HighlightOverflow
	opts.NoLegend = r.NoLegend
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// ErrorResponse wraps every error returned by the API.
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorBody describes an error.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}
