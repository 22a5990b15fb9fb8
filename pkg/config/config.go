// Package config reads plot configuration files.
//
// A configuration file holds the same settings as the command-line flags,
// grouped in sections. TOML and YAML are supported:
//
//	[columns]
//	category = "day"
//	value = "total_bill"
//	hue = "sex"
//
//	[overflow]
//	policy = "shrink"
//	shrink_factor = 0.8
//
// Explicit flags win over the file: [File.Apply] only fills options that are
// still at their zero value.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/beeswarm/pkg/dataset"
	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/pipeline"
)

// File is a decoded configuration file.
type File struct {
	Columns  dataset.Columns `toml:"columns" yaml:"columns"`
	Figure   Figure          `toml:"figure" yaml:"figure"`
	Markers  Markers         `toml:"markers" yaml:"markers"`
	Lanes    Lanes           `toml:"lanes" yaml:"lanes"`
	Overflow Overflow        `toml:"overflow" yaml:"overflow"`
	Output   Output          `toml:"output" yaml:"output"`
}

// Figure holds the figure geometry.
type Figure struct {
	Orient string  `toml:"orient" yaml:"orient"`
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
	DPI    float64 `toml:"dpi" yaml:"dpi"`
	Title  string  `toml:"title" yaml:"title"`
}

// Markers holds the marker appearance. Size and line width are in points.
type Markers struct {
	Size      float64 `toml:"size" yaml:"size"`
	LineWidth float64 `toml:"line_width" yaml:"line_width"`
	Alpha     float64 `toml:"alpha" yaml:"alpha"`
}

// Lanes holds the categorical axis settings.
type Lanes struct {
	Width         float64  `toml:"width" yaml:"width"`
	Dodge         bool     `toml:"dodge" yaml:"dodge"`
	NativeScale   bool     `toml:"native_scale" yaml:"native_scale"`
	ValueScale    string   `toml:"value_scale" yaml:"value_scale"`
	CategoryScale string   `toml:"category_scale" yaml:"category_scale"`
	Order         []string `toml:"order" yaml:"order"`
	HueOrder      []string `toml:"hue_order" yaml:"hue_order"`
}

// Overflow holds the overflow resolver settings.
type Overflow struct {
	Policy        string  `toml:"policy" yaml:"policy"`
	WarnThreshold float64 `toml:"warn_threshold" yaml:"warn_threshold"`
	ShrinkFactor  float64 `toml:"shrink_factor" yaml:"shrink_factor"`
	MaxIterations int     `toml:"max_iterations" yaml:"max_iterations"`
	Seed          uint64  `toml:"seed" yaml:"seed"`
}

// Output holds the render settings.
type Output struct {
	Formats           []string `toml:"formats" yaml:"formats"`
	Scale             float64  `toml:"scale" yaml:"scale"`
	HighlightOverflow bool     `toml:"highlight_overflow" yaml:"highlight_overflow"`
	NoLegend          bool     `toml:"no_legend" yaml:"no_legend"`
}

// Load reads a configuration file, choosing the decoder by extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	f, err := Parse(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return f, nil
}

// Parse decodes data as "toml", "yaml" or "yml". Unknown keys are errors so
// that typos do not pass silently.
func Parse(data []byte, format string) (*File, error) {
	var f File
	switch format {
	case "toml":
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (use .toml or .yaml)", format)
	}
	return &f, nil
}

// Apply copies every setting of f into opts whose field is still zero.
// Boolean switches can only be turned on.
func (f *File) Apply(opts *pipeline.Options) {
	setString(&opts.Columns.Category, f.Columns.Category)
	setString(&opts.Columns.Value, f.Columns.Value)
	setString(&opts.Columns.Hue, f.Columns.Hue)

	setString(&opts.Orient, f.Figure.Orient)
	setFloat(&opts.Width, f.Figure.Width)
	setFloat(&opts.Height, f.Figure.Height)
	setFloat(&opts.DPI, f.Figure.DPI)
	setString(&opts.Title, f.Figure.Title)

	setFloat(&opts.MarkerSize, f.Markers.Size)
	setFloat(&opts.LineWidth, f.Markers.LineWidth)
	setFloat(&opts.Alpha, f.Markers.Alpha)

	setFloat(&opts.LaneWidth, f.Lanes.Width)
	opts.Dodge = opts.Dodge || f.Lanes.Dodge
	opts.NativeScale = opts.NativeScale || f.Lanes.NativeScale
	setString(&opts.ValueScale, f.Lanes.ValueScale)
	setString(&opts.CategoryScale, f.Lanes.CategoryScale)
	setSlice(&opts.Order, f.Lanes.Order)
	setSlice(&opts.HueOrder, f.Lanes.HueOrder)

	setString(&opts.Overflow, f.Overflow.Policy)
	setFloat(&opts.WarnThreshold, f.Overflow.WarnThreshold)
	setFloat(&opts.ShrinkFactor, f.Overflow.ShrinkFactor)
	if opts.MaxIterations == 0 {
		opts.MaxIterations = f.Overflow.MaxIterations
	}
	if opts.Seed == 0 {
		opts.Seed = f.Overflow.Seed
	}

	setSlice(&opts.Formats, f.Output.Formats)
	setFloat(&opts.Scale, f.Output.Scale)
	opts.HighlightOverflow = opts.HighlightOverflow || f.Output.HighlightOverflow
	opts.NoLegend = opts.NoLegend || f.Output.NoLegend
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}

func setSlice(dst *[]string, v []string) {
	if len(*dst) == 0 && len(v) > 0 {
		*dst = append([]string(nil), v...)
	}
}
