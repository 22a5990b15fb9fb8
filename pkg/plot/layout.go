package plot

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layout is the serializable result of [Build].
type Layout struct {
	Orient string  `json:"orient" bson:"orient"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	DPI    float64 `json:"dpi" bson:"dpi"`

	// Frame is the plotting area in display pixels.
	Frame Rect `json:"frame" bson:"frame"`

	ValueAxis    Axis `json:"value_axis" bson:"value_axis"`
	CategoryAxis Axis `json:"category_axis" bson:"category_axis"`

	// Hues lists the hue levels in palette order; empty without a hue column.
	Hues []string `json:"hues,omitempty" bson:"hues,omitempty"`

	Lanes []Lane `json:"lanes" bson:"lanes"`

	Overflow string  `json:"overflow" bson:"overflow"`
	Seed     uint64  `json:"seed,omitempty" bson:"seed,omitempty"`
	Alpha    float64 `json:"alpha,omitempty" bson:"alpha,omitempty"`
	// EdgeWidth is the marker edge stroke in pixels.
	EdgeWidth float64 `json:"edge_width,omitempty" bson:"edge_width,omitempty"`

	// Warnings holds the overflow warnings of all lanes, in lane order.
	Warnings []string `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// Rect is an axis-aligned rectangle in display pixels.
type Rect struct {
	X0 float64 `json:"x0" bson:"x0"`
	Y0 float64 `json:"y0" bson:"y0"`
	X1 float64 `json:"x1" bson:"x1"`
	Y1 float64 `json:"y1" bson:"y1"`
}

// Axis describes one axis of the figure.
type Axis struct {
	Label string `json:"label,omitempty" bson:"label,omitempty"`
	Scale string `json:"scale" bson:"scale"`
	// Min and Max are the axis limits in data units.
	Min   float64 `json:"min" bson:"min"`
	Max   float64 `json:"max" bson:"max"`
	Ticks []Tick  `json:"ticks,omitempty" bson:"ticks,omitempty"`
}

// Tick is an axis tick at a display pixel position.
type Tick struct {
	Pos   float64 `json:"pos" bson:"pos"`
	Label string  `json:"label" bson:"label"`
}

// Lane is one resolved swarm.
type Lane struct {
	Category string  `json:"category" bson:"category"`
	Hue      string  `json:"hue,omitempty" bson:"hue,omitempty"`
	HueIndex int     `json:"hue_index" bson:"hue_index"` // -1 unless dodged
	Center   float64 `json:"center" bson:"center"`
	// HalfWidth is the lane half width in scaled categorical units.
	HalfWidth float64 `json:"half_width" bson:"half_width"`

	Points []Point `json:"points" bson:"points"`

	Overflow    float64 `json:"overflow" bson:"overflow"`
	HadOverflow bool    `json:"had_overflow,omitempty" bson:"had_overflow,omitempty"`
	Shrink      float64 `json:"shrink" bson:"shrink"`
	Iterations  int     `json:"iterations" bson:"iterations"`
	Converged   bool    `json:"converged" bson:"converged"`
	Warning     string  `json:"warning,omitempty" bson:"warning,omitempty"`
}

// Point is a placed marker.
type Point struct {
	// Row is the index of the observation in the source table.
	Row int `json:"row" bson:"row"`
	// HueIndex indexes [Layout.Hues], or is -1 without hue.
	HueIndex int `json:"hue_index" bson:"hue_index"`
	// X and Y are display pixels, y up.
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	// Position is the categorical coordinate in data units.
	Position float64 `json:"position" bson:"position"`
	Value    float64 `json:"value" bson:"value"`
	// Radius is the drawn radius in pixels, after any shrinking.
	Radius     float64 `json:"radius" bson:"radius"`
	Overflowed bool    `json:"overflowed,omitempty" bson:"overflowed,omitempty"`
}

// PointCount returns the number of placed markers.
func (l *Layout) PointCount() int {
	n := 0
	for _, lane := range l.Lanes {
		n += len(lane.Points)
	}
	return n
}

// MinShrink returns the smallest radius multiplier applied to any lane, or 1.
func (l *Layout) MinShrink() float64 {
	s := 1.0
	for _, lane := range l.Lanes {
		if lane.Shrink > 0 {
			s = min(s, lane.Shrink)
		}
	}
	return s
}

// Marshal serializes a Layout to pretty-printed JSON bytes.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Layout.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return Layout{}, fmt.Errorf("layout must have positive dimensions, got %gx%g", l.Width, l.Height)
	}
	return l, nil
}

// WriteFile writes a Layout to a JSON file.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Layout from a JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
