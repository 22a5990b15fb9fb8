package sink

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/beeswarm/pkg/plot"
)

// Palette is the categorical hue palette, cycled when there are more levels.
var Palette = []color.RGBA{
	{0x4c, 0x72, 0xb0, 0xff},
	{0xdd, 0x84, 0x52, 0xff},
	{0x55, 0xa8, 0x68, 0xff},
	{0xc4, 0x4e, 0x52, 0xff},
	{0x81, 0x72, 0xb3, 0xff},
	{0x93, 0x78, 0x60, 0xff},
	{0xda, 0x8b, 0xc3, 0xff},
	{0x8c, 0x8c, 0x8c, 0xff},
	{0xcc, 0xb9, 0x74, 0xff},
	{0x64, 0xb5, 0xcd, 0xff},
}

var (
	colorInk      = color.RGBA{0x26, 0x26, 0x26, 0xff}
	colorEdge     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorOverflow = color.RGBA{0xd6, 0x27, 0x28, 0xff}
)

const (
	tickLength = 5.0
	fontSize   = 11.0
)

// HueColor returns the palette color for a hue index; -1 maps to the first
// color.
func HueColor(i int) color.RGBA {
	if i < 0 {
		i = 0
	}
	return Palette[i%len(Palette)]
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// axes splits the layout ticks into the bottom and left axes.
type axes struct {
	bottom, left           []plot.Tick
	bottomLabel, leftLabel string
}

func layoutAxes(l plot.Layout) axes {
	if l.Orient == "y" {
		return axes{
			bottom: l.ValueAxis.Ticks, bottomLabel: l.ValueAxis.Label,
			left: l.CategoryAxis.Ticks, leftLabel: l.CategoryAxis.Label,
		}
	}
	return axes{
		bottom: l.CategoryAxis.Ticks, bottomLabel: l.CategoryAxis.Label,
		left: l.ValueAxis.Ticks, leftLabel: l.ValueAxis.Label,
	}
}

// fill returns the fill opacity for the layout alpha; zero means opaque.
func fillOpacity(alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}
	return alpha
}

// pathRadius is the circle path radius: the stroke straddles the path so the
// outer edge lands on the marker radius.
func pathRadius(p plot.Point, edge float64) float64 {
	return max(p.Radius-edge/2, 0)
}
