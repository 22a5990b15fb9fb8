package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/beeswarm/pkg/plot"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title     string
	highlight bool
	noLegend  bool
}

// WithTitle draws a title above the frame.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithHighlightOverflow outlines overflowed points.
func WithHighlightOverflow() SVGOption { return func(r *svgRenderer) { r.highlight = true } }

// WithoutLegend suppresses the hue legend.
func WithoutLegend() SVGOption { return func(r *svgRenderer) { r.noLegend = true } }

// RenderSVG renders the layout as an SVG document.
func RenderSVG(l plot.Layout, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="DejaVu Sans, Helvetica, Arial, sans-serif" font-size="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height, fontSize)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")

	flip := func(y float64) float64 { return l.Height - y }
	f := l.Frame

	renderSVGAxes(&buf, l, flip)
	renderSVGPoints(&buf, l, flip, r.highlight)

	fmt.Fprintf(&buf, `  <rect class="frame" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="1"/>`+"\n",
		f.X0, flip(f.Y1), f.X1-f.X0, f.Y1-f.Y0, hex(colorInk))

	if len(l.Hues) > 0 && !r.noLegend {
		renderSVGLegend(&buf, l, flip)
	}
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.2f" y="%.2f" text-anchor="middle" font-size="%.0f">%s</text>`+"\n",
			(f.X0+f.X1)/2, flip(f.Y1)-8, fontSize*1.2, html.EscapeString(r.title))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderSVGAxes(buf *bytes.Buffer, l plot.Layout, flip func(float64) float64) {
	a := layoutAxes(l)
	f := l.Frame
	ink := hex(colorInk)

	buf.WriteString(`  <g class="axes">` + "\n")
	for _, t := range a.bottom {
		y := flip(f.Y0)
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n", t.Pos, y, t.Pos, y+tickLength, ink)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" fill="%s">%s</text>`+"\n", t.Pos, y+tickLength+fontSize+2, ink, html.EscapeString(t.Label))
	}
	for _, t := range a.left {
		y := flip(t.Pos)
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n", f.X0-tickLength, y, f.X0, y, ink)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="end" dominant-baseline="middle" fill="%s">%s</text>`+"\n", f.X0-tickLength-3, y, ink, html.EscapeString(t.Label))
	}
	if a.bottomLabel != "" {
		fmt.Fprintf(buf, `    <text class="xlabel" x="%.2f" y="%.2f" text-anchor="middle" fill="%s">%s</text>`+"\n",
			(f.X0+f.X1)/2, l.Height-8, ink, html.EscapeString(a.bottomLabel))
	}
	if a.leftLabel != "" {
		cy := flip((f.Y0 + f.Y1) / 2)
		fmt.Fprintf(buf, `    <text class="ylabel" x="14" y="%.2f" text-anchor="middle" transform="rotate(-90 14 %.2f)" fill="%s">%s</text>`+"\n",
			cy, cy, ink, html.EscapeString(a.leftLabel))
	}
	buf.WriteString("  </g>\n")
}

func renderSVGPoints(buf *bytes.Buffer, l plot.Layout, flip func(float64) float64, highlight bool) {
	opacity := fillOpacity(l.Alpha)
	edge := hex(colorEdge)
	buf.WriteString(`  <g class="points">` + "\n")
	for _, lane := range l.Lanes {
		fmt.Fprintf(buf, `    <g class="lane" data-category="%s"`, html.EscapeString(lane.Category))
		if lane.Hue != "" {
			fmt.Fprintf(buf, ` data-hue="%s"`, html.EscapeString(lane.Hue))
		}
		buf.WriteString(">\n")
		for _, p := range lane.Points {
			stroke, width := edge, l.EdgeWidth
			if highlight && p.Overflowed {
				stroke, width = hex(colorOverflow), max(width, 1)
			}
			fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.3f" fill="%s" fill-opacity="%.3g"`,
				p.X, flip(p.Y), pathRadius(p, width), hex(HueColor(p.HueIndex)), opacity)
			if width > 0 {
				fmt.Fprintf(buf, ` stroke="%s" stroke-width="%.3g"`, stroke, width)
			}
			buf.WriteString("/>\n")
		}
		buf.WriteString("    </g>\n")
	}
	buf.WriteString("  </g>\n")
}

func renderSVGLegend(buf *bytes.Buffer, l plot.Layout, flip func(float64) float64) {
	f := l.Frame
	x := f.X1 - 110
	y := flip(f.Y1) + 12
	buf.WriteString(`  <g class="legend">` + "\n")
	for i, h := range l.Hues {
		cy := y + float64(i)*(fontSize+6)
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="4" fill="%s"/>`+"\n", x, cy, hex(HueColor(i)))
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" dominant-baseline="middle" fill="%s">%s</text>`+"\n", x+10, cy, hex(colorInk), html.EscapeString(h))
	}
	buf.WriteString("  </g>\n")
}
