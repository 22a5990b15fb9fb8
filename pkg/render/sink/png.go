package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/plot"
)

// MaxPNGPixels bounds the rasterized canvas, supersampling included.
const MaxPNGPixels = 64 << 20

// PNGOption configures [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale       float64
	supersample int
	highlight   bool
	noLegend    bool
	title       string
}

// WithPNGScale sets the output scale factor (default 1; 2 for high-DPI).
func WithPNGScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithSupersample renders at n times the output size and downsamples with
// Catmull-Rom filtering (default 2; 1 disables).
func WithSupersample(n int) PNGOption { return func(r *pngRenderer) { r.supersample = n } }

// WithPNGHighlightOverflow outlines overflowed points.
func WithPNGHighlightOverflow() PNGOption { return func(r *pngRenderer) { r.highlight = true } }

// WithPNGTitle draws a title above the frame.
func WithPNGTitle(t string) PNGOption { return func(r *pngRenderer) { r.title = t } }

// WithoutPNGLegend suppresses the hue legend.
func WithoutPNGLegend() PNGOption { return func(r *pngRenderer) { r.noLegend = true } }

// canvas draws layout coordinates (y up, pixels) onto an RGBA image.
type canvas struct {
	img   *image.RGBA
	k     float64 // layout pixel -> image pixel
	h     float64 // layout height
	z     *vector.Rasterizer
	face  font.Face
	label float64 // font size in image pixels
}

// RenderPNG rasterizes the layout to PNG bytes.
func RenderPNG(l plot.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1, supersample: 2}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) {
		return nil, fmt.Errorf("png scale must be positive, got %g", r.scale)
	}
	r.supersample = max(r.supersample, 1)

	ss := float64(r.supersample)
	if px := l.Width * r.scale * ss * l.Height * r.scale * ss; !(px <= MaxPNGPixels) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"png canvas of %gx%g at scale %g exceeds %d pixels", l.Width, l.Height, r.scale, MaxPNGPixels)
	}

	w := int(math.Ceil(l.Width * r.scale))
	h := int(math.Ceil(l.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png size must be positive, got %dx%d", w, h)
	}

	c, err := newCanvas(l, r.scale*float64(r.supersample), w*r.supersample, h*r.supersample)
	if err != nil {
		return nil, err
	}
	defer c.face.Close()
	c.drawFigure(l, r)

	out := c.img
	if r.supersample > 1 {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(out, out.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func newCanvas(l plot.Layout, k float64, w, h int) (*canvas, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	size := fontSize * k
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &canvas{img: img, k: k, h: l.Height, z: vector.NewRasterizer(w, h), face: face, label: size}, nil
}

func (c *canvas) px(x, y float64) (float32, float32) {
	return float32(x * c.k), float32((c.h - y) * c.k)
}

func (c *canvas) fill(col color.Color) {
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
	c.z.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
}

// circle appends a closed circle path; cw reverses the winding so that a
// second circle cuts a hole.
func (c *canvas) circle(x, y, r float64, cw bool) {
	cx, cy := c.px(x, y)
	rr := float32(r * c.k)
	kk := rr * 0.5522847
	s := float32(1)
	if cw {
		s = -1
	}
	c.z.MoveTo(cx+rr, cy)
	c.z.CubeTo(cx+rr, cy+s*kk, cx+kk, cy+s*rr, cx, cy+s*rr)
	c.z.CubeTo(cx-kk, cy+s*rr, cx-rr, cy+s*kk, cx-rr, cy)
	c.z.CubeTo(cx-rr, cy-s*kk, cx-kk, cy-s*rr, cx, cy-s*rr)
	c.z.CubeTo(cx+kk, cy-s*rr, cx+rr, cy-s*kk, cx+rr, cy)
	c.z.ClosePath()
}

// rect appends an axis-aligned rectangle in layout coordinates; cw reverses
// the winding like in circle.
func (c *canvas) rect(x0, y0, x1, y1 float64, cw bool) {
	ax, ay := c.px(x0, y0)
	bx, by := c.px(x1, y1)
	c.z.MoveTo(ax, ay)
	if cw {
		c.z.LineTo(ax, by)
		c.z.LineTo(bx, by)
		c.z.LineTo(bx, ay)
	} else {
		c.z.LineTo(bx, ay)
		c.z.LineTo(bx, by)
		c.z.LineTo(ax, by)
	}
	c.z.ClosePath()
}

// text draws s with its anchor at (x, y) in layout coordinates. align is
// -1 (left), 0 (center) or 1 (right); the baseline sits a third of the font
// size below y so short labels center vertically.
func (c *canvas) text(x, y float64, s string, align int) {
	if s == "" {
		return
	}
	px, py := c.px(x, y)
	width := font.MeasureString(c.face, s)
	dot := fixed.Point26_6{X: fixed.Int26_6(px * 64), Y: fixed.Int26_6((py + float32(c.label)/3) * 64)}
	switch align {
	case 0:
		dot.X -= width / 2
	case 1:
		dot.X -= width
	}
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(colorInk), Face: c.face, Dot: dot}
	d.DrawString(s)
}

func (c *canvas) drawFigure(l plot.Layout, r pngRenderer) {
	f := l.Frame
	line := 1 / c.k * math.Max(1, c.k/2)

	// Points.
	opacity := fillOpacity(l.Alpha)
	for _, lane := range l.Lanes {
		for _, p := range lane.Points {
			edge := l.EdgeWidth
			edgeColor := color.Color(colorEdge)
			if r.highlight && p.Overflowed {
				edge, edgeColor = max(edge, 1), colorOverflow
			}
			pr := pathRadius(p, edge)
			fill := HueColor(p.HueIndex)
			c.circle(p.X, p.Y, pr, false)
			c.fill(withAlpha(fill, opacity))
			if edge > 0 {
				c.circle(p.X, p.Y, pr+edge/2, false)
				c.circle(p.X, p.Y, max(pr-edge/2, 0), true)
				c.fill(edgeColor)
			}
		}
	}

	// Frame.
	c.rect(f.X0-line/2, f.Y0-line/2, f.X1+line/2, f.Y1+line/2, false)
	c.rect(f.X0+line/2, f.Y0+line/2, f.X1-line/2, f.Y1-line/2, true)
	c.fill(colorInk)

	// Ticks and labels.
	a := layoutAxes(l)
	for _, t := range a.bottom {
		c.rect(t.Pos-line/2, f.Y0-tickLength, t.Pos+line/2, f.Y0, false)
		c.text(t.Pos, f.Y0-tickLength-fontSize/2-3, t.Label, 0)
	}
	for _, t := range a.left {
		c.rect(f.X0-tickLength, t.Pos-line/2, f.X0, t.Pos+line/2, false)
		c.text(f.X0-tickLength-3, t.Pos, t.Label, 1)
	}
	c.fill(colorInk)
	c.text((f.X0+f.X1)/2, fontSize, a.bottomLabel, 0)
	c.text(4, f.Y1+fontSize, a.leftLabel, -1)

	if len(l.Hues) > 0 && !r.noLegend {
		x := f.X1 - 110
		for i, h := range l.Hues {
			y := f.Y1 - 12 - float64(i)*(fontSize+6)
			c.circle(x, y, 4, false)
			c.fill(HueColor(i))
			c.text(x+10, y, h, -1)
		}
	}
	if r.title != "" {
		c.text((f.X0+f.X1)/2, f.Y1+fontSize+4, r.title, 0)
	}
}

func withAlpha(c color.RGBA, a float64) color.Color {
	if a >= 1 {
		return c
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}
