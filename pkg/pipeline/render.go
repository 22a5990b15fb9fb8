package pipeline

import (
	"fmt"

	"github.com/matzehuels/beeswarm/pkg/plot"
	"github.com/matzehuels/beeswarm/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(l plot.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOptions(opts)...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, pngOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(l)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderFromLayoutData renders a serialized layout, for example one read
// back from the cache or the layout store.
func RenderFromLayoutData(layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := plot.Unmarshal(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return Render(l, opts)
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Title != "" {
		out = append(out, sink.WithTitle(opts.Title))
	}
	if opts.HighlightOverflow {
		out = append(out, sink.WithHighlightOverflow())
	}
	if opts.NoLegend {
		out = append(out, sink.WithoutLegend())
	}
	return out
}

func pngOptions(opts Options) []sink.PNGOption {
	var out []sink.PNGOption
	if opts.Scale > 0 {
		out = append(out, sink.WithPNGScale(opts.Scale))
	}
	if opts.Title != "" {
		out = append(out, sink.WithPNGTitle(opts.Title))
	}
	if opts.HighlightOverflow {
		out = append(out, sink.WithPNGHighlightOverflow())
	}
	if opts.NoLegend {
		out = append(out, sink.WithoutPNGLegend())
	}
	return out
}
