package sink

import (
	"encoding/json"

	"github.com/matzehuels/beeswarm/pkg/plot"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
}

// WithCompactJSON writes the layout without indentation.
func WithCompactJSON() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// RenderJSON serializes the layout. The output reads back with
// [plot.Unmarshal].
func RenderJSON(l plot.Layout, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}
	if r.compact {
		return json.Marshal(l)
	}
	return plot.Marshal(l)
}
