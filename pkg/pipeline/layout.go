package pipeline

import (
	"context"

	"github.com/matzehuels/beeswarm/pkg/dataset"
	"github.com/matzehuels/beeswarm/pkg/plot"
)

// GenerateLayout resolves the beeswarm layout of tbl.
func GenerateLayout(ctx context.Context, tbl *dataset.Table, opts Options) (plot.Layout, error) {
	return plot.Build(ctx, tbl, opts.PlotOptions())
}
