package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beeswarm/pkg/cache"
	"github.com/matzehuels/beeswarm/pkg/dataset"
	"github.com/matzehuels/beeswarm/pkg/observability"
	"github.com/matzehuels/beeswarm/pkg/plot"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so the caching logic lives in one place.
//
// The Runner holds no pipeline results; several goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	tbl, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Table = tbl
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Rows = len(tbl.Rows)

	r.Logger.Info("loaded dataset",
		"rows", len(tbl.Rows),
		"dropped", tbl.Dropped,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, tbl, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.DatasetHash, _ = cache.HashJSON(tbl)
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Lanes = len(l.Lanes)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"lanes", len(l.Lanes),
		"markers", l.PointCount(),
		"shrink", l.MinShrink(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the dataset and reports the load to the pipeline hooks.
// Datasets are not cached: the layout key is derived from their content.
func (r *Runner) Load(ctx context.Context, opts Options) (*dataset.Table, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	format := sourceFormat(opts)
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, format)
	start := time.Now()

	tbl, err := Load(opts)

	rows := 0
	if tbl != nil {
		rows = len(tbl.Rows)
	}
	hooks.OnLoadComplete(ctx, format, rows, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if tbl.Dropped > 0 {
		opts.Logger.Debug("dropped rows with missing values", "dropped", tbl.Dropped)
	}
	return tbl, nil
}

// LayoutWithCacheInfo resolves a layout with caching and returns cache hit info.
// Overflow warnings are logged at warn level whether or not the layout was cached.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, tbl *dataset.Table, opts Options) (plot.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return plot.Layout{}, false, err
	}

	datasetHash, err := cache.HashJSON(tbl)
	if err != nil {
		return plot.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(datasetHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := plot.Unmarshal(data); err == nil {
				logWarnings(opts.Logger, cached)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Overflow, len(tbl.Rows))
	start := time.Now()

	l, err := GenerateLayout(ctx, tbl, opts)
	hooks.OnLayoutComplete(ctx, opts.Overflow, time.Since(start), err)
	if err != nil {
		return plot.Layout{}, false, err
	}
	for _, lane := range l.Lanes {
		if len(lane.Points) > 1 {
			hooks.OnLaneResolved(ctx, opts.Overflow, lane.Overflow, lane.Iterations)
		}
	}
	logWarnings(opts.Logger, l)

	if data, err := plot.Marshal(l); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, tbl *dataset.Table, opts Options) (plot.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, tbl, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l plot.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	layoutData, err := plot.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := Render(l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l plot.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func logWarnings(logger *log.Logger, l plot.Layout) {
	for _, lane := range l.Lanes {
		if lane.Warning != "" {
			logger.Warn(lane.Warning, "lane", laneName(lane))
		}
	}
}

func laneName(l plot.Lane) string {
	if l.Hue == "" {
		return l.Category
	}
	return l.Category + "/" + l.Hue
}
