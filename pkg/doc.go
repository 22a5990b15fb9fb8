// Package pkg provides the libraries behind the beeswarm tool.
//
// # Overview
//
// A beeswarm plot is a categorical scatter plot where points that would
// overlap are nudged sideways along the category axis. The pkg directory is
// organized as:
//
//  1. [swarm] - the swarm solver and the overflow resolver
//  2. [plot] - datasets to lanes, figure geometry and parallel lane resolution
//  3. [dataset], [config] - input tables and plot configuration files
//  4. [render/sink] - SVG, PNG and JSON output
//  5. [pipeline] - orchestration (load → layout → render) with caching
//  6. [cache], [store] - layout caching and persisted layouts
//  7. [server], [observability] - the HTTP API and its metrics
//
// # Data Flow
//
//	CSV / TSV / JSON
//	       ↓
//	  [dataset] observations
//	       ↓
//	  [plot] lanes  →  [swarm] Solve + Resolver.Layout per lane
//	       ↓
//	  [plot.Layout]
//	       ↓
//	  [render/sink] SVG / PNG / JSON
//
// # Quick Start
//
//	tbl, _ := dataset.ReadFile("tips.csv", dataset.Columns{Category: "day", Value: "total_bill"})
//	l, _ := plot.Build(ctx, tbl, plot.Options{Overflow: swarm.PolicyShrink})
//	svg := sink.RenderSVG(l)
//
// Or through the pipeline, which adds validation, defaults and caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "tips.csv",
//	    Columns: dataset.Columns{Category: "day", Value: "total_bill"},
//	    Formats: []string{pipeline.FormatSVG},
//	})
package pkg
