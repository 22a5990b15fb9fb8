package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beeswarm/pkg/pipeline"
	"github.com/matzehuels/beeswarm/pkg/plot"
	"github.com/matzehuels/beeswarm/pkg/swarm"
)

// layoutCommand creates the layout command for resolving swarm layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [data.csv]",
		Short: "Resolve a swarm layout from a dataset",
		Long: `Resolve a swarm layout from a dataset.

The dataset is a CSV, TSV or JSON file with one observation per row. The
layout command places every point, applies the overflow policy to points that
do not fit their lane, and writes the result as <input>.layout.json. The file
can be rendered later with 'beeswarm render'.

Results are cached locally for faster subsequent runs.`,
		Example: `  beeswarm layout tips.csv -x day -y total_bill --hue sex --dodge
  beeswarm layout tips.csv -x day -y total_bill --overflow shrink -v`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addDatasetFlags(cmd, &opts)

	return cmd
}

// runLayout loads the dataset, resolves the layout and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if err := c.prepareOptions(&opts); err != nil {
		return err
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	l, hit, err := c.resolve(ctx, runner, &opts)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath(opts.Input) + layoutExt
	}
	if err := plot.WriteFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(l.PointCount(), len(l.Lanes), hit)
	printLaneWarnings(l)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)
	return nil
}

// resolve loads and lays out the dataset behind a spinner. Shrink notices
// replace the spinner text as they arrive. opts must be prepared.
func (c *CLI) resolve(ctx context.Context, runner *pipeline.Runner, opts *pipeline.Options) (plot.Layout, bool, error) {
	spinner := newSpinner(ctx, "Resolving swarm layout...")
	opts.OnProgress = func(p swarm.Progress) { spinner.SetMessage(p.Message()) }
	spinner.Start()

	st := newStage(c.Logger, "loaded dataset")
	tbl, err := runner.Load(ctx, *opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return plot.Layout{}, false, err
	}
	st.done("rows", len(tbl.Rows))

	st = newStage(c.Logger, "resolved layout")
	l, hit, err := runner.LayoutWithCacheInfo(ctx, tbl, *opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return plot.Layout{}, false, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	st.done("lanes", len(l.Lanes), "cached", hit)

	if ctx.Err() != nil {
		return plot.Layout{}, false, ctx.Err()
	}
	return l, hit, nil
}

// layoutExt marks files written by the layout command.
const layoutExt = ".layout.json"

// basePath strips the layout or dataset extension from path.
func basePath(path string) string {
	if strings.HasSuffix(path, layoutExt) {
		return strings.TrimSuffix(path, layoutExt)
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}
