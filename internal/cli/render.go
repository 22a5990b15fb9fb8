package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/pipeline"
	"github.com/matzehuels/beeswarm/pkg/plot"
)

// renderCommand creates the render command. Its input is either a dataset or
// a layout written by the layout command (recognised by its .layout.json
// suffix), in which case the layout flags are ignored.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		opts       pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [data.csv | plot.layout.json]",
		Short: "Render a dataset or a saved layout to SVG, PNG or JSON",
		Example: `  beeswarm render tips.csv -x day -y total_bill -f svg,png
  beeswarm render tips.layout.json -f png --scale 2 --title "Tips by day"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if isLayoutFile(args[0]) {
				return c.runRenderLayout(cmd.Context(), args[0], opts, output, noCache)
			}
			opts.Input = args[0]
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addDatasetFlags(cmd, &opts)
	addRenderFlags(cmd, &opts)

	return cmd
}

func isLayoutFile(path string) bool {
	return strings.HasSuffix(path, layoutExt)
}

// runRender resolves the dataset's layout and renders it.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
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
	paths, err := c.renderAndWrite(ctx, runner, l, opts, opts.Input, output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	for _, p := range paths {
		printFile(p)
	}
	printStats(l.PointCount(), len(l.Lanes), hit)
	printLaneWarnings(l)
	return nil
}

// runRenderLayout renders a layout file written by the layout command.
func (c *CLI) runRenderLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	if err := c.applyConfig(&opts); err != nil {
		return err
	}
	opts.Logger = c.Logger
	opts.SetRenderDefaults()
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	l, err := plot.ReadFile(input)
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", input)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout %s", input)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	paths, err := c.renderAndWrite(ctx, runner, l, opts, input, output)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// renderAndWrite renders every requested format and writes one file per
// format. It returns the written paths in format order.
func (c *CLI) renderAndWrite(ctx context.Context, runner *pipeline.Runner, l plot.Layout, opts pipeline.Options, input, output string) ([]string, error) {
	st := newStage(c.Logger, "rendered")
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	st.done("formats", strings.Join(opts.Formats, ","), "cached", hit)

	paths := make([]string, 0, len(opts.Formats))
	for _, format := range opts.Formats {
		path := outputPath(input, output, format, len(opts.Formats))
		if filepath.Clean(path) == filepath.Clean(input) {
			return nil, errors.New(errors.ErrCodeInvalidPath, "output %s would overwrite the input", path)
		}
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		c.Logger.Debug("wrote artifact", "path", path, "bytes", len(artifacts[format]))
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath names the file for one format. A single format written to an
// explicit --output goes exactly there; otherwise the format's extension is
// appended to the base path, which defaults to the input without its
// extension. JSON output uses the layout extension so it can be rendered
// again.
func outputPath(input, output, format string, nFormats int) string {
	if output != "" && nFormats == 1 {
		return output
	}
	base := basePath(input)
	if output != "" {
		base = output
		if ext := filepath.Ext(output); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			base = basePath(output)
		}
	}
	if format == pipeline.FormatJSON {
		return base + layoutExt
	}
	return base + "." + format
}
