package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beeswarm/pkg/pipeline"
	"github.com/matzehuels/beeswarm/pkg/plot"
)

// inspectCommand resolves a layout and opens an interactive lane browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain   bool
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "inspect [data.csv | plot.layout.json]",
		Short: "Browse the lanes of a layout and their overflow",
		Long: `Browse the lanes of a layout and their overflow.

Each row is one lane: its point count, the fraction of points clipped into
the gutters, and for the shrink policy the final radius scale. Select a lane
to see its warning and value range. Use --plain to print the table without
the interactive view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.inspectLayout(cmd.Context(), args[0], opts, noCache)
			if err != nil {
				return err
			}
			if plain {
				fmt.Fprintln(stdout, renderLaneTable(l, -1))
				return nil
			}
			_, err = tea.NewProgram(NewLaneListModel(l), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the lane table and exit")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addDatasetFlags(cmd, &opts)

	return cmd
}

func (c *CLI) inspectLayout(ctx context.Context, input string, opts pipeline.Options, noCache bool) (plot.Layout, error) {
	if isLayoutFile(input) {
		return plot.ReadFile(input)
	}
	opts.Input = input
	if err := c.prepareOptions(&opts); err != nil {
		return plot.Layout{}, err
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return plot.Layout{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	l, _, err := c.resolve(ctx, runner, &opts)
	return l, err
}

// =============================================================================
// LaneListModel - Interactive lane browser
// =============================================================================

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// LaneListModel is the bubbletea model for browsing lanes.
type LaneListModel struct {
	Layout plot.Layout
	Cursor int
	Detail bool
}

// NewLaneListModel creates a lane browser for l.
func NewLaneListModel(l plot.Layout) LaneListModel {
	return LaneListModel{Layout: l}
}

func (m LaneListModel) Init() tea.Cmd {
	return nil
}

func (m LaneListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Layout.Lanes)-1 {
			m.Cursor++
		}
	case "enter", " ":
		m.Detail = !m.Detail
	}
	return m, nil
}

func (m LaneListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Lanes · overflow=%s", m.Layout.Overflow)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")
	b.WriteString(renderLaneTable(m.Layout, m.Cursor))
	b.WriteString("\n")

	if m.Detail && m.Cursor < len(m.Layout.Lanes) {
		b.WriteString(laneDetail(m.Layout.Lanes[m.Cursor]))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Layout.Lanes))))
	return b.String()
}

// renderLaneTable renders one row per lane. Row cursor is highlighted; pass
// -1 for none.
func renderLaneTable(l plot.Layout, cursor int) string {
	rows := make([][]string, len(l.Lanes))
	for i, lane := range l.Lanes {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		status := "ok"
		switch {
		case lane.Warning != "":
			status = "warn"
		case !lane.Converged:
			status = "capped"
		}
		rows[i] = []string{
			marker,
			laneLabel(lane),
			fmt.Sprintf("%d", len(lane.Points)),
			fmt.Sprintf("%.1f%%", lane.Overflow*100),
			fmt.Sprintf("%.1f%%", lane.Shrink*100),
			fmt.Sprintf("%d", lane.Iterations),
			status,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Lane", "Points", "Overflow", "Radius", "Iter", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			base := lipgloss.NewStyle()
			if row < 0 || row >= len(l.Lanes) {
				return base
			}
			lane := l.Lanes[row]
			if col == 6 && lane.Warning != "" {
				base = base.Foreground(colorYellow)
			} else if lane.Overflow == 0 {
				base = base.Foreground(colorGreen)
			}
			if row == cursor {
				base = base.Bold(true)
			}
			return base
		}).
		Render()
}

func laneDetail(lane plot.Lane) string {
	var b strings.Builder
	lo, hi := valueRange(lane)
	fmt.Fprintf(&b, "  %s\n", StyleTitle.Render(laneLabel(lane)))
	fmt.Fprintf(&b, "  %s %.2f ± %.2f px\n", listDimStyle.Render("center    "), lane.Center, lane.HalfWidth)
	fmt.Fprintf(&b, "  %s %g … %g\n", listDimStyle.Render("values    "), lo, hi)
	if lane.HadOverflow && lane.Overflow == 0 {
		fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render("overflow  "), "resolved by shrinking")
	}
	if lane.Warning != "" {
		fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render("warning   "), StyleWarning.Render(lane.Warning))
	}
	return b.String()
}

func valueRange(lane plot.Lane) (lo, hi float64) {
	for i, p := range lane.Points {
		if i == 0 || p.Value < lo {
			lo = p.Value
		}
		if i == 0 || p.Value > hi {
			hi = p.Value
		}
	}
	return lo, hi
}
