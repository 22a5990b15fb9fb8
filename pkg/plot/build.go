package plot

import (
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/beeswarm/pkg/dataset"
	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/swarm"
)

// lanePlan is a lane before resolution.
type lanePlan struct {
	category  string
	hue       string
	hueIndex  int
	center    float64
	halfWidth float64
	rows      []int
}

// Build groups tbl into lanes and resolves each lane as a swarm.
//
// Lanes are resolved concurrently, at most opts.Workers at a time. The first
// lane error cancels the rest. Overflow is never an error: it is reported per
// lane and collected in [Layout.Warnings].
func Build(ctx context.Context, tbl *dataset.Table, opts Options) (Layout, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return Layout{}, err
	}
	orient, _ := swarm.ParseOrientation(string(opts.Orient))
	opts.Orient = orient
	valueScale, _ := ParseScale(string(opts.ValueScale))
	catScale, _ := ParseScale(string(opts.CategoryScale))

	if tbl == nil || len(tbl.Rows) == 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidDataset, "no observations to plot")
	}

	categories := levelOrder(tbl.Categories(), opts.Order)
	hues := levelOrder(tbl.Hues(), opts.HueOrder)

	positions, err := categoryPositions(tbl, categories, opts.NativeScale, catScale)
	if err != nil {
		return Layout{}, err
	}
	catT := catScale.Transform()
	valT := valueScale.Transform()

	nativeWidth := 1.0
	if opts.NativeScale {
		nativeWidth = minGap(positions, catT)
	}
	laneWidth := opts.LaneWidth * nativeWidth

	// Categorical limits in scaled units.
	cmin, cmax := math.Inf(1), math.Inf(-1)
	for _, p := range positions {
		s := catT.Forward(p)
		cmin, cmax = min(cmin, s), max(cmax, s)
	}
	cmin -= nativeWidth / 2
	cmax += nativeWidth / 2

	// Value limits in scaled units.
	vmin, vmax := math.Inf(1), math.Inf(-1)
	for _, r := range tbl.Rows {
		if valueScale == ScaleLog && r.Value <= 0 {
			return Layout{}, errors.New(errors.ErrCodeInvalidScale, "log value scale requires positive values, got %g", r.Value)
		}
		s := valT.Forward(r.Value)
		vmin, vmax = min(vmin, s), max(vmax, s)
	}
	vmin, vmax = padded(vmin, vmax, 0.05)

	m := opts.Margins
	frame := Rect{X0: m.Left, Y0: m.Bottom, X1: opts.Width - m.Right, Y1: opts.Height - m.Top}
	var catAxis, valAxis axisMap
	if orient == swarm.OrientX {
		catAxis = axisMap{scale: catT, smin: cmin, smax: cmax, p0: frame.X0, p1: frame.X1}
		valAxis = axisMap{scale: valT, smin: vmin, smax: vmax, p0: frame.Y0, p1: frame.Y1}
	} else {
		// First category at the top.
		catAxis = axisMap{scale: catT, smin: cmin, smax: cmax, p0: frame.Y1, p1: frame.Y0}
		valAxis = axisMap{scale: valT, smin: vmin, smax: vmax, p0: frame.X0, p1: frame.X1}
	}

	plans := planLanes(tbl, categories, hues, positions, catT, laneWidth, opts.Dodge)

	layouter := opts.Layouter
	if layouter == nil {
		var ropts []swarm.Option
		if opts.Progress != nil {
			ropts = append(ropts, swarm.WithProgress(opts.Progress))
		}
		r, err := swarm.NewResolver(opts.resolverConfig(laneWidth), ropts...)
		if err != nil {
			return Layout{}, err
		}
		layouter = r
	}

	radius := opts.Radius()
	hueIdx := indexOf(hues)
	catDisplay := catAxis.display()
	valDisplay := valAxis.display()

	lanes := make([]Lane, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, plan := range plans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lane, err := resolveLane(layouter, plan, tbl, hueIdx, radius, orient, catT, catDisplay, valDisplay)
			if err != nil {
				return fmt.Errorf("lane %s: %w", laneLabel(plan), err)
			}
			lanes[i] = lane
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Layout{}, err
	}

	out := Layout{
		Orient:   string(orient),
		Width:    opts.Width,
		Height:   opts.Height,
		DPI:      opts.DPI,
		Frame:    frame,
		Hues:     hues,
		Lanes:    lanes,
		Overflow: string(opts.Overflow),
		Seed:     opts.Seed,
		Alpha:    opts.Alpha,

		EdgeWidth: opts.LineWidth * opts.DPI / 72,
	}
	lo, hi := valAxis.limits()
	out.ValueAxis = Axis{Label: tbl.Columns.Value, Scale: string(valueScale), Min: lo, Max: hi, Ticks: valAxis.valueTicks(valueScale)}
	lo, hi = catAxis.limits()
	out.CategoryAxis = Axis{Label: tbl.Columns.Category, Scale: string(catScale), Min: lo, Max: hi}
	for _, c := range categories {
		out.CategoryAxis.Ticks = append(out.CategoryAxis.Ticks, Tick{Pos: catDisplay.Forward(positions[c]), Label: c})
	}
	for _, lane := range lanes {
		if lane.Warning != "" {
			out.Warnings = append(out.Warnings, lane.Warning)
		}
	}
	return out, nil
}

func resolveLane(
	layouter swarm.Layouter,
	plan lanePlan,
	tbl *dataset.Table,
	hueIdx map[string]int,
	radius float64,
	orient swarm.Orientation,
	catScale, catDisplay, valDisplay swarm.Transform,
) (Lane, error) {
	markers := make([]swarm.Marker, len(plan.rows))
	for j, row := range plan.rows {
		markers[j] = swarm.Marker{Value: valDisplay.Forward(tbl.Rows[row].Value), Radius: radius}
	}

	res := swarm.Result{Shrink: 1, Converged: true}
	if len(markers) < 2 {
		res.Positions = make([]float64, len(markers))
		res.Overflowed = make([]bool, len(markers))
		for j := range res.Positions {
			res.Positions[j] = plan.center
		}
	} else {
		var err error
		res, err = layouter.Layout(markers, swarm.Lane{
			Center:    plan.center,
			HalfWidth: plan.halfWidth,
			Display:   catDisplay,
			Scale:     catScale,
		})
		if err != nil {
			return Lane{}, err
		}
	}

	lane := Lane{
		Category:    plan.category,
		Hue:         plan.hue,
		HueIndex:    plan.hueIndex,
		Center:      plan.center,
		HalfWidth:   plan.halfWidth,
		Points:      make([]Point, len(markers)),
		Overflow:    res.Overflow,
		HadOverflow: res.HadOverflow,
		Shrink:      res.Shrink,
		Iterations:  res.Iterations,
		Converged:   res.Converged,
	}
	if res.Warning != nil {
		lane.Warning = laneLabel(plan) + ": " + res.Warning.Error()
	}
	for j, row := range plan.rows {
		catPx := catDisplay.Forward(res.Positions[j])
		valPx := markers[j].Value
		p := Point{
			Row:      row,
			HueIndex: -1,
			Position: res.Positions[j],
			Value:    tbl.Rows[row].Value,
			Radius:   radius * res.Shrink,
		}
		if h, ok := hueIdx[tbl.Rows[row].Hue]; ok {
			p.HueIndex = h
		}
		if j < len(res.Overflowed) {
			p.Overflowed = res.Overflowed[j]
		}
		if orient == swarm.OrientX {
			p.X, p.Y = catPx, valPx
		} else {
			p.X, p.Y = valPx, catPx
		}
		lane.Points[j] = p
	}
	return lane, nil
}

// planLanes groups rows by category and, when dodging, by hue. Lanes follow
// category order, then hue order.
func planLanes(
	tbl *dataset.Table,
	categories, hues []string,
	positions map[string]float64,
	catScale swarm.Transform,
	laneWidth float64,
	dodge bool,
) []lanePlan {
	catIndex := indexOf(categories)
	hueIndex := indexOf(hues)
	dodge = dodge && len(hues) > 0

	nh := 1
	if dodge {
		nh = len(hues)
	}
	grid := make([][]int, len(categories)*nh)
	for row, o := range tbl.Rows {
		ci, ok := catIndex[o.Category]
		if !ok {
			continue
		}
		hi := 0
		if len(hues) > 0 {
			if hi, ok = hueIndex[o.Hue]; !ok {
				continue
			}
		}
		slot := ci * nh
		if dodge {
			slot += hi
		}
		grid[slot] = append(grid[slot], row)
	}

	var plans []lanePlan
	for ci, c := range categories {
		base := catScale.Forward(positions[c])
		for k := range nh {
			rows := grid[ci*nh+k]
			if len(rows) == 0 {
				continue
			}
			plan := lanePlan{category: c, rows: rows, center: positions[c], halfWidth: laneWidth / 2, hueIndex: -1}
			if dodge {
				offset := DodgeOffsets(laneWidth, nh)[k]
				plan.hue, plan.hueIndex = hues[k], k
				plan.center = catScale.Inverse(base + offset)
				plan.halfWidth = laneWidth / float64(nh) / 2
			}
			plans = append(plans, plan)
		}
	}
	return plans
}

// DodgeOffsets returns the sub-lane offsets for n hue levels sharing a lane
// of the given width: evenly spaced, each n-th of the width apart, centered
// on zero.
func DodgeOffsets(width float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	each := width / float64(n)
	out := make([]float64, n)
	for k := range out {
		out[k] = float64(k)*each - (width-each)/2
	}
	return out
}

func categoryPositions(tbl *dataset.Table, categories []string, native bool, s Scale) (map[string]float64, error) {
	pos := make(map[string]float64, len(categories))
	if !native {
		for i, c := range categories {
			pos[c] = float64(i)
		}
		return pos, nil
	}
	nums, err := tbl.NumericCategories()
	if err != nil {
		return nil, fmt.Errorf("native scale: %w", err)
	}
	for _, c := range categories {
		v, ok := nums[c]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "native scale: order level %q does not occur in the data", c)
		}
		if s == ScaleLog && v <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidScale, "log categorical scale requires positive categories, got %g", v)
		}
		pos[c] = v
	}
	return pos, nil
}

// minGap returns the smallest distance between distinct scaled positions,
// or 1 when there is only one.
func minGap(positions map[string]float64, t swarm.Transform) float64 {
	scaled := make([]float64, 0, len(positions))
	for _, p := range positions {
		scaled = append(scaled, t.Forward(p))
	}
	slices.Sort(scaled)
	scaled = slices.Compact(scaled)
	gap := math.Inf(1)
	for i := 1; i < len(scaled); i++ {
		gap = min(gap, scaled[i]-scaled[i-1])
	}
	if math.IsInf(gap, 1) {
		return 1
	}
	return gap
}

// levelOrder returns order when given, else the observed levels.
func levelOrder(observed, order []string) []string {
	if len(order) == 0 || len(observed) == 0 {
		return observed
	}
	return slices.Clone(order)
}

func indexOf(levels []string) map[string]int {
	idx := make(map[string]int, len(levels))
	for i, l := range levels {
		if _, dup := idx[l]; !dup {
			idx[l] = i
		}
	}
	return idx
}

func laneLabel(p lanePlan) string {
	label := p.category
	if label == "" {
		label = "(all)"
	}
	if p.hue != "" {
		label += "/" + p.hue
	}
	return label
}
