package plot

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/swarm"
)

// Scale names an axis scale.
type Scale string

const (
	ScaleLinear Scale = "linear"
	ScaleLog    Scale = "log"
)

// ParseScale validates an axis scale name. The empty string is linear.
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return ScaleLinear, nil
	case "log", "log10":
		return ScaleLog, nil
	}
	return "", errors.New(errors.ErrCodeInvalidScale, "scale must be 'linear' or 'log', got %q", s)
}

// Transform returns the mapping from data units to scaled units.
func (s Scale) Transform() swarm.Transform {
	if s == ScaleLog {
		return swarm.Log10{}
	}
	return swarm.Identity{}
}

// axisMap maps data units along one axis onto a pixel interval.
type axisMap struct {
	scale      swarm.Transform
	smin, smax float64 // limits in scaled units
	p0, p1     float64 // pixels for smin and smax; p1 < p0 reverses the axis
}

func (a axisMap) display() swarm.Transform {
	k := (a.p1 - a.p0) / (a.smax - a.smin)
	return swarm.Compose(a.scale, swarm.Affine{Scale: k, Offset: a.p0 - a.smin*k})
}

func (a axisMap) limits() (lo, hi float64) {
	return a.scale.Inverse(a.smin), a.scale.Inverse(a.smax)
}

// valueTicks returns ticks between the scaled limits of a.
func (a axisMap) valueTicks(s Scale) []Tick {
	lo, hi := a.limits()
	var vals []float64
	if s == ScaleLog {
		vals = logTicks(a.smin, a.smax)
	}
	if len(vals) < 2 {
		vals = linearTicks(lo, hi, 6)
	}
	px := a.display()
	step := 0.0
	if len(vals) > 1 {
		step = vals[1] - vals[0]
	}
	ticks := make([]Tick, 0, len(vals))
	for _, v := range vals {
		if s == ScaleLog && v <= 0 {
			continue
		}
		ticks = append(ticks, Tick{Pos: px.Forward(v), Label: formatTick(v, step, s)})
	}
	return ticks
}

// linearTicks places about target ticks at 1, 2 or 5 times a power of ten.
// The count is fixed before iterating so wide magnitudes with a narrow range
// cannot stall on a step below the spacing of representable values.
func linearTicks(lo, hi float64, target int) []float64 {
	if !(hi > lo) || target < 1 {
		return []float64{lo}
	}
	step := niceStep((hi - lo) / float64(target))
	if !(step > 0) || math.IsInf(step, 0) {
		return []float64{lo}
	}
	first := math.Ceil(lo / step)
	n := int(math.Floor(hi/step+1e-9)-first) + 1
	n = min(max(n, 0), 2*target+2)
	out := make([]float64, 0, n)
	for i := range n {
		v := (first + float64(i)) * step
		if v == 0 {
			v = 0 // drop negative zero
		}
		out = append(out, v)
	}
	return out
}

func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm <= 1:
		return mag
	case norm <= 2:
		return 2 * mag
	case norm <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// logTicks returns the powers of ten within the scaled interval.
func logTicks(smin, smax float64) []float64 {
	var out []float64
	for e := math.Ceil(smin); e <= smax; e++ {
		out = append(out, math.Pow(10, e))
	}
	return out
}

func formatTick(v, step float64, s Scale) string {
	if s == ScaleLog || step <= 0 {
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
	decimals := max(0, int(math.Ceil(-math.Log10(step)-1e-9)))
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// padded returns the scaled interval [lo, hi] grown by frac on both sides.
// A degenerate interval gets half a unit of room on each side.
func padded(lo, hi, frac float64) (float64, float64) {
	if hi-lo <= 0 {
		return lo - 0.5, hi + 0.5
	}
	d := (hi - lo) * frac
	return lo - d, hi + d
}
