package swarm

import (
	"fmt"
	"math"
	"math/rand/v2"

	apperrors "github.com/matzehuels/beeswarm/pkg/errors"
)

// Defaults applied by [DefaultConfig].
const (
	DefaultWidth         = 0.8
	DefaultWarnThreshold = 0.05
	DefaultShrinkFactor  = 0.9
	DefaultMaxIterations = 200
	DefaultMinShrink     = 1e-9
	DefaultSeed          = uint64(42)
)

// Config is the immutable resolver configuration.
type Config struct {
	// Orient is the categorical axis. The resolver itself is orientation
	// agnostic; hosts read it back to decide which coordinate to move.
	Orient Orientation

	// Width is the full lane width in scaled units. Lanes built with
	// [Resolver.NewLane] get half of it as their half width.
	Width float64

	// WarnThreshold is the overflow fraction above which a warning is
	// attached to the result. Must be within [0, 1].
	WarnThreshold float64

	// Overflow is the overflow policy.
	Overflow Policy

	// ShrinkFactor multiplies every radius on each shrink retry. Must be
	// within (0, 1).
	ShrinkFactor float64

	// MaxIterations caps solver passes under the shrink policy.
	MaxIterations int

	// MinShrink stops the shrink policy once the cumulative multiplier would
	// fall below it.
	MinShrink float64

	// Seed drives the random policy. Each lane derives its own stream from
	// the seed and its center so lanes can be resolved concurrently.
	Seed uint64
}

// DefaultConfig returns the configuration used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		Orient:        OrientX,
		Width:         DefaultWidth,
		WarnThreshold: DefaultWarnThreshold,
		Overflow:      PolicyGutters,
		ShrinkFactor:  DefaultShrinkFactor,
		MaxIterations: DefaultMaxIterations,
		MinShrink:     DefaultMinShrink,
		Seed:          DefaultSeed,
	}
}

// Progress is reported after every shrink step.
type Progress struct {
	Center    float64 // lane center in data units
	Iteration int     // solver passes completed so far
	Shrink    float64 // cumulative radius multiplier for the next pass
	Overflow  float64 // overflow fraction of the pass that triggered the shrink
}

// Message renders the progress notice.
func (p Progress) Message() string {
	return fmt.Sprintf("Shrinking radii to %.1f%% of the original point size.", p.Shrink*100)
}

// Option configures optional resolver behavior.
type Option func(*Resolver)

// WithProgress registers a callback invoked after each shrink step. The
// callback may be called from several goroutines when lanes are resolved
// concurrently.
func WithProgress(fn func(Progress)) Option {
	return func(r *Resolver) { r.progress = fn }
}

// Layouter is the layout strategy seen by plot hosts.
type Layouter interface {
	Layout(markers []Marker, lane Lane) (Result, error)
}

// Resolver runs the solver under an overflow policy.
type Resolver struct {
	cfg      Config
	progress func(Progress)
}

var _ Layouter = (*Resolver)(nil)

// NewResolver validates cfg and returns a resolver. A zero ShrinkFactor,
// MaxIterations or MinShrink takes its default, an empty Overflow means
// gutters and an empty Orient means x. Width and WarnThreshold are used as
// given, so callers wanting the documented defaults start from
// [DefaultConfig]. Any invalid value is reported here, never at layout time,
// with an error matching [ErrConfiguration].
func NewResolver(cfg Config, opts ...Option) (*Resolver, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return nil, err
	}
	r := &Resolver{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func normalize(cfg Config) (Config, error) {
	def := DefaultConfig()

	if cfg.Orient == "" {
		cfg.Orient = def.Orient
	} else if _, err := ParseOrientation(string(cfg.Orient)); err != nil {
		return cfg, err
	}

	if cfg.Overflow == "" {
		cfg.Overflow = def.Overflow
	} else {
		p, err := ParsePolicy(string(cfg.Overflow))
		if err != nil {
			return cfg, err
		}
		cfg.Overflow = p
	}

	if math.IsNaN(cfg.Width) || math.IsInf(cfg.Width, 0) || cfg.Width < 0 {
		return cfg, configError("width must be a finite non-negative number, got %g", cfg.Width)
	}
	if math.IsNaN(cfg.WarnThreshold) || cfg.WarnThreshold < 0 || cfg.WarnThreshold > 1 {
		return cfg, configError("warn threshold must be within [0, 1], got %g", cfg.WarnThreshold)
	}
	if cfg.ShrinkFactor == 0 {
		cfg.ShrinkFactor = def.ShrinkFactor
	}
	if math.IsNaN(cfg.ShrinkFactor) || cfg.ShrinkFactor <= 0 || cfg.ShrinkFactor >= 1 {
		return cfg, configError("shrink factor must be within (0, 1), got %g", cfg.ShrinkFactor)
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.MaxIterations < 0 {
		return cfg, configError("max iterations must be positive, got %d", cfg.MaxIterations)
	}
	if cfg.MinShrink == 0 {
		cfg.MinShrink = def.MinShrink
	}
	if math.IsNaN(cfg.MinShrink) || cfg.MinShrink < 0 || cfg.MinShrink >= 1 {
		return cfg, configError("min shrink must be within (0, 1), got %g", cfg.MinShrink)
	}
	return cfg, nil
}

func configError(format string, args ...any) error {
	return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, ErrConfiguration, format, args...)
}

// Config returns a copy of the validated configuration.
func (r *Resolver) Config() Config { return r.cfg }

// Orient returns the configured categorical axis.
func (r *Resolver) Orient() Orientation { return r.cfg.Orient }

// NewLane returns a lane at center with the configured half width and
// identity transforms.
func (r *Resolver) NewLane(center float64) Lane {
	return Lane{Center: center, HalfWidth: r.cfg.Width / 2}
}

// Lane is the placement bound for one layout call.
type Lane struct {
	// Center is the lane position on the categorical axis, in data units.
	Center float64

	// HalfWidth is the maximum displacement from Center, in scaled units.
	HalfWidth float64

	// Display maps categorical data coordinates to pixels. Nil is identity.
	Display Transform

	// Scale maps categorical data coordinates to the scaled space in which
	// HalfWidth is measured. Nil is identity.
	Scale Transform
}

// Bounds returns the lane edges in data units, low first.
func (l Lane) Bounds() (lo, hi float64) {
	scale := orIdentity(l.Scale)
	c := scale.Forward(l.Center)
	lo = scale.Inverse(c - l.HalfWidth)
	hi = scale.Inverse(c + l.HalfWidth)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Result is the outcome of one layout call.
type Result struct {
	// Positions holds the categorical coordinate of every marker in data
	// units, index-aligned with the input.
	Positions []float64

	// Overflowed flags the markers that were clipped or randomized in the
	// final pass.
	Overflowed []bool

	// Overflow is the overflow fraction of the final pass.
	Overflow float64

	// HadOverflow reports whether any pass produced markers outside the lane.
	HadOverflow bool

	// Shrink is the cumulative radius multiplier of the final pass.
	Shrink float64

	// Iterations counts solver passes.
	Iterations int

	// Converged is false when the shrink policy hit its cutoff with markers
	// still outside the lane.
	Converged bool

	// Warning is set when the overflow is worth surfacing to the user.
	Warning *OverflowWarning
}

// OverflowWarning is the non-fatal signal that part of a lane could not be
// placed as swarm.
type OverflowWarning struct {
	Fraction float64
	Policy   Policy
	// Shrink is set when the shrink policy gave up.
	Shrink float64
}

func (w *OverflowWarning) Error() string {
	msg := fmt.Sprintf("%.1f%% of the points cannot be placed as swarm; you may want to decrease"+
		" the size of the markers, use stripplot, or set overflow='shrink'.", w.Fraction*100)
	if w.Policy == PolicyShrink {
		msg += fmt.Sprintf(" Shrinking stopped at %.3g%% of the original point size.", w.Shrink*100)
	}
	return msg
}

type state int

const (
	stateSolving state = iota
	stateChecking
	stateShrinking
	stateDone
)

// Layout positions markers within lane according to the overflow policy.
//
// Errors are returned only for invalid input (NaN coordinates, negative
// radii, a lane center outside the scale's domain). Overflow never fails the
// call; it is reported in the result.
func (r *Resolver) Layout(markers []Marker, lane Lane) (Result, error) {
	if err := validateInput(markers, lane); err != nil {
		return Result{}, err
	}

	display := orIdentity(lane.Display)
	lo, hi := lane.Bounds()
	centerPx := display.Forward(lane.Center)

	res := Result{Shrink: 1, Converged: true}
	radii := make([]Marker, len(markers))
	copy(radii, markers)

	var (
		positions []float64
		flagged   []bool
		count     int
	)

	for st := stateSolving; st != stateDone; {
		switch st {
		case stateSolving:
			px, err := Solve(centerPx, radii)
			if err != nil {
				return Result{}, apperrors.Wrap(apperrors.ErrCodeInternal, err, "swarm lane at %g", lane.Center)
			}
			res.Iterations++
			positions = make([]float64, len(px))
			for i, p := range px {
				positions[i] = display.Inverse(p)
			}
			st = stateChecking

		case stateChecking:
			if r.cfg.Overflow == PolicyRandom {
				flagged, count = r.randomize(positions, lane)
			} else {
				flagged, count = clip(positions, lo, hi)
			}
			res.HadOverflow = res.HadOverflow || count > 0
			res.Overflow = fraction(count, len(positions))

			st = stateDone
			if r.cfg.Overflow == PolicyShrink && count > 0 {
				next := res.Shrink * r.cfg.ShrinkFactor
				if res.Iterations >= r.cfg.MaxIterations || next < r.cfg.MinShrink {
					res.Converged = false
				} else {
					st = stateShrinking
				}
			}

		case stateShrinking:
			res.Shrink *= r.cfg.ShrinkFactor
			for i := range radii {
				radii[i].Radius = markers[i].Radius * res.Shrink
			}
			if r.progress != nil {
				r.progress(Progress{
					Center:    lane.Center,
					Iteration: res.Iterations,
					Shrink:    res.Shrink,
					Overflow:  res.Overflow,
				})
			}
			st = stateSolving
		}
	}

	res.Positions = positions
	res.Overflowed = flagged
	res.Warning = r.warning(res)
	return res, nil
}

func (r *Resolver) warning(res Result) *OverflowWarning {
	switch {
	case r.cfg.Overflow == PolicyShrink && !res.Converged:
		return &OverflowWarning{Fraction: res.Overflow, Policy: PolicyShrink, Shrink: res.Shrink}
	case r.cfg.Overflow != PolicyShrink && res.Overflow > r.cfg.WarnThreshold:
		return &OverflowWarning{Fraction: res.Overflow, Policy: r.cfg.Overflow}
	}
	return nil
}

// clip moves out-of-bound positions to the nearest bound in place.
func clip(positions []float64, lo, hi float64) ([]bool, int) {
	flagged := make([]bool, len(positions))
	count := 0
	for i, p := range positions {
		switch {
		case p < lo:
			positions[i] = lo
		case p > hi:
			positions[i] = hi
		default:
			continue
		}
		flagged[i] = true
		count++
	}
	return flagged, count
}

// randomize replaces out-of-bound positions by uniform draws in scaled space.
func (r *Resolver) randomize(positions []float64, lane Lane) ([]bool, int) {
	scale := orIdentity(lane.Scale)
	lo, hi := lane.Bounds()
	c := scale.Forward(lane.Center)
	rng := rand.New(rand.NewPCG(r.cfg.Seed, math.Float64bits(lane.Center)))

	flagged := make([]bool, len(positions))
	count := 0
	for i, p := range positions {
		if p >= lo && p <= hi {
			continue
		}
		v := scale.Inverse(c - lane.HalfWidth + rng.Float64()*2*lane.HalfWidth)
		positions[i] = min(max(v, lo), hi)
		flagged[i] = true
		count++
	}
	return flagged, count
}

func fraction(count, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(count) / float64(n)
}

func validateInput(markers []Marker, lane Lane) error {
	if !finite(lane.Center) {
		return apperrors.New(apperrors.ErrCodeInvalidMarker, "lane center must be finite, got %g", lane.Center)
	}
	if !finite(lane.HalfWidth) || lane.HalfWidth < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidMarker, "lane half width must be finite and non-negative, got %g", lane.HalfWidth)
	}
	if c := orIdentity(lane.Scale).Forward(lane.Center); !finite(c) {
		return apperrors.New(apperrors.ErrCodeInvalidScale, "lane center %g is outside the axis scale domain", lane.Center)
	}
	for i, m := range markers {
		if !finite(m.Value) {
			return apperrors.New(apperrors.ErrCodeInvalidMarker, "marker %d: value must be finite, got %g", i, m.Value)
		}
		if !finite(m.Radius) || m.Radius < 0 {
			return apperrors.New(apperrors.ErrCodeInvalidMarker, "marker %d: radius must be finite and non-negative, got %g", i, m.Radius)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
