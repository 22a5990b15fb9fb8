package swarm

import (
	"errors"
	"math"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/beeswarm/pkg/errors"
)

func identical(n int, value, radius float64) []Marker {
	markers := make([]Marker, n)
	for i := range markers {
		markers[i] = Marker{Value: value, Radius: radius}
	}
	return markers
}

func mustResolver(t *testing.T, cfg Config, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(cfg, opts...)
	if err != nil {
		t.Fatalf("NewResolver(%+v) error: %v", cfg, err)
	}
	return r
}

func assertWithin(t *testing.T, positions []float64, lo, hi float64) {
	t.Helper()
	for i, p := range positions {
		if p < lo-eps || p > hi+eps {
			t.Errorf("position %d = %g outside [%g, %g]", i, p, lo, hi)
		}
	}
}

func TestNewResolverDefaults(t *testing.T) {
	r := mustResolver(t, Config{})
	cfg := r.Config()
	if cfg.Overflow != PolicyGutters {
		t.Errorf("Overflow = %q, want gutters", cfg.Overflow)
	}
	if cfg.Orient != OrientX {
		t.Errorf("Orient = %q, want x", cfg.Orient)
	}
	if cfg.ShrinkFactor != DefaultShrinkFactor {
		t.Errorf("ShrinkFactor = %g, want %g", cfg.ShrinkFactor, DefaultShrinkFactor)
	}
	if cfg.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", cfg.MaxIterations, DefaultMaxIterations)
	}
	if cfg.MinShrink != DefaultMinShrink {
		t.Errorf("MinShrink = %g, want %g", cfg.MinShrink, DefaultMinShrink)
	}
}

func TestNewResolverRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		code apperrors.Code
	}{
		{"bogus policy", Config{Overflow: "bogus"}, apperrors.ErrCodeInvalidPolicy},
		{"bogus orient", Config{Orient: "z"}, apperrors.ErrCodeInvalidOrient},
		{"negative width", Config{Width: -1}, apperrors.ErrCodeInvalidConfig},
		{"nan width", Config{Width: math.NaN()}, apperrors.ErrCodeInvalidConfig},
		{"threshold above one", Config{WarnThreshold: 1.5}, apperrors.ErrCodeInvalidConfig},
		{"negative threshold", Config{WarnThreshold: -0.1}, apperrors.ErrCodeInvalidConfig},
		{"shrink factor one", Config{ShrinkFactor: 1}, apperrors.ErrCodeInvalidConfig},
		{"negative shrink factor", Config{ShrinkFactor: -0.5}, apperrors.ErrCodeInvalidConfig},
		{"negative iterations", Config{MaxIterations: -3}, apperrors.ErrCodeInvalidConfig},
		{"min shrink one", Config{MinShrink: 1}, apperrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolver(tt.cfg)
			if err == nil {
				t.Fatalf("NewResolver(%+v) = %v, want error", tt.cfg, r)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("error %v does not match ErrConfiguration", err)
			}
			if !apperrors.Is(err, tt.code) {
				t.Errorf("code = %q, want %q", apperrors.GetCode(err), tt.code)
			}
		})
	}
}

func TestBogusPolicyMessage(t *testing.T) {
	_, err := NewResolver(Config{Overflow: "bogus"})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := apperrors.UserMessage(err)
	for _, want := range []string{"gutters", "shrink", "random", "bogus"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not mention %q", msg, want)
		}
	}
}

func TestLayoutEmpty(t *testing.T) {
	r := mustResolver(t, Config{Overflow: PolicyShrink})
	res, err := r.Layout(nil, r.NewLane(0))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(res.Positions) != 0 || res.Overflow != 0 || res.Shrink != 1 || !res.Converged || res.Warning != nil {
		t.Errorf("unexpected result for empty lane: %+v", res)
	}
}

func TestLayoutFitsWithoutOverflow(t *testing.T) {
	for _, policy := range Policies {
		t.Run(string(policy), func(t *testing.T) {
			r := mustResolver(t, Config{Overflow: policy, Width: 4})
			res, err := r.Layout(identical(3, 0, 1), r.NewLane(0))
			if err != nil {
				t.Fatalf("Layout error: %v", err)
			}
			want := []float64{0, -2, 2}
			for i := range want {
				if math.Abs(res.Positions[i]-want[i]) > eps {
					t.Fatalf("Positions = %v, want %v", res.Positions, want)
				}
			}
			if res.Overflow != 0 || res.HadOverflow || res.Warning != nil {
				t.Errorf("unexpected overflow: %+v", res)
			}
			if res.Shrink != 1 || res.Iterations != 1 {
				t.Errorf("Shrink = %g, Iterations = %d, want 1, 1", res.Shrink, res.Iterations)
			}
		})
	}
}

func TestLayoutGuttersClipsAndWarns(t *testing.T) {
	r := mustResolver(t, Config{Overflow: PolicyGutters, Width: 0.2})
	res, err := r.Layout(identical(100, 0, 1), r.NewLane(0))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	assertWithin(t, res.Positions, -0.1, 0.1)
	if math.Abs(res.Overflow-0.99) > eps {
		t.Errorf("Overflow = %g, want 0.99", res.Overflow)
	}
	if res.Warning == nil {
		t.Fatal("expected overflow warning")
	}
	if !strings.HasPrefix(res.Warning.Error(), "99.0% of the points cannot be placed as swarm") {
		t.Errorf("warning = %q", res.Warning.Error())
	}
	if strings.Contains(res.Warning.Error(), "Shrinking stopped") {
		t.Errorf("gutters warning mentions shrinking: %q", res.Warning.Error())
	}

	clipped := 0
	for i, p := range res.Positions {
		if res.Overflowed[i] {
			clipped++
			if p != -0.1 && p != 0.1 {
				t.Errorf("clipped marker %d at %g, want a lane edge", i, p)
			}
		}
	}
	if clipped != 99 {
		t.Errorf("clipped = %d, want 99", clipped)
	}
}

func TestLayoutGuttersBelowThresholdDoesNotWarn(t *testing.T) {
	r := mustResolver(t, Config{Overflow: PolicyGutters, Width: 4, WarnThreshold: 0.5})
	// Offsets 0, -2, 2, -4: one of four lands outside [-2, 2].
	res, err := r.Layout(identical(4, 0, 1), r.NewLane(0))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if res.Overflow != 0.25 {
		t.Errorf("Overflow = %g, want 0.25", res.Overflow)
	}
	if res.Warning != nil {
		t.Errorf("unexpected warning below threshold: %v", res.Warning)
	}
	if !res.HadOverflow {
		t.Error("HadOverflow = false, want true")
	}
}

func TestLayoutShrinkConverges(t *testing.T) {
	r := mustResolver(t, Config{Overflow: PolicyShrink, Width: 0.2})
	markers := identical(100, 0, 1)
	res, err := r.Layout(markers, r.NewLane(0))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if !res.Converged {
		t.Fatalf("Converged = false after %d iterations", res.Iterations)
	}
	if res.Overflow != 0 {
		t.Errorf("Overflow = %g, want 0", res.Overflow)
	}
	if res.Shrink >= 1 {
		t.Errorf("Shrink = %g, want < 1", res.Shrink)
	}
	if !res.HadOverflow {
		t.Error("HadOverflow = false, want true")
	}
	if res.Warning != nil {
		t.Errorf("unexpected warning: %v", res.Warning)
	}
	assertWithin(t, res.Positions, -0.1, 0.1)

	shrunk := make([]Marker, len(markers))
	for i, m := range markers {
		shrunk[i] = Marker{Value: m.Value, Radius: m.Radius * res.Shrink}
	}
	assertNoOverlap(t, 0, shrunk, res.Positions)
}

func TestLayoutShrinkIsMonotonic(t *testing.T) {
	var steps []Progress
	r := mustResolver(t, Config{Overflow: PolicyShrink, Width: 0.2},
		WithProgress(func(p Progress) { steps = append(steps, p) }))

	res, err := r.Layout(identical(100, 0, 1), r.NewLane(0))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(steps) != res.Iterations-1 {
		t.Fatalf("got %d progress reports for %d iterations", len(steps), res.Iterations)
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].Shrink >= steps[i-1].Shrink {
			t.Errorf("shrink did not decrease at step %d: %g -> %g", i, steps[i-1].Shrink, steps[i].Shrink)
		}
		if steps[i].Overflow > steps[i-1].Overflow {
			t.Errorf("overflow grew at step %d: %g -> %g", i, steps[i-1].Overflow, steps[i].Overflow)
		}
	}
	if !strings.HasPrefix(steps[0].Message(), "Shrinking radii to 90.0%") {
		t.Errorf("first progress message = %q", steps[0].Message())
	}
}

func TestLayoutShrinkCutoff(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"iteration cap", Config{Overflow: PolicyShrink, Width: 0, MaxIterations: 10}},
		{"min shrink", Config{Overflow: PolicyShrink, Width: 0, MinShrink: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustResolver(t, tt.cfg)
			res, err := r.Layout(identical(2, 0, 1), r.NewLane(3))
			if err != nil {
				t.Fatalf("Layout error: %v", err)
			}
			if res.Converged {
				t.Fatal("Converged = true for a zero-width lane")
			}
			if res.Warning == nil || res.Warning.Policy != PolicyShrink {
				t.Fatalf("Warning = %v, want shrink warning", res.Warning)
			}
			if !strings.Contains(res.Warning.Error(), "Shrinking stopped") {
				t.Errorf("warning = %q", res.Warning.Error())
			}
			for i, p := range res.Positions {
				if p != 3 {
					t.Errorf("position %d = %g, want clipped to 3", i, p)
				}
			}
			if res.Iterations > DefaultMaxIterations {
				t.Errorf("Iterations = %d exceeds cap", res.Iterations)
			}
		})
	}

	r := mustResolver(t, Config{Overflow: PolicyShrink, Width: 0, MaxIterations: 10})
	res, _ := r.Layout(identical(2, 0, 1), r.NewLane(0))
	if res.Iterations != 10 {
		t.Errorf("Iterations = %d, want 10", res.Iterations)
	}
}

func TestLayoutShrinkCutoffDefaultsFarFromOrigin(t *testing.T) {
	r := mustResolver(t, Config{Overflow: PolicyShrink, Width: 0})
	lane := r.NewLane(3)
	lane.Display = Affine{Scale: 100, Offset: 200}

	res, err := r.Layout(identical(20, 0, 5), lane)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if res.Converged {
		t.Fatal("Converged = true for a zero-width lane")
	}
	if res.Warning == nil || res.Warning.Policy != PolicyShrink {
		t.Fatalf("Warning = %v, want shrink warning", res.Warning)
	}
	if res.Iterations > DefaultMaxIterations {
		t.Errorf("Iterations = %d exceeds cap", res.Iterations)
	}
	assertWithin(t, res.Positions, 3, 3)
}

func TestLayoutRandomStaysInBounds(t *testing.T) {
	r := mustResolver(t, Config{Overflow: PolicyRandom, Width: 0.2, Seed: 7})
	markers := identical(100, 0, 1)
	res, err := r.Layout(markers, r.NewLane(0))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	assertWithin(t, res.Positions, -0.1, 0.1)

	base, err := Solve(0, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	for i, p := range res.Positions {
		if !res.Overflowed[i] && p != base[i] {
			t.Errorf("in-bound marker %d moved from %g to %g", i, base[i], p)
		}
	}
	if res.Warning == nil || res.Warning.Policy != PolicyRandom {
		t.Errorf("Warning = %v, want random warning", res.Warning)
	}

	again, err := r.Layout(markers, r.NewLane(0))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	for i := range res.Positions {
		if res.Positions[i] != again.Positions[i] {
			t.Fatalf("random layout not reproducible at %d: %g vs %g", i, res.Positions[i], again.Positions[i])
		}
	}
}

func TestLayoutLogScaleBounds(t *testing.T) {
	lane := Lane{Center: 10, HalfWidth: 0.5, Scale: Log10{}}
	lo, hi := lane.Bounds()
	if math.Abs(lo-math.Pow(10, 0.5)) > eps || math.Abs(hi-math.Pow(10, 1.5)) > eps {
		t.Fatalf("Bounds = [%g, %g], want [%g, %g]", lo, hi, math.Pow(10, 0.5), math.Pow(10, 1.5))
	}

	r := mustResolver(t, Config{Overflow: PolicyGutters})
	lane.Display = Log10{}
	res, err := r.Layout(identical(50, 0, 0.2), lane)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	assertWithin(t, res.Positions, lo, hi)
}

func TestLayoutDisplayTransform(t *testing.T) {
	r := mustResolver(t, Config{Width: 1})
	lane := r.NewLane(2)
	lane.Display = Affine{Scale: 100}

	// Radii are pixels: two touching circles of radius 10 sit 0.2 data units apart.
	res, err := r.Layout(identical(2, 0, 10), lane)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if res.Positions[0] != 2 {
		t.Errorf("first marker = %g, want 2", res.Positions[0])
	}
	if math.Abs(res.Positions[1]-1.8) > eps {
		t.Errorf("second marker = %g, want 1.8", res.Positions[1])
	}
}

func TestLayoutRejectsInvalidInput(t *testing.T) {
	r := mustResolver(t, Config{})
	tests := []struct {
		name    string
		markers []Marker
		lane    Lane
		code    apperrors.Code
	}{
		{"nan value", []Marker{{math.NaN(), 1}}, Lane{HalfWidth: 1}, apperrors.ErrCodeInvalidMarker},
		{"negative radius", []Marker{{0, -1}}, Lane{HalfWidth: 1}, apperrors.ErrCodeInvalidMarker},
		{"infinite center", nil, Lane{Center: math.Inf(1), HalfWidth: 1}, apperrors.ErrCodeInvalidMarker},
		{"negative half width", nil, Lane{HalfWidth: -1}, apperrors.ErrCodeInvalidMarker},
		{"center outside log domain", nil, Lane{Center: -1, HalfWidth: 1, Scale: Log10{}}, apperrors.ErrCodeInvalidScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Layout(tt.markers, tt.lane)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.Is(err, tt.code) {
				t.Errorf("code = %q, want %q", apperrors.GetCode(err), tt.code)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"gutters", PolicyGutters, true},
		{"SHRINK", PolicyShrink, true},
		{" random ", PolicyRandom, true},
		{"", "", false},
		{"clip", "", false},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParsePolicy(%q) error = %v, want ok %v", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseOrientation(t *testing.T) {
	for in, want := range map[string]Orientation{
		"x": OrientX, "v": OrientX, "vertical": OrientX,
		"y": OrientY, "H": OrientY, "horizontal": OrientY,
	} {
		got, err := ParseOrientation(in)
		if err != nil || got != want {
			t.Errorf("ParseOrientation(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseOrientation("diagonal"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("ParseOrientation(diagonal) error = %v, want ErrConfiguration", err)
	}
}
