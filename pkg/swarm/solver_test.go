package swarm

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

const eps = 1e-6

func assertNoOverlap(t *testing.T, center float64, markers []Marker, cats []float64) {
	t.Helper()
	for i := range markers {
		for j := i + 1; j < len(markers); j++ {
			dc := cats[i] - cats[j]
			dv := markers[i].Value - markers[j].Value
			dist := math.Hypot(dc, dv)
			sep := markers[i].Radius + markers[j].Radius
			if dist < sep-eps {
				t.Fatalf("markers %d and %d overlap: distance %g < %g (center %g)", i, j, dist, sep, center)
			}
		}
	}
}

func TestSolveEmptyAndSingle(t *testing.T) {
	got, err := Solve(3, nil)
	if err != nil {
		t.Fatalf("Solve(nil) error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Solve(nil) = %v, want empty", got)
	}

	got, err = Solve(3, []Marker{{Value: 10, Radius: 4}})
	if err != nil {
		t.Fatalf("Solve(single) error: %v", err)
	}
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("Solve(single) = %v, want [3]", got)
	}
}

func TestSolveIdenticalValuesStackOutward(t *testing.T) {
	markers := []Marker{{0, 1}, {0, 1}, {0, 1}}
	got, err := Solve(0, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	want := []float64{0, -2, 2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("Solve = %v, want %v", got, want)
		}
	}
	assertNoOverlap(t, 0, markers, got)
	for _, c := range got {
		if math.Abs(c) > 2+eps {
			t.Errorf("position %g exceeds half width 2", c)
		}
	}
}

func TestSolveStackAlternatesSides(t *testing.T) {
	markers := make([]Marker, 7)
	for i := range markers {
		markers[i] = Marker{Value: 5, Radius: 0.5}
	}
	got, err := Solve(10, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	want := []float64{10, 9, 11, 8, 12, 7, 13}
	for i := range want {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("Solve = %v, want %v", got, want)
		}
	}
}

func TestSolveSeparatedValuesStayOnCenter(t *testing.T) {
	markers := []Marker{{0, 1}, {2, 1}, {4, 1}, {10, 3}}
	got, err := Solve(7, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	for i, c := range got {
		if c != 7 {
			t.Errorf("marker %d moved to %g, want center 7", i, c)
		}
	}
}

func TestSolvePartialOverlapUsesTriangleOffset(t *testing.T) {
	// Value distance 1.2, radii sum 2: offset sqrt(4 - 1.44) = 1.6.
	markers := []Marker{{0, 1}, {1.2, 1}}
	got, err := Solve(0, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if got[0] != 0 {
		t.Errorf("first marker = %g, want 0", got[0])
	}
	if math.Abs(math.Abs(got[1])-1.6) > eps {
		t.Errorf("second marker = %g, want ±1.6", got[1])
	}
	assertNoOverlap(t, 0, markers, got)
}

func TestSolveNoOverlapRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 20 {
		n := 5 + rng.IntN(150)
		markers := make([]Marker, n)
		for i := range markers {
			markers[i] = Marker{
				Value:  rng.NormFloat64() * 20,
				Radius: 0.5 + rng.Float64()*3,
			}
		}
		got, err := Solve(100, markers)
		if err != nil {
			t.Fatalf("trial %d: Solve error: %v", trial, err)
		}
		if len(got) != n {
			t.Fatalf("trial %d: got %d positions, want %d", trial, len(got), n)
		}
		assertNoOverlap(t, 100, markers, got)
	}
}

func TestSolvePreservesInputOrder(t *testing.T) {
	markers := []Marker{{3, 1}, {0.5, 1}, {1, 1}, {2.5, 1}, {0, 1}, {1.5, 1}}
	got, err := Solve(0, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	// Reversing the input must reverse the output: values are distinct so
	// the processing order does not depend on input order.
	rev := slices.Clone(markers)
	slices.Reverse(rev)
	gotRev, err := Solve(0, rev)
	if err != nil {
		t.Fatalf("Solve(reversed) error: %v", err)
	}
	slices.Reverse(gotRev)
	for i := range got {
		if math.Abs(got[i]-gotRev[i]) > eps {
			t.Fatalf("order not preserved: %v vs %v", got, gotRev)
		}
	}
}

func TestSolveZeroRadius(t *testing.T) {
	markers := []Marker{{0, 0}, {0, 0}, {0, 0}}
	got, err := Solve(1, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	for i, c := range got {
		if c != 1 {
			t.Errorf("zero-radius marker %d moved to %g", i, c)
		}
	}
}

func TestSolveMixedRadii(t *testing.T) {
	markers := []Marker{{0, 5}, {1, 0.5}, {2, 0.5}, {3, 5}, {30, 0.5}, {31, 0.5}}
	got, err := Solve(0, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	assertNoOverlap(t, 0, markers, got)
}

func TestSolveTinyRadiiFarFromOrigin(t *testing.T) {
	// At this scale the touching candidates round onto their neighbors.
	markers := make([]Marker, 20)
	for i := range markers {
		markers[i] = Marker{Value: 0, Radius: 1.8e-5}
	}
	got, err := Solve(500, markers)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if got[0] != 500 {
		t.Errorf("first marker = %g, want center", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i] == 500 {
			t.Errorf("marker %d stayed on center", i)
		}
		if math.Abs(got[i]-500) > 2*float64(len(got))*markers[i].Radius {
			t.Errorf("marker %d = %g, too far from center", i, got[i])
		}
	}
}

func TestSolveRejectsInvalidMarkers(t *testing.T) {
	tests := []struct {
		name string
		m    Marker
	}{
		{"nan value", Marker{Value: math.NaN(), Radius: 1}},
		{"infinite value", Marker{Value: math.Inf(-1), Radius: 1}},
		{"negative radius", Marker{Value: 0, Radius: -1}},
		{"nan radius", Marker{Value: 0, Radius: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Solve(0, []Marker{{Value: 0, Radius: 1}, tt.m}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func BenchmarkSolve(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	markers := make([]Marker, 500)
	for i := range markers {
		markers[i] = Marker{Value: rng.NormFloat64() * 50, Radius: 3}
	}
	b.ResetTimer()
	for range b.N {
		if _, err := Solve(0, markers); err != nil {
			b.Fatal(err)
		}
	}
}
