package swarm

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// overlapTolerance is the relative slack allowed when testing two circles for
// overlap. Candidates touch their neighbor exactly, so the comparison must
// absorb the rounding of the square root that produced them.
const overlapTolerance = 1e-9

// Marker is one circle to place. Both fields are in display (pixel) units.
type Marker struct {
	// Value is the fixed coordinate along the value axis.
	Value float64
	// Radius is the circle radius including half the edge stroke. Must be >= 0.
	Radius float64
}

type placed struct {
	cat, value, radius float64
}

// Solve places markers around center along the categorical axis.
//
// The returned slice is index-aligned with markers. Markers are visited in
// ascending value order (stable for ties); each one takes the candidate
// position closest to center that clears every already placed marker it could
// touch. Candidates are the center itself and, for every such neighbor, the two
// positions where the circles would exactly touch.
//
// With fewer than two markers every position is center. Non-finite values
// and negative radii are rejected.
func Solve(center float64, markers []Marker) ([]float64, error) {
	out := make([]float64, len(markers))
	for i := range out {
		out[i] = center
	}
	for i, m := range markers {
		if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) || !(m.Radius >= 0) || math.IsInf(m.Radius, 0) {
			return nil, fmt.Errorf("invalid marker %d (value %g, radius %g)", i, m.Value, m.Radius)
		}
	}
	if len(markers) < 2 {
		return out, nil
	}

	order := make([]int, len(markers))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(markers[a].Value, markers[b].Value)
	})

	// reach[k] is the largest radius among sorted markers k..n-1.
	reach := make([]float64, len(order)+1)
	for k := len(order) - 1; k >= 0; k-- {
		reach[k] = max(reach[k+1], markers[order[k]].Radius)
	}

	var (
		active     []placed
		neighbors  []placed
		candidates []float64
	)
	for k, idx := range order {
		m := markers[idx]

		active = slices.DeleteFunc(active, func(p placed) bool {
			return m.Value-p.value >= p.radius+reach[k]
		})

		neighbors = neighbors[:0]
		for _, p := range active {
			if m.Value-p.value < m.Radius+p.radius {
				neighbors = append(neighbors, p)
			}
		}

		candidates = candidates[:0]
		cat := place(center, m, neighbors, candidates)
		out[idx] = cat
		active = append(active, placed{cat: cat, value: m.Value, radius: m.Radius})
	}
	return out, nil
}

// place returns the first candidate, ordered by distance from center, that
// clears all neighbors.
//
// When rounding rejects every candidate, which happens once radii are tiny
// next to the pixel coordinate of center, the nearer of the two outermost
// candidates is used. It clears every neighbor in exact arithmetic.
func place(center float64, m Marker, neighbors []placed, candidates []float64) float64 {
	if len(neighbors) == 0 {
		return center
	}

	candidates = append(candidates, center)
	left, right := center, center
	leftFirst := true
	for _, p := range neighbors {
		dv := m.Value - p.value
		sep := m.Radius + p.radius
		dc := math.Sqrt(max(sep*sep-dv*dv, 0))
		left = min(left, p.cat-dc)
		right = max(right, p.cat+dc)
		if leftFirst {
			candidates = append(candidates, p.cat-dc, p.cat+dc)
		} else {
			candidates = append(candidates, p.cat+dc, p.cat-dc)
		}
		leftFirst = !leftFirst
	}

	slices.SortStableFunc(candidates, func(a, b float64) int {
		return cmp.Compare(math.Abs(a-center), math.Abs(b-center))
	})

	for _, c := range candidates {
		if clears(c, m, neighbors) {
			return c
		}
	}
	if right-center < center-left {
		return right
	}
	return left
}

func clears(cat float64, m Marker, neighbors []placed) bool {
	for _, p := range neighbors {
		dc := p.cat - cat
		dv := p.value - m.Value
		sep := p.radius + m.Radius
		if dc*dc+dv*dv < sep*sep*(1-overlapTolerance) {
			return false
		}
	}
	return true
}
