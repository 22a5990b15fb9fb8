package swarm_test

import (
	"fmt"

	"github.com/matzehuels/beeswarm/pkg/swarm"
)

func ExampleSolve() {
	// Three identical values stack outward from the lane center.
	markers := []swarm.Marker{{Value: 0, Radius: 1}, {Value: 0, Radius: 1}, {Value: 0, Radius: 1}}
	positions, _ := swarm.Solve(0, markers)
	fmt.Println(positions)
	// Output:
	// [0 -2 2]
}

func ExampleResolver_Layout_gutters() {
	cfg := swarm.DefaultConfig()
	cfg.Width = 2
	r, _ := swarm.NewResolver(cfg)

	markers := make([]swarm.Marker, 5)
	for i := range markers {
		markers[i] = swarm.Marker{Value: 0, Radius: 1}
	}
	res, _ := r.Layout(markers, r.NewLane(0))
	fmt.Println(res.Positions)
	fmt.Println(res.Warning)
	// Output:
	// [0 -1 1 -1 1]
	// 80.0% of the points cannot be placed as swarm; you may want to decrease the size of the markers, use stripplot, or set overflow='shrink'.
}

func ExampleResolver_Layout_shrink() {
	cfg := swarm.DefaultConfig()
	cfg.Width = 2
	cfg.Overflow = swarm.PolicyShrink
	r, _ := swarm.NewResolver(cfg)

	markers := make([]swarm.Marker, 5)
	for i := range markers {
		markers[i] = swarm.Marker{Value: 0, Radius: 1}
	}
	res, _ := r.Layout(markers, r.NewLane(0))
	fmt.Printf("converged=%v iterations=%d shrink=%.4f overflow=%g\n",
		res.Converged, res.Iterations, res.Shrink, res.Overflow)
	// Output:
	// converged=true iterations=15 shrink=0.2288 overflow=0
}
