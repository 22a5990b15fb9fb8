// Package swarm computes beeswarm positions for circular markers in a lane.
//
// # Overview
//
// A beeswarm places every marker at its exact value-axis coordinate and moves
// it along the categorical axis just far enough that no two circles overlap.
// This package contains the two pieces of that computation:
//
//   - [Solve] is the geometric solver. Given markers in a linear pixel-like
//     space and a lane center, it returns categorical coordinates such that no
//     two circles overlap, preferring positions closest to the center.
//   - [Resolver] wraps the solver with an overflow policy. When the swarm is
//     wider than the lane it clips markers to the gutters, shrinks the radii
//     and retries, or scatters the overflowing markers randomly inside the lane.
//
// # Coordinate Spaces
//
// Three spaces are involved for the categorical axis:
//
//   - data space: the caller's logical coordinates (lane centers live here)
//   - scaled space: data after the axis scale (linear, log); lane widths are
//     measured here so a lane has the same visual width on any scale
//   - display space: pixels; the solver works here so distances are Euclidean
//
// A [Lane] carries the two [Transform] values that connect them. Nil
// transforms mean identity.
//
// # Overflow Policies
//
//	gutters  clip overflowing markers to the nearest lane edge
//	shrink   clip, then scale every radius by the shrink factor and retry
//	random   replace overflowing markers by uniform draws inside the lane
//
// Warnings are reported through [Result.Warning] and never as an error: the
// layout always completes with a best-effort result.
//
// # Usage
//
//	r, err := swarm.NewResolver(swarm.Config{
//	    Width:         0.8,
//	    WarnThreshold: 0.05,
//	    Overflow:      swarm.PolicyShrink,
//	    ShrinkFactor:  0.9,
//	})
//	if err != nil {
//	    return err // invalid policy or parameters
//	}
//	res, err := r.Layout(markers, r.NewLane(center))
//
// A [Resolver] is immutable after construction and safe for concurrent use
// across lanes.
package swarm
