package swarm

import (
	"errors"
	"strings"

	apperrors "github.com/matzehuels/beeswarm/pkg/errors"
)

// ErrConfiguration marks every error returned by [NewResolver]. Match it with
// errors.Is; the wrapping *apperrors.Error carries the specific code.
var ErrConfiguration = errors.New("invalid swarm configuration")

// Policy selects how a resolver handles markers that fall outside the lane.
type Policy string

const (
	PolicyGutters Policy = "gutters"
	PolicyShrink  Policy = "shrink"
	PolicyRandom  Policy = "random"
)

// Policies lists the valid overflow policies in display order.
var Policies = []Policy{PolicyGutters, PolicyShrink, PolicyRandom}

// ParsePolicy validates s against the closed set of policies.
// Matching is case-insensitive; surrounding whitespace is ignored.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PolicyGutters, PolicyShrink, PolicyRandom:
		return p, nil
	}
	return "", apperrors.Wrap(apperrors.ErrCodeInvalidPolicy, ErrConfiguration,
		"overflow must be 'gutters', 'shrink', or 'random', got %q", s)
}

// Orientation names the categorical axis.
type Orientation string

const (
	// OrientX puts categories along x and values along y.
	OrientX Orientation = "x"
	// OrientY puts categories along y and values along x.
	OrientY Orientation = "y"
)

// ParseOrientation accepts "x"/"v"/"vertical" and "y"/"h"/"horizontal".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "v", "vertical":
		return OrientX, nil
	case "y", "h", "horizontal":
		return OrientY, nil
	}
	return "", apperrors.Wrap(apperrors.ErrCodeInvalidOrient, ErrConfiguration,
		"orient must be 'x' or 'y', got %q", s)
}
