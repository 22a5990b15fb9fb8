package swarm

import "math"

// Transform is a monotonic coordinate mapping and its inverse.
type Transform interface {
	Forward(v float64) float64
	Inverse(v float64) float64
}

// Identity leaves coordinates unchanged.
type Identity struct{}

func (Identity) Forward(v float64) float64 { return v }
func (Identity) Inverse(v float64) float64 { return v }

// Affine maps v to v*Scale + Offset. Scale must be non-zero.
type Affine struct {
	Scale  float64
	Offset float64
}

func (a Affine) Forward(v float64) float64 { return v*a.Scale + a.Offset }
func (a Affine) Inverse(v float64) float64 { return (v - a.Offset) / a.Scale }

// Log10 is the base-10 logarithmic axis scale.
type Log10 struct{}

func (Log10) Forward(v float64) float64 { return math.Log10(v) }
func (Log10) Inverse(v float64) float64 { return math.Pow(10, v) }

// Compose applies first, then second.
func Compose(first, second Transform) Transform {
	return chain{first: orIdentity(first), second: orIdentity(second)}
}

type chain struct{ first, second Transform }

func (c chain) Forward(v float64) float64 { return c.second.Forward(c.first.Forward(v)) }
func (c chain) Inverse(v float64) float64 { return c.first.Inverse(c.second.Inverse(v)) }

// Funcs adapts a pair of plain functions to a Transform.
type Funcs struct {
	Fwd func(float64) float64
	Inv func(float64) float64
}

func (f Funcs) Forward(v float64) float64 { return f.Fwd(v) }
func (f Funcs) Inverse(v float64) float64 { return f.Inv(v) }

func orIdentity(t Transform) Transform {
	if t == nil {
		return Identity{}
	}
	return t
}
