package rlcscope

import (
	"math"

	Rt "github.com/maroda/rlcscope/types"
)

// Response is the closed-form transient of one circuit.
// It holds no mutable state, Eval can be called in any order.
type Response struct {
	Params  Rt.CircuitParameters
	Initial Rt.InitialConditions
	Class   Rt.RegimeClassification
	Coeff   Rt.SolutionCoefficients
}

// Sample is every circuit quantity at one instant.
type Sample struct {
	T  float64 // seconds
	UC float64 // capacitor voltage
	I  float64 // loop current
	UR float64 // resistor voltage
	UL float64 // inductor voltage
}

// NewResponse validates p and derives the regime and coefficients.
func NewResponse(p Rt.CircuitParameters, ic Rt.InitialConditions, eps float64) (*Response, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	cls := Classify(p, eps)
	v0 := ic.UC0 - p.E
	dv0 := ic.I0 / p.C

	r := &Response{
		Params:  p,
		Initial: ic,
		Class:   cls,
		Coeff:   SolveCoefficients(cls, v0, dv0),
	}
	if err := r.checkRange(); err != nil {
		return nil, err
	}
	return r, nil
}

// checkRange refuses parameters that are finite themselves
// but overflow α, ω0, the coefficients or the starting state.
func (r *Response) checkRange() error {
	start := r.Eval(0)
	derived := []struct {
		name string
		val  float64
	}{
		{"alpha", r.Class.Alpha},
		{"omega0", r.Class.Omega0},
		{"omegaD", r.Class.OmegaD},
		{"A1", r.Coeff.A1},
		{"A2", r.Coeff.A2},
		{"s1", r.Coeff.S1},
		{"s2", r.Coeff.S2},
		{"uC(0)", start.UC},
		{"i(0)", start.I},
		{"uL(0)", start.UL},
	}
	for _, d := range derived {
		if math.IsNaN(d.val) || math.IsInf(d.val, 0) {
			return &ParameterError{Name: d.name, Value: d.val, Reason: "out of representable range"}
		}
	}
	return nil
}

// Deviation returns v(t) = uC(t) - E and its analytic derivative.
func (r *Response) Deviation(t float64) (v, dv float64) {
	alpha := r.Class.Alpha
	a1, a2 := r.Coeff.A1, r.Coeff.A2

	switch r.Class.Regime {
	case Rt.Critical:
		decay := math.Exp(-alpha * t)
		lin := a1 + a2*t
		return lin * decay, (a2 - alpha*lin) * decay

	case Rt.Overdamped:
		e1 := math.Exp(r.Coeff.S1 * t)
		e2 := math.Exp(r.Coeff.S2 * t)
		return a1*e1 + a2*e2, a1*r.Coeff.S1*e1 + a2*r.Coeff.S2*e2

	default:
		wd := r.Class.OmegaD
		decay := math.Exp(-alpha * t)
		cos, sin := math.Cos(wd*t), math.Sin(wd*t)
		v = decay * (a1*cos + a2*sin)
		dv = decay * ((wd*a2-alpha*a1)*cos - (alpha*a2+wd*a1)*sin)
		return v, dv
	}
}

// Eval applies the element laws to v(t):
// uC = E + v, i = C v', uR = R i, uL = E - uR - uC (KVL).
func (r *Response) Eval(t float64) Sample {
	v, dv := r.Deviation(t)
	p := r.Params

	uc := p.E + v
	i := p.C * dv
	ur := p.R * i

	return Sample{
		T:  t,
		UC: uc,
		I:  i,
		UR: ur,
		UL: p.E - ur - uc,
	}
}

// DecayRate is the rate of the slowest decaying mode.
// For Overdamped that is |s1|, which is smaller than α.
func (r *Response) DecayRate() float64 {
	if r.Class.Regime == Rt.Overdamped {
		return -r.Coeff.S1
	}
	return r.Class.Alpha
}
