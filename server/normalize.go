package rlcscope

import (
	"math"

	Rt "github.com/maroda/rlcscope/types"
)

const (
	milli = 1e-3
	micro = 1e-6
)

// Normalize converts slider units (Ω, mH, µF, V) into SI and validates the result.
func Normalize(sv Rt.SliderValues) (Rt.CircuitParameters, error) {
	p := Rt.CircuitParameters{
		R: sv.R,
		L: sv.L * milli,
		C: sv.C * micro,
		E: sv.E,
	}
	if err := Validate(p); err != nil {
		return Rt.CircuitParameters{}, err
	}
	return p, nil
}

// Validate enforces the solver precondition: L>0, C>0, R>=0, everything finite.
func Validate(p Rt.CircuitParameters) error {
	checks := []struct {
		name string
		val  float64
	}{
		{"R", p.R},
		{"L", p.L},
		{"C", p.C},
		{"E", p.E},
	}
	for _, c := range checks {
		if math.IsNaN(c.val) || math.IsInf(c.val, 0) {
			return &ParameterError{Name: c.name, Value: c.val, Reason: "not a finite number"}
		}
	}

	switch {
	case p.R < 0:
		return &ParameterError{Name: "R", Value: p.R, Reason: "resistance must not be negative"}
	case p.L <= 0:
		return &ParameterError{Name: "L", Value: p.L, Reason: "inductance must be positive"}
	case p.C <= 0:
		return &ParameterError{Name: "C", Value: p.C, Reason: "capacitance must be positive"}
	}

	return nil
}
