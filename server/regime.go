package rlcscope

import (
	"math"

	Rt "github.com/maroda/rlcscope/types"
)

// DefaultTolerance is the relative band |α-ω0| < ε·ω0 that counts as Critical.
const DefaultTolerance = 1e-3

// Classify computes α, ω0 and the regime.
// p must already be validated (L>0, C>0).
func Classify(p Rt.CircuitParameters, eps float64) Rt.RegimeClassification {
	alpha := p.R / (2 * p.L)
	omega0 := 1 / math.Sqrt(p.L*p.C)

	cls := Rt.RegimeClassification{
		Alpha:  alpha,
		Omega0: omega0,
	}

	switch {
	case math.Abs(alpha-omega0) < eps*omega0:
		cls.Regime = Rt.Critical
	case alpha > omega0:
		cls.Regime = Rt.Overdamped
	default:
		cls.Regime = Rt.Underdamped
		cls.OmegaD = math.Sqrt(omega0*omega0 - alpha*alpha)
	}

	return cls
}

// SolveCoefficients fits v(t) to v(0)=v0, v'(0)=dv0 for the classified regime.
func SolveCoefficients(cls Rt.RegimeClassification, v0, dv0 float64) Rt.SolutionCoefficients {
	alpha := cls.Alpha

	switch cls.Regime {
	case Rt.Critical:
		// v = (A1 + A2 t) e^(-αt)
		a1 := v0
		return Rt.SolutionCoefficients{A1: a1, A2: dv0 + alpha*a1}

	case Rt.Overdamped:
		// v = A1 e^(s1 t) + A2 e^(s2 t), s1 > s2
		w2 := cls.Omega0 * cls.Omega0
		disc := math.Sqrt(alpha*alpha - w2)
		s2 := -alpha - disc
		// s1*s2 = ω0², avoids cancelling -α+disc when α >> ω0
		s1 := w2 / s2
		a1 := (dv0 - v0*s2) / (s1 - s2)
		return Rt.SolutionCoefficients{A1: a1, A2: v0 - a1, S1: s1, S2: s2}

	default:
		// v = e^(-αt) (A1 cos ωd t + A2 sin ωd t)
		a1 := v0
		return Rt.SolutionCoefficients{A1: a1, A2: (dv0 + alpha*a1) / cls.OmegaD}
	}
}
