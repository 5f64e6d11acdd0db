package types

/*

	These are the "immutable" core types of rlcscope,
	provided for cross-package use (e.g. Plugins) and testing.

	Struct constructors are housed in their own packages.
	The only methods here are the Regime text helpers,
	so that every package agrees on how a regime is spelled.

*/

import (
	"fmt"
	"time"
)

// CircuitParameters are the series RLC values in SI units.
// L and C must be > 0, R must be >= 0.
type CircuitParameters struct {
	R float64 `json:"r"` // resistance, ohm
	L float64 `json:"l"` // inductance, henry
	C float64 `json:"c"` // capacitance, farad
	E float64 `json:"e"` // source voltage, volt
}

// SliderValues are the raw values as the user sees them on the sliders.
type SliderValues struct {
	R float64 `json:"r"` // ohm
	L float64 `json:"l"` // millihenry
	C float64 `json:"c"` // microfarad
	E float64 `json:"e"` // volt
}

// InitialConditions of the capacitor voltage and loop current at t=0
type InitialConditions struct {
	UC0 float64 `json:"uc0"`
	I0  float64 `json:"i0"`
}

// DefaultInitial is the charged capacitor with no current flowing.
var DefaultInitial = InitialConditions{UC0: 10, I0: 0}

// Regime is the damping classification of the circuit.
type Regime int

const (
	Overdamped  Regime = iota // two real roots, no oscillation
	Critical                  // repeated root, fastest non-oscillating decay
	Underdamped               // complex roots, decaying oscillation
)

func (r Regime) String() string {
	switch r {
	case Overdamped:
		return "Overdamped"
	case Critical:
		return "Critical"
	case Underdamped:
		return "Underdamped"
	default:
		return "Unknown"
	}
}

// MarshalText gives the lower case name used on the wire
func (r Regime) MarshalText() ([]byte, error) {
	switch r {
	case Overdamped:
		return []byte("overdamped"), nil
	case Critical:
		return []byte("critical"), nil
	case Underdamped:
		return []byte("underdamped"), nil
	}
	return nil, fmt.Errorf("unknown regime: %d", int(r))
}

func (r *Regime) UnmarshalText(b []byte) error {
	switch string(b) {
	case "overdamped":
		*r = Overdamped
	case "critical":
		*r = Critical
	case "underdamped":
		*r = Underdamped
	default:
		return fmt.Errorf("unknown regime: %q", string(b))
	}
	return nil
}

// RegimeClassification carries the regime and the scalars it was derived from.
// OmegaD is only set for Underdamped.
type RegimeClassification struct {
	Regime Regime  `json:"regime"`
	Alpha  float64 `json:"alpha"`  // damping coefficient R/2L
	Omega0 float64 `json:"omega0"` // natural angular frequency 1/sqrt(LC)
	OmegaD float64 `json:"omegaD"` // damped angular frequency
}

// SolutionCoefficients are the free constants of the homogeneous solution.
// S1 and S2 are the characteristic roots, Overdamped only.
type SolutionCoefficients struct {
	A1 float64 `json:"a1"`
	A2 float64 `json:"a2"`
	S1 float64 `json:"s1,omitempty"`
	S2 float64 `json:"s2,omitempty"`
}

// TimeBase describes the display window
type TimeBase struct {
	Duration    float64 `json:"duration"`    // seconds
	SampleCount int     `json:"sampleCount"` // intervals, there are SampleCount+1 points
	UnitScale   float64 `json:"unitScale"`   // seconds * UnitScale = displayed time
	UnitLabel   string  `json:"unitLabel"`   // "µs", "ms" or "s"
}

// Point is one sample, X is already in the TimeBase unit
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WaveformSeries is one tracked quantity over the whole window
type WaveformSeries struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// AxisRange is a padded display range
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RenderSeries is everything a renderer needs to draw one line.
type RenderSeries struct {
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Points    []Point `json:"points"`
	XAxisMax  float64 `json:"xAxisMax"`
	XAxisUnit string  `json:"xAxisUnit"`
	YAxisMin  float64 `json:"yAxisMin"`
	YAxisMax  float64 `json:"yAxisMax"`
}

// Snapshot is the archived record of one recomputation.
// Timestamp is a Primary Key together with Source.
type Snapshot struct {
	Timestamp time.Time         `json:"timestamp"`
	Source    string            `json:"source"` // "tui", "ws", "api"
	Params    CircuitParameters `json:"params"`
	Regime    Regime            `json:"regime"`
	Status    string            `json:"status"`
}
