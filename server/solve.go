package rlcscope

import (
	"fmt"

	Rt "github.com/maroda/rlcscope/types"
)

// SolveOptions are the solver tunables, normally filled from the config file
type SolveOptions struct {
	Tolerance   float64              `json:"tolerance"`    // relative Critical band
	SampleCount int                  `json:"samples"`      // intervals per window
	FloorWindow float64              `json:"floor_window"` // seconds
	MinWindow   float64              `json:"min_window"`   // seconds
	MaxWindow   float64              `json:"max_window"`   // seconds
	Series      []string             `json:"series"`       // keys into Series
	SlowRoot    bool                 `json:"slow_root"`    // Overdamped window follows |s1| instead of α
	Initial     Rt.InitialConditions `json:"-"`
}

// DefaultSolveOptions returns the stock solver settings
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{
		Tolerance:   DefaultTolerance,
		SampleCount: DefaultSampleCount,
		FloorWindow: DefaultFloorWindow,
		MinWindow:   DefaultMinWindow,
		MaxWindow:   DefaultMaxWindow,
		Series:      append([]string(nil), DefaultSeries...),
		Initial:     Rt.DefaultInitial,
	}
}

// withDefaults fills any unset tunable with its stock value.
// Initial is taken as given, a zero value is a discharged capacitor.
func (o SolveOptions) withDefaults() SolveOptions {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.SampleCount < 1 {
		o.SampleCount = DefaultSampleCount
	}
	if o.FloorWindow <= 0 {
		o.FloorWindow = DefaultFloorWindow
	}
	if o.MinWindow <= 0 {
		o.MinWindow = DefaultMinWindow
	}
	if o.MaxWindow <= o.MinWindow {
		o.MaxWindow = DefaultMaxWindow
	}
	if len(o.Series) == 0 {
		o.Series = DefaultSeries
	}
	return o
}

// Result is the immutable snapshot of one recomputation
type Result struct {
	Params         Rt.CircuitParameters    `json:"params"`
	Classification Rt.RegimeClassification `json:"classification"`
	Coefficients   Rt.SolutionCoefficients `json:"coefficients"`
	TimeBase       Rt.TimeBase             `json:"timebase"`
	Series         []Rt.RenderSeries       `json:"series"`
	Status         string                  `json:"status"`
	response       *Response
}

// Response gives access to the closed form behind the sampled series
func (res *Result) Response() *Response {
	return res.response
}

// Solve runs the whole pipeline for one parameter set:
// classify, fit coefficients, plan the window, sample, estimate ranges.
// Invalid input returns an error and no result.
func Solve(p Rt.CircuitParameters, opts SolveOptions) (*Result, error) {
	opts = opts.withDefaults()
	resp, err := NewResponse(p, opts.Initial, opts.Tolerance)
	if err != nil {
		return nil, err
	}

	tb := PlanTimeBase(resp, opts)

	waves, err := SampleSeries(resp, tb, opts.Series)
	if err != nil {
		return nil, fmt.Errorf("sampling failed: %w", err)
	}

	xMax := tb.Duration * tb.UnitScale
	series := make([]Rt.RenderSeries, len(waves))
	for i, w := range waves {
		yr := EstimateRange(w.Points)
		series[i] = Rt.RenderSeries{
			Name:      w.Name,
			Color:     w.Color,
			Points:    w.Points,
			XAxisMax:  xMax,
			XAxisUnit: tb.UnitLabel,
			YAxisMin:  yr.Min,
			YAxisMax:  yr.Max,
		}
	}

	return &Result{
		Params:         p,
		Classification: resp.Class,
		Coefficients:   resp.Coeff,
		TimeBase:       tb,
		Series:         series,
		Status:         StatusLine(resp.Class, p),
		response:       resp,
	}, nil
}

// StatusLine summarises the regime and the slider values in slider units
func StatusLine(cls Rt.RegimeClassification, p Rt.CircuitParameters) string {
	return fmt.Sprintf("Status: %s (R=%.1fΩ, L=%.1fmH, C=%.1fµF, E=%.1fV)",
		cls.Regime, p.R, p.L/milli, p.C/micro, p.E)
}
