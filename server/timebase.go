package rlcscope

import (
	"math"

	Rt "github.com/maroda/rlcscope/types"
)

const (
	DefaultSampleCount = 800
	DefaultFloorWindow = 20e-3 // seconds
	DefaultMinWindow   = 50e-6
	DefaultMaxWindow   = 5.0

	decayConstants = 5.0 // e^-5 is about 0.7%
	minPeriods     = 8.0
)

// PlanTimeBase picks a window that shows the decay and,
// when oscillating, at least minPeriods periods.
// The decay is measured at α unless opts.SlowRoot asks for
// the slow Overdamped mode.
func PlanTimeBase(r *Response, opts SolveOptions) Rt.TimeBase {
	opts = opts.withDefaults()
	tEnd := opts.FloorWindow

	rate := r.Class.Alpha
	if opts.SlowRoot {
		rate = r.DecayRate()
	}
	if rate > 0 {
		tEnd = math.Max(tEnd, decayConstants/rate)
	}
	if r.Class.Regime == Rt.Underdamped && r.Class.OmegaD > 0 {
		period := 2 * math.Pi / r.Class.OmegaD
		tEnd = math.Max(tEnd, minPeriods*period)
	}
	tEnd = Clamp(tEnd, opts.MinWindow, opts.MaxWindow)

	scale, label := TimeUnit(tEnd)
	return Rt.TimeBase{
		Duration:    tEnd,
		SampleCount: opts.SampleCount,
		UnitScale:   scale,
		UnitLabel:   label,
	}
}

// TimeUnit chooses the display unit for a window of tEnd seconds
func TimeUnit(tEnd float64) (float64, string) {
	switch {
	case tEnd < 2e-3:
		return 1e6, "µs"
	case tEnd < 2:
		return 1e3, "ms"
	default:
		return 1, "s"
	}
}
