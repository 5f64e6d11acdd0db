package rlcscope

import (
	"math"

	Rt "github.com/maroda/rlcscope/types"
	"gonum.org/v1/gonum/floats"
)

const rangePad = 0.1

// EstimateRange pads the min/max of the values by 10% of the larger magnitude
// (at least 1 V worth), rounds outward to 0.1 and never returns a zero-height range.
func EstimateRange(points []Rt.Point) Rt.AxisRange {
	if len(points) == 0 {
		return Rt.AxisRange{Min: -1, Max: 1}
	}

	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Y
	}
	lo, hi := floats.Min(ys), floats.Max(ys)

	pad := math.Max(1, math.Max(math.Abs(lo), math.Abs(hi))) * rangePad
	lo = math.Floor((lo-pad)*10) / 10
	hi = math.Ceil((hi+pad)*10) / 10

	if lo == hi {
		lo--
		hi++
	}
	return Rt.AxisRange{Min: lo, Max: hi}
}
