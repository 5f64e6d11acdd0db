package rlcscope

import (
	"fmt"

	Rt "github.com/maroda/rlcscope/types"
)

// SeriesDef names one quantity the sampler can emit
type SeriesDef struct {
	Name  string
	Color string
	Value func(s Sample) float64
}

// Series is the set of known quantities.
// uR and uL complete the loop around uC, i is the loop current.
var Series = map[string]SeriesDef{
	"uC": {Name: "uC(t)", Color: "#3498db", Value: func(s Sample) float64 { return s.UC }},
	"uR": {Name: "uR(t)", Color: "#e74c3c", Value: func(s Sample) float64 { return s.UR }},
	"uL": {Name: "uL(t)", Color: "#2ecc71", Value: func(s Sample) float64 { return s.UL }},
	"i":  {Name: "i(t)", Color: "#9b59b6", Value: func(s Sample) float64 { return s.I }},
}

// DefaultSeries are the three element voltages
var DefaultSeries = []string{"uC", "uR", "uL"}

// SeriesLookup returns the definition for a key such as "uC"
func SeriesLookup(key string) (SeriesDef, error) {
	def, ok := Series[key]
	if !ok {
		return SeriesDef{}, fmt.Errorf("unknown series: %s", key)
	}
	return def, nil
}

// SampleSeries evaluates the response at SampleCount+1 evenly spaced instants
// and returns one series per requested key, in the order requested.
func SampleSeries(r *Response, tb Rt.TimeBase, keys []string) ([]Rt.WaveformSeries, error) {
	defs := make([]SeriesDef, 0, len(keys))
	for _, k := range keys {
		def, err := SeriesLookup(k)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	n := tb.SampleCount
	if n < 1 {
		n = 1
	}
	dt := tb.Duration / float64(n)

	out := make([]Rt.WaveformSeries, len(defs))
	for j, def := range defs {
		out[j] = Rt.WaveformSeries{
			Name:   def.Name,
			Color:  def.Color,
			Points: make([]Rt.Point, n+1),
		}
	}

	for k := 0; k <= n; k++ {
		t := float64(k) * dt
		s := r.Eval(t)
		x := t * tb.UnitScale
		for j, def := range defs {
			out[j].Points[k] = Rt.Point{X: x, Y: def.Value(s)}
		}
	}

	return out, nil
}
