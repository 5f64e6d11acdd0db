package rlcscope

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	Rp "github.com/maroda/rlcscope/plugin"
	Rt "github.com/maroda/rlcscope/types"
)

// Slider is one user control, Value is always inside [Min, Max]
type Slider struct {
	Name    string  `json:"name"`
	Unit    string  `json:"unit"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Value   float64 `json:"value"`
	Default float64 `json:"default"`
}

// Circuit is an interactive session: the slider positions,
// the solver settings, and where recomputations are archived.
// Every viewer (terminal, websocket connection) gets its own Circuit.
type Circuit struct {
	MU      sync.RWMutex
	Sliders []*Slider        // display order
	Options SolveOptions     // solver tunables
	Output  Rp.OutputAdapter // snapshot archive, may be nil
}

// NewCircuit builds a session from slider configs
func NewCircuit(sc []SliderConfig, opts SolveOptions) *Circuit {
	return &Circuit{
		Sliders: newSliders(sc),
		Options: opts,
	}
}

// NewCircuitFromConfig uses the sliders and solver settings of a loaded config
func NewCircuitFromConfig(cf *ConfigFile) *Circuit {
	return NewCircuit(cf.Sliders, cf.Solver)
}

func newSliders(sc []SliderConfig) []*Slider {
	sliders := make([]*Slider, 0, len(sc))
	for _, s := range sc {
		sliders = append(sliders, &Slider{
			Name:    s.Name,
			Unit:    s.Unit,
			Min:     s.Min,
			Max:     s.Max,
			Step:    s.Step,
			Value:   Clamp(s.Value, s.Min, s.Max),
			Default: Clamp(s.Value, s.Min, s.Max),
		})
	}
	return sliders
}

// sliderLocked expects the caller to hold MU
func (c *Circuit) sliderLocked(name string) (*Slider, error) {
	for _, s := range c.Sliders {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSlider, name)
}

// Set moves a slider, clamping into its range.
// The value actually applied is returned.
func (c *Circuit) Set(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParameterError{Name: name, Value: v, Reason: "not a finite number"}
	}

	c.MU.Lock()
	defer c.MU.Unlock()

	s, err := c.sliderLocked(name)
	if err != nil {
		return 0, err
	}
	s.Value = Clamp(v, s.Min, s.Max)
	return s.Value, nil
}

// Nudge moves a slider by a number of steps, negative is down
func (c *Circuit) Nudge(name string, steps int) (float64, error) {
	c.MU.Lock()
	defer c.MU.Unlock()

	s, err := c.sliderLocked(name)
	if err != nil {
		return 0, err
	}
	// rounding keeps repeated small steps from drifting
	v := FloatPrecise(s.Value+float64(steps)*s.Step, 6)
	s.Value = Clamp(v, s.Min, s.Max)
	return s.Value, nil
}

// Reset puts every slider back on its default
func (c *Circuit) Reset() {
	c.MU.Lock()
	defer c.MU.Unlock()
	for _, s := range c.Sliders {
		s.Value = s.Default
	}
}

// Values reads the current positions in slider units
func (c *Circuit) Values() Rt.SliderValues {
	c.MU.RLock()
	defer c.MU.RUnlock()

	var sv Rt.SliderValues
	for _, s := range c.Sliders {
		switch s.Name {
		case "R":
			sv.R = s.Value
		case "L":
			sv.L = s.Value
		case "C":
			sv.C = s.Value
		case "E":
			sv.E = s.Value
		}
	}
	return sv
}

// SliderList is a copy of the sliders for display
func (c *Circuit) SliderList() []Slider {
	c.MU.RLock()
	defer c.MU.RUnlock()

	list := make([]Slider, len(c.Sliders))
	for i, s := range c.Sliders {
		list[i] = *s
	}
	return list
}

// Solve recomputes the response for the current slider positions.
// A successful result is archived with the given source tag,
// an archive failure is logged and does not fail the solve.
func (c *Circuit) Solve(source string) (*Result, error) {
	return c.SolveValues(c.Values(), source)
}

// SolveValues solves an arbitrary set of slider-unit values with this
// session's settings and archive. The sliders themselves are not moved.
func (c *Circuit) SolveValues(sv Rt.SliderValues, source string) (*Result, error) {
	p, err := Normalize(sv)
	if err != nil {
		return nil, err
	}

	c.MU.RLock()
	opts := c.Options
	out := c.Output
	c.MU.RUnlock()

	res, err := Solve(p, opts)
	if err != nil {
		return nil, err
	}

	if out != nil {
		snap := &Rt.Snapshot{
			Timestamp: time.Now(),
			Source:    source,
			Params:    p,
			Regime:    res.Classification.Regime,
			Status:    res.Status,
		}
		if err := out.WriteSnapshot(snap); err != nil {
			slog.Warn("Could not archive snapshot",
				slog.String("output", out.Type()),
				slog.Any("Error", err))
		}
	}

	return res, nil
}

// Clone gives an independent session with the same sliders, settings and output
func (c *Circuit) Clone() *Circuit {
	c.MU.RLock()
	defer c.MU.RUnlock()

	sliders := make([]*Slider, len(c.Sliders))
	for i, s := range c.Sliders {
		cp := *s
		sliders[i] = &cp
	}
	opts := c.Options
	opts.Series = append([]string(nil), c.Options.Series...)

	return &Circuit{
		Sliders: sliders,
		Options: opts,
		Output:  c.Output,
	}
}

// Apply swaps in a reloaded config.
// Slider positions survive where the slider still exists, clamped to the new range.
func (c *Circuit) Apply(cf *ConfigFile) {
	sliders := newSliders(cf.Sliders)

	c.MU.Lock()
	defer c.MU.Unlock()

	for _, s := range sliders {
		if old, err := c.sliderLocked(s.Name); err == nil {
			s.Value = Clamp(old.Value, s.Min, s.Max)
		}
	}
	c.Sliders = sliders
	c.Options = cf.Solver
}
