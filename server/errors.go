package rlcscope

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for L<=0, C<=0, R<0 or any non-finite value.
	// The solver must never see such a value.
	ErrInvalidParameter = errors.New("invalid circuit parameter")

	// ErrUnknownSlider is returned when a session is asked about a slider it does not have.
	ErrUnknownSlider = errors.New("unknown slider")

	// ErrInvalidConfig is returned by config validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// ParameterError says which parameter was rejected and why.
type ParameterError struct {
	Name   string
	Value  float64
	Raw    string // input that never parsed, shown instead of Value
	Reason string
}

func (e *ParameterError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("%s=%q: %s", e.Name, e.Raw, e.Reason)
	}
	return fmt.Sprintf("%s=%g: %s", e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
