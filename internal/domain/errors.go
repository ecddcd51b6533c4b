package domain

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is by callers that only need the category.
var (
	ErrMalformedModel = errors.New("malformed model")
	ErrDomain         = errors.New("argument outside domain")
	ErrAltitudeRange  = errors.New("altitude outside valid range")
)

// MalformedModelError reports a coefficient table that cannot be used.
type MalformedModelError struct {
	Model  string // Model or file name, if known.
	Line   int    // 1-based source line, 0 when not tied to a line.
	Reason string
	Err    error // Underlying parse error, if any.
}

func (e *MalformedModelError) Error() string {
	msg := "malformed model"
	if e.Model != "" {
		msg += " " + e.Model
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrMalformedModel) succeed.
func (e *MalformedModelError) Is(target error) bool { return target == ErrMalformedModel }

func (e *MalformedModelError) Unwrap() error { return e.Err }

// DomainError reports an argument outside the domain of a computation,
// e.g. a negative maximum degree or a colatitude outside [0, 180].
type DomainError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("invalid %s %g: %s", e.Param, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrDomain) succeed.
func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// AltitudeRangeError reports a geocentric radius below the core-mantle boundary.
type AltitudeRangeError struct {
	RadiusKm float64
	MinKm    float64
}

func (e *AltitudeRangeError) Error() string {
	return fmt.Sprintf("geocentric radius %.3f km is below the core-mantle boundary (%.0f km)", e.RadiusKm, e.MinKm)
}

// Is makes errors.Is(err, ErrAltitudeRange) succeed.
func (e *AltitudeRangeError) Is(target error) bool { return target == ErrAltitudeRange }
