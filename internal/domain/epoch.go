package domain

import (
	"math"

	"go.ngs.io/geomag-api/internal/interp"
)

// CoefficientsAt returns the coefficient vector for a decimal-year date.
//
// Between two epochs the coefficients are interpolated linearly, component by
// component. Outside the tabulated range the nearest edge segment is
// extrapolated; this is not an error. Degrees missing at an epoch count as
// zero, so the result always has PackedLength(t.MaxDegree()) entries. At an
// exact epoch the stored vector is returned unchanged.
func (t *CoefficientTable) CoefficientsAt(date float64) GaussCoefficientVector {
	out := make(GaussCoefficientVector, PackedLength(t.nmax))

	if len(t.epochs) == 1 {
		copy(out, t.coeffs[0])
		return out
	}

	i, w := interp.Series(t.epochs).Locate(date)
	lo, hi := t.coeffs[i], t.coeffs[i+1]

	for k := range out {
		var a, b float64
		if k < len(lo) {
			a = lo[k]
		}
		if k < len(hi) {
			b = hi[k]
		}
		out[k] = interp.Lerp(a, b, w)
	}

	return out
}

// EpochStart returns the start of the five-year window containing date,
// aligned on the first tabulated epoch:
//
//	floor((date - epochs[0]) / 5) * 5 + epochs[0]
func (t *CoefficientTable) EpochStart(date float64) float64 {
	e0 := t.epochs[0]
	return math.Floor((date-e0)/SVWindowYears)*SVWindowYears + e0
}

// SVWindow holds the secular-variation coefficients for one date.
type SVWindow struct {
	// Start is the first year of the five-year window.
	Start float64
	// SV is the one-year forward difference at Start, in nT/yr.
	SV GaussCoefficientVector
	// MainAtStart is the main field at Start, the linearisation point for
	// the rates of D, I, H and F.
	MainAtStart GaussCoefficientVector
}

// SecularVariation returns the secular variation in force at date. It is
// constant within each five-year window, not a smooth derivative.
func (t *CoefficientTable) SecularVariation(date float64) SVWindow {
	start := t.EpochStart(date)
	main := t.CoefficientsAt(start)
	return SVWindow{
		Start:       start,
		SV:          t.CoefficientsAt(start + 1).Sub(main),
		MainAtStart: main,
	}
}
