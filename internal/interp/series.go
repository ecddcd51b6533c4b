// Package interp provides the interpolation primitives shared by the field
// engine (piecewise-linear epoch knots) and the geoid store (bilinear grids).
package interp

import (
	"fmt"
	"math"
	"sort"
)

// Series is an ordered set of interpolation knots (e.g., model epochs in
// decimal years). Knots must be strictly increasing.
type Series []float64

// Validate checks that the knots are finite and strictly increasing.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("series must have at least one knot")
	}
	for i, x := range s {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("knot %d is not finite", i)
		}
		if i > 0 && x <= s[i-1] {
			return fmt.Errorf("knots must be strictly increasing (knot %d: %g <= %g)", i, x, s[i-1])
		}
	}
	return nil
}

// Contains reports whether x lies within [s[0], s[len-1]].
func (s Series) Contains(x float64) bool {
	if len(s) == 0 {
		return false
	}
	return x >= s[0] && x <= s[len(s)-1]
}

// Locate returns the index i of the segment [s[i], s[i+1]] used to
// interpolate at x and the fractional position w of x within it.
//
// Inside the knot range 0 <= w <= 1. Outside it the nearest edge segment is
// used, so w < 0 below the first knot and w > 1 above the last one, which
// turns Lerp into a linear extrapolation with the edge slope. A series with
// a single knot always yields (0, 0).
func (s Series) Locate(x float64) (int, float64) {
	n := len(s)
	if n < 2 {
		return 0, 0
	}

	// First knot strictly greater than x, then step back to the segment start.
	i := sort.Search(n, func(k int) bool { return s[k] > x }) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}

	w := (x - s[i]) / (s[i+1] - s[i])
	return i, w
}

// Lerp blends a and b with weight w as (1-w)a + wb.
//
// The two-product form returns a exactly for w == 0 and b exactly for
// w == 1, so interpolating at a knot reproduces the stored value bit for bit.
func Lerp(a, b, w float64) float64 {
	return (1-w)*a + w*b
}
