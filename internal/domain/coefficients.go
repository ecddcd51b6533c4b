package domain

import (
	"fmt"
	"math"

	"go.ngs.io/geomag-api/internal/interp"
)

// GaussCoefficientVector holds Schmidt quasi-normalised Gauss coefficients in
// canonical packed order: degree-major, order-minor, g before h, with h_n^0
// omitted. For N = 2 the layout is
//
//	g10 g11 h11 g20 g21 h21 g22 h22
type GaussCoefficientVector []float64

// PackedLength returns the number of packed coefficients for degrees 1..n.
func PackedLength(maxDegree int) int {
	if maxDegree <= 0 {
		return 0
	}
	return maxDegree * (maxDegree + 2)
}

// PackedIndex returns the position of g_n^m in a packed vector; h_n^m (m > 0)
// follows at PackedIndex(n, m)+1.
func PackedIndex(n, m int) int {
	if m == 0 {
		return n*n - 1
	}
	return n*n + 2*m - 2
}

// DegreeOf returns the maximum degree of a packed vector of the given length,
// or -1 if the length does not correspond to a complete set of degrees.
func DegreeOf(length int) int {
	n := int(math.Round(math.Sqrt(float64(length+1)))) - 1
	if PackedLength(n) != length {
		return -1
	}
	return n
}

// EffectiveDegree returns the highest degree of a packed vector that carries
// a non-zero coefficient, or 0 when all are zero or the length is not a
// complete set of degrees.
func EffectiveDegree(c []float64) int {
	for n := DegreeOf(len(c)); n >= 1; n-- {
		for k := PackedIndex(n, 0); k < PackedLength(n); k++ {
			if c[k] != 0 {
				return n
			}
		}
	}
	return 0
}

// Degree returns the maximum degree held by the vector.
func (v GaussCoefficientVector) Degree() int {
	return DegreeOf(len(v))
}

// G returns g_n^m, or 0 when the degree is not present.
func (v GaussCoefficientVector) G(n, m int) float64 {
	k := PackedIndex(n, m)
	if n < 1 || m < 0 || m > n || k >= len(v) {
		return 0
	}
	return v[k]
}

// H returns h_n^m, or 0 for m == 0 or when the degree is not present.
func (v GaussCoefficientVector) H(n, m int) float64 {
	if m == 0 {
		return 0
	}
	k := PackedIndex(n, m) + 1
	if n < 1 || m < 0 || m > n || k >= len(v) {
		return 0
	}
	return v[k]
}

// Sub returns v - other component-wise. The shorter operand is padded with
// zeros so the result has the length of the longer one.
func (v GaussCoefficientVector) Sub(other GaussCoefficientVector) GaussCoefficientVector {
	n := max(len(v), len(other))
	out := make(GaussCoefficientVector, n)
	for k := range out {
		var a, b float64
		if k < len(v) {
			a = v[k]
		}
		if k < len(other) {
			b = other[k]
		}
		out[k] = a - b
	}
	return out
}

// CoefficientTable is the parsed, immutable representation of one model:
// the epochs, the coefficient vector tabulated at each epoch and the maximum
// degree of each vector. Older epochs may carry fewer degrees than newer ones.
type CoefficientTable struct {
	name      string
	epochs    []float64
	coeffs    []GaussCoefficientVector
	maxDegree []int
	nmax      int
}

// NewCoefficientTable validates and copies its inputs into a table.
// Epochs must be strictly increasing and len(coeffs[i]) must equal
// PackedLength(maxDegree[i]) for every epoch.
func NewCoefficientTable(name string, epochs []float64, coeffs [][]float64, maxDegree []int) (*CoefficientTable, error) {
	malformed := func(format string, args ...any) error {
		return &MalformedModelError{Model: name, Reason: fmt.Sprintf(format, args...)}
	}

	if err := interp.Series(epochs).Validate(); err != nil {
		return nil, &MalformedModelError{Model: name, Reason: "invalid epochs", Err: err}
	}
	if len(coeffs) != len(epochs) {
		return nil, malformed("%d coefficient sets for %d epochs", len(coeffs), len(epochs))
	}
	if len(maxDegree) != len(epochs) {
		return nil, malformed("%d maximum degrees for %d epochs", len(maxDegree), len(epochs))
	}

	t := &CoefficientTable{
		name:      name,
		epochs:    append([]float64(nil), epochs...),
		coeffs:    make([]GaussCoefficientVector, len(coeffs)),
		maxDegree: append([]int(nil), maxDegree...),
	}

	for i, c := range coeffs {
		if maxDegree[i] < 0 {
			return nil, malformed("negative maximum degree %d at epoch %g", maxDegree[i], epochs[i])
		}
		if want := PackedLength(maxDegree[i]); len(c) != want {
			return nil, malformed("epoch %g: %d coefficients, degree %d needs %d", epochs[i], len(c), maxDegree[i], want)
		}
		for k, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, malformed("epoch %g: coefficient %d is not finite", epochs[i], k)
			}
		}
		t.coeffs[i] = append(GaussCoefficientVector(nil), c...)
		t.nmax = max(t.nmax, maxDegree[i])
	}

	return t, nil
}

// Name returns the model name (e.g., "IGRF14").
func (t *CoefficientTable) Name() string { return t.name }

// EpochCount returns the number of tabulated epochs.
func (t *CoefficientTable) EpochCount() int { return len(t.epochs) }

// Epochs returns a copy of the tabulated epochs.
func (t *CoefficientTable) Epochs() []float64 {
	return append([]float64(nil), t.epochs...)
}

// FirstEpoch returns the earliest tabulated epoch.
func (t *CoefficientTable) FirstEpoch() float64 { return t.epochs[0] }

// LastEpoch returns the latest tabulated epoch.
func (t *CoefficientTable) LastEpoch() float64 { return t.epochs[len(t.epochs)-1] }

// MaxDegree returns the largest degree across all epochs; every interpolated
// vector has this dimensionality.
func (t *CoefficientTable) MaxDegree() int { return t.nmax }

// MaxDegreeAt returns the maximum degree tabulated at epoch i.
func (t *CoefficientTable) MaxDegreeAt(i int) int { return t.maxDegree[i] }

// Coefficients returns a copy of the vector tabulated at epoch i.
func (t *CoefficientTable) Coefficients(i int) GaussCoefficientVector {
	return append(GaussCoefficientVector(nil), t.coeffs[i]...)
}

// InRange reports whether date lies within the tabulated epochs. Dates
// outside the range are still evaluated, by linear extrapolation.
func (t *CoefficientTable) InRange(date float64) bool {
	return interp.Series(t.epochs).Contains(date)
}
