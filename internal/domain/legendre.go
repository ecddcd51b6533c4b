package domain

import (
	"math"
	"sync"
)

// poleSinEpsilon is the |sin θ| below which P/sinθ is replaced by its limit.
const poleSinEpsilon = 1e-10

// LegendreBasis holds Schmidt quasi-normalised associated Legendre functions
// P[n][m] and their colatitude derivatives DP[n][m] = dP/dθ for 0 <= m <= n <= MaxDegree.
type LegendreBasis struct {
	MaxDegree     int
	ColatitudeDeg float64
	SinTheta      float64
	CosTheta      float64
	P             [][]float64
	DP            [][]float64
}

// recursionFactors are the θ-independent coefficients of the recursions for
// one maximum degree. Built once per degree and never modified afterwards.
type recursionFactors struct {
	// diag[m] = sqrt(2m+1) seeds P[m+1][m] and P[m+1][m+1] from P[m][m];
	// offDiag[m] = 1/sqrt(2m+2) completes the sectoral term.
	diag, offDiag []float64
	// a, b: P[n][m] = a[n][m] cosθ P[n-1][m] - b[n][m] P[n-2][m] for n >= m+2.
	a, b [][]float64
	// dA, dB: dP[n][m] = dA[n][m] P[n][m-1] + dB[n][m] P[n][m+1].
	dA, dB [][]float64
}

// factorCache maps a maximum degree to its *recursionFactors.
var factorCache sync.Map

func factorsFor(nmax int) *recursionFactors {
	if f, ok := factorCache.Load(nmax); ok {
		return f.(*recursionFactors)
	}
	f, _ := factorCache.LoadOrStore(nmax, buildFactors(nmax))
	return f.(*recursionFactors)
}

func buildFactors(nmax int) *recursionFactors {
	f := &recursionFactors{
		diag:    make([]float64, nmax+1),
		offDiag: make([]float64, nmax+1),
		a:       triangle(nmax),
		b:       triangle(nmax),
		dA:      triangle(nmax),
		dB:      triangle(nmax),
	}
	for m := range f.diag {
		f.diag[m] = math.Sqrt(float64(2*m + 1))
		f.offDiag[m] = 1 / math.Sqrt(float64(2*m+2))
	}

	for n := 1; n <= nmax; n++ {
		nf := float64(n)
		for m := 0; m <= n; m++ {
			mf := float64(m)
			if n >= m+2 {
				norm := math.Sqrt(nf*nf - mf*mf)
				f.a[n][m] = (2*nf - 1) / norm
				f.b[n][m] = math.Sqrt((nf-1)*(nf-1)-mf*mf) / norm
			}

			// The m = 0 and m = 1 rows absorb the extra sqrt(2) in the
			// Schmidt normalisation of the zonal terms.
			switch m {
			case 0:
				f.dB[n][m] = -math.Sqrt((nf*nf + nf) / 2)
			case 1:
				f.dA[n][m] = math.Sqrt(2*(nf*nf+nf)) / 2
				f.dB[n][m] = -math.Sqrt(nf*nf+nf-2) / 2
			default:
				f.dA[n][m] = 0.5 * math.Sqrt((nf+mf)*(nf-mf+1))
				f.dB[n][m] = -0.5 * math.Sqrt((nf+mf+1)*(nf-mf))
			}
		}
	}
	return f
}

func triangle(nmax int) [][]float64 {
	t := make([][]float64, nmax+1)
	for n := range t {
		t[n] = make([]float64, n+1)
	}
	return t
}

// BasisAt computes the Legendre basis for a colatitude in degrees, up to
// maxDegree. Every colatitude in [0, 180] is accepted, poles included.
func BasisAt(colatitudeDeg float64, maxDegree int) (*LegendreBasis, error) {
	if maxDegree < 0 {
		return nil, &DomainError{Param: "maximum degree", Value: float64(maxDegree), Reason: "must be >= 0"}
	}
	if err := checkColatitude(colatitudeDeg); err != nil {
		return nil, err
	}

	sinth, costh := math.Sincos(Deg2Rad(colatitudeDeg))
	// Sincos(π) is 1.2e-16, not 0; sinθ must stay non-negative on [0, π].
	sinth = math.Abs(sinth)

	basis := &LegendreBasis{
		MaxDegree:     maxDegree,
		ColatitudeDeg: colatitudeDeg,
		SinTheta:      sinth,
		CosTheta:      costh,
		P:             triangle(maxDegree),
		DP:            triangle(maxDegree),
	}
	basis.P[0][0] = 1
	if maxDegree == 0 {
		return basis, nil
	}

	f := factorsFor(maxDegree)
	P, DP := basis.P, basis.DP

	P[1][1] = sinth
	for m := 0; m < maxDegree; m++ {
		seed := f.diag[m] * P[m][m]
		P[m+1][m] = costh * seed
		if m > 0 {
			P[m+1][m+1] = sinth * seed * f.offDiag[m]
		}
		for n := m + 2; n <= maxDegree; n++ {
			P[n][m] = f.a[n][m]*costh*P[n-1][m] - f.b[n][m]*P[n-2][m]
		}
	}

	for n := 1; n <= maxDegree; n++ {
		for m := 0; m <= n; m++ {
			var d float64
			if m > 0 {
				d += f.dA[n][m] * P[n][m-1]
			}
			if m < n {
				d += f.dB[n][m] * P[n][m+1]
			}
			DP[n][m] = d
		}
	}

	return basis, nil
}

// POverSin returns P[n][m] / sinθ, the latitude factor of the B_phi term.
//
// For m >= 1, P[n][m] vanishes at the poles like sin^m θ, so the ratio has a
// finite limit. Within poleSinEpsilon of a pole the L'Hôpital form
// dP[n][m] / cosθ is used instead of dividing by a near-zero sine.
func (b *LegendreBasis) POverSin(n, m int) float64 {
	if m == 0 {
		return 0
	}
	if b.SinTheta >= poleSinEpsilon {
		return b.P[n][m] / b.SinTheta
	}
	return b.DP[n][m] / b.CosTheta
}

func checkColatitude(colatitudeDeg float64) error {
	if math.IsNaN(colatitudeDeg) || colatitudeDeg < 0 || colatitudeDeg > 180 {
		return &DomainError{Param: "colatitude", Value: colatitudeDeg, Reason: "must be within [0, 180] degrees"}
	}
	return nil
}
