package domain

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FieldVector is a magnetic field vector in nT in the geocentric spherical
// frame: Br radial (outward), Btheta along increasing colatitude (south),
// Bphi along increasing longitude (east).
type FieldVector struct {
	Br     float64 `json:"br"`
	Btheta float64 `json:"btheta"`
	Bphi   float64 `json:"bphi"`
}

// XYZ is a field vector in the local north/east/down convention.
type XYZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XYZ converts to north/east/down: (X, Y, Z) = (-Btheta, Bphi, -Br).
func (f FieldVector) XYZ() XYZ {
	return XYZ{X: -f.Btheta, Y: f.Bphi, Z: -f.Br}
}

// Synthesize evaluates the internal field of a coefficient vector at a
// geocentric point (radius in km, colatitude and longitude in degrees),
// summing degrees 1..maxDegree:
//
//	Br     = Σ (n+1) (a/r)^(n+2) (g cos mφ + h sin mφ) P
//	Btheta = -Σ (a/r)^(n+2) (g cos mφ + h sin mφ) dP/dθ
//	Bphi   = Σ (a/r)^(n+2) m (g sin mφ - h cos mφ) P / sinθ
//
// with a = ReferenceRadiusKm. The result depends only on the arguments.
func Synthesize(coeffs GaussCoefficientVector, radiusKm, colatitudeDeg, longitudeDeg float64, maxDegree int) (FieldVector, error) {
	if err := checkSynthesisInputs(coeffs, radiusKm, longitudeDeg, maxDegree); err != nil {
		return FieldVector{}, err
	}
	basis, err := BasisAt(colatitudeDeg, maxDegree)
	if err != nil {
		return FieldVector{}, err
	}
	return synthesizeWithBasis(coeffs, radiusKm, longitudeDeg, basis), nil
}

func checkSynthesisInputs(coeffs GaussCoefficientVector, radiusKm, longitudeDeg float64, maxDegree int) error {
	if maxDegree < 0 {
		return &DomainError{Param: "maximum degree", Value: float64(maxDegree), Reason: "must be >= 0"}
	}
	if len(coeffs) < PackedLength(maxDegree) {
		return &DomainError{
			Param:  "maximum degree",
			Value:  float64(maxDegree),
			Reason: fmt.Sprintf("coefficient vector only holds %d values", len(coeffs)),
		}
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return &DomainError{Param: "radius", Value: radiusKm, Reason: "must be a positive distance in km"}
	}
	return checkLongitude(longitudeDeg)
}

func checkLongitude(longitudeDeg float64) error {
	if math.IsNaN(longitudeDeg) || math.IsInf(longitudeDeg, 0) {
		return &DomainError{Param: "longitude", Value: longitudeDeg, Reason: "must be finite"}
	}
	return nil
}

// synthesizeWithBasis runs the sums over a precomputed basis. Callers
// guarantee basis.MaxDegree <= coeffs.Degree().
func synthesizeWithBasis(coeffs GaussCoefficientVector, radiusKm, longitudeDeg float64, basis *LegendreBasis) FieldVector {
	nmax := basis.MaxDegree
	phi := Deg2Rad(normalizeLon360(longitudeDeg))

	cosm := make([]float64, nmax+1)
	sinm := make([]float64, nmax+1)
	for m := 0; m <= nmax; m++ {
		sinm[m], cosm[m] = math.Sincos(float64(m) * phi)
	}

	ratio := ReferenceRadiusKm / radiusKm
	rn := ratio * ratio

	var br, bt, bp float64
	for n := 1; n <= nmax; n++ {
		rn *= ratio // (a/r)^(n+2)
		nf := float64(n)
		for m := 0; m <= n; m++ {
			k := PackedIndex(n, m)
			g := coeffs[k]
			var h float64
			if m > 0 {
				h = coeffs[k+1]
			}

			gh := g*cosm[m] + h*sinm[m]
			br += (nf + 1) * rn * gh * basis.P[n][m]
			bt -= rn * gh * basis.DP[n][m]
			if m > 0 {
				bp += rn * float64(m) * (g*sinm[m] - h*cosm[m]) * basis.POverSin(n, m)
			}
		}
	}

	return FieldVector{Br: br, Btheta: bt, Bphi: bp}
}

// SynthesisPoint is one independent Synthesize call in a batch.
type SynthesisPoint struct {
	Coeffs        GaussCoefficientVector
	RadiusKm      float64
	ColatitudeDeg float64
	LongitudeDeg  float64
	MaxDegree     int
}

// basisCache shares Legendre bases between points of one batch that have the
// same colatitude and degree.
type basisCache struct {
	m sync.Map // basisKey -> *LegendreBasis
}

type basisKey struct {
	colatitude float64
	degree     int
}

func (c *basisCache) get(colatitudeDeg float64, maxDegree int) (*LegendreBasis, error) {
	key := basisKey{colatitude: colatitudeDeg, degree: maxDegree}
	if b, ok := c.m.Load(key); ok {
		return b.(*LegendreBasis), nil
	}
	b, err := BasisAt(colatitudeDeg, maxDegree)
	if err != nil {
		return nil, err
	}
	actual, _ := c.m.LoadOrStore(key, b)
	return actual.(*LegendreBasis), nil
}

// SynthesizeBatch evaluates many points with up to workers goroutines
// (workers <= 0 means one per point). Each result equals the corresponding
// Synthesize call. The first failing point aborts the batch.
func SynthesizeBatch(ctx context.Context, points []SynthesisPoint, workers int) ([]FieldVector, error) {
	out := make([]FieldVector, len(points))
	cache := &basisCache{}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i := range points {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := points[i]
			if err := checkSynthesisInputs(p.Coeffs, p.RadiusKm, p.LongitudeDeg, p.MaxDegree); err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			basis, err := cache.get(p.ColatitudeDeg, p.MaxDegree)
			if err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			out[i] = synthesizeWithBasis(p.Coeffs, p.RadiusKm, p.LongitudeDeg, basis)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
