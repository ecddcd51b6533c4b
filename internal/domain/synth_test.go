package domain

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func randomVector(seed int64, degree int) GaussCoefficientVector {
	rng := rand.New(rand.NewSource(seed))
	v := make(GaussCoefficientVector, PackedLength(degree))
	for k := range v {
		// Roughly the IGRF spectrum: large dipole, decaying higher degrees.
		n := int(math.Sqrt(float64(k + 1))) // PackedIndex(n, 0) = n²-1
		v[k] = (rng.Float64()*2 - 1) * 30000 / math.Pow(4, float64(n-1))
	}
	return v
}

func TestSynthesize_AxialDipole(t *testing.T) {
	const g10 = -29404.8
	coeffs := GaussCoefficientVector{g10, 0, 0}

	for _, r := range []float64{ReferenceRadiusKm, 6500, 10000} {
		for _, colat := range []float64{0, 30, 90, 150, 180} {
			got, err := Synthesize(coeffs, r, colat, 45, 1)
			if err != nil {
				t.Fatalf("Synthesize: %v", err)
			}
			q := math.Pow(ReferenceRadiusKm/r, 3)
			th := Deg2Rad(colat)
			wantBr := 2 * q * g10 * math.Cos(th)
			wantBt := q * g10 * math.Abs(math.Sin(th))

			if math.Abs(got.Br-wantBr) > 1e-8 {
				t.Errorf("r=%g colat=%g: Br expected %.10f, got %.10f", r, colat, wantBr, got.Br)
			}
			if math.Abs(got.Btheta-wantBt) > 1e-8 {
				t.Errorf("r=%g colat=%g: Btheta expected %.10f, got %.10f", r, colat, wantBt, got.Btheta)
			}
			if got.Bphi != 0 {
				t.Errorf("r=%g colat=%g: Bphi expected 0, got %.10f", r, colat, got.Bphi)
			}
		}
	}
}

func TestSynthesize_EquatorialDipole(t *testing.T) {
	const g11, h11 = -1450.9, 4652.5
	coeffs := GaussCoefficientVector{0, g11, h11}
	const r = 7000.0
	q := math.Pow(ReferenceRadiusKm/r, 3)

	// The pole cases exercise the P/sinθ limit: Bphi keeps its
	// off-pole form g sinφ - h cosφ.
	for _, colat := range []float64{0, 20, 90, 170, 180} {
		for _, lon := range []float64{0, 37, 200} {
			got, err := Synthesize(coeffs, r, colat, lon, 1)
			if err != nil {
				t.Fatalf("Synthesize: %v", err)
			}
			sp, cp := math.Sincos(Deg2Rad(lon))
			st, ct := math.Sincos(Deg2Rad(colat))
			gh := g11*cp + h11*sp

			want := FieldVector{
				Br:     2 * q * gh * math.Abs(st),
				Btheta: -q * gh * ct,
				Bphi:   q * (g11*sp - h11*cp),
			}
			if math.Abs(got.Br-want.Br) > 1e-8 || math.Abs(got.Btheta-want.Btheta) > 1e-8 || math.Abs(got.Bphi-want.Bphi) > 1e-8 {
				t.Errorf("colat=%g lon=%g: expected %+v, got %+v", colat, lon, want, got)
			}
		}
	}
}

func TestSynthesize_LongitudeWrap(t *testing.T) {
	coeffs := randomVector(1, 13)
	base, err := Synthesize(coeffs, 6700, 63.4, -75, 13)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for _, lon := range []float64{285, 645, -435} {
		got, err := Synthesize(coeffs, 6700, 63.4, lon, 13)
		if err != nil {
			t.Fatalf("Synthesize(lon=%g): %v", lon, err)
		}
		if math.Abs(got.Br-base.Br) > 1e-9 || math.Abs(got.Btheta-base.Btheta) > 1e-9 || math.Abs(got.Bphi-base.Bphi) > 1e-9 {
			t.Errorf("lon=%g: expected %+v, got %+v", lon, base, got)
		}
	}
}

func TestSynthesize_FiniteAtPoles(t *testing.T) {
	coeffs := randomVector(2, 13)
	for _, colat := range []float64{0, 180} {
		for _, lon := range []float64{0, 90, 271.5} {
			got, err := Synthesize(coeffs, ReferenceRadiusKm, colat, lon, 13)
			if err != nil {
				t.Fatalf("Synthesize: %v", err)
			}
			for _, v := range []float64{got.Br, got.Btheta, got.Bphi} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("colat=%g lon=%g: non-finite field %+v", colat, lon, got)
				}
			}
		}
	}
}

func TestSynthesize_TruncatedDegree(t *testing.T) {
	coeffs := randomVector(3, 13)
	full, _ := Synthesize(coeffs[:PackedLength(1)], 6500, 40, 10, 1)
	got, err := Synthesize(coeffs, 6500, 40, 10, 1)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got != full {
		t.Errorf("degree-1 synthesis depends on higher coefficients: %+v vs %+v", got, full)
	}
}

func TestSynthesize_Errors(t *testing.T) {
	coeffs := randomVector(4, 2)
	tests := []struct {
		name   string
		r      float64
		colat  float64
		lon    float64
		degree int
	}{
		{"negative degree", 6500, 45, 0, -1},
		{"degree beyond vector", 6500, 45, 0, 3},
		{"zero radius", 0, 45, 0, 2},
		{"colatitude out of range", 6500, 181, 0, 2},
		{"NaN longitude", 6500, 45, math.NaN(), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Synthesize(coeffs, tt.r, tt.colat, tt.lon, tt.degree)
			if !errors.Is(err, ErrDomain) {
				t.Errorf("expected ErrDomain, got %v", err)
			}
		})
	}
}

func TestSynthesizeBatch_MatchesSynthesize(t *testing.T) {
	coeffs := randomVector(5, 13)
	var points []SynthesisPoint
	for _, colat := range []float64{0, 15, 15, 90, 180} {
		for _, lon := range []float64{-30, 0, 120} {
			points = append(points, SynthesisPoint{
				Coeffs:        coeffs,
				RadiusKm:      6600,
				ColatitudeDeg: colat,
				LongitudeDeg:  lon,
				MaxDegree:     13,
			})
		}
	}

	for _, workers := range []int{0, 1, 4} {
		got, err := SynthesizeBatch(context.Background(), points, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		for i, p := range points {
			want, _ := Synthesize(p.Coeffs, p.RadiusKm, p.ColatitudeDeg, p.LongitudeDeg, p.MaxDegree)
			if got[i] != want {
				t.Errorf("workers=%d point %d: expected %+v, got %+v", workers, i, want, got[i])
			}
		}
	}
}

func TestSynthesizeBatch_Error(t *testing.T) {
	coeffs := randomVector(6, 2)
	points := []SynthesisPoint{
		{Coeffs: coeffs, RadiusKm: 6500, ColatitudeDeg: 45, MaxDegree: 2},
		{Coeffs: coeffs, RadiusKm: 6500, ColatitudeDeg: 200, MaxDegree: 2},
	}
	_, err := SynthesizeBatch(context.Background(), points, 2)
	if !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain, got %v", err)
	}
}
