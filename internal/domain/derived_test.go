package domain

import (
	"math"
	"testing"
)

func TestDerive(t *testing.T) {
	got := Derive(XYZ{X: 3, Y: 4, Z: 12})

	if math.Abs(got.Horizontal-5) > 1e-12 {
		t.Errorf("H: expected 5, got %.12f", got.Horizontal)
	}
	if math.Abs(got.Total-13) > 1e-12 {
		t.Errorf("F: expected 13, got %.12f", got.Total)
	}
	if want := Rad2Deg(math.Atan2(4, 3)); math.Abs(got.Declination-want) > 1e-12 {
		t.Errorf("D: expected %.10f, got %.10f", want, got.Declination)
	}
	if want := Rad2Deg(math.Atan2(12, 5)); math.Abs(got.Inclination-want) > 1e-12 {
		t.Errorf("I: expected %.10f, got %.10f", want, got.Inclination)
	}

	// Westward and upward field: negative D and I.
	got = Derive(XYZ{X: 1000, Y: -1000, Z: -1000})
	if math.Abs(got.Declination+45) > 1e-12 || got.Inclination >= 0 {
		t.Errorf("unexpected signs: %+v", got)
	}
}

// DeriveRates must agree with differentiating Derive along main + t*rate.
func TestDeriveRates_MatchesFiniteDifference(t *testing.T) {
	cases := []struct {
		main, rate XYZ
	}{
		{XYZ{X: 20000, Y: -3000, Z: 45000}, XYZ{X: 12, Y: -40, Z: 60}},
		{XYZ{X: -5000, Y: 12000, Z: -30000}, XYZ{X: -8, Y: 25, Z: 90}},
		{XYZ{X: 30000, Y: 0, Z: 0}, XYZ{X: 0, Y: 15, Z: -20}},
	}
	const eps = 1e-4
	for _, c := range cases {
		got := DeriveRates(c.main, c.rate)

		at := func(t float64) DerivedScalars {
			return Derive(XYZ{
				X: c.main.X + t*c.rate.X,
				Y: c.main.Y + t*c.rate.Y,
				Z: c.main.Z + t*c.rate.Z,
			})
		}
		lo, hi := at(-eps), at(eps)
		want := DerivedScalars{
			Declination: (hi.Declination - lo.Declination) / (2 * eps) * 60,
			Inclination: (hi.Inclination - lo.Inclination) / (2 * eps) * 60,
			Horizontal:  (hi.Horizontal - lo.Horizontal) / (2 * eps),
			Total:       (hi.Total - lo.Total) / (2 * eps),
		}

		if math.Abs(got.Declination-want.Declination) > 1e-5 ||
			math.Abs(got.Inclination-want.Inclination) > 1e-5 ||
			math.Abs(got.Horizontal-want.Horizontal) > 1e-5 ||
			math.Abs(got.Total-want.Total) > 1e-5 {
			t.Errorf("main=%+v rate=%+v: expected %+v, got %+v", c.main, c.rate, want, got)
		}
	}
}

func TestDeriveRates_Degenerate(t *testing.T) {
	// Vertical field: H = 0, so dD and dH are undefined and reported as 0.
	got := DeriveRates(XYZ{Z: 50000}, XYZ{X: 10, Y: 10, Z: 30})
	if got.Declination != 0 || got.Horizontal != 0 {
		t.Errorf("expected zero dD and dH, got %+v", got)
	}
	if math.Abs(got.Total-30) > 1e-12 {
		t.Errorf("dF: expected 30, got %.12f", got.Total)
	}

	if got := DeriveRates(XYZ{}, XYZ{X: 1, Y: 2, Z: 3}); got != (DerivedScalars{}) {
		t.Errorf("zero field: expected all-zero rates, got %+v", got)
	}
}
