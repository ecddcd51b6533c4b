package domain

import "math"

// DerivedScalars are the non-linear field elements. For a main field D and I
// are in degrees and H and F in nT; for secular variation D and I are in
// arc-minutes/yr and H and F in nT/yr.
type DerivedScalars struct {
	Declination float64 `json:"declination"`
	Inclination float64 `json:"inclination"`
	Horizontal  float64 `json:"horizontal"`
	Total       float64 `json:"total"`
}

// Derive computes D, I, H and F from north/east/down components.
func Derive(v XYZ) DerivedScalars {
	h := math.Sqrt(v.X*v.X + v.Y*v.Y)
	f := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	return DerivedScalars{
		Declination: Rad2Deg(math.Atan2(v.Y, v.X)),
		Inclination: Rad2Deg(math.Atan2(v.Z, h)),
		Horizontal:  h,
		Total:       f,
	}
}

// DeriveRates linearises D, I, H and F about the field main and returns
// their rates for the component rates rate:
//
//	dH = (X dX + Y dY) / H
//	dF = (X dX + Y dY + Z dZ) / F
//	dD = (X dY - Y dX) / H²
//	dI = (H dZ - Z dH) / F²
//
// dD and dI are returned in arc-minutes/yr. Where H (or F) is zero the
// corresponding rates are undefined and reported as zero.
func DeriveRates(main, rate XYZ) DerivedScalars {
	h2 := main.X*main.X + main.Y*main.Y
	f2 := h2 + main.Z*main.Z
	h := math.Sqrt(h2)
	f := math.Sqrt(f2)

	var out DerivedScalars
	if h > 0 {
		out.Horizontal = (main.X*rate.X + main.Y*rate.Y) / h
		out.Declination = Rad2Deg((main.X*rate.Y-main.Y*rate.X)/h2) * 60
	}
	if f > 0 {
		out.Total = (main.X*rate.X + main.Y*rate.Y + main.Z*rate.Z) / f
		out.Inclination = Rad2Deg((h*rate.Z-main.Z*out.Horizontal)/f2) * 60
	}
	return out
}
