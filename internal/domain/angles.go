package domain

import "math"

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// DegMinToDecimal combines whole degrees and minutes into decimal degrees.
// The sign of the degrees carries over to the minutes; values between -1
// and 0 degrees are written with zero degrees and negative minutes.
func DegMinToDecimal(degrees, minutes float64) float64 {
	if degrees < 0 {
		return degrees - math.Abs(minutes)/60.0
	}
	return degrees + minutes/60.0
}

// DecimalToDegMin splits decimal degrees into whole degrees and minutes,
// following the same sign convention as DegMinToDecimal.
func DecimalToDegMin(decimal float64) (int, float64) {
	deg := math.Trunc(decimal)
	minutes := (decimal - deg) * 60.0
	if deg != 0 {
		minutes = math.Abs(minutes)
	}
	return int(deg), minutes
}

// LatitudeToColatitude converts a latitude in degrees to colatitude.
func LatitudeToColatitude(lat float64) float64 {
	return 90.0 - lat
}

// normalizeLon360 maps arbitrary degree longitudes into the [0, 360) range.
func normalizeLon360(lon float64) float64 {
	lon = math.Mod(lon, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon
}
