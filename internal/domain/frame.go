package domain

import "math"

// Rotation is the angle Δ between the geodetic and geocentric verticals of a
// point, kept as (sinΔ, cosΔ). One value is computed per location and applied
// to every field vector evaluated there.
type Rotation struct {
	Sin float64 `json:"sin"`
	Cos float64 `json:"cos"`
}

// IdentityRotation leaves vectors unchanged (geocentric queries).
var IdentityRotation = Rotation{Sin: 0, Cos: 1}

// Apply rotates a geocentric north/east/down vector into the geodetic frame:
//
//	X' = X cosΔ + Z sinΔ
//	Z' = Z cosΔ - X sinΔ
func (r Rotation) Apply(v XYZ) XYZ {
	return XYZ{
		X: v.X*r.Cos + v.Z*r.Sin,
		Y: v.Y,
		Z: v.Z*r.Cos - v.X*r.Sin,
	}
}

// GeocentricPosition is the result of reducing a geodetic position to the
// geocentric sphere.
type GeocentricPosition struct {
	RadiusKm      float64
	ColatitudeDeg float64
	Rotation      Rotation
}

// GeodeticToGeocentric converts a height above the WGS-84 ellipsoid (km) and a
// geodetic colatitude (degrees) to geocentric radius and colatitude, plus the
// rotation between the two verticals.
func GeodeticToGeocentric(altitudeKm, geodeticColatDeg float64) (GeocentricPosition, error) {
	if err := checkColatitude(geodeticColatDeg); err != nil {
		return GeocentricPosition{}, err
	}
	if math.IsNaN(altitudeKm) || math.IsInf(altitudeKm, 0) {
		return GeocentricPosition{}, &DomainError{Param: "altitude", Value: altitudeKm, Reason: "must be finite"}
	}

	const (
		a2 = WGS84SemiMajorKm * WGS84SemiMajorKm
		b2 = WGS84SemiMinorKm * WGS84SemiMinorKm
		a4 = a2 * a2
		b4 = b2 * b2
	)

	stgd, ctgd := math.Sincos(Deg2Rad(geodeticColatDeg))
	stgd = math.Abs(stgd)
	c2 := ctgd * ctgd
	s2 := 1 - c2

	// Radius of curvature term of the ellipsoid at this latitude.
	rho := math.Sqrt(a2*s2 + b2*c2)
	rad2 := altitudeKm*(altitudeKm+2*rho) + (a4*s2+b4*c2)/(rho*rho)
	if !(rad2 > 0) {
		return GeocentricPosition{}, &AltitudeRangeError{RadiusKm: 0, MinKm: CoreMantleBoundaryKm}
	}
	rad := math.Sqrt(rad2)
	if rad < CoreMantleBoundaryKm {
		return GeocentricPosition{}, &AltitudeRangeError{RadiusKm: rad, MinKm: CoreMantleBoundaryKm}
	}

	cd := (altitudeKm + rho) / rad
	sd := (a2 - b2) * ctgd * stgd / (rho * rad)

	// θc = θgd + Δ, through atan2 so the poles stay exact.
	sthc := stgd*cd + ctgd*sd
	cthc := ctgd*cd - stgd*sd

	return GeocentricPosition{
		RadiusKm:      rad,
		ColatitudeDeg: Rad2Deg(math.Atan2(sthc, cthc)),
		Rotation:      Rotation{Sin: sd, Cos: cd},
	}, nil
}

// GeocentricToGeodetic converts a geocentric radius (km) and colatitude
// (degrees) to height above the WGS-84 ellipsoid and geodetic colatitude,
// using Heikkinen's closed-form solution. Radii below the core-mantle
// boundary are rejected with an *AltitudeRangeError.
func GeocentricToGeodetic(radiusKm, geocentricColatDeg float64) (altitudeKm, geodeticColatDeg float64, err error) {
	if err := checkColatitude(geocentricColatDeg); err != nil {
		return 0, 0, err
	}
	if math.IsNaN(radiusKm) || radiusKm < CoreMantleBoundaryKm {
		return 0, 0, &AltitudeRangeError{RadiusKm: radiusKm, MinKm: CoreMantleBoundaryKm}
	}

	const (
		a   = WGS84SemiMajorKm
		b   = WGS84SemiMinorKm
		a2  = a * a
		b2  = b * b
		e2  = (a2 - b2) / a2
		ep2 = (a2 - b2) / b2
	)

	sinc, cosc := math.Sincos(Deg2Rad(geocentricColatDeg))
	p := radiusKm * math.Abs(sinc) // Distance from the rotation axis.
	z := radiusKm * cosc

	// On the axis the geodetic and geocentric latitudes coincide.
	if p < 1e-9 {
		if z >= 0 {
			return math.Abs(z) - b, 0, nil
		}
		return math.Abs(z) - b, 180, nil
	}

	z2 := z * z
	F := 54 * b2 * z2
	G := p*p + (1-e2)*z2 - e2*(a2-b2)
	c := e2 * e2 * F * p * p / (G * G * G)
	s := math.Cbrt(1 + c + math.Sqrt(c*c+2*c))
	k := s + 1 + 1/s
	P := F / (3 * k * k * G * G)
	Q := math.Sqrt(1 + 2*e2*e2*P)
	r0 := -(P*e2*p)/(1+Q) +
		math.Sqrt(a2/2*(1+1/Q)-P*(1-e2)*z2/(Q*(1+Q))-P*p*p/2)
	dp := p - e2*r0
	U := math.Sqrt(dp*dp + z2)
	V := math.Sqrt(dp*dp + (1-e2)*z2)
	z0 := b2 * z / (a * V)

	altitudeKm = U * (1 - b2/(a*V))
	lat := math.Atan2(z+ep2*z0, p)

	return altitudeKm, 90 - Rad2Deg(lat), nil
}
