package domain

// Numeric constants of the IGRF model and of the WGS-84 reference ellipsoid.
const (
	// ReferenceRadiusKm is the magnetic reference spherical radius a.
	ReferenceRadiusKm = 6371.2

	// CoreMantleBoundaryKm is the smallest geocentric radius for which the
	// potential field representation is valid.
	CoreMantleBoundaryKm = 3485.0

	// WGS84SemiMajorKm is the equatorial radius of the WGS-84 ellipsoid.
	WGS84SemiMajorKm = 6378.137

	// WGS84Flattening is the flattening of the WGS-84 ellipsoid.
	WGS84Flattening = 1 / 298.257223563

	// WGS84SemiMinorKm is the polar radius b = a(1-f).
	WGS84SemiMinorKm = WGS84SemiMajorKm * (1 - WGS84Flattening)

	// SVWindowYears is the width of the windows over which secular
	// variation is constant.
	SVWindowYears = 5.0
)
