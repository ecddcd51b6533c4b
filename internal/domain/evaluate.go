package domain

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Frame selects how a Location's altitude and colatitude are interpreted and
// in which frame results are reported.
type Frame int

const (
	// Geodetic positions are heights above the WGS-84 ellipsoid and geodetic
	// colatitudes; results are rotated to the local geodetic vertical.
	Geodetic Frame = iota
	// Geocentric positions are radii from the Earth's centre and geocentric
	// colatitudes on a sphere.
	Geocentric
)

func (f Frame) String() string {
	switch f {
	case Geodetic:
		return "geodetic"
	case Geocentric:
		return "geocentric"
	default:
		return fmt.Sprintf("Frame(%d)", int(f))
	}
}

// ParseFrame parses "geodetic" or "geocentric" (case-insensitive).
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geodetic", "":
		return Geodetic, nil
	case "geocentric":
		return Geocentric, nil
	default:
		return 0, fmt.Errorf("unknown frame %q (expected geodetic or geocentric)", s)
	}
}

// Location is a query position.
type Location struct {
	Frame Frame
	// Altitude is the height above the ellipsoid in km for Geodetic, and
	// the radius from the Earth's centre in km for Geocentric.
	Altitude float64
	// ColatitudeDeg is 90 - latitude, in the frame's latitude convention.
	ColatitudeDeg float64
	LongitudeDeg  float64
}

// Resolve reduces the location to the geocentric sphere the synthesis runs
// on, returning the rotation needed to report results back in its frame.
func (l Location) Resolve() (GeocentricPosition, error) {
	switch l.Frame {
	case Geodetic:
		return GeodeticToGeocentric(l.Altitude, l.ColatitudeDeg)
	case Geocentric:
		if err := checkColatitude(l.ColatitudeDeg); err != nil {
			return GeocentricPosition{}, err
		}
		if math.IsNaN(l.Altitude) || l.Altitude < CoreMantleBoundaryKm {
			return GeocentricPosition{}, &AltitudeRangeError{RadiusKm: l.Altitude, MinKm: CoreMantleBoundaryKm}
		}
		return GeocentricPosition{
			RadiusKm:      l.Altitude,
			ColatitudeDeg: l.ColatitudeDeg,
			Rotation:      IdentityRotation,
		}, nil
	default:
		return GeocentricPosition{}, fmt.Errorf("unsupported frame %v", l.Frame)
	}
}

// Query is one (date, location) pair of a batch.
type Query struct {
	Date     float64
	Location Location
}

// Result is the full evaluation of one query.
type Result struct {
	Date         float64
	Position     GeocentricPosition
	Extrapolated bool // Date lies outside the model's tabulated epochs.
	EpochStart   float64

	// Raw geocentric spherical components.
	Main FieldVector
	SV   FieldVector

	// North/east/down components in the location's frame.
	MainXYZ XYZ
	SVXYZ   XYZ

	Scalars   DerivedScalars
	ScalarsSV DerivedScalars
}

// Evaluate computes the main field, its secular variation and the derived
// elements for one date and location. The stages run in order: resolve the
// location, interpolate coefficients, synthesise the main field, the SV field
// and the field at the start of the SV window, rotate all three with the same
// Rotation, then derive D, I, H, F and their rates.
func Evaluate(table *CoefficientTable, date float64, loc Location) (Result, error) {
	return evaluate(table, date, loc, BasisAt)
}

// evaluate is Evaluate with the Legendre basis supplied by basisAt, so a
// batch can share bases between queries at the same colatitude.
func evaluate(table *CoefficientTable, date float64, loc Location, basisAt func(float64, int) (*LegendreBasis, error)) (Result, error) {
	if table == nil {
		return Result{}, fmt.Errorf("nil coefficient table")
	}
	if math.IsNaN(date) || math.IsInf(date, 0) {
		return Result{}, &DomainError{Param: "date", Value: date, Reason: "must be a finite decimal year"}
	}
	if err := checkLongitude(loc.LongitudeDeg); err != nil {
		return Result{}, err
	}

	pos, err := loc.Resolve()
	if err != nil {
		return Result{}, err
	}

	nmax := table.MaxDegree()
	basis, err := basisAt(pos.ColatitudeDeg, nmax)
	if err != nil {
		return Result{}, err
	}

	coeffs := table.CoefficientsAt(date)
	window := table.SecularVariation(date)

	main := synthesizeWithBasis(coeffs, pos.RadiusKm, loc.LongitudeDeg, basis)
	sv := synthesizeWithBasis(window.SV, pos.RadiusKm, loc.LongitudeDeg, basis)
	atStart := synthesizeWithBasis(window.MainAtStart, pos.RadiusKm, loc.LongitudeDeg, basis)

	rot := pos.Rotation
	mainXYZ := rot.Apply(main.XYZ())
	svXYZ := rot.Apply(sv.XYZ())
	startXYZ := rot.Apply(atStart.XYZ())

	return Result{
		Date:         date,
		Position:     pos,
		Extrapolated: !table.InRange(date),
		EpochStart:   window.Start,
		Main:         main,
		SV:           sv,
		MainXYZ:      mainXYZ,
		SVXYZ:        svXYZ,
		Scalars:      Derive(mainXYZ),
		ScalarsSV:    DeriveRates(startXYZ, svXYZ),
	}, nil
}

// EvaluateBatch evaluates independent queries with up to workers goroutines
// (workers <= 0 means unlimited). Results are returned in query order and are
// identical to calling Evaluate per query. Queries sharing a colatitude (a
// series, a grid row) share one Legendre basis. The first error cancels the
// batch.
func EvaluateBatch(ctx context.Context, table *CoefficientTable, queries []Query, workers int) ([]Result, error) {
	out := make([]Result, len(queries))
	cache := &basisCache{}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := evaluate(table, q.Date, q.Location, cache.get)
			if err != nil {
				return fmt.Errorf("query %d (date %g): %w", i, q.Date, err)
			}
			out[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
