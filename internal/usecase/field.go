package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strings"
	"time"

	"go.ngs.io/geomag-api/internal/adapter/store"
	"go.ngs.io/geomag-api/internal/domain"
	"go.ngs.io/geomag-api/internal/logger"
	"go.ngs.io/geomag-api/internal/metrics"
)

var (
	// ErrInvalidRequest marks requests rejected before any evaluation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDateOutOfRange is returned in strict mode for dates outside the
	// model's tabulated epochs.
	ErrDateOutOfRange = errors.New("date outside model epochs")
)

// Input bounds of the query front ends.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 360.0
	// MinGeodeticAltitudeKm keeps geodetic queries well above the core.
	MinGeodeticAltitudeKm = -3300.0
)

// HeightReference says what a geodetic altitude is measured from.
type HeightReference string

const (
	Ellipsoid HeightReference = "ellipsoid"
	MSL       HeightReference = "msl"
)

// ParseHeightReference accepts "ellipsoid" (default) or "msl".
func ParseHeightReference(s string) (HeightReference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Ellipsoid):
		return Ellipsoid, nil
	case string(MSL):
		return MSL, nil
	default:
		return "", fmt.Errorf("%w: unknown height reference %q (expected ellipsoid or msl)", ErrInvalidRequest, s)
	}
}

// GeoidLookup converts altitudes above mean sea level to ellipsoidal heights.
type GeoidLookup interface {
	EllipsoidalHeightKm(mslKm, lat, lon float64) (float64, error)
}

// Config tunes the field use case.
type Config struct {
	DefaultModel string
	// Workers bounds batch concurrency; <= 0 selects GOMAXPROCS.
	Workers int
	// Strict rejects dates outside the model epochs instead of
	// extrapolating them.
	Strict bool
	// MinDate and MaxDate bound accepted dates (decimal years).
	MinDate, MaxDate float64
	// MaxPoints bounds the size of one series or grid.
	MaxPoints int
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		DefaultModel: "IGRF14",
		Workers:      runtime.GOMAXPROCS(0),
		MinDate:      1900,
		MaxDate:      2030,
		MaxPoints:    100000,
	}
}

// Position is a query location as given by a client.
type Position struct {
	Lat float64
	Lon float64
	// Altitude is the height in km (geodetic) or the geocentric radius in
	// km (geocentric).
	Altitude  float64
	Frame     domain.Frame
	HeightRef HeightReference
}

// SpotRequest asks for the field at one date and position.
type SpotRequest struct {
	Model    string
	Date     float64
	Position Position
}

// SeriesRequest asks for yearly values at one position.
type SeriesRequest struct {
	Model     string
	StartDate float64
	EndDate   float64
	Position  Position
}

// GridRequest asks for the field over a latitude/longitude grid. Lat and Lon
// of Position are ignored.
type GridRequest struct {
	Model    string
	Date     float64
	Lat      Range
	Lon      Range
	Position Position
}

// FieldUseCase evaluates geomagnetic field requests against stored models.
type FieldUseCase struct {
	models store.ModelLoader
	geoid  GeoidLookup
	cfg    Config
	log    *slog.Logger
}

// NewFieldUseCase creates a field use case. geoid may be nil, in which case
// MSL heights are rejected.
func NewFieldUseCase(models store.ModelLoader, geoid GeoidLookup, cfg Config) *FieldUseCase {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultConfig().DefaultModel
	}
	if cfg.MinDate == 0 && cfg.MaxDate == 0 {
		cfg.MinDate, cfg.MaxDate = DefaultConfig().MinDate, DefaultConfig().MaxDate
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = DefaultConfig().MaxPoints
	}
	return &FieldUseCase{
		models: models,
		geoid:  geoid,
		cfg:    cfg,
		log:    logger.L(),
	}
}

// Config returns the effective configuration.
func (uc *FieldUseCase) Config() Config { return uc.cfg }

// Models lists the available models.
func (uc *FieldUseCase) Models() ([]store.ModelInfo, error) {
	models, err := uc.models.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return models, nil
}

// Spot evaluates a SpotRequest.
func (uc *FieldUseCase) Spot(ctx context.Context, req SpotRequest) (*FieldResponse, error) {
	if err := uc.checkDate(req.Date); err != nil {
		return nil, err
	}
	loc, err := uc.locate(req.Position)
	if err != nil {
		return nil, err
	}
	return uc.run(ctx, req.Model, req.Position, SpotQuery(req.Date, loc))
}

// Series evaluates a SeriesRequest.
func (uc *FieldUseCase) Series(ctx context.Context, req SeriesRequest) (*FieldResponse, error) {
	if err := uc.checkDate(req.StartDate); err != nil {
		return nil, err
	}
	if err := uc.checkDate(req.EndDate); err != nil {
		return nil, err
	}
	if n := math.Floor(req.EndDate-req.StartDate) + 1; n > float64(uc.cfg.MaxPoints) {
		return nil, fmt.Errorf("%w: too many dates (%.0f), at most %d", ErrInvalidRequest, n, uc.cfg.MaxPoints)
	}
	loc, err := uc.locate(req.Position)
	if err != nil {
		return nil, err
	}
	queries, err := SeriesQuery(req.StartDate, req.EndDate, loc)
	if err != nil {
		return nil, err
	}
	return uc.run(ctx, req.Model, req.Position, queries)
}

// Grid evaluates a GridRequest.
func (uc *FieldUseCase) Grid(ctx context.Context, req GridRequest) (*GridResponse, error) {
	if err := uc.checkDate(req.Date); err != nil {
		return nil, err
	}
	if n := req.Lat.Len() * req.Lon.Len(); n > uc.cfg.MaxPoints {
		return nil, fmt.Errorf("%w: too many grid points (%d), at most %d", ErrInvalidRequest, n, uc.cfg.MaxPoints)
	}

	lats, err := req.Lat.Values()
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lons, err := req.Lon.Values()
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	if err := checkBounds("latitude", lats, MinLatitude, MaxLatitude); err != nil {
		return nil, err
	}
	if err := checkBounds("longitude", lons, MinLongitude, MaxLongitude); err != nil {
		return nil, err
	}

	queries, err := GridQuery(req.Date, lats, lons, func(lat, lon float64) (domain.Location, error) {
		p := req.Position
		p.Lat, p.Lon = lat, lon
		return uc.locate(p)
	})
	if err != nil {
		return nil, err
	}

	resp, err := uc.run(ctx, req.Model, req.Position, queries)
	if err != nil {
		return nil, err
	}
	return &GridResponse{FieldResponse: *resp, Lats: lats, Lons: lons}, nil
}

// run evaluates the queries against the requested model and shapes the
// response.
func (uc *FieldUseCase) run(ctx context.Context, model string, pos Position, queries []domain.Query) (*FieldResponse, error) {
	if model == "" {
		model = uc.cfg.DefaultModel
	}
	table, err := uc.models.Load(model)
	if err != nil {
		metrics.ModelLoadFailTotal.Inc()
		return nil, fmt.Errorf("failed to load model %s: %w", model, err)
	}

	if uc.cfg.Strict {
		for _, q := range queries {
			if !table.InRange(q.Date) {
				return nil, fmt.Errorf("%w: %g is outside %s epochs [%g, %g]",
					ErrDateOutOfRange, q.Date, table.Name(), table.FirstEpoch(), table.LastEpoch())
			}
		}
	}

	start := time.Now()
	results, err := domain.EvaluateBatch(ctx, table, queries, uc.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	uc.log.Debug("field_eval",
		"model", table.Name(),
		"points", len(queries),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	metrics.BatchSize.Observe(float64(len(queries)))
	metrics.EvaluatedPointsTotal.WithLabelValues(table.Name()).Add(float64(len(queries)))

	resp := &FieldResponse{
		Model:     table.Name(),
		Frame:     pos.Frame.String(),
		HeightRef: string(pos.heightRef()),
		Points:    make([]FieldPoint, len(results)),
		Meta: map[string]string{
			"epochs":     fmt.Sprintf("%g-%g", table.FirstEpoch(), table.LastEpoch()),
			"max_degree": fmt.Sprintf("%d", table.MaxDegree()),
		},
	}

	extrapolated := 0
	for i, r := range results {
		// Altitudes are echoed as given; MSL heights are not replaced by
		// their ellipsoidal equivalent.
		p := pos
		p.Lat = 90 - queries[i].Location.ColatitudeDeg
		p.Lon = queries[i].Location.LongitudeDeg
		resp.Points[i] = newFieldPoint(r, p)
		if r.Extrapolated {
			extrapolated++
		}
	}
	if extrapolated > 0 {
		metrics.ExtrapolatedTotal.WithLabelValues(table.Name()).Add(float64(extrapolated))
		resp.Warnings = append(resp.Warnings, fmt.Sprintf(
			"%d date(s) outside %s epochs [%g, %g] were extrapolated linearly",
			extrapolated, table.Name(), table.FirstEpoch(), table.LastEpoch()))
	}

	return resp, nil
}

// locate validates a client position and converts it to a domain location.
func (uc *FieldUseCase) locate(p Position) (domain.Location, error) {
	if err := checkBounds("latitude", []float64{p.Lat}, MinLatitude, MaxLatitude); err != nil {
		return domain.Location{}, err
	}
	if err := checkBounds("longitude", []float64{p.Lon}, MinLongitude, MaxLongitude); err != nil {
		return domain.Location{}, err
	}
	if math.IsNaN(p.Altitude) || math.IsInf(p.Altitude, 0) {
		return domain.Location{}, fmt.Errorf("%w: altitude must be finite", ErrInvalidRequest)
	}

	alt := p.Altitude
	switch p.Frame {
	case domain.Geodetic:
		if alt < MinGeodeticAltitudeKm {
			return domain.Location{}, fmt.Errorf("%w: geodetic altitude %g km is below %g km",
				ErrInvalidRequest, alt, MinGeodeticAltitudeKm)
		}
		if p.heightRef() == MSL {
			if uc.geoid == nil {
				return domain.Location{}, fmt.Errorf("%w: MSL heights need a geoid model (GEOID_EGM2008_PATH)", ErrInvalidRequest)
			}
			h, err := uc.geoid.EllipsoidalHeightKm(alt, p.Lat, p.Lon)
			if err != nil {
				return domain.Location{}, fmt.Errorf("geoid correction failed: %w", err)
			}
			alt = h
		}
	case domain.Geocentric:
		if p.heightRef() == MSL {
			return domain.Location{}, fmt.Errorf("%w: MSL heights apply to geodetic positions only", ErrInvalidRequest)
		}
		if alt < domain.CoreMantleBoundaryKm {
			return domain.Location{}, fmt.Errorf("%w: geocentric radius %g km is below %g km",
				ErrInvalidRequest, alt, domain.CoreMantleBoundaryKm)
		}
	default:
		return domain.Location{}, fmt.Errorf("%w: unsupported frame %v", ErrInvalidRequest, p.Frame)
	}

	return domain.Location{
		Frame:         p.Frame,
		Altitude:      alt,
		ColatitudeDeg: domain.LatitudeToColatitude(p.Lat),
		LongitudeDeg:  p.Lon,
	}, nil
}

func (p Position) heightRef() HeightReference {
	if p.HeightRef == "" {
		return Ellipsoid
	}
	return p.HeightRef
}

func (uc *FieldUseCase) checkDate(date float64) error {
	if math.IsNaN(date) || math.IsInf(date, 0) {
		return fmt.Errorf("%w: date must be a finite decimal year", ErrInvalidRequest)
	}
	if date < uc.cfg.MinDate || date > uc.cfg.MaxDate {
		return fmt.Errorf("%w: date %g outside [%g, %g]", ErrInvalidRequest, date, uc.cfg.MinDate, uc.cfg.MaxDate)
	}
	return nil
}

func checkBounds(name string, values []float64, lo, hi float64) error {
	for _, v := range values {
		if math.IsNaN(v) || v < lo || v > hi {
			return fmt.Errorf("%w: %s %g outside [%g, %g]", ErrInvalidRequest, name, v, lo, hi)
		}
	}
	return nil
}
