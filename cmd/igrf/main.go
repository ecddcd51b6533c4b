// Command igrf evaluates an IGRF coefficient model at a single point, as a
// yearly series at one point, or over a latitude/longitude grid, and writes
// a text report (optionally JSON or, for grids, NetCDF).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.ngs.io/geomag-api/internal/adapter/export"
	"go.ngs.io/geomag-api/internal/adapter/geoid"
	"go.ngs.io/geomag-api/internal/adapter/store/shc"
	"go.ngs.io/geomag-api/internal/domain"
	"go.ngs.io/geomag-api/internal/logger"
	"go.ngs.io/geomag-api/internal/report"
	"go.ngs.io/geomag-api/internal/usecase"
)

const version = "0.1.0"

type options struct {
	mode      string
	model     string
	dir       string
	frame     string
	heightRef string
	geoidPath string

	lat, lon       float64
	dm             bool
	latDeg, latMin float64
	lonDeg, lonMin float64
	alt            float64

	date, start, end string
	latRange         usecase.Range
	lonRange         usecase.Range

	out     string
	nc      string
	json    bool
	strict  bool
	workers int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code: 0 on success,
// 1 when evaluation or output fails and 2 for usage or input errors.
func run(args []string, stdout, stderr io.Writer) int {
	var o options
	fs := flag.NewFlagSet("igrf", flag.ContinueOnError)
	fs.SetOutput(stderr)

	showVersion := fs.Bool("version", false, "Show version information")
	fs.StringVar(&o.mode, "mode", "spot", "Query mode: spot, series or grid")
	fs.StringVar(&o.model, "model", "", "Model name, e.g. IGRF14 (default: DEFAULT_MODEL or IGRF14)")
	fs.StringVar(&o.dir, "dir", envOr("MODELS_DIR", "./data/models"), "Directory of SHC or CSV coefficient files")
	fs.StringVar(&o.frame, "frame", "geodetic", "Coordinate frame: geodetic or geocentric")
	fs.StringVar(&o.heightRef, "height-ref", "ellipsoid", "Geodetic altitude reference: ellipsoid or msl")
	fs.StringVar(&o.geoidPath, "geoid", os.Getenv("GEOID_EGM2008_PATH"), "EGM2008 geoid NetCDF file (needed for -height-ref msl)")

	fs.Float64Var(&o.lat, "lat", 0, "Latitude in decimal degrees")
	fs.Float64Var(&o.lon, "lon", 0, "Longitude in decimal degrees")
	fs.BoolVar(&o.dm, "dm", false, "Read latitude/longitude from -lat-deg/-lat-min/-lon-deg/-lon-min")
	fs.Float64Var(&o.latDeg, "lat-deg", 0, "Latitude degrees (with -dm)")
	fs.Float64Var(&o.latMin, "lat-min", 0, "Latitude minutes (with -dm; negative only when degrees are 0)")
	fs.Float64Var(&o.lonDeg, "lon-deg", 0, "Longitude degrees (with -dm)")
	fs.Float64Var(&o.lonMin, "lon-min", 0, "Longitude minutes (with -dm; negative only when degrees are 0)")
	fs.Float64Var(&o.alt, "alt", 0, "Altitude in km (geodetic) or radius in km (geocentric)")

	fs.StringVar(&o.date, "date", "", "Date for spot and grid modes: decimal year or YYYY-MM-DD")
	fs.StringVar(&o.start, "start", "", "First date of a series")
	fs.StringVar(&o.end, "end", "", "Last date of a series (inclusive)")
	fs.Float64Var(&o.latRange.Start, "lat-start", -90, "Grid latitude start (inclusive)")
	fs.Float64Var(&o.latRange.Step, "lat-step", 10, "Grid latitude step")
	fs.Float64Var(&o.latRange.End, "lat-end", 91, "Grid latitude end (exclusive)")
	fs.Float64Var(&o.lonRange.Start, "lon-start", -180, "Grid longitude start (inclusive)")
	fs.Float64Var(&o.lonRange.Step, "lon-step", 10, "Grid longitude step")
	fs.Float64Var(&o.lonRange.End, "lon-end", 180, "Grid longitude end (exclusive)")

	fs.StringVar(&o.out, "o", "", "Write the report to this file instead of stdout")
	fs.StringVar(&o.nc, "nc", "", "Also write grid results to this NetCDF file (grid mode)")
	fs.BoolVar(&o.json, "json", false, "Write JSON instead of a text report")
	fs.BoolVar(&o.strict, "strict", false, "Fail on dates outside the model epochs instead of extrapolating")
	fs.IntVar(&o.workers, "workers", 0, "Evaluation goroutines (default: GOMAXPROCS)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintf(stdout, "igrf version %s\n", version)
		return 0
	}

	logger.SetupWriter(stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	if err := execute(context.Background(), o, stdout); err != nil {
		fmt.Fprintf(stderr, "igrf: %v\n", err)
		if errors.Is(err, usecase.ErrInvalidRequest) || errors.Is(err, domain.ErrDomain) ||
			errors.Is(err, domain.ErrAltitudeRange) {
			return 2
		}
		return 1
	}
	return 0
}

func execute(ctx context.Context, o options, stdout io.Writer) error {
	pos, err := o.position()
	if err != nil {
		return err
	}

	cfg := usecase.DefaultConfig()
	cfg.DefaultModel = envOr("DEFAULT_MODEL", cfg.DefaultModel)
	cfg.Strict = o.strict
	if o.workers > 0 {
		cfg.Workers = o.workers
	}

	var geoidLookup usecase.GeoidLookup
	if o.geoidPath != "" {
		geoidLookup = geoid.NewStore(o.geoidPath)
	}
	uc := usecase.NewFieldUseCase(shc.NewStore(o.dir), geoidLookup, cfg)

	mode := strings.ToLower(o.mode)
	if o.nc != "" && mode != "grid" {
		return fmt.Errorf("%w: -nc is only supported in grid mode", usecase.ErrInvalidRequest)
	}

	var (
		result any
		render func(io.Writer) error
	)
	switch mode {
	case "spot":
		date, err := requiredDate("date", o.date)
		if err != nil {
			return err
		}
		resp, err := uc.Spot(ctx, usecase.SpotRequest{Model: o.model, Date: date, Position: pos})
		if err != nil {
			return err
		}
		result, render = resp, func(w io.Writer) error { return report.Spot(w, resp) }

	case "series":
		start, err := requiredDate("start", o.start)
		if err != nil {
			return err
		}
		end, err := requiredDate("end", o.end)
		if err != nil {
			return err
		}
		resp, err := uc.Series(ctx, usecase.SeriesRequest{Model: o.model, StartDate: start, EndDate: end, Position: pos})
		if err != nil {
			return err
		}
		result, render = resp, func(w io.Writer) error { return report.Series(w, resp) }

	case "grid":
		date, err := requiredDate("date", o.date)
		if err != nil {
			return err
		}
		resp, err := uc.Grid(ctx, usecase.GridRequest{
			Model:    o.model,
			Date:     date,
			Lat:      o.latRange,
			Lon:      o.lonRange,
			Position: pos,
		})
		if err != nil {
			return err
		}
		if o.nc != "" {
			if err := export.WriteNetCDF(o.nc, usecase.ExportGrid(resp)); err != nil {
				return fmt.Errorf("failed to write NetCDF: %w", err)
			}
		}
		result, render = resp, func(w io.Writer) error { return report.Grid(w, resp) }

	default:
		return fmt.Errorf("%w: unknown mode %q (expected spot, series or grid)", usecase.ErrInvalidRequest, o.mode)
	}

	return writeOutput(o, stdout, func(w io.Writer) error {
		if o.json {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		return render(w)
	})
}

// position builds the query position from the location flags.
func (o options) position() (usecase.Position, error) {
	frame, err := domain.ParseFrame(o.frame)
	if err != nil {
		return usecase.Position{}, fmt.Errorf("%w: %v", usecase.ErrInvalidRequest, err)
	}
	ref, err := usecase.ParseHeightReference(o.heightRef)
	if err != nil {
		return usecase.Position{}, err
	}

	lat, lon := o.lat, o.lon
	if o.dm {
		if lat, err = degMin("latitude", o.latDeg, o.latMin); err != nil {
			return usecase.Position{}, err
		}
		if lon, err = degMin("longitude", o.lonDeg, o.lonMin); err != nil {
			return usecase.Position{}, err
		}
	}
	return usecase.Position{Lat: lat, Lon: lon, Altitude: o.alt, Frame: frame, HeightRef: ref}, nil
}

func degMin(name string, deg, minutes float64) (float64, error) {
	if minutes <= -60 || minutes >= 60 {
		return 0, fmt.Errorf("%w: %s minutes %g outside (-60, 60)", usecase.ErrInvalidRequest, name, minutes)
	}
	if deg != 0 && minutes < 0 {
		return 0, fmt.Errorf("%w: negative %s minutes are only allowed with zero degrees", usecase.ErrInvalidRequest, name)
	}
	return domain.DegMinToDecimal(deg, minutes), nil
}

func requiredDate(flagName, s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: -%s is required", usecase.ErrInvalidRequest, flagName)
	}
	return domain.ParseDate(s)
}

// writeOutput sends the report to -o when set, otherwise to stdout.
func writeOutput(o options, stdout io.Writer, write func(io.Writer) error) error {
	if o.out == "" {
		return write(stdout)
	}
	f, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", o.out, err)
	}
	return f.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
