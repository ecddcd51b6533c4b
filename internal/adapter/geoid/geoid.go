// Package geoid provides EGM2008 geoid heights so altitudes given above mean
// sea level can be converted to heights above the WGS-84 ellipsoid.
package geoid

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/geomag-api/internal/interp"
)

// tileMargin is the half-width in degrees of the window read around a query.
const tileMargin = 2.0

var (
	latNames  = []string{"lat", "latitude", "y"}
	lonNames  = []string{"lon", "longitude", "x"}
	dataNames = []string{"geoid", "geoid_height", "N", "height", "z"}
)

// Store provides geoid height lookups. Only a window of the global grid is
// held in memory; it is re-read when a query falls outside it.
type Store struct {
	geoidPath string // Path to EGM2008 NetCDF file.
	lat, lon  []float64
	lon360    bool // Longitude axis runs over [0, 360) rather than [-180, 180).
	tile      *interp.Grid2D
	mu        sync.Mutex
}

// NewStore creates a new geoid store.
func NewStore(geoidPath string) *Store {
	return &Store{
		geoidPath: geoidPath,
	}
}

// GeoidHeight returns the EGM2008 geoid height N in metres at a geodetic
// latitude and longitude (degrees). N is the height of mean sea level above
// the WGS-84 ellipsoid, so h = H + N.
func (s *Store) GeoidHeight(lat, lon float64) (float64, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, fmt.Errorf("latitude %g outside [-90, 90]", lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, fmt.Errorf("longitude %g is not finite", lon)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lat == nil {
		if err := s.loadAxes(); err != nil {
			return 0, fmt.Errorf("failed to load geoid grid: %w", err)
		}
	}

	x := s.wrapLon(lon)
	if s.tile == nil || !s.tile.Contains(x, lat) {
		if err := s.loadTile(lat, x); err != nil {
			return 0, fmt.Errorf("failed to load geoid grid: %w", err)
		}
	}

	height, err := s.tile.InterpolateAt(x, lat)
	if err != nil {
		return 0, fmt.Errorf("failed to interpolate geoid height: %w", err)
	}
	return height, nil
}

// EllipsoidalHeightKm converts an altitude above mean sea level (km) to a
// height above the WGS-84 ellipsoid (km).
func (s *Store) EllipsoidalHeightKm(mslKm, lat, lon float64) (float64, error) {
	n, err := s.GeoidHeight(lat, lon)
	if err != nil {
		return 0, err
	}
	return mslKm + n/1000.0, nil
}

// wrapLon maps a longitude onto the convention of the file's axis.
func (s *Store) wrapLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if s.lon360 {
		if lon < 0 {
			lon += 360
		}
		return lon
	}
	if lon >= 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	return lon
}

// loadAxes reads the coordinate axes once; tiles are cut from them.
func (s *Store) loadAxes() error {
	nc, err := netcdf.OpenFile(s.geoidPath, netcdf.NOWRITE)
	if err != nil {
		return fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer nc.Close()

	lat, err := readAxis(nc, latNames)
	if err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	lon, err := readAxis(nc, lonNames)
	if err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	if len(lat) < 2 || len(lon) < 2 {
		return fmt.Errorf("grid must have at least 2x2 points, got %dx%d", len(lat), len(lon))
	}

	s.lat, s.lon = lat, lon
	s.lon360 = slices.Max(lon) > 180
	return nil
}

// loadTile reads a subset of the grid around (lat, lon) with a margin of
// tileMargin degrees.
func (s *Store) loadTile(lat, lon float64) error {
	nc, err := netcdf.OpenFile(s.geoidPath, netcdf.NOWRITE)
	if err != nil {
		return fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer nc.Close()

	latStart, latEnd := window(s.lat, lat)
	lonStart, lonEnd := window(s.lon, lon)

	dataVar, err := findVar(nc, dataNames)
	if err != nil {
		return err
	}
	dims, err := dataVar.Dims()
	if err != nil {
		return fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 2 {
		return fmt.Errorf("expected 2D data, got %dD", len(dims))
	}
	dim0Len, err := dims[0].Len()
	if err != nil {
		return fmt.Errorf("failed to get dim0 length: %w", err)
	}
	dim1Len, err := dims[1].Len()
	if err != nil {
		return fmt.Errorf("failed to get dim1 length: %w", err)
	}

	nLat, nLon := len(s.lat), len(s.lon)
	nSubLat, nSubLon := latEnd-latStart, lonEnd-lonStart

	var values [][]float64
	switch {
	case dim0Len == uint64(nLat) && dim1Len == uint64(nLon):
		// Data is [lat, lon].
		values, err = read2DFloat64VarSubset(dataVar, latStart, lonStart, nSubLat, nSubLon)
	case dim0Len == uint64(nLon) && dim1Len == uint64(nLat):
		// Data is [lon, lat].
		var transposed [][]float64
		transposed, err = read2DFloat64VarSubset(dataVar, lonStart, latStart, nSubLon, nSubLat)
		values = transpose2D(transposed)
	default:
		return fmt.Errorf("dimension mismatch: data is [%d, %d], expected [%d, %d] or [%d, %d]",
			dim0Len, dim1Len, nLat, nLon, nLon, nLat)
	}
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}

	tile := &interp.Grid2D{
		X:      slices.Clone(s.lon[lonStart:lonEnd]),
		Y:      slices.Clone(s.lat[latStart:latEnd]),
		Values: values,
	}
	ascending(tile)

	if err := tile.Validate(); err != nil {
		return fmt.Errorf("invalid grid: %w", err)
	}
	s.tile = tile
	return nil
}

// window returns the [start, end) index range of axis covering
// target ± tileMargin, at least two samples wide.
func window(axis []float64, target float64) (int, int) {
	a := findNearestIndex(axis, target-tileMargin)
	b := findNearestIndex(axis, target+tileMargin)
	if a > b {
		a, b = b, a
	}
	start := clamp(a-1, 0, len(axis)-2)
	end := clamp(b+2, start+2, len(axis))
	return start, end
}

// ascending flips descending axes (EGM2008 is often stored north to south)
// so the grid can be interpolated.
func ascending(g *interp.Grid2D) {
	if len(g.Y) > 1 && g.Y[0] > g.Y[len(g.Y)-1] {
		slices.Reverse(g.Y)
		slices.Reverse(g.Values)
	}
	if len(g.X) > 1 && g.X[0] > g.X[len(g.X)-1] {
		slices.Reverse(g.X)
		for _, row := range g.Values {
			slices.Reverse(row)
		}
	}
}

func findVar(nc netcdf.Dataset, names []string) (netcdf.Var, error) {
	for _, name := range names {
		if v, err := nc.Var(name); err == nil {
			return v, nil
		}
	}
	return netcdf.Var{}, fmt.Errorf("variable not found (tried: %v)", names)
}

func readAxis(nc netcdf.Dataset, names []string) ([]float64, error) {
	v, err := findVar(nc, names)
	if err != nil {
		return nil, err
	}
	return readFloat64Var(v)
}

// readFloat64Var reads a 1D float64 array from a NetCDF variable.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}

	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}

	data := make([]float64, length)
	if err := v.ReadFloat64s(data); err != nil {
		return nil, err
	}
	return data, nil
}

func transpose2D(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return data
	}
	nRows, nCols := len(data), len(data[0])

	out := make([][]float64, nCols)
	for i := range out {
		out[i] = make([]float64, nRows)
		for j := range nRows {
			out[i][j] = data[j][i]
		}
	}
	return out
}

// read2DFloat64VarSubset reads the hyperslab [startRow:startRow+nRows,
// startCol:startCol+nCols] of a 2D variable as float64, applying a
// scale_factor attribute when present. DOUBLE, FLOAT, SHORT and INT
// variables are supported.
func read2DFloat64VarSubset(v netcdf.Var, startRow, startCol, nRows, nCols int) ([][]float64, error) {
	varType, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get variable type: %w", err)
	}

	total := nRows * nCols
	start := []uint64{uint64(startRow), uint64(startCol)}
	count := []uint64{uint64(nRows), uint64(nCols)}

	flat := make([]float64, total)
	switch varType {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64Slice(flat, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float64 subset: %w", err)
		}
	case netcdf.FLOAT:
		buf := make([]float32, total)
		if err := v.ReadFloat32Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float32 subset: %w", err)
		}
		for i, val := range buf {
			flat[i] = float64(val)
		}
	case netcdf.SHORT:
		buf := make([]int16, total)
		if err := v.ReadInt16Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int16 subset: %w", err)
		}
		for i, val := range buf {
			flat[i] = float64(val)
		}
	case netcdf.INT:
		buf := make([]int32, total)
		if err := v.ReadInt32Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int32 subset: %w", err)
		}
		for i, val := range buf {
			flat[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("unsupported data type: %v", varType)
	}

	if scale, ok := scaleFactor(v); ok {
		for i := range flat {
			flat[i] *= scale
		}
	}

	values := make([][]float64, nRows)
	for i := range values {
		values[i] = flat[i*nCols : (i+1)*nCols]
	}
	return values, nil
}

func scaleFactor(v netcdf.Var) (float64, bool) {
	attr := v.Attr("scale_factor")
	if n, err := attr.Len(); err != nil || n == 0 {
		return 0, false
	}
	f := make([]float64, 1)
	if err := attr.ReadFloat64s(f); err == nil && f[0] != 0 {
		return f[0], true
	}
	i := make([]int32, 1)
	if err := attr.ReadInt32s(i); err == nil && i[0] != 0 {
		return float64(i[0]), true
	}
	return 0, false
}

// findNearestIndex finds the index of the value closest to target in a
// sorted (ascending or descending) array.
func findNearestIndex(arr []float64, target float64) int {
	if len(arr) == 0 {
		return 0
	}
	desc := len(arr) > 1 && arr[0] > arr[len(arr)-1]

	left, right := 0, len(arr)-1
	for left < right {
		mid := (left + right) / 2
		if (arr[mid] < target) != desc {
			left = mid + 1
		} else {
			right = mid
		}
	}

	if left > 0 && math.Abs(arr[left-1]-target) < math.Abs(arr[left]-target) {
		return left - 1
	}
	return left
}

func clamp(value, lo, hi int) int {
	return max(lo, min(value, hi))
}
