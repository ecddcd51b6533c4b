package geoid

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"
)

// synthetic geoid: N = lat + lon/100, stored north-to-south on a 0..359
// longitude axis as scaled FLOAT values.
func geoidN(lat, lon float64) float64 { return lat + lon/100 }

func createGeoidNC(t *testing.T, path string) {
	t.Helper()
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer f.Close()

	const nLat, nLon = 21, 360
	latDim, _ := f.AddDim("lat", nLat)
	lonDim, _ := f.AddDim("lon", nLon)
	vlat, _ := f.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	vgeoid, _ := f.AddVar("geoid", netcdf.FLOAT, []netcdf.Dim{latDim, lonDim})
	if err := vgeoid.Attr("scale_factor").WriteFloat64s([]float64{0.5}); err != nil {
		t.Fatalf("write scale_factor: %v", err)
	}
	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}

	lat := make([]float64, nLat)
	for i := range lat {
		lat[i] = 10 - float64(i)
	}
	lon := make([]float64, nLon)
	for j := range lon {
		lon[j] = float64(j)
	}
	data := make([]float32, 0, nLat*nLon)
	for _, la := range lat {
		for _, lo := range lon {
			data = append(data, float32(2*geoidN(la, lo)))
		}
	}

	if err := vlat.WriteFloat64s(lat); err != nil {
		t.Fatalf("write lat: %v", err)
	}
	if err := vlon.WriteFloat64s(lon); err != nil {
		t.Fatalf("write lon: %v", err)
	}
	if err := vgeoid.WriteFloat32s(data); err != nil {
		t.Fatalf("write geoid: %v", err)
	}
}

func TestGeoidHeight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "egm2008.nc")
	createGeoidNC(t, path)
	s := NewStore(path)

	tests := []struct {
		name     string
		lat, lon float64
		want     float64
	}{
		{"inside first tile", 2.5, 10.25, geoidN(2.5, 10.25)},
		{"same tile", 3, 11, geoidN(3, 11)},
		{"far away forces reload", -8.5, 200.5, geoidN(-8.5, 200.5)},
		{"negative longitude wraps", 0.5, -1.5, geoidN(0.5, 358.5)},
		{"grid corner", 10, 0, geoidN(10, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GeoidHeight(tt.lat, tt.lon)
			if err != nil {
				t.Fatalf("GeoidHeight: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-4 {
				t.Errorf("expected %.6f, got %.6f", tt.want, got)
			}
		})
	}
}

func TestEllipsoidalHeightKm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "egm2008.nc")
	createGeoidNC(t, path)
	s := NewStore(path)

	// N = 4 m at (4, 0).
	got, err := s.EllipsoidalHeightKm(1.0, 4, 0)
	if err != nil {
		t.Fatalf("EllipsoidalHeightKm: %v", err)
	}
	if math.Abs(got-1.004) > 1e-7 {
		t.Errorf("expected 1.004 km, got %.9f", got)
	}
}

func TestGeoidHeight_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "egm2008.nc")
	createGeoidNC(t, path)
	s := NewStore(path)

	if _, err := s.GeoidHeight(91, 0); err == nil {
		t.Error("expected error for latitude 91")
	}
	// Outside the file's latitude coverage.
	if _, err := s.GeoidHeight(45, 0); err == nil {
		t.Error("expected error outside grid coverage")
	}
	if _, err := NewStore(filepath.Join(t.TempDir(), "missing.nc")).GeoidHeight(0, 0); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWindow(t *testing.T) {
	axis := make([]float64, 100)
	for i := range axis {
		axis[i] = float64(i)
	}
	start, end := window(axis, 50)
	if axis[start] > 48 || axis[end-1] < 52 {
		t.Errorf("window [%g, %g] does not cover 50±2", axis[start], axis[end-1])
	}
	start, end = window(axis, 0)
	if start != 0 || end-start < 2 {
		t.Errorf("edge window [%d, %d)", start, end)
	}
	start, end = window(axis, 99)
	if end != 100 || end-start < 2 {
		t.Errorf("edge window [%d, %d)", start, end)
	}
}
