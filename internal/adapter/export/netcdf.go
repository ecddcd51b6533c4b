// Package export writes evaluated field grids to files for downstream tools.
package export

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"
)

// Layer is one gridded quantity, stored row-major as Values[i*len(Lon)+j]
// for (Lat[i], Lon[j]).
type Layer struct {
	Name     string
	Units    string
	LongName string
	Values   []float64
}

// Grid is a set of layers sharing latitude and longitude axes.
type Grid struct {
	Model      string
	Date       float64
	Frame      string
	AltitudeKm float64
	Lat        []float64
	Lon        []float64
	Layers     []Layer
}

// Validate checks axis and layer sizes.
func (g Grid) Validate() error {
	if len(g.Lat) == 0 || len(g.Lon) == 0 {
		return fmt.Errorf("grid axes must not be empty (lat %d, lon %d)", len(g.Lat), len(g.Lon))
	}
	seen := make(map[string]bool, len(g.Layers))
	for _, l := range g.Layers {
		if l.Name == "" || l.Name == "lat" || l.Name == "lon" {
			return fmt.Errorf("invalid layer name %q", l.Name)
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate layer %q", l.Name)
		}
		seen[l.Name] = true
		if len(l.Values) != len(g.Lat)*len(g.Lon) {
			return fmt.Errorf("layer %s has %d values, expected %d", l.Name, len(l.Values), len(g.Lat)*len(g.Lon))
		}
	}
	return nil
}

// WriteNetCDF writes the grid as a NetCDF-4 file with lat/lon coordinate
// variables and one DOUBLE variable per layer. An existing file is replaced.
func WriteNetCDF(path string, g Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	latDim, err := ds.AddDim("lat", uint64(len(g.Lat)))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("lon", uint64(len(g.Lon)))
	if err != nil {
		return err
	}

	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	if err := writeText(latVar.Attr("units"), "degrees_north"); err != nil {
		return err
	}
	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	if err := writeText(lonVar.Attr("units"), "degrees_east"); err != nil {
		return err
	}

	vars := make([]netcdf.Var, len(g.Layers))
	for i, l := range g.Layers {
		v, err := ds.AddVar(l.Name, netcdf.DOUBLE, []netcdf.Dim{latDim, lonDim})
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", l.Name, err)
		}
		if err := writeText(v.Attr("units"), l.Units); err != nil {
			return err
		}
		if err := writeText(v.Attr("long_name"), l.LongName); err != nil {
			return err
		}
		vars[i] = v
	}

	if err := writeText(ds.Attr("model"), g.Model); err != nil {
		return err
	}
	if err := writeText(ds.Attr("frame"), g.Frame); err != nil {
		return err
	}
	if err := ds.Attr("date").WriteFloat64s([]float64{g.Date}); err != nil {
		return err
	}
	if err := ds.Attr("altitude_km").WriteFloat64s([]float64{g.AltitudeKm}); err != nil {
		return err
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	if err := latVar.WriteFloat64s(g.Lat); err != nil {
		return fmt.Errorf("failed to write lat: %w", err)
	}
	if err := lonVar.WriteFloat64s(g.Lon); err != nil {
		return fmt.Errorf("failed to write lon: %w", err)
	}
	for i, l := range g.Layers {
		if err := vars[i].WriteFloat64s(l.Values); err != nil {
			return fmt.Errorf("failed to write %s: %w", l.Name, err)
		}
	}

	return ds.Close()
}

func writeText(a netcdf.Attr, s string) error {
	if s == "" {
		return nil
	}
	if err := a.WriteBytes([]byte(s)); err != nil {
		return fmt.Errorf("failed to write attribute %s: %w", a.Name(), err)
	}
	return nil
}
