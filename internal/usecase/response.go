package usecase

import (
	"math"

	"go.ngs.io/geomag-api/internal/adapter/export"
	"go.ngs.io/geomag-api/internal/domain"
)

// Elements are the seven field elements. For a main field D and I are in
// degrees and the rest in nT; for secular variation D and I are in
// arc-minutes/yr and the rest in nT/yr.
type Elements struct {
	D float64 `json:"d"`
	I float64 `json:"i"`
	H float64 `json:"h"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	F float64 `json:"f"`
}

// FieldPoint is the evaluation of one date and position.
type FieldPoint struct {
	Date         float64  `json:"date"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Altitude     float64  `json:"altitude_km"`
	Main         Elements `json:"main"`
	SV           Elements `json:"sv"`
	EpochStart   float64  `json:"sv_epoch"`
	Extrapolated bool     `json:"extrapolated"`
}

// FieldResponse holds the points of a spot or series request.
type FieldResponse struct {
	Model     string            `json:"model"`
	Frame     string            `json:"frame"`
	HeightRef string            `json:"height_ref"`
	Points    []FieldPoint      `json:"points"`
	Warnings  []string          `json:"warnings,omitempty"`
	Meta      map[string]string `json:"meta"`
}

// Extrapolated reports whether any point lies outside the model epochs.
func (r *FieldResponse) Extrapolated() bool {
	for _, p := range r.Points {
		if p.Extrapolated {
			return true
		}
	}
	return false
}

// GridResponse is a FieldResponse whose points are laid out row-major over
// Lats x Lons.
type GridResponse struct {
	FieldResponse
	Lats []float64 `json:"lats"`
	Lons []float64 `json:"lons"`
}

// At returns the point at latitude index i and longitude index j.
func (g *GridResponse) At(i, j int) FieldPoint {
	return g.Points[i*len(g.Lons)+j]
}

func newFieldPoint(r domain.Result, p Position) FieldPoint {
	return FieldPoint{
		Date:     roundToDecimal(r.Date, 4),
		Lat:      roundToDecimal(p.Lat, 6),
		Lon:      roundToDecimal(p.Lon, 6),
		Altitude: p.Altitude,
		Main: Elements{
			D: roundToDecimal(r.Scalars.Declination, 4),
			I: roundToDecimal(r.Scalars.Inclination, 4),
			H: roundToDecimal(r.Scalars.Horizontal, 2),
			X: roundToDecimal(r.MainXYZ.X, 2),
			Y: roundToDecimal(r.MainXYZ.Y, 2),
			Z: roundToDecimal(r.MainXYZ.Z, 2),
			F: roundToDecimal(r.Scalars.Total, 2),
		},
		SV: Elements{
			D: roundToDecimal(r.ScalarsSV.Declination, 2),
			I: roundToDecimal(r.ScalarsSV.Inclination, 2),
			H: roundToDecimal(r.ScalarsSV.Horizontal, 2),
			X: roundToDecimal(r.SVXYZ.X, 2),
			Y: roundToDecimal(r.SVXYZ.Y, 2),
			Z: roundToDecimal(r.SVXYZ.Z, 2),
			F: roundToDecimal(r.ScalarsSV.Total, 2),
		},
		EpochStart:   r.EpochStart,
		Extrapolated: r.Extrapolated,
	}
}

// ExportGrid converts a grid response into NetCDF layers: the seven main
// field elements and their secular variation.
func ExportGrid(g *GridResponse) export.Grid {
	type layerDef struct {
		name, units, long string
		get               func(FieldPoint) float64
	}
	defs := []layerDef{
		{"D", "degrees", "declination", func(p FieldPoint) float64 { return p.Main.D }},
		{"I", "degrees", "inclination", func(p FieldPoint) float64 { return p.Main.I }},
		{"H", "nT", "horizontal intensity", func(p FieldPoint) float64 { return p.Main.H }},
		{"X", "nT", "north component", func(p FieldPoint) float64 { return p.Main.X }},
		{"Y", "nT", "east component", func(p FieldPoint) float64 { return p.Main.Y }},
		{"Z", "nT", "vertical component", func(p FieldPoint) float64 { return p.Main.Z }},
		{"F", "nT", "total intensity", func(p FieldPoint) float64 { return p.Main.F }},
		{"SV_D", "arcmin/yr", "declination secular variation", func(p FieldPoint) float64 { return p.SV.D }},
		{"SV_I", "arcmin/yr", "inclination secular variation", func(p FieldPoint) float64 { return p.SV.I }},
		{"SV_H", "nT/yr", "horizontal intensity secular variation", func(p FieldPoint) float64 { return p.SV.H }},
		{"SV_X", "nT/yr", "north component secular variation", func(p FieldPoint) float64 { return p.SV.X }},
		{"SV_Y", "nT/yr", "east component secular variation", func(p FieldPoint) float64 { return p.SV.Y }},
		{"SV_Z", "nT/yr", "vertical component secular variation", func(p FieldPoint) float64 { return p.SV.Z }},
		{"SV_F", "nT/yr", "total intensity secular variation", func(p FieldPoint) float64 { return p.SV.F }},
	}

	out := export.Grid{
		Model: g.Model,
		Frame: g.Frame,
		Lat:   g.Lats,
		Lon:   g.Lons,
	}
	if len(g.Points) > 0 {
		out.Date = g.Points[0].Date
		out.AltitudeKm = g.Points[0].Altitude
	}
	for _, d := range defs {
		values := make([]float64, len(g.Points))
		for k, p := range g.Points {
			values[k] = d.get(p)
		}
		out.Layers = append(out.Layers, export.Layer{Name: d.name, Units: d.units, LongName: d.long, Values: values})
	}
	return out
}

// roundToDecimal rounds a float to the specified number of decimal places.
func roundToDecimal(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
