// Package report renders field responses as plain-text tables for the
// command line, in the layout of the classic IGRF synthesis program.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"go.ngs.io/geomag-api/internal/usecase"
)

const degree = "°"

// Spot writes one point as a labelled list of the main field and SV
// elements.
func Spot(w io.Writer, resp *usecase.FieldResponse) error {
	if len(resp.Points) == 0 {
		return fmt.Errorf("no points to report")
	}
	p := resp.Points[0]

	ew := &errWriter{w: w}
	ew.printf("Geomagnetic field values at: %s%s / %s%s, at %s for %s (%s)\n",
		trim(p.Lat, 4), degree, trim(p.Lon, 4), degree, altitude(resp, p.Altitude), trim(p.Date, 4), resp.Model)
	ew.warnings(resp)

	tw := tabwriter.NewWriter(ew, 0, 0, 1, ' ', tabwriter.AlignRight)
	rows := []struct {
		label, value, unit string
	}{
		{"Declination (D):", fmt.Sprintf("%.3f", p.Main.D), degree},
		{"Inclination (I):", fmt.Sprintf("%.3f", p.Main.I), degree},
		{"Horizontal intensity (H):", fmt.Sprintf("%.1f", p.Main.H), "nT"},
		{"Total intensity (F):", fmt.Sprintf("%.1f", p.Main.F), "nT"},
		{"North component (X):", fmt.Sprintf("%.1f", p.Main.X), "nT"},
		{"East component (Y):", fmt.Sprintf("%.1f", p.Main.Y), "nT"},
		{"Vertical component (Z):", fmt.Sprintf("%.1f", p.Main.Z), "nT"},
		{"Declination SV (D):", fmt.Sprintf("%.2f", p.SV.D), "arcmin/yr"},
		{"Inclination SV (I):", fmt.Sprintf("%.2f", p.SV.I), "arcmin/yr"},
		{"Horizontal SV (H):", fmt.Sprintf("%.1f", p.SV.H), "nT/yr"},
		{"Total SV (F):", fmt.Sprintf("%.1f", p.SV.F), "nT/yr"},
		{"North SV (X):", fmt.Sprintf("%.1f", p.SV.X), "nT/yr"},
		{"East SV (Y):", fmt.Sprintf("%.1f", p.SV.Y), "nT/yr"},
		{"Vertical SV (Z):", fmt.Sprintf("%.1f", p.SV.Z), "nT/yr"},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t %s\t %s\t\n", r.label, r.value, r.unit)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return ew.err
}

// Series writes one row per date for a single location.
func Series(w io.Writer, resp *usecase.FieldResponse) error {
	if len(resp.Points) == 0 {
		return fmt.Errorf("no points to report")
	}
	p := resp.Points[0]

	ew := &errWriter{w: w}
	ew.printf("Geomagnetic field values at: %s%s / %s%s, at %s (%s)\n",
		trim(p.Lat, 4), degree, trim(p.Lon, 4), degree, altitude(resp, p.Altitude), resp.Model)
	ew.warnings(resp)

	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Date\t"+elementHeader+"\n")
	for _, p := range resp.Points {
		fmt.Fprintf(tw, "%s\t%s\n", trim(p.Date, 4), elementRow(p))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return ew.err
}

// Grid writes one row per grid node for a single date.
func Grid(w io.Writer, resp *usecase.GridResponse) error {
	if len(resp.Points) == 0 {
		return fmt.Errorf("no points to report")
	}
	p := resp.Points[0]

	ew := &errWriter{w: w}
	ew.printf("Geomagnetic field values for: %s, at %s (%s)\n", trim(p.Date, 4), altitude(&resp.FieldResponse, p.Altitude), resp.Model)
	ew.warnings(&resp.FieldResponse)

	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Latitude\tLongitude\t"+elementHeader+"\n")
	for _, p := range resp.Points {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", trim(p.Lat, 4), trim(p.Lon, 4), elementRow(p))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return ew.err
}

const elementHeader = "D(" + degree + ")\tI(" + degree + ")\tH(nT)\tF(nT)\tX(nT)\tY(nT)\tZ(nT)\t" +
	"SV_D(min/yr)\tSV_I(min/yr)\tSV_H(nT/yr)\tSV_F(nT/yr)\tSV_X(nT/yr)\tSV_Y(nT/yr)\tSV_Z(nT/yr)\t"

func elementRow(p usecase.FieldPoint) string {
	return fmt.Sprintf("%.3f\t%.3f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.2f\t%.2f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t",
		p.Main.D, p.Main.I, p.Main.H, p.Main.F, p.Main.X, p.Main.Y, p.Main.Z,
		p.SV.D, p.SV.I, p.SV.H, p.SV.F, p.SV.X, p.SV.Y, p.SV.Z)
}

func altitude(resp *usecase.FieldResponse, alt float64) string {
	if resp.Frame == "geocentric" {
		return fmt.Sprintf("radius %s km", trim(alt, 3))
	}
	ref := "ellipsoid"
	if resp.HeightRef == string(usecase.MSL) {
		ref = "mean sea level"
	}
	return fmt.Sprintf("altitude %s km above %s", trim(alt, 3), ref)
}

// trim formats v with at most decimals places and no trailing zeros.
func trim(v float64, decimals int) string {
	m := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(v*m)/m, 'f', -1, 64)
}

// errWriter keeps the first write error so the report code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e, format, args...)
}

func (e *errWriter) warnings(resp *usecase.FieldResponse) {
	for _, w := range resp.Warnings {
		e.printf("Warning: %s\n", w)
	}
}
