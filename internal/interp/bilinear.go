package interp

import (
	"fmt"
	"math"
)

// GridCell is one rectangle of a regular grid with the values at its corners.
//
//	V01 ---- V11   (Y1)
//	 |        |
//	V00 ---- V10   (Y0)
//	(X0)     (X1)
type GridCell struct {
	X0, X1 float64
	Y0, Y1 float64

	V00, V10, V01, V11 float64
}

// BilinearInterpolate evaluates the bilinear surface of a cell at (x, y):
//
//	f(x,y) = (1-t)(1-u)V00 + t(1-u)V10 + (1-t)u V01 + tu V11
//
// with t and u the normalised offsets of x and y inside the cell.
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0")
	}

	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}

	t := clampUnit((x - cell.X0) / (cell.X1 - cell.X0))
	u := clampUnit((y - cell.Y0) / (cell.Y1 - cell.Y0))

	bottom := Lerp(cell.V00, cell.V10, t)
	top := Lerp(cell.V01, cell.V11, t)
	return Lerp(bottom, top, u), nil
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Grid2D is a regular grid; Values[i][j] is the sample at (X[j], Y[i]).
type Grid2D struct {
	X      []float64
	Y      []float64
	Values [][]float64
}

// Validate checks axis lengths, ordering and the shape of Values.
func (g *Grid2D) Validate() error {
	if len(g.X) < 2 {
		return fmt.Errorf("grid must have at least 2 X coordinates")
	}
	if len(g.Y) < 2 {
		return fmt.Errorf("grid must have at least 2 Y coordinates")
	}
	if err := Series(g.X).Validate(); err != nil {
		return fmt.Errorf("X axis: %w", err)
	}
	if err := Series(g.Y).Validate(); err != nil {
		return fmt.Errorf("Y axis: %w", err)
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match Y coordinates (%d)", len(g.Values), len(g.Y))
	}
	for i, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.X))
		}
	}
	return nil
}

// Contains reports whether (x, y) lies inside the grid extent.
func (g *Grid2D) Contains(x, y float64) bool {
	return Series(g.X).Contains(x) && Series(g.Y).Contains(y)
}

// InterpolateAt performs bilinear interpolation at (x, y). Points outside
// the grid extent are rejected; grids are never extrapolated.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}
	if !Series(g.X).Contains(x) {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid range [%.6f, %.6f]", x, g.X[0], g.X[len(g.X)-1])
	}
	if !Series(g.Y).Contains(y) {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid range [%.6f, %.6f]", y, g.Y[0], g.Y[len(g.Y)-1])
	}

	j, _ := Series(g.X).Locate(x)
	i, _ := Series(g.Y).Locate(y)

	cell := GridCell{
		X0:  g.X[j],
		X1:  g.X[j+1],
		Y0:  g.Y[i],
		Y1:  g.Y[i+1],
		V00: g.Values[i][j],
		V10: g.Values[i][j+1],
		V01: g.Values[i+1][j],
		V11: g.Values[i+1][j+1],
	}
	return BilinearInterpolate(cell, x, y)
}
