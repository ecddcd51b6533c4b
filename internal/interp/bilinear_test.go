package interp

import (
	"math"
	"testing"
)

func TestBilinearInterpolate(t *testing.T) {
	cell := GridCell{
		X0: 0.0, X1: 2.0,
		Y0: 0.0, Y1: 2.0,
		V00: 1.0, V10: 3.0,
		V01: 5.0, V11: 7.0,
	}

	tests := []struct {
		name     string
		x, y     float64
		expected float64
	}{
		{"center", 1.0, 1.0, 4.0},
		{"bottom-left", 0.0, 0.0, 1.0},
		{"bottom-right", 2.0, 0.0, 3.0},
		{"top-left", 0.0, 2.0, 5.0},
		{"top-right", 2.0, 2.0, 7.0},
		{"bottom edge", 1.0, 0.0, 2.0},
	}

	for _, tt := range tests {
		got, err := BilinearInterpolate(cell, tt.x, tt.y)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("%s: expected %.10f, got %.10f", tt.name, tt.expected, got)
		}
	}
}

func TestBilinearInterpolate_Rejects(t *testing.T) {
	cell := GridCell{X0: 0, X1: 10, Y0: 0, Y1: 10}
	for _, p := range [][2]float64{{-1, 5}, {11, 5}, {5, -1}, {5, 11}} {
		if _, err := BilinearInterpolate(cell, p[0], p[1]); err == nil {
			t.Errorf("expected error for point (%.1f, %.1f)", p[0], p[1])
		}
	}

	degenerate := GridCell{X0: 1, X1: 1, Y0: 0, Y1: 1}
	if _, err := BilinearInterpolate(degenerate, 1, 0.5); err == nil {
		t.Errorf("expected error for degenerate cell")
	}
}

func TestGrid2D_InterpolateAt(t *testing.T) {
	grid := &Grid2D{
		X: []float64{-10.0, 0.0, 10.0},
		Y: []float64{40.0, 50.0},
		Values: [][]float64{
			{10.0, 20.0, 30.0}, // y=40
			{12.0, 22.0, 32.0}, // y=50
		},
	}

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{-10.0, 40.0, 10.0},
		{10.0, 50.0, 32.0},
		{5.0, 40.0, 25.0},
		{-5.0, 45.0, 16.0},
	}
	for _, tt := range tests {
		got, err := grid.InterpolateAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("unexpected error at (%.1f, %.1f): %v", tt.x, tt.y, err)
		}
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("at (%.1f, %.1f): expected %.10f, got %.10f", tt.x, tt.y, tt.expected, got)
		}
	}

	if _, err := grid.InterpolateAt(11, 45); err == nil {
		t.Errorf("expected error outside the grid extent")
	}
	if !grid.Contains(0, 45) || grid.Contains(0, 51) {
		t.Errorf("Contains reported the wrong extent")
	}
}

func TestGrid2D_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid2D
		wantErr bool
	}{
		{
			name: "valid grid",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0, 2.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1, 2, 3}, {4, 5, 6}},
			},
		},
		{
			name: "single X coordinate",
			grid: &Grid2D{
				X:      []float64{0.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1}, {2}},
			},
			wantErr: true,
		},
		{
			name: "ragged rows",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0, 2.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1, 2, 3}, {3, 4}},
			},
			wantErr: true,
		},
		{
			name: "descending Y",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0},
				Y:      []float64{1.0, 0.0},
				Values: [][]float64{{1, 2}, {3, 4}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
