package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDecimalYear(t *testing.T) {
	tests := []struct {
		t    time.Time
		want float64
	}{
		{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 2020},
		{time.Date(2021, 7, 2, 12, 0, 0, 0, time.UTC), 2021 + 182.5/365},
		{time.Date(2020, 7, 2, 0, 0, 0, 0, time.UTC), 2020 + 183.0/366},
		{time.Date(2020, 1, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600)), 2020},
	}
	for _, tt := range tests {
		if got := DecimalYear(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("DecimalYear(%v) = %.12f, want %.12f", tt.t, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2017.3", 2017.3},
		{" 1965 ", 1965},
		{"2021-01-01", 2021},
		{"2021-01-01T00:00:00Z", 2021},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tt.in, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ParseDate(%q) = %g, want %g", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"", "yesterday", "2021/01/01"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrDomain) {
			t.Errorf("ParseDate(%q) error = %v, want ErrDomain", in, err)
		}
	}
}
