// Package shc reads spherical harmonic coefficient (SHC) files, the text
// format in which IGRF generations are distributed.
//
// A file starts with optional '#' comment lines, then a header of seven
// numbers
//
//	nmin nmax N order step start_year end_year
//
// followed by the N epochs (decimal years) and one row per coefficient:
//
//	n m v_1 ... v_N
//
// where a negative m marks the h_n^|m| coefficient.
package shc

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.ngs.io/geomag-api/internal/domain"
)

// Header is the parameter line of an SHC file.
type Header struct {
	MinDegree int
	MaxDegree int
	Epochs    int
	Order     int // Spline order; 2 for the piecewise-linear IGRF.
	Step      int
	StartYear float64
	EndYear   float64
}

// LoadFile parses an SHC file. The model is named after the file without its
// extension (e.g., "IGRF14").
func LoadFile(path string) (*domain.CoefficientTable, error) {
	//nolint:gosec // G304: path comes from the configured models directory.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SHC file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return Parse(file, ModelName(path))
}

// ModelName derives a model name from an SHC file path.
func ModelName(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Parse reads an SHC document into a coefficient table named name.
//
// The degree stored for each epoch is the highest degree carrying a non-zero
// coefficient, so epochs published with zero-padded high degrees (IGRF before
// 2000 stops at degree 10) keep their true truncation.
func Parse(r io.Reader, name string) (*domain.CoefficientTable, error) {
	p := &parser{name: name, scanner: bufio.NewScanner(r)}
	p.scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	hdr, err := p.header()
	if err != nil {
		return nil, err
	}
	epochs, err := p.epochs(hdr.Epochs)
	if err != nil {
		return nil, err
	}

	nmax := hdr.MaxDegree
	coeffs := make([][]float64, len(epochs))
	for i := range coeffs {
		coeffs[i] = make([]float64, domain.PackedLength(nmax))
	}
	seen := make([]bool, domain.PackedLength(nmax))

	for {
		fields, ok := p.next()
		if !ok {
			break
		}
		if len(fields) != hdr.Epochs+2 {
			return nil, p.errorf("expected %d columns, got %d", hdr.Epochs+2, len(fields))
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, p.wrap("invalid degree", err)
		}
		m, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, p.wrap("invalid order", err)
		}
		if n < hdr.MinDegree || n > nmax || abs(m) > n || n < 1 {
			return nil, p.errorf("coefficient (%d, %d) outside degrees %d..%d", n, m, hdr.MinDegree, nmax)
		}

		k := domain.PackedIndex(n, abs(m))
		if m < 0 {
			k++
		}
		if seen[k] {
			return nil, p.errorf("duplicate coefficient (%d, %d)", n, m)
		}
		seen[k] = true

		for i, f := range fields[2:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, p.wrap(fmt.Sprintf("invalid value for (%d, %d)", n, m), err)
			}
			coeffs[i][k] = v
		}
	}
	if err := p.scanner.Err(); err != nil {
		return nil, &domain.MalformedModelError{Model: name, Reason: "read failed", Err: err}
	}

	for n := hdr.MinDegree; n <= nmax; n++ {
		for m := 0; m <= n; m++ {
			k := domain.PackedIndex(n, m)
			if !seen[k] || (m > 0 && !seen[k+1]) {
				return nil, &domain.MalformedModelError{
					Model:  name,
					Reason: fmt.Sprintf("missing coefficient for degree %d order %d", n, m),
				}
			}
		}
	}

	degrees := make([]int, len(coeffs))
	for i, c := range coeffs {
		degrees[i] = domain.EffectiveDegree(c)
		coeffs[i] = c[:domain.PackedLength(degrees[i])]
	}

	return domain.NewCoefficientTable(name, epochs, coeffs, degrees)
}

type parser struct {
	name    string
	scanner *bufio.Scanner
	line    int
}

// next returns the fields of the next non-blank, non-comment line.
func (p *parser) next() ([]string, bool) {
	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return strings.Fields(text), true
	}
	return nil, false
}

func (p *parser) header() (Header, error) {
	fields, ok := p.next()
	if !ok {
		return Header{}, p.errorf("missing header line")
	}
	if len(fields) != 7 {
		return Header{}, p.errorf("header must hold 7 numbers, got %d fields", len(fields))
	}

	// Years are often written as decimals ("1900.0"); the counts must be
	// whole numbers.
	var v [7]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Header{}, p.wrap("invalid header", err)
		}
		if i < 5 && (x != math.Trunc(x) || math.Abs(x) > 1e6) {
			return Header{}, p.errorf("header field %d must be a whole number, got %s", i+1, f)
		}
		v[i] = x
	}
	h := Header{
		MinDegree: int(v[0]),
		MaxDegree: int(v[1]),
		Epochs:    int(v[2]),
		Order:     int(v[3]),
		Step:      int(v[4]),
		StartYear: v[5],
		EndYear:   v[6],
	}

	switch {
	case h.MinDegree < 1 || h.MaxDegree < h.MinDegree:
		return Header{}, p.errorf("invalid degree range %d..%d", h.MinDegree, h.MaxDegree)
	case h.Epochs < 1:
		return Header{}, p.errorf("invalid epoch count %d", h.Epochs)
	}
	return h, nil
}

// epochs reads n epoch values, which may be spread over several lines.
func (p *parser) epochs(n int) ([]float64, error) {
	out := make([]float64, 0, n)
	for len(out) < n {
		fields, ok := p.next()
		if !ok {
			return nil, p.errorf("expected %d epochs, found %d", n, len(out))
		}
		if len(out)+len(fields) > n {
			return nil, p.errorf("expected %d epochs, found more", n)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, p.wrap("invalid epoch", err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &domain.MalformedModelError{Model: p.name, Line: p.line, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) wrap(reason string, err error) error {
	return &domain.MalformedModelError{Model: p.name, Line: p.line, Reason: reason, Err: err}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
