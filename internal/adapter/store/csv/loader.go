// Package csv loads coefficient tables saved in the column layout of the
// published IGRF coefficient tables:
//
//	g/h,n,m,1900.0,1905.0,...,2020.0,2020-25
//	g,1,0,-31543,-31464,...,-29404.8,5.7
//	h,1,1,5922,5909,...,4652.5,-25.9
//
// A trailing column headed "YYYY-YY" holds the predictive secular variation
// in nT/yr. It becomes one more epoch five years after the last, which is
// how SHC files carry the prediction.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.ngs.io/geomag-api/internal/domain"
)

// LoadFile parses a CSV coefficient table. The model is named after the file
// without its extension.
func LoadFile(path string) (*domain.CoefficientTable, error) {
	//nolint:gosec // G304: path comes from the configured models directory.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Base(path)
	return Parse(file, strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base))))
}

type row struct {
	h      bool
	n, m   int
	values []float64
	line   int
}

// Parse reads a CSV coefficient table named name. As for SHC files, each
// epoch keeps the highest degree that carries a non-zero coefficient.
func Parse(r io.Reader, name string) (*domain.CoefficientTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	malformed := func(line int, format string, args ...any) error {
		return &domain.MalformedModelError{Model: name, Line: line, Reason: fmt.Sprintf(format, args...)}
	}

	// Read header.
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, malformed(0, "empty file")
		}
		return nil, &domain.MalformedModelError{Model: name, Reason: "failed to read CSV header", Err: err}
	}
	line, _ := reader.FieldPos(0)

	// Validate header.
	expectedHeaders := []string{"g/h", "n", "m"}
	if len(header) < len(expectedHeaders)+1 {
		return nil, malformed(line, "expected columns %v followed by epochs, got %v", expectedHeaders, header)
	}
	for i, h := range expectedHeaders {
		if !strings.EqualFold(strings.TrimSpace(header[i]), h) {
			return nil, malformed(line, "expected column %d to be %s, got %s", i+1, h, header[i])
		}
	}

	epochs, hasSV, err := parseEpochs(header[len(expectedHeaders):])
	if err != nil {
		return nil, malformed(line, "%v", err)
	}

	// Read data rows.
	var rows []row
	nmax := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError carries the line.
			return nil, &domain.MalformedModelError{Model: name, Reason: "failed to read CSV record", Err: err}
		}
		line, _ := reader.FieldPos(0)

		rw, err := parseRow(record)
		if err != nil {
			return nil, malformed(line, "%v", err)
		}
		rw.line = line
		rows = append(rows, rw)
		nmax = max(nmax, rw.n)
	}
	if len(rows) == 0 {
		return nil, malformed(0, "no coefficients")
	}

	nEpochs := len(epochs)
	if hasSV {
		nEpochs--
	}
	coeffs := make([][]float64, len(epochs))
	for i := range coeffs {
		coeffs[i] = make([]float64, domain.PackedLength(nmax))
	}
	seen := make([]bool, domain.PackedLength(nmax))

	for _, rw := range rows {
		k := domain.PackedIndex(rw.n, rw.m)
		if rw.h {
			k++
		}
		if seen[k] {
			return nil, malformed(rw.line, "duplicate coefficient %s(%d, %d)", kind(rw.h), rw.n, rw.m)
		}
		seen[k] = true

		for i := range nEpochs {
			coeffs[i][k] = rw.values[i]
		}
		if hasSV {
			coeffs[nEpochs][k] = rw.values[nEpochs-1] + domain.SVWindowYears*rw.values[nEpochs]
		}
	}
	for n := 1; n <= nmax; n++ {
		for m := 0; m <= n; m++ {
			if !seen[domain.PackedIndex(n, m)] {
				return nil, malformed(0, "missing coefficient g(%d, %d)", n, m)
			}
			if m > 0 && !seen[domain.PackedIndex(n, m)+1] {
				return nil, malformed(0, "missing coefficient h(%d, %d)", n, m)
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

// parseEpochs reads the epoch columns. A final "YYYY-YY" column is the
// secular variation and is returned as the epoch five years after the last.
func parseEpochs(cols []string) ([]float64, bool, error) {
	epochs := make([]float64, 0, len(cols)+1)
	hasSV := false
	for i, c := range cols {
		c = strings.TrimSpace(c)
		v, err := strconv.ParseFloat(c, 64)
		if err == nil {
			epochs = append(epochs, v)
			continue
		}
		if i == len(cols)-1 && i > 0 && strings.Contains(c, "-") {
			hasSV = true
			epochs = append(epochs, epochs[len(epochs)-1]+domain.SVWindowYears)
			continue
		}
		return nil, false, fmt.Errorf("invalid epoch %q in column %d", c, i+4)
	}
	return epochs, hasSV, nil
}

func parseRow(record []string) (row, error) {
	var rw row
	switch strings.ToLower(strings.TrimSpace(record[0])) {
	case "g":
	case "h":
		rw.h = true
	default:
		return rw, fmt.Errorf("coefficient kind must be g or h, got %q", record[0])
	}

	var err error
	if rw.n, err = strconv.Atoi(strings.TrimSpace(record[1])); err != nil {
		return rw, fmt.Errorf("invalid degree: %w", err)
	}
	if rw.m, err = strconv.Atoi(strings.TrimSpace(record[2])); err != nil {
		return rw, fmt.Errorf("invalid order: %w", err)
	}
	if rw.n < 1 || rw.m < 0 || rw.m > rw.n {
		return rw, fmt.Errorf("invalid degree/order (%d, %d)", rw.n, rw.m)
	}
	if rw.h && rw.m == 0 {
		return rw, fmt.Errorf("h(%d, 0) does not exist", rw.n)
	}

	rw.values = make([]float64, len(record)-3)
	for i, s := range record[3:] {
		if rw.values[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return rw, fmt.Errorf("invalid value in column %d: %w", i+4, err)
		}
	}
	return rw, nil
}

func kind(h bool) string {
	if h {
		return "h"
	}
	return "g"
}
