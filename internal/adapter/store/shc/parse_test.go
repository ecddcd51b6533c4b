package shc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geomag-api/internal/domain"
)

func TestLoadFile(t *testing.T) {
	table, err := LoadFile("testdata/TEST2.shc")
	require.NoError(t, err)

	assert.Equal(t, "TEST2", table.Name())
	assert.Equal(t, []float64{1995, 2000, 2005}, table.Epochs())
	assert.Equal(t, 2, table.MaxDegree())

	// The all-zero degree 2 of 1995 is truncated away.
	assert.Equal(t, 1, table.MaxDegreeAt(0))
	assert.Equal(t, 2, table.MaxDegreeAt(1))

	c := table.Coefficients(2)
	require.Len(t, c, domain.PackedLength(2))
	assert.Equal(t, -29554.63, c.G(1, 0))
	assert.Equal(t, 5077.99, c.H(1, 1))
	assert.Equal(t, 1657.76, c.G(2, 2))
	assert.Equal(t, -515.43, c.H(2, 2))
	assert.Equal(t, -2594.50, c.H(2, 1))
}

func TestParse_RowOrderIndependent(t *testing.T) {
	doc := `
 1 1 1 2 5 2020 2020
 2020.0
 1 -1 4652.5
 1  0 -29404.8
 1  1 -1450.9
`
	table, err := Parse(strings.NewReader(doc), "X")
	require.NoError(t, err)
	assert.Equal(t, domain.GaussCoefficientVector{-29404.8, -1450.9, 4652.5}, table.Coefficients(0))
}

func TestParse_EpochsOverSeveralLines(t *testing.T) {
	doc := "1 1 3 2 5 2000 2010\n2000.0 2005.0\n2010.0\n1 0 1 2 3\n1 1 4 5 6\n1 -1 7 8 9\n"
	table, err := Parse(strings.NewReader(doc), "X")
	require.NoError(t, err)
	assert.Equal(t, []float64{2000, 2005, 2010}, table.Epochs())
	assert.Equal(t, 8.0, table.Coefficients(1).H(1, 1))
}

func TestParse_DecimalHeaderYears(t *testing.T) {
	doc := " 1 1 2 2 5 1900.0 1905.0\n 1900.0 1905.0\n1 0 -31543 -31464\n1 1 -2298 -2298\n1 -1 5922 5909\n"
	table, err := Parse(strings.NewReader(doc), "X")
	require.NoError(t, err)
	assert.Equal(t, []float64{1900, 1905}, table.Epochs())
	assert.Equal(t, 5909.0, table.Coefficients(1).H(1, 1))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		line int
	}{
		{"empty", "# only a comment\n", 1},
		{"short header", "1 1 1 2 5 2020\n", 1},
		{"non-integer header", "1 1 x 2 5 2020 2020\n", 1},
		{"fractional degree", "1 1.5 1 2 5 2020 2020\n", 1},
		{"bad degree range", "2 1 1 2 5 2020 2020\n", 1},
		{"missing epochs", "1 1 2 2 5 2020 2025\n2020.0\n", 2},
		{"too many epochs", "1 1 1 2 5 2020 2020\n2020.0 2025.0\n", 2},
		{"wrong column count", "1 1 1 2 5 2020 2020\n2020.0\n1 0 1 2\n", 3},
		{"bad value", "1 1 1 2 5 2020 2020\n2020.0\n1 0 abc\n", 3},
		{"degree out of range", "1 1 1 2 5 2020 2020\n2020.0\n2 0 1\n", 3},
		{"order beyond degree", "1 1 1 2 5 2020 2020\n2020.0\n1 2 1\n", 3},
		{"duplicate row", "1 1 1 2 5 2020 2020\n2020.0\n1 0 1\n1 0 2\n", 4},
		{"missing h", "1 1 1 2 5 2020 2020\n2020.0\n1 0 1\n1 1 2\n", 0},
		{"decreasing epochs", "1 1 2 2 5 2020 2025\n2025.0 2020.0\n1 0 1 2\n1 1 1 2\n1 -1 1 2\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc), "BAD")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedModel), "got %v", err)

			var me *domain.MalformedModelError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, "BAD", me.Model)
			assert.Equal(t, tt.line, me.Line)
		})
	}
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "IGRF14", ModelName("/data/models/IGRF14.SHC"))
	assert.Equal(t, "IGRF13", ModelName("igrf13.shc"))
}
