package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoefficientsAt_ExactAtEpochs(t *testing.T) {
	table := threeEpochTable(t)

	for i, epoch := range table.Epochs() {
		got := table.CoefficientsAt(epoch)
		require.Len(t, got, PackedLength(table.MaxDegree()))

		stored := table.Coefficients(i)
		for k := range got {
			var want float64
			if k < len(stored) {
				want = stored[k]
			}
			// Bitwise equality, not a tolerance.
			assert.Equal(t, want, got[k], "epoch %g, coefficient %d", epoch, k)
		}
	}
}

func TestCoefficientsAt_Interpolation(t *testing.T) {
	table := threeEpochTable(t)

	got := table.CoefficientsAt(1902.5)
	assert.InDelta(t, -30950.0, got[0], 1e-9)
	assert.InDelta(t, -2050.0, got[1], 1e-9)
	assert.InDelta(t, 5850.0, got[2], 1e-9)
	// Degree 2 is absent at both ends of the segment.
	for k := 3; k < len(got); k++ {
		assert.Zero(t, got[k])
	}

	// 1905 carries no degree 2, so it ramps up from zero.
	got = table.CoefficientsAt(1907.5)
	assert.InDelta(t, -30850.0, got[0], 1e-9)
	assert.InDelta(t, -250.0, got[3], 1e-9)
	assert.InDelta(t, 100.0, got[7], 1e-9)
}

func TestCoefficientsAt_Extrapolation(t *testing.T) {
	table := threeEpochTable(t)

	// Above the last epoch the 1905-1910 slope continues.
	got := table.CoefficientsAt(1915)
	assert.InDelta(t, -30700.0, got[0], 1e-9)
	assert.InDelta(t, -1000.0, got[3], 1e-9)

	// Below the first epoch the 1900-1905 slope runs backwards.
	got = table.CoefficientsAt(1895)
	assert.InDelta(t, -31100.0, got[0], 1e-9)
	assert.InDelta(t, -1900.0, got[1], 1e-9)
}

func TestCoefficientsAt_SingleEpoch(t *testing.T) {
	table, err := NewCoefficientTable("ONE", []float64{2020}, [][]float64{packed(1, 1, 1)}, []int{1})
	require.NoError(t, err)

	for _, date := range []float64{1900, 2020, 2100} {
		assert.Equal(t, GaussCoefficientVector{1, 2, 3}, table.CoefficientsAt(date))
	}
}

func TestEpochStart(t *testing.T) {
	table, err := NewCoefficientTable(
		"WIN",
		[]float64{1900, 1905, 1910, 1915, 1920},
		[][]float64{packed(1, 0, 1), packed(1, 5, 1), packed(1, 10, 1), packed(1, 15, 1), packed(1, 20, 1)},
		[]int{1, 1, 1, 1, 1},
	)
	require.NoError(t, err)

	tests := []struct {
		date float64
		want float64
	}{
		{1900, 1900},
		{1903.7, 1900},
		{1905, 1905},
		{1917.3, 1915},
		{1920, 1920},
		{1924.9, 1920},
		{1899, 1895},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.EpochStart(tt.date), "EpochStart(%g)", tt.date)
	}
}

func TestSecularVariation(t *testing.T) {
	table := threeEpochTable(t)

	w := table.SecularVariation(1907.3)
	assert.Equal(t, 1905.0, w.Start)
	assert.Equal(t, table.CoefficientsAt(1905), w.MainAtStart)

	require.Len(t, w.SV, PackedLength(2))
	assert.InDelta(t, 20.0, w.SV[0], 1e-9)
	assert.InDelta(t, -20.0, w.SV[1], 1e-9)
	assert.InDelta(t, -100.0, w.SV[3], 1e-9)

	// Constant within a window.
	assert.Equal(t, w.SV, table.SecularVariation(1909.99).SV)
	assert.NotEqual(t, w.SV, table.SecularVariation(1902).SV)
}
