package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geomag-api/internal/domain"
)

func TestRange_Values(t *testing.T) {
	tests := []struct {
		r    Range
		want []float64
	}{
		{Range{Start: 0, Step: 3, End: 10}, []float64{0, 3, 6, 9}},
		{Range{Start: 0, Step: 5, End: 10}, []float64{0, 5}},
		{Range{Start: 10, Step: -5, End: 0}, []float64{10, 5}},
		{Range{Start: -90, Step: 180, End: 90}, []float64{-90}},
	}
	for _, tt := range tests {
		got, err := tt.r.Values()
		require.NoError(t, err, "%+v", tt.r)
		assert.Equal(t, tt.want, got, "%+v", tt.r)
		assert.Equal(t, len(tt.want), tt.r.Len(), "%+v", tt.r)
	}

	for _, r := range []Range{
		{Start: 0, Step: 0, End: 10},
		{Start: 0, Step: -1, End: 10},
		{Start: 0, Step: 11, End: 10},
		{Start: 5, Step: 1, End: 5},
	} {
		_, err := r.Values()
		assert.True(t, errors.Is(err, ErrInvalidRequest), "%+v: %v", r, err)
	}
}

func TestSeriesQuery(t *testing.T) {
	loc := domain.Location{ColatitudeDeg: 45}

	q, err := SeriesQuery(2000, 2003, loc)
	require.NoError(t, err)
	require.Len(t, q, 4)
	assert.Equal(t, 2003.0, q[3].Date)

	q, err = SeriesQuery(2000.5, 2003, loc)
	require.NoError(t, err)
	require.Len(t, q, 3)
	assert.Equal(t, 2002.5, q[2].Date)

	q, err = SeriesQuery(2020, 2020, loc)
	require.NoError(t, err)
	assert.Len(t, q, 1)

	_, err = SeriesQuery(2001, 2000, loc)
	assert.Error(t, err)
}

func TestGridQuery(t *testing.T) {
	q, err := GridQuery(2020, []float64{10, 20}, []float64{1, 2, 3}, func(lat, lon float64) (domain.Location, error) {
		return domain.Location{ColatitudeDeg: 90 - lat, LongitudeDeg: lon}, nil
	})
	require.NoError(t, err)
	require.Len(t, q, 6)
	assert.Equal(t, 70.0, q[3].Location.ColatitudeDeg)
	assert.Equal(t, 1.0, q[3].Location.LongitudeDeg)

	_, err = GridQuery(2020, []float64{0}, []float64{0}, func(float64, float64) (domain.Location, error) {
		return domain.Location{}, ErrInvalidRequest
	})
	assert.Error(t, err)
}
