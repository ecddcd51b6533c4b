package usecase

import (
	"fmt"
	"math"

	"go.ngs.io/geomag-api/internal/domain"
)

// Range is an arange-style axis: Start inclusive, End exclusive, signed Step.
type Range struct {
	Start float64 `json:"start"`
	Step  float64 `json:"step"`
	End   float64 `json:"end"`
}

// Values expands the range. The step must be non-zero, point from Start
// towards End and not exceed the span.
func (r Range) Values() ([]float64, error) {
	for _, v := range []float64{r.Start, r.Step, r.End} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: range values must be finite", ErrInvalidRequest)
		}
	}
	span := r.End - r.Start
	switch {
	case r.Step == 0:
		return nil, fmt.Errorf("%w: step must be non-zero", ErrInvalidRequest)
	case span == 0:
		return nil, fmt.Errorf("%w: range start and end must differ", ErrInvalidRequest)
	case math.Signbit(span) != math.Signbit(r.Step):
		return nil, fmt.Errorf("%w: step %g does not lead from %g to %g", ErrInvalidRequest, r.Step, r.Start, r.End)
	case math.Abs(r.Step) > math.Abs(span):
		return nil, fmt.Errorf("%w: step %g exceeds the range span %g", ErrInvalidRequest, r.Step, span)
	}

	n := int(math.Ceil(span / r.Step))
	out := make([]float64, n)
	for k := range out {
		out[k] = r.Start + float64(k)*r.Step
	}
	return out, nil
}

// Len returns the number of values without expanding the range, or 0 for an
// invalid range.
func (r Range) Len() int {
	if r.Step == 0 || math.Signbit(r.End-r.Start) != math.Signbit(r.Step) {
		return 0
	}
	n := math.Ceil((r.End - r.Start) / r.Step)
	if math.IsNaN(n) || n < 0 || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

// SpotQuery is a single evaluation.
func SpotQuery(date float64, loc domain.Location) []domain.Query {
	return []domain.Query{{Date: date, Location: loc}}
}

// SeriesQuery evaluates one location at start, start+1, ... up to and
// including end.
func SeriesQuery(start, end float64, loc domain.Location) ([]domain.Query, error) {
	if end < start {
		return nil, fmt.Errorf("%w: end date %g is before start date %g", ErrInvalidRequest, end, start)
	}
	n := int(math.Floor(end-start)) + 1
	out := make([]domain.Query, n)
	for k := range out {
		out[k] = domain.Query{Date: start + float64(k), Location: loc}
	}
	return out, nil
}

// GridQuery evaluates one date on a latitude/longitude grid, row-major by
// latitude. locate maps each (lat, lon) node to a location.
func GridQuery(date float64, lats, lons []float64, locate func(lat, lon float64) (domain.Location, error)) ([]domain.Query, error) {
	out := make([]domain.Query, 0, len(lats)*len(lons))
	for _, lat := range lats {
		for _, lon := range lons {
			loc, err := locate(lat, lon)
			if err != nil {
				return nil, err
			}
			out = append(out, domain.Query{Date: date, Location: loc})
		}
	}
	return out, nil
}
