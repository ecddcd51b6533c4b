package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DecimalYear converts a UTC instant to a decimal year, counting the
// fraction against the length of that calendar year.
func DecimalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	next := start.AddDate(1, 0, 0)
	return float64(t.Year()) + float64(t.Sub(start))/float64(next.Sub(start))
}

// ParseDate accepts a decimal year ("2020.5"), a calendar date
// ("2020-07-02") or an RFC3339 timestamp.
func ParseDate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return DecimalYear(t), nil
		}
	}
	return 0, fmt.Errorf("%w: date %q is not a decimal year, YYYY-MM-DD or RFC3339", ErrDomain, s)
}
