package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	before := testutil.ToFloat64(EvaluatedPointsTotal.WithLabelValues("TEST"))
	EvaluatedPointsTotal.WithLabelValues("TEST").Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(EvaluatedPointsTotal.WithLabelValues("TEST")))

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `geomag_evaluated_points_total{model="TEST"}`)
}
