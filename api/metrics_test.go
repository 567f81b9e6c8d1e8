package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/lookout/types"
)

const metricsWindow = "start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z"

func TestMetricsDefaultsAndPassThrough(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)
	ts.querier.series = []types.MetricSeries{{
		QueryID:  "q0",
		RemoteID: "i-1",
		Region:   "us_east_1",
		Points:   []types.Point{{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 42}},
	}}

	rec := ts.do(t, http.MethodGet, "/v1/accounts/"+account.ID+"/metrics?kind=compute&"+metricsWindow, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Omitted knobs fall back to Average over five minutes.
	assert.Equal(t, types.StatAverage, ts.querier.query.Statistic)
	assert.Equal(t, int32(300), ts.querier.query.Period)
	assert.Equal(t, types.MetricCPUUtilization, ts.querier.query.Metric)

	var resp struct {
		Series []types.MetricSeries `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Series, 1)
	assert.Equal(t, "i-1", resp.Series[0].RemoteID)
}

func TestMetricsExplicitKnobs(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)

	rec := ts.do(t, http.MethodGet,
		"/v1/accounts/"+account.ID+"/metrics?kind=database&metric=ReadIOPS&period=120&statistic=Maximum&"+metricsWindow, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, types.KindDatabase, ts.querier.query.Kind)
	assert.Equal(t, types.MetricReadIOPS, ts.querier.query.Metric)
	assert.Equal(t, int32(120), ts.querier.query.Period)
	assert.Equal(t, types.StatMaximum, ts.querier.query.Statistic)
}

func TestMetricsRejectsBadPeriod(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)

	rec := ts.do(t, http.MethodGet, "/v1/accounts/"+account.ID+"/metrics?kind=compute&period=90&"+metricsWindow, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	kind, _ := decodeError(t, rec)
	assert.Equal(t, "validation", kind)
}

func TestMetricsRejectsMalformedStart(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)

	rec := ts.do(t, http.MethodGet, "/v1/accounts/"+account.ID+"/metrics?kind=compute&start=yesterday&end=2024-01-02T00:00:00Z", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsRejectsReversedWindow(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)

	rec := ts.do(t, http.MethodGet,
		"/v1/accounts/"+account.ID+"/metrics?kind=compute&start=2024-01-02T00:00:00Z&end=2024-01-01T00:00:00Z", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
