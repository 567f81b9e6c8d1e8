package metric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/lookout/types"
)

func ts(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func TestNormalizeSortsAscending(t *testing.T) {
	// GetMetricData returns newest-first by default.
	raw := []types.RawSeries{{
		QueryID:    "q0",
		RemoteID:   "i-1",
		Label:      "CPUUtilization",
		Region:     "us_east_1",
		Timestamps: []time.Time{ts(2, 0), ts(1, 12), ts(1, 0)},
		Values:     []float64{3, 2, 1},
	}}

	series := Normalize(raw)
	require.Len(t, series, 1)
	assert.Equal(t, "q0", series[0].QueryID)
	assert.Equal(t, "i-1", series[0].RemoteID)
	assert.Equal(t, types.Region("us_east_1"), series[0].Region)
	assert.Equal(t, []types.Point{
		{Timestamp: ts(1, 0), Value: 1},
		{Timestamp: ts(1, 12), Value: 2},
		{Timestamp: ts(2, 0), Value: 3},
	}, series[0].Points)
}

func TestNormalizeEmptyArraysPassThrough(t *testing.T) {
	raw := []types.RawSeries{{QueryID: "q0", RemoteID: "i-1", Region: "us_east_1"}}

	series := Normalize(raw)
	require.Len(t, series, 1)
	assert.Equal(t, "i-1", series[0].RemoteID)
	assert.Empty(t, series[0].Points)
	assert.NotNil(t, series[0].Points)
}

func TestNormalizeZipsToShorterArray(t *testing.T) {
	raw := []types.RawSeries{{
		QueryID:    "q0",
		RemoteID:   "i-1",
		Timestamps: []time.Time{ts(1, 0), ts(2, 0)},
		Values:     []float64{1},
	}}

	series := Normalize(raw)
	require.Len(t, series, 1)
	require.Len(t, series[0].Points, 1)
	assert.Equal(t, ts(1, 0), series[0].Points[0].Timestamp)
}

func TestNormalizePreservesSeriesOrder(t *testing.T) {
	raw := []types.RawSeries{
		{QueryID: "q0", RemoteID: "i-1"},
		{QueryID: "q1", RemoteID: "i-2"},
	}

	series := Normalize(raw)
	require.Len(t, series, 2)
	assert.Equal(t, "i-1", series[0].RemoteID)
	assert.Equal(t, "i-2", series[1].RemoteID)
}
