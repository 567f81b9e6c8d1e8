package types

import (
	"fmt"
	"time"
)

// Statistic is the aggregation CloudWatch applies when down-sampling raw
// data into a period bucket.
type Statistic string

const (
	StatAverage     Statistic = "Average"
	StatMinimum     Statistic = "Minimum"
	StatMaximum     Statistic = "Maximum"
	StatSum         Statistic = "Sum"
	StatSampleCount Statistic = "SampleCount"
)

// ParseStatistic validates a statistic string.
func ParseStatistic(s string) (Statistic, error) {
	switch Statistic(s) {
	case StatAverage, StatMinimum, StatMaximum, StatSum, StatSampleCount:
		return Statistic(s), nil
	}
	return "", fmt.Errorf("unknown statistic %q", s)
}

// MetricName names a CloudWatch metric. Compute instances are fixed to
// CPUUtilization; database instances choose from the RDS set.
type MetricName string

const (
	MetricCPUUtilization      MetricName = "CPUUtilization"
	MetricDatabaseConnections MetricName = "DatabaseConnections"
	MetricFreeableMemory      MetricName = "FreeableMemory"
	MetricFreeStorageSpace    MetricName = "FreeStorageSpace"
	MetricReadIOPS            MetricName = "ReadIOPS"
	MetricWriteIOPS           MetricName = "WriteIOPS"
	MetricReadLatency         MetricName = "ReadLatency"
	MetricWriteLatency        MetricName = "WriteLatency"
)

// databaseMetrics is the set selectable for database instances.
var databaseMetrics = map[MetricName]bool{
	MetricCPUUtilization:      true,
	MetricDatabaseConnections: true,
	MetricFreeableMemory:      true,
	MetricFreeStorageSpace:    true,
	MetricReadIOPS:            true,
	MetricWriteIOPS:           true,
	MetricReadLatency:         true,
	MetricWriteLatency:        true,
}

// ParseDatabaseMetric validates a metric name against the database set.
func ParseDatabaseMetric(s string) (MetricName, error) {
	if !databaseMetrics[MetricName(s)] {
		return "", fmt.Errorf("unknown database metric %q", s)
	}
	return MetricName(s), nil
}

// RawSeries is one entity's unprocessed provider response: parallel
// timestamp and value arrays that the normalizer zips and sorts.
type RawSeries struct {
	QueryID    string
	RemoteID   string
	Label      string
	Region     Region
	Timestamps []time.Time
	Values     []float64
}

// Point is one sample in a metric series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MetricSeries is one instance's ordered series within a single account-level
// metric call. QueryID is call-scoped and only correlates request entities to
// response entities; Region keeps cross-region series distinct.
type MetricSeries struct {
	QueryID  string  `json:"query_id"`
	RemoteID string  `json:"remote_id"`
	Label    string  `json:"label"`
	Region   Region  `json:"region"`
	Points   []Point `json:"points"`
}
