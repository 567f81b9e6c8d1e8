// Package metric retrieves CloudWatch series for an account's watched
// instances and normalizes the provider's parallel-array responses into
// ordered time series.
package metric

import (
	"time"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// minPeriod is the finest granularity GetMetricData accepts for the
// namespaces used here.
const minPeriod = 60

// Query is one account-level metric request. Compute instances always
// report CPUUtilization; the Metric field only matters for database kinds.
type Query struct {
	Kind      types.Kind
	Metric    types.MetricName
	Start     time.Time
	End       time.Time
	Period    int32
	Statistic types.Statistic
}

// Validate checks the query shape. It runs before any store lookup, so a
// malformed request fails even when the account has nothing watched.
func (q Query) Validate() error {
	if q.Kind != types.KindCompute && q.Kind != types.KindDatabase {
		return errs.New(errs.KindValidation, "unknown instance kind %q", q.Kind)
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return errs.New(errs.KindValidation, "start and end are required")
	}
	if !q.Start.Before(q.End) {
		return errs.New(errs.KindValidation, "start must be before end")
	}
	if q.Period < minPeriod || q.Period%minPeriod != 0 {
		return errs.New(errs.KindValidation, "period must be a positive multiple of %d seconds", minPeriod)
	}
	if _, err := types.ParseStatistic(string(q.Statistic)); err != nil {
		return errs.Wrap(errs.KindValidation, err, "invalid statistic")
	}
	if q.Kind == types.KindDatabase {
		if _, err := types.ParseDatabaseMetric(string(q.Metric)); err != nil {
			return errs.Wrap(errs.KindValidation, err, "invalid metric")
		}
	}
	return nil
}

// metricName resolves the CloudWatch metric for the query's kind.
func (q Query) metricName() types.MetricName {
	if q.Kind == types.KindCompute {
		return types.MetricCPUUtilization
	}
	return q.Metric
}
