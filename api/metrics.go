package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/metric"
	"github.com/yairfalse/lookout/types"
)

const (
	defaultPeriod    = 300
	defaultStatistic = types.StatAverage
)

func (s *Server) handleMetrics(c *gin.Context) {
	q, err := parseMetricQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	series, err := s.metrics.Query(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

// parseMetricQuery decodes the query string; semantic checks live in
// metric.Query.Validate.
func parseMetricQuery(c *gin.Context) (metric.Query, error) {
	q := metric.Query{
		Kind:      types.Kind(c.Query("kind")),
		Metric:    types.MetricName(c.Query("metric")),
		Period:    defaultPeriod,
		Statistic: defaultStatistic,
	}

	var err error
	if q.Start, err = parseInstant(c.Query("start")); err != nil {
		return metric.Query{}, errs.Wrap(errs.KindValidation, err, "invalid start")
	}
	if q.End, err = parseInstant(c.Query("end")); err != nil {
		return metric.Query{}, errs.Wrap(errs.KindValidation, err, "invalid end")
	}
	if raw := c.Query("period"); raw != "" {
		period, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return metric.Query{}, errs.Wrap(errs.KindValidation, err, "invalid period")
		}
		q.Period = int32(period)
	}
	if raw := c.Query("statistic"); raw != "" {
		q.Statistic = types.Statistic(raw)
	}
	if q.Kind == types.KindCompute && q.Metric == "" {
		q.Metric = types.MetricCPUUtilization
	}
	return q, nil
}

func parseInstant(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
