package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// maxQueriesPerCall is the GetMetricData per-request query cap.
const maxQueriesPerCall = 500

// namespaces and dimension names per instance kind.
var (
	namespaceByKind = map[types.Kind]string{
		types.KindCompute:  "AWS/EC2",
		types.KindDatabase: "AWS/RDS",
	}
	dimensionByKind = map[types.Kind]string{
		types.KindCompute:  "InstanceId",
		types.KindDatabase: "DBInstanceIdentifier",
	}
)

// MetricRequest is one region's batched metric query.
type MetricRequest struct {
	RemoteIDs []string
	Kind      types.Kind
	Metric    types.MetricName
	Start     time.Time
	End       time.Time
	Period    int32
	Statistic types.Statistic
}

// FetchRegionMetrics issues batched GetMetricData calls for every entity in
// one region. An empty entity set returns immediately without touching the
// remote API. Query ids are call-scoped (sequential index) and only exist
// to correlate request entities to response series.
func (f *Fetcher) FetchRegionMetrics(ctx context.Context, creds types.Credentials, region types.Region, req MetricRequest) ([]types.RawSeries, error) {
	if len(req.RemoteIDs) == 0 {
		return nil, nil
	}

	cfg, err := loadConfig(ctx, creds, region)
	if err != nil {
		return nil, errs.Wrap(errs.KindFetch, err, "cannot build client for %s", region.Wire())
	}
	client := f.newCloudWatch(cfg)

	namespace := namespaceByKind[req.Kind]
	dimension := dimensionByKind[req.Kind]

	// qN -> entity remote id, stable for the whole call
	queryIDs := make([]string, len(req.RemoteIDs))
	remoteByQueryID := make(map[string]string, len(req.RemoteIDs))
	for i, remoteID := range req.RemoteIDs {
		queryIDs[i] = fmt.Sprintf("q%d", i)
		remoteByQueryID[queryIDs[i]] = remoteID
	}

	seriesByQueryID := make(map[string]*types.RawSeries)

	// Chunk the entity set; the API caps queries per request
	for offset := 0; offset < len(req.RemoteIDs); offset += maxQueriesPerCall {
		end := offset + maxQueriesPerCall
		if end > len(req.RemoteIDs) {
			end = len(req.RemoteIDs)
		}

		queries := make([]cwtypes.MetricDataQuery, 0, end-offset)
		for i := offset; i < end; i++ {
			queries = append(queries, cwtypes.MetricDataQuery{
				Id: aws.String(queryIDs[i]),
				MetricStat: &cwtypes.MetricStat{
					Metric: &cwtypes.Metric{
						Namespace:  aws.String(namespace),
						MetricName: aws.String(string(req.Metric)),
						Dimensions: []cwtypes.Dimension{{
							Name:  aws.String(dimension),
							Value: aws.String(req.RemoteIDs[i]),
						}},
					},
					Period: aws.Int32(req.Period),
					Stat:   aws.String(string(req.Statistic)),
				},
				ReturnData: aws.Bool(true),
			})
		}

		paginator := cloudwatch.NewGetMetricDataPaginator(client, &cloudwatch.GetMetricDataInput{
			StartTime:         aws.Time(req.Start),
			EndTime:           aws.Time(req.End),
			MetricDataQueries: queries,
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fetchError(region, err, "get metric data")
			}
			for _, result := range page.MetricDataResults {
				accumulateSeries(seriesByQueryID, result, remoteByQueryID, region)
			}
		}
	}

	// Deterministic output: entity order, not response order
	var series []types.RawSeries
	for _, queryID := range queryIDs {
		if s, ok := seriesByQueryID[queryID]; ok {
			series = append(series, *s)
		}
	}
	return series, nil
}

// accumulateSeries folds one response page's result into the per-query
// series; a query's data may span pages.
func accumulateSeries(acc map[string]*types.RawSeries, result cwtypes.MetricDataResult, remoteByQueryID map[string]string, region types.Region) {
	queryID := aws.ToString(result.Id)
	s, ok := acc[queryID]
	if !ok {
		s = &types.RawSeries{
			QueryID:  queryID,
			RemoteID: remoteByQueryID[queryID],
			Label:    aws.ToString(result.Label),
			Region:   region,
		}
		acc[queryID] = s
	}
	// Missing arrays pass through as an empty series rather than dropping
	// the entity; callers must handle zero-point results
	if result.Timestamps == nil || result.Values == nil {
		return
	}
	s.Timestamps = append(s.Timestamps, result.Timestamps...)
	s.Values = append(s.Values, result.Values...)
}
