package metric

import (
	"sort"

	"github.com/yairfalse/lookout/types"
)

// Normalize zips each raw series' parallel timestamp and value arrays into
// points sorted ascending by timestamp. The provider returns newest-first
// and may split a series across response pages, so input order means
// nothing here. A series with a missing array keeps its identity and an
// empty point list.
func Normalize(raw []types.RawSeries) []types.MetricSeries {
	out := make([]types.MetricSeries, 0, len(raw))
	for _, r := range raw {
		n := len(r.Timestamps)
		if len(r.Values) < n {
			n = len(r.Values)
		}
		points := make([]types.Point, 0, n)
		for i := 0; i < n; i++ {
			points = append(points, types.Point{Timestamp: r.Timestamps[i], Value: r.Values[i]})
		}
		sort.Slice(points, func(i, j int) bool {
			return points[i].Timestamp.Before(points[j].Timestamp)
		})
		out = append(out, types.MetricSeries{
			QueryID:  r.QueryID,
			RemoteID: r.RemoteID,
			Label:    r.Label,
			Region:   r.Region,
			Points:   points,
		})
	}
	return out
}
