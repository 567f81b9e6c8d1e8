package metric

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/yairfalse/lookout/providers/aws"
	"github.com/yairfalse/lookout/telemetry"
	"github.com/yairfalse/lookout/types"
)

// Fetcher issues one region's batched metric query. Satisfied by
// aws.Fetcher.
type Fetcher interface {
	FetchRegionMetrics(ctx context.Context, creds types.Credentials, region types.Region, req aws.MetricRequest) ([]types.RawSeries, error)
}

// Store is the persistence surface a metric query needs.
type Store interface {
	GetAccount(ctx context.Context, accountID string) (types.Account, error)
	WatchedInstances(ctx context.Context, accountID string, kind types.Kind) ([]types.Instance, error)
}

// CredentialResolver decrypts an account's stored secret into usable
// credentials.
type CredentialResolver interface {
	Resolve(ctx context.Context, account types.Account) (types.Credentials, error)
}

// Service answers watched-metric queries across an account's regions.
type Service struct {
	store    Store
	resolver CredentialResolver
	fetcher  Fetcher
	logger   zerolog.Logger
}

func NewService(store Store, resolver CredentialResolver, fetcher Fetcher, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger.With().Str("component", "metric").Logger(),
	}
}

// Query fetches ordered series for every watched instance of the given
// kind. Regions are visited in the account's configured order; a fetch
// failure in any region fails the whole call so callers never mistake a
// partial result for a complete one. An account with nothing watched
// returns an empty, non-nil result once the query itself validates.
func (s *Service) Query(ctx context.Context, accountID string, q Query) ([]types.MetricSeries, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	watched, err := s.store.WatchedInstances(ctx, accountID, q.Kind)
	if err != nil {
		return nil, err
	}
	if len(watched) == 0 {
		return []types.MetricSeries{}, nil
	}

	creds, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return nil, err
	}

	byRegion := make(map[types.Region][]string)
	for _, inst := range watched {
		byRegion[inst.Region] = append(byRegion[inst.Region], inst.RemoteID)
	}

	attrs := metric.WithAttributes(attribute.String("kind", string(q.Kind)))

	var raw []types.RawSeries
	for _, region := range account.Regions {
		remoteIDs := byRegion[region]
		if len(remoteIDs) == 0 {
			continue
		}
		telemetry.MetricQueriesTotal.Add(ctx, 1, attrs)
		series, err := s.fetcher.FetchRegionMetrics(ctx, creds, region, aws.MetricRequest{
			RemoteIDs: remoteIDs,
			Kind:      q.Kind,
			Metric:    q.metricName(),
			Start:     q.Start,
			End:       q.End,
			Period:    q.Period,
			Statistic: q.Statistic,
		})
		if err != nil {
			telemetry.MetricQueryErrors.Add(ctx, 1, attrs)
			s.logger.Error().Err(err).
				Str("account_id", accountID).
				Str("region", string(region)).
				Msg("metric fetch failed")
			return nil, err
		}
		raw = append(raw, series...)
	}

	s.logger.Debug().
		Str("account_id", accountID).
		Str("kind", string(q.Kind)).
		Int("series", len(raw)).
		Msg("metrics fetched")
	return Normalize(raw), nil
}
