package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/yairfalse/lookout/telemetry"
	"github.com/yairfalse/lookout/types"
)

// Lister fetches the live inventory of one region. Satisfied by
// aws.Fetcher.
type Lister interface {
	ListComputeInstances(ctx context.Context, creds types.Credentials, region types.Region) ([]types.RemoteInstance, error)
	ListDatabaseInstances(ctx context.Context, creds types.Credentials, region types.Region) ([]types.RemoteInstance, error)
}

// Store is the persistence surface a refresh needs.
type Store interface {
	GetAccount(ctx context.Context, accountID string) (types.Account, error)
	PersistedKeys(ctx context.Context, accountID string, kind types.Kind) ([]types.InstanceKey, error)
	ApplyPlan(ctx context.Context, accountID string, plan types.ReconcilePlan) error
	LockAccount(accountID string) func()
}

// CredentialResolver decrypts an account's stored secret into usable
// credentials.
type CredentialResolver interface {
	Resolve(ctx context.Context, account types.Account) (types.Credentials, error)
}

// Service runs inventory refreshes.
type Service struct {
	store    Store
	resolver CredentialResolver
	lister   Lister
	logger   zerolog.Logger
}

func NewService(store Store, resolver CredentialResolver, lister Lister, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		lister:   lister,
		logger:   logger.With().Str("component", "inventory").Logger(),
	}
}

// RefreshResult summarizes what a refresh changed.
type RefreshResult struct {
	AccountID string     `json:"account_id"`
	Kind      types.Kind `json:"kind"`
	Created   int        `json:"created"`
	Updated   int        `json:"updated"`
	Deleted   int        `json:"deleted"`
}

// Refresh fetches every region of the account for one kind and reconciles
// the store against what the provider reported. Any region failing to
// fetch aborts the whole refresh before anything is written: a partial
// view must never drive deletes.
func (s *Service) Refresh(ctx context.Context, accountID string, kind types.Kind) (RefreshResult, error) {
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("kind", string(kind)))
	telemetry.RefreshesTotal.Add(ctx, 1, attrs)

	result, err := s.refresh(ctx, accountID, kind)
	telemetry.RefreshDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		telemetry.RefreshErrors.Add(ctx, 1, attrs)
		s.logger.Error().Err(err).
			Str("account_id", accountID).
			Str("kind", string(kind)).
			Msg("refresh failed")
		return RefreshResult{}, err
	}

	reconciled := int64(result.Created + result.Updated + result.Deleted)
	telemetry.InstancesReconciled.Add(ctx, reconciled, attrs)
	s.logger.Info().
		Str("account_id", accountID).
		Str("kind", string(kind)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Dur("elapsed", time.Since(start)).
		Msg("refresh complete")
	return result, nil
}

func (s *Service) refresh(ctx context.Context, accountID string, kind types.Kind) (RefreshResult, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return RefreshResult{}, err
	}

	creds, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return RefreshResult{}, err
	}

	var fetched []types.RemoteInstance
	for _, region := range account.Regions {
		remotes, err := s.fetchRegion(ctx, creds, region, kind)
		if err != nil {
			return RefreshResult{}, err
		}
		s.logger.Debug().
			Str("account_id", accountID).
			Str("region", string(region)).
			Int("count", len(remotes)).
			Msg("region fetched")
		fetched = append(fetched, remotes...)
	}

	// The persisted snapshot is read and the plan applied under the
	// account lock so two overlapping refreshes serialize instead of
	// deleting each other's creates.
	unlock := s.store.LockAccount(accountID)
	defer unlock()

	persisted, err := s.store.PersistedKeys(ctx, accountID, kind)
	if err != nil {
		return RefreshResult{}, err
	}

	plan := BuildPlan(persisted, fetched)
	if err := s.store.ApplyPlan(ctx, accountID, plan); err != nil {
		return RefreshResult{}, err
	}

	return RefreshResult{
		AccountID: accountID,
		Kind:      kind,
		Created:   len(plan.Create),
		Updated:   len(plan.Update),
		Deleted:   len(plan.Delete),
	}, nil
}

func (s *Service) fetchRegion(ctx context.Context, creds types.Credentials, region types.Region, kind types.Kind) ([]types.RemoteInstance, error) {
	if kind == types.KindDatabase {
		return s.lister.ListDatabaseInstances(ctx, creds, region)
	}
	return s.lister.ListComputeInstances(ctx, creds, region)
}
