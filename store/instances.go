package store

import (
	"context"
	"sort"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// ListInstances returns an account's instances matching the filter,
// newest first.
func (s *Store) ListInstances(ctx context.Context, accountID string, filter types.InstanceFilter) ([]types.Instance, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var result []types.Instance
	s.scanAccount(accountID, func(inst types.Instance) {
		if filter.Matches(inst) {
			result = append(result, inst)
		}
	})
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// WatchedInstances returns the watched subset of one kind, oldest first.
// Metric queries depend on this ordering being stable across calls.
func (s *Store) WatchedInstances(ctx context.Context, accountID string, kind types.Kind) ([]types.Instance, error) {
	watched := true
	instances, err := s.ListInstances(ctx, accountID, types.InstanceFilter{Kind: kind, Watched: &watched})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].CreatedAt.Before(instances[j].CreatedAt)
	})
	return instances, nil
}

// PersistedKeys returns the (kind, region, remoteID) identities currently
// stored for one account and kind. The reconciler diffs the fetched set
// against this snapshot.
func (s *Store) PersistedKeys(ctx context.Context, accountID string, kind types.Kind) ([]types.InstanceKey, error) {
	instances, err := s.ListInstances(ctx, accountID, types.InstanceFilter{Kind: kind})
	if err != nil {
		return nil, err
	}

	keys := make([]types.InstanceKey, 0, len(instances))
	for _, inst := range instances {
		keys = append(keys, inst.Key())
	}
	return keys, nil
}

// getInstanceByLocalID resolves a local instance id inside a transaction.
// Used by watch sync validation.
func getInstanceByLocalID(ids, instances bucketGetter, localID string) (types.Instance, bool, error) {
	key := ids.Get([]byte(localID))
	if key == nil {
		return types.Instance{}, false, nil
	}
	data := instances.Get(key)
	if data == nil {
		return types.Instance{}, false, errs.New(errs.KindPersistence,
			"dangling instance id %s", localID)
	}
	inst, err := decodeInstance(data)
	if err != nil {
		return types.Instance{}, false, err
	}
	return inst, true, nil
}

// bucketGetter is the read surface of a bbolt bucket.
type bucketGetter interface {
	Get(key []byte) []byte
}
