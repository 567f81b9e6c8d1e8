package store

import (
	"context"

	"go.etcd.io/bbolt"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// SyncWatch validates and applies a batched watch/unwatch request in one
// transaction. Every id must resolve to an instance owned by the account
// or the whole call is rejected with no partial application. An id present
// in both sets ends unwatched; the unwatch pass runs last.
func (s *Store) SyncWatch(ctx context.Context, accountID string, watchIDs, unwatchIDs []string) error {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return err
	}
	if len(watchIDs) == 0 && len(unwatchIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	type indexOp struct {
		key  string
		inst types.Instance
	}
	var indexOps []indexOp

	err := s.db.Update(func(tx *bbolt.Tx) error {
		instances := tx.Bucket(bucketInstances)
		ids := tx.Bucket(bucketInstanceIDs)

		resolve := func(set []string, label string) ([]types.Instance, error) {
			resolved := make([]types.Instance, 0, len(set))
			for _, id := range set {
				inst, ok, err := getInstanceByLocalID(ids, instances, id)
				if err != nil {
					return nil, err
				}
				if ok && inst.AccountID == accountID {
					resolved = append(resolved, inst)
				}
			}
			if len(resolved) != len(set) {
				return nil, errs.New(errs.KindReference,
					"the number of instance ids to %s does not match", label)
			}
			return resolved, nil
		}

		toWatch, err := resolve(watchIDs, "watch")
		if err != nil {
			return err
		}
		toUnwatch, err := resolve(unwatchIDs, "unwatch")
		if err != nil {
			return err
		}

		apply := func(set []types.Instance, watched bool) error {
			for _, inst := range set {
				inst.Watched = watched
				inst.UpdatedAt = now
				bkey := instanceKey(accountID, inst.Key())
				encoded, err := encodeInstance(inst)
				if err != nil {
					return err
				}
				if err := instances.Put(bkey, encoded); err != nil {
					return err
				}
				indexOps = append(indexOps, indexOp{key: string(bkey), inst: inst})
			}
			return nil
		}

		// Watch first, unwatch second: last write wins for overlapping ids
		if err := apply(toWatch, true); err != nil {
			return err
		}
		return apply(toUnwatch, false)
	})
	if err != nil {
		if errs.KindOf(err) != "" {
			return err
		}
		return errs.Wrap(errs.KindPersistence, err, "cannot sync watch set for account %s", accountID)
	}

	for _, op := range indexOps {
		s.indexPut(op.key, op.inst)
	}
	return nil
}
