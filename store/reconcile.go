package store

import (
	"context"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// ApplyPlan applies a reconcile plan as one atomic transaction. Updates
// touch name/status/region only; local ids, watched flags, and creation
// timestamps survive. The caller must hold the account's advisory lock so
// the plan was computed against the state this transaction sees.
func (s *Store) ApplyPlan(ctx context.Context, accountID string, plan types.ReconcilePlan) error {
	if plan.Empty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	type indexOp struct {
		key    string
		inst   types.Instance
		delete bool
	}
	var indexOps []indexOp

	err := s.db.Update(func(tx *bbolt.Tx) error {
		instances := tx.Bucket(bucketInstances)
		ids := tx.Bucket(bucketInstanceIDs)

		for _, key := range plan.Delete {
			bkey := instanceKey(accountID, key)
			data := instances.Get(bkey)
			if data == nil {
				continue
			}
			inst, err := decodeInstance(data)
			if err != nil {
				return err
			}
			if err := ids.Delete([]byte(inst.ID)); err != nil {
				return err
			}
			if err := instances.Delete(bkey); err != nil {
				return err
			}
			indexOps = append(indexOps, indexOp{key: string(bkey), delete: true})
		}

		for _, remote := range plan.Update {
			bkey := instanceKey(accountID, remote.Key())
			data := instances.Get(bkey)
			if data == nil {
				// Disappeared between plan and apply is impossible under
				// the account lock; treat as corruption
				return errs.New(errs.KindPersistence,
					"planned update for missing instance %s", remote.RemoteID)
			}
			inst, err := decodeInstance(data)
			if err != nil {
				return err
			}
			inst.Name = remote.Name
			inst.Status = remote.Status
			inst.Region = remote.Region
			inst.UpdatedAt = now
			encoded, err := encodeInstance(inst)
			if err != nil {
				return err
			}
			if err := instances.Put(bkey, encoded); err != nil {
				return err
			}
			indexOps = append(indexOps, indexOp{key: string(bkey), inst: inst})
		}

		for _, remote := range plan.Create {
			inst := types.Instance{
				ID:        uuid.NewString(),
				AccountID: accountID,
				Kind:      remote.Kind,
				RemoteID:  remote.RemoteID,
				Name:      remote.Name,
				Status:    remote.Status,
				Region:    remote.Region,
				Watched:   false,
				CreatedAt: now,
				UpdatedAt: now,
			}
			bkey := instanceKey(accountID, inst.Key())
			encoded, err := encodeInstance(inst)
			if err != nil {
				return err
			}
			if err := instances.Put(bkey, encoded); err != nil {
				return err
			}
			if err := ids.Put([]byte(inst.ID), bkey); err != nil {
				return err
			}
			indexOps = append(indexOps, indexOp{key: string(bkey), inst: inst})
		}

		return nil
	})
	if err != nil {
		if errs.KindOf(err) != "" {
			return err
		}
		return errs.Wrap(errs.KindPersistence, err, "cannot apply reconcile plan for account %s", accountID)
	}

	// The transaction committed; mirror it into the btree
	for _, op := range indexOps {
		if op.delete {
			s.indexDelete(accountID, op.key)
		} else {
			s.indexPut(op.key, op.inst)
		}
	}
	return nil
}
