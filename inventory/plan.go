// Package inventory brings the persisted instance list into agreement with
// the provider's live inventory: fetch per region, diff against the stored
// snapshot, apply one atomic create/update/delete plan.
package inventory

import "github.com/yairfalse/lookout/types"

// BuildPlan diffs the freshly fetched set against the persisted identities
// and returns the plan that makes them correspond 1:1. Fetched records
// whose key is already persisted become updates; unknown keys become
// creates; persisted keys absent from the fetched set are deleted. A
// duplicate key in the fetched set collapses to its last occurrence.
func BuildPlan(persisted []types.InstanceKey, fetched []types.RemoteInstance) types.ReconcilePlan {
	latest := make(map[types.InstanceKey]types.RemoteInstance, len(fetched))
	order := make([]types.InstanceKey, 0, len(fetched))
	for _, remote := range fetched {
		key := remote.Key()
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = remote
	}

	persistedSet := make(map[types.InstanceKey]bool, len(persisted))
	for _, key := range persisted {
		persistedSet[key] = true
	}

	var plan types.ReconcilePlan
	for _, key := range order {
		if persistedSet[key] {
			plan.Update = append(plan.Update, latest[key])
		} else {
			plan.Create = append(plan.Create, latest[key])
		}
	}

	// The delete step runs even when the fetched set is empty: an account
	// whose last resource was terminated ends with zero persisted
	// instances, not stale ones
	for _, key := range persisted {
		if _, ok := latest[key]; !ok {
			plan.Delete = append(plan.Delete, key)
		}
	}

	return plan
}
