package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/lookout/types"
)

func TestListInstancesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := createTestAccount(t, s)

	// Seed in three separate plans so creation times differ
	seedInstances(t, s, account.ID, remoteCompute("i-old", "old", "running", "us_east_1"))
	seedInstances(t, s, account.ID, remoteCompute("i-mid", "mid", "running", "us_east_1"))
	seedInstances(t, s, account.ID, remoteCompute("i-new", "new", "running", "us_east_1"))

	instances, err := s.ListInstances(ctx, account.ID, types.InstanceFilter{})
	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.Equal(t, "i-new", instances[0].RemoteID)
	assert.Equal(t, "i-old", instances[2].RemoteID)
}

func TestListInstancesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := createTestAccount(t, s)

	require.NoError(t, s.ApplyPlan(ctx, account.ID, types.ReconcilePlan{
		Create: []types.RemoteInstance{
			remoteCompute("i-1", "web", "running", "us_east_1"),
			remoteCompute("i-2", "worker", "stopped", "us_east_1"),
			{Kind: types.KindDatabase, RemoteID: "db-1", Name: "db-1", Status: "available", Region: "eu_west_1"},
		},
	}))

	running, err := s.ListInstances(ctx, account.ID, types.InstanceFilter{Status: "running"})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "i-1", running[0].RemoteID)

	databases, err := s.ListInstances(ctx, account.ID, types.InstanceFilter{Kind: types.KindDatabase})
	require.NoError(t, err)
	require.Len(t, databases, 1)
	assert.Equal(t, "db-1", databases[0].RemoteID)
}

func TestWatchedInstancesOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := createTestAccount(t, s)

	first := seedInstances(t, s, account.ID, remoteCompute("i-first", "a", "running", "us_east_1"))
	seedInstances(t, s, account.ID, remoteCompute("i-second", "b", "running", "us_east_1"))

	all, err := s.ListInstances(ctx, account.ID, types.InstanceFilter{})
	require.NoError(t, err)
	var ids []string
	for _, inst := range all {
		ids = append(ids, inst.ID)
	}
	require.NoError(t, s.SyncWatch(ctx, account.ID, ids, nil))

	watched, err := s.WatchedInstances(ctx, account.ID, types.KindCompute)
	require.NoError(t, err)
	require.Len(t, watched, 2)
	assert.Equal(t, first[0].ID, watched[0].ID, "watched list is oldest first")
}

func TestListInstancesIsolatedPerAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := createTestAccount(t, s)
	other, err := s.CreateAccount(ctx, types.Account{AccessKeyID: "AKIAISO", Regions: []types.Region{"us_east_1"}})
	require.NoError(t, err)

	seedInstances(t, s, account.ID, remoteCompute("i-mine", "mine", "running", "us_east_1"))
	seedInstances(t, s, other.ID, remoteCompute("i-theirs", "theirs", "running", "us_east_1"))

	mine, err := s.ListInstances(ctx, account.ID, types.InstanceFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "i-mine", mine[0].RemoteID)
}
