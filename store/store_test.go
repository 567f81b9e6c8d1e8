package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yairfalse/lookout/types"
)

// newTestStore opens a store on a temp dir with a deterministic clock that
// advances one second per call.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func createTestAccount(t *testing.T, s *Store) types.Account {
	t.Helper()
	account, err := s.CreateAccount(context.Background(), types.Account{
		AWSAccountID:    "123456789012",
		IAMUserName:     "lookout",
		AccessKeyID:     "AKIA" + t.Name(),
		EncryptedSecret: "sealed",
		Regions:         []types.Region{"us_east_1", "eu_west_1"},
	})
	require.NoError(t, err)
	return account
}

// seedInstances applies a create-only plan and returns the persisted rows.
func seedInstances(t *testing.T, s *Store, accountID string, remotes ...types.RemoteInstance) []types.Instance {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.ApplyPlan(ctx, accountID, types.ReconcilePlan{Create: remotes}))

	instances, err := s.ListInstances(ctx, accountID, types.InstanceFilter{})
	require.NoError(t, err)
	return instances
}

func remoteCompute(remoteID, name, status string, region types.Region) types.RemoteInstance {
	return types.RemoteInstance{
		Kind:     types.KindCompute,
		RemoteID: remoteID,
		Name:     name,
		Status:   status,
		Region:   region,
	}
}

func TestStoreReopenRebuildsIndex(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	account, err := s.CreateAccount(ctx, types.Account{AccessKeyID: "AKIAREOPEN", Regions: []types.Region{"us_east_1"}})
	require.NoError(t, err)
	require.NoError(t, s.ApplyPlan(ctx, account.ID, types.ReconcilePlan{
		Create: []types.RemoteInstance{remoteCompute("i-1", "web", "running", "us_east_1")},
	}))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	instances, err := reopened.ListInstances(ctx, account.ID, types.InstanceFilter{})
	require.NoError(t, err)
	require.Len(t, instances, 1)
	require.Equal(t, "i-1", instances[0].RemoteID)
}
