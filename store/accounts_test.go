package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

func TestCreateAndGetAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := createTestAccount(t, s)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	loaded, err := s.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.AccessKeyID, loaded.AccessKeyID)
	assert.Equal(t, created.EncryptedSecret, loaded.EncryptedSecret)
	assert.Equal(t, []types.Region{"us_east_1", "eu_west_1"}, loaded.Regions)
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAccount(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestCreateAccountDuplicateAccessKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, types.Account{AccessKeyID: "AKIADUP", Regions: []types.Region{"us_east_1"}})
	require.NoError(t, err)

	_, err = s.CreateAccount(ctx, types.Account{AccessKeyID: "AKIADUP", Regions: []types.Region{"us_east_1"}})
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestUpdateAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := createTestAccount(t, s)

	newSecret := "resealed"
	newUser := "ops"
	updated, err := s.UpdateAccount(ctx, account.ID, AccountUpdate{
		IAMUserName:     &newUser,
		EncryptedSecret: &newSecret,
		Regions:         []types.Region{"ap_southeast_1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ops", updated.IAMUserName)
	assert.Equal(t, "resealed", updated.EncryptedSecret)
	assert.Equal(t, []types.Region{"ap_southeast_1"}, updated.Regions)
	// untouched fields survive
	assert.Equal(t, account.AccessKeyID, updated.AccessKeyID)
	assert.True(t, updated.UpdatedAt.After(account.UpdatedAt))
}

func TestUpdateAccountAccessKeyConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateAccount(ctx, types.Account{AccessKeyID: "AKIAONE", Regions: []types.Region{"us_east_1"}})
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, types.Account{AccessKeyID: "AKIATWO", Regions: []types.Region{"us_east_1"}})
	require.NoError(t, err)

	taken := "AKIATWO"
	_, err = s.UpdateAccount(ctx, first.ID, AccountUpdate{AccessKeyID: &taken})
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestDeleteAccountCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := createTestAccount(t, s)

	instances := seedInstances(t, s, account.ID,
		remoteCompute("i-1", "web", "running", "us_east_1"),
		remoteCompute("i-2", "db", "stopped", "eu_west_1"),
	)
	require.Len(t, instances, 2)

	require.NoError(t, s.DeleteAccount(ctx, account.ID))

	_, err := s.GetAccount(ctx, account.ID)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	// access key is released for reuse
	_, err = s.CreateAccount(ctx, types.Account{AccessKeyID: account.AccessKeyID, Regions: []types.Region{"us_east_1"}})
	assert.NoError(t, err)
}
