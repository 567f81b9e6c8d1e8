package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/inventory"
	"github.com/yairfalse/lookout/types"
)

func seedInstance(t *testing.T, ts *testServer, accountID string, kind types.Kind, remoteID string) types.Instance {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ts.store.ApplyPlan(ctx, accountID, types.ReconcilePlan{
		Create: []types.RemoteInstance{{
			Kind:     kind,
			RemoteID: remoteID,
			Name:     remoteID,
			Status:   "running",
			Region:   "us_east_1",
		}},
	}))

	instances, err := ts.store.ListInstances(ctx, accountID, types.InstanceFilter{})
	require.NoError(t, err)
	for _, inst := range instances {
		if inst.RemoteID == remoteID {
			return inst
		}
	}
	t.Fatalf("instance %s not found after seeding", remoteID)
	return types.Instance{}
}

func decodeInstances(t *testing.T, body []byte) []types.Instance {
	t.Helper()
	var resp struct {
		Instances []types.Instance `json:"instances"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Instances
}

func TestListInstancesFiltered(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)
	seedInstance(t, ts, account.ID, types.KindCompute, "i-1")
	seedInstance(t, ts, account.ID, types.KindDatabase, "db-1")

	rec := ts.do(t, http.MethodGet, "/v1/accounts/"+account.ID+"/instances?kind=database", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	instances := decodeInstances(t, rec.Body.Bytes())
	require.Len(t, instances, 1)
	assert.Equal(t, "db-1", instances[0].RemoteID)
}

func TestListInstancesBadKind(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)

	rec := ts.do(t, http.MethodGet, "/v1/accounts/"+account.ID+"/instances?kind=cache", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInstancesUnknownAccount(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/v1/accounts/missing/instances", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshRequiresKind(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)

	rec := ts.do(t, http.MethodPost, "/v1/accounts/"+account.ID+"/instances/refresh", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshReturnsResult(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)
	ts.refresher.result = inventory.RefreshResult{AccountID: account.ID, Kind: types.KindCompute, Created: 3}

	rec := ts.do(t, http.MethodPost, "/v1/accounts/"+account.ID+"/instances/refresh?kind=compute", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.KindCompute, ts.refresher.kind)

	var result inventory.RefreshResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Created)
}

func TestRefreshFetchFailureIsBadGateway(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)
	ts.refresher.err = errs.New(errs.KindFetch, "describe instances in us-east-1")

	rec := ts.do(t, http.MethodPost, "/v1/accounts/"+account.ID+"/instances/refresh?kind=compute", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	kind, _ := decodeError(t, rec)
	assert.Equal(t, "fetch", kind)
}

func TestWatchTogglesInstances(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)
	inst := seedInstance(t, ts, account.ID, types.KindCompute, "i-1")

	rec := ts.do(t, http.MethodPost, "/v1/accounts/"+account.ID+"/instances/watch", gin.H{
		"watch": []string{inst.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	instances := decodeInstances(t, ts.do(t, http.MethodGet, "/v1/accounts/"+account.ID+"/instances?watched=true", nil).Body.Bytes())
	require.Len(t, instances, 1)
	assert.True(t, instances[0].Watched)
}

func TestWatchForeignIDIsUnprocessable(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)
	seedInstance(t, ts, account.ID, types.KindCompute, "i-1")

	rec := ts.do(t, http.MethodPost, "/v1/accounts/"+account.ID+"/instances/watch", gin.H{
		"watch": []string{"someone-elses-id"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	kind, _ := decodeError(t, rec)
	assert.Equal(t, "reference", kind)
}

func TestWatchEmptyRequest(t *testing.T) {
	ts := newTestServer(t)
	account := ts.createAccount(t)

	rec := ts.do(t, http.MethodPost, "/v1/accounts/"+account.ID+"/instances/watch", gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
