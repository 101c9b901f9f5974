package reconcile

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/metal-toolbox/gcesync/internal/fixtures"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/store"
)

func testPlan(mode model.Mode) *Plan {
	return &Plan{
		Mode: mode,
		Imports: []*Import{
			{
				Instance:     "web-1",
				RemoteAccess: model.RemoteAccess{Type: model.AccessTypeSSHWithKey, Address: "203.0.113.10", Port: 22},
				Status:       StatusPlanned,
			},
			{
				Instance:     "win-1",
				RemoteAccess: model.RemoteAccess{Type: model.AccessTypeWinRMNegotiate, Address: "203.0.113.20", Port: 5985},
				Status:       StatusPlanned,
			},
		},
		Deletes: []*Delete{
			{Server: fixtures.ServerGone, Status: StatusPlanned},
		},
	}
}

// remoteAccessAt matches a remote access argument by address.
type remoteAccessAt string

func (m remoteAccessAt) Matches(x any) bool {
	ra, ok := x.(*model.RemoteAccess)
	return ok && ra.Address == string(m)
}

func (m remoteAccessAt) String() string {
	return "remote access at " + string(m)
}

func TestApply(t *testing.T) {
	r, mocks := newTestReconciler(t, testTemplates())
	plan := testPlan(model.ModeAll)

	gomock.InOrder(
		mocks.repository.EXPECT().
			CreateRemoteAccess(gomock.Any(), remoteAccessAt("203.0.113.10")).
			Return(&model.RemoteAccess{ID: 501}, nil),
		mocks.repository.EXPECT().
			CreateRemoteAccess(gomock.Any(), remoteAccessAt("203.0.113.20")).
			Return(&model.RemoteAccess{ID: 502}, nil),
		mocks.repository.EXPECT().DeleteServer(gomock.Any(), 12).Return(nil),
	)

	require.NoError(t, r.Apply(context.Background(), plan))

	assert.Equal(t, StatusImported, plan.Imports[0].Status)
	assert.Equal(t, 501, plan.Imports[0].RemoteAccess.ID)
	assert.Equal(t, StatusImported, plan.Imports[1].Status)
	assert.Equal(t, 502, plan.Imports[1].RemoteAccess.ID)
	assert.Equal(t, StatusDeleted, plan.Deletes[0].Status)
}

func TestApplyReadOnly(t *testing.T) {
	r, _ := newTestReconciler(t, testTemplates())
	plan := testPlan(model.ModeReadOnly)

	// the mocks fail the test on any store call
	require.NoError(t, r.Apply(context.Background(), plan))

	for _, imp := range plan.Imports {
		assert.Equal(t, StatusPlanned, imp.Status)
	}

	assert.Equal(t, StatusPlanned, plan.Deletes[0].Status)
}

func TestApplyStopsOnFirstError(t *testing.T) {
	r, mocks := newTestReconciler(t, testTemplates())
	plan := testPlan(model.ModeAll)

	mocks.repository.EXPECT().
		CreateRemoteAccess(gomock.Any(), remoteAccessAt("203.0.113.10")).
		Return(nil, errors.Wrap(store.ErrStoreQuery, "422 Unprocessable Entity"))

	err := r.Apply(context.Background(), plan)
	require.ErrorIs(t, err, ErrApply)
	assert.Contains(t, err.Error(), "203.0.113.10")

	assert.Equal(t, StatusFailed, plan.Imports[0].Status)
	assert.Contains(t, plan.Imports[0].Error, "422")
	assert.Equal(t, StatusPlanned, plan.Imports[1].Status)
	assert.Equal(t, StatusPlanned, plan.Deletes[0].Status)
}

func TestApplyDeleteError(t *testing.T) {
	r, mocks := newTestReconciler(t, nil)
	plan := testPlan(model.ModeDeleteOnly)
	plan.Imports = []*Import{}

	mocks.repository.EXPECT().DeleteServer(gomock.Any(), 12).Return(errors.Wrap(store.ErrStoreQuery, "404 Not Found"))

	err := r.Apply(context.Background(), plan)
	require.ErrorIs(t, err, ErrApply)
	assert.Contains(t, err.Error(), "delete server 12")
	assert.Equal(t, StatusFailed, plan.Deletes[0].Status)
}

func TestApplyCancelled(t *testing.T) {
	r, _ := newTestReconciler(t, testTemplates())
	plan := testPlan(model.ModeAll)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Apply(ctx, plan)
	require.ErrorIs(t, err, ErrApply)
	assert.Equal(t, StatusPlanned, plan.Imports[0].Status)
}
