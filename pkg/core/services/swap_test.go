package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

func TestClaimShift_AssignsClaimer(t *testing.T) {
	f := newFixture(t)
	f.seed(t, openShift("s1", at(2, 9), at(2, 17)))

	claimed, err := f.workflow.ClaimShift(context.Background(), xavier, "s1")
	require.NoError(t, err)

	require.NotNil(t, claimed.UserID)
	assert.Equal(t, "xavier", *claimed.UserID)
	assert.Equal(t, model.SwapNone, claimed.SwapStatus)
	assert.Equal(t, claimed, f.get(t, "s1"))
	require.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(`
# HELP shift_transitions_total Committed shift workflow actions.
# TYPE shift_transitions_total counter
shift_transitions_total{action="claim"} 1
`), "shift_transitions_total"))
}

func TestClaimShift_ConflictLeavesShiftOpen(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		assignedShift("busy", "xavier", at(2, 8), at(2, 12)),
		openShift("s1", at(2, 11), at(2, 17)),
	)

	_, err := f.workflow.ClaimShift(context.Background(), xavier, "s1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Equal(t, []string{"busy"}, apperr.As(err).Details())

	assert.True(t, f.get(t, "s1").IsOpen())
	require.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(`
# HELP shift_workflow_failures_total Rejected or failed shift workflow actions by error code.
# TYPE shift_workflow_failures_total counter
shift_workflow_failures_total{action="claim",code="CONFLICT"} 1
`), "shift_workflow_failures_total"))
}

func TestClaimShift_TouchingShiftIsNotAConflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		assignedShift("morning", "xavier", at(2, 8), at(2, 12)),
		openShift("afternoon", at(2, 12), at(2, 17)),
	)

	claimed, err := f.workflow.ClaimShift(context.Background(), xavier, "afternoon")
	require.NoError(t, err)
	assert.True(t, claimed.OwnedBy("xavier"))
}

func TestClaimShift_AlreadyClaimedIsRaceLost(t *testing.T) {
	f := newFixture(t)
	f.seed(t, assignedShift("s1", "yasmin", at(2, 9), at(2, 17)))

	_, err := f.workflow.ClaimShift(context.Background(), xavier, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeRaceLost))
	assert.True(t, f.get(t, "s1").OwnedBy("yasmin"))
}

func TestClaimShift_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	f.seed(t, openShift("s1", at(2, 9), at(2, 17)))

	claimers := []model.Actor{xavier, yasmin, zoe}
	errs := make([]error, len(claimers))

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, actor := range claimers {
		i, actor := i, actor
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = f.workflow.ClaimShift(context.Background(), actor, "s1")
		}()
	}
	close(start)
	wg.Wait()

	var winner string
	for i, err := range errs {
		if err == nil {
			require.Empty(t, winner, "more than one claim succeeded")
			winner = claimers[i].UserID
			continue
		}
		assert.True(t, apperr.Is(err, apperr.CodeRaceLost), "unexpected error: %v", err)
	}
	require.NotEmpty(t, winner)
	assert.True(t, f.get(t, "s1").OwnedBy(winner))
}

func TestOfferSwap_OnlyOwnerFromAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		assignedShift("s1", "xavier", at(2, 9), at(2, 17)),
		openShift("open", at(3, 9), at(3, 17)),
	)

	_, err := f.workflow.OfferSwap(ctx, yasmin, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	_, err = f.workflow.OfferSwap(ctx, xavier, "open")
	assert.True(t, apperr.Is(err, apperr.CodeStateConflict))

	offered, err := f.workflow.OfferSwap(ctx, xavier, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.SwapOffered, offered.SwapStatus)

	_, err = f.workflow.OfferSwap(ctx, xavier, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeStateConflict))
}

func TestCancelOffer_RestoresAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, assignedShift("s1", "xavier", at(2, 9), at(2, 17)))

	_, err := f.workflow.OfferSwap(ctx, xavier, "s1")
	require.NoError(t, err)

	cancelled, err := f.workflow.CancelOffer(ctx, xavier, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.SwapNone, cancelled.SwapStatus)
	assert.True(t, cancelled.OwnedBy("xavier"))
}

func TestSwapWorkflow_Approve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, assignedShift("s1", "xavier", at(2, 9), at(2, 17)))

	_, err := f.workflow.OfferSwap(ctx, xavier, "s1")
	require.NoError(t, err)

	_, err = f.workflow.RequestSwap(ctx, xavier, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeValidation), "owner cannot request their own shift")

	pending, err := f.workflow.RequestSwap(ctx, yasmin, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.SwapPendingApproval, pending.SwapStatus)
	require.NotNil(t, pending.SwapCandidateID)
	assert.Equal(t, "yasmin", *pending.SwapCandidateID)

	_, err = f.workflow.RequestSwap(ctx, zoe, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeRaceLost), "a second candidate is too late")

	_, err = f.workflow.ApproveSwap(ctx, yasmin, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	approved, err := f.workflow.ApproveSwap(ctx, maria, "s1")
	require.NoError(t, err)
	assert.True(t, approved.OwnedBy("yasmin"))
	assert.Equal(t, model.SwapNone, approved.SwapStatus)
	assert.Nil(t, approved.SwapCandidateID)
	assert.Equal(t, approved, f.get(t, "s1"))
}

func TestSwapWorkflow_ApproveBlockedByCandidateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, assignedShift("s1", "xavier", at(2, 9), at(2, 17)))

	_, err := f.workflow.OfferSwap(ctx, xavier, "s1")
	require.NoError(t, err)
	before, err := f.workflow.RequestSwap(ctx, yasmin, "s1")
	require.NoError(t, err)

	// yasmin picks up an overlapping shift while the request is pending
	f.seed(t, assignedShift("later", "yasmin", at(2, 16), at(2, 20)))

	_, err = f.workflow.ApproveSwap(ctx, maria, "s1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Equal(t, before, f.get(t, "s1"))
}

func TestSwapWorkflow_DenyAndAcknowledge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, assignedShift("s1", "xavier", at(2, 9), at(2, 17)))

	_, err := f.workflow.OfferSwap(ctx, xavier, "s1")
	require.NoError(t, err)
	_, err = f.workflow.RequestSwap(ctx, yasmin, "s1")
	require.NoError(t, err)

	denied, err := f.workflow.DenySwap(ctx, maria, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.SwapDenied, denied.SwapStatus)
	assert.Nil(t, denied.SwapCandidateID)
	assert.True(t, denied.OwnedBy("xavier"))

	_, err = f.workflow.DenySwap(ctx, maria, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeRaceLost), "already decided")

	_, err = f.workflow.AcknowledgeDenial(ctx, yasmin, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	acked, err := f.workflow.AcknowledgeDenial(ctx, xavier, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.SwapNone, acked.SwapStatus)
	assert.True(t, acked.OwnedBy("xavier"))
}

func TestTransition_RemoteStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t, openShift("s1", at(2, 9), at(2, 17)))
	f.mem.FailWith(assert.AnError)

	_, err := f.workflow.ClaimShift(context.Background(), xavier, "s1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeRemoteStore))
	assert.Contains(t, err.Error(), assert.AnError.Error())
}

func TestTransition_MissingShift(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.ClaimShift(context.Background(), xavier, "missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
