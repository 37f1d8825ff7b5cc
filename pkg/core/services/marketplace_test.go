package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/db"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

func shiftIDs(shifts []model.Shift) []string {
	ids := make([]string, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
	}
	return ids
}

func TestListMarketplace(t *testing.T) {
	f := newFixture(t)
	f.now = at(2, 10)

	offered := assignedShift("offered", "xavier", at(3, 9), at(3, 17))
	offered.SwapStatus = model.SwapOffered
	pending := assignedShift("pending", "xavier", at(3, 6), at(3, 8))
	pending.SwapStatus = model.SwapPendingApproval
	pending.SwapCandidateID = strPtr("yasmin")
	elsewhere := openShift("elsewhere", at(4, 9), at(4, 17))
	elsewhere.StoreID = "store-station"

	f.seed(t,
		openShift("past", at(1, 9), at(1, 17)),
		openShift("open-late", at(5, 9), at(5, 17)),
		offered,
		openShift("open-early", at(2, 12), at(2, 18)),
		pending,
		assignedShift("assigned", "yasmin", at(3, 9), at(3, 17)),
		elsewhere,
	)

	listed, err := f.workflow.ListMarketplace(context.Background(), testStore)
	require.NoError(t, err)
	assert.Equal(t, []string{"open-early", "offered", "open-late"}, shiftIDs(listed))

	all, err := f.workflow.ListMarketplace(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"open-early", "offered", "elsewhere", "open-late"}, shiftIDs(all))
}

func TestPendingApprovals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		assignedShift("s1", "xavier", at(3, 9), at(3, 17)),
		assignedShift("s2", "xavier", at(2, 9), at(2, 17)),
	)

	for _, id := range []string{"s1", "s2"} {
		_, err := f.workflow.OfferSwap(ctx, xavier, id)
		require.NoError(t, err)
		_, err = f.workflow.RequestSwap(ctx, yasmin, id)
		require.NoError(t, err)
	}

	_, err := f.workflow.PendingApprovals(ctx, xavier, "")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	pending, err := f.workflow.PendingApprovals(ctx, maria, testStore)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, shiftIDs(pending))
}

func TestUpdateStoreNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mem.Seed(db.TableStores, db.StoreToRow(model.Store{ID: testStore, Name: "High Street", Color: "#6f4e37"}))

	_, err := f.workflow.UpdateStoreNotes(ctx, xavier, testStore, "hi")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	store, err := f.workflow.UpdateStoreNotes(ctx, maria, testStore, "  Grinder is broken ")
	require.NoError(t, err)
	require.NotNil(t, store.Notes)
	assert.Equal(t, "Grinder is broken", *store.Notes)

	store, err = f.workflow.UpdateStoreNotes(ctx, maria, testStore, "   ")
	require.NoError(t, err)
	assert.Nil(t, store.Notes)

	_, err = f.workflow.UpdateStoreNotes(ctx, maria, "missing", "x")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestCountBadges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		openShift("open", at(2, 9), at(2, 17)),
		assignedShift("s1", "xavier", at(3, 9), at(3, 17)),
	)
	_, err := f.workflow.OfferSwap(ctx, xavier, "s1")
	require.NoError(t, err)

	staff, err := f.workflow.CountBadges(ctx, yasmin, "")
	require.NoError(t, err)
	assert.Equal(t, BadgeCounts{Marketplace: 2}, staff)

	_, err = f.workflow.RequestSwap(ctx, yasmin, "s1")
	require.NoError(t, err)

	manager, err := f.workflow.CountBadges(ctx, maria, "")
	require.NoError(t, err)
	assert.Equal(t, BadgeCounts{Marketplace: 1, PendingApprovals: 1}, manager)
}
