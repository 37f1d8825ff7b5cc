package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/db"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

func TestCreateShift_OpenShift(t *testing.T) {
	f := newFixture(t)

	created, err := f.workflow.CreateShift(context.Background(), maria, CreateShiftInput{
		StoreID:   testStore,
		StartTime: at(2, 9),
		EndTime:   at(2, 17),
		Note:      "Delivery at 10",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsOpen())
	assert.Equal(t, model.SwapNone, created.SwapStatus)
	assert.Equal(t, "Delivery at 10", created.Note)
	assert.Equal(t, 1, f.mem.Len(db.TableShifts))
}

func TestCreateShift_ValidationBeforeRemoteCall(t *testing.T) {
	f := newFixture(t)
	f.mem.FailWith(assert.AnError)

	_, err := f.workflow.CreateShift(context.Background(), maria, CreateShiftInput{
		StoreID:   testStore,
		UserID:    strPtr("xavier"),
		StartTime: at(2, 17),
		EndTime:   at(2, 9),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation), "got %v", err)

	_, err = f.workflow.CreateShift(context.Background(), maria, CreateShiftInput{
		StartTime: at(2, 9),
		EndTime:   at(2, 17),
	})
	assert.True(t, apperr.Is(err, apperr.CodeValidation), "missing store id")
}

func TestCreateShift_StaffForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.CreateShift(context.Background(), xavier, CreateShiftInput{
		StoreID: testStore, StartTime: at(2, 9), EndTime: at(2, 17),
	})
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	assert.Equal(t, 0, f.mem.Len(db.TableShifts))
}

func TestCreateShift_AssigneeConflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, assignedShift("busy", "xavier", at(2, 9), at(2, 17)))

	_, err := f.workflow.CreateShift(context.Background(), maria, CreateShiftInput{
		StoreID: "store-station", UserID: strPtr("xavier"), StartTime: at(2, 16), EndTime: at(2, 20),
	})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Equal(t, 1, f.mem.Len(db.TableShifts))
}

func TestUpdateShift_NoOpSaveIsAllowed(t *testing.T) {
	f := newFixture(t)
	f.seed(t, assignedShift("s1", "xavier", at(2, 9), at(2, 17)))

	note := "Bring keys"
	updated, err := f.workflow.UpdateShift(context.Background(), maria, "s1", UpdateShiftInput{Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "Bring keys", updated.Note)
	assert.Equal(t, updated, f.get(t, "s1"))
}

func TestUpdateShift_ReassignResetsSwap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, assignedShift("s1", "xavier", at(2, 9), at(2, 17)))

	_, err := f.workflow.OfferSwap(ctx, xavier, "s1")
	require.NoError(t, err)
	_, err = f.workflow.RequestSwap(ctx, yasmin, "s1")
	require.NoError(t, err)

	updated, err := f.workflow.UpdateShift(ctx, maria, "s1", UpdateShiftInput{UserID: strPtr("zoe")})
	require.NoError(t, err)
	assert.True(t, updated.OwnedBy("zoe"))
	assert.Equal(t, model.SwapNone, updated.SwapStatus)
	assert.Nil(t, updated.SwapCandidateID)
	assert.Equal(t, updated, f.get(t, "s1"))
}

func TestUpdateShift_MoveIntoConflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		assignedShift("s1", "xavier", at(2, 9), at(2, 12)),
		assignedShift("s2", "xavier", at(2, 13), at(2, 17)),
	)

	end := at(2, 14)
	_, err := f.workflow.UpdateShift(context.Background(), maria, "s1", UpdateShiftInput{EndTime: &end})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Equal(t, at(2, 12), f.get(t, "s1").EndTime)
}

func TestUpdateShift_InvalidTimes(t *testing.T) {
	f := newFixture(t)
	f.seed(t, openShift("s1", at(2, 9), at(2, 17)))

	start := at(2, 18)
	_, err := f.workflow.UpdateShift(context.Background(), maria, "s1", UpdateShiftInput{StartTime: &start})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = f.workflow.UpdateShift(context.Background(), maria, "s1", UpdateShiftInput{UserID: strPtr("x"), Unassign: true})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestUpdateShift_Unassign(t *testing.T) {
	f := newFixture(t)
	f.seed(t, assignedShift("s1", "xavier", at(2, 9), at(2, 17)))

	updated, err := f.workflow.UpdateShift(context.Background(), maria, "s1", UpdateShiftInput{Unassign: true})
	require.NoError(t, err)
	assert.True(t, updated.IsOpen())
	assert.True(t, f.get(t, "s1").IsOpen())
}

func TestDeleteShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, assignedShift("s1", "xavier", at(2, 9), at(2, 17)))

	err := f.workflow.DeleteShift(ctx, xavier, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	_, err = f.workflow.OfferSwap(ctx, xavier, "s1")
	require.NoError(t, err)

	require.NoError(t, f.workflow.DeleteShift(ctx, maria, "s1"), "deletable in any state")
	assert.Equal(t, 0, f.mem.Len(db.TableShifts))

	err = f.workflow.DeleteShift(ctx, maria, "s1")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestCheckConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		assignedShift("a", "xavier", at(2, 9), at(2, 13)),
		assignedShift("b", "yasmin", at(2, 9), at(2, 13)),
	)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		exclude string
		want    []string
	}{
		{name: "touching end", start: at(2, 13), end: at(2, 17)},
		{name: "touching start", start: at(2, 5), end: at(2, 9)},
		{name: "overlap", start: at(2, 12), end: at(2, 17), want: []string{"a"}},
		{name: "contained", start: at(2, 10), end: at(2, 11), want: []string{"a"}},
		{name: "excluded", start: at(2, 10), end: at(2, 11), exclude: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := f.workflow.CheckConflict(ctx, "xavier", tt.start, tt.end, tt.exclude)
			require.NoError(t, err)

			ids := make([]string, 0, len(found))
			for _, s := range found {
				ids = append(ids, s.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.want, ids)
			}
		})
	}

	_, err := f.workflow.CheckConflict(ctx, "", at(2, 9), at(2, 10), "")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}
