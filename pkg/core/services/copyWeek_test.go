package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

func TestCopyWeek_ShiftsPriorWeekBySevenDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	offeredMonday := assignedShift("mon", "xavier", at(1, 9), at(1, 17))
	offeredMonday.SwapStatus = model.SwapOffered
	otherStore := assignedShift("other-store", "zoe", at(2, 9), at(2, 17))
	otherStore.StoreID = "store-station"
	f.seed(t,
		offeredMonday,
		assignedShift("wed", "yasmin", at(3, 8), at(3, 16)),
		otherStore,
		assignedShift("this-week", "zoe", at(8, 9), at(8, 17)),
	)

	copies, err := f.workflow.CopyWeek(ctx, maria, testStore, at(8, 0))
	require.NoError(t, err)
	require.Len(t, copies, 2)

	assert.Equal(t, at(8, 9), copies[0].StartTime)
	assert.Equal(t, at(8, 17), copies[0].EndTime)
	assert.True(t, copies[0].OwnedBy("xavier"))
	assert.Equal(t, model.SwapNone, copies[0].SwapStatus)
	assert.NotEqual(t, "mon", copies[0].ID)

	assert.Equal(t, at(10, 8), copies[1].StartTime)
	assert.Equal(t, at(10, 16), copies[1].EndTime)
	assert.True(t, copies[1].OwnedBy("yasmin"))
	assert.Equal(t, model.SwapNone, copies[1].SwapStatus)

	require.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(`
# HELP shift_week_copies_shifts_total Shifts created by weekly copy.
# TYPE shift_week_copies_shifts_total counter
shift_week_copies_shifts_total 2
`), "shift_week_copies_shifts_total"))
}

func TestCopyWeek_EmptySourceWeek(t *testing.T) {
	f := newFixture(t)

	copies, err := f.workflow.CopyWeek(context.Background(), maria, testStore, at(8, 0))
	require.NoError(t, err)
	assert.NotNil(t, copies)
	assert.Empty(t, copies)
}

func TestCopyWeek_RejectsNonMonday(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.CopyWeek(context.Background(), maria, testStore, at(9, 0))
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = f.workflow.CopyWeek(context.Background(), maria, testStore, at(8, 9))
	assert.True(t, apperr.Is(err, apperr.CodeValidation), "must be local midnight")
}

func TestCopyWeek_StaffForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.CopyWeek(context.Background(), xavier, testStore, at(8, 0))
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestCopyWeek_KeepsLocalTimeAcrossDST(t *testing.T) {
	clock, err := timerange.NewClock("Europe/London")
	require.NoError(t, err)
	f := newFixtureWithClock(t, clock)

	// Monday 25 March 2024 09:00-17:00 GMT; clocks go forward on the 31st
	f.seed(t, assignedShift("s1", "xavier",
		time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 25, 17, 0, 0, 0, time.UTC)))

	weekStart, err := clock.Date("2024-04-01")
	require.NoError(t, err)

	copies, err := f.workflow.CopyWeek(context.Background(), maria, testStore, weekStart)
	require.NoError(t, err)
	require.Len(t, copies, 1)

	// 09:00-17:00 BST
	assert.Equal(t, time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC), copies[0].StartTime)
	assert.Equal(t, time.Date(2024, 4, 1, 16, 0, 0, 0, time.UTC), copies[0].EndTime)
}
