package conflict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/db"
	"github.com/jakechorley/coffee-rota/pkg/db/memstore"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func newDetector(t *testing.T, shifts ...model.Shift) *Detector {
	t.Helper()
	store := memstore.New()
	for _, s := range shifts {
		store.Seed(db.TableShifts, db.ShiftToRow(s))
	}
	return NewDetector(db.NewRepository(store), zap.NewNop())
}

func TestHasConflict_TouchingBoundaryIsNotConflict(t *testing.T) {
	d := newDetector(t, model.Shift{ID: "a", StoreID: "st", UserID: strPtr("alice"), StartTime: at(1, 9), EndTime: at(1, 17)})
	ctx := context.Background()

	got, err := d.HasConflict(ctx, "alice", at(1, 17), at(1, 21), "")
	require.NoError(t, err)
	assert.False(t, got, "shift starting when another ends")

	got, err = d.HasConflict(ctx, "alice", at(1, 5), at(1, 9), "")
	require.NoError(t, err)
	assert.False(t, got, "shift ending when another starts")
}

func TestHasConflict_Overlaps(t *testing.T) {
	d := newDetector(t, model.Shift{ID: "a", StoreID: "st", UserID: strPtr("alice"), StartTime: at(1, 9), EndTime: at(1, 17)})
	ctx := context.Background()

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"overlapping end", at(1, 16), at(1, 20)},
		{"overlapping start", at(1, 6), at(1, 10)},
		{"inside", at(1, 10), at(1, 12)},
		{"enclosing", at(1, 8), at(1, 18)},
		{"identical", at(1, 9), at(1, 17)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.HasConflict(ctx, "alice", tc.start, tc.end, "")
			require.NoError(t, err)
			assert.True(t, got)
		})
	}
}

func TestHasConflict_OtherPeopleAndOpenShiftsIgnored(t *testing.T) {
	d := newDetector(t,
		model.Shift{ID: "b", StoreID: "st", UserID: strPtr("bob"), StartTime: at(1, 9), EndTime: at(1, 17)},
		model.Shift{ID: "open", StoreID: "st", StartTime: at(1, 9), EndTime: at(1, 17)},
	)

	got, err := d.HasConflict(context.Background(), "alice", at(1, 9), at(1, 17), "")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestHasConflict_ExcludesEditedShift(t *testing.T) {
	d := newDetector(t, model.Shift{ID: "a", StoreID: "st", UserID: strPtr("alice"), StartTime: at(1, 9), EndTime: at(1, 17)})

	got, err := d.HasConflict(context.Background(), "alice", at(1, 9), at(1, 17), "a")
	require.NoError(t, err)
	assert.False(t, got, "saving a shift unchanged is not a conflict with itself")
}

func TestHasConflict_AcrossStores(t *testing.T) {
	d := newDetector(t, model.Shift{ID: "a", StoreID: "harbour", UserID: strPtr("alice"), StartTime: at(1, 9), EndTime: at(1, 17)})

	got, err := d.HasConflict(context.Background(), "alice", at(1, 12), at(1, 20), "")
	require.NoError(t, err)
	assert.True(t, got, "a person cannot work two stores at once")
}

func TestConflicts_ReturnsRows(t *testing.T) {
	d := newDetector(t,
		model.Shift{ID: "late", StoreID: "st", UserID: strPtr("alice"), StartTime: at(1, 15), EndTime: at(1, 20)},
		model.Shift{ID: "early", StoreID: "st", UserID: strPtr("alice"), StartTime: at(1, 6), EndTime: at(1, 10)},
		model.Shift{ID: "tomorrow", StoreID: "st", UserID: strPtr("alice"), StartTime: at(2, 6), EndTime: at(2, 10)},
	)

	conflicts, err := d.Conflicts(context.Background(), "alice", at(1, 8), at(1, 16), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, ConflictIDs(conflicts))
}

func TestHasConflict_InvalidCandidate(t *testing.T) {
	d := newDetector(t)
	_, err := d.HasConflict(context.Background(), "alice", at(1, 17), at(1, 9), "")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestHasConflict_StoreFailure(t *testing.T) {
	store := memstore.New()
	store.FailWith(errors.New("network unreachable"))
	d := NewDetector(db.NewRepository(store), zap.NewNop())

	_, err := d.HasConflict(context.Background(), "alice", at(1, 9), at(1, 17), "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeRemoteStore))
}
