package conflict

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	"github.com/jakechorley/coffee-rota/pkg/db"
)

// ShiftFinder is the read access the detector needs
type ShiftFinder interface {
	FindShifts(ctx context.Context, filters []db.Filter, order ...db.Order) ([]model.Shift, error)
}

// Detector finds shifts that would double-book a person
type Detector struct {
	shifts ShiftFinder
	logger *zap.Logger
}

func NewDetector(shifts ShiftFinder, logger *zap.Logger) *Detector {
	return &Detector{shifts: shifts, logger: logger}
}

// Conflicts returns the shifts assigned to personID that overlap [start, end),
// ignoring excludeShiftID when non-empty so a shift never conflicts with itself.
func (d *Detector) Conflicts(ctx context.Context, personID string, start, end time.Time, excludeShiftID string) ([]model.Shift, error) {
	candidate, err := timerange.New(start, end)
	if err != nil {
		return nil, err
	}

	// Overlap pushed down to the store: start_time < candidate.End AND end_time > candidate.Start
	filters := []db.Filter{
		db.Eq(db.ColUserID, personID),
		db.Lt(db.ColStartTime, candidate.End),
		db.Gt(db.ColEndTime, candidate.Start),
	}
	if excludeShiftID != "" {
		filters = append(filters, db.Neq(db.ColID, excludeShiftID))
	}

	found, err := d.shifts.FindShifts(ctx, filters, db.Asc(db.ColStartTime))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts for conflict check: %w", err)
	}

	// Re-check locally so a backend with looser comparison semantics cannot report a touching shift
	conflicts := make([]model.Shift, 0, len(found))
	for _, s := range found {
		if !s.OwnedBy(personID) || s.ID == excludeShiftID {
			continue
		}
		if candidate.Overlaps(timerange.Interval{Start: s.StartTime, End: s.EndTime}) {
			conflicts = append(conflicts, s)
		}
	}

	d.logger.Debug("Conflict check",
		zap.String("person_id", personID),
		zap.Time("start", candidate.Start),
		zap.Time("end", candidate.End),
		zap.String("exclude_shift_id", excludeShiftID),
		zap.Int("conflicts", len(conflicts)))

	return conflicts, nil
}

// HasConflict reports whether personID already has a shift overlapping [start, end)
func (d *Detector) HasConflict(ctx context.Context, personID string, start, end time.Time, excludeShiftID string) (bool, error) {
	conflicts, err := d.Conflicts(ctx, personID, start, end, excludeShiftID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// ConflictIDs extracts shift ids (useful for logging and error details)
func ConflictIDs(shifts []model.Shift) []string {
	ids := make([]string, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
	}
	return ids
}
