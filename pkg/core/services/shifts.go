package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/conflict"
	"github.com/jakechorley/coffee-rota/pkg/core/lifecycle"
	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	"github.com/jakechorley/coffee-rota/pkg/db"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

var validate = validator.New()

const (
	actionCreate lifecycle.Action = "create"
	actionUpdate lifecycle.Action = "update"
	actionCopy   lifecycle.Action = "copy_week"
)

// CreateShiftInput describes a new shift. A nil UserID creates an open shift.
type CreateShiftInput struct {
	StoreID   string    `json:"storeId" validate:"required"`
	UserID    *string   `json:"userId,omitempty" validate:"omitempty,min=1"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	Note      string    `json:"note,omitempty" validate:"max=500"`
}

// CreateShift schedules a shift. When a person is pre-selected they must be free for it.
func (w *Workflow) CreateShift(ctx context.Context, actor model.Actor, in CreateShiftInput) (model.Shift, error) {
	if err := requireManager(actor, "create shifts"); err != nil {
		return model.Shift{}, w.fail(actionCreate, err)
	}
	if err := validate.Struct(in); err != nil {
		return model.Shift{}, w.fail(actionCreate, apperr.Validation("invalid shift: %v", err))
	}
	interval, err := timerange.New(in.StartTime, in.EndTime)
	if err != nil {
		return model.Shift{}, w.fail(actionCreate, err)
	}

	if in.UserID != nil {
		if err := w.ensureFree(ctx, *in.UserID, interval, ""); err != nil {
			return model.Shift{}, w.fail(actionCreate, err)
		}
	}

	inserted, err := w.store.InsertShifts(ctx, []model.Shift{{
		StoreID:    in.StoreID,
		UserID:     in.UserID,
		StartTime:  interval.Start,
		EndTime:    interval.End,
		Note:       in.Note,
		SwapStatus: model.SwapNone,
	}})
	if err != nil {
		return model.Shift{}, w.fail(actionCreate, err)
	}
	if len(inserted) != 1 {
		return model.Shift{}, w.fail(actionCreate, apperr.New(apperr.CodeInternal, "store returned no inserted shift"))
	}

	w.metrics.IncTransition(string(actionCreate))
	w.logger.Info("Shift created",
		zap.String("shift_id", inserted[0].ID),
		zap.String("store_id", in.StoreID),
		zap.Bool("open", in.UserID == nil))

	return inserted[0], nil
}

// UpdateShiftInput lists the fields to change; nil fields are left alone.
// Set Unassign to turn the shift back into an open shift.
type UpdateShiftInput struct {
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Note      *string    `json:"note,omitempty" validate:"omitempty,max=500"`
	UserID    *string    `json:"userId,omitempty" validate:"omitempty,min=1"`
	Unassign  bool       `json:"unassign,omitempty"`
}

// UpdateShift edits a shift's times, note or assignee.
// Changing the assignee resets any swap in progress.
func (w *Workflow) UpdateShift(ctx context.Context, actor model.Actor, shiftID string, in UpdateShiftInput) (model.Shift, error) {
	if err := requireManager(actor, "edit shifts"); err != nil {
		return model.Shift{}, w.fail(actionUpdate, err)
	}
	if err := validate.Struct(in); err != nil {
		return model.Shift{}, w.fail(actionUpdate, apperr.Validation("invalid shift update: %v", err))
	}
	if in.Unassign && in.UserID != nil {
		return model.Shift{}, w.fail(actionUpdate, apperr.Validation("cannot both assign and unassign a shift"))
	}

	current, err := w.store.GetShift(ctx, shiftID)
	if err != nil {
		return model.Shift{}, w.fail(actionUpdate, err)
	}

	next := current
	if in.StartTime != nil {
		next.StartTime = in.StartTime.UTC()
	}
	if in.EndTime != nil {
		next.EndTime = in.EndTime.UTC()
	}
	if in.Note != nil {
		next.Note = *in.Note
	}
	if in.Unassign {
		next.UserID = nil
	}
	if in.UserID != nil {
		next.UserID = in.UserID
	}

	interval, err := timerange.New(next.StartTime, next.EndTime)
	if err != nil {
		return model.Shift{}, w.fail(actionUpdate, err)
	}

	ownerChanged := !sameOwner(current.UserID, next.UserID)
	if ownerChanged {
		next.SwapStatus = model.SwapNone
		next.SwapCandidateID = nil
	}

	if next.UserID != nil {
		// Excluding the shift itself lets an unchanged save through
		if err := w.ensureFree(ctx, *next.UserID, interval, shiftID); err != nil {
			return model.Shift{}, w.fail(actionUpdate, err)
		}
	}

	expect := append(expectState(current),
		db.Eq(db.ColStartTime, current.StartTime),
		db.Eq(db.ColEndTime, current.EndTime))
	patch := db.ShiftToRow(next)
	delete(patch, db.ColID)
	delete(patch, db.ColStoreID)

	updated, err := w.store.UpdateShiftIf(ctx, shiftID, expect, patch)
	if err != nil {
		return model.Shift{}, w.fail(actionUpdate, err)
	}
	if !updated {
		return model.Shift{}, w.fail(actionUpdate, apperr.RaceLost("too slow: shift %s changed while it was being edited", shiftID))
	}

	w.metrics.IncTransition(string(actionUpdate))
	w.logger.Info("Shift updated",
		zap.String("shift_id", shiftID),
		zap.Bool("owner_changed", ownerChanged))

	return next, nil
}

// DeleteShift removes a shift in any state
func (w *Workflow) DeleteShift(ctx context.Context, actor model.Actor, shiftID string) error {
	current, err := w.store.GetShift(ctx, shiftID)
	if err != nil {
		return w.fail(lifecycle.ActionDelete, err)
	}
	if _, err := lifecycle.Apply(current, lifecycle.ActionDelete, actor); err != nil {
		return w.fail(lifecycle.ActionDelete, err)
	}

	deleted, err := w.store.DeleteShift(ctx, shiftID)
	if err != nil {
		return w.fail(lifecycle.ActionDelete, err)
	}
	if !deleted {
		return w.fail(lifecycle.ActionDelete, apperr.NotFound("shift %s not found", shiftID))
	}

	w.metrics.IncTransition(string(lifecycle.ActionDelete))
	w.logger.Info("Shift deleted", zap.String("shift_id", shiftID), zap.String("actor_id", actor.UserID))
	return nil
}

// CheckConflict returns the shifts of personID overlapping [start, end), ignoring excludeShiftID
func (w *Workflow) CheckConflict(ctx context.Context, personID string, start, end time.Time, excludeShiftID string) ([]model.Shift, error) {
	if personID == "" {
		return nil, apperr.Validation("person id is required")
	}
	return w.detector.Conflicts(ctx, personID, start, end, excludeShiftID)
}

func (w *Workflow) ensureFree(ctx context.Context, personID string, interval timerange.Interval, excludeShiftID string) error {
	conflicts, err := w.detector.Conflicts(ctx, personID, interval.Start, interval.End, excludeShiftID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return apperr.Conflict("%s is already booked during this shift", personID).
			WithDetails(conflict.ConflictIDs(conflicts))
	}
	return nil
}

func sameOwner(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
