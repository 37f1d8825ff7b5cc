package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

const actionSetAvailability = "set_availability"

// IsAvailabilityEditable reports whether actor may edit availability on the local day of today
func (w *Workflow) IsAvailabilityEditable(today time.Time, actor model.Actor) bool {
	return w.gate.IsEditable(w.clock.Weekday(today), actor.Capability)
}

// SetAvailabilityInput is one person's preference for one day of the week.
// StartTime and EndTime are optional HH:MM bounds.
type SetAvailabilityInput struct {
	UserID      string  `json:"userId" validate:"required"`
	DayOfWeek   string  `json:"dayOfWeek" validate:"required"`
	IsAvailable bool    `json:"isAvailable"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
}

// SetAvailability creates or replaces the availability row for (UserID, DayOfWeek).
// Staff can only edit their own row, and only while the weekly gate is open.
func (w *Workflow) SetAvailability(ctx context.Context, actor model.Actor, in SetAvailabilityInput) (model.Availability, error) {
	if err := validate.Struct(in); err != nil {
		return model.Availability{}, w.fail(actionSetAvailability, apperr.Validation("invalid availability: %v", err))
	}
	day, err := model.ParseWeekday(in.DayOfWeek)
	if err != nil {
		return model.Availability{}, w.fail(actionSetAvailability, apperr.Validation("%v", err))
	}
	if err := validateWindow(in.StartTime, in.EndTime); err != nil {
		return model.Availability{}, w.fail(actionSetAvailability, err)
	}

	if actor.UserID != in.UserID && !actor.IsManager() {
		return model.Availability{}, w.fail(actionSetAvailability, apperr.Forbidden("only the owner or a manager can edit this availability"))
	}
	if !w.IsAvailabilityEditable(w.now(), actor) {
		return model.Availability{}, w.fail(actionSetAvailability,
			apperr.Forbidden("availability is locked on %s", model.WeekdayOf(w.clock.Weekday(w.now()))))
	}

	row := model.Availability{
		UserID:      in.UserID,
		DayOfWeek:   day,
		IsAvailable: in.IsAvailable,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
	}

	existing, found, err := w.store.FindAvailability(ctx, in.UserID, day)
	if err != nil {
		return model.Availability{}, w.fail(actionSetAvailability, err)
	}

	if found {
		row.ID = existing.ID
		if err := w.store.UpdateAvailability(ctx, row); err != nil {
			return model.Availability{}, w.fail(actionSetAvailability, err)
		}
	} else {
		row, err = w.store.InsertAvailability(ctx, row)
		if err != nil {
			return model.Availability{}, w.fail(actionSetAvailability, err)
		}
	}

	w.metrics.IncTransition(actionSetAvailability)
	w.logger.Info("Availability saved",
		zap.String("user_id", in.UserID),
		zap.String("day", string(day)),
		zap.Bool("available", in.IsAvailable),
		zap.Bool("created", !found))

	return row, nil
}

// ListAvailability returns the person's week Monday..Sunday.
// Days without a stored row are returned unavailable with an empty ID.
// Only the person themselves or a manager may read it.
func (w *Workflow) ListAvailability(ctx context.Context, actor model.Actor, userID string) ([]model.Availability, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	if actor.UserID != userID && !actor.IsManager() {
		return nil, apperr.Forbidden("only the owner or a manager can view this availability")
	}
	rows, err := w.store.ListAvailability(ctx, userID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[model.Weekday]model.Availability, len(rows))
	for _, r := range rows {
		byDay[r.DayOfWeek] = r
	}

	week := make([]model.Availability, len(model.Weekdays))
	for i, d := range model.Weekdays {
		if r, ok := byDay[d]; ok {
			week[i] = r
			continue
		}
		week[i] = model.Availability{UserID: userID, DayOfWeek: d}
	}
	return week, nil
}

func validateWindow(start, end *string) error {
	var s, e time.Time
	var err error
	if start != nil {
		if s, err = time.Parse(timerange.ClockLayout, *start); err != nil {
			return apperr.Validation("start time %q must be HH:MM", *start)
		}
	}
	if end != nil {
		if e, err = time.Parse(timerange.ClockLayout, *end); err != nil {
			return apperr.Validation("end time %q must be HH:MM", *end)
		}
	}
	if start != nil && end != nil && !e.After(s) {
		return apperr.Validation("end time %s must be after start time %s", *end, *start)
	}
	return nil
}

// LockedDays lists the days on which staff cannot edit availability
func (w *Workflow) LockedDays() []model.Weekday {
	return w.gate.LockedDays()
}

// Now returns the current time from the workflow's time source
func (w *Workflow) Now() time.Time {
	return w.now()
}
