package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	"github.com/jakechorley/coffee-rota/pkg/db"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

// CopyWeek duplicates the store's shifts from the week before weekStart into
// the week starting at weekStart. weekStart must be a Monday 00:00 in the
// configured zone. Copies keep their assignee and note; swap state is reset.
func (w *Workflow) CopyWeek(ctx context.Context, actor model.Actor, storeID string, weekStart time.Time) ([]model.Shift, error) {
	if err := requireManager(actor, "copy a week"); err != nil {
		return nil, w.fail(actionCopy, err)
	}
	if storeID == "" {
		return nil, w.fail(actionCopy, apperr.Validation("store id is required"))
	}
	if !w.clock.IsWeekStart(weekStart) {
		return nil, w.fail(actionCopy, apperr.Validation("week start %s is not a Monday at 00:00 %s",
			w.clock.FormatLocal(weekStart, time.RFC3339), w.clock.Location()))
	}

	target := w.clock.Week(weekStart)
	source := timerange.Interval{Start: w.clock.AddDays(weekStart, -7), End: target.Start}

	logger := w.logger.With(
		zap.String("store_id", storeID),
		zap.Time("source_start", source.Start),
		zap.Time("target_start", target.Start))

	logger.Info("Copying week")

	previous, err := w.store.FindShifts(ctx, []db.Filter{
		db.Eq(db.ColStoreID, storeID),
		db.Gte(db.ColStartTime, source.Start),
		db.Lt(db.ColStartTime, source.End),
	}, db.Asc(db.ColStartTime))
	if err != nil {
		return nil, w.fail(actionCopy, err)
	}

	if len(previous) == 0 {
		logger.Info("Source week is empty, nothing to copy")
		return []model.Shift{}, nil
	}

	copies := make([]model.Shift, len(previous))
	for i, s := range previous {
		copies[i] = model.Shift{
			StoreID:    s.StoreID,
			UserID:     s.UserID,
			StartTime:  w.clock.AddDays(s.StartTime, 7),
			EndTime:    w.clock.AddDays(s.EndTime, 7),
			Note:       s.Note,
			SwapStatus: model.SwapNone,
		}
	}

	inserted, err := w.store.InsertShifts(ctx, copies)
	if err != nil {
		return nil, w.fail(actionCopy, err)
	}

	w.metrics.IncTransition(string(actionCopy))
	w.metrics.AddCopied(len(inserted))
	logger.Info("Week copied", zap.Int("shifts", len(inserted)))

	return inserted, nil
}
