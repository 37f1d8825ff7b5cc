package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/availability"
	"github.com/jakechorley/coffee-rota/pkg/core/conflict"
	"github.com/jakechorley/coffee-rota/pkg/core/lifecycle"
	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	"github.com/jakechorley/coffee-rota/pkg/db"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
	"github.com/jakechorley/coffee-rota/pkg/metrics"
)

// Options configures a Workflow. Zero values select defaults.
type Options struct {
	Gate    *availability.Gate
	Clock   *timerange.Clock
	Metrics *metrics.WorkflowMetrics
	Now     func() time.Time
}

// Workflow exposes the shift and availability operations used by the API and CLI
type Workflow struct {
	store    db.Database
	detector *conflict.Detector
	gate     *availability.Gate
	clock    *timerange.Clock
	metrics  *metrics.WorkflowMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewWorkflow creates a Workflow over the given store
func NewWorkflow(store db.Database, logger *zap.Logger, opts Options) *Workflow {
	w := &Workflow{
		store:    store,
		detector: conflict.NewDetector(store, logger),
		gate:     opts.Gate,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		logger:   logger,
		now:      opts.Now,
	}
	if w.gate == nil {
		w.gate = availability.DefaultGate()
	}
	if w.clock == nil {
		w.clock = timerange.UTCClock()
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Clock returns the clock used for local date conversion
func (w *Workflow) Clock() *timerange.Clock {
	return w.clock
}

// Actions whose precondition is set by someone else's earlier action. Seeing the
// wrong state on read means another actor got there first.
var raceableFrom = map[lifecycle.Action]lifecycle.State{
	lifecycle.ActionClaim:   lifecycle.StateUnassigned,
	lifecycle.ActionRequest: lifecycle.StateOffered,
	lifecycle.ActionApprove: lifecycle.StatePendingApproval,
	lifecycle.ActionDeny:    lifecycle.StatePendingApproval,
}

// transition runs one state machine step for shiftID and persists it with a conditional write
func (w *Workflow) transition(ctx context.Context, shiftID string, action lifecycle.Action, actor model.Actor) (model.Shift, error) {
	logger := w.logger.With(
		zap.String("action", string(action)),
		zap.String("shift_id", shiftID),
		zap.String("actor_id", actor.UserID))

	logger.Debug("Starting shift transition")

	current, err := w.store.GetShift(ctx, shiftID)
	if err != nil {
		return model.Shift{}, w.fail(action, err)
	}

	next, err := lifecycle.Apply(current, action, actor)
	if err != nil {
		if want, ok := raceableFrom[action]; ok && apperr.Is(err, apperr.CodeStateConflict) {
			logger.Info("Shift no longer in expected state",
				zap.String("expected", string(want)),
				zap.String("actual", string(lifecycle.StateOf(current))))
			return model.Shift{}, w.fail(action, apperr.RaceLost("too slow: shift %s is no longer %s", shiftID, want))
		}
		return model.Shift{}, w.fail(action, err)
	}

	// Conflict guard for the incoming owner, checked immediately before the write
	if newOwner, changes := lifecycle.NewOwner(current, action, actor); changes {
		conflicts, err := w.detector.Conflicts(ctx, newOwner, current.StartTime, current.EndTime, current.ID)
		if err != nil {
			return model.Shift{}, w.fail(action, err)
		}
		if len(conflicts) > 0 {
			logger.Info("Shift transition blocked by conflict",
				zap.String("new_owner", newOwner),
				zap.Strings("conflicting_shifts", conflict.ConflictIDs(conflicts)))
			return model.Shift{}, w.fail(action, apperr.Conflict("%s is already booked during this shift", newOwner).
				WithDetails(conflict.ConflictIDs(conflicts)))
		}
	}

	updated, err := w.store.UpdateShiftIf(ctx, shiftID, expectState(current), statePatch(next))
	if err != nil {
		return model.Shift{}, w.fail(action, err)
	}
	if !updated {
		logger.Info("Conditional write matched no row")
		return model.Shift{}, w.fail(action, apperr.RaceLost("too slow: shift %s changed before %s was saved", shiftID, action))
	}

	w.metrics.IncTransition(string(action))
	logger.Info("Shift transition committed",
		zap.String("from", string(lifecycle.StateOf(current))),
		zap.String("to", string(lifecycle.StateOf(next))))

	return next, nil
}

// expectState filters on the ownership and swap fields as they were read,
// turning the update into a compare-and-set
func expectState(s model.Shift) []db.Filter {
	status := s.SwapStatus
	if status == "" {
		status = model.SwapNone
	}
	return []db.Filter{
		db.EqOrNull(db.ColUserID, s.UserID),
		db.Eq(db.ColSwapStatus, string(status)),
		db.EqOrNull(db.ColSwapCandidateID, s.SwapCandidateID),
	}
}

// statePatch holds the ownership and swap fields of s
func statePatch(s model.Shift) db.Row {
	row := db.ShiftToRow(s)
	return db.Row{
		db.ColUserID:          row[db.ColUserID],
		db.ColSwapStatus:      row[db.ColSwapStatus],
		db.ColSwapCandidateID: row[db.ColSwapCandidateID],
	}
}

// fail records a failed action and passes err through
func (w *Workflow) fail(action lifecycle.Action, err error) error {
	w.metrics.IncFailure(string(action), string(apperr.CodeOf(err)))
	return err
}

func requireManager(actor model.Actor, what string) error {
	if !actor.IsManager() {
		return apperr.Forbidden("only a manager can %s", what)
	}
	return nil
}
