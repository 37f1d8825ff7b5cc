package services

import (
	"context"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/db"
)

// ListMarketplace returns the shifts staff can pick up: open shifts and shifts
// offered for swap that have not started yet, earliest first. An empty storeID
// lists every store.
func (w *Workflow) ListMarketplace(ctx context.Context, storeID string) ([]model.Shift, error) {
	base := []db.Filter{db.Gt(db.ColStartTime, w.now().UTC())}
	if storeID != "" {
		base = append(base, db.Eq(db.ColStoreID, storeID))
	}

	open, err := w.store.FindShifts(ctx, append(clone(base), db.IsNull(db.ColUserID)), db.Asc(db.ColStartTime))
	if err != nil {
		return nil, err
	}
	offered, err := w.store.FindShifts(ctx,
		append(clone(base), db.NotNull(db.ColUserID), db.Eq(db.ColSwapStatus, string(model.SwapOffered))),
		db.Asc(db.ColStartTime))
	if err != nil {
		return nil, err
	}

	return mergeByStart(open, offered), nil
}

// PendingApprovals returns the swap requests waiting for a manager decision, earliest first
func (w *Workflow) PendingApprovals(ctx context.Context, actor model.Actor, storeID string) ([]model.Shift, error) {
	if err := requireManager(actor, "review swap requests"); err != nil {
		return nil, err
	}
	filters := []db.Filter{db.Eq(db.ColSwapStatus, string(model.SwapPendingApproval))}
	if storeID != "" {
		filters = append(filters, db.Eq(db.ColStoreID, storeID))
	}
	return w.store.FindShifts(ctx, filters, db.Asc(db.ColStartTime))
}

// mergeByStart merges two start-sorted slices into one
func mergeByStart(a, b []model.Shift) []model.Shift {
	out := make([]model.Shift, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].StartTime.Before(a[i].StartTime) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func clone(filters []db.Filter) []db.Filter {
	return append([]db.Filter(nil), filters...)
}

// BadgeCounts are the numbers shown on the marketplace and approvals badges
type BadgeCounts struct {
	Marketplace      int `json:"marketplace"`
	PendingApprovals int `json:"pendingApprovals"`
}

// CountBadges counts marketplace shifts and, for managers, pending swap requests
func (w *Workflow) CountBadges(ctx context.Context, actor model.Actor, storeID string) (BadgeCounts, error) {
	listed, err := w.ListMarketplace(ctx, storeID)
	if err != nil {
		return BadgeCounts{}, err
	}
	counts := BadgeCounts{Marketplace: len(listed)}
	if actor.IsManager() {
		pending, err := w.PendingApprovals(ctx, actor, storeID)
		if err != nil {
			return BadgeCounts{}, err
		}
		counts.PendingApprovals = len(pending)
	}
	return counts, nil
}
