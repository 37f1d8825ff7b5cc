package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

const actionStoreNotes = "store_notes"

// UpdateStoreNotes replaces the bulletin notes shown on a store's schedule.
// Blank notes clear the bulletin.
func (w *Workflow) UpdateStoreNotes(ctx context.Context, actor model.Actor, storeID string, notes string) (model.Store, error) {
	if err := requireManager(actor, "edit store notes"); err != nil {
		return model.Store{}, w.fail(actionStoreNotes, err)
	}
	if storeID == "" {
		return model.Store{}, w.fail(actionStoreNotes, apperr.Validation("store id is required"))
	}

	var value *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		value = &trimmed
	}

	updated, err := w.store.UpdateStoreNotes(ctx, storeID, value)
	if err != nil {
		return model.Store{}, w.fail(actionStoreNotes, err)
	}
	if !updated {
		return model.Store{}, w.fail(actionStoreNotes, apperr.NotFound("store %s not found", storeID))
	}

	w.metrics.IncTransition(actionStoreNotes)
	w.logger.Info("Store notes updated", zap.String("store_id", storeID), zap.Bool("cleared", value == nil))

	return w.store.GetStore(ctx, storeID)
}

// ListStores returns every store ordered by name
func (w *Workflow) ListStores(ctx context.Context) ([]model.Store, error) {
	return w.store.ListStores(ctx)
}
