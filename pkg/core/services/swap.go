package services

import (
	"context"

	"github.com/jakechorley/coffee-rota/pkg/core/lifecycle"
	"github.com/jakechorley/coffee-rota/pkg/core/model"
)

// ClaimShift assigns an open shift to the actor.
// Fails with CONFLICT if the actor is already booked, RACE_LOST if someone claimed it first.
func (w *Workflow) ClaimShift(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error) {
	return w.transition(ctx, shiftID, lifecycle.ActionClaim, actor)
}

// OfferSwap puts the actor's own shift up for swap
func (w *Workflow) OfferSwap(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error) {
	return w.transition(ctx, shiftID, lifecycle.ActionOffer, actor)
}

// CancelOffer withdraws the actor's swap offer
func (w *Workflow) CancelOffer(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error) {
	return w.transition(ctx, shiftID, lifecycle.ActionCancel, actor)
}

// RequestSwap records the actor as the candidate to take an offered shift
func (w *Workflow) RequestSwap(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error) {
	return w.transition(ctx, shiftID, lifecycle.ActionRequest, actor)
}

// ApproveSwap hands a pending shift to its candidate. The candidate must be free for the shift.
func (w *Workflow) ApproveSwap(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error) {
	return w.transition(ctx, shiftID, lifecycle.ActionApprove, actor)
}

// DenySwap rejects a pending swap request; the owner keeps the shift
func (w *Workflow) DenySwap(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error) {
	return w.transition(ctx, shiftID, lifecycle.ActionDeny, actor)
}

// AcknowledgeDenial clears the denied flag on the actor's shift
func (w *Workflow) AcknowledgeDenial(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error) {
	return w.transition(ctx, shiftID, lifecycle.ActionAcknowledge, actor)
}
