// Package lifecycle holds the shift ownership and swap state machine.
//
// States (ownership folded into swap status):
//
//	Unassigned       user=nil  status=none
//	Assigned(X)      user=X    status=none
//	Offered(X)       user=X    status=offered
//	PendingApproval  user=X    status=pending_approval candidate=Y
//	Denied(X)        user=X    status=denied
//
// Apply is pure. Persisting the result, and the conflict guard on claim and
// approve, belong to the caller.
package lifecycle

import (
	"github.com/jakechorley/coffee-rota/pkg/core/model"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

type State string

const (
	StateUnassigned      State = "unassigned"
	StateAssigned        State = "assigned"
	StateOffered         State = "offered"
	StatePendingApproval State = "pending_approval"
	StateDenied          State = "denied"
	// StateInvalid covers stored rows whose fields contradict each other
	StateInvalid State = "invalid"
)

type Action string

const (
	ActionClaim       Action = "claim"
	ActionOffer       Action = "offer"
	ActionCancel      Action = "cancel"
	ActionRequest     Action = "request"
	ActionApprove     Action = "approve"
	ActionDeny        Action = "deny"
	ActionAcknowledge Action = "acknowledge"
	ActionDelete      Action = "delete"
)

// Actions lists every action, in workflow order
var Actions = []Action{
	ActionClaim, ActionOffer, ActionCancel, ActionRequest,
	ActionApprove, ActionDeny, ActionAcknowledge, ActionDelete,
}

// StateOf derives the workflow state of a shift
func StateOf(s model.Shift) State {
	status := s.SwapStatus
	if status == "" {
		status = model.SwapNone
	}

	if s.UserID == nil {
		if status == model.SwapNone && s.SwapCandidateID == nil {
			return StateUnassigned
		}
		return StateInvalid
	}

	switch status {
	case model.SwapNone:
		return StateAssigned
	case model.SwapOffered:
		return StateOffered
	case model.SwapPendingApproval:
		if s.SwapCandidateID == nil {
			return StateInvalid
		}
		return StatePendingApproval
	case model.SwapDenied:
		return StateDenied
	}
	return StateInvalid
}

// NewOwner returns who will own the shift once action succeeds. Only claim and
// approve change ownership; for every other action it reports false.
func NewOwner(s model.Shift, action Action, actor model.Actor) (string, bool) {
	switch action {
	case ActionClaim:
		return actor.UserID, true
	case ActionApprove:
		if s.SwapCandidateID != nil {
			return *s.SwapCandidateID, true
		}
	}
	return "", false
}

// Apply validates action against the current state and actor and returns the next shift.
// For ActionDelete the shift is returned unchanged; the caller removes it.
// Illegal transitions return a STATE_CONFLICT error, missing rights a FORBIDDEN error.
func Apply(s model.Shift, action Action, actor model.Actor) (model.Shift, error) {
	if actor.UserID == "" {
		return s, apperr.Forbidden("an identified user is required to %s a shift", action)
	}

	state := StateOf(s)
	next := s

	switch action {
	case ActionClaim:
		if state != StateUnassigned {
			return s, illegal(action, state)
		}
		next.UserID = strPtr(actor.UserID)
		clearSwap(&next)

	case ActionOffer:
		if state != StateAssigned {
			return s, illegal(action, state)
		}
		if !s.OwnedBy(actor.UserID) {
			return s, apperr.Forbidden("only the shift owner can offer it for swap")
		}
		next.SwapStatus = model.SwapOffered
		next.SwapCandidateID = nil

	case ActionCancel:
		if state != StateOffered {
			return s, illegal(action, state)
		}
		if !s.OwnedBy(actor.UserID) {
			return s, apperr.Forbidden("only the shift owner can cancel a swap offer")
		}
		clearSwap(&next)

	case ActionRequest:
		if state != StateOffered {
			return s, illegal(action, state)
		}
		if s.OwnedBy(actor.UserID) {
			return s, apperr.Validation("cannot request to take your own shift")
		}
		next.SwapStatus = model.SwapPendingApproval
		next.SwapCandidateID = strPtr(actor.UserID)

	case ActionApprove:
		if !actor.IsManager() {
			return s, apperr.Forbidden("only a manager can approve a swap")
		}
		if state != StatePendingApproval {
			return s, illegal(action, state)
		}
		next.UserID = strPtr(*s.SwapCandidateID)
		clearSwap(&next)

	case ActionDeny:
		if !actor.IsManager() {
			return s, apperr.Forbidden("only a manager can deny a swap")
		}
		if state != StatePendingApproval {
			return s, illegal(action, state)
		}
		next.SwapStatus = model.SwapDenied
		next.SwapCandidateID = nil

	case ActionAcknowledge:
		if state != StateDenied {
			return s, illegal(action, state)
		}
		if !s.OwnedBy(actor.UserID) {
			return s, apperr.Forbidden("only the shift owner can acknowledge a denied swap")
		}
		clearSwap(&next)

	case ActionDelete:
		if !actor.IsManager() {
			return s, apperr.Forbidden("only a manager can delete a shift")
		}

	default:
		return s, apperr.Validation("unknown action %q", action)
	}

	return next, nil
}

func clearSwap(s *model.Shift) {
	s.SwapStatus = model.SwapNone
	s.SwapCandidateID = nil
}

func illegal(action Action, state State) error {
	return apperr.IllegalTransition("cannot %s a shift that is %s", action, state)
}

func strPtr(s string) *string {
	return &s
}
