package dietplan

import (
	"errors"
	"fmt"

	"github.com/ward-diet/api/internal/enum"
)

// Errors returned by the transition rules.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotApproved       = errors.New("diet order is not approved")
	ErrUnknownStatus     = errors.New("unknown status")
)

// requestTargets lists the statuses a diet request may be moved to. Requests
// are allowed to be re-decided after a terminal state; the later decision
// simply overwrites the earlier one.
var requestTargets = map[string]bool{
	enum.RequestStatusOrderPlaced: true,
	enum.RequestStatusRejected:    true,
}

// RequestTransition validates a diet request status change.
func RequestTransition(current, next string) error {
	if !isRequestStatus(current) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	if !requestTargets[next] {
		return fmt.Errorf("%w: diet request %s to %s", ErrInvalidTransition, current, next)
	}
	return nil
}

func isRequestStatus(s string) bool {
	switch s {
	case enum.RequestStatusPending, enum.RequestStatusOrderPlaced, enum.RequestStatusRejected:
		return true
	}
	return false
}

// approvalTransitions holds the allowed diet order approval changes.
// approved and rejected are terminal.
var approvalTransitions = map[string][]string{
	enum.ApprovalStatusPending: {enum.ApprovalStatusApproved, enum.ApprovalStatusRejected},
}

// ApprovalTransition validates a diet order approval change.
func ApprovalTransition(current, next string) error {
	return checkTransition("approval", approvalTransitions, current, next)
}

// CanPauseOrRestart gates the pause/restart actions on approval. Both
// actions are re-entrant: pausing a paused order just re-stamps the date.
func CanPauseOrRestart(approval string) error {
	if approval != enum.ApprovalStatusApproved {
		return ErrNotApproved
	}
	return nil
}

// canteenTransitions is strictly forward; there is no way back.
var canteenTransitions = map[string][]string{
	enum.CanteenStatusPending:   {enum.CanteenStatusPreparing},
	enum.CanteenStatusPreparing: {enum.CanteenStatusDelivered},
}

// CanteenTransition validates a canteen order status change.
func CanteenTransition(current, next string) error {
	return checkTransition("canteen order", canteenTransitions, current, next)
}

// CanMarkPreparing mirrors the kitchen screen: the action is offered until
// the order is preparing or delivered.
func CanMarkPreparing(current string) bool {
	return CanteenTransition(current, enum.CanteenStatusPreparing) == nil
}

// CanMarkDelivered is only offered while the order is preparing.
func CanMarkDelivered(current string) bool {
	return CanteenTransition(current, enum.CanteenStatusDelivered) == nil
}

func checkTransition(kind string, allowed map[string][]string, current, next string) error {
	targets, ok := allowed[current]
	if !ok {
		return fmt.Errorf("%w: cannot move %s from %s", ErrInvalidTransition, kind, current)
	}
	for _, s := range targets {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move %s from %s to %s", ErrInvalidTransition, kind, current, next)
}
