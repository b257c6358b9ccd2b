package order

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// allowedTransitions is the full fulfillment state machine. PENDING is the
// only initial state; COMPLETED and CANCELLED are terminal.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusPreparing: true,
		StatusCancelled: true,
	},
	StatusPreparing: {
		StatusReady: true,
	},
	StatusReady: {
		StatusCompleted: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether the state machine allows moving from one
// status to another.
func CanTransition(from, to OrderStatus) bool {
	return allowedTransitions[from][to]
}

// ApplyStatus validates and applies a status change (and optional payment
// flag) to the order in memory. The caller is responsible for persisting the
// result and for checking that the caller identity is staff-tier.
//
// Business rule: confirming an order implies payment has been collected at
// the counter, so a transition into CONFIRMED marks the order paid even when
// the caller did not ask for it.
func ApplyStatus(o *Order, newStatus OrderStatus, isPaid *bool) error {
	if !CanTransition(o.Status, newStatus) {
		return fmt.Errorf("%w: from %s to %s", ErrIllegalTransition, o.Status, newStatus)
	}

	if isPaid != nil && *isPaid && newStatus != StatusConfirmed {
		return ErrPaymentRequiresConfirmation
	}

	o.Status = newStatus
	if isPaid != nil {
		o.IsPaid = *isPaid
	}

	if newStatus == StatusConfirmed && !o.IsPaid {
		log.Debug().Str("order_number", o.OrderNumber).Msg("auto-marking order as paid on confirmation")
		o.IsPaid = true
	}

	return nil
}
