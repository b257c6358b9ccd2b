package order

import "errors"

var (
	// Validation errors: the caller must correct the request and resubmit.
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrInvalidQuantity    = errors.New("item quantity must be at least 1")
	ErrProductUnavailable = errors.New("product is unavailable or out of stock")
	ErrPickupInPast       = errors.New("requested pickup time cannot be in the past")
	ErrGuestNameRequired  = errors.New("customer_name is required for guest orders")

	// Workflow errors: the action is rejected, order state is unchanged.
	ErrIllegalTransition           = errors.New("illegal status transition")
	ErrPaymentRequiresConfirmation = errors.New("order can only be marked paid when confirming it")

	// ErrConcurrencyConflict is transient: the atomic unit aborted under
	// contention. Allocation retries internally; if it still surfaces, the
	// whole request can be retried.
	ErrConcurrencyConflict = errors.New("concurrent write conflict")

	ErrOrderNotFound = errors.New("order not found")
	ErrForbidden     = errors.New("caller is not allowed to access this order")
)
