package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otwjunior/coffee-house/internal/order"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestApplyStatus_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		from       order.OrderStatus
		to         order.OrderStatus
		wantErr    error
		wantStatus order.OrderStatus
	}{
		{name: "pending_to_confirmed", from: order.StatusPending, to: order.StatusConfirmed, wantStatus: order.StatusConfirmed},
		{name: "pending_to_cancelled", from: order.StatusPending, to: order.StatusCancelled, wantStatus: order.StatusCancelled},
		{name: "confirmed_to_preparing", from: order.StatusConfirmed, to: order.StatusPreparing, wantStatus: order.StatusPreparing},
		{name: "confirmed_to_cancelled", from: order.StatusConfirmed, to: order.StatusCancelled, wantStatus: order.StatusCancelled},
		{name: "preparing_to_ready", from: order.StatusPreparing, to: order.StatusReady, wantStatus: order.StatusReady},
		{name: "ready_to_completed", from: order.StatusReady, to: order.StatusCompleted, wantStatus: order.StatusCompleted},

		{name: "pending_to_preparing_skips_confirmation", from: order.StatusPending, to: order.StatusPreparing, wantErr: order.ErrIllegalTransition},
		{name: "confirmed_back_to_pending", from: order.StatusConfirmed, to: order.StatusPending, wantErr: order.ErrIllegalTransition},
		{name: "preparing_to_cancelled", from: order.StatusPreparing, to: order.StatusCancelled, wantErr: order.ErrIllegalTransition},
		{name: "completed_is_terminal", from: order.StatusCompleted, to: order.StatusPending, wantErr: order.ErrIllegalTransition},
		{name: "cancelled_is_terminal", from: order.StatusCancelled, to: order.StatusConfirmed, wantErr: order.ErrIllegalTransition},
		{name: "no_self_transition", from: order.StatusPending, to: order.StatusPending, wantErr: order.ErrIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &order.Order{OrderNumber: "20250901-0001", Status: tt.from}

			err := order.ApplyStatus(o, tt.to, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, o.Status, "rejected transition must not mutate status")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, o.Status)
		})
	}
}

func TestApplyStatus_AutoPayOnConfirm(t *testing.T) {
	o := &order.Order{OrderNumber: "20250901-0002", Status: order.StatusPending}

	err := order.ApplyStatus(o, order.StatusConfirmed, nil)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, o.Status)
	assert.True(t, o.IsPaid, "confirming must mark the order paid even when not requested")
}

func TestApplyStatus_PaymentRequiresConfirmation(t *testing.T) {
	tests := []struct {
		name     string
		from     order.OrderStatus
		to       order.OrderStatus
		isPaid   *bool
		wantErr  error
		wantPaid bool
	}{
		{
			name:     "explicit_paid_while_confirming",
			from:     order.StatusPending,
			to:       order.StatusConfirmed,
			isPaid:   boolPtr(true),
			wantPaid: true,
		},
		{
			name:    "paid_while_cancelling_rejected",
			from:    order.StatusPending,
			to:      order.StatusCancelled,
			isPaid:  boolPtr(true),
			wantErr: order.ErrPaymentRequiresConfirmation,
		},
		{
			name:    "paid_while_readying_rejected",
			from:    order.StatusPreparing,
			to:      order.StatusReady,
			isPaid:  boolPtr(true),
			wantErr: order.ErrPaymentRequiresConfirmation,
		},
		{
			name:     "explicit_unpaid_overridden_by_confirm_rule",
			from:     order.StatusPending,
			to:       order.StatusConfirmed,
			isPaid:   boolPtr(false),
			wantPaid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &order.Order{OrderNumber: "20250901-0003", Status: tt.from}

			err := order.ApplyStatus(o, tt.to, tt.isPaid)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, o.Status)
				assert.False(t, o.IsPaid)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, o.IsPaid)
		})
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, order.CanTransition(order.OrderStatus("UNKNOWN"), order.StatusConfirmed))
}
