package order_test

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/otwjunior/coffee-house/internal/order"
)

func TestOrderItem_Subtotal(t *testing.T) {
	item := order.OrderItem{
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("4.50"),
	}
	assert.True(t, item.Subtotal().Equal(decimal.RequireFromString("13.50")))

	// Rounding happens per line.
	item = order.OrderItem{
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("1.115"),
	}
	assert.Equal(t, "3.35", item.Subtotal().StringFixed(2))
}

func TestOrder_RecomputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []order.OrderItem
		want  string
	}{
		{
			name:  "no_items",
			items: nil,
			want:  "0.00",
		},
		{
			name: "two_items",
			items: []order.OrderItem{
				{Quantity: 2, UnitPrice: decimal.RequireFromString("4.50")},
				{Quantity: 1, UnitPrice: decimal.RequireFromString("3.00")},
			},
			want: "12.00",
		},
		{
			name: "subtotals_rounded_per_line",
			items: []order.OrderItem{
				{Quantity: 1, UnitPrice: decimal.RequireFromString("0.305")},
				{Quantity: 1, UnitPrice: decimal.RequireFromString("0.305")},
			},
			want: "0.62",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := order.Order{Items: tt.items}
			assert.Equal(t, tt.want, o.RecomputeTotal().StringFixed(2))
		})
	}
}

func TestOrder_IsLate(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-10 * time.Minute)
	future := now.Add(10 * time.Minute)

	tests := []struct {
		name  string
		order order.Order
		want  bool
	}{
		{
			name:  "no_pickup_time",
			order: order.Order{Status: order.StatusPreparing},
			want:  false,
		},
		{
			name:  "preparing_past_pickup",
			order: order.Order{Status: order.StatusPreparing, RequestedPickupTime: &past},
			want:  true,
		},
		{
			name:  "ready_past_pickup",
			order: order.Order{Status: order.StatusReady, RequestedPickupTime: &past},
			want:  true,
		},
		{
			name:  "pending_past_pickup_not_late",
			order: order.Order{Status: order.StatusPending, RequestedPickupTime: &past},
			want:  false,
		},
		{
			name:  "preparing_future_pickup",
			order: order.Order{Status: order.StatusPreparing, RequestedPickupTime: &future},
			want:  false,
		},
		{
			name:  "completed_past_pickup_not_late",
			order: order.Order{Status: order.StatusCompleted, RequestedPickupTime: &past},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.order.IsLate(now))
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []order.OrderStatus{
		order.StatusPending, order.StatusConfirmed, order.StatusPreparing,
		order.StatusReady, order.StatusCompleted, order.StatusCancelled,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, order.OrderStatus("SHIPPED").Valid())
}

func newTestUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.Must(uuid.NewV4())
}
