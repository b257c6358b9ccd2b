package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func (os OrderStatus) String() string {
	return string(os)
}

// Valid reports whether os is one of the known statuses.
func (os OrderStatus) Valid() bool {
	switch os {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses are the statuses shown on the barista dashboard: everything
// that still needs work behind the counter.
var ActiveStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusReady}

// Customizations is an open key-value mapping describing how a line item was
// ordered (size, milk, shots, ...). Unrecognized keys are stored but ignored
// for display.
type Customizations map[string]any

type OrderItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrderID        uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID      uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity       int             `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	Customizations Customizations  `json:"customizations" db:"customizations"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Subtotal is the line total: frozen unit price times quantity, rounded to
// two decimal places.
func (oi *OrderItem) Subtotal() decimal.Decimal {
	return oi.UnitPrice.Mul(decimal.NewFromInt(int64(oi.Quantity))).Round(2)
}

type Order struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	OrderNumber         string          `json:"order_number" db:"order_number"`
	UserID              uuid.NullUUID   `json:"user_id" db:"user_id"`
	CustomerName        string          `json:"customer_name" db:"customer_name"`
	Status              OrderStatus     `json:"status" db:"status"`
	IsPaid              bool            `json:"is_paid" db:"is_paid"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	RequestedPickupTime *time.Time      `json:"requested_pickup_time" db:"requested_pickup_time"`
	Notes               string          `json:"notes" db:"notes"`
	Items               []OrderItem     `json:"items" db:"-"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// RecomputeTotal re-derives the order total from its items. It must be called
// after every item mutation; the stored total is never trusted as an input.
func (o *Order) RecomputeTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal())
	}
	return total.Round(2)
}

// IsLate reports whether the order missed its requested pickup time while
// still being worked on. Used to surface overdue orders first on the
// dashboard.
func (o *Order) IsLate(now time.Time) bool {
	if o.RequestedPickupTime == nil {
		return false
	}
	if o.Status != StatusPreparing && o.Status != StatusReady {
		return false
	}
	return o.RequestedPickupTime.Before(now)
}
