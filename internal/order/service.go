package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/otwjunior/coffee-house/internal/catalog"
	"github.com/otwjunior/coffee-house/internal/identity"
)

// CatalogLookup is the slice of the catalog the order core needs: resolve a
// product to its current price and a single in-stock boolean. The
// availability-flag vs. stock-count split is the catalog's business.
type CatalogLookup interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type ItemRequest struct {
	ProductID      uuid.UUID
	Quantity       int
	Customizations Customizations
}

type CreateOrderInput struct {
	Items               []ItemRequest
	CustomerName        string
	RequestedPickupTime *time.Time
	Notes               string
}

type UpdateStatusInput struct {
	NewStatus OrderStatus
	IsPaid    *bool
}

type Service interface {
	CreateOrder(ctx context.Context, caller identity.Identity, input CreateOrderInput) (*Order, error)
	GetOrderByNumber(ctx context.Context, caller identity.Identity, orderNumber string) (*Order, error)
	ListOrders(ctx context.Context, caller identity.Identity) ([]Order, error)
	ListActiveOrders(ctx context.Context, caller identity.Identity) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, caller identity.Identity, orderNumber string, input UpdateStatusInput) (*Order, error)
}

type service struct {
	orderRepo Repository
	catalog   CatalogLookup
	allocator *SequenceAllocator
	now       func() time.Time
}

func NewService(orderRepo Repository, catalogLookup CatalogLookup) Service {
	return &service{
		orderRepo: orderRepo,
		catalog:   catalogLookup,
		allocator: NewSequenceAllocator(orderRepo),
		now:       time.Now,
	}
}

// CreateOrder prices every requested item against the catalog, allocates an
// order number and persists the order atomically. Any failed item aborts the
// whole operation; a partially persisted order is never observable. A guest
// caller must supply a customer name.
func (s *service) CreateOrder(ctx context.Context, caller identity.Identity, input CreateOrderInput) (*Order, error) {
	if len(input.Items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return nil, ErrEmptyOrder
	}

	now := s.now()
	if input.RequestedPickupTime != nil && input.RequestedPickupTime.Before(now) {
		return nil, ErrPickupInPast
	}

	newOrder := &Order{
		Status:              StatusPending,
		IsPaid:              false,
		RequestedPickupTime: input.RequestedPickupTime,
		Notes:               input.Notes,
		CustomerName:        input.CustomerName,
	}

	if caller.Authenticated {
		newOrder.UserID = uuid.NullUUID{UUID: caller.UserID, Valid: true}
	} else if input.CustomerName == "" {
		return nil, ErrGuestNameRequired
	}

	// Pricing and validation happen before any write, so the counter row
	// lock is never held while the catalog is consulted.
	items := make([]OrderItem, 0, len(input.Items))
	for _, req := range input.Items {
		item, err := s.priceItem(ctx, req)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	newOrder.Items = items

	orderNumber, err := s.allocator.AllocateOrderNumber(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to allocate order number")
		return nil, err
	}
	newOrder.OrderNumber = orderNumber
	newOrder.TotalAmount = newOrder.RecomputeTotal()

	if err := s.orderRepo.CreateOrder(ctx, newOrder); err != nil {
		// The allocated number is abandoned here: a gap in the day's
		// sequence, never a duplicate.
		log.Error().Err(err).Str("order_number", orderNumber).Msg("service: failed to persist order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Str("order_number", newOrder.OrderNumber).
		Str("total_amount", newOrder.TotalAmount.StringFixed(2)).
		Int("items", len(newOrder.Items)).
		Bool("guest", !caller.Authenticated).
		Msg("service: order created")

	return newOrder, nil
}

// priceItem resolves a requested item against the catalog and freezes the
// current catalog price into it. The frozen price is never re-derived, so
// receipts stay accurate when the catalog price changes later.
func (s *service) priceItem(ctx context.Context, req ItemRequest) (*OrderItem, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, req.ProductID)
	}

	product, err := s.catalog.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrProductUnavailable, req.ProductID)
		}
		return nil, fmt.Errorf("service: failed to look up product %s: %w", req.ProductID, err)
	}

	if !product.InStock() {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
	}

	return &OrderItem{
		ProductID:      product.ID,
		Quantity:       req.Quantity,
		UnitPrice:      product.Price,
		Customizations: req.Customizations,
	}, nil
}

// GetOrderByNumber returns the order if the caller may see it: staff see
// everything, an authenticated customer sees their own orders, and an
// ownerless (guest) order is retrievable by anyone holding its number —
// the number on the receipt is the guest's only handle on the order.
func (s *service) GetOrderByNumber(ctx context.Context, caller identity.Identity, orderNumber string) (*Order, error) {
	foundOrder, err := s.orderRepo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order %s: %w", orderNumber, err)
	}

	if !s.canView(caller, foundOrder) {
		log.Warn().Str("order_number", orderNumber).Msg("service: caller may not view order")
		return nil, ErrForbidden
	}

	return foundOrder, nil
}

func (s *service) canView(caller identity.Identity, o *Order) bool {
	if caller.IsStaff() {
		return true
	}
	if !o.UserID.Valid {
		return true
	}
	return caller.Authenticated && o.UserID.UUID == caller.UserID
}

// ListOrders returns all orders for staff, the caller's own orders for an
// authenticated customer, and an empty list for guests.
func (s *service) ListOrders(ctx context.Context, caller identity.Identity) ([]Order, error) {
	switch {
	case caller.IsStaff():
		orders, err := s.orderRepo.ListOrders(ctx)
		if err != nil {
			return nil, fmt.Errorf("service: failed to list orders: %w", err)
		}
		return orders, nil
	case caller.Authenticated:
		orders, err := s.orderRepo.ListOrdersByUser(ctx, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to list orders for user %s: %w", caller.UserID, err)
		}
		return orders, nil
	default:
		return []Order{}, nil
	}
}

// ListActiveOrders is the staff dashboard view: orders still in fulfillment,
// overdue ones first.
func (s *service) ListActiveOrders(ctx context.Context, caller identity.Identity) ([]Order, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}

	orders, err := s.orderRepo.ListActiveOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list active orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus applies a status transition on behalf of a staff caller.
// The transition is validated in memory against the fetched order, then
// persisted; the order is returned in its new state.
func (s *service) UpdateOrderStatus(ctx context.Context, caller identity.Identity, orderNumber string, input UpdateStatusInput) (*Order, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}

	currentOrder, err := s.orderRepo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order %s for status update: %w", orderNumber, err)
	}

	oldStatus := currentOrder.Status
	if err := ApplyStatus(currentOrder, input.NewStatus, input.IsPaid); err != nil {
		log.Warn().
			Str("order_number", orderNumber).
			Stringer("current_status", oldStatus).
			Stringer("new_status", input.NewStatus).
			Err(err).
			Msg("service: status update rejected")
		return nil, err
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, currentOrder, oldStatus); err != nil {
		if errors.Is(err, ErrConcurrencyConflict) {
			return nil, fmt.Errorf("service: order %s changed during status update: %w", orderNumber, ErrConcurrencyConflict)
		}
		return nil, fmt.Errorf("service: failed to update status for order %s: %w", orderNumber, err)
	}

	log.Info().
		Str("order_number", orderNumber).
		Stringer("old_status", oldStatus).
		Stringer("new_status", currentOrder.Status).
		Bool("is_paid", currentOrder.IsPaid).
		Msg("service: order status updated")

	return currentOrder, nil
}
