package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	CounterStore
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListActiveOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, order *Order, expectedStatus OrderStatus) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// IncrementDailyCounter bumps the per-day sequence in a single upsert
// statement; the row lock it takes is the only serialization point for order
// numbering and is held for this statement only. Transient aborts are mapped
// to ErrConcurrencyConflict so the allocator can retry.
func (r *postgresRepository) IncrementDailyCounter(ctx context.Context, date time.Time) (int, error) {
	query := `
		INSERT INTO order_counters (date, last_sequence)
		VALUES ($1, 1)
		ON CONFLICT (date) DO UPDATE
		SET last_sequence = order_counters.last_sequence + 1
		RETURNING last_sequence
	`

	var seq int
	err := r.db.QueryRow(ctx, query, date.Format("2006-01-02")).Scan(&seq)
	if err != nil {
		if isTransient(err) {
			return 0, fmt.Errorf("repository: counter increment aborted: %w", ErrConcurrencyConflict)
		}
		return 0, fmt.Errorf("repository: failed to increment daily counter: %w", err)
	}

	return seq, nil
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.UniqueViolation:
		return true
	}
	return false
}

func (r *postgresRepository) CreateOrder(ctx context.Context, orderInput *Order) (err error) {
	if orderInput.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		orderInput.ID = genID
	}

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Str("order_number", orderInput.OrderNumber).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Str("order_number", orderInput.OrderNumber).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()
	orderInput.CreatedAt = now
	orderInput.UpdatedAt = now
	orderInput.TotalAmount = orderInput.RecomputeTotal()

	queryOrder := `
		INSERT INTO orders (id, order_number, user_id, customer_name, status, is_paid, total_amount, requested_pickup_time, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, queryOrder,
		orderInput.ID,
		orderInput.OrderNumber,
		orderInput.UserID,
		orderInput.CustomerName,
		string(orderInput.Status),
		orderInput.IsPaid,
		orderInput.TotalAmount,
		orderInput.RequestedPickupTime,
		orderInput.Notes,
		orderInput.CreatedAt,
		orderInput.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order %s: %w", orderInput.OrderNumber, err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, customizations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range orderInput.Items {
		item := &orderInput.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
		}
		item.ID = itemID
		item.OrderID = orderInput.ID
		item.CreatedAt = now
		item.UpdatedAt = now
		if item.Customizations == nil {
			item.Customizations = Customizations{}
		}

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.Customizations,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", orderInput.OrderNumber, err)
		}
	}

	return nil
}

const orderColumns = `id, order_number, user_id, customer_name, status, is_paid, total_amount, requested_pickup_time, notes, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.CustomerName,
		&o.Status,
		&o.IsPaid,
		&o.TotalAmount,
		&o.RequestedPickupTime,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *postgresRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	queryOrder := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	var order Order
	err := scanOrder(r.db.QueryRow(ctx, queryOrder, orderNumber), &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %s: %w", orderNumber, err)
	}

	queryItems := `
		SELECT id, order_id, product_id, quantity, unit_price, customizations, created_at, updated_at
		FROM order_items
		WHERE order_id = $1
	`
	rows, err := r.db.Query(ctx, queryItems, order.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query items for order %s: %w", orderNumber, err)
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Customizations,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan item for order %s: %w", orderNumber, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating items for order %s: %w", orderNumber, err)
	}

	order.Items = items
	return &order, nil
}

func (r *postgresRepository) ListOrders(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *postgresRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

// ListActiveOrders returns orders still in fulfillment for the barista
// dashboard, overdue ones first.
func (r *postgresRepository) ListActiveOrders(ctx context.Context) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = ANY($1)
		ORDER BY
			(requested_pickup_time IS NOT NULL
				AND requested_pickup_time < NOW()
				AND status IN ('PREPARING', 'READY')) DESC,
			requested_pickup_time ASC NULLS LAST,
			created_at ASC
	`

	statuses := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		statuses[i] = string(s)
	}

	return r.queryOrders(ctx, query, statuses)
}

func (r *postgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	orderRows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		var order Order
		if err := scanOrder(orderRows, &order); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		order.Items = make([]OrderItem, 0)
		ordersMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}
	if err = orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	queryItems := `
		SELECT id, order_id, product_id, quantity, unit_price, customizations, created_at, updated_at
		FROM order_items
		WHERE order_id = ANY($1)
	`
	itemRows, err := r.db.Query(ctx, queryItems, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item OrderItem
		err := itemRows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Customizations,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if order, ok := ordersMap[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	resultOrders := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		resultOrders = append(resultOrders, *ordersMap[id])
	}

	return resultOrders, nil
}

// UpdateOrderStatus persists a status/payment change. The stored total is
// re-derived from the items in the same statement so it can never drift from
// the true sum.
// UpdateOrderStatus writes the new status only if the row still carries
// expectedStatus, the status the caller validated the transition against.
// Zero rows affected means another writer changed the order in between; the
// caller gets ErrConcurrencyConflict and must re-read before retrying.
func (r *postgresRepository) UpdateOrderStatus(ctx context.Context, order *Order, expectedStatus OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1,
			is_paid = $2,
			total_amount = COALESCE((
				SELECT ROUND(SUM(unit_price * quantity), 2)
				FROM order_items
				WHERE order_id = orders.id
			), 0),
			updated_at = $3
		WHERE id = $4 AND status = $5
	`

	now := time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx, query, string(order.Status), order.IsPaid, now, order.ID, string(expectedStatus))
	if err != nil {
		return fmt.Errorf("repository: failed to update status for order %s: %w", order.OrderNumber, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("repository: order %s changed concurrently: %w", order.OrderNumber, ErrConcurrencyConflict)
	}

	order.UpdatedAt = now
	return nil
}
