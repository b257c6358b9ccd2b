package catalog

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
}

type Product struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CategoryID      uuid.NullUUID   `json:"category_id" db:"category_id"`
	Name            string          `json:"name" db:"name"`
	Slug            string          `json:"slug" db:"slug"`
	Description     string          `json:"description" db:"description"`
	Price           decimal.Decimal `json:"price" db:"price"`
	IsAvailable     bool            `json:"is_available" db:"is_available"`
	StockCount      int             `json:"stock_count" db:"stock_count"`
	IsMerch         bool            `json:"is_merch" db:"is_merch"`
	PrepTimeMinutes int             `json:"prep_time_minutes" db:"prep_time_minutes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// InStock reports whether the product can currently be ordered. Prepared
// goods (drinks, food) follow the availability flag the barista controls;
// physical goods (beans, mugs) follow the actual stock count.
func (p *Product) InStock() bool {
	if p.IsMerch {
		return p.StockCount > 0
	}
	return p.IsAvailable
}
