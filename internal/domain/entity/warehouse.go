package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Address   string
	Capacity  decimal.Decimal // 0 = sin límite
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCapacityLimit indica si la bodega controla capacidad.
func (w *Warehouse) HasCapacityLimit() bool {
	return w.Capacity.GreaterThan(decimal.Zero)
}
