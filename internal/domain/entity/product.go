package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU (dato de referencia para el motor de inventario).
// Los umbrales se copian al registro de inventario cuando éste se crea.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	Unit        string
	Price       decimal.Decimal // precio de venta
	Thresholds
	CreatedAt time.Time
	UpdatedAt time.Time
}
