package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Classification resultado del clasificador de stock.
type Classification struct {
	Status       entity.StockStatus
	IsLowStock   bool
	IsOutOfStock bool
	IsOverStock  bool
	NeedsReorder bool
}

// Classify deriva las banderas de estado a partir de cantidades y umbrales.
// Un umbral en cero nunca dispara su bandera. Prioridad del estado:
// OUT_OF_STOCK > LOW_STOCK > OVER_STOCK > NORMAL.
// available se recibe por completitud; hoy las banderas dependen solo del stock físico.
func Classify(current, available, minStock, maxStock, reorderPoint decimal.Decimal) Classification {
	c := Classification{
		IsOutOfStock: current.LessThanOrEqual(decimal.Zero),
		IsLowStock:   minStock.GreaterThan(decimal.Zero) && current.LessThanOrEqual(minStock),
		IsOverStock:  maxStock.GreaterThan(decimal.Zero) && current.GreaterThan(maxStock),
		NeedsReorder: reorderPoint.GreaterThan(decimal.Zero) && current.LessThanOrEqual(reorderPoint),
	}
	switch {
	case c.IsOutOfStock:
		c.Status = entity.StockStatusOutOfStock
	case c.IsLowStock:
		c.Status = entity.StockStatusLowStock
	case c.IsOverStock:
		c.Status = entity.StockStatusOverStock
	default:
		c.Status = entity.StockStatusNormal
	}
	return c
}

// GradePolicy umbrales de valor para la clasificación ABC.
type GradePolicy struct {
	AValue decimal.Decimal
	BValue decimal.Decimal
}

// DefaultGradePolicy A >= 10.000.000, B >= 1.000.000, resto C.
func DefaultGradePolicy() GradePolicy {
	return GradePolicy{
		AValue: decimal.NewFromInt(10_000_000),
		BValue: decimal.NewFromInt(1_000_000),
	}
}

// Grade devuelve la clase ABC para un valor de stock.
func (p GradePolicy) Grade(totalValue decimal.Decimal) entity.StockGrade {
	switch {
	case p.AValue.GreaterThan(decimal.Zero) && totalValue.GreaterThanOrEqual(p.AValue):
		return entity.StockGradeA
	case p.BValue.GreaterThan(decimal.Zero) && totalValue.GreaterThanOrEqual(p.BValue):
		return entity.StockGradeB
	}
	return entity.StockGradeC
}
