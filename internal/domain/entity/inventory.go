package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLocationCode ubicación usada cuando el movimiento o la reserva no indican una.
const DefaultLocationCode = "DEFAULT"

// StockStatus estado derivado del registro de inventario (nunca se asigna a mano).
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StockStatusLowStock   StockStatus = "LOW_STOCK"
	StockStatusOverStock  StockStatus = "OVER_STOCK"
	StockStatusNormal     StockStatus = "NORMAL"
)

// StockGrade clasificación ABC por valor del stock.
type StockGrade string

const (
	StockGradeA StockGrade = "A"
	StockGradeB StockGrade = "B"
	StockGradeC StockGrade = "C"
)

// Thresholds umbrales de abastecimiento de un registro de inventario.
type Thresholds struct {
	SafetyStock     decimal.Decimal
	MinStock        decimal.Decimal
	MaxStock        decimal.Decimal
	ReorderPoint    decimal.Decimal
	ReorderQuantity decimal.Decimal
}

// Tracking datos de trazabilidad (lote, serie, fechas).
type Tracking struct {
	LotNumber       string
	SerialNumber    string
	ExpiryDate      *time.Time
	ManufactureDate *time.Time
}

// Inventory es el registro autoritativo de cantidades para (empresa, producto, bodega, ubicación).
// Solo se modifica a través de las operaciones del ledger (domain/inventory).
// Invariante: CurrentStock = AvailableStock + ReservedStock tras entradas, salidas y reservas.
type Inventory struct {
	ID                  string
	CompanyID           string
	ProductID           string
	WarehouseID         string
	LocationCode        string
	LocationDescription string

	CurrentStock    decimal.Decimal
	AvailableStock  decimal.Decimal
	ReservedStock   decimal.Decimal
	OrderedStock    decimal.Decimal
	DefectiveStock  decimal.Decimal
	QuarantineStock decimal.Decimal

	Thresholds

	AverageCost       decimal.Decimal // costo promedio ponderado
	LastPurchasePrice decimal.Decimal
	TotalStockValue   decimal.Decimal // CurrentStock * AverageCost

	// Campos derivados, recalculados tras cada mutación.
	StockStatus  StockStatus
	StockGrade   StockGrade
	IsLowStock   bool
	IsOutOfStock bool
	IsOverStock  bool
	NeedsReorder bool

	Tracking

	MovementCount       int64
	LastReceiptDate     *time.Time
	LastIssueDate       *time.Time
	LastStocktakingDate *time.Time
	LastStockUpdate     *time.Time

	Version   int64
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
	DeletedAt *time.Time
	DeletedBy string
}

// Key devuelve la clave de unicidad del registro.
func (i *Inventory) Key() InventoryKey {
	return InventoryKey{
		CompanyID:    i.CompanyID,
		ProductID:    i.ProductID,
		WarehouseID:  i.WarehouseID,
		LocationCode: i.LocationCode,
	}
}

// IsDeleted indica si el registro fue dado de baja (soft delete).
func (i *Inventory) IsDeleted() bool { return i.DeletedAt != nil }

// InventoryKey identifica un registro único del ledger.
type InventoryKey struct {
	CompanyID    string
	ProductID    string
	WarehouseID  string
	LocationCode string
}

// Normalize aplica la ubicación por defecto si viene vacía.
func (k InventoryKey) Normalize() InventoryKey {
	if k.LocationCode == "" {
		k.LocationCode = DefaultLocationCode
	}
	return k
}
