package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter criterios de listado de movimientos.
type MovementFilter struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	Status      entity.MovementStatus
	Type        entity.MovementType
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// MovementTotals entradas y salidas procesadas de un producto en un período.
// Los traslados (WAREHOUSE_TRANSFER, LOCATION_TRANSFER) no cuentan: son internos.
type MovementTotals struct {
	ProductID string
	Inbound   decimal.Decimal
	Outbound  decimal.Decimal
}

// StockMovementRepository define el puerto de persistencia del log de movimientos.
type StockMovementRepository interface {
	// Create inserta; MovementNumber repetido en la empresa devuelve domain.ErrDuplicate.
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// GetForUpdate bloquea la fila del movimiento (serializa transiciones concurrentes).
	GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error)
	Update(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// SumProcessedByProduct totales por producto de movimientos PROCESSED con ProcessedAt en [from, to].
	SumProcessedByProduct(ctx context.Context, companyID, warehouseID string, from, to time.Time) ([]MovementTotals, error)
}
