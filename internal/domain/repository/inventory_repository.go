package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryFilter criterios de las proyecciones de lectura del ledger.
// Las banderas en true filtran; en false no aplican.
type InventoryFilter struct {
	CompanyID    string
	WarehouseID  string
	ProductID    string
	LowStock     bool
	OutOfStock   bool
	OverStock    bool
	NeedsReorder bool
	Limit        int
	Offset       int
}

// InventoryRepository define el puerto de persistencia del ledger (un registro por
// empresa + producto + bodega + ubicación). Los Get devuelven (nil, nil) si no existe
// y nunca devuelven registros dados de baja.
type InventoryRepository interface {
	// Create inserta; si la clave ya existe devuelve domain.ErrDuplicateLedgerEntry.
	Create(ctx context.Context, inv *entity.Inventory) error
	// CreateIfAbsent inserta solo si la clave no existe (INSERT ... ON CONFLICT DO NOTHING).
	CreateIfAbsent(ctx context.Context, inv *entity.Inventory) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Inventory, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error)
	GetByKey(ctx context.Context, key entity.InventoryKey) (*entity.Inventory, error)
	GetByKeyForUpdate(ctx context.Context, key entity.InventoryKey) (*entity.Inventory, error)
	// Update persiste cantidades, umbrales, derivados y metadatos. Un cambio de ubicación
	// que choque con otra clave devuelve domain.ErrDuplicateLedgerEntry.
	Update(ctx context.Context, inv *entity.Inventory) error
	List(ctx context.Context, filter InventoryFilter) ([]*entity.Inventory, error)
	// SumStockByWarehouse stock físico total de una bodega (control de capacidad).
	SumStockByWarehouse(ctx context.Context, warehouseID string) (decimal.Decimal, error)
	// TotalStockValue suma de CurrentStock * AverageCost; warehouseID vacío = toda la empresa.
	TotalStockValue(ctx context.Context, companyID, warehouseID string) (decimal.Decimal, error)
}
