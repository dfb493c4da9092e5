package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	companyID = "c1"
	productID = "p1"
	whMain    = "w-main"
	whSmall   = "w-small" // capacidad 100
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	ctx          context.Context
	store        *memory.Store
	ledger       *appinv.LedgerUseCase
	movements    *appinv.MovementUseCase
	reservations *appinv.ReservationUseCase
	queries      *appinv.StockQueryUseCase
}

// newFixture almacén en memoria con un producto (min 10, reorden 20, lote de pedido 50)
// y dos bodegas: una sin límite y otra con capacidad 100.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: productID, CompanyID: companyID, SKU: "SKU-001", Name: "Tornillo", Unit: "UND",
		Thresholds: entity.Thresholds{MinStock: d(10), ReorderPoint: d(20), ReorderQuantity: d(50)},
		CreatedAt:  now, UpdatedAt: now,
	}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{
		ID: whMain, CompanyID: companyID, Code: "MAIN", Name: "Principal", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{
		ID: whSmall, CompanyID: companyID, Code: "SMALL", Name: "Satélite", Capacity: d(100), IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))

	ledger := domaininv.NewLedger(domaininv.DefaultGradePolicy())
	log := logger.Nop()
	return &fixture{
		ctx:          ctx,
		store:        store,
		ledger:       appinv.NewLedgerUseCase(store, repos, ledger, log),
		movements:    appinv.NewMovementUseCase(store, repos, ledger, log),
		reservations: appinv.NewReservationUseCase(store, ledger, log),
		queries:      appinv.NewStockQueryUseCase(repos),
	}
}

// submit crea un movimiento en PENDING.
func (f *fixture) submit(t *testing.T, in dto.CreateMovementRequest) *entity.StockMovement {
	t.Helper()
	if in.ProductID == "" {
		in.ProductID = productID
	}
	m, err := f.movements.SubmitMovement(f.ctx, companyID, "u-ops", in)
	require.NoError(t, err)
	return m
}

// receive compra procesada de qty unidades a price.
func (f *fixture) receive(t *testing.T, warehouseID string, qty, price int64) *entity.StockMovement {
	t.Helper()
	m := f.submit(t, dto.CreateMovementRequest{
		WarehouseID: warehouseID, MovementType: string(entity.MovementTypePurchaseReceipt),
		Quantity: d(qty), UnitPrice: d(price),
	})
	m, err := f.movements.Process(f.ctx, m.ID, "u-boss")
	require.NoError(t, err)
	return m
}

// stock registro de la ubicación por defecto de la bodega.
func (f *fixture) stock(t *testing.T, warehouseID string) *entity.Inventory {
	t.Helper()
	inv, err := f.store.Repos().Inventory.GetByKey(f.ctx, entity.InventoryKey{
		CompanyID: companyID, ProductID: productID, WarehouseID: warehouseID,
	}.Normalize())
	require.NoError(t, err)
	return inv
}
