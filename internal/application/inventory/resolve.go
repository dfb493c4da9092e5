package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// checkProduct verifica que el producto exista y pertenezca a la empresa.
func checkProduct(ctx context.Context, repo repository.ProductRepository, companyID, productID string) (*entity.Product, error) {
	product, err := repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

// checkWarehouse verifica que la bodega exista, esté activa y pertenezca a la empresa.
func checkWarehouse(ctx context.Context, repo repository.WarehouseRepository, companyID, warehouseID string) (*entity.Warehouse, error) {
	wh, err := repo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if !wh.IsActive {
		return nil, fmt.Errorf("bodega %s inactiva: %w", wh.Code, domain.ErrConflict)
	}
	return wh, nil
}

// getOrCreateInTx devuelve el registro bloqueado para la clave; si no existe lo crea con
// cantidades en cero y los umbrales del producto. Idempotente: dos llamadas devuelven el mismo ID.
func getOrCreateInTx(
	ctx context.Context,
	r repository.Repos,
	ledger *domaininv.Ledger,
	key entity.InventoryKey,
	userID string,
	now time.Time,
) (*entity.Inventory, error) {
	key = key.Normalize()
	if key.CompanyID == "" || key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	inv, err := r.Inventory.GetByKeyForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		return inv, nil
	}
	product, err := checkProduct(ctx, r.Products, key.CompanyID, key.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := checkWarehouse(ctx, r.Warehouses, key.CompanyID, key.WarehouseID); err != nil {
		return nil, err
	}
	// Otro escritor pudo crear la fila entre el SELECT y el INSERT: ON CONFLICT DO NOTHING y se relee.
	if _, err := r.Inventory.CreateIfAbsent(ctx, ledger.NewInventory(key, product, userID, now)); err != nil {
		return nil, err
	}
	inv, err = r.Inventory.GetByKeyForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("registro de inventario no visible tras crearlo: %w", domain.ErrConflict)
	}
	return inv, nil
}

// saveInventory incrementa la versión y persiste.
func saveInventory(ctx context.Context, r repository.Repos, inv *entity.Inventory, userID string) error {
	inv.Version++
	if userID != "" {
		inv.UpdatedBy = userID
	}
	return r.Inventory.Update(ctx, inv)
}
