package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// LedgerUseCase operaciones sobre registros de inventario. Cada una corre en su propia
// transacción con la fila bloqueada (SELECT FOR UPDATE): lectura, validación y escritura son atómicas.
type LedgerUseCase struct {
	txRunner TxRunner
	repos    repository.Repos
	ledger   *domaininv.Ledger
	log      *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. repos se usa solo para lecturas fuera de transacción.
func NewLedgerUseCase(txRunner TxRunner, repos repository.Repos, ledger *domaininv.Ledger, log *logger.Logger) *LedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{txRunner: txRunner, repos: repos, ledger: ledger, log: log}
}

// GetOrCreate devuelve el registro de la clave, creándolo en cero si no existe.
func (uc *LedgerUseCase) GetOrCreate(ctx context.Context, companyID, productID, warehouseID, locationCode string) (*entity.Inventory, error) {
	key := entity.InventoryKey{CompanyID: companyID, ProductID: productID, WarehouseID: warehouseID, LocationCode: locationCode}
	var out *entity.Inventory
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		inv, err := getOrCreateInTx(ctx, r, uc.ledger, key, "", time.Now())
		if err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create crea explícitamente un registro; falla con DuplicateLedgerEntry si la clave ya existe.
func (uc *LedgerUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateInventoryRequest) (*entity.Inventory, error) {
	key := entity.InventoryKey{
		CompanyID:    companyID,
		ProductID:    in.ProductID,
		WarehouseID:  in.WarehouseID,
		LocationCode: in.LocationCode,
	}.Normalize()
	if key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Inventory
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		product, err := checkProduct(ctx, r.Products, companyID, key.ProductID)
		if err != nil {
			return err
		}
		if _, err := checkWarehouse(ctx, r.Warehouses, companyID, key.WarehouseID); err != nil {
			return err
		}
		existing, err := r.Inventory.GetByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.NewDuplicateLedgerEntry(key.ProductID, key.WarehouseID, key.LocationCode)
		}
		inv := uc.ledger.NewInventory(key, product, userID, time.Now())
		inv.LocationDescription = in.LocationDescription
		if err := r.Inventory.Create(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", key.ProductID).Str("warehouse_id", key.WarehouseID).
			Str("location", key.LocationCode).Msg("inventory: creación rechazada")
		return nil, err
	}
	uc.log.Info().Str("inventory_id", out.ID).Str("product_id", out.ProductID).Msg("inventory: registro creado")
	return out, nil
}

// ApplyReceipt entrada directa: suma stock y recalcula el costo promedio ponderado.
func (uc *LedgerUseCase) ApplyReceipt(ctx context.Context, inventoryID string, quantity, unitCost decimal.Decimal, at time.Time) (*entity.Inventory, error) {
	return uc.mutate(ctx, inventoryID, "", "receipt", func(inv *entity.Inventory) error {
		return uc.ledger.ApplyReceipt(inv, quantity, unitCost, at)
	})
}

// ApplyIssue salida directa; InsufficientStock si el disponible no alcanza.
func (uc *LedgerUseCase) ApplyIssue(ctx context.Context, inventoryID string, quantity decimal.Decimal, at time.Time) (*entity.Inventory, error) {
	return uc.mutate(ctx, inventoryID, "", "issue", func(inv *entity.Inventory) error {
		return uc.ledger.ApplyIssue(inv, quantity, at)
	})
}

// Reserve pasa cantidad de disponible a reservado.
func (uc *LedgerUseCase) Reserve(ctx context.Context, inventoryID string, quantity decimal.Decimal) (*entity.Inventory, error) {
	return uc.mutate(ctx, inventoryID, "", "reserve", func(inv *entity.Inventory) error {
		return uc.ledger.Reserve(inv, quantity, time.Now())
	})
}

// Unreserve libera hasta min(reservado, cantidad); devuelve lo liberado.
func (uc *LedgerUseCase) Unreserve(ctx context.Context, inventoryID string, quantity decimal.Decimal) (*entity.Inventory, decimal.Decimal, error) {
	released := decimal.Zero
	inv, err := uc.mutate(ctx, inventoryID, "", "unreserve", func(inv *entity.Inventory) error {
		var err error
		released, err = uc.ledger.Unreserve(inv, quantity, time.Now())
		return err
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return inv, released, nil
}

// AdjustByStocktaking fija el stock físico al conteo. Disponible y reservado no cambian:
// ReconcileAvailability los reparte.
func (uc *LedgerUseCase) AdjustByStocktaking(ctx context.Context, inventoryID string, actualQuantity decimal.Decimal, at time.Time) (*entity.Inventory, error) {
	return uc.mutate(ctx, inventoryID, "", "stocktaking", func(inv *entity.Inventory) error {
		return uc.ledger.AdjustByStocktaking(inv, actualQuantity, at)
	})
}

// ReconcileAvailability recalcula disponible = físico - reservado, recortando reservado al físico.
func (uc *LedgerUseCase) ReconcileAvailability(ctx context.Context, inventoryID string) (*entity.Inventory, error) {
	return uc.mutate(ctx, inventoryID, "", "reconcile", func(inv *entity.Inventory) error {
		uc.ledger.Reconcile(inv, time.Now())
		return nil
	})
}

// MoveLocation cambia la ubicación del registro; DuplicateLedgerEntry si la clave destino ya existe.
func (uc *LedgerUseCase) MoveLocation(ctx context.Context, inventoryID, locationCode, description string) (*entity.Inventory, error) {
	var out *entity.Inventory
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		inv, err := lockInventory(ctx, r, inventoryID)
		if err != nil {
			return err
		}
		target := inv.Key()
		target.LocationCode = locationCode
		target = target.Normalize()
		if target.LocationCode != inv.LocationCode {
			other, err := r.Inventory.GetByKey(ctx, target)
			if err != nil {
				return err
			}
			if other != nil {
				return domain.NewDuplicateLedgerEntry(target.ProductID, target.WarehouseID, target.LocationCode)
			}
		}
		if err := uc.ledger.MoveLocation(inv, target.LocationCode, description, time.Now()); err != nil {
			return err
		}
		if err := saveInventory(ctx, r, inv, ""); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		uc.logRejected(err, "move_location", inventoryID)
		return nil, err
	}
	return out, nil
}

// UpdateThresholds reemplaza los umbrales y reclasifica.
func (uc *LedgerUseCase) UpdateThresholds(ctx context.Context, inventoryID string, th entity.Thresholds) (*entity.Inventory, error) {
	return uc.mutate(ctx, inventoryID, "", "thresholds", func(inv *entity.Inventory) error {
		return uc.ledger.SetThresholds(inv, th, time.Now())
	})
}

// UpdateTracking reemplaza lote, serie y fechas.
func (uc *LedgerUseCase) UpdateTracking(ctx context.Context, inventoryID string, tr entity.Tracking) (*entity.Inventory, error) {
	return uc.mutate(ctx, inventoryID, "", "tracking", func(inv *entity.Inventory) error {
		if tr.ExpiryDate != nil && tr.ManufactureDate != nil && tr.ExpiryDate.Before(*tr.ManufactureDate) {
			return domain.ErrInvalidInput
		}
		inv.Tracking = tr
		inv.UpdatedAt = time.Now()
		return nil
	})
}

// Deactivate baja lógica; solo si no queda stock físico ni reservado.
func (uc *LedgerUseCase) Deactivate(ctx context.Context, inventoryID, userID string) error {
	_, err := uc.mutate(ctx, inventoryID, userID, "deactivate", func(inv *entity.Inventory) error {
		if !inv.CurrentStock.IsZero() || !inv.ReservedStock.IsZero() {
			return fmt.Errorf("registro con stock %s y reservado %s: %w",
				inv.CurrentStock.String(), inv.ReservedStock.String(), domain.ErrConflict)
		}
		now := time.Now()
		inv.DeletedAt = &now
		inv.DeletedBy = userID
		inv.UpdatedAt = now
		return nil
	})
	if err == nil {
		uc.log.Info().Str("inventory_id", inventoryID).Str("user_id", userID).Msg("inventory: registro dado de baja")
	}
	return err
}

// Get devuelve una copia del registro; ErrNotFound si no existe o está dado de baja.
func (uc *LedgerUseCase) Get(ctx context.Context, inventoryID string) (*entity.Inventory, error) {
	inv, err := uc.repos.Inventory.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// mutate bloquea el registro, aplica fn y persiste en una sola transacción.
// Si fn falla no se escribe nada.
func (uc *LedgerUseCase) mutate(ctx context.Context, inventoryID, userID, op string, fn func(inv *entity.Inventory) error) (*entity.Inventory, error) {
	var out *entity.Inventory
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		inv, err := lockInventory(ctx, r, inventoryID)
		if err != nil {
			return err
		}
		if err := fn(inv); err != nil {
			return err
		}
		if err := saveInventory(ctx, r, inv, userID); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		uc.logRejected(err, op, inventoryID)
		return nil, err
	}
	uc.log.Debug().Str("op", op).Str("inventory_id", inventoryID).
		Str("current", out.CurrentStock.String()).Str("available", out.AvailableStock.String()).
		Str("status", string(out.StockStatus)).Msg("inventory: registro actualizado")
	return out, nil
}

func (uc *LedgerUseCase) logRejected(err error, op, inventoryID string) {
	uc.log.Warn().Err(err).Str("op", op).Str("inventory_id", inventoryID).Msg("inventory: operación rechazada")
}

func lockInventory(ctx context.Context, r repository.Repos, inventoryID string) (*entity.Inventory, error) {
	if inventoryID == "" {
		return nil, domain.ErrInvalidInput
	}
	inv, err := r.Inventory.GetForUpdate(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}
