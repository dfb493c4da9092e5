package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ReservationUseCase reservas de stock por clave (producto, bodega, ubicación) para pedidos de venta.
// Es el único que modifica ReservedStock además de las operaciones del ledger por ID.
type ReservationUseCase struct {
	txRunner TxRunner
	ledger   *domaininv.Ledger
	log      *logger.Logger
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(txRunner TxRunner, ledger *domaininv.Ledger, log *logger.Logger) *ReservationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReservationUseCase{txRunner: txRunner, ledger: ledger, log: log}
}

// Reserve aparta cantidad del disponible. Sin registro para la clave no hay nada que reservar:
// InsufficientStock con disponible 0.
func (uc *ReservationUseCase) Reserve(ctx context.Context, companyID, productID, warehouseID, locationCode string, quantity decimal.Decimal) (*entity.Inventory, error) {
	key := movementKey(companyID, productID, warehouseID, locationCode)
	var out *entity.Inventory
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		inv, err := lockByKey(ctx, r, key)
		if err != nil {
			return err
		}
		if inv == nil {
			if !quantity.GreaterThan(decimal.Zero) {
				return domain.ErrInvalidInput
			}
			return domain.NewInsufficientStock("", decimal.Zero, quantity)
		}
		if err := uc.ledger.Reserve(inv, quantity, time.Now()); err != nil {
			return err
		}
		if err := saveInventory(ctx, r, inv, ""); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", productID).Str("warehouse_id", warehouseID).
			Str("quantity", quantity.String()).Msg("reservation: reserva rechazada")
		return nil, err
	}
	uc.log.Debug().Str("inventory_id", out.ID).Str("quantity", quantity.String()).
		Str("reserved", out.ReservedStock.String()).Msg("reservation: reservado")
	return out, nil
}

// Unreserve libera hasta min(reservado, cantidad) y devuelve lo efectivamente liberado.
func (uc *ReservationUseCase) Unreserve(ctx context.Context, companyID, productID, warehouseID, locationCode string, quantity decimal.Decimal) (*entity.Inventory, decimal.Decimal, error) {
	key := movementKey(companyID, productID, warehouseID, locationCode)
	var out *entity.Inventory
	released := decimal.Zero
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		inv, err := lockByKey(ctx, r, key)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		released, err = uc.ledger.Unreserve(inv, quantity, time.Now())
		if err != nil {
			return err
		}
		if err := saveInventory(ctx, r, inv, ""); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", productID).Str("warehouse_id", warehouseID).
			Str("quantity", quantity.String()).Msg("reservation: liberación rechazada")
		return nil, decimal.Zero, err
	}
	if released.LessThan(quantity) {
		uc.log.Warn().Str("inventory_id", out.ID).Str("requested", quantity.String()).
			Str("released", released.String()).Msg("reservation: liberación recortada al reservado")
	}
	return out, released, nil
}

func lockByKey(ctx context.Context, r repository.Repos, key entity.InventoryKey) (*entity.Inventory, error) {
	if key.CompanyID == "" || key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	return r.Inventory.GetByKeyForUpdate(ctx, key)
}
