package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// MovementUseCase flujo de aprobación de movimientos y su aplicación al ledger.
// DRAFT -> PENDING -> APPROVED -> PROCESSED; PENDING -> REJECTED; {DRAFT, PENDING} -> CANCELLED.
type MovementUseCase struct {
	txRunner TxRunner
	repos    repository.Repos
	ledger   *domaininv.Ledger
	log      *logger.Logger
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, repos repository.Repos, ledger *domaininv.Ledger, log *logger.Logger) *MovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &MovementUseCase{txRunner: txRunner, repos: repos, ledger: ledger, log: log}
}

// Create registra un movimiento en DRAFT. Valida tipo, cantidad y que producto y bodegas sean de la empresa.
func (uc *MovementUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateMovementRequest) (*entity.StockMovement, error) {
	return uc.create(ctx, companyID, userID, in, false)
}

// SubmitMovement punto de entrada de otros módulos (ventas, compras, producción):
// crea y envía a aprobación en una sola transacción. Resultado: PENDING.
func (uc *MovementUseCase) SubmitMovement(ctx context.Context, companyID, userID string, in dto.CreateMovementRequest) (*entity.StockMovement, error) {
	return uc.create(ctx, companyID, userID, in, true)
}

func (uc *MovementUseCase) create(ctx context.Context, companyID, userID string, in dto.CreateMovementRequest, submit bool) (*entity.StockMovement, error) {
	now := time.Now()
	m := newMovement(companyID, userID, in, now)
	if err := domaininv.ValidateMovement(m); err != nil {
		return nil, err
	}
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		if _, err := checkProduct(ctx, r.Products, companyID, m.ProductID); err != nil {
			return err
		}
		for _, whID := range movementWarehouses(m) {
			if _, err := checkWarehouse(ctx, r.Warehouses, companyID, whID); err != nil {
				return err
			}
		}
		if submit {
			if err := domaininv.Submit(m, now); err != nil {
				return err
			}
		}
		return r.Movements.Create(ctx, m)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("type", in.MovementType).Str("product_id", in.ProductID).Msg("movement: creación rechazada")
		return nil, err
	}
	uc.log.Info().Str("movement_id", m.ID).Str("number", m.MovementNumber).Str("type", string(m.MovementType)).
		Str("status", string(m.MovementStatus)).Msg("movement: creado")
	return m, nil
}

// Update edita un movimiento en DRAFT; en cualquier otro estado devuelve ErrMovementImmutable.
func (uc *MovementUseCase) Update(ctx context.Context, id string, in dto.UpdateMovementRequest) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		m, err := lockMovement(ctx, r, id)
		if err != nil {
			return err
		}
		if m.MovementStatus != entity.MovementStatusDraft {
			return domain.ErrMovementImmutable
		}
		applyMovementPatch(m, in)
		if err := domaininv.ValidateMovement(m); err != nil {
			return err
		}
		m.UpdatedAt = time.Now()
		if err := r.Movements.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Submit DRAFT -> PENDING.
func (uc *MovementUseCase) Submit(ctx context.Context, id string) (*entity.StockMovement, error) {
	return uc.transition(ctx, id, "submit", func(m *entity.StockMovement, now time.Time) error {
		return domaininv.Submit(m, now)
	})
}

// Approve PENDING -> APPROVED.
func (uc *MovementUseCase) Approve(ctx context.Context, id, approverID string) (*entity.StockMovement, error) {
	return uc.transition(ctx, id, "approve", func(m *entity.StockMovement, now time.Time) error {
		return domaininv.Approve(m, approverID, now)
	})
}

// Reject PENDING -> REJECTED. No toca el ledger.
func (uc *MovementUseCase) Reject(ctx context.Context, id, userID, reason string) (*entity.StockMovement, error) {
	return uc.transition(ctx, id, "reject", func(m *entity.StockMovement, now time.Time) error {
		return domaininv.Reject(m, userID, reason, now)
	})
}

// Cancel {DRAFT, PENDING} -> CANCELLED. No toca el ledger.
func (uc *MovementUseCase) Cancel(ctx context.Context, id, reason string) (*entity.StockMovement, error) {
	return uc.transition(ctx, id, "cancel", func(m *entity.StockMovement, now time.Time) error {
		return domaininv.Cancel(m, reason, now)
	})
}

// Process {APPROVED, PENDING} -> PROCESSED aplicando el delta al ledger en la misma transacción.
// Bloquea primero la fila del movimiento: de dos Process concurrentes solo uno encuentra un
// estado procesable; el otro recibe InvalidTransition. Cualquier error deshace todo.
func (uc *MovementUseCase) Process(ctx context.Context, id, processorID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		m, err := lockMovement(ctx, r, id)
		if err != nil {
			return err
		}
		if err := domaininv.CheckProcessable(m); err != nil {
			return err
		}
		if err := domaininv.ValidateMovement(m); err != nil {
			return err
		}
		now := time.Now()
		var inv *entity.Inventory
		var before decimal.Decimal
		switch m.MovementType.Direction() {
		case entity.DirectionInbound:
			key := movementKey(m.CompanyID, m.ProductID, m.WarehouseID, m.LocationCode)
			inv, before, err = uc.applyInbound(ctx, r, m, key, m.UnitPrice, processorID, now, true)
		case entity.DirectionOutbound:
			key := movementKey(m.CompanyID, m.ProductID, m.WarehouseID, m.LocationCode)
			inv, before, err = uc.applyOutbound(ctx, r, key, m.Quantity, processorID, now)
		case entity.DirectionTransfer:
			inv, before, err = uc.applyTransfer(ctx, r, m, processorID, now)
		default:
			err = domain.ErrInvalidInput
		}
		if err != nil {
			return err
		}
		m.InventoryID = inv.ID
		if err := domaininv.MarkProcessed(m, processorID, before, inv.CurrentStock, now); err != nil {
			return err
		}
		if err := r.Movements.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("movement_id", id).Str("processor", processorID).Msg("movement: procesamiento rechazado")
		return nil, err
	}
	uc.log.Info().Str("movement_id", out.ID).Str("type", string(out.MovementType)).
		Str("before", out.BeforeStock.String()).Str("after", out.AfterStock.String()).Msg("movement: procesado")
	return out, nil
}

// applyInbound suma la cantidad en la clave, creando el registro si no existe.
// Las entradas no compra sin precio se costean al promedio vigente para no diluirlo.
// Devuelve el registro actualizado y el stock previo.
func (uc *MovementUseCase) applyInbound(
	ctx context.Context,
	r repository.Repos,
	m *entity.StockMovement,
	key entity.InventoryKey,
	unitCost decimal.Decimal,
	userID string,
	now time.Time,
	checkCapacity bool,
) (*entity.Inventory, decimal.Decimal, error) {
	if checkCapacity {
		if err := ensureCapacity(ctx, r, key.WarehouseID, m.Quantity); err != nil {
			return nil, decimal.Zero, err
		}
	}
	inv, err := getOrCreateInTx(ctx, r, uc.ledger, key, userID, now)
	if err != nil {
		return nil, decimal.Zero, err
	}
	before := inv.CurrentStock
	lastPrice := inv.LastPurchasePrice
	purchase := m.MovementType.IsPurchase()
	if !purchase && unitCost.IsZero() {
		unitCost = inv.AverageCost
	}
	if err := uc.ledger.ApplyReceipt(inv, m.Quantity, unitCost, now); err != nil {
		return nil, decimal.Zero, err
	}
	// Solo las compras fijan el último precio de compra.
	if !purchase {
		inv.LastPurchasePrice = lastPrice
	}
	if err := saveInventory(ctx, r, inv, userID); err != nil {
		return nil, decimal.Zero, err
	}
	return inv, before, nil
}

// applyOutbound descuenta de un registro existente; sin registro no hay stock que sacar.
func (uc *MovementUseCase) applyOutbound(
	ctx context.Context,
	r repository.Repos,
	key entity.InventoryKey,
	quantity decimal.Decimal,
	userID string,
	now time.Time,
) (*entity.Inventory, decimal.Decimal, error) {
	inv, err := r.Inventory.GetByKeyForUpdate(ctx, key.Normalize())
	if err != nil {
		return nil, decimal.Zero, err
	}
	if inv == nil {
		return nil, decimal.Zero, domain.NewInsufficientStock("", decimal.Zero, quantity)
	}
	before := inv.CurrentStock
	if err := uc.ledger.ApplyIssue(inv, quantity, now); err != nil {
		return nil, decimal.Zero, err
	}
	if err := saveInventory(ctx, r, inv, userID); err != nil {
		return nil, decimal.Zero, err
	}
	return inv, before, nil
}

// applyTransfer salida en origen y entrada en destino dentro de la misma transacción.
// El destino se costea al promedio del origen. La foto before/after es la del origen.
// Orden de bloqueo: bodega destino y luego ambos registros por clave, igual que una entrada
// (bodega -> registro); dos traslados opuestos no se cruzan.
func (uc *MovementUseCase) applyTransfer(
	ctx context.Context,
	r repository.Repos,
	m *entity.StockMovement,
	userID string,
	now time.Time,
) (*entity.Inventory, decimal.Decimal, error) {
	sourceKey := movementKey(m.CompanyID, m.ProductID, m.FromWarehouseID, m.FromLocation)
	destKey := movementKey(m.CompanyID, m.ProductID, m.ToWarehouseID, m.ToLocation)
	if m.FromWarehouseID != m.ToWarehouseID {
		if err := ensureCapacity(ctx, r, destKey.WarehouseID, m.Quantity); err != nil {
			return nil, decimal.Zero, err
		}
	}
	if err := lockInKeyOrder(ctx, r, sourceKey, destKey); err != nil {
		return nil, decimal.Zero, err
	}
	source, before, err := uc.applyOutbound(ctx, r, sourceKey, m.Quantity, userID, now)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if _, _, err := uc.applyInbound(ctx, r, m, destKey, source.AverageCost, userID, now, false); err != nil {
		return nil, decimal.Zero, fmt.Errorf("traslado a %s/%s: %w", destKey.WarehouseID, destKey.LocationCode, err)
	}
	return source, before, nil
}

// lockInKeyOrder bloquea los registros existentes de las claves en orden lexicográfico.
func lockInKeyOrder(ctx context.Context, r repository.Repos, keys ...entity.InventoryKey) error {
	sorted := make([]entity.InventoryKey, 0, len(keys))
	for _, k := range keys {
		sorted = append(sorted, k.Normalize())
	}
	sort.Slice(sorted, func(i, j int) bool { return keyOrder(sorted[i]) < keyOrder(sorted[j]) })
	for _, k := range sorted {
		if _, err := r.Inventory.GetByKeyForUpdate(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func keyOrder(k entity.InventoryKey) string {
	return k.WarehouseID + "\x00" + k.LocationCode + "\x00" + k.ProductID
}

// Get devuelve el movimiento; ErrNotFound si no existe.
func (uc *MovementUseCase) Get(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := uc.repos.Movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// List lista movimientos por filtro.
func (uc *MovementUseCase) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.repos.Movements.List(ctx, filter)
}

// FindInconsistent auditoría: movimientos PROCESSED donde before ± cantidad != after.
func (uc *MovementUseCase) FindInconsistent(ctx context.Context, companyID string) ([]dto.InconsistentMovementDTO, error) {
	list, err := uc.List(ctx, repository.MovementFilter{CompanyID: companyID, Status: entity.MovementStatusProcessed})
	if err != nil {
		return nil, err
	}
	out := make([]dto.InconsistentMovementDTO, 0)
	for _, m := range list {
		var inc *domain.InconsistentMovementError
		if !errors.As(domaininv.CheckConsistency(m), &inc) {
			continue
		}
		out = append(out, dto.InconsistentMovementDTO{
			MovementID:         m.ID,
			MovementNumber:     m.MovementNumber,
			MovementType:       string(m.MovementType),
			Quantity:           m.Quantity,
			BeforeStock:        m.BeforeStock,
			AfterStock:         inc.Actual,
			ExpectedAfterStock: inc.Expected,
		})
	}
	if len(out) > 0 {
		uc.log.Warn().Str("company_id", companyID).Int("count", len(out)).Msg("movement: movimientos inconsistentes")
	}
	return out, nil
}

// transition bloquea el movimiento, aplica la transición y persiste.
func (uc *MovementUseCase) transition(ctx context.Context, id, op string, fn func(m *entity.StockMovement, now time.Time) error) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		m, err := lockMovement(ctx, r, id)
		if err != nil {
			return err
		}
		if err := fn(m, time.Now()); err != nil {
			return err
		}
		if err := r.Movements.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("op", op).Str("movement_id", id).Msg("movement: transición rechazada")
		return nil, err
	}
	uc.log.Info().Str("op", op).Str("movement_id", id).Str("status", string(out.MovementStatus)).Msg("movement: transición")
	return out, nil
}

// ensureCapacity bloquea la bodega y verifica que la entrada quepa.
func ensureCapacity(ctx context.Context, r repository.Repos, warehouseID string, quantity decimal.Decimal) error {
	wh, err := r.Warehouses.GetForUpdate(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	if !wh.HasCapacityLimit() {
		return nil
	}
	used, err := r.Inventory.SumStockByWarehouse(ctx, warehouseID)
	if err != nil {
		return err
	}
	if used.Add(quantity).GreaterThan(wh.Capacity) {
		return fmt.Errorf("bodega %s: ocupado %s + entrada %s > capacidad %s: %w",
			wh.Code, used.String(), quantity.String(), wh.Capacity.String(), domain.ErrCapacityExceeded)
	}
	return nil
}

func lockMovement(ctx context.Context, r repository.Repos, id string) (*entity.StockMovement, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	m, err := r.Movements.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// newMovement arma el movimiento en DRAFT a partir de la solicitud.
// En traslados WarehouseID es la bodega origen.
func newMovement(companyID, userID string, in dto.CreateMovementRequest, now time.Time) *entity.StockMovement {
	m := &entity.StockMovement{
		ID:              uuid.New().String(),
		MovementNumber:  newMovementNumber(now),
		CompanyID:       companyID,
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		LocationCode:    in.LocationCode,
		MovementType:    entity.MovementType(strings.ToUpper(strings.TrimSpace(in.MovementType))),
		MovementStatus:  entity.MovementStatusDraft,
		Quantity:        in.Quantity,
		Unit:            in.Unit,
		UnitPrice:       in.UnitPrice,
		FromWarehouseID: in.FromWarehouseID,
		FromLocation:    in.FromLocation,
		ToWarehouseID:   in.ToWarehouseID,
		ToLocation:      in.ToLocation,
		ReferenceNumber: in.ReferenceNumber,
		ReferenceType:   in.ReferenceType,
		Notes:           in.Notes,
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if m.MovementType.Direction() == entity.DirectionTransfer {
		if m.FromWarehouseID == "" {
			m.FromWarehouseID = m.WarehouseID
		}
		if m.MovementType == entity.MovementTypeLocationTransfer && m.ToWarehouseID == "" {
			m.ToWarehouseID = m.FromWarehouseID
		}
		m.WarehouseID = m.FromWarehouseID
		m.LocationCode = m.FromLocation
	}
	normalizeLocations(m)
	m.TotalAmount = m.Quantity.Mul(m.UnitPrice)
	return m
}

func applyMovementPatch(m *entity.StockMovement, in dto.UpdateMovementRequest) {
	if in.Quantity != nil {
		m.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		m.UnitPrice = *in.UnitPrice
	}
	if in.Unit != nil {
		m.Unit = *in.Unit
	}
	if in.LocationCode != nil && m.MovementType.Direction() != entity.DirectionTransfer {
		m.LocationCode = *in.LocationCode
	}
	if in.FromLocation != nil {
		m.FromLocation = *in.FromLocation
		if m.MovementType.Direction() == entity.DirectionTransfer {
			m.LocationCode = m.FromLocation
		}
	}
	if in.ToLocation != nil {
		m.ToLocation = *in.ToLocation
	}
	if in.ReferenceNumber != nil {
		m.ReferenceNumber = *in.ReferenceNumber
	}
	if in.ReferenceType != nil {
		m.ReferenceType = *in.ReferenceType
	}
	if in.Notes != nil {
		m.Notes = *in.Notes
	}
	normalizeLocations(m)
	m.TotalAmount = m.Quantity.Mul(m.UnitPrice)
}

func normalizeLocations(m *entity.StockMovement) {
	if m.LocationCode == "" {
		m.LocationCode = entity.DefaultLocationCode
	}
	if m.MovementType.Direction() == entity.DirectionTransfer {
		if m.FromLocation == "" {
			m.FromLocation = entity.DefaultLocationCode
		}
		if m.ToLocation == "" {
			m.ToLocation = entity.DefaultLocationCode
		}
	}
}

// movementWarehouses bodegas referenciadas por el movimiento, sin repetir.
func movementWarehouses(m *entity.StockMovement) []string {
	ids := []string{m.WarehouseID}
	for _, id := range []string{m.FromWarehouseID, m.ToWarehouseID} {
		if id != "" && id != ids[0] && (len(ids) < 2 || ids[1] != id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func movementKey(companyID, productID, warehouseID, locationCode string) entity.InventoryKey {
	return entity.InventoryKey{
		CompanyID:    companyID,
		ProductID:    productID,
		WarehouseID:  warehouseID,
		LocationCode: locationCode,
	}.Normalize()
}

// newMovementNumber MOV-YYYYMMDD-XXXXXXXX.
func newMovementNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("MOV-%s-%s", now.Format("20060102"), suffix)
}
