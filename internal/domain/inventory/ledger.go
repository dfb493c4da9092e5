package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Ledger agrupa las operaciones que mutan un registro de inventario.
// Cada operación valida antes de tocar el registro: si devuelve error, el registro queda intacto.
// La atomicidad frente a otros escritores la da el llamador (fila bloqueada dentro de la transacción).
type Ledger struct {
	grades GradePolicy
}

// NewLedger construye el ledger con la política de clasificación ABC.
func NewLedger(grades GradePolicy) *Ledger {
	return &Ledger{grades: grades}
}

// NewInventory crea un registro con cantidades en cero y umbrales del producto.
func (l *Ledger) NewInventory(key entity.InventoryKey, product *entity.Product, userID string, at time.Time) *entity.Inventory {
	key = key.Normalize()
	inv := &entity.Inventory{
		ID:              uuid.New().String(),
		CompanyID:       key.CompanyID,
		ProductID:       key.ProductID,
		WarehouseID:     key.WarehouseID,
		LocationCode:    key.LocationCode,
		CurrentStock:    decimal.Zero,
		AvailableStock:  decimal.Zero,
		ReservedStock:   decimal.Zero,
		OrderedStock:    decimal.Zero,
		DefectiveStock:  decimal.Zero,
		QuarantineStock: decimal.Zero,
		AverageCost:     decimal.Zero,
		CreatedAt:       at,
		CreatedBy:       userID,
		UpdatedAt:       at,
		UpdatedBy:       userID,
	}
	if product != nil {
		inv.Thresholds = product.Thresholds
	}
	l.Refresh(inv)
	return inv
}

// ApplyReceipt suma la entrada al stock físico y disponible y recalcula el costo promedio.
func (l *Ledger) ApplyReceipt(inv *entity.Inventory, quantity, unitCost decimal.Decimal, at time.Time) error {
	if !quantity.GreaterThan(decimal.Zero) || unitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	inv.AverageCost = WeightedAverageCost(inv.CurrentStock, inv.AverageCost, quantity, unitCost)
	inv.LastPurchasePrice = unitCost
	inv.CurrentStock = inv.CurrentStock.Add(quantity)
	inv.AvailableStock = inv.AvailableStock.Add(quantity)
	inv.LastReceiptDate = &at
	inv.MovementCount++
	l.touch(inv, at)
	return nil
}

// ApplyIssue descuenta la salida del disponible; falla si no alcanza.
func (l *Ledger) ApplyIssue(inv *entity.Inventory, quantity decimal.Decimal, at time.Time) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if limit := issuable(inv); limit.LessThan(quantity) {
		return domain.NewInsufficientStock(inv.ID, limit, quantity)
	}
	inv.CurrentStock = inv.CurrentStock.Sub(quantity)
	inv.AvailableStock = inv.AvailableStock.Sub(quantity)
	inv.LastIssueDate = &at
	inv.MovementCount++
	l.touch(inv, at)
	return nil
}

// issuable tope de salida. Tras un conteo sin reconciliar el disponible puede superar
// al físico; el físico nunca queda negativo.
func issuable(inv *entity.Inventory) decimal.Decimal {
	return decimal.Min(inv.AvailableStock, inv.CurrentStock)
}

// reservable tope de reserva: disponible, sin superar el físico no reservado.
func reservable(inv *entity.Inventory) decimal.Decimal {
	free := inv.CurrentStock.Sub(inv.ReservedStock)
	if free.IsNegative() {
		free = decimal.Zero
	}
	return decimal.Min(inv.AvailableStock, free)
}

// Reserve pasa cantidad de disponible a reservado.
func (l *Ledger) Reserve(inv *entity.Inventory, quantity decimal.Decimal, at time.Time) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if limit := reservable(inv); limit.LessThan(quantity) {
		return domain.NewInsufficientStock(inv.ID, limit, quantity)
	}
	inv.ReservedStock = inv.ReservedStock.Add(quantity)
	inv.AvailableStock = inv.AvailableStock.Sub(quantity)
	l.touch(inv, at)
	return nil
}

// Unreserve libera hasta min(reservado, cantidad) y devuelve lo liberado.
// El mismo monto sale de reservado y entra a disponible: liberar de más no crea stock.
func (l *Ledger) Unreserve(inv *entity.Inventory, quantity decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	released := decimal.Min(inv.ReservedStock, quantity)
	inv.ReservedStock = inv.ReservedStock.Sub(released)
	inv.AvailableStock = inv.AvailableStock.Add(released)
	l.touch(inv, at)
	return released, nil
}

// AdjustByStocktaking fija el stock físico al conteo real.
// No reparte entre disponible y reservado: ver Reconcile.
func (l *Ledger) AdjustByStocktaking(inv *entity.Inventory, actualQuantity decimal.Decimal, at time.Time) error {
	if actualQuantity.IsNegative() {
		return domain.ErrInvalidInput
	}
	inv.CurrentStock = actualQuantity
	inv.LastStocktakingDate = &at
	l.touch(inv, at)
	return nil
}

// Reconcile reparte el stock físico: reservado se recorta al físico y el resto queda disponible.
func (l *Ledger) Reconcile(inv *entity.Inventory, at time.Time) {
	inv.ReservedStock = decimal.Min(inv.ReservedStock, inv.CurrentStock)
	inv.AvailableStock = inv.CurrentStock.Sub(inv.ReservedStock)
	l.touch(inv, at)
}

// MoveLocation cambia solo metadatos de ubicación.
func (l *Ledger) MoveLocation(inv *entity.Inventory, locationCode, description string, at time.Time) error {
	if locationCode == "" {
		return domain.ErrInvalidInput
	}
	inv.LocationCode = locationCode
	inv.LocationDescription = description
	inv.UpdatedAt = at
	return nil
}

// SetThresholds reemplaza los umbrales y reclasifica.
func (l *Ledger) SetThresholds(inv *entity.Inventory, th entity.Thresholds, at time.Time) error {
	if err := ValidateThresholds(th); err != nil {
		return err
	}
	inv.Thresholds = th
	l.Refresh(inv)
	inv.UpdatedAt = at
	return nil
}

// Refresh recalcula los campos derivados: valor total, estado, banderas y clase ABC.
// Es el único lugar donde se asignan.
func (l *Ledger) Refresh(inv *entity.Inventory) {
	inv.TotalStockValue = inv.CurrentStock.Mul(inv.AverageCost)
	c := Classify(inv.CurrentStock, inv.AvailableStock, inv.MinStock, inv.MaxStock, inv.ReorderPoint)
	inv.StockStatus = c.Status
	inv.IsLowStock = c.IsLowStock
	inv.IsOutOfStock = c.IsOutOfStock
	inv.IsOverStock = c.IsOverStock
	inv.NeedsReorder = c.NeedsReorder
	inv.StockGrade = l.grades.Grade(inv.TotalStockValue)
}

func (l *Ledger) touch(inv *entity.Inventory, at time.Time) {
	inv.LastStockUpdate = &at
	inv.UpdatedAt = at
	l.Refresh(inv)
}

// ValidateThresholds umbrales no negativos y mínimo <= máximo cuando hay máximo.
func ValidateThresholds(th entity.Thresholds) error {
	if th.SafetyStock.IsNegative() || th.MinStock.IsNegative() || th.MaxStock.IsNegative() ||
		th.ReorderPoint.IsNegative() || th.ReorderQuantity.IsNegative() {
		return domain.ErrInvalidInput
	}
	if th.MaxStock.GreaterThan(decimal.Zero) && th.MinStock.GreaterThan(th.MaxStock) {
		return domain.ErrInvalidInput
	}
	return nil
}
