package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Errores del motor de inventario.
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInvalidTransition    = errors.New("transición de estado no permitida")
	ErrDuplicateLedgerEntry = errors.New("ya existe un registro de inventario para producto, bodega y ubicación")
	ErrInconsistentMovement = errors.New("movimiento inconsistente con el stock registrado")
	ErrCapacityExceeded     = errors.New("capacidad de la bodega excedida")
	ErrMovementImmutable    = errors.New("el movimiento ya no admite cambios")
)

// InsufficientStockError detalle de una salida o reserva rechazada por falta de disponible.
type InsufficientStockError struct {
	InventoryID string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %s, solicitado %s", e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NewInsufficientStock construye el error con las cantidades disponibles y solicitadas.
func NewInsufficientStock(inventoryID string, available, requested decimal.Decimal) error {
	return &InsufficientStockError{InventoryID: inventoryID, Available: available, Requested: requested}
}

// InvalidTransitionError transición de movimiento desde un estado no permitido.
type InvalidTransitionError struct {
	MovementID string
	From       string
	To         string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición no permitida %s -> %s (movimiento %s)", e.From, e.To, e.MovementID)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// NewInvalidTransition construye el error de transición.
func NewInvalidTransition(movementID, from, to string) error {
	return &InvalidTransitionError{MovementID: movementID, From: from, To: to}
}

// DuplicateLedgerEntryError segundo registro para la misma clave (producto, bodega, ubicación).
type DuplicateLedgerEntryError struct {
	ProductID    string
	WarehouseID  string
	LocationCode string
}

func (e *DuplicateLedgerEntryError) Error() string {
	return fmt.Sprintf("registro de inventario duplicado: producto %s, bodega %s, ubicación %s",
		e.ProductID, e.WarehouseID, e.LocationCode)
}

func (e *DuplicateLedgerEntryError) Is(target error) bool { return target == ErrDuplicateLedgerEntry }

// NewDuplicateLedgerEntry construye el error de unicidad del ledger.
func NewDuplicateLedgerEntry(productID, warehouseID, locationCode string) error {
	return &DuplicateLedgerEntryError{ProductID: productID, WarehouseID: warehouseID, LocationCode: locationCode}
}

// InconsistentMovementError movimiento procesado cuyo before ± cantidad no cuadra con after.
type InconsistentMovementError struct {
	MovementID string
	Expected   decimal.Decimal
	Actual     decimal.Decimal
}

func (e *InconsistentMovementError) Error() string {
	return fmt.Sprintf("movimiento %s inconsistente: stock esperado %s, registrado %s",
		e.MovementID, e.Expected.String(), e.Actual.String())
}

func (e *InconsistentMovementError) Is(target error) bool { return target == ErrInconsistentMovement }

// NewInconsistentMovement construye el error de auditoría.
func NewInconsistentMovement(movementID string, expected, actual decimal.Decimal) error {
	return &InconsistentMovementError{MovementID: movementID, Expected: expected, Actual: actual}
}
