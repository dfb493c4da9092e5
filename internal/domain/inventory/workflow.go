package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ValidateMovement revisa los campos que no dependen del estado: tipo, cantidad y datos de traslado.
func ValidateMovement(m *entity.StockMovement) error {
	if !m.MovementType.IsValid() {
		return domain.ErrInvalidInput
	}
	if m.ProductID == "" || m.WarehouseID == "" {
		return domain.ErrInvalidInput
	}
	if !m.Quantity.GreaterThan(decimal.Zero) || m.UnitPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	switch m.MovementType {
	case entity.MovementTypeWarehouseTransfer:
		if m.FromWarehouseID == "" || m.ToWarehouseID == "" || m.FromWarehouseID == m.ToWarehouseID {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeLocationTransfer:
		if m.FromWarehouseID == "" || m.ToWarehouseID == "" || m.FromWarehouseID != m.ToWarehouseID {
			return domain.ErrInvalidInput
		}
		if locationOrDefault(m.FromLocation) == locationOrDefault(m.ToLocation) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Submit DRAFT -> PENDING.
func Submit(m *entity.StockMovement, at time.Time) error {
	if err := transition(m, entity.MovementStatusPending); err != nil {
		return err
	}
	if err := ValidateMovement(m); err != nil {
		return err
	}
	m.MovementStatus = entity.MovementStatusPending
	m.SubmittedAt = &at
	m.UpdatedAt = at
	return nil
}

// Approve PENDING -> APPROVED.
func Approve(m *entity.StockMovement, approverID string, at time.Time) error {
	if err := transition(m, entity.MovementStatusApproved); err != nil {
		return err
	}
	m.MovementStatus = entity.MovementStatusApproved
	m.ApprovedBy = approverID
	m.ApprovedAt = &at
	m.UpdatedAt = at
	return nil
}

// Reject PENDING -> REJECTED. El ledger no se toca.
func Reject(m *entity.StockMovement, userID, reason string, at time.Time) error {
	if err := transition(m, entity.MovementStatusRejected); err != nil {
		return err
	}
	m.MovementStatus = entity.MovementStatusRejected
	m.RejectedBy = userID
	m.RejectedAt = &at
	m.CancelReason = reason
	m.UpdatedAt = at
	return nil
}

// Cancel {DRAFT, PENDING} -> CANCELLED. El ledger no se toca.
func Cancel(m *entity.StockMovement, reason string, at time.Time) error {
	if err := transition(m, entity.MovementStatusCancelled); err != nil {
		return err
	}
	m.MovementStatus = entity.MovementStatusCancelled
	m.CancelledAt = &at
	m.CancelReason = reason
	m.UpdatedAt = at
	return nil
}

// CheckProcessable verifica que el movimiento pueda pasar a PROCESSED sin modificarlo.
func CheckProcessable(m *entity.StockMovement) error {
	return transition(m, entity.MovementStatusProcessed)
}

// MarkProcessed {APPROVED, PENDING} -> PROCESSED con la foto de stock antes/después.
func MarkProcessed(m *entity.StockMovement, processorID string, before, after decimal.Decimal, at time.Time) error {
	if err := CheckProcessable(m); err != nil {
		return err
	}
	m.MovementStatus = entity.MovementStatusProcessed
	m.BeforeStock = before
	m.AfterStock = after
	m.ProcessedBy = processorID
	m.ProcessedAt = &at
	m.UpdatedAt = at
	return nil
}

// ExpectedAfterStock stock esperado tras aplicar el movimiento sobre beforeStock.
// Los traslados se registran desde el origen, como salida.
func ExpectedAfterStock(m *entity.StockMovement) decimal.Decimal {
	if m.MovementType.Direction() == entity.DirectionInbound {
		return m.BeforeStock.Add(m.Quantity)
	}
	return m.BeforeStock.Sub(m.Quantity)
}

// CheckConsistency valida before ± quantity == after en un movimiento procesado.
func CheckConsistency(m *entity.StockMovement) error {
	if m.MovementStatus != entity.MovementStatusProcessed {
		return nil
	}
	if expected := ExpectedAfterStock(m); !expected.Equal(m.AfterStock) {
		return domain.NewInconsistentMovement(m.ID, expected, m.AfterStock)
	}
	return nil
}

func transition(m *entity.StockMovement, to entity.MovementStatus) error {
	if !m.MovementStatus.CanTransitionTo(to) {
		return domain.NewInvalidTransition(m.ID, string(m.MovementStatus), string(to))
	}
	return nil
}

func locationOrDefault(code string) string {
	if code == "" {
		return entity.DefaultLocationCode
	}
	return code
}
