package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento; determina el signo y el destino del delta de cantidad.
type MovementType string

const (
	MovementTypeReceipt             MovementType = "RECEIPT"
	MovementTypePurchaseReceipt     MovementType = "PURCHASE_RECEIPT"
	MovementTypeProductionReceipt   MovementType = "PRODUCTION_RECEIPT"
	MovementTypeReturnReceipt       MovementType = "RETURN_RECEIPT"
	MovementTypeTransferIn          MovementType = "TRANSFER_IN"
	MovementTypeTransferOut         MovementType = "TRANSFER_OUT"
	MovementTypeAdjustmentIn        MovementType = "ADJUSTMENT_IN"
	MovementTypeAdjustmentOut       MovementType = "ADJUSTMENT_OUT"
	MovementTypeIssue               MovementType = "ISSUE"
	MovementTypeSalesIssue          MovementType = "SALES_ISSUE"
	MovementTypeProductionIssue     MovementType = "PRODUCTION_ISSUE"
	MovementTypeReturnIssue         MovementType = "RETURN_ISSUE"
	MovementTypeDisposal            MovementType = "DISPOSAL"
	MovementTypeStocktakingIncrease MovementType = "STOCKTAKING_INCREASE"
	MovementTypeStocktakingDecrease MovementType = "STOCKTAKING_DECREASE"
	MovementTypeWarehouseTransfer   MovementType = "WAREHOUSE_TRANSFER"
	MovementTypeLocationTransfer    MovementType = "LOCATION_TRANSFER"
)

// MovementDirection sentido del movimiento sobre el ledger.
type MovementDirection int

const (
	DirectionUnknown MovementDirection = iota
	DirectionInbound
	DirectionOutbound
	DirectionTransfer
)

// Direction clasifica el tipo en entrada, salida o traslado.
func (t MovementType) Direction() MovementDirection {
	switch t {
	case MovementTypeReceipt, MovementTypePurchaseReceipt, MovementTypeProductionReceipt,
		MovementTypeReturnReceipt, MovementTypeTransferIn, MovementTypeAdjustmentIn,
		MovementTypeStocktakingIncrease:
		return DirectionInbound
	case MovementTypeIssue, MovementTypeSalesIssue, MovementTypeProductionIssue,
		MovementTypeReturnIssue, MovementTypeTransferOut, MovementTypeAdjustmentOut,
		MovementTypeDisposal, MovementTypeStocktakingDecrease:
		return DirectionOutbound
	case MovementTypeWarehouseTransfer, MovementTypeLocationTransfer:
		return DirectionTransfer
	}
	return DirectionUnknown
}

// MovementTypes todos los tipos conocidos.
var MovementTypes = []MovementType{
	MovementTypeReceipt, MovementTypePurchaseReceipt, MovementTypeProductionReceipt, MovementTypeReturnReceipt,
	MovementTypeTransferIn, MovementTypeTransferOut, MovementTypeAdjustmentIn, MovementTypeAdjustmentOut,
	MovementTypeIssue, MovementTypeSalesIssue, MovementTypeProductionIssue, MovementTypeReturnIssue,
	MovementTypeDisposal, MovementTypeStocktakingIncrease, MovementTypeStocktakingDecrease,
	MovementTypeWarehouseTransfer, MovementTypeLocationTransfer,
}

// TypesByDirection tipos con el sentido indicado, como texto (para consultas SQL).
func TypesByDirection(dir MovementDirection) []string {
	var out []string
	for _, t := range MovementTypes {
		if t.Direction() == dir {
			out = append(out, string(t))
		}
	}
	return out
}

// IsValid indica si el tipo es conocido.
func (t MovementType) IsValid() bool { return t.Direction() != DirectionUnknown }

// IsPurchase indica entradas con precio de compra real (el resto se valora al costo promedio).
func (t MovementType) IsPurchase() bool {
	return t == MovementTypeReceipt || t == MovementTypePurchaseReceipt ||
		t == MovementTypeProductionReceipt || t == MovementTypeReturnReceipt
}

// MovementStatus estado del flujo de aprobación.
type MovementStatus string

const (
	MovementStatusDraft     MovementStatus = "DRAFT"
	MovementStatusPending   MovementStatus = "PENDING"
	MovementStatusApproved  MovementStatus = "APPROVED"
	MovementStatusProcessed MovementStatus = "PROCESSED"
	MovementStatusRejected  MovementStatus = "REJECTED"
	MovementStatusCancelled MovementStatus = "CANCELLED"
)

// CanTransitionTo tabla de transiciones permitidas.
func (s MovementStatus) CanTransitionTo(target MovementStatus) bool {
	switch s {
	case MovementStatusDraft:
		return target == MovementStatusPending || target == MovementStatusCancelled
	case MovementStatusPending:
		return target == MovementStatusApproved || target == MovementStatusProcessed ||
			target == MovementStatusRejected || target == MovementStatusCancelled
	case MovementStatusApproved:
		return target == MovementStatusProcessed
	}
	// PROCESSED, REJECTED y CANCELLED son terminales.
	return false
}

// IsTerminal indica estados sin salida.
func (s MovementStatus) IsTerminal() bool {
	return s == MovementStatusProcessed || s == MovementStatusRejected || s == MovementStatusCancelled
}

// StockMovement entrada del log de movimientos; inmutable una vez procesada.
type StockMovement struct {
	ID             string
	MovementNumber string
	CompanyID      string
	ProductID      string
	WarehouseID    string
	InventoryID    string
	LocationCode   string

	MovementType   MovementType
	MovementStatus MovementStatus

	Quantity    decimal.Decimal // siempre > 0; el sentido lo da el tipo
	Unit        string
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
	BeforeStock decimal.Decimal
	AfterStock  decimal.Decimal

	FromWarehouseID string
	FromLocation    string
	ToWarehouseID   string
	ToLocation      string

	ReferenceNumber string
	ReferenceType   string
	Notes           string

	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	SubmittedAt  *time.Time
	ApprovedBy   string
	ApprovedAt   *time.Time
	ProcessedBy  string
	ProcessedAt  *time.Time
	RejectedBy   string
	RejectedAt   *time.Time
	CancelledAt  *time.Time
	CancelReason string
}
