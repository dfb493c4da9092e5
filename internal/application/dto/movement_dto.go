package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateMovementRequest body para POST /api/inventory/movements.
// Movimientos simples: ProductID, WarehouseID y LocationCode opcional.
// WAREHOUSE_TRANSFER / LOCATION_TRANSFER: FromWarehouseID/ToWarehouseID y FromLocation/ToLocation.
type CreateMovementRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	WarehouseID     string          `json:"warehouse_id,omitempty"`
	LocationCode    string          `json:"location_code,omitempty" validate:"omitempty,max=50"`
	MovementType    string          `json:"movement_type" validate:"required,oneof=RECEIPT PURCHASE_RECEIPT PRODUCTION_RECEIPT RETURN_RECEIPT TRANSFER_IN TRANSFER_OUT ADJUSTMENT_IN ADJUSTMENT_OUT ISSUE SALES_ISSUE PRODUCTION_ISSUE RETURN_ISSUE DISPOSAL STOCKTAKING_INCREASE STOCKTAKING_DECREASE WAREHOUSE_TRANSFER LOCATION_TRANSFER"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit,omitempty" validate:"omitempty,max=20"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	FromWarehouseID string          `json:"from_warehouse_id,omitempty"`
	FromLocation    string          `json:"from_location,omitempty" validate:"omitempty,max=50"`
	ToWarehouseID   string          `json:"to_warehouse_id,omitempty"`
	ToLocation      string          `json:"to_location,omitempty" validate:"omitempty,max=50"`
	ReferenceNumber string          `json:"reference_number,omitempty" validate:"omitempty,max=100"`
	ReferenceType   string          `json:"reference_type,omitempty" validate:"omitempty,max=50"`
	Notes           string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// UpdateMovementRequest edición de un movimiento en DRAFT. Solo se aplican los campos presentes.
type UpdateMovementRequest struct {
	Quantity        *decimal.Decimal `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	Unit            *string          `json:"unit" validate:"omitempty,max=20"`
	LocationCode    *string          `json:"location_code" validate:"omitempty,max=50"`
	FromLocation    *string          `json:"from_location" validate:"omitempty,max=50"`
	ToLocation      *string          `json:"to_location" validate:"omitempty,max=50"`
	ReferenceNumber *string          `json:"reference_number" validate:"omitempty,max=100"`
	ReferenceType   *string          `json:"reference_type" validate:"omitempty,max=50"`
	Notes           *string          `json:"notes" validate:"omitempty,max=1000"`
}

// ReasonRequest motivo de rechazo o cancelación.
type ReasonRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID              string          `json:"id"`
	MovementNumber  string          `json:"movement_number"`
	CompanyID       string          `json:"company_id"`
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	InventoryID     string          `json:"inventory_id,omitempty"`
	LocationCode    string          `json:"location_code"`
	MovementType    string          `json:"movement_type"`
	MovementStatus  string          `json:"movement_status"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BeforeStock     decimal.Decimal `json:"before_stock"`
	AfterStock      decimal.Decimal `json:"after_stock"`
	FromWarehouseID string          `json:"from_warehouse_id,omitempty"`
	FromLocation    string          `json:"from_location,omitempty"`
	ToWarehouseID   string          `json:"to_warehouse_id,omitempty"`
	ToLocation      string          `json:"to_location,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ProcessedBy     string          `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	RejectedBy      string          `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InconsistentMovementDTO movimiento procesado cuyo before/after no cuadra con la cantidad.
type InconsistentMovementDTO struct {
	MovementID         string          `json:"movement_id"`
	MovementNumber     string          `json:"movement_number"`
	MovementType       string          `json:"movement_type"`
	Quantity           decimal.Decimal `json:"quantity"`
	BeforeStock        decimal.Decimal `json:"before_stock"`
	AfterStock         decimal.Decimal `json:"after_stock"`
	ExpectedAfterStock decimal.Decimal `json:"expected_after_stock"`
}

// NewMovementResponse mapea la entidad a la salida HTTP.
func NewMovementResponse(m *entity.StockMovement) *MovementResponse {
	if m == nil {
		return nil
	}
	return &MovementResponse{
		ID:              m.ID,
		MovementNumber:  m.MovementNumber,
		CompanyID:       m.CompanyID,
		ProductID:       m.ProductID,
		WarehouseID:     m.WarehouseID,
		InventoryID:     m.InventoryID,
		LocationCode:    m.LocationCode,
		MovementType:    string(m.MovementType),
		MovementStatus:  string(m.MovementStatus),
		Quantity:        m.Quantity,
		Unit:            m.Unit,
		UnitPrice:       m.UnitPrice,
		TotalAmount:     m.TotalAmount,
		BeforeStock:     m.BeforeStock,
		AfterStock:      m.AfterStock,
		FromWarehouseID: m.FromWarehouseID,
		FromLocation:    m.FromLocation,
		ToWarehouseID:   m.ToWarehouseID,
		ToLocation:      m.ToLocation,
		ReferenceNumber: m.ReferenceNumber,
		ReferenceType:   m.ReferenceType,
		Notes:           m.Notes,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		SubmittedAt:     m.SubmittedAt,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
		ProcessedBy:     m.ProcessedBy,
		ProcessedAt:     m.ProcessedAt,
		RejectedBy:      m.RejectedBy,
		RejectedAt:      m.RejectedAt,
		CancelledAt:     m.CancelledAt,
		CancelReason:    m.CancelReason,
	}
}

// NewMovementList mapea una página de movimientos.
func NewMovementList(list []*entity.StockMovement, limit, offset int) *MovementListResponse {
	items := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *NewMovementResponse(m))
	}
	return &MovementListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset, Total: len(items)}}
}
