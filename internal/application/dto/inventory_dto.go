package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateInventoryRequest body para POST /api/inventory.
type CreateInventoryRequest struct {
	ProductID           string `json:"product_id" validate:"required"`
	WarehouseID         string `json:"warehouse_id" validate:"required"`
	LocationCode        string `json:"location_code" validate:"omitempty,max=50"`
	LocationDescription string `json:"location_description" validate:"omitempty,max=200"`
}

// ReceiptRequest entrada directa al ledger (sin movimiento).
type ReceiptRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// QuantityRequest body con una sola cantidad (salida, reserva, liberación).
type QuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// StocktakingRequest conteo físico.
type StocktakingRequest struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
}

// MoveLocationRequest cambio de ubicación dentro de la bodega.
type MoveLocationRequest struct {
	LocationCode        string `json:"location_code" validate:"required,max=50"`
	LocationDescription string `json:"location_description" validate:"omitempty,max=200"`
}

// ThresholdsRequest umbrales de stock de un registro.
type ThresholdsRequest struct {
	SafetyStock     decimal.Decimal `json:"safety_stock"`
	MinStock        decimal.Decimal `json:"min_stock"`
	MaxStock        decimal.Decimal `json:"max_stock"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
}

// ToEntity convierte a entity.Thresholds.
func (r ThresholdsRequest) ToEntity() entity.Thresholds {
	return entity.Thresholds{
		SafetyStock:     r.SafetyStock,
		MinStock:        r.MinStock,
		MaxStock:        r.MaxStock,
		ReorderPoint:    r.ReorderPoint,
		ReorderQuantity: r.ReorderQuantity,
	}
}

// TrackingRequest lote, serie y fechas de vencimiento/fabricación.
type TrackingRequest struct {
	LotNumber       string     `json:"lot_number" validate:"omitempty,max=100"`
	SerialNumber    string     `json:"serial_number" validate:"omitempty,max=100"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	ManufactureDate *time.Time `json:"manufacture_date"`
}

// ToEntity convierte a entity.Tracking.
func (r TrackingRequest) ToEntity() entity.Tracking {
	return entity.Tracking{
		LotNumber:       r.LotNumber,
		SerialNumber:    r.SerialNumber,
		ExpiryDate:      r.ExpiryDate,
		ManufactureDate: r.ManufactureDate,
	}
}

// ReservationRequest reserva o liberación por clave (producto, bodega, ubicación).
type ReservationRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	WarehouseID  string          `json:"warehouse_id" validate:"required"`
	LocationCode string          `json:"location_code" validate:"omitempty,max=50"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// UnreserveResponse resultado de una liberación: el registro y lo efectivamente liberado.
type UnreserveResponse struct {
	Inventory InventoryResponse `json:"inventory"`
	Released  decimal.Decimal   `json:"released"`
}

// InventoryResponse salida de un registro del ledger.
type InventoryResponse struct {
	ID                  string          `json:"id"`
	CompanyID           string          `json:"company_id"`
	ProductID           string          `json:"product_id"`
	WarehouseID         string          `json:"warehouse_id"`
	LocationCode        string          `json:"location_code"`
	LocationDescription string          `json:"location_description,omitempty"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	AvailableStock      decimal.Decimal `json:"available_stock"`
	ReservedStock       decimal.Decimal `json:"reserved_stock"`
	OrderedStock        decimal.Decimal `json:"ordered_stock"`
	DefectiveStock      decimal.Decimal `json:"defective_stock"`
	QuarantineStock     decimal.Decimal `json:"quarantine_stock"`
	SafetyStock         decimal.Decimal `json:"safety_stock"`
	MinStock            decimal.Decimal `json:"min_stock"`
	MaxStock            decimal.Decimal `json:"max_stock"`
	ReorderPoint        decimal.Decimal `json:"reorder_point"`
	ReorderQuantity     decimal.Decimal `json:"reorder_quantity"`
	AverageCost         decimal.Decimal `json:"average_cost"`
	LastPurchasePrice   decimal.Decimal `json:"last_purchase_price"`
	TotalStockValue     decimal.Decimal `json:"total_stock_value"`
	StockStatus         string          `json:"stock_status"`
	StockGrade          string          `json:"stock_grade"`
	IsLowStock          bool            `json:"is_low_stock"`
	IsOutOfStock        bool            `json:"is_out_of_stock"`
	IsOverStock         bool            `json:"is_over_stock"`
	NeedsReorder        bool            `json:"needs_reorder"`
	LotNumber           string          `json:"lot_number,omitempty"`
	SerialNumber        string          `json:"serial_number,omitempty"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
	ManufactureDate     *time.Time      `json:"manufacture_date,omitempty"`
	MovementCount       int64           `json:"movement_count"`
	LastReceiptDate     *time.Time      `json:"last_receipt_date,omitempty"`
	LastIssueDate       *time.Time      `json:"last_issue_date,omitempty"`
	LastStocktakingDate *time.Time      `json:"last_stocktaking_date,omitempty"`
	LastStockUpdate     *time.Time      `json:"last_stock_update,omitempty"`
	Version             int64           `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// InventoryListResponse lista paginada de registros.
type InventoryListResponse struct {
	Items []InventoryResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// NewInventoryResponse mapea la entidad a la salida HTTP.
func NewInventoryResponse(inv *entity.Inventory) *InventoryResponse {
	if inv == nil {
		return nil
	}
	return &InventoryResponse{
		ID:                  inv.ID,
		CompanyID:           inv.CompanyID,
		ProductID:           inv.ProductID,
		WarehouseID:         inv.WarehouseID,
		LocationCode:        inv.LocationCode,
		LocationDescription: inv.LocationDescription,
		CurrentStock:        inv.CurrentStock,
		AvailableStock:      inv.AvailableStock,
		ReservedStock:       inv.ReservedStock,
		OrderedStock:        inv.OrderedStock,
		DefectiveStock:      inv.DefectiveStock,
		QuarantineStock:     inv.QuarantineStock,
		SafetyStock:         inv.SafetyStock,
		MinStock:            inv.MinStock,
		MaxStock:            inv.MaxStock,
		ReorderPoint:        inv.ReorderPoint,
		ReorderQuantity:     inv.ReorderQuantity,
		AverageCost:         inv.AverageCost,
		LastPurchasePrice:   inv.LastPurchasePrice,
		TotalStockValue:     inv.TotalStockValue,
		StockStatus:         string(inv.StockStatus),
		StockGrade:          string(inv.StockGrade),
		IsLowStock:          inv.IsLowStock,
		IsOutOfStock:        inv.IsOutOfStock,
		IsOverStock:         inv.IsOverStock,
		NeedsReorder:        inv.NeedsReorder,
		LotNumber:           inv.LotNumber,
		SerialNumber:        inv.SerialNumber,
		ExpiryDate:          inv.ExpiryDate,
		ManufactureDate:     inv.ManufactureDate,
		MovementCount:       inv.MovementCount,
		LastReceiptDate:     inv.LastReceiptDate,
		LastIssueDate:       inv.LastIssueDate,
		LastStocktakingDate: inv.LastStocktakingDate,
		LastStockUpdate:     inv.LastStockUpdate,
		Version:             inv.Version,
		CreatedAt:           inv.CreatedAt,
		UpdatedAt:           inv.UpdatedAt,
	}
}

// NewInventoryList mapea una página de registros.
func NewInventoryList(list []*entity.Inventory, limit, offset int) *InventoryListResponse {
	items := make([]InventoryResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *NewInventoryResponse(inv))
	}
	return &InventoryListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset, Total: len(items)}}
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un registro bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	InventoryID        string          `json:"inventory_id"`
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	WarehouseID        string          `json:"warehouse_id"`
	LocationCode       string          `json:"location_code"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	AvailableStock     decimal.Decimal `json:"available_stock"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // ReorderQuantity, MaxStock - CurrentStock o ReorderPoint*1.5 - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	StockStatus        string          `json:"stock_status"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
