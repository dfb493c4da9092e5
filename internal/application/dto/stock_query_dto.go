package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockValueDTO valor total del stock (CurrentStock * AverageCost).
type StockValueDTO struct {
	CompanyID   string          `json:"company_id"`
	WarehouseID string          `json:"warehouse_id,omitempty"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// TurnoverDTO rotación de un producto en el período.
type TurnoverDTO struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	Inbound       decimal.Decimal `json:"inbound"`
	Outbound      decimal.Decimal `json:"outbound"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	TurnoverRatio decimal.Decimal `json:"turnover_ratio"` // Outbound / CurrentStock
	DaysOfSupply  decimal.Decimal `json:"days_of_supply"` // CurrentStock / salida diaria promedio; 0 sin salidas
}

// TurnoverReportDTO respuesta de GET /api/inventory/turnover.
type TurnoverReportDTO struct {
	From  time.Time     `json:"from"`
	To    time.Time     `json:"to"`
	Items []TurnoverDTO `json:"items"`
}

// ProductStockSummaryDTO stock agregado de un producto en todas sus bodegas y ubicaciones.
type ProductStockSummaryDTO struct {
	ProductID      string              `json:"product_id"`
	SKU            string              `json:"sku"`
	ProductName    string              `json:"product_name"`
	TotalCurrent   decimal.Decimal     `json:"total_current"`
	TotalAvailable decimal.Decimal     `json:"total_available"`
	TotalReserved  decimal.Decimal     `json:"total_reserved"`
	TotalValue     decimal.Decimal     `json:"total_value"`
	WarehouseCount int                 `json:"warehouse_count"`
	Locations      []InventoryResponse `json:"locations"`
}

// WarehouseUtilizationDTO ocupación de una bodega frente a su capacidad.
type WarehouseUtilizationDTO struct {
	WarehouseID    string          `json:"warehouse_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Capacity       decimal.Decimal `json:"capacity"` // 0 = sin límite
	UsedStock      decimal.Decimal `json:"used_stock"`
	UtilizationPct decimal.Decimal `json:"utilization_pct"` // 0 si no tiene límite
	TotalValue     decimal.Decimal `json:"total_value"`
}

// StockDashboardDTO respuesta de GET /api/inventory/dashboard.
type StockDashboardDTO struct {
	TotalStockValue  decimal.Decimal           `json:"total_stock_value"`
	LowStockCount    int                       `json:"low_stock_count"`
	OutOfStockCount  int                       `json:"out_of_stock_count"`
	OverStockCount   int                       `json:"over_stock_count"`
	ReorderCount     int                       `json:"reorder_count"`
	PendingMovements int                       `json:"pending_movements"`
	Warehouses       []WarehouseUtilizationDTO `json:"warehouses"`
}

// StockValuationRow fila del reporte de valorización.
type StockValuationRow struct {
	SKU          string
	ProductName  string
	WarehouseID  string
	LocationCode string
	CurrentStock decimal.Decimal
	AverageCost  decimal.Decimal
	TotalValue   decimal.Decimal
	StockGrade   string
	StockStatus  string
}

// StockValuationReport datos del PDF de valorización de inventario.
type StockValuationReport struct {
	CompanyID   string
	WarehouseID string
	GeneratedAt time.Time
	Rows        []StockValuationRow
	TotalValue  decimal.Decimal
}
