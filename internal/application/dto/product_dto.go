package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU             string          `json:"sku" validate:"required,min=1,max=100"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description"`
	Unit            string          `json:"unit" validate:"omitempty,max=20"`
	Price           decimal.Decimal `json:"price"`
	SafetyStock     decimal.Decimal `json:"safety_stock"`
	MinStock        decimal.Decimal `json:"min_stock"`
	MaxStock        decimal.Decimal `json:"max_stock"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
}

// UpdateProductRequest entrada para actualizar un producto. Los umbrales solo aplican a
// registros de inventario nuevos; los existentes se ajustan con UpdateThresholds.
type UpdateProductRequest struct {
	Name        *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description"`
	Unit        *string            `json:"unit" validate:"omitempty,max=20"`
	Price       *decimal.Decimal   `json:"price"`
	Thresholds  *ThresholdsRequest `json:"thresholds"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Unit            string          `json:"unit"`
	Price           decimal.Decimal `json:"price"`
	SafetyStock     decimal.Decimal `json:"safety_stock"`
	MinStock        decimal.Decimal `json:"min_stock"`
	MaxStock        decimal.Decimal `json:"max_stock"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
