package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de una bodega (o de toda la empresa).
type ReplenishmentUseCase struct {
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	inventoryRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
	}
}

// GenerateReplenishmentList devuelve los registros en o bajo el punto de reorden con la cantidad
// sugerida de pedido. warehouseID puede ser vacío para considerar todas las bodegas.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(
	ctx context.Context,
	companyID, warehouseID string,
) ([]dto.ReplenishmentSuggestionDTO, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}

	// 1. Registros que necesitan reorden
	rawItems, err := uc.inventoryRepo.List(ctx, repository.InventoryFilter{
		CompanyID:    companyID,
		WarehouseID:  warehouseID,
		NeedsReorder: true,
	})
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Construir los DTOs con datos del producto
	products := make(map[string]*entity.Product)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, inv := range rawItems {
		product, ok := products[inv.ProductID]
		if !ok {
			product, err = uc.productRepo.GetByID(ctx, inv.ProductID)
			if err != nil {
				return nil, err
			}
			products[inv.ProductID] = product
		}
		qty := SuggestedOrderQuantity(inv)
		item := dto.ReplenishmentSuggestionDTO{
			InventoryID:        inv.ID,
			ProductID:          inv.ProductID,
			WarehouseID:        inv.WarehouseID,
			LocationCode:       inv.LocationCode,
			CurrentStock:       inv.CurrentStock,
			AvailableStock:     inv.AvailableStock,
			ReorderPoint:       inv.ReorderPoint,
			SuggestedOrderQty:  qty,
			UnitCost:           inv.AverageCost,
			EstimatedOrderCost: qty.Mul(inv.AverageCost),
			StockStatus:        string(inv.StockStatus),
		}
		if product != nil {
			item.SKU = product.SKU
			item.ProductName = product.Name
		}
		suggestions = append(suggestions, item)
	}

	// 3. Ordenar: primero agotados, luego mayor déficit relativo bajo el reorden,
	//    finalmente mayor costo estimado del pedido.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		outA := a.StockStatus == string(entity.StockStatusOutOfStock)
		outB := b.StockStatus == string(entity.StockStatusOutOfStock)
		if outA != outB {
			return outA
		}
		defA, defB := relativeDeficit(a), relativeDeficit(b)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})

	// 4. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// SuggestedOrderQuantity cantidad a pedir: ReorderQuantity si está definida; si no, hasta MaxStock;
// si tampoco hay máximo, hasta 1.5 veces el punto de reorden. Nunca negativa.
func SuggestedOrderQuantity(inv *entity.Inventory) decimal.Decimal {
	var qty decimal.Decimal
	switch {
	case inv.ReorderQuantity.GreaterThan(decimal.Zero):
		qty = inv.ReorderQuantity
	case inv.MaxStock.GreaterThan(decimal.Zero):
		qty = inv.MaxStock.Sub(inv.CurrentStock)
	default:
		qty = inv.ReorderPoint.Mul(decimal.NewFromFloat(1.5)).Sub(inv.CurrentStock)
	}
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty
}

func relativeDeficit(s dto.ReplenishmentSuggestionDTO) decimal.Decimal {
	if !s.ReorderPoint.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return s.ReorderPoint.Sub(s.CurrentStock).Div(s.ReorderPoint)
}
