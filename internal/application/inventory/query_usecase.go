package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockQueryUseCase proyecciones de solo lectura sobre el ledger.
type StockQueryUseCase struct {
	repos repository.Repos
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(repos repository.Repos) *StockQueryUseCase {
	return &StockQueryUseCase{repos: repos}
}

// StockLevels registros vigentes según el filtro.
func (uc *StockQueryUseCase) StockLevels(ctx context.Context, filter repository.InventoryFilter) ([]*entity.Inventory, error) {
	if filter.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.repos.Inventory.List(ctx, filter)
}

// LowStock registros con stock físico en o bajo el mínimo (y mayor que cero).
func (uc *StockQueryUseCase) LowStock(ctx context.Context, companyID, warehouseID string) ([]*entity.Inventory, error) {
	return uc.StockLevels(ctx, repository.InventoryFilter{CompanyID: companyID, WarehouseID: warehouseID, LowStock: true})
}

// OutOfStock registros sin stock físico o sin disponible.
func (uc *StockQueryUseCase) OutOfStock(ctx context.Context, companyID, warehouseID string) ([]*entity.Inventory, error) {
	return uc.StockLevels(ctx, repository.InventoryFilter{CompanyID: companyID, WarehouseID: warehouseID, OutOfStock: true})
}

// OverStock registros por encima del máximo.
func (uc *StockQueryUseCase) OverStock(ctx context.Context, companyID, warehouseID string) ([]*entity.Inventory, error) {
	return uc.StockLevels(ctx, repository.InventoryFilter{CompanyID: companyID, WarehouseID: warehouseID, OverStock: true})
}

// ReorderNeeded registros en o bajo el punto de reorden.
func (uc *StockQueryUseCase) ReorderNeeded(ctx context.Context, companyID, warehouseID string) ([]*entity.Inventory, error) {
	return uc.StockLevels(ctx, repository.InventoryFilter{CompanyID: companyID, WarehouseID: warehouseID, NeedsReorder: true})
}

// TotalStockValue suma de CurrentStock * AverageCost; warehouseID vacío = toda la empresa.
func (uc *StockQueryUseCase) TotalStockValue(ctx context.Context, companyID, warehouseID string) (*dto.StockValueDTO, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	total, err := uc.repos.Inventory.TotalStockValue(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &dto.StockValueDTO{CompanyID: companyID, WarehouseID: warehouseID, TotalValue: total}, nil
}

// TurnoverAnalysis rotación por producto: salidas procesadas del período contra el stock actual.
// Ordenado de mayor a menor rotación.
func (uc *StockQueryUseCase) TurnoverAnalysis(ctx context.Context, companyID, warehouseID string, from, to time.Time) (*dto.TurnoverReportDTO, error) {
	if companyID == "" || to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	totals, err := uc.repos.Movements.SumProcessedByProduct(ctx, companyID, warehouseID, from, to)
	if err != nil {
		return nil, err
	}
	levels, err := uc.repos.Inventory.List(ctx, repository.InventoryFilter{CompanyID: companyID, WarehouseID: warehouseID})
	if err != nil {
		return nil, err
	}
	stockByProduct := make(map[string]decimal.Decimal)
	for _, inv := range levels {
		stockByProduct[inv.ProductID] = stockByProduct[inv.ProductID].Add(inv.CurrentStock)
	}

	days := decimal.NewFromFloat(to.Sub(from).Hours() / 24)
	if days.LessThan(decimal.NewFromInt(1)) {
		days = decimal.NewFromInt(1)
	}
	items := make([]dto.TurnoverDTO, 0, len(totals))
	for _, t := range totals {
		item := dto.TurnoverDTO{
			ProductID:    t.ProductID,
			Inbound:      t.Inbound,
			Outbound:     t.Outbound,
			CurrentStock: stockByProduct[t.ProductID],
		}
		if item.CurrentStock.GreaterThan(decimal.Zero) {
			item.TurnoverRatio = t.Outbound.Div(item.CurrentStock).Round(2)
		}
		if t.Outbound.GreaterThan(decimal.Zero) {
			daily := t.Outbound.Div(days)
			item.DaysOfSupply = item.CurrentStock.Div(daily).Round(1)
		}
		p, err := uc.repos.Products.GetByID(ctx, t.ProductID)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", t.ProductID, err)
		}
		if p != nil {
			item.SKU = p.SKU
			item.ProductName = p.Name
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TurnoverRatio.GreaterThan(items[j].TurnoverRatio)
	})
	return &dto.TurnoverReportDTO{From: from, To: to, Items: items}, nil
}

// ProductStockSummary stock agregado de un producto en todas sus bodegas y ubicaciones.
func (uc *StockQueryUseCase) ProductStockSummary(ctx context.Context, companyID, productID string) (*dto.ProductStockSummaryDTO, error) {
	product, err := checkProduct(ctx, uc.repos.Products, companyID, productID)
	if err != nil {
		return nil, err
	}
	levels, err := uc.repos.Inventory.List(ctx, repository.InventoryFilter{CompanyID: companyID, ProductID: productID})
	if err != nil {
		return nil, err
	}
	out := &dto.ProductStockSummaryDTO{
		ProductID:   product.ID,
		SKU:         product.SKU,
		ProductName: product.Name,
		Locations:   make([]dto.InventoryResponse, 0, len(levels)),
	}
	warehouses := make(map[string]struct{})
	for _, inv := range levels {
		out.TotalCurrent = out.TotalCurrent.Add(inv.CurrentStock)
		out.TotalAvailable = out.TotalAvailable.Add(inv.AvailableStock)
		out.TotalReserved = out.TotalReserved.Add(inv.ReservedStock)
		out.TotalValue = out.TotalValue.Add(inv.TotalStockValue)
		warehouses[inv.WarehouseID] = struct{}{}
		out.Locations = append(out.Locations, *dto.NewInventoryResponse(inv))
	}
	out.WarehouseCount = len(warehouses)
	return out, nil
}

// WarehouseUtilization ocupación de cada bodega de la empresa frente a su capacidad.
func (uc *StockQueryUseCase) WarehouseUtilization(ctx context.Context, companyID string) ([]dto.WarehouseUtilizationDTO, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	warehouses, err := uc.repos.Warehouses.ListByCompany(ctx, companyID, 0, 0)
	if err != nil {
		return nil, err
	}
	hundred := decimal.NewFromInt(100)
	out := make([]dto.WarehouseUtilizationDTO, 0, len(warehouses))
	for _, wh := range warehouses {
		used, err := uc.repos.Inventory.SumStockByWarehouse(ctx, wh.ID)
		if err != nil {
			return nil, err
		}
		value, err := uc.repos.Inventory.TotalStockValue(ctx, companyID, wh.ID)
		if err != nil {
			return nil, err
		}
		item := dto.WarehouseUtilizationDTO{
			WarehouseID: wh.ID,
			Code:        wh.Code,
			Name:        wh.Name,
			Capacity:    wh.Capacity,
			UsedStock:   used,
			TotalValue:  value,
		}
		if wh.HasCapacityLimit() {
			item.UtilizationPct = used.Div(wh.Capacity).Mul(hundred).Round(2)
		}
		out = append(out, item)
	}
	return out, nil
}

// Dashboard resumen del inventario de la empresa; las consultas corren en paralelo.
func (uc *StockQueryUseCase) Dashboard(ctx context.Context, companyID string) (*dto.StockDashboardDTO, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	out := &dto.StockDashboardDTO{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := uc.repos.Inventory.TotalStockValue(gctx, companyID, "")
		out.TotalStockValue = total
		return err
	})
	count := func(dst *int, filter repository.InventoryFilter) func() error {
		return func() error {
			list, err := uc.repos.Inventory.List(gctx, filter)
			*dst = len(list)
			return err
		}
	}
	g.Go(count(&out.LowStockCount, repository.InventoryFilter{CompanyID: companyID, LowStock: true}))
	g.Go(count(&out.OutOfStockCount, repository.InventoryFilter{CompanyID: companyID, OutOfStock: true}))
	g.Go(count(&out.OverStockCount, repository.InventoryFilter{CompanyID: companyID, OverStock: true}))
	g.Go(count(&out.ReorderCount, repository.InventoryFilter{CompanyID: companyID, NeedsReorder: true}))
	g.Go(func() error {
		list, err := uc.repos.Movements.List(gctx, repository.MovementFilter{CompanyID: companyID, Status: entity.MovementStatusPending})
		out.PendingMovements = len(list)
		return err
	})
	g.Go(func() error {
		list, err := uc.WarehouseUtilization(gctx, companyID)
		out.Warehouses = list
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
