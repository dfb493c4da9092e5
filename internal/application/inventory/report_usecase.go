package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReportUseCase reportes descargables del inventario.
type ReportUseCase struct {
	repos     repository.Repos
	generator ValuationPDFGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(repos repository.Repos, generator ValuationPDFGenerator) *ReportUseCase {
	return &ReportUseCase{repos: repos, generator: generator}
}

// BuildStockValuation arma los datos de valorización: una fila por registro con stock,
// ordenadas por valor descendente.
func (uc *ReportUseCase) BuildStockValuation(ctx context.Context, companyID, warehouseID string) (*dto.StockValuationReport, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	levels, err := uc.repos.Inventory.List(ctx, repository.InventoryFilter{CompanyID: companyID, WarehouseID: warehouseID})
	if err != nil {
		return nil, err
	}
	report := &dto.StockValuationReport{
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		GeneratedAt: time.Now(),
		Rows:        make([]dto.StockValuationRow, 0, len(levels)),
		TotalValue:  decimal.Zero,
	}
	names := make(map[string][2]string)
	for _, inv := range levels {
		if inv.CurrentStock.IsZero() {
			continue
		}
		n, ok := names[inv.ProductID]
		if !ok {
			if p, _ := uc.repos.Products.GetByID(ctx, inv.ProductID); p != nil {
				n = [2]string{p.SKU, p.Name}
			}
			names[inv.ProductID] = n
		}
		report.Rows = append(report.Rows, dto.StockValuationRow{
			SKU:          n[0],
			ProductName:  n[1],
			WarehouseID:  inv.WarehouseID,
			LocationCode: inv.LocationCode,
			CurrentStock: inv.CurrentStock,
			AverageCost:  inv.AverageCost,
			TotalValue:   inv.TotalStockValue,
			StockGrade:   string(inv.StockGrade),
			StockStatus:  string(inv.StockStatus),
		})
		report.TotalValue = report.TotalValue.Add(inv.TotalStockValue)
	}
	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].TotalValue.GreaterThan(report.Rows[j].TotalValue)
	})
	return report, nil
}

// StockValuationPDF genera el PDF de valorización.
func (uc *ReportUseCase) StockValuationPDF(ctx context.Context, companyID, warehouseID string) ([]byte, error) {
	report, err := uc.BuildStockValuation(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateStockValuationPDF(ctx, report)
}
