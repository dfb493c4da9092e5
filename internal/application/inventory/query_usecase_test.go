package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func TestQuery_ProyeccionesPorEstado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, whMain, 8, 10)   // bajo mínimo y reorden
	f.receive(t, whSmall, 60, 10) // normal

	low, err := f.queries.LowStock(f.ctx, companyID, "")
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, whMain, low[0].WarehouseID)

	reorder, err := f.queries.ReorderNeeded(f.ctx, companyID, "")
	require.NoError(t, err)
	assert.Len(t, reorder, 1)

	out, err := f.queries.OutOfStock(f.ctx, companyID, "")
	require.NoError(t, err)
	assert.Empty(t, out)

	value, err := f.queries.TotalStockValue(f.ctx, companyID, "")
	require.NoError(t, err)
	assert.True(t, value.TotalValue.Equal(d(680)))

	value, err = f.queries.TotalStockValue(f.ctx, companyID, whSmall)
	require.NoError(t, err)
	assert.True(t, value.TotalValue.Equal(d(600)))
}

func TestQuery_ResumenDeProducto(t *testing.T) {
	f := newFixture(t)
	f.receive(t, whMain, 40, 2)
	f.receive(t, whSmall, 10, 2)
	_, err := f.reservations.Reserve(f.ctx, companyID, productID, whMain, "", d(5))
	require.NoError(t, err)

	sum, err := f.queries.ProductStockSummary(f.ctx, companyID, productID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-001", sum.SKU)
	assert.True(t, sum.TotalCurrent.Equal(d(50)))
	assert.True(t, sum.TotalAvailable.Equal(d(45)))
	assert.True(t, sum.TotalReserved.Equal(d(5)))
	assert.True(t, sum.TotalValue.Equal(d(100)))
	assert.Equal(t, 2, sum.WarehouseCount)
	assert.Len(t, sum.Locations, 2)
}

func TestQuery_RotacionExcluyeTraslados(t *testing.T) {
	f := newFixture(t)
	from := time.Now().Add(-time.Hour)
	f.receive(t, whMain, 100, 1)
	issue := f.submit(t, dto.CreateMovementRequest{WarehouseID: whMain, MovementType: "SALES_ISSUE", Quantity: d(40)})
	_, err := f.movements.Process(f.ctx, issue.ID, "u-boss")
	require.NoError(t, err)
	tr := f.submit(t, dto.CreateMovementRequest{MovementType: "WAREHOUSE_TRANSFER", FromWarehouseID: whMain, ToWarehouseID: whSmall, Quantity: d(10)})
	_, err = f.movements.Process(f.ctx, tr.ID, "u-boss")
	require.NoError(t, err)

	report, err := f.queries.TurnoverAnalysis(f.ctx, companyID, "", from, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	item := report.Items[0]
	assert.Equal(t, "SKU-001", item.SKU)
	assert.True(t, item.Inbound.Equal(d(100)))
	assert.True(t, item.Outbound.Equal(d(40)))
	assert.True(t, item.CurrentStock.Equal(d(60)))
	assert.Equal(t, "0.67", item.TurnoverRatio.String())
}

// failingProducts falla en GetByID; el resto delega al repositorio real.
type failingProducts struct {
	repository.ProductRepository
	err error
}

func (p failingProducts) GetByID(context.Context, string) (*entity.Product, error) {
	return nil, p.err
}

func TestQuery_RotacionPropagaErrorDeProductos(t *testing.T) {
	f := newFixture(t)
	from := time.Now().Add(-time.Hour)
	f.receive(t, whMain, 10, 1)

	dbErr := errors.New("conexión cerrada")
	repos := f.store.Repos()
	repos.Products = failingProducts{ProductRepository: repos.Products, err: dbErr}
	queries := appinv.NewStockQueryUseCase(repos)

	report, err := queries.TurnoverAnalysis(f.ctx, companyID, "", from, time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, dbErr)
	assert.Nil(t, report)
}

func TestQuery_DashboardYUtilizacion(t *testing.T) {
	f := newFixture(t)
	f.receive(t, whSmall, 25, 4)
	f.submit(t, dto.CreateMovementRequest{WarehouseID: whSmall, MovementType: "ISSUE", Quantity: d(1)})

	dash, err := f.queries.Dashboard(f.ctx, companyID)
	require.NoError(t, err)
	assert.True(t, dash.TotalStockValue.Equal(d(100)))
	assert.Equal(t, 1, dash.PendingMovements)
	assert.Equal(t, 0, dash.LowStockCount)
	require.Len(t, dash.Warehouses, 2)

	var small dto.WarehouseUtilizationDTO
	for _, w := range dash.Warehouses {
		if w.WarehouseID == whSmall {
			small = w
		}
	}
	assert.True(t, small.UsedStock.Equal(d(25)))
	assert.Equal(t, "25", small.UtilizationPct.String())
}

func TestReplenishment_CantidadSugerida(t *testing.T) {
	f := newFixture(t)
	f.receive(t, whMain, 5, 3)
	f.receive(t, whSmall, 15, 3)
	repos := f.store.Repos()
	uc := appinv.NewReplenishmentUseCase(repos.Inventory, repos.Products)

	list, err := uc.GenerateReplenishmentList(f.ctx, companyID, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, whMain, list[0].WarehouseID, "mayor déficit primero")
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedOrderQty.Equal(d(50)), "usa ReorderQuantity del producto")
	assert.True(t, list[0].EstimatedOrderCost.Equal(d(150)))
	assert.Equal(t, "Tornillo", list[0].ProductName)
}

func TestSuggestedOrderQuantity(t *testing.T) {
	tests := []struct {
		name string
		inv  entity.Inventory
		want int64
	}{
		{"lote de pedido", entity.Inventory{CurrentStock: d(5), Thresholds: entity.Thresholds{ReorderQuantity: d(30), MaxStock: d(100)}}, 30},
		{"hasta el máximo", entity.Inventory{CurrentStock: d(5), Thresholds: entity.Thresholds{MaxStock: d(100)}}, 95},
		{"1.5 veces el reorden", entity.Inventory{CurrentStock: d(5), Thresholds: entity.Thresholds{ReorderPoint: d(20)}}, 25},
		{"nunca negativa", entity.Inventory{CurrentStock: d(200), Thresholds: entity.Thresholds{MaxStock: d(100)}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.inv
			got := appinv.SuggestedOrderQuantity(&inv)
			assert.True(t, got.Equal(d(tt.want)), "got %s", got)
		})
	}
}

type fakeValuationPDF struct {
	report *dto.StockValuationReport
}

func (g *fakeValuationPDF) GenerateStockValuationPDF(_ context.Context, r *dto.StockValuationReport) ([]byte, error) {
	g.report = r
	return []byte("%PDF"), nil
}

func TestReport_StockValuation(t *testing.T) {
	f := newFixture(t)
	f.receive(t, whMain, 10, 3)
	f.receive(t, whSmall, 10, 9)
	_, err := f.ledger.GetOrCreate(f.ctx, companyID, productID, whMain, "VACIO")
	require.NoError(t, err)

	gen := &fakeValuationPDF{}
	uc := appinv.NewReportUseCase(f.store.Repos(), gen)
	pdf, err := uc.StockValuationPDF(f.ctx, companyID, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), pdf)

	require.NotNil(t, gen.report)
	require.Len(t, gen.report.Rows, 2, "los registros sin stock no se listan")
	assert.Equal(t, whSmall, gen.report.Rows[0].WarehouseID)
	assert.True(t, gen.report.TotalValue.Equal(d(120)))
}
