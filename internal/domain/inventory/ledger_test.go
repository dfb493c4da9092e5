package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newLedger() *inventory.Ledger {
	return inventory.NewLedger(inventory.DefaultGradePolicy())
}

// stockedInventory crea un registro con current = available = qty y min indicado.
func stockedInventory(t *testing.T, l *inventory.Ledger, qty, minStock int64) *entity.Inventory {
	t.Helper()
	product := &entity.Product{ID: "p1", CompanyID: "c1", Thresholds: entity.Thresholds{MinStock: d(minStock)}}
	inv := l.NewInventory(entity.InventoryKey{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1"}, product, "u1", testNow)
	if qty > 0 {
		require.NoError(t, l.ApplyReceipt(inv, d(qty), d(50), testNow))
	}
	return inv
}

func assertBalanced(t *testing.T, inv *entity.Inventory) {
	t.Helper()
	assert.True(t, inv.CurrentStock.Equal(inv.AvailableStock.Add(inv.ReservedStock)),
		"current (%s) debe ser available (%s) + reserved (%s)", inv.CurrentStock, inv.AvailableStock, inv.ReservedStock)
	assert.False(t, inv.AvailableStock.IsNegative(), "available nunca negativo")
	assert.False(t, inv.ReservedStock.IsNegative(), "reserved nunca negativo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestNewInventory_DefaultLocationYUmbralesDelProducto(t *testing.T) {
	l := newLedger()
	product := &entity.Product{ID: "p1", Thresholds: entity.Thresholds{MinStock: d(2), MaxStock: d(50), ReorderPoint: d(5)}}

	inv := l.NewInventory(entity.InventoryKey{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1"}, product, "u1", testNow)

	assert.Equal(t, entity.DefaultLocationCode, inv.LocationCode)
	assert.True(t, inv.MinStock.Equal(d(2)))
	assert.True(t, inv.ReorderPoint.Equal(d(5)))
	assert.True(t, inv.IsOutOfStock)
	assert.Equal(t, entity.StockStatusOutOfStock, inv.StockStatus)
	assert.NotEmpty(t, inv.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de salida y entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyIssue_EscenarioA_NoQuedaBajoMinimo(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 10, 2)

	require.NoError(t, l.ApplyIssue(inv, d(3), testNow))

	assert.True(t, inv.CurrentStock.Equal(d(7)))
	assert.True(t, inv.AvailableStock.Equal(d(7)))
	assert.False(t, inv.IsLowStock)
	assert.False(t, inv.IsOutOfStock)
	assert.Equal(t, entity.StockStatusNormal, inv.StockStatus)
	assert.Equal(t, int64(2), inv.MovementCount)
	require.NotNil(t, inv.LastIssueDate)
	assertBalanced(t, inv)
}

func TestApplyIssue_EscenarioB_QuedaBajoMinimo(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 10, 2)

	require.NoError(t, l.ApplyIssue(inv, d(9), testNow))

	assert.True(t, inv.CurrentStock.Equal(d(1)))
	assert.True(t, inv.AvailableStock.Equal(d(1)))
	assert.True(t, inv.IsLowStock)
	assert.Equal(t, entity.StockStatusLowStock, inv.StockStatus)
	assertBalanced(t, inv)
}

func TestApplyIssue_StockInsuficienteNoModifica(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 5, 0)
	before := *inv

	err := l.ApplyIssue(inv, d(6), testNow)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(d(5)))
	assert.True(t, ise.Requested.Equal(d(6)))
	assert.Equal(t, before, *inv, "un error no debe dejar cambios parciales")
}

func TestApplyReceipt_EscenarioC_CostoDesdeCero(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 0, 0)

	require.NoError(t, l.ApplyReceipt(inv, d(5), d(100), testNow))

	assert.True(t, inv.AverageCost.Equal(d(100)), "avg = %s", inv.AverageCost)
	assert.True(t, inv.CurrentStock.Equal(d(5)))
	assert.False(t, inv.IsOutOfStock)
	assert.True(t, inv.LastPurchasePrice.Equal(d(100)))
	assert.True(t, inv.TotalStockValue.Equal(d(500)))
	assertBalanced(t, inv)
}

func TestApplyReceipt_PromedioPonderado(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 0, 0)
	require.NoError(t, l.ApplyReceipt(inv, d(10), d(100), testNow))

	require.NoError(t, l.ApplyReceipt(inv, d(30), d(200), testNow))

	// (10*100 + 30*200) / 40 = 175
	assert.True(t, inv.AverageCost.Equal(d(175)), "avg = %s", inv.AverageCost)
	assert.True(t, inv.LastPurchasePrice.Equal(d(200)))
}

func TestApplyIssue_NoRecalculaCosto(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 10, 0)
	cost := inv.AverageCost

	require.NoError(t, l.ApplyIssue(inv, d(4), testNow))

	assert.True(t, inv.AverageCost.Equal(cost))
}

func TestApplyReceipt_CantidadInvalida(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 0, 0)

	assert.ErrorIs(t, l.ApplyReceipt(inv, d(0), d(1), testNow), domain.ErrInvalidInput)
	assert.ErrorIs(t, l.ApplyReceipt(inv, d(1), d(-1), testNow), domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_LimiteExacto(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 8, 0)

	require.NoError(t, l.Reserve(inv, d(8), testNow))

	assert.True(t, inv.AvailableStock.IsZero())
	assert.True(t, inv.ReservedStock.Equal(d(8)))
	assertBalanced(t, inv)
}

func TestReserve_UnoMasDelDisponibleFalla(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 8, 0)
	before := *inv

	err := l.Reserve(inv, d(9), testNow)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, *inv)
}

func TestReserveUnreserve_RoundTrip(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 10, 0)
	require.NoError(t, l.Reserve(inv, d(2), testNow))
	available, reserved := inv.AvailableStock, inv.ReservedStock

	require.NoError(t, l.Reserve(inv, d(5), testNow))
	released, err := l.Unreserve(inv, d(5), testNow)
	require.NoError(t, err)

	assert.True(t, released.Equal(d(5)))
	assert.True(t, inv.AvailableStock.Equal(available))
	assert.True(t, inv.ReservedStock.Equal(reserved))
	assertBalanced(t, inv)
}

func TestUnreserve_LiberarDeMasRecortaAmbosLados(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 10, 0)
	require.NoError(t, l.Reserve(inv, d(3), testNow))

	released, err := l.Unreserve(inv, d(7), testNow)

	require.NoError(t, err)
	assert.True(t, released.Equal(d(3)), "solo se libera lo reservado")
	assert.True(t, inv.ReservedStock.IsZero())
	assert.True(t, inv.AvailableStock.Equal(d(10)), "no se crea stock de la nada")
	assertBalanced(t, inv)
}

func TestReserve_NoAfectaStockFisicoNiEstado(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 4, 2)

	require.NoError(t, l.Reserve(inv, d(4), testNow))

	assert.True(t, inv.CurrentStock.Equal(d(4)))
	assert.False(t, inv.IsOutOfStock)
	assert.False(t, inv.IsLowStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conteo físico, ubicación y umbrales
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustByStocktaking_SoloCambiaStockFisico(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 10, 0)
	require.NoError(t, l.Reserve(inv, d(4), testNow))

	require.NoError(t, l.AdjustByStocktaking(inv, d(3), testNow))

	assert.True(t, inv.CurrentStock.Equal(d(3)))
	assert.True(t, inv.AvailableStock.Equal(d(6)), "el reparto queda para la reconciliación")
	assert.True(t, inv.ReservedStock.Equal(d(4)))
	require.NotNil(t, inv.LastStocktakingDate)

	l.Reconcile(inv, testNow)

	assert.True(t, inv.ReservedStock.Equal(d(3)))
	assert.True(t, inv.AvailableStock.IsZero())
	assertBalanced(t, inv)
}

func TestApplyIssue_TrasConteoNoDejaFisicoNegativo(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 20, 0)
	require.NoError(t, l.AdjustByStocktaking(inv, d(5), testNow))
	before := *inv

	err := l.ApplyIssue(inv, d(15), testNow)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(d(5)), "el tope es el stock físico")
	assert.Equal(t, before, *inv)

	require.NoError(t, l.ApplyIssue(inv, d(5), testNow))
	assert.True(t, inv.CurrentStock.IsZero())
	assert.False(t, inv.TotalStockValue.IsNegative())
	assert.True(t, inv.IsOutOfStock)
}

func TestReserve_TrasConteoNoSuperaFisicoLibre(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 10, 0)
	require.NoError(t, l.Reserve(inv, d(4), testNow))
	require.NoError(t, l.AdjustByStocktaking(inv, d(6), testNow))

	assert.ErrorIs(t, l.Reserve(inv, d(3), testNow), domain.ErrInsufficientStock)
	require.NoError(t, l.Reserve(inv, d(2), testNow))
	assert.True(t, inv.ReservedStock.Equal(inv.CurrentStock))
}

func TestAdjustByStocktaking_NegativoInvalido(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 1, 0)

	assert.ErrorIs(t, l.AdjustByStocktaking(inv, d(-1), testNow), domain.ErrInvalidInput)
}

func TestMoveLocation_SinEfectoEnCantidades(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 6, 0)
	count := inv.MovementCount

	require.NoError(t, l.MoveLocation(inv, "A-01-03", "Pasillo A", testNow))

	assert.Equal(t, "A-01-03", inv.LocationCode)
	assert.Equal(t, "Pasillo A", inv.LocationDescription)
	assert.True(t, inv.CurrentStock.Equal(d(6)))
	assert.Equal(t, count, inv.MovementCount)
}

func TestSetThresholds_Reclasifica(t *testing.T) {
	l := newLedger()
	inv := stockedInventory(t, l, 6, 0)
	require.Equal(t, entity.StockStatusNormal, inv.StockStatus)

	require.NoError(t, l.SetThresholds(inv, entity.Thresholds{MaxStock: d(5), ReorderPoint: d(1)}, testNow))
	assert.Equal(t, entity.StockStatusOverStock, inv.StockStatus)
	assert.True(t, inv.IsOverStock)

	assert.ErrorIs(t, l.SetThresholds(inv, entity.Thresholds{MinStock: d(10), MaxStock: d(5)}, testNow), domain.ErrInvalidInput)
}
