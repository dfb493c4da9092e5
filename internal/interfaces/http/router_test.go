package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

const otherCompanyID = "00000000-0000-0000-0000-000000000099"

type apiFixture struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	ledger := domaininv.NewLedger(domaininv.DefaultGradePolicy())

	queries := inventory.NewStockQueryUseCase(repos)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:   usecase.NewWarehouseUseCase(repos.Warehouses),
		ProductUC:     usecase.NewProductUseCase(repos.Products),
		Ledger:        inventory.NewLedgerUseCase(store, repos, ledger, nil),
		Movements:     inventory.NewMovementUseCase(store, repos, ledger, nil),
		Reservations:  inventory.NewReservationUseCase(store, ledger, nil),
		Queries:       queries,
		Replenishment: inventory.NewReplenishmentUseCase(repos.Inventory, repos.Products),
		Reports:       inventory.NewReportUseCase(repos, pdf.NewMarotoPDFGenerator()),
		JWTSecret:     testJWTSecret,
	})
	return &apiFixture{t: t, app: app}
}

func (f *apiFixture) token(companyID, role string) string {
	f.t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, CompanyID: companyID, Role: role}, testIssuer, testTTL)
	require.NoError(f.t, err)
	return "Bearer " + tok
}

// do ejecuta la petición; out puede ser nil.
func (f *apiFixture) do(method, path, auth string, body any, out any) int {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", auth)
	resp, err := f.app.Test(req, -1)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// seedCatalog crea una bodega y un producto con el rol admin.
func (f *apiFixture) seedCatalog() (warehouseID, productID string) {
	f.t.Helper()
	admin := f.token(testCompanyID, apphttp.RoleAdmin)

	var wh dto.WarehouseResponse
	status := f.do(http.MethodPost, "/api/warehouses", admin,
		dto.CreateWarehouseRequest{Code: "BOD-01", Name: "Bodega principal"}, &wh)
	require.Equal(f.t, http.StatusCreated, status)

	var p dto.ProductResponse
	status = f.do(http.MethodPost, "/api/products", admin,
		dto.CreateProductRequest{SKU: "SKU-001", Name: "Tornillo", MinStock: decimal.NewFromInt(5)}, &p)
	require.Equal(f.t, http.StatusCreated, status)
	return wh.ID, p.ID
}

func movementBody(productID, warehouseID, movementType string, qty, price int64) dto.CreateMovementRequest {
	return dto.CreateMovementRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		MovementType: movementType,
		Quantity:     decimal.NewFromInt(qty),
		UnitPrice:    decimal.NewFromInt(price),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimientos_FlujoCompleto_ProcesaYActualizaLedger(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()
	bodeguero := f.token(testCompanyID, apphttp.RoleBodeguero)
	supervisor := f.token(testCompanyID, apphttp.RoleSupervisor)

	var m dto.MovementResponse
	status := f.do(http.MethodPost, "/api/inventory/movements?submit=true", bodeguero,
		movementBody(productID, whID, "PURCHASE_RECEIPT", 10, 100), &m)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PENDING", m.MovementStatus)

	// bodeguero no procesa
	status = f.do(http.MethodPost, "/api/inventory/movements/"+m.ID+"/process", bodeguero, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var processed dto.MovementResponse
	status = f.do(http.MethodPost, "/api/inventory/movements/"+m.ID+"/process", supervisor, nil, &processed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PROCESSED", processed.MovementStatus)
	assert.True(t, processed.BeforeStock.IsZero())
	assert.True(t, processed.AfterStock.Equal(decimal.NewFromInt(10)))
	assert.NotEmpty(t, processed.InventoryID)

	var inv dto.InventoryResponse
	status = f.do(http.MethodGet, "/api/inventory/"+processed.InventoryID, bodeguero, nil, &inv)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, inv.CurrentStock.Equal(decimal.NewFromInt(10)))
	assert.True(t, inv.AverageCost.Equal(decimal.NewFromInt(100)))

	// segundo proceso del mismo movimiento
	var errResp dto.ErrorResponse
	status = f.do(http.MethodPost, "/api/inventory/movements/"+m.ID+"/process", supervisor, nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errResp.Code)
}

func TestMovimientos_SalidaSinStock_Retorna422YQuedaPendiente(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()
	bodeguero := f.token(testCompanyID, apphttp.RoleBodeguero)
	supervisor := f.token(testCompanyID, apphttp.RoleSupervisor)

	var in dto.MovementResponse
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/inventory/movements?submit=true", bodeguero,
		movementBody(productID, whID, "PURCHASE_RECEIPT", 10, 100), &in))
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/inventory/movements/"+in.ID+"/process", supervisor, nil, nil))

	var out dto.MovementResponse
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/inventory/movements?submit=true", bodeguero,
		movementBody(productID, whID, "SALES_ISSUE", 50, 0), &out))

	var errResp dto.ErrorResponse
	status := f.do(http.MethodPost, "/api/inventory/movements/"+out.ID+"/process", supervisor, nil, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)

	var after dto.MovementResponse
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/inventory/movements/"+out.ID, bodeguero, nil, &after))
	assert.Equal(t, "PENDING", after.MovementStatus, "el movimiento rechazado por stock no cambia de estado")
}

func TestMovimientos_CancelarDraftYEditarCancelado(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()
	bodeguero := f.token(testCompanyID, apphttp.RoleBodeguero)

	var m dto.MovementResponse
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/inventory/movements", bodeguero,
		movementBody(productID, whID, "RECEIPT", 3, 10), &m))
	assert.Equal(t, "DRAFT", m.MovementStatus)

	var cancelled dto.MovementResponse
	status := f.do(http.MethodPost, "/api/inventory/movements/"+m.ID+"/cancel", bodeguero,
		dto.ReasonRequest{Reason: "duplicado"}, &cancelled)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CANCELLED", cancelled.MovementStatus)
	assert.Equal(t, "duplicado", cancelled.CancelReason)

	qty := decimal.NewFromInt(4)
	status = f.do(http.MethodPut, "/api/inventory/movements/"+m.ID, bodeguero,
		dto.UpdateMovementRequest{Quantity: &qty}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación, permisos y aislamiento por empresa
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimientos_CantidadCero_Retorna400(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()

	var errResp dto.ErrorResponse
	status := f.do(http.MethodPost, "/api/inventory/movements", f.token(testCompanyID, apphttp.RoleBodeguero),
		movementBody(productID, whID, "RECEIPT", 0, 10), &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errResp.Code)
}

func TestMovimientos_TipoDesconocido_Retorna400(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()

	status := f.do(http.MethodPost, "/api/inventory/movements", f.token(testCompanyID, apphttp.RoleBodeguero),
		movementBody(productID, whID, "REGALO", 1, 0), nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMovimientos_OtraEmpresa_Retorna404(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()

	var m dto.MovementResponse
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/inventory/movements",
		f.token(testCompanyID, apphttp.RoleBodeguero), movementBody(productID, whID, "RECEIPT", 1, 1), &m))

	status := f.do(http.MethodGet, "/api/inventory/movements/"+m.ID, f.token(otherCompanyID, apphttp.RoleAdmin), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCatalogo_ConsultaNoCreaProductos(t *testing.T) {
	f := newAPI(t)
	status := f.do(http.MethodPost, "/api/products", f.token(testCompanyID, apphttp.RoleConsulta),
		dto.CreateProductRequest{SKU: "X", Name: "X"}, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCatalogo_ProductoOtraEmpresa_Retorna404(t *testing.T) {
	f := newAPI(t)
	_, productID := f.seedCatalog()
	status := f.do(http.MethodGet, "/api/products/"+productID, f.token(otherCompanyID, apphttp.RoleConsulta), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas y consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestReservas_ReservarYLiberarConTope(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()
	bodeguero := f.token(testCompanyID, apphttp.RoleBodeguero)
	supervisor := f.token(testCompanyID, apphttp.RoleSupervisor)

	var m dto.MovementResponse
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/inventory/movements?submit=true", bodeguero,
		movementBody(productID, whID, "PURCHASE_RECEIPT", 10, 100), &m))
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/inventory/movements/"+m.ID+"/process", supervisor, nil, nil))

	req := dto.ReservationRequest{ProductID: productID, WarehouseID: whID, Quantity: decimal.NewFromInt(4)}
	var inv dto.InventoryResponse
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/reservations", bodeguero, req, &inv))
	assert.True(t, inv.ReservedStock.Equal(decimal.NewFromInt(4)))
	assert.True(t, inv.AvailableStock.Equal(decimal.NewFromInt(6)))

	req.Quantity = decimal.NewFromInt(7)
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(http.MethodPost, "/api/reservations", bodeguero, req, nil))

	var released dto.UnreserveResponse
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/reservations/release", bodeguero, req, &released))
	assert.True(t, released.Released.Equal(decimal.NewFromInt(4)), "solo se libera lo reservado")
	assert.True(t, released.Inventory.AvailableStock.Equal(decimal.NewFromInt(10)))
}

func TestStock_ValorTotalYReportePDF(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()
	bodeguero := f.token(testCompanyID, apphttp.RoleBodeguero)
	supervisor := f.token(testCompanyID, apphttp.RoleSupervisor)

	var m dto.MovementResponse
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/inventory/movements?submit=true", bodeguero,
		movementBody(productID, whID, "PURCHASE_RECEIPT", 3, 250), &m))
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/inventory/movements/"+m.ID+"/process", supervisor, nil, nil))

	consulta := f.token(testCompanyID, apphttp.RoleConsulta)
	var value dto.StockValueDTO
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/stock/value", consulta, nil, &value))
	assert.True(t, value.TotalValue.Equal(decimal.NewFromInt(750)))

	req := httptest.NewRequest(http.MethodGet, "/api/stock/reports/valuation.pdf", nil)
	req.Header.Set("Authorization", consulta)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}
