package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "stock-ledger-test"
	testTTL       = time.Hour
)

// buildTestApp app mínima: AuthMiddleware + RequireRole + handler que responde 200.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func tokenFor(t *testing.T, companyID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, CompanyID: companyID, Role: role}, testIssuer, testTTL)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// rawToken firma claims arbitrarios, sin las validaciones de Generate.
func rawToken(t *testing.T, claims pkgjwt.Claims) string {
	t.Helper()
	claims.ExpiresAt = jwtlib.NewNumericDate(time.Now().Add(testTTL))
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware y RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_RolPermitidoPasa(t *testing.T) {
	app := buildTestApp(apphttp.RoleAdmin, apphttp.RoleBodeguero)
	status, body := doRequest(t, app, tokenFor(t, testCompanyID, apphttp.RoleBodeguero))

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"role":"bodeguero"`)
}

func TestRequireRole_RolNoPermitido_Retorna403(t *testing.T) {
	app := buildTestApp(apphttp.RoleAdmin, apphttp.RoleSupervisor)
	status, body := doRequest(t, app, tokenFor(t, testCompanyID, apphttp.RoleBodeguero))

	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "FORBIDDEN")
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(apphttp.RoleAdmin)
	status, body := doRequest(t, app, tokenFor(t, testCompanyID, ""))

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_ROLE")
}

func TestAuthMiddleware_RechazaCabecera(t *testing.T) {
	app := buildTestApp(apphttp.RoleAdmin)
	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"sin esquema Bearer", "Token abc", "INVALID_TOKEN"},
		{"bearer vacío", "Bearer   ", "MISSING_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, tt.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tt.code)
		})
	}
}

func TestAuthMiddleware_TokenSinEmpresa_Retorna401(t *testing.T) {
	app := buildTestApp(apphttp.RoleAdmin)
	status, body := doRequest(t, app, tokenFor(t, "", apphttp.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "empresa")
}

// Un rol que el ledger no conoce (p. ej. de otro módulo del ERP) no entra ni a rutas de lectura.
func TestAuthMiddleware_RolDesconocido_Retorna403(t *testing.T) {
	f := newAPI(t)
	auth := rawToken(t, pkgjwt.Claims{UserID: testUserID, CompanyID: testCompanyID, Role: "vendedor"})

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/stock/value", auth, nil, nil))
}

func TestAuthMiddleware_ExtraeIdentidad(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenFor(t, testCompanyID, apphttp.RoleSupervisor))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, apphttp.RoleSupervisor, body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tabla de permisos del router
// ──────────────────────────────────────────────────────────────────────────────

// Cada ruta con el rol mínimo que la admite. Los roles por debajo reciben 403;
// los demás pasan la autorización (el handler puede responder 400/404 por el cuerpo vacío).
func TestRouter_TablaDePermisos(t *testing.T) {
	const anyID = "00000000-0000-0000-0000-0000000000aa"
	rank := map[string]int{
		apphttp.RoleConsulta:   0,
		apphttp.RoleBodeguero:  1,
		apphttp.RoleSupervisor: 2,
		apphttp.RoleAdmin:      3,
	}
	routes := []struct {
		method  string
		path    string
		minimum string
	}{
		{http.MethodGet, "/api/stock/value", apphttp.RoleConsulta},
		{http.MethodGet, "/api/inventory", apphttp.RoleConsulta},
		{http.MethodGet, "/api/inventory/movements", apphttp.RoleConsulta},
		{http.MethodGet, "/api/products", apphttp.RoleConsulta},
		{http.MethodPost, "/api/inventory/movements", apphttp.RoleBodeguero},
		{http.MethodPost, "/api/inventory/movements/" + anyID + "/cancel", apphttp.RoleBodeguero},
		{http.MethodPost, "/api/reservations", apphttp.RoleBodeguero},
		{http.MethodPost, "/api/inventory/" + anyID + "/stocktaking", apphttp.RoleBodeguero},
		{http.MethodPost, "/api/inventory/movements/" + anyID + "/approve", apphttp.RoleSupervisor},
		{http.MethodPost, "/api/inventory/movements/" + anyID + "/reject", apphttp.RoleSupervisor},
		{http.MethodPost, "/api/inventory/movements/" + anyID + "/process", apphttp.RoleSupervisor},
		{http.MethodGet, "/api/inventory/movements/inconsistent", apphttp.RoleSupervisor},
		{http.MethodPost, "/api/inventory/" + anyID + "/reconcile", apphttp.RoleSupervisor},
		{http.MethodPost, "/api/products", apphttp.RoleAdmin},
		{http.MethodPost, "/api/warehouses", apphttp.RoleAdmin},
		{http.MethodPost, "/api/inventory/" + anyID + "/issue", apphttp.RoleAdmin},
		{http.MethodDelete, "/api/inventory/" + anyID, apphttp.RoleAdmin},
	}

	f := newAPI(t)
	for _, rt := range routes {
		for role, level := range rank {
			t.Run(rt.method+" "+rt.path+" "+role, func(t *testing.T) {
				status := f.do(rt.method, rt.path, f.token(testCompanyID, role), nil, nil)
				if level < rank[rt.minimum] {
					assert.Equal(t, http.StatusForbidden, status)
					return
				}
				assert.NotEqual(t, http.StatusForbidden, status)
				assert.NotEqual(t, http.StatusUnauthorized, status)
			})
		}
	}
}

// Un supervisor de otra empresa no ve ni transiciona movimientos ajenos; el movimiento sigue PENDING.
func TestRouter_AislamientoPorEmpresa(t *testing.T) {
	f := newAPI(t)
	whID, productID := f.seedCatalog()
	bodeguero := f.token(testCompanyID, apphttp.RoleBodeguero)
	foreign := f.token(otherCompanyID, apphttp.RoleSupervisor)

	var m dto.MovementResponse
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/inventory/movements?submit=true", bodeguero,
		movementBody(productID, whID, "PURCHASE_RECEIPT", 5, 10), &m))

	for _, action := range []string{"approve", "reject", "process", "cancel"} {
		status := f.do(http.MethodPost, "/api/inventory/movements/"+m.ID+"/"+action, foreign, nil, nil)
		assert.Equal(t, http.StatusNotFound, status, action)
	}

	var list dto.MovementListResponse
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/inventory/movements", foreign, nil, &list))
	assert.Empty(t, list.Items)

	var stock dto.InventoryListResponse
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/inventory", foreign, nil, &stock))
	assert.Empty(t, stock.Items)

	var same dto.MovementResponse
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/inventory/movements/"+m.ID, bodeguero, nil, &same))
	assert.Equal(t, "PENDING", same.MovementStatus)
}
