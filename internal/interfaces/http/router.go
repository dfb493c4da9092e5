package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC   *usecase.WarehouseUseCase
	ProductUC     *usecase.ProductUseCase
	Ledger        *inventory.LedgerUseCase
	Movements     *inventory.MovementUseCase
	Reservations  *inventory.ReservationUseCase
	Queries       *inventory.StockQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Reports       *inventory.ReportUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; los permisos van por ruta.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	read := RequireRole(RoleAdmin, RoleSupervisor, RoleBodeguero, RoleConsulta)
	operate := RequireRole(RoleAdmin, RoleSupervisor, RoleBodeguero)
	supervise := RequireRole(RoleAdmin, RoleSupervisor)
	admin := RequireRole(RoleAdmin)

	// Catálogo
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Get("/", read, warehouseHandler.List)
	warehouses.Get("/:id", read, warehouseHandler.GetByID)
	warehouses.Put("/:id", admin, warehouseHandler.Update)

	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products")
	products.Post("/", admin, productHandler.Create)
	products.Get("/", read, productHandler.List)
	products.Get("/:id", read, productHandler.GetByID)
	products.Put("/:id", admin, productHandler.Update)

	inv := api.Group("/inventory")

	// Movimientos: antes de /inventory/:id para que "movements" no se tome como ID.
	movementHandler := NewMovementHandler(deps.Movements)
	movements := inv.Group("/movements")
	movements.Post("/", operate, movementHandler.Create)
	movements.Get("/", read, movementHandler.List)
	movements.Get("/inconsistent", supervise, movementHandler.Inconsistent)
	movements.Get("/:id", read, movementHandler.GetByID)
	movements.Put("/:id", operate, movementHandler.Update)
	movements.Post("/:id/submit", operate, movementHandler.Submit)
	movements.Post("/:id/cancel", operate, movementHandler.Cancel)
	movements.Post("/:id/approve", supervise, movementHandler.Approve)
	movements.Post("/:id/reject", supervise, movementHandler.Reject)
	movements.Post("/:id/process", supervise, movementHandler.Process)

	// Ledger
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Queries)
	inv.Post("/", admin, inventoryHandler.Create)
	inv.Post("/resolve", operate, inventoryHandler.Resolve)
	inv.Get("/", read, inventoryHandler.List)
	inv.Get("/:id", read, inventoryHandler.GetByID)
	inv.Post("/:id/receipt", admin, inventoryHandler.Receipt)
	inv.Post("/:id/issue", admin, inventoryHandler.Issue)
	inv.Post("/:id/reserve", operate, inventoryHandler.Reserve)
	inv.Post("/:id/unreserve", operate, inventoryHandler.Unreserve)
	inv.Post("/:id/stocktaking", operate, inventoryHandler.Stocktaking)
	inv.Post("/:id/reconcile", supervise, inventoryHandler.Reconcile)
	inv.Put("/:id/location", operate, inventoryHandler.MoveLocation)
	inv.Put("/:id/thresholds", supervise, inventoryHandler.UpdateThresholds)
	inv.Put("/:id/tracking", supervise, inventoryHandler.UpdateTracking)
	inv.Delete("/:id", admin, inventoryHandler.Deactivate)

	// Reservas por producto/bodega
	reservationHandler := NewReservationHandler(deps.Reservations)
	reservations := api.Group("/reservations")
	reservations.Post("/", operate, reservationHandler.Reserve)
	reservations.Post("/release", operate, reservationHandler.Release)

	// Consultas y reportes
	stockHandler := NewStockHandler(deps.Queries, deps.Replenishment, deps.Reports)
	stock := api.Group("/stock", read)
	stock.Get("/low", stockHandler.LowStock)
	stock.Get("/out-of-stock", stockHandler.OutOfStock)
	stock.Get("/over-stock", stockHandler.OverStock)
	stock.Get("/reorder", stockHandler.ReorderNeeded)
	stock.Get("/value", stockHandler.TotalValue)
	stock.Get("/turnover", stockHandler.Turnover)
	stock.Get("/products/:id", stockHandler.ProductSummary)
	stock.Get("/warehouses", stockHandler.WarehouseUtilization)
	stock.Get("/dashboard", stockHandler.Dashboard)
	stock.Get("/replenishment-list", stockHandler.ReplenishmentList)
	stock.Get("/reports/valuation.pdf", stockHandler.ValuationPDF)
}
