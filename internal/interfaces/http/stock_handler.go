package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockHandler consultas, reposición y reportes del inventario (protegido, solo lectura).
type StockHandler struct {
	queries       *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	reports       *inventory.ReportUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *inventory.StockQueryUseCase, replenishment *inventory.ReplenishmentUseCase, reports *inventory.ReportUseCase) *StockHandler {
	return &StockHandler{queries: queries, replenishment: replenishment, reports: reports}
}

// LowStock godoc
// @Summary      Registros bajo el mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	return h.projection(c, h.queries.LowStock)
}

// OutOfStock godoc
// @Summary      Registros agotados
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/stock/out-of-stock [get]
func (h *StockHandler) OutOfStock(c *fiber.Ctx) error {
	return h.projection(c, h.queries.OutOfStock)
}

// OverStock godoc
// @Summary      Registros sobre el máximo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/stock/over-stock [get]
func (h *StockHandler) OverStock(c *fiber.Ctx) error {
	return h.projection(c, h.queries.OverStock)
}

// ReorderNeeded godoc
// @Summary      Registros en o bajo el punto de reorden
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/stock/reorder [get]
func (h *StockHandler) ReorderNeeded(c *fiber.Ctx) error {
	return h.projection(c, h.queries.ReorderNeeded)
}

func (h *StockHandler) projection(c *fiber.Ctx, fn func(ctx context.Context, companyID, warehouseID string) ([]*entity.Inventory, error)) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	list, err := fn(c.Context(), companyID, c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryList(list, 0, 0))
}

// TotalValue godoc
// @Summary      Valor total del inventario (costo promedio ponderado)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega. Vacío = toda la empresa."
// @Success      200  {object}  dto.StockValueDTO
// @Router       /api/stock/value [get]
func (h *StockHandler) TotalValue(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	out, err := h.queries.TotalStockValue(c.Context(), companyID, c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Turnover godoc
// @Summary      Rotación por producto
// @Description  Salidas procesadas del período / stock actual. Los traslados internos no cuentan.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        from          query  string  false  "Inicio (YYYY-MM-DD). Default: hace 30 días."
// @Param        to            query  string  false  "Fin (YYYY-MM-DD). Default: hoy."
// @Success      200  {object}  dto.TurnoverReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/turnover [get]
func (h *StockHandler) Turnover(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	fromPtr, toPtr, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "rango de fechas inválido (YYYY-MM-DD)"})
	}
	to := time.Now()
	if toPtr != nil {
		to = *toPtr
	}
	from := to.AddDate(0, 0, -30)
	if fromPtr != nil {
		from = *fromPtr
	}
	out, err := h.queries.TurnoverAnalysis(c.Context(), companyID, c.Query("warehouse_id"), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ProductSummary godoc
// @Summary      Stock agregado de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockSummaryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id} [get]
func (h *StockHandler) ProductSummary(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	out, err := h.queries.ProductStockSummary(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// WarehouseUtilization godoc
// @Summary      Ocupación de bodegas
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.WarehouseUtilizationDTO
// @Router       /api/stock/warehouses [get]
func (h *StockHandler) WarehouseUtilization(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	out, err := h.queries.WarehouseUtilization(c.Context(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Resumen del inventario
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockDashboardDTO
// @Router       /api/stock/dashboard [get]
func (h *StockHandler) Dashboard(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	out, err := h.queries.Dashboard(c.Context(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Registros en o bajo el punto de reorden con la cantidad sugerida de pedido.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega. Vacío = todas."
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/stock/replenishment-list [get]
func (h *StockHandler) ReplenishmentList(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), companyID, c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// ValuationPDF godoc
// @Summary      Reporte PDF de valorización
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Param        warehouse_id  query  string  false  "Bodega. Vacío = todas."
// @Success      200  {file}  binary
// @Router       /api/stock/reports/valuation.pdf [get]
func (h *StockHandler) ValuationPDF(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	pdf, err := h.reports.StockValuationPDF(c.Context(), companyID, c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="valorizacion-inventario.pdf"`)
	return c.Send(pdf)
}
