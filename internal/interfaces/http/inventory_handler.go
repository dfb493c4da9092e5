package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler expone el ledger de stock (protegido).
type InventoryHandler struct {
	ledger  *inventory.LedgerUseCase
	queries *inventory.StockQueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, queries *inventory.StockQueryUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, queries: queries}
}

// Create godoc
// @Summary      Crear registro de inventario
// @Description  Un registro por (producto, bodega, ubicación). Clave existente -> 409 DUPLICATE_LEDGER_ENTRY.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInventoryRequest  true  "product_id, warehouse_id, location_code"
// @Success      201   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	var in dto.CreateInventoryRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	inv, err := h.ledger.Create(c.Context(), companyID, GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewInventoryResponse(inv))
}

// Resolve godoc
// @Summary      Obtener o crear el registro de una clave
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInventoryRequest  true  "product_id, warehouse_id, location_code"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/resolve [post]
func (h *InventoryHandler) Resolve(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	var in dto.CreateInventoryRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	inv, err := h.ledger.GetOrCreate(c.Context(), companyID, in.ProductID, in.WarehouseID, in.LocationCode)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(inv))
}

// List godoc
// @Summary      Listar registros de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id   query  string  false  "Bodega"
// @Param        product_id     query  string  false  "Producto"
// @Param        status         query  string  false  "LOW_STOCK | OUT_OF_STOCK | OVER_STOCK | REORDER"
// @Param        limit          query  int     false  "Límite"  default(20)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.InventoryListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	limit, offset := pageParams(c)
	filter := repository.InventoryFilter{
		CompanyID:   companyID,
		WarehouseID: c.Query("warehouse_id"),
		ProductID:   c.Query("product_id"),
		Limit:       limit,
		Offset:      offset,
	}
	switch c.Query("status") {
	case "":
	case string(entity.StockStatusLowStock):
		filter.LowStock = true
	case string(entity.StockStatusOutOfStock):
		filter.OutOfStock = true
	case string(entity.StockStatusOverStock):
		filter.OverStock = true
	case "REORDER":
		filter.NeedsReorder = true
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "status inválido"})
	}
	list, err := h.queries.StockLevels(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryList(list, limit, offset))
}

// GetByID godoc
// @Summary      Obtener registro de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	return c.JSON(dto.NewInventoryResponse(inv))
}

// Receipt godoc
// @Summary      Entrada directa al ledger
// @Description  Suma stock y recalcula el costo promedio ponderado. Sin movimiento asociado (solo admin).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del registro"
// @Param        body  body  dto.ReceiptRequest  true  "quantity, unit_cost"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/receipt [post]
func (h *InventoryHandler) Receipt(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.ReceiptRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.ApplyReceipt(c.Context(), inv.ID, in.Quantity, in.UnitCost, time.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(out))
}

// Issue godoc
// @Summary      Salida directa del ledger
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del registro"
// @Param        body  body  dto.QuantityRequest  true  "quantity"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/issue [post]
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.QuantityRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.ApplyIssue(c.Context(), inv.ID, in.Quantity, time.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(out))
}

// Reserve godoc
// @Summary      Reservar sobre un registro
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del registro"
// @Param        body  body  dto.QuantityRequest  true  "quantity"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/reserve [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.QuantityRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.Reserve(c.Context(), inv.ID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(out))
}

// Unreserve godoc
// @Summary      Liberar reserva de un registro
// @Description  Libera hasta lo reservado; la respuesta indica lo efectivamente liberado.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del registro"
// @Param        body  body  dto.QuantityRequest  true  "quantity"
// @Success      200   {object}  dto.UnreserveResponse
// @Router       /api/inventory/{id}/unreserve [post]
func (h *InventoryHandler) Unreserve(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.QuantityRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, released, err := h.ledger.Unreserve(c.Context(), inv.ID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UnreserveResponse{Inventory: *dto.NewInventoryResponse(out), Released: released})
}

// Stocktaking godoc
// @Summary      Ajuste por conteo físico
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del registro"
// @Param        body  body  dto.StocktakingRequest  true  "actual_quantity"
// @Success      200   {object}  dto.InventoryResponse
// @Router       /api/inventory/{id}/stocktaking [post]
func (h *InventoryHandler) Stocktaking(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.StocktakingRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.AdjustByStocktaking(c.Context(), inv.ID, in.ActualQuantity, time.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(out))
}

// Reconcile godoc
// @Summary      Reconciliar disponible y reservado con el stock físico
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.InventoryResponse
// @Router       /api/inventory/{id}/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	out, err := h.ledger.ReconcileAvailability(c.Context(), inv.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(out))
}

// MoveLocation godoc
// @Summary      Cambiar ubicación del registro
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del registro"
// @Param        body  body  dto.MoveLocationRequest  true  "location_code, location_description"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/location [put]
func (h *InventoryHandler) MoveLocation(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.MoveLocationRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.MoveLocation(c.Context(), inv.ID, in.LocationCode, in.LocationDescription)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(out))
}

// UpdateThresholds godoc
// @Summary      Actualizar umbrales del registro
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del registro"
// @Param        body  body  dto.ThresholdsRequest  true  "Umbrales"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/thresholds [put]
func (h *InventoryHandler) UpdateThresholds(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.ThresholdsRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.UpdateThresholds(c.Context(), inv.ID, in.ToEntity())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(out))
}

// UpdateTracking godoc
// @Summary      Actualizar lote, serie y fechas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del registro"
// @Param        body  body  dto.TrackingRequest  true  "Trazabilidad"
// @Success      200   {object}  dto.InventoryResponse
// @Router       /api/inventory/{id}/tracking [put]
func (h *InventoryHandler) UpdateTracking(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.TrackingRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.UpdateTracking(c.Context(), inv.ID, in.ToEntity())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(out))
}

// Deactivate godoc
// @Summary      Baja lógica del registro
// @Description  Solo si no queda stock físico ni reservado.
// @Tags         inventory
// @Security     Bearer
// @Param        id   path  string  true  "ID del registro"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) Deactivate(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if !ok {
		return err
	}
	if err := h.ledger.Deactivate(c.Context(), inv.ID, GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// owned carga el registro del path y verifica que pertenezca a la empresa del token.
// Registros de otra empresa responden 404.
func (h *InventoryHandler) owned(c *fiber.Ctx) (*entity.Inventory, bool, error) {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return nil, false, err
	}
	inv, err := h.ledger.Get(c.Context(), c.Params("id"))
	if err != nil {
		return nil, false, writeError(c, err)
	}
	if inv.CompanyID != companyID {
		return nil, false, writeError(c, domain.ErrNotFound)
	}
	return inv, true, nil
}
