package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// ReservationHandler reservas por clave (producto, bodega, ubicación) (protegido).
type ReservationHandler struct {
	uc *inventory.ReservationUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *inventory.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar stock disponible
// @Description  Falla con 422 INSUFFICIENT_STOCK si el disponible no alcanza; no reserva parcial.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "product_id, warehouse_id, location_code, quantity"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	var in dto.ReservationRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	inv, err := h.uc.Reserve(c.Context(), companyID, in.ProductID, in.WarehouseID, in.LocationCode, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryResponse(inv))
}

// Release godoc
// @Summary      Liberar reserva
// @Description  Libera hasta lo reservado; released indica lo efectivamente liberado.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "product_id, warehouse_id, location_code, quantity"
// @Success      200   {object}  dto.UnreserveResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reservations/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	var in dto.ReservationRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	inv, released, err := h.uc.Unreserve(c.Context(), companyID, in.ProductID, in.WarehouseID, in.LocationCode, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UnreserveResponse{Inventory: *dto.NewInventoryResponse(inv), Released: released})
}
