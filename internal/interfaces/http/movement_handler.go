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

// MovementHandler maneja el log de movimientos y su flujo de aprobación (protegido).
type MovementHandler struct {
	uc *inventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar movimiento de inventario
// @Description  Crea el movimiento en DRAFT. Con submit=true queda directamente en PENDING.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        submit  query  bool                       false  "Enviar a aprobación al crear"
// @Param        body    body   dto.CreateMovementRequest  true   "product_id, warehouse_id (o from/to para traslados), movement_type, quantity, unit_price"
// @Success      201     {object}  dto.MovementResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	var in dto.CreateMovementRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	var m *entity.StockMovement
	if c.QueryBool("submit", false) {
		m, err = h.uc.SubmitMovement(c.Context(), companyID, GetUserID(c), in)
	} else {
		m, err = h.uc.Create(c.Context(), companyID, GetUserID(c), in)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(m))
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega (origen o destino)"
// @Param        status        query  string  false  "DRAFT | PENDING | APPROVED | PROCESSED | REJECTED | CANCELLED"
// @Param        type          query  string  false  "Tipo de movimiento"
// @Param        from          query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	limit, offset := pageParams(c)
	filter := repository.MovementFilter{
		CompanyID:   companyID,
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Status:      entity.MovementStatus(c.Query("status")),
		Type:        entity.MovementType(c.Query("type")),
		Limit:       limit,
		Offset:      offset,
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "type inválido"})
	}
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: err.Error()})
	}
	filter.From, filter.To = from, to
	list, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementList(list, limit, offset))
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	m, ok, err := h.owned(c)
	if !ok {
		return err
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// Update godoc
// @Summary      Editar movimiento en DRAFT
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	m, ok, err := h.owned(c)
	if !ok {
		return err
	}
	var in dto.UpdateMovementRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.Context(), m.ID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(out))
}

// Submit godoc
// @Summary      Enviar a aprobación (DRAFT -> PENDING)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/submit [post]
func (h *MovementHandler) Submit(c *fiber.Ctx) error {
	return h.transition(c, func(id string) (*entity.StockMovement, error) {
		return h.uc.Submit(c.Context(), id)
	})
}

// Approve godoc
// @Summary      Aprobar movimiento (PENDING -> APPROVED)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/approve [post]
func (h *MovementHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, func(id string) (*entity.StockMovement, error) {
		return h.uc.Approve(c.Context(), id, GetUserID(c))
	})
}

// Reject godoc
// @Summary      Rechazar movimiento (PENDING -> REJECTED)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID del movimiento"
// @Param        body  body  dto.ReasonRequest  false  "Motivo"
// @Success      200   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/reject [post]
func (h *MovementHandler) Reject(c *fiber.Ctx) error {
	in, ok, err := optionalReason(c)
	if !ok {
		return err
	}
	return h.transition(c, func(id string) (*entity.StockMovement, error) {
		return h.uc.Reject(c.Context(), id, GetUserID(c), in.Reason)
	})
}

// Cancel godoc
// @Summary      Cancelar movimiento (DRAFT | PENDING -> CANCELLED)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID del movimiento"
// @Param        body  body  dto.ReasonRequest  false  "Motivo"
// @Success      200   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/cancel [post]
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	in, ok, err := optionalReason(c)
	if !ok {
		return err
	}
	return h.transition(c, func(id string) (*entity.StockMovement, error) {
		return h.uc.Cancel(c.Context(), id, in.Reason)
	})
}

// Process godoc
// @Summary      Procesar movimiento (aplica el delta al ledger)
// @Description  PENDING o APPROVED -> PROCESSED en una sola transacción. Dos procesos concurrentes: uno gana, el otro recibe 409.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/process [post]
func (h *MovementHandler) Process(c *fiber.Ctx) error {
	return h.transition(c, func(id string) (*entity.StockMovement, error) {
		return h.uc.Process(c.Context(), id, GetUserID(c))
	})
}

// Inconsistent godoc
// @Summary      Movimientos procesados con before/after inconsistente
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InconsistentMovementDTO
// @Router       /api/inventory/movements/inconsistent [get]
func (h *MovementHandler) Inconsistent(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	list, err := h.uc.FindInconsistent(c.Context(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

func (h *MovementHandler) transition(c *fiber.Ctx, fn func(id string) (*entity.StockMovement, error)) error {
	m, ok, err := h.owned(c)
	if !ok {
		return err
	}
	out, err := fn(m.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(out))
}

// owned carga el movimiento del path y verifica la empresa del token (otra empresa -> 404).
func (h *MovementHandler) owned(c *fiber.Ctx) (*entity.StockMovement, bool, error) {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return nil, false, err
	}
	m, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return nil, false, writeError(c, err)
	}
	if m.CompanyID != companyID {
		return nil, false, writeError(c, domain.ErrNotFound)
	}
	return m, true, nil
}

// optionalReason el cuerpo con motivo es opcional en rechazo y cancelación.
func optionalReason(c *fiber.Ctx) (dto.ReasonRequest, bool, error) {
	var in dto.ReasonRequest
	if len(c.Body()) == 0 {
		return in, true, nil
	}
	ok, err := bindJSON(c, &in)
	return in, ok, err
}

const dateLayout = "2006-01-02"

// parseDateRange fechas YYYY-MM-DD; "to" es inclusivo (fin del día).
func parseDateRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, nil, domain.ErrInvalidInput
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, nil, domain.ErrInvalidInput
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.ErrInvalidInput
	}
	return from, to, nil
}
