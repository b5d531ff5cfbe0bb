package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/reports"
	"github.com/jhoicas/materiales-api/internal/application/requests"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// RequestHandler flujo de solicitudes de material.
type RequestHandler struct {
	svc     *requests.Service
	reports *reports.Service
}

// NewRequestHandler construye el handler.
func NewRequestHandler(svc *requests.Service, reportSvc *reports.Service) *RequestHandler {
	return &RequestHandler{svc: svc, reports: reportSvc}
}

// visible falla si la solicitud no existe o está fuera del alcance del usuario.
func (h *RequestHandler) visible(c *fiber.Ctx) error {
	_, err := h.svc.Get(c.Context(), c.Params("id"), GetScope(c))
	return err
}

// Create godoc
// @Summary      Crear solicitud de material
// @Description  Sin office_id se usa la oficina del usuario. No descuenta stock.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestRequest  true  "Solicitud"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.OfficeID == "" {
		in.OfficeID = GetOfficeID(c)
	}
	out, err := h.svc.Create(c.Context(), requests.CreateInput{
		OfficeID:      in.OfficeID,
		MaterialID:    in.MaterialID,
		Quantity:      in.Quantity,
		OfficePercent: in.OfficePercent,
		Requester:     GetUsername(c),
		Observation:   in.Observation,
		Scope:         GetScope(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/requests?status=&material_id=&office_id=&limit=&offset=
func (h *RequestHandler) List(c *fiber.Ctx) error {
	filter := repository.RequestFilter{
		OfficeID:   c.Query("office_id"),
		MaterialID: c.Query("material_id"),
		Limit:      c.QueryInt("limit", 20),
		Offset:     c.QueryInt("offset", 0),
	}
	if raw := c.QueryInt("status", 0); raw != 0 {
		st := entity.RequestStatus(raw)
		if !st.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: fmt.Sprintf("estado desconocido: %d", raw)})
		}
		filter.Status = &st
	}
	out, err := h.svc.List(c.Context(), filter, GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Pending GET /api/requests/pending
func (h *RequestHandler) Pending(c *fiber.Ctx) error {
	out, err := h.svc.ListPending(c.Context(), GetScope(c), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.Context(), c.Params("id"), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar la cantidad completa
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ActionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	out, err := h.svc.Approve(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Solicitud aprobada", out)
}

// ApprovePartial godoc
// @Summary      Aprobar una cantidad menor a la solicitada
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.PartialApproveRequest  true  "Cantidad aprobada"
// @Success      200   {object}  dto.ActionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve-partial [post]
func (h *RequestHandler) ApprovePartial(c *fiber.Ctx) error {
	var in dto.PartialApproveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.ApprovePartial(c.Context(), c.Params("id"), GetUserID(c), in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return done(c, fmt.Sprintf("Solicitud aprobada parcialmente (%d unidades)", in.Quantity), out)
}

// Reject POST /api/requests/:id/reject
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.svc.Reject(c.Context(), c.Params("id"), GetUserID(c), in.Observation)
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Solicitud rechazada", out)
}

// Deliver marca como entregada una solicitud aprobada.
// POST /api/requests/:id/deliver
func (h *RequestHandler) Deliver(c *fiber.Ctx) error {
	out, err := h.svc.MarkDelivered(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Solicitud entregada", out)
}

// Deliveries GET /api/requests/:id/deliveries
func (h *RequestHandler) Deliveries(c *fiber.Ctx) error {
	if err := h.visible(c); err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.Deliveries(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReturnInfo GET /api/requests/:id/return-info
func (h *RequestHandler) ReturnInfo(c *fiber.Ctx) error {
	if err := h.visible(c); err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.ReturnInfo(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RegisterReturn godoc
// @Summary      Registrar devolución total o parcial
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.RegisterReturnRequest  true  "Cantidad y estado"
// @Success      201   {object}  dto.ActionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/returns [post]
func (h *RequestHandler) RegisterReturn(c *fiber.Ctx) error {
	var in dto.RegisterReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.visible(c); err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.RegisterReturn(c.Context(), requests.ReturnInput{
		RequestID:   c.Params("id"),
		Quantity:    in.Quantity,
		User:        GetUsername(c),
		Observation: in.Observation,
		Condition:   in.Condition,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ActionResponse{
		Success: true,
		Message: fmt.Sprintf("Devolución registrada. Pendiente por devolver: %d", res.Remaining),
		Data: fiber.Map{
			"return":    res.Return,
			"remaining": res.Remaining,
			"status":    res.Status.String(),
		},
	})
}

// ListReturns GET /api/requests/:id/returns
func (h *RequestHandler) ListReturns(c *fiber.Ctx) error {
	if err := h.visible(c); err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.ListReturns(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt comprobante PDF de la solicitud.
// GET /api/requests/:id/receipt.pdf
func (h *RequestHandler) Receipt(c *fiber.Ctx) error {
	pdf, err := h.reports.RequestReceiptPDF(c.Context(), c.Params("id"), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="solicitud-%s.pdf"`, c.Params("id")))
	return c.Send(pdf)
}
