package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/loans"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// LoanHandler préstamos de material entre oficinas.
type LoanHandler struct {
	svc *loans.Service
}

func NewLoanHandler(svc *loans.Service) *LoanHandler {
	return &LoanHandler{svc: svc}
}

// Create godoc
// @Summary      Solicitar préstamo de material
// @Tags         loans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLoanRequest  true  "Préstamo"
// @Success      201   {object}  dto.LoanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/loans [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLoanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.OfficeID == "" {
		in.OfficeID = GetOfficeID(c)
	}
	out, err := h.svc.Create(c.Context(), in, GetUsername(c), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/loans?status=PENDIENTE
func (h *LoanHandler) List(c *fiber.Ctx) error {
	status := entity.LoanStatus(strings.ToUpper(c.Query("status")))
	switch status {
	case "", entity.LoanPending, entity.LoanApproved, entity.LoanRejected, entity.LoanReturned:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado de préstamo desconocido"})
	}
	out, err := h.svc.List(c.Context(), status, GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/loans/:id
func (h *LoanHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.Context(), c.Params("id"), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve POST /api/loans/:id/approve
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	out, err := h.svc.Approve(c.Context(), c.Params("id"), GetUsername(c))
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Préstamo aprobado", out)
}

// Reject POST /api/loans/:id/reject
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	in, err := resolveBody(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.svc.Reject(c.Context(), c.Params("id"), GetUsername(c), in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Préstamo rechazado", out)
}

// Return godoc
// @Summary      Registrar devolución de un préstamo
// @Tags         loans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del préstamo"
// @Param        body  body  dto.LoanReturnRequest  true  "Cantidad devuelta"
// @Success      200   {object}  dto.ActionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/loans/{id}/return [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	var in dto.LoanReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.svc.Get(c.Context(), c.Params("id"), GetScope(c)); err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.RegisterReturn(c.Context(), c.Params("id"), in.Quantity, GetUsername(c))
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Devolución de préstamo registrada", out)
}
