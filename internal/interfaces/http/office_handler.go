package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/usecase"
)

// OfficeHandler CRUD de oficinas.
type OfficeHandler struct {
	uc *usecase.OfficeUseCase
}

// NewOfficeHandler construye el handler.
func NewOfficeHandler(uc *usecase.OfficeUseCase) *OfficeHandler {
	return &OfficeHandler{uc: uc}
}

// Create godoc
// @Summary      Crear oficina
// @Tags         offices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOfficeRequest  true  "Datos de la oficina"
// @Success      201   {object}  dto.OfficeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/offices [post]
func (h *OfficeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOfficeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener oficina
// @Tags         offices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la oficina"
// @Success      200  {object}  dto.OfficeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/offices/{id} [get]
func (h *OfficeHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar oficina
// @Tags         offices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la oficina"
// @Param        body  body  dto.UpdateOfficeRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.OfficeResponse
// @Router       /api/offices/{id} [put]
func (h *OfficeHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOfficeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List oficinas; ?all=true incluye inactivas.
// GET /api/offices
func (h *OfficeHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), !c.QueryBool("all", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
