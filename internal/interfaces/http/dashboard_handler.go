package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materiales-api/internal/application/reports"
)

// DashboardHandler resumen del tablero.
type DashboardHandler struct {
	svc *reports.Service
}

func NewDashboardHandler(svc *reports.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary godoc
// @Summary      Resumen del tablero
// @Description  Conteos de solicitudes, stock bajo, novedades y préstamos según el alcance del usuario.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	out, err := h.svc.Dashboard(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
