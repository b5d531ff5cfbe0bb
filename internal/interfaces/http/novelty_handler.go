package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/novelty"
	"github.com/jhoicas/materiales-api/internal/application/requests"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/storage"
)

// Uploader guarda la evidencia adjunta y devuelve su ruta pública.
type Uploader interface {
	Save(originalName string, r io.Reader) (string, error)
	MaxBytes() int64
}

// NoveltyHandler reportes de incidentes sobre entregas.
type NoveltyHandler struct {
	svc      *novelty.Service
	requests *requests.Service
	files    Uploader
}

// NewNoveltyHandler construye el handler. files puede ser nil (sin evidencias).
func NewNoveltyHandler(svc *novelty.Service, requestSvc *requests.Service, files Uploader) *NoveltyHandler {
	return &NoveltyHandler{svc: svc, requests: requestSvc, files: files}
}

// Report godoc
// @Summary      Reportar novedad sobre una solicitud entregada
// @Description  multipart/form-data; el campo "image" es opcional.
// @Tags         novelties
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        request_id    formData  string  true   "ID de la solicitud"
// @Param        type          formData  string  true   "Tipo de novedad"
// @Param        description   formData  string  true   "Descripción"
// @Param        affected_qty  formData  int     true   "Cantidad afectada"
// @Param        image         formData  file    false  "Evidencia"
// @Success      201  {object}  dto.NoveltyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/novelties [post]
func (h *NoveltyHandler) Report(c *fiber.Ctx) error {
	var in dto.ReportNoveltyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.requests.Get(c.Context(), in.RequestID, GetScope(c)); err != nil {
		return writeError(c, err)
	}

	imagePath := ""
	// sin archivo (o cuerpo no multipart) la novedad se registra sin evidencia
	if fh, err := c.FormFile("image"); err == nil {
		if h.files == nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UPLOADS_DISABLED", Message: "la carga de archivos no está habilitada"})
		}
		if fh.Size > h.files.MaxBytes() {
			return writeError(c, storage.ErrTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, err)
		}
		defer f.Close()
		if imagePath, err = h.files.Save(fh.Filename, f); err != nil {
			return writeError(c, err)
		}
	}

	out, err := h.svc.Report(c.Context(), novelty.ReportInput{
		RequestID:   in.RequestID,
		Type:        in.Type,
		Description: in.Description,
		AffectedQty: in.AffectedQty,
		ReportedBy:  GetUsername(c),
		ImagePath:   imagePath,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/novelties?status=
func (h *NoveltyHandler) List(c *fiber.Ctx) error {
	status := entity.NoveltyStatus(c.Query("status"))
	switch status {
	case "", entity.NoveltyPending, entity.NoveltyAccepted, entity.NoveltyRejected:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado de novedad desconocido"})
	}
	out, err := h.svc.List(c.Context(), status, GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Pending GET /api/novelties/pending
func (h *NoveltyHandler) Pending(c *fiber.Ctx) error {
	out, err := h.svc.Pending(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/novelties/:id
func (h *NoveltyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if _, err := h.requests.Get(c.Context(), out.RequestID, GetScope(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ByRequest GET /api/requests/:id/novelties
func (h *NoveltyHandler) ByRequest(c *fiber.Ctx) error {
	if _, err := h.requests.Get(c.Context(), c.Params("id"), GetScope(c)); err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.ByRequest(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Aceptar o rechazar una novedad
// @Tags         novelties
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la novedad"
// @Param        body  body  dto.ResolveNoveltyRequest  true  "aceptar | rechazar"
// @Success      200   {object}  dto.ActionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/novelties/{id}/resolve [post]
func (h *NoveltyHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveNoveltyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	accept, err := novelty.ParseAction(in.Action)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.Resolve(c.Context(), c.Params("id"), accept, GetUsername(c), in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	msg := "Novedad rechazada"
	if accept {
		msg = "Novedad aceptada"
	}
	return done(c, msg, out)
}

// Stats GET /api/novelties/stats
func (h *NoveltyHandler) Stats(c *fiber.Ctx) error {
	out, err := h.svc.Stats(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Types GET /api/novelties/types
func (h *NoveltyHandler) Types(c *fiber.Ctx) error {
	out, err := h.svc.Types(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
