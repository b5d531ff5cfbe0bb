package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materiales-api/internal/application/corporate"
	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/reports"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// CorporateHandler inventario corporativo: productos, asignaciones, devoluciones, traspasos y bajas.
type CorporateHandler struct {
	svc     *corporate.Service
	reports *reports.Service
}

// NewCorporateHandler construye el handler.
func NewCorporateHandler(svc *corporate.Service, reportSvc *reports.Service) *CorporateHandler {
	return &CorporateHandler{svc: svc, reports: reportSvc}
}

// CreateProduct godoc
// @Summary      Crear producto corporativo
// @Tags         corporate
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCorporateProductRequest  true  "Producto"
// @Success      201   {object}  dto.CorporateProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/corporate/products [post]
func (h *CorporateHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateCorporateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.CreateProduct(c.Context(), in, GetUsername(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListProducts GET /api/corporate/products
// Las oficinas solo ven los productos que tienen asignados.
func (h *CorporateHandler) ListProducts(c *fiber.Ctx) error {
	out, err := h.svc.ListProducts(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetProduct GET /api/corporate/products/:id
func (h *CorporateHandler) GetProduct(c *fiber.Ctx) error {
	out, err := h.svc.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateProduct PUT /api/corporate/products/:id
func (h *CorporateHandler) UpdateProduct(c *fiber.Ctx) error {
	var in dto.UpdateCorporateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.UpdateProduct(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeactivateProduct DELETE /api/corporate/products/:id (borrado lógico)
func (h *CorporateHandler) DeactivateProduct(c *fiber.Ctx) error {
	if err := h.svc.DeactivateProduct(c.Context(), c.Params("id"), GetUsername(c)); err != nil {
		return writeError(c, err)
	}
	return done(c, "Producto desactivado", nil)
}

// Assign godoc
// @Summary      Asignar unidades de un producto a una oficina
// @Description  Descuenta del disponible del producto.
// @Tags         corporate
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AssignRequest  true  "Oficina y cantidad"
// @Success      201   {object}  dto.AssignmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/corporate/products/{id}/assign [post]
func (h *CorporateHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.AssignToOffice(c.Context(), c.Params("id"), in.OfficeID, in.Quantity, GetUsername(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Assignments GET /api/corporate/products/:id/assignments
func (h *CorporateHandler) Assignments(c *fiber.Ctx) error {
	office, err := h.svc.OfficeFor(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.Assignments(c.Context(), c.Params("id"), office)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History GET /api/corporate/products/:id/history
func (h *CorporateHandler) History(c *fiber.Ctx) error {
	office, err := h.svc.OfficeFor(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.History(c.Context(), c.Params("id"), office)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Balance GET /api/corporate/products/:id/balance
func (h *CorporateHandler) Balance(c *fiber.Ctx) error {
	out, err := h.svc.StockBalance(c.Context(), c.Params("id"), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RequestReturn godoc
// @Summary      Solicitar devolución de un producto asignado
// @Description  quantity 0 devuelve toda la asignación.
// @Tags         corporate
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CorporateReturnRequest  true  "Devolución"
// @Success      201   {object}  dto.CorporateReturnResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/corporate/returns [post]
func (h *CorporateHandler) RequestReturn(c *fiber.Ctx) error {
	var in dto.CorporateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	office, err := h.ownOffice(c, in.OfficeID)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.RequestReturn(c.Context(), corporate.ReturnInput{
		ProductID: in.ProductID,
		OfficeID:  office,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Actor:     GetUsername(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ownOffice resuelve la oficina del body contra el alcance: vacía toma la del usuario
// y una ajena es ErrForbidden.
func (h *CorporateHandler) ownOffice(c *fiber.Ctx, officeID string) (string, error) {
	scoped, err := h.svc.OfficeFor(c.Context(), GetScope(c))
	if err != nil {
		return "", err
	}
	if officeID == "" {
		officeID = scoped
	}
	if officeID == "" {
		officeID = GetOfficeID(c)
	}
	if scoped != "" && officeID != scoped {
		return "", fmt.Errorf("%w: solo puede operar sobre su propia oficina", domain.ErrForbidden)
	}
	return officeID, nil
}

// PendingReturns GET /api/corporate/returns/pending
func (h *CorporateHandler) PendingReturns(c *fiber.Ctx) error {
	office, err := h.svc.OfficeFor(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.PendingReturns(c.Context(), office)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Returns GET /api/corporate/returns?state=APROBADO
func (h *CorporateHandler) Returns(c *fiber.Ctx) error {
	state, ok := parseResolution(c.Query("state"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado desconocido"})
	}
	office, err := h.svc.OfficeFor(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.ReturnsByState(c.Context(), state, office)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ApproveReturn POST /api/corporate/returns/:id/approve
func (h *CorporateHandler) ApproveReturn(c *fiber.Ctx) error {
	in, err := resolveBody(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.svc.ApproveReturn(c.Context(), c.Params("id"), GetUsername(c), in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Devolución aprobada", out)
}

// RejectReturn POST /api/corporate/returns/:id/reject
func (h *CorporateHandler) RejectReturn(c *fiber.Ctx) error {
	in, err := resolveBody(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.svc.RejectReturn(c.Context(), c.Params("id"), GetUsername(c), in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Devolución rechazada", out)
}

// RequestTransfer godoc
// @Summary      Solicitar traspaso de una asignación a otra oficina
// @Tags         corporate
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Traspaso"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/corporate/transfers [post]
func (h *CorporateHandler) RequestTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	from, err := h.ownOffice(c, in.FromOfficeID)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.RequestTransfer(c.Context(), corporate.TransferInput{
		ProductID:    in.ProductID,
		FromOfficeID: from,
		ToOfficeID:   in.ToOfficeID,
		Reason:       in.Reason,
		Actor:        GetUsername(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PendingTransfers GET /api/corporate/transfers/pending
func (h *CorporateHandler) PendingTransfers(c *fiber.Ctx) error {
	office, err := h.svc.OfficeFor(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.PendingTransfers(c.Context(), office)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transfers GET /api/corporate/transfers?state=
func (h *CorporateHandler) Transfers(c *fiber.Ctx) error {
	state, ok := parseResolution(c.Query("state"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado desconocido"})
	}
	office, err := h.svc.OfficeFor(c.Context(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.TransfersByState(c.Context(), state, office)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ApproveTransfer POST /api/corporate/transfers/:id/approve
func (h *CorporateHandler) ApproveTransfer(c *fiber.Ctx) error {
	in, err := resolveBody(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.svc.ApproveTransfer(c.Context(), c.Params("id"), GetUsername(c), in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Traspaso aprobado", out)
}

// RejectTransfer POST /api/corporate/transfers/:id/reject
func (h *CorporateHandler) RejectTransfer(c *fiber.Ctx) error {
	in, err := resolveBody(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.svc.RejectTransfer(c.Context(), c.Params("id"), GetUsername(c), in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return done(c, "Traspaso rechazado", out)
}

// Returned GET /api/corporate/returned
// Asignaciones devueltas a la espera de baja.
func (h *CorporateHandler) Returned(c *fiber.Ctx) error {
	out, err := h.svc.ReturnedAwaitingWriteOff(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// WriteOff godoc
// @Summary      Dar de baja una asignación devuelta
// @Tags         corporate
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WriteOffRequest  true  "Producto, asignación y motivo"
// @Success      200   {object}  dto.ActionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/corporate/write-offs [post]
func (h *CorporateHandler) WriteOff(c *fiber.Ctx) error {
	var in dto.WriteOffRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.svc.WriteOff(c.Context(), in.ProductID, in.AssignmentID, in.Reason, GetUsername(c)); err != nil {
		return writeError(c, err)
	}
	return done(c, "Producto dado de baja", fiber.Map{"assignment_id": in.AssignmentID})
}

// Report GET /api/corporate/report.pdf?office_id=
func (h *CorporateHandler) Report(c *fiber.Ctx) error {
	officeID := c.Query("office_id")
	pdf, err := h.reports.CorporateReportPDF(c.Context(), officeID, GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	name := "inventario-corporativo.pdf"
	if officeID != "" {
		name = fmt.Sprintf("inventario-corporativo-%s.pdf", officeID)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(pdf)
}

// resolveBody las notas son opcionales; un cuerpo vacío es válido.
func resolveBody(c *fiber.Ctx) (dto.ResolveRequest, error) {
	var in dto.ResolveRequest
	if len(c.Body()) == 0 {
		return in, nil
	}
	err := c.BodyParser(&in)
	return in, err
}

func parseResolution(raw string) (entity.ResolutionState, bool) {
	switch s := entity.ResolutionState(raw); s {
	case "":
		return entity.ResolutionPending, true
	case entity.ResolutionPending, entity.ResolutionApproved, entity.ResolutionRejected:
		return s, true
	}
	return "", false
}
