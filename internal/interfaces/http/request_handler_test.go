package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/loans"
	"github.com/jhoicas/materiales-api/internal/application/novelty"
	"github.com/jhoicas/materiales-api/internal/application/requests"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/materiales-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/materiales-api/pkg/jwt"
)

type apiFixture struct {
	app       *fiber.App
	materials *memory.MaterialRepo
}

// newAPI monta las rutas de solicitudes, novedades y préstamos sobre el store en memoria.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	offices := memory.NewOfficeRepository(s)
	materials := memory.NewMaterialRepository(s)
	approvers := memory.NewApproverRepository(s)
	requestRepo := memory.NewRequestRepository(s)
	now := time.Now()

	require.NoError(t, offices.Create(ctx, &entity.Office{ID: "of-norte", Name: "Norte", IsActive: true, CreatedAt: now}))
	require.NoError(t, offices.Create(ctx, &entity.Office{ID: "of-sur", Name: "Sur", IsActive: true, CreatedAt: now}))
	require.NoError(t, materials.Create(ctx, &entity.Material{
		ID: "mat-1", Name: "Afiche", UnitValue: decimal.NewFromInt(1000), Available: 10, IsActive: true, CreatedAt: now,
	}))
	approvers.Put(&entity.Approver{ID: "apr-1", Name: "Aprobador", IsActive: true})

	tx := memory.NewTxRunner(s)
	requestSvc := requests.NewService(requests.Deps{
		Tx:         tx,
		Requests:   requestRepo,
		Materials:  materials,
		Offices:    offices,
		Deliveries: memory.NewDeliveryRepository(s),
		Returns:    memory.NewReturnRepository(s),
		Users:      memory.NewUserRepository(s),
		Approvers:  approvers,
	})
	noveltySvc := novelty.NewService(tx, memory.NewNoveltyRepository(s), requestRepo, offices, nil)
	loanSvc := loans.NewService(tx, memory.NewLoanRepository(s), materials, offices, nil)

	app := fiber.New()
	api := app.Group("/api", apphttp.AuthMiddleware(testJWTSecret))
	rh := apphttp.NewRequestHandler(requestSvc, nil)
	api.Post("/requests", apphttp.RequirePermission(access.ResRequests, access.ActCreate), rh.Create)
	api.Get("/requests", rh.List)
	api.Get("/requests/:id", rh.GetByID)
	api.Post("/requests/:id/approve", apphttp.RequirePermission(access.ResRequests, access.ActApprove), rh.Approve)
	api.Post("/requests/:id/approve-partial", apphttp.RequirePermission(access.ResRequests, access.ActPartialApprove), rh.ApprovePartial)
	api.Post("/requests/:id/returns", rh.RegisterReturn)

	nh := apphttp.NewNoveltyHandler(noveltySvc, requestSvc, nil)
	api.Post("/novelties", nh.Report)
	api.Post("/novelties/:id/resolve", apphttp.RequireNoveltyManager(), nh.Resolve)

	lh := apphttp.NewLoanHandler(loanSvc)
	api.Post("/loans", lh.Create)
	api.Get("/loans", lh.List)

	return &apiFixture{app: app, materials: materials}
}

func bearer(t *testing.T, role, officeID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, "u-"+role, role, officeID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (f *apiFixture) call(t *testing.T, method, path, auth string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func (f *apiFixture) createRequest(t *testing.T, qty int) dto.RequestResponse {
	t.Helper()
	resp, body := f.call(t, http.MethodPost, "/api/requests", bearer(t, "oficina_nogal", "of-norte"),
		fiber.Map{"material_id": "mat-1", "quantity": qty, "office_percent": "50"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.RequestResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestRequestFlow_CreateUsesOwnOffice(t *testing.T) {
	f := newAPI(t)
	req := f.createRequest(t, 3)

	assert.Equal(t, "of-norte", req.OfficeID)
	assert.Equal(t, int(entity.RequestPending), req.Status)

	m, err := f.materials.GetByID(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 10, m.Available, "crear la solicitud no descuenta stock")
}

func TestRequestFlow_OfficeCannotRequestForAnotherOffice(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.call(t, http.MethodPost, "/api/requests", bearer(t, "oficina_nogal", "of-norte"),
		fiber.Map{"office_id": "of-sur", "material_id": "mat-1", "quantity": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequestFlow_ApproveDiscountsStock(t *testing.T) {
	f := newAPI(t)
	req := f.createRequest(t, 4)

	resp, _ := f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", bearer(t, "oficina_nogal", "of-norte"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "una oficina no aprueba")

	resp, body := f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", bearer(t, "aprobador", ""), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	m, err := f.materials.GetByID(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 6, m.Available)

	resp, _ = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", bearer(t, "aprobador", ""), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "una solicitud ya procesada no está pendiente")
}

func TestRequestFlow_InsufficientStockIsConflict(t *testing.T) {
	f := newAPI(t)
	req := f.createRequest(t, 25)

	resp, body := f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", bearer(t, "aprobador", ""), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "Disponible: 10")
}

func TestRequestFlow_PartialApproveRejectsInvalidQuantity(t *testing.T) {
	f := newAPI(t)
	req := f.createRequest(t, 5)

	resp, _ := f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve-partial", bearer(t, "aprobador", ""),
		fiber.Map{"quantity": 6})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no se aprueba más de lo solicitado")

	resp, _ = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve-partial", bearer(t, "aprobador", ""),
		fiber.Map{"quantity": 2})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestFlow_ScopeHidesOtherOffices(t *testing.T) {
	f := newAPI(t)
	req := f.createRequest(t, 1)

	resp, _ := f.call(t, http.MethodGet, "/api/requests/"+req.ID, bearer(t, "oficina_kennedy", "of-sur"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.call(t, http.MethodGet, "/api/requests", bearer(t, "oficina_kennedy", "of-sur"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.RequestListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Items)

	resp, _ = f.call(t, http.MethodGet, "/api/requests/"+req.ID, bearer(t, "aprobador", ""), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestFlow_ReturnAfterApproval(t *testing.T) {
	f := newAPI(t)
	req := f.createRequest(t, 4)
	resp, _ := f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", bearer(t, "aprobador", ""), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/returns", bearer(t, "aprobador", ""),
		fiber.Map{"quantity": 9})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no se puede devolver más de lo entregado")

	resp, body := f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/returns", bearer(t, "aprobador", ""),
		fiber.Map{"quantity": 1, "condition": "bueno"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"remaining":3`)

	m, err := f.materials.GetByID(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 7, m.Available)
}

func TestNoveltyFlow_RequiresDeliveredRequest(t *testing.T) {
	f := newAPI(t)
	req := f.createRequest(t, 2)

	resp, _ := f.call(t, http.MethodPost, "/api/novelties", bearer(t, "oficina_nogal", "of-norte"),
		fiber.Map{"request_id": req.ID, "type": "Daño", "description": "llegó roto", "affected_qty": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "solo las solicitudes entregadas aceptan novedades")

	resp, _ = f.call(t, http.MethodPost, "/api/novelties/n-1/resolve", bearer(t, "oficina_nogal", "of-norte"),
		fiber.Map{"action": "aceptar"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// multipartCall envía un formulario con un archivo adjunto en el campo "image".
func (f *apiFixture) multipartCall(t *testing.T, path, auth string, fields map[string]string, filename string, content []byte) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", auth)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func (f *apiFixture) approvedRequest(t *testing.T, qty int) dto.RequestResponse {
	t.Helper()
	req := f.createRequest(t, qty)
	resp, body := f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", bearer(t, "aprobador", ""), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	return req
}

func TestNoveltyFlow_ImageWithoutUploadsIsRejected(t *testing.T) {
	f := newAPI(t)
	req := f.approvedRequest(t, 2)

	fields := map[string]string{
		"request_id":   req.ID,
		"type":         "Daño",
		"description":  "llegó roto",
		"affected_qty": "1",
	}
	resp, body := f.multipartCall(t, "/api/novelties", bearer(t, "oficina_nogal", "of-norte"), fields, "evidencia.png", []byte("\x89PNG"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "UPLOADS_DISABLED")

	resp, body = f.call(t, http.MethodPost, "/api/novelties", bearer(t, "oficina_nogal", "of-norte"),
		fiber.Map{"request_id": req.ID, "type": "Daño", "description": "llegó roto", "affected_qty": 1})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "sin archivo la novedad se registra: %s", body)
}

func TestNoveltyFlow_ResolveRequiresManager(t *testing.T) {
	f := newAPI(t)
	req := f.approvedRequest(t, 2)

	resp, body := f.call(t, http.MethodPost, "/api/novelties", bearer(t, "oficina_nogal", "of-norte"),
		fiber.Map{"request_id": req.ID, "type": "Daño", "description": "llegó roto", "affected_qty": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var n dto.NoveltyResponse
	require.NoError(t, json.Unmarshal(body, &n))

	resp, body = f.call(t, http.MethodPost, "/api/novelties/"+n.ID+"/resolve", bearer(t, "oficina_nogal", "of-norte"),
		fiber.Map{"action": "aceptar"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "gestión de novedades")

	resp, body = f.call(t, http.MethodPost, "/api/novelties/"+n.ID+"/resolve", bearer(t, "lider_inventario", ""),
		fiber.Map{"action": "aceptar", "notes": "se repone"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Novedad aceptada")

	resp, body = f.call(t, http.MethodGet, "/api/requests/"+req.ID, bearer(t, "aprobador", ""), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.RequestResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, int(entity.RequestNoveltyAccepted), got.Status)
}

func TestLoanFlow_CreateAndList(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/loans", bearer(t, "oficina_nogal", "of-norte"),
		fiber.Map{"material_id": "mat-1", "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = f.call(t, http.MethodGet, "/api/loans?status=pendiente", bearer(t, "oficina_nogal", "of-norte"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.LoanResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	resp, _ = f.call(t, http.MethodGet, "/api/loans?status=perdido", bearer(t, "oficina_nogal", "of-norte"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
