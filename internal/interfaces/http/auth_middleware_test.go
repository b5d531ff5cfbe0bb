package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/domain/access"
	apphttp "github.com/jhoicas/materiales-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/materiales-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testOfficeID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "materiales-api-test"
	testExpMin    = 60
)

// buildTestApp aplicación mínima: AuthMiddleware + guard + handler dummy que devuelve 200.
func buildTestApp(guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		guard,
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "jperez", testOfficeID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza GET path y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole(access.RoleAdmin))
	resp := doRequest(t, app, "/protected", tokenForRole(t, "administrador"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "administrador", body["role"])
}

func TestRequireRole_RolNormalizado(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole(access.RoleAdmin, access.RoleInventoryLeader))
	resp := doRequest(t, app, "/protected", tokenForRole(t, "Lider Inventario"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "el rol se normaliza antes de comparar")
}

func TestRequireRole_OficinaBloqueadaEnRutaAdmin(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole(access.RoleAdmin))
	resp := doRequest(t, app, "/protected", tokenForRole(t, "oficina_cali"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole(access.RoleAdmin))
	resp := doRequest(t, app, "/protected", tokenForRole(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestAuthMiddleware_SinHeader_Retorna401(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole(access.RoleAdmin))
	resp := doRequest(t, app, "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole(access.RoleAdmin))
	resp := doRequest(t, app, "/protected", "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guards por permiso
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission(t *testing.T) {
	cases := []struct {
		name string
		role string
		res  access.Resource
		act  access.Action
		want int
	}{
		{"aprobador aprueba solicitudes", "aprobador", access.ResRequests, access.ActApprove, http.StatusOK},
		{"oficina crea solicitudes", "oficina_nogal", access.ResRequests, access.ActCreate, http.StatusOK},
		{"oficina no aprueba", "oficina_nogal", access.ResRequests, access.ActApprove, http.StatusForbidden},
		{"tesoreria sin materiales", "tesoreria", access.ResMaterials, access.ActView, http.StatusForbidden},
		{"rol desconocido", "visitante", access.ResRequests, access.ActView, http.StatusForbidden},
		{"solo admin gestiona usuarios", "lider_inventario", access.ResUsers, access.ActManage, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := buildTestApp(apphttp.RequirePermission(tc.res, tc.act))
			resp := doRequest(t, app, "/protected", tokenForRole(t, tc.role))
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRequireCorporateManager(t *testing.T) {
	app := buildTestApp(apphttp.RequireCorporateManager())

	resp := doRequest(t, app, "/protected", tokenForRole(t, "lider_inventario"))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "/protected", tokenForRole(t, "aprobador"))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireNoveltyManager(t *testing.T) {
	app := buildTestApp(apphttp.RequireNoveltyManager())

	resp := doRequest(t, app, "/protected", tokenForRole(t, "aprobador"))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "/protected", tokenForRole(t, "oficina_cali"))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Claims y alcance
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		scope := apphttp.GetScope(c)
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"username":  apphttp.GetUsername(c),
			"office_id": apphttp.GetOfficeID(c),
			"role":      apphttp.GetRole(c),
			"scope":     scope.OfficeID,
		})
	})

	resp := doRequest(t, app, "/me", tokenForRole(t, "oficina_cali"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "jperez", body["username"])
	assert.Equal(t, testOfficeID, body["office_id"])
	assert.Equal(t, "oficina_cali", body["role"])
	assert.Equal(t, testOfficeID, body["scope"], "un rol de oficina solo ve su propia oficina")
}
