package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/pkg/jwt"
)

// Locals keys de la identidad del token en Fiber.
const (
	LocalUserID      = "user_id"
	LocalUsername    = "username"
	LocalOfficeID    = "office_id"
	LocalRole        = "role"
	LocalPermissions = "permissions"
)

// AuthMiddleware valida el Bearer Token JWT y carga la identidad y sus permisos en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalOfficeID, claims.OfficeID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalPermissions, access.Resolve(claims.Role))
		return c.Next()
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetUsername devuelve el nombre de usuario; se usa como actor en historiales.
func GetUsername(c *fiber.Ctx) string { return localString(c, LocalUsername) }

// GetOfficeID oficina del usuario ("" si no tiene).
func GetOfficeID(c *fiber.Ctx) string { return localString(c, LocalOfficeID) }

// GetRole rol tal como viene en el token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// GetPermissions permisos resueltos del rol. Sin middleware devuelve los de un rol vacío.
func GetPermissions(c *fiber.Ctx) access.Permissions {
	if p, ok := c.Locals(LocalPermissions).(access.Permissions); ok {
		return p
	}
	return access.Resolve("")
}

// GetScope alcance de oficinas del usuario autenticado.
func GetScope(c *fiber.Ctx) access.Scope {
	return GetPermissions(c).ScopeFor(GetOfficeID(c))
}

// RequireRole restringe la ruta a los roles indicados. Usar DESPUÉS de AuthMiddleware.
//   - 401 MISSING_ROLE si el token no trae rol.
//   - 403 FORBIDDEN si el rol no está en la lista.
func RequireRole(roles ...access.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := GetRole(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no contiene rol"})
		}
		role := access.NormalizeRole(raw)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return forbidden(c, "rol sin acceso a este recurso")
	}
}

// RequirePermission exige la acción sobre el recurso según la tabla de permisos del rol.
func RequirePermission(res access.Resource, act access.Action) fiber.Handler {
	return requireAccess(string(res)+":"+string(act), func(p access.Permissions) bool { return p.Can(res, act) })
}

// RequireAnyPermission pasa si el rol tiene alguna de las acciones sobre el recurso.
func RequireAnyPermission(res access.Resource, acts ...access.Action) fiber.Handler {
	return requireAccess(string(res), func(p access.Permissions) bool {
		for _, a := range acts {
			if p.Can(res, a) {
				return true
			}
		}
		return false
	})
}

// RequireModule exige que el módulo sea visible para el rol.
func RequireModule(m access.Module) fiber.Handler {
	return requireAccess("módulo "+string(m), func(p access.Permissions) bool { return p.HasModule(m) })
}

// RequireNoveltyManager gestión de novedades (aceptar/rechazar).
func RequireNoveltyManager() fiber.Handler {
	return requireAccess("gestión de novedades", access.Permissions.CanManageNovelty)
}

// RequireCorporateManager administración del catálogo corporativo.
func RequireCorporateManager() fiber.Handler {
	return requireAccess("administración corporativa", access.Permissions.CanManageCorporate)
}

func requireAccess(what string, allowed func(access.Permissions) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión requerida"})
		}
		if !allowed(GetPermissions(c)) {
			return forbidden(c, "sin permiso: "+what)
		}
		return c.Next()
	}
}
