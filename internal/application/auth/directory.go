package auth

import (
	"context"
	"errors"

	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/pkg/textnorm"
)

// ErrInvalidCredentials el directorio rechazó usuario/contraseña.
var ErrInvalidCredentials = errors.New("credenciales inválidas en el directorio")

// DirectoryUser datos que devuelve el directorio tras autenticar.
type DirectoryUser struct {
	Username   string
	Name       string
	Email      string
	Department string
	Groups     []string
}

// Directory puerto hacia el directorio corporativo (LDAP / Active Directory).
type Directory interface {
	Authenticate(ctx context.Context, username, password string) (*DirectoryUser, error)
}

var (
	adminMarkers     = []string{"gerencia", "admin", "administrador"}
	inventoryMarkers = []string{"almacen", "logistica", "inventario"}
	treasuryMarkers  = []string{"finanzas", "contabilidad", "tesoreria"}
)

// RoleFromDirectory asigna el rol del sistema según grupos y departamento del directorio.
// Sin coincidencias el usuario queda como "usuario".
func RoleFromDirectory(du *DirectoryUser) access.Role {
	if du == nil {
		return access.RoleUser
	}
	sources := append([]string{du.Department}, du.Groups...)
	for _, check := range []struct {
		words []string
		role  access.Role
	}{
		{adminMarkers, access.RoleAdmin},
		{inventoryMarkers, access.RoleInventoryLeader},
		{treasuryMarkers, access.RoleTreasury},
	} {
		for _, src := range sources {
			if textnorm.ContainsAny(src, check.words...) {
				return check.role
			}
		}
	}
	return access.RoleUser
}
