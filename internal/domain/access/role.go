// Package access resuelve los permisos de un rol: módulos visibles, acciones por recurso
// y el filtro de oficinas que se aplica a los listados.
package access

import (
	"strings"

	"github.com/jhoicas/materiales-api/pkg/textnorm"
)

// Role clave normalizada de rol.
type Role string

const (
	RoleAdmin           Role = "administrador"
	RoleInventoryLeader Role = "lider_inventario"
	RoleApprover        Role = "aprobador"
	RoleTreasury        Role = "tesoreria"
	RoleUser            Role = "usuario"
)

// Roles de oficina; todos comparten los permisos estándar de oficina.
const (
	RoleOfficePepeSierra  Role = "oficina_pepe_sierra"
	RoleOfficePoloClub    Role = "oficina_polo_club"
	RoleOfficeNogal       Role = "oficina_nogal"
	RoleOfficeMorato      Role = "oficina_morato"
	RoleOfficeCedritos    Role = "oficina_cedritos"
	RoleOfficeCoq         Role = "oficina_coq"
	RoleOfficeLourdes     Role = "oficina_lourdes"
	RoleOfficeKennedy     Role = "oficina_kennedy"
	RoleOfficePrincipal   Role = "oficina_principal"
	RoleOfficeCali        Role = "oficina_cali"
	RoleOfficeMedellin    Role = "oficina_medellin"
	RoleOfficePereira     Role = "oficina_pereira"
	RoleOfficeBucaramanga Role = "oficina_bucaramanga"
	RoleOfficeCartagena   Role = "oficina_cartagena"
	RoleOfficeTunja       Role = "oficina_tunja"
	RoleOfficeNeiva       Role = "oficina_neiva"
)

var officeRoles = []Role{
	RoleOfficePepeSierra, RoleOfficePoloClub, RoleOfficeNogal, RoleOfficeMorato,
	RoleOfficeCedritos, RoleOfficeCoq, RoleOfficeLourdes, RoleOfficeKennedy,
	RoleOfficePrincipal, RoleOfficeCali, RoleOfficeMedellin, RoleOfficePereira,
	RoleOfficeBucaramanga, RoleOfficeCartagena, RoleOfficeTunja, RoleOfficeNeiva,
}

// officeAliases nombre de oficina (ya sin tildes, en minúscula y con espacios) -> rol.
var officeAliases = map[string]Role{
	"pepe sierra": RoleOfficePepeSierra,
	"pepesierra":  RoleOfficePepeSierra,
	"polo club":   RoleOfficePoloClub,
	"poloclub":    RoleOfficePoloClub,
	"nogal":       RoleOfficeNogal,
	"morato":      RoleOfficeMorato,
	"cedritos":    RoleOfficeCedritos,
	"coq":         RoleOfficeCoq,
	"lourdes":     RoleOfficeLourdes,
	"kennedy":     RoleOfficeKennedy,
	"principal":   RoleOfficePrincipal,
	"bogota":      RoleOfficePrincipal,
	"cali":        RoleOfficeCali,
	"medellin":    RoleOfficeMedellin,
	"pereira":     RoleOfficePereira,
	"bucaramanga": RoleOfficeBucaramanga,
	"cartagena":   RoleOfficeCartagena,
	"tunja":       RoleOfficeTunja,
	"neiva":       RoleOfficeNeiva,
}

// IsOffice indica si es un rol de oficina.
func (r Role) IsOffice() bool {
	return strings.HasPrefix(string(r), "oficina_")
}

// IsValid indica si el rol existe en la tabla de permisos.
func (r Role) IsValid() bool {
	_, ok := table[r]
	return ok
}

// OfficeRoles devuelve los roles de oficina conocidos.
func OfficeRoles() []Role {
	out := make([]Role, len(officeRoles))
	copy(out, officeRoles)
	return out
}

// NormalizeRole convierte un rol libre ("Líder Inventario", "ADMIN") en su clave.
// Si no coincide con la tabla se aplican equivalencias aproximadas; si tampoco, se devuelve normalizado.
func NormalizeRole(raw string) Role {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	key := strings.ReplaceAll(textnorm.Fold(raw), " ", "_")
	if r := Role(key); r.IsValid() {
		return r
	}
	switch {
	case strings.Contains(key, "admin"):
		return RoleAdmin
	case strings.Contains(key, "lider") && strings.Contains(key, "invent"):
		return RoleInventoryLeader
	case strings.Contains(key, "tesorer"):
		return RoleTreasury
	case strings.Contains(key, "aprobador"):
		return RoleApprover
	}
	return Role(key)
}

// OfficeRoleFor devuelve el rol asociado al nombre de una oficina, o "" si no hay alias.
func OfficeRoleFor(officeName string) Role {
	name := textnorm.Fold(officeName)
	if name == "" {
		return ""
	}
	name = strings.TrimPrefix(name, "oficina ")
	if r, ok := officeAliases[strings.ReplaceAll(name, "_", " ")]; ok {
		return r
	}
	if r, ok := officeAliases[name]; ok {
		return r
	}
	return ""
}
