package access

import "github.com/jhoicas/materiales-api/pkg/textnorm"

// Permissions permisos efectivos de un rol. Es un valor inmutable.
type Permissions struct {
	Role         Role                  `json:"role"`
	Modules      []Module              `json:"modules"`
	Actions      map[Resource][]Action `json:"actions"`
	OfficeFilter OfficeFilter          `json:"office_filter"`
}

// Resolve devuelve los permisos de un rol libre. Un rol desconocido no tiene módulos ni acciones
// y su filtro de oficina es "own"; un rol vacío queda con filtro "none".
func Resolve(raw string) Permissions {
	role := NormalizeRole(raw)
	if role == "" {
		return Permissions{Actions: map[Resource][]Action{}, OfficeFilter: FilterNone}
	}
	g, ok := table[role]
	if !ok {
		return Permissions{Role: role, Actions: map[Resource][]Action{}, OfficeFilter: FilterOwn}
	}
	p := Permissions{
		Role:         role,
		Modules:      append([]Module(nil), g.modules...),
		Actions:      make(map[Resource][]Action, len(g.actions)),
		OfficeFilter: g.filter,
	}
	for res, acts := range g.actions {
		p.Actions[res] = append([]Action(nil), acts...)
	}
	return p
}

// HasModule indica si el rol ve el módulo.
func (p Permissions) HasModule(m Module) bool {
	for _, x := range p.Modules {
		if x == m {
			return true
		}
	}
	return false
}

// Can indica si el rol puede ejecutar la acción sobre el recurso.
func (p Permissions) Can(res Resource, act Action) bool {
	for _, a := range p.Actions[res] {
		if a == act {
			return true
		}
	}
	return false
}

// CanManageNovelty administrador, líder de inventario y aprobador gestionan novedades,
// además de cualquier rol con approve/reject sobre novedades.
func (p Permissions) CanManageNovelty() bool {
	switch p.Role {
	case RoleAdmin, RoleInventoryLeader, RoleApprover:
		return true
	}
	return p.Can(ResNovelties, ActApprove) || p.Can(ResNovelties, ActReject)
}

// CanManageCorporate solo administrador y líder de inventario administran el catálogo corporativo.
func (p Permissions) CanManageCorporate() bool {
	return p.Role == RoleAdmin || p.Role == RoleInventoryLeader
}

// Scope alcance de oficina de una consulta. Zero value = sin restricción.
type Scope struct {
	OfficeID   string
	OfficeName string
	Deny       bool
}

// Unrestricted indica si la consulta no se filtra por oficina.
func (s Scope) Unrestricted() bool {
	return !s.Deny && s.OfficeID == "" && s.OfficeName == ""
}

// ScopeFor traduce el filtro del rol al alcance concreto para un usuario de la oficina dada.
// Un filtro "own" sin oficina asignada no ve nada.
func (p Permissions) ScopeFor(userOfficeID string) Scope {
	switch p.OfficeFilter {
	case FilterAll:
		return Scope{}
	case FilterOwn:
		if userOfficeID == "" {
			return Scope{Deny: true}
		}
		return Scope{OfficeID: userOfficeID}
	case FilterNone, "":
		return Scope{Deny: true}
	default:
		return Scope{OfficeName: string(p.OfficeFilter)}
	}
}

// Allows indica si el alcance permite ver/operar sobre la oficina indicada. Un alcance por
// nombre de oficina no se puede verificar solo con el ID y se niega; use AllowsOffice.
func (s Scope) Allows(officeID string) bool {
	if s.Deny || s.OfficeName != "" {
		return false
	}
	if s.OfficeID != "" {
		return s.OfficeID == officeID
	}
	return true
}

// AllowsOffice como Allows, comparando además el nombre de la oficina para alcances por nombre.
func (s Scope) AllowsOffice(officeID, officeName string) bool {
	if s.OfficeName != "" {
		return !s.Deny && textnorm.Fold(s.OfficeName) == textnorm.Fold(officeName)
	}
	return s.Allows(officeID)
}
