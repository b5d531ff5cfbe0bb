package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRole(t *testing.T) {
	cases := map[string]Role{
		"administrador":       RoleAdmin,
		"  Administrador ":    RoleAdmin,
		"SuperAdmin":          RoleAdmin,
		"Líder Inventario":    RoleInventoryLeader,
		"lider de inventario": RoleInventoryLeader,
		"Tesorería":           RoleTreasury,
		"aprobador":           RoleApprover,
		"Oficina Kennedy":     RoleOfficeKennedy,
		"oficina_medellin":    RoleOfficeMedellin,
		"":                    "",
		"Visitante Externo":   "visitante_externo",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeRole(in), "rol %q", in)
	}
}

func TestResolve_Administrador(t *testing.T) {
	p := Resolve("administrador")
	assert.Equal(t, FilterAll, p.OfficeFilter)
	assert.True(t, p.HasModule(ModuleUsers))
	assert.True(t, p.Can(ResRequests, ActPartialApprove))
	assert.True(t, p.Can(ResCorporate, ActWriteOff))
	assert.True(t, p.CanManageNovelty())
	assert.True(t, p.CanManageCorporate())
}

func TestResolve_AprobadorNoDaDeBaja(t *testing.T) {
	p := Resolve("aprobador")
	assert.True(t, p.Can(ResCorporate, ActApproveTransf))
	assert.False(t, p.Can(ResCorporate, ActWriteOff))
	assert.False(t, p.HasModule(ModuleUsers))
	assert.True(t, p.CanManageNovelty())
	assert.False(t, p.CanManageCorporate())
}

func TestResolve_Tesoreria(t *testing.T) {
	p := Resolve("tesoreria")
	assert.Equal(t, []Module{ModuleReports}, p.Modules)
	assert.True(t, p.Can(ResReports, ActViewAll))
	assert.False(t, p.Can(ResRequests, ActView))
	assert.Equal(t, FilterOwn, p.OfficeFilter)
}

func TestResolve_RolesDeOficinaComparten(t *testing.T) {
	base := Resolve(string(RoleOfficeCali))
	for _, r := range OfficeRoles() {
		p := Resolve(string(r))
		assert.Equal(t, base.Modules, p.Modules, "rol %s", r)
		assert.Equal(t, base.Actions, p.Actions, "rol %s", r)
		assert.Equal(t, FilterOwn, p.OfficeFilter)
		assert.True(t, p.Can(ResRequests, ActCreate))
		assert.False(t, p.Can(ResRequests, ActApprove))
		assert.False(t, p.CanManageNovelty())
	}
	assert.Len(t, OfficeRoles(), 16)
}

func TestResolve_Desconocido(t *testing.T) {
	p := Resolve("visitante")
	assert.Empty(t, p.Modules)
	assert.False(t, p.Can(ResRequests, ActView))
	assert.Equal(t, FilterOwn, p.OfficeFilter)

	empty := Resolve("")
	assert.Equal(t, FilterNone, empty.OfficeFilter)
	assert.True(t, empty.ScopeFor("of-1").Deny)
}

func TestResolve_CopiaDefensivaDeLaTabla(t *testing.T) {
	p := Resolve("aprobador")
	p.Actions[ResRequests][0] = "mutado"
	p.Modules[0] = "mutado"

	q := Resolve("aprobador")
	assert.Equal(t, ActView, q.Actions[ResRequests][0])
	assert.Equal(t, ModuleDashboard, q.Modules[0])
}

func TestScopeFor(t *testing.T) {
	all := Resolve("lider_inventario").ScopeFor("of-1")
	assert.True(t, all.Unrestricted())
	assert.True(t, all.Allows("of-2"))

	own := Resolve("oficina_nogal").ScopeFor("of-1")
	require.False(t, own.Unrestricted())
	assert.Equal(t, "of-1", own.OfficeID)
	assert.True(t, own.Allows("of-1"))
	assert.False(t, own.Allows("of-2"))

	noOffice := Resolve("oficina_nogal").ScopeFor("")
	assert.True(t, noOffice.Deny)

	named := Permissions{OfficeFilter: "Cali"}.ScopeFor("of-1")
	assert.Equal(t, "Cali", named.OfficeName)
}

func TestScope_NamedOffice(t *testing.T) {
	named := Scope{OfficeName: "Bogotá"}
	assert.False(t, named.Allows("of-1"), "un alcance por nombre no se valida solo con el ID")
	assert.True(t, named.AllowsOffice("of-1", "bogota"))
	assert.False(t, named.AllowsOffice("of-2", "Cali"))

	own := Scope{OfficeID: "of-1"}
	assert.True(t, own.AllowsOffice("of-1", "Cali"))
	assert.False(t, own.AllowsOffice("of-2", "Cali"))

	assert.False(t, Scope{Deny: true}.AllowsOffice("of-1", ""))
	assert.True(t, Scope{}.AllowsOffice("of-9", ""))
}

func TestOfficeRoleFor(t *testing.T) {
	assert.Equal(t, RoleOfficePrincipal, OfficeRoleFor("Bogotá"))
	assert.Equal(t, RoleOfficeMedellin, OfficeRoleFor("Medellín"))
	assert.Equal(t, RoleOfficePepeSierra, OfficeRoleFor("pepe_sierra"))
	assert.Equal(t, RoleOfficePoloClub, OfficeRoleFor("Oficina Polo Club"))
	assert.Equal(t, Role(""), OfficeRoleFor("Barranquilla"))
	assert.Equal(t, Role(""), OfficeRoleFor(""))
}
