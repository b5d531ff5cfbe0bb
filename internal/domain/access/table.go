package access

// Module sección navegable de la aplicación.
type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleMaterials Module = "material_pop"
	ModuleCorporate Module = "inventario_corporativo"
	ModuleLoans     Module = "prestamo_material"
	ModuleReports   Module = "reportes"
	ModuleRequests  Module = "solicitudes"
	ModuleOffices   Module = "oficinas"
	ModuleNovelties Module = "novedades"
	ModuleUsers     Module = "usuarios"
)

// Resource agrupa acciones.
type Resource string

const (
	ResUsers     Resource = "usuarios"
	ResMaterials Resource = "materiales"
	ResRequests  Resource = "solicitudes"
	ResOffices   Resource = "oficinas"
	ResApprovers Resource = "aprobadores"
	ResReports   Resource = "reportes"
	ResCorporate Resource = "inventario_corporativo"
	ResLoans     Resource = "prestamos"
	ResNovelties Resource = "novedades"
)

// Action operación sobre un recurso.
type Action string

const (
	ActView           Action = "view"
	ActCreate         Action = "create"
	ActEdit           Action = "edit"
	ActDelete         Action = "delete"
	ActManage         Action = "manage"
	ActApprove        Action = "approve"
	ActReject         Action = "reject"
	ActPartialApprove Action = "partial_approve"
	ActReturn         Action = "return"
	ActViewAll        Action = "view_all"
	ActAssign         Action = "assign"
	ActManageSites    Action = "manage_sedes"
	ActManageOffices  Action = "manage_oficinas"
	ActApproveReturn  Action = "approve_devolucion"
	ActApproveTransf  Action = "approve_traspaso"
	ActWriteOff       Action = "dar_de_baja"
	ActRequestReturn  Action = "solicitar_devolucion"
	ActRequestTransf  Action = "solicitar_traspaso"
	ActManageMaterial Action = "manage_materials"
)

// OfficeFilter alcance de oficinas: "all", "own", "none" o el nombre de una oficina.
type OfficeFilter string

const (
	FilterAll  OfficeFilter = "all"
	FilterOwn  OfficeFilter = "own"
	FilterNone OfficeFilter = "none"
)

type grant struct {
	modules []Module
	actions map[Resource][]Action
	filter  OfficeFilter
}

var (
	allModules = []Module{
		ModuleDashboard, ModuleMaterials, ModuleCorporate, ModuleLoans,
		ModuleReports, ModuleRequests, ModuleOffices, ModuleNovelties,
	}
	requestActions  = []Action{ActView, ActCreate, ActEdit, ActDelete, ActApprove, ActReject, ActPartialApprove, ActReturn}
	materialActions = []Action{ActView, ActCreate, ActEdit, ActDelete}
	loanActions     = []Action{ActView, ActCreate, ActApprove, ActReject, ActReturn, ActManageMaterial}
	noveltyActions  = []Action{ActCreate, ActView, ActManage, ActApprove, ActReject}
	corporateFull   = []Action{
		ActView, ActCreate, ActEdit, ActDelete, ActAssign, ActManageSites, ActManageOffices,
		ActApproveReturn, ActApproveTransf, ActWriteOff, ActRequestReturn, ActRequestTransf,
	}
)

var officeStandard = grant{
	modules: allModules,
	actions: map[Resource][]Action{
		ResMaterials: {ActView},
		ResRequests:  {ActView, ActCreate},
		ResOffices:   {ActView},
		ResReports:   {ActViewAll},
		ResCorporate: {ActView, ActRequestReturn, ActRequestTransf},
		ResLoans:     {ActView, ActCreate},
		ResNovelties: {ActCreate, ActView},
	},
	filter: FilterOwn,
}

var table = map[Role]grant{
	RoleAdmin: {
		modules: append(append([]Module{}, allModules...), ModuleUsers),
		actions: map[Resource][]Action{
			ResUsers:     {ActView, ActManage, ActCreate, ActEdit, ActDelete},
			ResMaterials: materialActions,
			ResRequests:  requestActions,
			ResOffices:   {ActView, ActManage},
			ResApprovers: {ActView, ActManage},
			ResReports:   {ActViewAll},
			ResCorporate: corporateFull,
			ResLoans:     loanActions,
			ResNovelties: noveltyActions,
		},
		filter: FilterAll,
	},
	RoleInventoryLeader: {
		modules: allModules,
		actions: map[Resource][]Action{
			ResMaterials: materialActions,
			ResRequests:  requestActions,
			ResOffices:   {ActView},
			ResApprovers: {ActView},
			ResReports:   {ActViewAll},
			ResCorporate: corporateFull,
			ResLoans:     loanActions,
			ResNovelties: noveltyActions,
		},
		filter: FilterAll,
	},
	RoleApprover: {
		modules: allModules,
		actions: map[Resource][]Action{
			ResMaterials: materialActions,
			ResRequests:  requestActions,
			ResOffices:   {ActView},
			ResApprovers: {ActView},
			ResReports:   {ActViewAll},
			ResCorporate: {ActView, ActApproveReturn, ActApproveTransf, ActRequestReturn, ActRequestTransf},
			ResLoans:     loanActions,
			ResNovelties: noveltyActions,
		},
		filter: FilterAll,
	},
	RoleTreasury: {
		modules: []Module{ModuleReports},
		actions: map[Resource][]Action{ResReports: {ActViewAll}},
		filter:  FilterOwn,
	},
	RoleUser: {
		filter: FilterOwn,
	},
}

func init() {
	for _, r := range officeRoles {
		table[r] = officeStandard
	}
}
