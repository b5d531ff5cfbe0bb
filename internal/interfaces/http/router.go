package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materiales-api/internal/application/auth"
	"github.com/jhoicas/materiales-api/internal/application/corporate"
	"github.com/jhoicas/materiales-api/internal/application/loans"
	"github.com/jhoicas/materiales-api/internal/application/novelty"
	"github.com/jhoicas/materiales-api/internal/application/reports"
	"github.com/jhoicas/materiales-api/internal/application/requests"
	"github.com/jhoicas/materiales-api/internal/application/usecase"
	"github.com/jhoicas/materiales-api/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	OfficeUC   *usecase.OfficeUseCase
	UserUC     *usecase.UserUseCase
	MaterialUC *usecase.MaterialUseCase
	Requests   *requests.Service
	Novelties  *novelty.Service
	Corporate  *corporate.Service
	Loans      *loans.Service
	Reports    *reports.Service
	Uploads    Uploader
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/auth/permissions", authHandler.Permissions)

	// Oficinas
	officeHandler := NewOfficeHandler(deps.OfficeUC)
	offices := protected.Group("/offices")
	offices.Get("/", officeHandler.List)
	offices.Get("/:id", officeHandler.GetByID)
	offices.Post("/", RequirePermission(access.ResOffices, access.ActManage), officeHandler.Create)
	offices.Put("/:id", RequirePermission(access.ResOffices, access.ActManage), officeHandler.Update)

	// Usuarios y aprobadores
	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users", RequirePermission(access.ResUsers, access.ActManage))
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Put("/:id", userHandler.Update)
	protected.Get("/approvers", RequirePermission(access.ResApprovers, access.ActView), userHandler.Approvers)

	// Materiales
	materialHandler := NewMaterialHandler(deps.MaterialUC, deps.Requests)
	materials := protected.Group("/materials", RequirePermission(access.ResMaterials, access.ActView))
	materials.Get("/", materialHandler.List)
	materials.Post("/", RequirePermission(access.ResMaterials, access.ActCreate), materialHandler.Create)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", RequirePermission(access.ResMaterials, access.ActEdit), materialHandler.Update)
	materials.Get("/:id/stats", materialHandler.Stats)

	// Solicitudes
	requestHandler := NewRequestHandler(deps.Requests, deps.Reports)
	noveltyHandler := NewNoveltyHandler(deps.Novelties, deps.Requests, deps.Uploads)
	reqs := protected.Group("/requests", RequirePermission(access.ResRequests, access.ActView))
	reqs.Get("/", requestHandler.List)
	reqs.Post("/", RequirePermission(access.ResRequests, access.ActCreate), requestHandler.Create)
	reqs.Get("/pending", requestHandler.Pending)
	reqs.Get("/:id", requestHandler.GetByID)
	reqs.Post("/:id/approve", RequirePermission(access.ResRequests, access.ActApprove), requestHandler.Approve)
	reqs.Post("/:id/approve-partial", RequirePermission(access.ResRequests, access.ActPartialApprove), requestHandler.ApprovePartial)
	reqs.Post("/:id/reject", RequirePermission(access.ResRequests, access.ActReject), requestHandler.Reject)
	reqs.Post("/:id/deliver", RequirePermission(access.ResRequests, access.ActApprove), requestHandler.Deliver)
	reqs.Get("/:id/deliveries", requestHandler.Deliveries)
	reqs.Get("/:id/return-info", requestHandler.ReturnInfo)
	reqs.Get("/:id/returns", requestHandler.ListReturns)
	reqs.Post("/:id/returns", RequirePermission(access.ResRequests, access.ActReturn), requestHandler.RegisterReturn)
	reqs.Get("/:id/receipt.pdf", requestHandler.Receipt)
	reqs.Get("/:id/novelties", noveltyHandler.ByRequest)

	// Novedades
	novelties := protected.Group("/novelties", RequirePermission(access.ResNovelties, access.ActView))
	novelties.Get("/", noveltyHandler.List)
	novelties.Post("/", RequirePermission(access.ResNovelties, access.ActCreate), noveltyHandler.Report)
	novelties.Get("/pending", noveltyHandler.Pending)
	novelties.Get("/stats", noveltyHandler.Stats)
	novelties.Get("/types", noveltyHandler.Types)
	novelties.Get("/:id", noveltyHandler.GetByID)
	novelties.Post("/:id/resolve", RequireNoveltyManager(), noveltyHandler.Resolve)

	// Inventario corporativo
	corporateHandler := NewCorporateHandler(deps.Corporate, deps.Reports)
	corp := protected.Group("/corporate", RequirePermission(access.ResCorporate, access.ActView))
	corp.Get("/products", corporateHandler.ListProducts)
	corp.Post("/products", RequireCorporateManager(), corporateHandler.CreateProduct)
	corp.Get("/products/:id", corporateHandler.GetProduct)
	corp.Put("/products/:id", RequireCorporateManager(), corporateHandler.UpdateProduct)
	corp.Delete("/products/:id", RequireCorporateManager(), corporateHandler.DeactivateProduct)
	corp.Post("/products/:id/assign", RequirePermission(access.ResCorporate, access.ActAssign), corporateHandler.Assign)
	corp.Get("/products/:id/assignments", corporateHandler.Assignments)
	corp.Get("/products/:id/history", corporateHandler.History)
	corp.Get("/products/:id/balance", corporateHandler.Balance)

	corp.Get("/returns", corporateHandler.Returns)
	corp.Post("/returns", RequirePermission(access.ResCorporate, access.ActRequestReturn), corporateHandler.RequestReturn)
	corp.Get("/returns/pending", corporateHandler.PendingReturns)
	corp.Post("/returns/:id/approve", RequirePermission(access.ResCorporate, access.ActApproveReturn), corporateHandler.ApproveReturn)
	corp.Post("/returns/:id/reject", RequirePermission(access.ResCorporate, access.ActApproveReturn), corporateHandler.RejectReturn)

	corp.Get("/transfers", corporateHandler.Transfers)
	corp.Post("/transfers", RequirePermission(access.ResCorporate, access.ActRequestTransf), corporateHandler.RequestTransfer)
	corp.Get("/transfers/pending", corporateHandler.PendingTransfers)
	corp.Post("/transfers/:id/approve", RequirePermission(access.ResCorporate, access.ActApproveTransf), corporateHandler.ApproveTransfer)
	corp.Post("/transfers/:id/reject", RequirePermission(access.ResCorporate, access.ActApproveTransf), corporateHandler.RejectTransfer)

	corp.Get("/returned", RequirePermission(access.ResCorporate, access.ActWriteOff), corporateHandler.Returned)
	corp.Post("/write-offs", RequirePermission(access.ResCorporate, access.ActWriteOff), corporateHandler.WriteOff)
	corp.Get("/report.pdf", RequirePermission(access.ResReports, access.ActViewAll), corporateHandler.Report)

	// Préstamos
	loanHandler := NewLoanHandler(deps.Loans)
	loanGroup := protected.Group("/loans", RequirePermission(access.ResLoans, access.ActView))
	loanGroup.Get("/", loanHandler.List)
	loanGroup.Post("/", RequirePermission(access.ResLoans, access.ActCreate), loanHandler.Create)
	loanGroup.Get("/:id", loanHandler.GetByID)
	loanGroup.Post("/:id/approve", RequirePermission(access.ResLoans, access.ActApprove), loanHandler.Approve)
	loanGroup.Post("/:id/reject", RequirePermission(access.ResLoans, access.ActReject), loanHandler.Reject)
	loanGroup.Post("/:id/return", RequirePermission(access.ResLoans, access.ActReturn), loanHandler.Return)

	// Tablero
	dashboardHandler := NewDashboardHandler(deps.Reports)
	protected.Get("/dashboard/summary", RequireModule(access.ModuleDashboard), dashboardHandler.Summary)
}
