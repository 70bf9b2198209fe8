package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	appanalytics "github.com/jhoicas/backoffice-api/internal/application/analytics"
	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/billing"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// AppOptions configuración del servidor Fiber.
type AppOptions struct {
	Name        string
	BodyLimitMB int
	CORSOrigins string // separados por coma; "*" permite todos
	Logger      *logger.Logger
	Metrics     *Metrics // nil = sin métricas
}

// NewApp crea la app Fiber con la cadena de middlewares comunes:
// recover → requestid → cors → log de peticiones → métricas.
func NewApp(opts AppOptions) *fiber.App {
	bodyLimit := opts.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 4
	}
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Content-Disposition, X-Request-ID",
	}))
	app.Use(RequestLogger(log.Component("http")))
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
	}
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CompanyUC    *usecase.CompanyUseCase
	UserUC       *usecase.UserUseCase
	CustomerUC   *usecase.PartnerUseCase
	SupplierUC   *usecase.PartnerUseCase
	ProductUC    *usecase.ProductUseCase
	AttachmentUC *usecase.AttachmentUseCase

	StockUC         *inventory.StockUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase

	ImportUC    *billing.ImportUseCase
	ExportUC    *billing.ExportUseCase
	XMLImportUC *billing.XMLImportUseCase
	OCRUC       *billing.OCRUseCase
	DebtUC      *billing.DebtUseCase
	DocumentUC  *billing.DocumentUseCase
	SyncUC      *billing.SyncUseCase

	ReportUC    *appanalytics.ReportUseCase
	DashboardUC *appanalytics.DashboardUseCase

	Health         *HealthHandler
	Metrics        *Metrics
	JWTSecret      string
	MaxUploadBytes int64
}

// Roles agrupados por área.
var (
	rolesAll        = []string{entity.RoleAdmin, entity.RoleAccountant, entity.RoleWarehouse, entity.RoleSales}
	rolesFinance    = []string{entity.RoleAdmin, entity.RoleAccountant}
	rolesPurchasing = []string{entity.RoleAdmin, entity.RoleAccountant, entity.RoleWarehouse}
	rolesSelling    = []string{entity.RoleAdmin, entity.RoleAccountant, entity.RoleSales}
	rolesStock      = []string{entity.RoleAdmin, entity.RoleWarehouse}
)

// Router registra las rutas de la API.
// Las rutas estáticas (export.xlsx, xml/preview) van antes de /:id.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Health != nil {
		app.Get("/health", deps.Health.Health)
	}
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)
	authGroup.Put("/password", AuthMiddleware(deps.JWTSecret), authHandler.ChangePassword)

	// Alta inicial de empresa (público)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Post("/companies", companyHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(rolesAll...)
	admin := RequireRole(entity.RoleAdmin)
	finance := RequireRole(rolesFinance...)

	companies := protected.Group("/companies")
	companies.Get("/:id", anyRole, companyHandler.GetByID)
	companies.Put("/:id", admin, companyHandler.Update)

	// Users (admin)
	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users", admin)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Put("/:id/password", userHandler.ResetPassword)
	users.Delete("/:id", userHandler.Delete)

	// Customers / suppliers
	partnerRoutes(protected.Group("/customers"), NewPartnerHandler(deps.CustomerUC, deps.DebtUC), RequireRole(rolesSelling...))
	partnerRoutes(protected.Group("/suppliers"), NewPartnerHandler(deps.SupplierUC, deps.DebtUC), RequireRole(rolesPurchasing...))

	// Inventory
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.StockUC, deps.ReplenishmentUC)
	stockWrite := RequireRole(rolesStock...)
	inv := protected.Group("/inventory")
	inv.Get("/", anyRole, productHandler.List)
	inv.Post("/", stockWrite, productHandler.Create)
	inv.Get("/:id", anyRole, productHandler.GetByID)
	inv.Put("/:id", stockWrite, productHandler.Update)
	inv.Delete("/:id", stockWrite, productHandler.Delete)
	inv.Post("/:id/adjust", stockWrite, inventoryHandler.Adjust)
	inv.Get("/:id/movements", anyRole, inventoryHandler.Movements)

	// Imports (compras)
	importHandler := NewImportHandler(deps.ImportUC, deps.XMLImportUC, deps.DocumentUC, deps.MaxUploadBytes)
	aiHandler := NewAIHandler(deps.OCRUC, deps.MaxUploadBytes)
	purchasing := RequireRole(rolesPurchasing...)
	imports := protected.Group("/imports", purchasing)
	imports.Get("/export.xlsx", importHandler.ExportXLSX)
	imports.Post("/xml/preview", importHandler.PreviewXML)
	imports.Post("/xml", importHandler.ImportXML)
	imports.Post("/ocr/preview", aiHandler.PreviewInvoice)
	imports.Get("/", importHandler.List)
	imports.Post("/", importHandler.Create)
	imports.Get("/:id", importHandler.GetByID)
	imports.Get("/:id/pdf", importHandler.PDF)
	imports.Post("/:id/cancel", importHandler.Cancel)

	// Exports (ventas)
	exportHandler := NewExportHandler(deps.ExportUC, deps.DocumentUC)
	exports := protected.Group("/exports", RequireRole(rolesSelling...))
	exports.Get("/export.xlsx", exportHandler.ExportXLSX)
	exports.Get("/", exportHandler.List)
	exports.Post("/", exportHandler.Create)
	exports.Get("/:id", exportHandler.GetByID)
	exports.Get("/:id/pdf", exportHandler.PDF)
	exports.Post("/:id/cancel", exportHandler.Cancel)

	// Debts
	debtHandler := NewDebtHandler(deps.DebtUC, deps.DocumentUC)
	debts := protected.Group("/debts", RequireRole(entity.RoleAdmin, entity.RoleAccountant, entity.RoleSales))
	debts.Get("/export.xlsx", debtHandler.ExportXLSX)
	debts.Get("/statement.pdf", debtHandler.Statement)
	debts.Get("/", debtHandler.List)
	debts.Get("/:id", debtHandler.GetByID)
	debts.Post("/:id/payments", finance, debtHandler.AddPayment)
	debts.Delete("/:id/payments/:paymentId", finance, debtHandler.DeletePayment)

	// Reports
	reportHandler := NewAnalyticsHandler(deps.ReportUC)
	reports := protected.Group("/reports", finance)
	reports.Get("/summary", reportHandler.GetSummary)
	reports.Get("/revenue", reportHandler.GetRevenue)
	reports.Get("/top-products", reportHandler.GetTopProducts)
	reports.Get("/inventory", inventoryHandler.GetReplenishmentList)
	reports.Get("/debts/aging", reportHandler.GetAging)
	reports.Get("/export.xlsx", reportHandler.ExportWorkbook)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", anyRole, dashboardHandler.GetSummary)

	// Attachments
	attachmentHandler := NewAttachmentHandler(deps.AttachmentUC, deps.MaxUploadBytes)
	attachments := protected.Group("/attachments", anyRole)
	attachments.Get("/", attachmentHandler.List)
	attachments.Post("/", attachmentHandler.Upload)
	attachments.Get("/:id/download", attachmentHandler.Download)
	attachments.Delete("/:id", RequireRole(rolesPurchasing...), attachmentHandler.Delete)

	// Sync n8n
	syncHandler := NewSyncHandler(deps.SyncUC)
	sync := protected.Group("/sync", finance)
	sync.Post("/invoices", syncHandler.SyncInvoices)
	sync.Get("/runs", syncHandler.Runs)
}

// partnerRoutes monta el CRUD de contrapartes; la lectura es para todos los roles.
func partnerRoutes(g fiber.Router, h *PartnerHandler, write fiber.Handler) {
	read := RequireRole(rolesAll...)
	g.Get("/", read, h.List)
	g.Post("/", write, h.Create)
	g.Get("/:id", read, h.GetByID)
	g.Put("/:id", write, h.Update)
	g.Delete("/:id", write, h.Delete)
	g.Get("/:id/debts", read, h.Debts)
}
