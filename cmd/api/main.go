package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/jhoicas/backoffice-api/docs"
	appanalytics "github.com/jhoicas/backoffice-api/internal/application/analytics"
	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/billing"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	infraai "github.com/jhoicas/backoffice-api/internal/infrastructure/ai"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/cache"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/einvoice"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/excel"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/n8n"
	infrapdf "github.com/jhoicas/backoffice-api/internal/infrastructure/pdf"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/backoffice-api/internal/interfaces/http"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// @title                       Backoffice API
// @version                     1.0
// @description                 Compras, ventas, inventario y cuentas por cobrar/pagar de pequeñas empresas.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("timezone", cfg.App.Timezone).
		Msg("iniciando aplicación")

	loc := cfg.App.Location()
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	// Repositorios
	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	importRepo := postgres.NewImportInvoiceRepository(pool)
	exportRepo := postgres.NewExportInvoiceRepository(pool)
	debtRepo := postgres.NewDebtRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	attachmentRepo := postgres.NewAttachmentRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	syncRunRepo := postgres.NewSyncRunRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Adaptadores
	fileStorage, err := storage.NewLocalStorage(cfg.Storage.AttachmentsDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Storage.AttachmentsDir).Msg("almacenamiento de adjuntos")
	}
	pdfGenerator, err := infrapdf.NewMarotoPDFGenerator(infrapdf.Options{Currency: cfg.App.Currency, FontFile: cfg.Company.PDFFontFile})
	if err != nil {
		log.Fatal().Err(err).Msg("generador PDF")
	}
	sheets := excel.NewWorkbookWriter()
	xmlParser := einvoice.NewParser()

	var extractor ports.InvoiceExtractor
	switch cfg.AI.Provider {
	case "gemini":
		extractor = infraai.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	default:
		extractor = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)
	}

	checks := map[string]httpRouter.Pinger{"database": pool}
	var reportCache ports.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			// Sin Redis el dashboard consulta directo a PostgreSQL.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché deshabilitada")
		} else {
			defer func() { _ = rc.Close() }()
			reportCache = rc
			checks["redis"] = rc
		}
	}

	issuer := billing.IssuerProfile{
		Name:    cfg.Company.Name,
		TaxCode: cfg.Company.TaxCode,
		Address: cfg.Company.Address,
		Phone:   cfg.Company.Phone,
		Email:   cfg.Company.Email,
	}

	// Casos de uso
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	customerUC := usecase.NewPartnerUseCase(entity.PartnerCustomer, partnerRepo, sequenceRepo)
	supplierUC := usecase.NewPartnerUseCase(entity.PartnerSupplier, partnerRepo, sequenceRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	attachmentUC := usecase.NewAttachmentUseCase(attachmentRepo, fileStorage, einvoice.NewDigester(), cfg.Storage.MaxUploadBytes())

	stockService := inventory.NewStockService()
	stockUC := inventory.NewStockUseCase(txRunner, productRepo, movementRepo, stockService)
	replenishmentUC := inventory.NewReplenishmentUseCase(reportRepo)

	importUC := billing.NewImportUseCase(txRunner, importRepo, partnerRepo, attachmentRepo, stockService, loc)
	exportUC := billing.NewExportUseCase(txRunner, exportRepo, partnerRepo, companyRepo, stockService, issuer, loc)
	debtUC := billing.NewDebtUseCase(txRunner, debtRepo, partnerRepo, loc)
	xmlImportUC := billing.NewXMLImportUseCase(xmlParser, companyRepo, partnerRepo, productRepo, sequenceRepo, importUC, attachmentUC)
	ocrUC := billing.NewOCRUseCase(extractor, companyRepo, partnerRepo, productRepo, importRepo)
	documentUC := billing.NewDocumentUseCase(importUC, exportUC, debtRepo, companyRepo, partnerRepo, pdfGenerator, sheets, issuer)
	feed := n8n.NewWebhookClient(cfg.N8N.WebhookURL, cfg.N8N.Secret, cfg.N8N.Timeout)
	syncUC := billing.NewSyncUseCase(feed, xmlImportUC, companyRepo, syncRunRepo, loc)

	reportUC := appanalytics.NewReportUseCase(reportRepo, replenishmentUC, sheets, loc)
	dashboardUC := appanalytics.NewDashboardUseCase(reportRepo, reportCache, cfg.Redis.TTL, loc)

	// Tareas programadas
	jobs := scheduler.New(loc, log.Component("scheduler"))
	if cfg.Jobs.OverdueDebtsCron != "" {
		if err := jobs.AddOverdueJob(cfg.Jobs.OverdueDebtsCron, debtUC); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Jobs.OverdueDebtsCron).Msg("tarea de deudas vencidas")
		}
	}
	if cfg.N8N.WebhookURL != "" && cfg.N8N.SyncCron != "" {
		if err := jobs.AddSyncJob(cfg.N8N.SyncCron, syncUC); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.N8N.SyncCron).Msg("tarea de sincronización n8n")
		}
	}
	jobs.Start()

	metrics := httpRouter.NewMetrics("backoffice")
	app := httpRouter.NewApp(httpRouter.AppOptions{
		Name:        cfg.App.Name,
		BodyLimitMB: cfg.HTTP.BodyLimitMB,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Logger:      log,
		Metrics:     metrics,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swaggerConfig(cfg.HTTP.SwaggerFile)))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		CompanyUC:       companyUC,
		UserUC:          userUC,
		CustomerUC:      customerUC,
		SupplierUC:      supplierUC,
		ProductUC:       productUC,
		AttachmentUC:    attachmentUC,
		StockUC:         stockUC,
		ReplenishmentUC: replenishmentUC,
		ImportUC:        importUC,
		ExportUC:        exportUC,
		XMLImportUC:     xmlImportUC,
		OCRUC:           ocrUC,
		DebtUC:          debtUC,
		DocumentUC:      documentUC,
		SyncUC:          syncUC,
		ReportUC:        reportUC,
		DashboardUC:     dashboardUC,
		Health:          httpRouter.NewHealthHandler(cfg.App.Name, checks),
		Metrics:         metrics,
		JWTSecret:       cfg.JWT.Secret,
		MaxUploadBytes:  cfg.Storage.MaxUploadBytes(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobs.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// swaggerConfig sirve el swagger.json generado por `swag init` si existe;
// si no, el documento registrado en el paquete docs.
func swaggerConfig(file string) swagger.Config {
	cfg := swagger.Config{
		BasePath: "/",
		Path:     "docs",
		Title:    "Backoffice API",
	}
	if file != "" {
		if _, err := os.Stat(file); err == nil {
			cfg.FilePath = file
			return cfg
		}
	}
	cfg.FileContent = []byte(docs.SwaggerInfo.ReadDoc())
	return cfg
}
