package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/materiales-api/internal/application/auth"
	"github.com/jhoicas/materiales-api/internal/application/corporate"
	"github.com/jhoicas/materiales-api/internal/application/loans"
	appnotify "github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/application/novelty"
	"github.com/jhoicas/materiales-api/internal/application/reports"
	"github.com/jhoicas/materiales-api/internal/application/requests"
	"github.com/jhoicas/materiales-api/internal/application/usecase"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
	"github.com/jhoicas/materiales-api/internal/infrastructure/directory"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
	infranotify "github.com/jhoicas/materiales-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/materiales-api/internal/infrastructure/pdf"
	"github.com/jhoicas/materiales-api/internal/infrastructure/postgres"
	"github.com/jhoicas/materiales-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/materiales-api/internal/interfaces/http"
	"github.com/jhoicas/materiales-api/pkg/config"
	"github.com/jhoicas/materiales-api/pkg/logger"
)

// txRunner transacciones de todos los flujos; lo implementan postgres y memory.
type txRunner interface {
	requests.TxRunner
	corporate.TxRunner
	novelty.TxRunner
	loans.TxRunner
}

// repos repositorios del driver elegido.
type repos struct {
	tx          txRunner
	offices     repository.OfficeRepository
	users       repository.UserRepository
	approvers   repository.ApproverRepository
	materials   repository.MaterialRepository
	requests    repository.RequestRepository
	deliveries  repository.DeliveryRepository
	returns     repository.ReturnRepository
	novelties   repository.NoveltyRepository
	loans       repository.LoanRepository
	products    repository.CorporateProductRepository
	assignments repository.AssignmentRepository
	corpReturns repository.CorporateReturnRepository
	transfers   repository.TransferRepository
	writeOffs   repository.WriteOffRepository
	history     repository.HistoryRepository
	reports     repository.ReportRepository
}

func postgresRepos(pool *pgxpool.Pool) repos {
	return repos{
		tx:          postgres.NewTxRunner(pool),
		offices:     postgres.NewOfficeRepository(pool),
		users:       postgres.NewUserRepository(pool),
		approvers:   postgres.NewApproverRepository(pool),
		materials:   postgres.NewMaterialRepository(pool),
		requests:    postgres.NewRequestRepository(pool),
		deliveries:  postgres.NewDeliveryRepository(pool),
		returns:     postgres.NewReturnRepository(pool),
		novelties:   postgres.NewNoveltyRepository(pool),
		loans:       postgres.NewLoanRepository(pool),
		products:    postgres.NewCorporateProductRepository(pool),
		assignments: postgres.NewAssignmentRepository(pool),
		corpReturns: postgres.NewCorporateReturnRepository(pool),
		transfers:   postgres.NewTransferRepository(pool),
		writeOffs:   postgres.NewWriteOffRepository(pool),
		history:     postgres.NewHistoryRepository(pool),
		reports:     postgres.NewReportRepository(pool),
	}
}

func memoryRepos(s *memory.Store) repos {
	return repos{
		tx:          memory.NewTxRunner(s),
		offices:     memory.NewOfficeRepository(s),
		users:       memory.NewUserRepository(s),
		approvers:   memory.NewApproverRepository(s),
		materials:   memory.NewMaterialRepository(s),
		requests:    memory.NewRequestRepository(s),
		deliveries:  memory.NewDeliveryRepository(s),
		returns:     memory.NewReturnRepository(s),
		novelties:   memory.NewNoveltyRepository(s),
		loans:       memory.NewLoanRepository(s),
		products:    memory.NewCorporateProductRepository(s),
		assignments: memory.NewAssignmentRepository(s),
		corpReturns: memory.NewCorporateReturnRepository(s),
		transfers:   memory.NewTransferRepository(s),
		writeOffs:   memory.NewWriteOffRepository(s),
		history:     memory.NewHistoryRepository(s),
		reports:     memory.NewReportRepository(s),
	}
}

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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	var r repos
	switch cfg.DB.Driver {
	case "memory":
		log.Warn().Msg("persistencia en memoria: los datos se pierden al reiniciar")
		r = memoryRepos(memory.NewStore())
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		applied, err := postgres.Migrate(ctx, pool, log.Component("migrate"))
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Strs("applied", applied).Msg("migraciones al día")
		r = postgresRepos(pool)
	}
	userUC := usecase.NewUserUseCase(r.users, r.offices, r.approvers)
	if cfg.DB.Driver == "memory" && cfg.Admin.Password != "" {
		admin, created, err := userUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Name, cfg.Admin.Email)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("username", admin.Username).Msg("administrador inicial creado")
		}
	}

	// Notificaciones: correo y/o broker; sin ninguno el dispatcher es un no-op.
	var notifiers []appnotify.Notifier
	if cfg.SMTP.Enabled() {
		notifiers = append(notifiers, infranotify.NewEmailNotifier(infranotify.EmailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}))
	}
	if cfg.Rabbit.Enabled() {
		rabbit, err := infranotify.NewRabbitNotifier(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Error().Err(err).Msg("RabbitMQ no disponible, eventos deshabilitados")
		} else {
			defer rabbit.Close()
			notifiers = append(notifiers, rabbit)
		}
	}
	var notifier appnotify.Notifier
	if len(notifiers) > 0 {
		notifier = infranotify.Combine(notifiers...)
	}
	dispatcher := appnotify.NewDispatcher(notifier, log.Zerolog())

	var dir auth.Directory
	if cfg.LDAP.Enabled {
		dir = directory.NewLDAP(directory.Config{
			URL:             cfg.LDAP.Addr(),
			Domain:          cfg.LDAP.Domain,
			SearchBase:      cfg.LDAP.SearchBase,
			ServiceUser:     cfg.LDAP.ServiceUser,
			ServicePassword: cfg.LDAP.ServicePassword,
			Timeout:         cfg.LDAP.Timeout,
		})
	}

	uploads, err := storage.NewLocal(cfg.Uploads.Dir, "/static/uploads", cfg.Uploads.MaxBytes, cfg.Uploads.AllowedTypes)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de archivos")
	}

	authUC := auth.NewAuthUseCase(r.users, r.offices, dir, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Zerolog())
	requestSvc := requests.NewService(requests.Deps{
		Tx:         r.tx,
		Requests:   r.requests,
		Materials:  r.materials,
		Offices:    r.offices,
		Deliveries: r.deliveries,
		Returns:    r.returns,
		Users:      r.users,
		Approvers:  r.approvers,
		Notifier:   dispatcher,
	})
	corporateSvc := corporate.NewService(corporate.Deps{
		Tx:          r.tx,
		Products:    r.products,
		Assignments: r.assignments,
		Returns:     r.corpReturns,
		Transfers:   r.transfers,
		WriteOffs:   r.writeOffs,
		History:     r.history,
		Offices:     r.offices,
		Users:       r.users,
		Notifier:    dispatcher,
	})
	reportSvc := reports.NewService(reports.Deps{
		Reports:    r.reports,
		Requests:   r.requests,
		Materials:  r.materials,
		Offices:    r.offices,
		Deliveries: r.deliveries,
		Returns:    r.returns,
		Novelties:  r.novelties,
		Products:   r.products,
		CorpReturn: r.corpReturns,
		Transfers:  r.transfers,
		PDF:        infrapdf.NewMarotoGenerator(cfg.App.Name),
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Uploads.MaxBytes) + 1<<20,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.HTTP.CORSOrigins}))

	// Swagger UI en local: http://localhost:<port>/docs
	if !mountSwagger(app, swaggerFile) {
		log.Info().Msg("docs/swagger.json no existe; Swagger UI deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db_driver": cfg.DB.Driver})
	})
	app.Static("/static/uploads", cfg.Uploads.Dir)

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		OfficeUC:   usecase.NewOfficeUseCase(r.offices),
		UserUC:     userUC,
		MaterialUC: usecase.NewMaterialUseCase(r.materials, r.offices),
		Requests:   requestSvc,
		Novelties:  novelty.NewService(r.tx, r.novelties, r.requests, r.offices, dispatcher),
		Corporate:  corporateSvc,
		Loans:      loans.NewService(r.tx, r.loans, r.materials, r.offices, dispatcher),
		Reports:    reportSvc,
		Uploads:    uploads,
		JWTSecret:  cfg.JWT.Secret,
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

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	waitNotifications(dispatcher, log.Component("shutdown"))

	log.Info().Msg("aplicación detenida")
}

// waitNotifications espera los envíos en curso con un tope para no bloquear el apagado.
// swaggerFile lo genera `swag init -g cmd/api/main.go -o docs --outputTypes json` a partir de
// las anotaciones de los handlers.
const swaggerFile = "./docs/swagger.json"

// mountSwagger monta la UI en /docs si el documento existe.
func mountSwagger(app *fiber.App, file string) bool {
	if _, err := os.Stat(file); err != nil {
		return false
	}
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: file,
		Path:     "docs",
		Title:    "Materiales API",
	}))
	return true
}

func waitNotifications(d *appnotify.Dispatcher, log zerolog.Logger) {
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("notificaciones pendientes descartadas al apagar")
	}
}
