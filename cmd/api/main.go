package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/farmanaccio-api/internal/application/auth"
	"github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/farmanaccio-api/internal/infrastructure/pdf"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/farmanaccio-api/internal/interfaces/http"
	"github.com/jhoicas/farmanaccio-api/pkg/config"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
)

type txRunner interface {
	inventory.TxRunner
	billing.BillingTxRunner
}

// backend repositorios y runner de transacciones del almacenamiento elegido.
type backend struct {
	tx        txRunner
	users     repository.UserRepository
	products  repository.ProductRepository
	lots      repository.LotRepository
	movements repository.StockMovementRepository
	customers repository.CustomerRepository
	invoices  repository.InvoiceRepository
	notes     repository.DeliveryNoteRepository
	vademecum repository.VademecumRepository
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) backend {
	if cfg.Storage.Backend == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al cerrar")
		st := memory.NewStore()
		return backend{
			tx:        memory.NewTxRunner(st),
			users:     st.Users(),
			products:  st.Products(),
			lots:      st.Lots(),
			movements: st.Movements(),
			customers: st.Customers(),
			invoices:  st.Invoices(),
			notes:     st.DeliveryNotes(),
			vademecum: st.Vademecum(),
			close:     func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("migraciones")
	}
	return backend{
		tx:        postgres.NewTxRunner(pool),
		users:     postgres.NewUserRepository(pool),
		products:  postgres.NewProductRepository(pool),
		lots:      postgres.NewLotRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		customers: postgres.NewCustomerRepository(pool),
		invoices:  postgres.NewInvoiceRepository(pool),
		notes:     postgres.NewDeliveryNoteRepository(pool),
		vademecum: postgres.NewVademecumRepository(pool),
		close:     pool.Close,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be := openBackend(ctx, cfg, log)
	defer be.close()

	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
	if created {
		log.Info().Str("username", cfg.Admin.Username).Msg("administrador inicial creado")
	}

	settings := inventory.NewSettings(cfg.Sales.ManualLotSelection)

	// Facturas y remitos: PDF guardado en DOCUMENTS_DIR y descarga bajo demanda
	documents := infrapdf.NewMarotoDocumentGenerator(infrapdf.NewDirectoryLocator(cfg.Sales.DocumentsDir), cfg.App.Name)
	saleUC := billing.NewSaleUseCase(be.tx, be.customers, be.invoices, documents, settings, log)
	pdfUC := billing.NewPDFUseCase(be.invoices, be.notes, be.customers, be.products, documents)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://127.0.0.1:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Farmanaccio API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   inventory.NewProductUseCase(be.tx, be.products, be.lots, be.movements, be.vademecum, log),
		RestockUC:   inventory.NewRestockUseCase(be.tx, log),
		LotUC:       inventory.NewLotUseCase(be.tx, log),
		OverviewUC:  inventory.NewOverviewUseCase(be.products, be.lots),
		VademecumUC: inventory.NewVademecumUseCase(be.vademecum, log),
		Settings:    settings,
		CustomerUC:  billing.NewCustomerUseCase(be.customers),
		SaleUC:      saleUC,
		PDFUC:       pdfUC,
		Carts:       billing.NewCartRegistry(be.products),
		JWTSecret:   cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
