package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmanaccio-api/internal/application/auth"
	"github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *inventory.ProductUseCase
	RestockUC   *inventory.RestockUseCase
	LotUC       *inventory.LotUseCase
	OverviewUC  *inventory.OverviewUseCase
	VademecumUC *inventory.VademecumUseCase
	Settings    *inventory.Settings
	CustomerUC  *billing.CustomerUseCase
	SaleUC      *billing.SaleUseCase
	PDFUC       *billing.PDFUseCase
	Carts       *billing.CartRegistry
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	protected.Get("/auth/session", authHandler.Session)

	// Usuarios (solo admin)
	users := protected.Group("/users", adminOnly)
	users.Get("/", authHandler.ListUsers)
	users.Post("/", authHandler.CreateUser)
	users.Put("/:id", authHandler.UpdateUser)
	users.Post("/:id/archive", authHandler.ArchiveUser)
	users.Post("/:id/restore", authHandler.RestoreUser)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Get("/:id/lots", productHandler.AvailableLots)
	products.Get("/:id/movements", productHandler.Movements)
	products.Post("/:id/archive", productHandler.Archive)
	products.Post("/:id/restore", productHandler.Restore)

	// Inventario y lotes
	inventoryHandler := NewInventoryHandler(deps.RestockUC, deps.LotUC, deps.OverviewUC, deps.Settings)
	protected.Post("/inventory/restock", inventoryHandler.Restock)
	protected.Get("/inventory/overview", inventoryHandler.Overview)
	protected.Put("/lots/:id", inventoryHandler.UpdateLot)
	protected.Get("/settings/lot-selection", inventoryHandler.GetSettings)
	protected.Put("/settings/lot-selection", adminOnly, inventoryHandler.PutSettings)

	// Vademécum
	vademecumHandler := NewVademecumHandler(deps.VademecumUC)
	protected.Get("/vademecum", vademecumHandler.Search)
	protected.Get("/vademecum/lookup", vademecumHandler.Lookup)

	// Customers
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Post("/:id/archive", customerHandler.Archive)
	customers.Post("/:id/restore", customerHandler.Restore)

	// Ventas y facturas
	invoiceHandler := NewInvoiceHandler(deps.SaleUC, deps.PDFUC)
	protected.Post("/sales", invoiceHandler.ConfirmSale)
	invoices := protected.Group("/invoices")
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)

	// Carrito del operador
	cart := protected.Group("/cart")
	cartHandler := NewCartHandler(deps.Carts, deps.SaleUC)
	cart.Get("/", cartHandler.Get)
	cart.Delete("/", cartHandler.Clear)
	cart.Post("/items", cartHandler.Add)
	cart.Put("/items/:productId", cartHandler.Update)
	cart.Delete("/items/:productId", cartHandler.Remove)
	cart.Put("/discount", cartHandler.Discount)
	cart.Post("/checkout", cartHandler.Checkout)
}
