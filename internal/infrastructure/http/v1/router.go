package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/core/numerator"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/auth"
	"bakerypos/internal/domain/catalogs"
	"bakerypos/internal/domain/catalogs/brand"
	"bakerypos/internal/domain/catalogs/product"
	"bakerypos/internal/domain/catalogs/stockitem"
	"bakerypos/internal/domain/catalogs/supplier"
	"bakerypos/internal/domain/documents/bill"
	"bakerypos/internal/domain/documents/order"
	"bakerypos/internal/domain/pricing"
	"bakerypos/internal/domain/registers/stock"
	"bakerypos/internal/domain/registers/supplierledger"
	"bakerypos/internal/domain/reports"
	"bakerypos/internal/domain/shop"
	"bakerypos/internal/infrastructure/http/v1/handlers"
	"bakerypos/internal/infrastructure/http/v1/middleware"
	"bakerypos/internal/infrastructure/receipt"
	"bakerypos/internal/infrastructure/storage/postgres"
	"bakerypos/internal/infrastructure/storage/postgres/catalog_repo"
	"bakerypos/internal/infrastructure/storage/postgres/document_repo"
	"bakerypos/internal/infrastructure/storage/postgres/register_repo"
	"bakerypos/internal/infrastructure/storage/postgres/report_repo"
	"bakerypos/internal/infrastructure/storage/postgres/settings_repo"
	"bakerypos/pkg/logger"
)

// RouterConfig holds everything the API needs. Repositories and services are
// built from it once, in NewRouter.
type RouterConfig struct {
	// Pool backs the readiness check (optional)
	Pool *postgres.Pool

	// TxManager is shared by every repository
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints (optional)
	AuthService *auth.Service

	// Numerator for bill and order numbers
	Numerator numerator.Generator

	// Policy prices products by time of day
	Policy *pricing.Policy

	// Audit and Events are written inside business transactions (optional)
	Audit  domain.Auditor
	Events domain.EventPublisher

	// POSCache stores till catalogs (optional)
	POSCache product.POSCache

	// ShopDefaults is served as the shop profile until an admin saves one
	ShopDefaults shop.Profile

	// Receipts renders bill PDFs. Defaults to a PDF renderer reading the shop profile.
	Receipts bill.ReceiptRenderer

	// Idempotency guards mutating requests carrying X-Idempotency-Key (optional)
	Idempotency middleware.IdempotencyKeeper

	// HealthChecks are extra readiness checks, e.g. the cache
	HealthChecks map[string]handlers.HealthCheck

	Location      *time.Location
	RetryAttempts int
	Version       string
	Now           func() time.Time
}

// services is the domain layer wired to PostgreSQL.
type services struct {
	shop       *shop.Service
	brands     *brand.Service
	products   *product.Service
	stockItems *stockitem.Service
	suppliers  *supplier.Service
	stock      *stock.Service
	bills      *bill.Service
	orders     *order.Service
	ledger     *supplierledger.Service
	reports    *reports.Service
	pricer     *pricing.Pricer
}

func buildServices(cfg RouterConfig) *services {
	txm := cfg.TxManager
	s := &services{}

	s.shop = shop.NewService(shop.Config{
		Repo:      settings_repo.NewShopProfileRepo(txm),
		Defaults:  cfg.ShopDefaults,
		TxManager: txm,
		Audit:     cfg.Audit,
		Now:       cfg.Now,
	})
	receipts := cfg.Receipts
	if receipts == nil {
		receipts = receipt.NewRenderer(s.shop, cfg.Location)
	}

	brandRepo := catalog_repo.NewBrandRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)
	stockItemRepo := catalog_repo.NewStockItemRepo(txm)
	supplierRepo := catalog_repo.NewSupplierRepo(txm)

	s.brands = brand.NewService(brandRepo, txm, cfg.Audit)
	s.stockItems = stockitem.NewService(stockItemRepo, txm, cfg.Audit)
	s.suppliers = supplier.NewService(supplierRepo, txm, cfg.Audit)
	s.products = product.NewService(product.Config{
		Repo:      productRepo,
		TxManager: txm,
		Audit:     cfg.Audit,
		Brands:    brandRepo,
		Sellable:  s.stockItems,
		Policy:    cfg.Policy,
		Cache:     cfg.POSCache,
		Now:       cfg.Now,
	})

	// Stock item changes alter what the till shows.
	invalidate := func(ctx context.Context, _ *stockitem.StockItem) error {
		return s.products.InvalidatePOS(ctx)
	}
	s.stockItems.Hooks().OnAfterCreate(invalidate)
	s.stockItems.Hooks().OnAfterUpdate(invalidate)
	s.stockItems.Hooks().OnAfterDeactivate(invalidate)

	s.stock = stock.NewService(stock.Config{
		Repo:      register_repo.NewStockRepo(txm),
		Products:  productRepo,
		TxManager: txm,
		Events:    cfg.Events,
		Location:  cfg.Location,
		Now:       cfg.Now,
	})

	s.bills = bill.NewService(bill.Config{
		Repo:          document_repo.NewBillRepo(txm),
		Inventory:     s.stock,
		Numerator:     cfg.Numerator,
		TxManager:     txm,
		Audit:         cfg.Audit,
		Events:        cfg.Events,
		Receipts:      receipts,
		Location:      cfg.Location,
		Now:           cfg.Now,
		RetryAttempts: cfg.RetryAttempts,
	})

	s.orders = order.NewService(order.Config{
		Repo:          document_repo.NewOrderRepo(txm),
		Bills:         s.bills,
		Inventory:     s.stock,
		Numerator:     cfg.Numerator,
		TxManager:     txm,
		Audit:         cfg.Audit,
		Events:        cfg.Events,
		Location:      cfg.Location,
		Now:           cfg.Now,
		RetryAttempts: cfg.RetryAttempts,
	})

	s.ledger = supplierledger.NewService(supplierledger.Config{
		Repo:      register_repo.NewSupplierLedgerRepo(txm),
		Suppliers: supplierRepo,
		TxManager: txm,
		Audit:     cfg.Audit,
		Events:    cfg.Events,
		Location:  cfg.Location,
		Now:       cfg.Now,
	})

	s.reports = reports.NewService(reports.Config{
		Repo:      report_repo.NewReportRepo(txm),
		Orders:    s.orders,
		LowStock:  s.stockItems,
		Stock:     s.stock,
		TxManager: txm,
		Location:  cfg.Location,
		Now:       cfg.Now,
	})

	s.pricer = pricing.NewPricer(cfg.Policy, catalogs.NewItemSource(s.products, s.stockItems), cfg.Now)
	return s
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	for name, check := range cfg.HealthChecks {
		healthHandler.WithCheck(name, check)
	}
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler(cfg.Location)
	svc := buildServices(cfg)

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg, base)
		registerShopRoutes(v1, cfg, svc, base)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// Idempotency runs after Auth so keys are scoped per user.
		if cfg.Idempotency != nil {
			protected.Use(middleware.Idempotency(cfg.Idempotency))
		}

		registerCatalogRoutes(protected, svc, base)
		registerSalesRoutes(protected, svc, base)
		registerStockRoutes(protected, svc, base)
		registerSupplierRoutes(protected, svc, base)
		registerReportRoutes(protected, svc, base)
	}

	return router
}

// registerAuthRoutes registers authentication and staff account endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig, base *handlers.BaseHandler) {
	if cfg.AuthService == nil {
		return
	}

	h := handlers.NewAuthHandler(base, cfg.AuthService)

	public := rg.Group("/auth")
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	protected := rg.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.POST("/auth/logout", h.Logout)
	protected.GET("/auth/me", h.Me)
	protected.POST("/auth/change-password", h.ChangePassword)

	users := protected.Group("/users", middleware.RequireAdmin())
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.PUT("/:id", h.UpdateUser)
	users.PATCH("/:id/status", h.ToggleUserStatus)
	users.DELETE("/:id", h.DeactivateUser)
}

// registerShopRoutes registers the shop profile. Reading it needs no login;
// the till shows the header before anyone signs in.
func registerShopRoutes(rg *gin.RouterGroup, cfg RouterConfig, svc *services, base *handlers.BaseHandler) {
	h := handlers.NewShopHandler(base, svc.shop)

	rg.GET("/shop", h.Get)
	rg.PUT("/shop", middleware.Auth(cfg.JWTValidator), middleware.RequireAdmin(), h.Update)
}

// registerCatalogRoutes registers brand, product and stock item endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, svc *services, base *handlers.BaseHandler) {
	admin := middleware.RequireAdmin()

	// --- BRANDS ---
	{
		h := handlers.NewBrandHandler(base, svc.brands)
		group := rg.Group("/brands")
		group.GET("/product-counts", h.ProductCounts)
		RegisterCatalogRoutes(group, h, appctx.RoleAdmin)
	}

	// --- PRODUCTS ---
	{
		h := handlers.NewProductHandler(base, svc.products)
		RegisterCatalogRoutes(rg.Group("/products"), h, appctx.RoleAdmin)
		rg.GET("/pos/catalog", h.POSCatalog)
	}

	// --- STOCK ITEMS ---
	{
		h := handlers.NewStockItemHandler(base, svc.stockItems, svc.stock)
		group := rg.Group("/stock-items")
		group.GET("/low", h.Low)
		group.POST("/:id/add", admin, h.Add)
		group.POST("/:id/reduce", admin, h.Reduce)
		RegisterCatalogRoutes(group, h, appctx.RoleAdmin)
	}
}

// registerSalesRoutes registers bill and order endpoints. Any staff member may sell.
func registerSalesRoutes(rg *gin.RouterGroup, svc *services, base *handlers.BaseHandler) {
	// --- BILLS ---
	{
		h := handlers.NewBillHandler(base, svc.bills, svc.pricer)
		group := rg.Group("/bills")
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/by-number/:number", h.ByNumber)
		group.GET("/:id", h.Get)
		group.GET("/:id/receipt", h.Receipt)
		group.POST("/:id/cancel", middleware.RequireAdmin(), h.Cancel)
	}

	// --- ORDERS ---
	{
		h := handlers.NewOrderHandler(base, svc.orders)
		group := rg.Group("/orders")
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/pending", h.Pending)
		group.GET("/:id", h.Get)
		group.PATCH("/:id/status", h.UpdateStatus)
		group.POST("/:id/payments", h.AddPayment)
		group.DELETE("/:id", h.Cancel)
	}
}

// registerStockRoutes registers daily product stock endpoints.
func registerStockRoutes(rg *gin.RouterGroup, svc *services, base *handlers.BaseHandler) {
	h := handlers.NewStockHandler(base, svc.stock)
	admin := middleware.RequireAdmin()

	group := rg.Group("/stock")
	group.POST("", admin, h.Add)
	group.POST("/reduce", admin, h.Reduce)
	group.POST("/:id/clear", admin, h.Clear)
	group.GET("/current", h.Current)
	group.GET("/day", h.Day)
	group.GET("/products/:id/history", h.ProductHistory)
	group.GET("/report", admin, h.Report)
}

// registerSupplierRoutes registers supplier catalog and ledger endpoints (admin only).
func registerSupplierRoutes(rg *gin.RouterGroup, svc *services, base *handlers.BaseHandler) {
	admin := middleware.RequireAdmin()
	ledger := handlers.NewSupplierLedgerHandler(base, svc.ledger)

	group := rg.Group("/suppliers", admin)
	group.GET("/balances", ledger.Balances)
	group.POST("/:id/payments", ledger.AddPayment)
	group.GET("/:id/payments", ledger.Payments)
	group.GET("/:id/outstanding", ledger.Outstanding)
	RegisterCatalogRoutes(group, handlers.NewSupplierHandler(base, svc.suppliers), appctx.RoleAdmin)

	rg.GET("/supplier-payments", admin, ledger.ByDateRange)
}

// registerReportRoutes registers report endpoints (admin only).
func registerReportRoutes(rg *gin.RouterGroup, svc *services, base *handlers.BaseHandler) {
	h := handlers.NewReportsHandler(base, svc.reports)

	group := rg.Group("/reports", middleware.RequireAdmin())
	group.GET("/daily", h.Daily)
	group.GET("/monthly", h.Monthly)
	group.GET("/sales", h.SalesByRange)
	group.GET("/top-items", h.TopItems)
	group.GET("/orders", h.OrderStats)
	group.GET("/dashboard", h.Dashboard)
}
