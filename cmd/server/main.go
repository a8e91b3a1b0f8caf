package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/maillots/storefront/internal/application/cart"
	catalogapp "github.com/maillots/storefront/internal/application/catalog"
	checkoutapp "github.com/maillots/storefront/internal/application/checkout"
	"github.com/maillots/storefront/internal/application/dashboard"
	identityapp "github.com/maillots/storefront/internal/application/identity"
	"github.com/maillots/storefront/internal/application/invoice"
	"github.com/maillots/storefront/internal/application/notification"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/infrastructure/auth"
	"github.com/maillots/storefront/internal/infrastructure/cache"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/maillots/storefront/internal/infrastructure/logger"
	"github.com/maillots/storefront/internal/infrastructure/mail"
	"github.com/maillots/storefront/internal/infrastructure/persistence"
	"github.com/maillots/storefront/internal/infrastructure/printing"
	"github.com/maillots/storefront/internal/infrastructure/telemetry"
	"github.com/maillots/storefront/internal/interfaces/http/handler"
	"github.com/maillots/storefront/internal/interfaces/http/middleware"
	"github.com/maillots/storefront/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/maillots/storefront/docs"
)

//	@title			Maillots Storefront API
//	@version		1.0
//	@description	Football jersey storefront: catalog, cart, checkout and back office.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromLogConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = tel.Logger(log)

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(time.Duration(cfg.Database.SlowQueryMs)*time.Millisecond))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		// The SQL migrations target Postgres; a local sqlite file gets its schema from the models.
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}
	if err := tel.InstrumentDB(db.DB, cfg.Database.DBName); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	paymentLogRepo := persistence.NewGormPaymentLogRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	customizationRepo := persistence.NewGormCustomizationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	templateRepo := persistence.NewGormEmailTemplateRepository(db.DB)
	emailLogRepo := persistence.NewGormEmailLogRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	backends := cache.NewBackends(startCtx, cfg, log)
	cancelStart()
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}()

	// Services
	reconciler := reconciliation.NewService(
		orderRepo, paymentRepo, paymentLogRepo, cartRepo, customizationRepo, txScope,
		log.Named("reconciliation"),
	)
	reconciler.SetLocker(backends.Locker, cfg.Reconciliation.LockTTL)
	reconciler.SetMetrics(tel.Metrics)

	emailService := notification.NewEmailService(
		cfg.Email, templateRepo, emailLogRepo, userRepo, orderRepo, cartRepo,
		mail.NewSMTPSender(cfg.Email, log.Named("smtp")),
		log.Named("email"),
	)
	if backends.Quota != nil {
		emailService.SetRateLimiter(backends.Quota)
	}
	emailService.SetMetrics(tel.Metrics)

	productService := catalogapp.NewProductService(
		productRepo, customizationRepo, emailService, reconciler,
		cfg.Catalog.LowStockThreshold, log.Named("catalog"),
	)
	cartService := cartapp.NewCartService(cartRepo, productRepo, customizationRepo)
	checkoutService := checkoutapp.NewCheckoutService(
		orderRepo, cartRepo, productRepo, txScope, cfg.Shipping,
		emailService, reconciler, log.Named("checkout"),
	)
	checkoutService.SetMetrics(tel.Metrics)
	dashboardService := dashboard.NewDashboardService(
		orderRepo, paymentRepo, reconciler, emailService, log.Named("dashboard"),
	)

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if backends.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(backends.Client, cache.KeyPrefix+"token:blacklist:")
	}
	authService := identityapp.NewAuthService(userRepo, auth.NewJWTService(cfg.JWT), blacklist, log.Named("auth"))

	var pdfRenderer invoice.PDFRenderer
	if cfg.Invoice.PDFEnabled {
		chrome := printing.NewChromedpRenderer(printing.ConfigFromInvoice(cfg.Invoice, log.Named("printing")))
		defer func() {
			_ = chrome.Close()
		}()
		pdfRenderer = chrome
	}
	invoiceService := invoice.NewService(orderRepo, userRepo, pdfRenderer, cfg.App.Name, log.Named("invoice"))

	// Handlers
	handlers := router.Handlers{
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Catalog:  handler.NewCatalogHandler(productService),
		Admin:    handler.NewAdminHandler(dashboardService, reconciler, checkoutService),
		Auth:     handler.NewAuthHandler(authService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
	}
	healthHandler := handler.NewHealthHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: tel.ServiceName(),
		Enabled:     tel.Enabled(),
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", healthHandler.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	authenticate := middleware.Authenticate(authService)
	r := router.NewRouter(engine)
	throttleLogin := middleware.ThrottleByIP(backends.Logins, int(cfg.HTTP.LoginWindow.Seconds()))
	r.Register(router.AuthGroup(handlers.Auth, authenticate, throttleLogin))
	r.Register(router.CatalogGroup(handlers.Catalog))
	r.Register(router.StoreGroup(handlers, authenticate))
	r.Register(router.AdminGroup(handlers, authenticate, middleware.RequireStaff()))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
