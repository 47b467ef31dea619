package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	alertingapp "github.com/shopline/backend/internal/application/alerting"
	catalogapp "github.com/shopline/backend/internal/application/catalog"
	orderingapp "github.com/shopline/backend/internal/application/ordering"
	"github.com/shopline/backend/internal/infrastructure/cache"
	"github.com/shopline/backend/internal/infrastructure/config"
	"github.com/shopline/backend/internal/infrastructure/event"
	"github.com/shopline/backend/internal/infrastructure/logger"
	"github.com/shopline/backend/internal/infrastructure/persistence"
	"github.com/shopline/backend/internal/infrastructure/scheduler"
	"github.com/shopline/backend/internal/interfaces/http/handler"
	"github.com/shopline/backend/internal/interfaces/http/middleware"
	"github.com/shopline/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Shop Backend API
//	@version		1.0
//	@description	Order placement and stock reconciliation service

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Shop Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	ledgerRepo := persistence.NewGormVariantLedgerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)

	// Transaction scopes bind each application service's repositories to a
	// shared GORM transaction
	catalogTxScope := persistence.NewGormCatalogTransactionScope(db.DB)
	orderingTxScope := persistence.NewGormOrderingTransactionScope(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Alerting service (stock alerts, order notifications, dedup windows)
	alertService := alertingapp.NewAlertService(alertRepo, alertingapp.Config{
		LowStockThreshold: cfg.Alerts.LowStockThreshold,
		RenotifyWindow:    cfg.Alerts.RenotifyWindow,
	}, log)
	alertService.SetEventPublisher(eventBus)

	// Catalog service (products, variants, ledger)
	productService := catalogapp.NewProductService(productRepo, ledgerRepo, catalogTxScope, log)
	productService.SetAlertEvaluator(alertService)
	productService.SetEventPublisher(eventBus)

	// Ordering service (order placement, lifecycle, stock reconciliation)
	reconciler := orderingapp.NewStockReconciler(productRepo, log)
	orderService := orderingapp.NewOrderService(orderRepo, productRepo, reconciler, orderingTxScope, log)
	orderService.SetAlertNotifier(alertService)
	orderService.SetEventPublisher(eventBus)

	// Dashboard cache: Redis when reachable, in-memory otherwise
	var dashboardCache orderingapp.DashboardCache
	redisCache, err := cache.NewRedisDashboardCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory dashboard cache", zap.Error(err))
		dashboardCache = cache.NewInMemoryDashboardCache()
	} else {
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		dashboardCache = redisCache
	}
	orderService.SetDashboardCache(dashboardCache)

	// Stale-order sweep (if enabled)
	if cfg.Sweep.Enabled {
		sweeper := alertingapp.NewStaleOrderSweeper(orderRepo, alertService, alertingapp.SweepConfig{
			PendingSLAHours:  cfg.Sweep.PendingSLAHours,
			InvoicedSLAHours: cfg.Sweep.InvoicedSLAHours,
			ShippedSLAHours:  cfg.Sweep.ShippedSLAHours,
		}, log)
		sweepScheduler := scheduler.NewStaleOrderScheduler(sweeper, log, scheduler.StaleOrderSchedulerConfig{
			Enabled:      cfg.Sweep.Enabled,
			Interval:     cfg.Sweep.Interval,
			SweepTimeout: 10 * time.Minute,
		})
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start stale-order scheduler", zap.Error(err))
		}
		defer func() {
			if err := sweepScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping stale-order scheduler", zap.Error(err))
			}
		}()
		log.Info("Stale-order scheduler started",
			zap.Duration("interval", cfg.Sweep.Interval),
		)
	}

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	alertHandler := handler.NewAlertHandler(alertService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(productHandler).
		Register(orderHandler).
		Register(alertHandler).
		Register(systemHandler)
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
