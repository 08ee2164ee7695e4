package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/audit"
	"github.com/Fadil369/brainsait-healthcare-platform/internal/cache"
	"github.com/Fadil369/brainsait-healthcare-platform/internal/config"
	"github.com/Fadil369/brainsait-healthcare-platform/internal/publisher"
	"github.com/Fadil369/brainsait-healthcare-platform/internal/repository"
	"github.com/Fadil369/brainsait-healthcare-platform/internal/server"
	"github.com/Fadil369/brainsait-healthcare-platform/internal/service"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil {
		log.Warn("Could not load .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err).Fatal("Could not load configuration")
	}

	if cfg.App.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	log.Info("Starting database migration...")
	m, err := migrate.New("file://db/migrations", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not create migrate instance")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.WithField("error", err).Fatal("Could not apply migration")
	}
	log.Info("Database migration finished successfully.")

	db, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not connect to the database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		log.WithField("error", err).Fatal("Could not ping the database")
	}
	log.Info("Successfully connected to the PostgreSQL database.")

	productCache, err := cache.NewProductCache(cfg.Redis.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not connect to Redis")
	}
	defer productCache.Close()
	if productCache == nil {
		log.Info("REDIS_URL is not set; the product cache is disabled.")
	}

	var analyticsService *service.AnalyticsService
	if cfg.Kafka.BootstrapServers != "" {
		analyticsPublisher, err := publisher.NewAnalyticsPublisher(cfg.Kafka.BootstrapServers, cfg.Kafka.AnalyticsTopic)
		if err != nil {
			log.WithField("error", err).Fatal("Could not create the analytics publisher")
		}
		defer analyticsPublisher.Close()
		analyticsService = service.NewAnalyticsService(analyticsPublisher)
	} else {
		log.Info("KAFKA_BOOTSTRAP_SERVERS is not set; analytics publishing is disabled.")
	}

	// Create repositories
	productRepository := repository.NewPostgresProductRepository(db)
	orderRepository := repository.NewPostgresOrderRepository(db)

	// Create services
	productService := service.NewProductService(productRepository, productCache, cfg.App.Currency, cfg.App.Region)
	orderService := service.NewOrderService(orderRepository, productRepository, analyticsService, cfg.App.Currency)

	// Create servers
	auditLog := audit.NewLogger(os.Stdout)
	srv := server.NewServer(db, productCache, server.AppInfo{
		Name:     cfg.App.Name,
		Version:  cfg.App.Version,
		Region:   cfg.App.Region,
		Currency: cfg.App.Currency,
		Language: cfg.App.Language,
	})
	productServer := server.NewProductServer(productService, auditLog)
	orderServer := server.NewOrderServer(orderService, auditLog)

	// Setup Echo. The audit middleware is outermost; Recover runs inside it
	// so a handler panic still produces exactly one audit event.
	e := echo.New()

	e.Use(audit.Middleware(auditLog))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableErrorHandler: true,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		UnsafeWildcardOriginWithAllowCredentials: true,
	}))

	// System endpoints
	e.GET("/", srv.Root)
	e.GET("/health", srv.HealthCheck)
	e.GET("/ready", srv.ReadyCheck)

	// CRUD endpoints
	api := e.Group("/api")
	products := api.Group("/products")
	products.GET("", productServer.ListProducts)
	products.GET("/:id", productServer.GetProductByID)
	products.POST("", productServer.CreateProduct)
	products.PUT("/:id", productServer.UpdateProduct)
	products.DELETE("/:id", productServer.DeleteProduct)

	orders := api.Group("/orders")
	orders.POST("", orderServer.CreateOrder)
	orders.GET("", orderServer.ListOrders)
	orders.GET("/:id", orderServer.GetOrder)
	orders.PATCH("/:id/status", orderServer.UpdateOrderStatus)
	orders.POST("/:id/cancel", orderServer.CancelOrder)

	log.WithField("port", cfg.App.Port).Info("Store service is starting with Echo")

	if err := e.Start(":" + cfg.App.Port); err != nil && err != http.ErrServerClosed {
		log.WithField("error", err).Fatal("Echo server failed to start")
	}
}
