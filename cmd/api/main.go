package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/cache"
	"github.com/embire2/DayResellers-sub000/internal/config"
	"github.com/embire2/DayResellers-sub000/internal/database"
	"github.com/embire2/DayResellers-sub000/internal/diagnostics"
	"github.com/embire2/DayResellers-sub000/internal/events"
	"github.com/embire2/DayResellers-sub000/internal/handler"
	"github.com/embire2/DayResellers-sub000/internal/middleware"
	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/sse"
	"github.com/embire2/DayResellers-sub000/internal/utils"
	"github.com/embire2/DayResellers-sub000/internal/worker"
	"github.com/embire2/DayResellers-sub000/pkg/broadband"
)

// Handlers groups every HTTP handler wired into the router.
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Billing     *handler.BillingHandler
	Client      *handler.ClientHandler
	Product     *handler.ProductHandler
	Catalog     *handler.ProductManagementHandler
	Order       *handler.OrderHandler
	UserProduct *handler.UserProductHandler
	APISetting  *handler.APISettingHandler
	Diagnostics *handler.DiagnosticsHandler
	SSE         *handler.SSEHandler
}

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting reseller api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(1)
	}
	defer db.Close()

	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		os.Exit(1)
	}
	defer redisClient.Close()
	quoteCache := cache.NewQuoteCache(redisClient)

	// 5. Broadband.is clients, one credential set per master category
	router := service.NewCredentialRouter()
	router.Register(models.MasterCategoryFixed, broadband.NewClient(broadband.Config{
		BaseURL:  cfg.Broadband.BaseURL,
		Username: cfg.Broadband.FixedUsername,
		Password: cfg.Broadband.FixedPassword,
		Timeout:  cfg.Broadband.Timeout,
		Debug:    cfg.Env != "production",
	}))
	router.Register(models.MasterCategoryGSM, broadband.NewClient(broadband.Config{
		BaseURL:  cfg.Broadband.BaseURL,
		Username: cfg.Broadband.GSMUsername,
		Password: cfg.Broadband.GSMPassword,
		Timeout:  cfg.Broadband.Timeout,
		Debug:    cfg.Env != "production",
	}))
	for _, category := range router.Categories() {
		if _, err := router.For(category); err != nil {
			log.Warn().Str("category", string(category)).Msg("broadband credentials missing, endpoints will fail")
		}
	}

	// 6. Order events: SSE dashboard plus Kafka when brokers are configured
	hub := sse.NewHub()
	sinks := []events.Publisher{sse.NewHubPublisher(hub)}
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderEventsTopic)
		sinks = append(sinks, kafkaPublisher)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrderEventsTopic).Msg("kafka order events enabled")
	}
	publisher := events.NewFanout(sinks...)

	diag := diagnostics.NewBuffer(cfg.Diagnostics.Capacity)

	// 7. Repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewProductOrderRepository(db)
	userProductRepo := repository.NewUserProductRepository(db)
	apiSettingRepo := repository.NewAPISettingRepository(db)
	billingRepo := repository.NewBillingRepository(db)

	// 8. Services
	jwtManager := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo)
	billingService := service.NewBillingService(billingRepo)
	clientService := service.NewClientService(clientRepo)
	productService := service.NewProductService(productRepo, quoteCache)
	quoteService := service.NewQuoteService(productRepo, userRepo, quoteCache)
	orderService := service.NewOrderService(orderRepo, productRepo, clientRepo, userRepo, publisher, cfg.Billing.ChargeOnApproval)
	userProductService := service.NewUserProductService(userProductRepo, productRepo, userRepo, apiSettingRepo)
	apiSettingService := service.NewAPISettingService(apiSettingRepo)
	gatewayService := service.NewGatewayService(router, userProductRepo, apiSettingRepo, productRepo, diag)

	if cfg.Bootstrap.AdminUsername != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
			log.Error().Err(err).Msg("admin bootstrap failed")
			os.Exit(1)
		}
	}

	// 9. Handlers
	rateLimiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	defer rateLimiter.Stop()
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": db.PingContext,
			"redis":    redisClient.Ping,
		}),
		Auth:        handler.NewAuthHandler(authService, userService, rateLimiter),
		User:        handler.NewUserHandler(userService, billingService),
		Billing:     handler.NewBillingHandler(billingService),
		Client:      handler.NewClientHandler(clientService),
		Product:     handler.NewProductHandler(productService, quoteService),
		Catalog:     handler.NewProductManagementHandler(productService),
		Order:       handler.NewOrderHandler(orderService),
		UserProduct: handler.NewUserProductHandler(userProductService, gatewayService),
		APISetting:  handler.NewAPISettingHandler(apiSettingService),
		Diagnostics: handler.NewDiagnosticsHandler(diag),
		SSE:         handler.NewSSEHandler(hub),
	}

	// 10. Middleware and routes
	jwtMiddleware := middleware.NewJWTMiddleware(jwtManager, rateLimiter)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	setupRoutes(engine, handlers, jwtMiddleware)

	// 11. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	staleWorker := worker.NewStaleOrderWorker(orderRepo, cfg.Worker.StaleOrderInterval, cfg.Worker.StaleOrderAfter)
	go staleWorker.Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server failed")
			os.Exit(1)
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("kafka writer close failed")
		}
	}
	log.Info().Msg("shutdown complete")
}

func setupRoutes(router *gin.Engine, h *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.GET("/health", h.Health.GetHealth)
	v1.POST("/auth/login", h.Auth.Login)

	authed := v1.Group("")
	authed.Use(jwtMiddleware.Handle())
	{
		authed.GET("/me", h.Auth.Me)

		authed.GET("/products", h.Product.List)
		authed.GET("/products/:id", h.Product.Get)
		authed.GET("/products/:id/quote", h.Product.Quote)

		authed.GET("/clients", h.Client.List)
		authed.POST("/clients", h.Client.Create)
		authed.GET("/clients/:id", h.Client.Get)
		authed.PUT("/clients/:id", h.Client.Update)
		authed.DELETE("/clients/:id", h.Client.Delete)

		authed.POST("/orders", h.Order.Submit)
		authed.GET("/orders", h.Order.List)
		authed.GET("/orders/:id", h.Order.Get)

		authed.GET("/user-products", h.UserProduct.List)
		authed.GET("/user-products/:id", h.UserProduct.Get)
		authed.GET("/user-products/:id/endpoints", h.UserProduct.ListEndpoints)
		authed.POST("/endpoints/:id/run", h.UserProduct.RunEndpoint)

		authed.GET("/billing/transactions", h.Billing.Transactions)
	}

	admin := v1.Group("/admin")
	admin.Use(jwtMiddleware.Handle(), middleware.RequireRole(string(models.RoleAdmin)))
	{
		admin.GET("/users", h.User.List)
		admin.POST("/users", h.User.Create)
		admin.GET("/users/:id", h.User.Get)
		admin.PUT("/users/:id", h.User.Update)
		admin.POST("/users/:id/credit", h.User.AdjustCredit)
		admin.GET("/users/:id/transactions", h.User.Transactions)

		admin.GET("/categories", h.Catalog.ListCategories)
		admin.POST("/categories", h.Catalog.CreateCategory)
		admin.PUT("/categories/:id", h.Catalog.UpdateCategory)
		admin.DELETE("/categories/:id", h.Catalog.DeleteCategory)
		admin.POST("/products", h.Catalog.CreateProduct)
		admin.PUT("/products/:id", h.Catalog.UpdateProduct)
		admin.DELETE("/products/:id", h.Catalog.DeleteProduct)

		admin.GET("/api-settings", h.APISetting.List)
		admin.POST("/api-settings", h.APISetting.Create)
		admin.GET("/api-settings/:id", h.APISetting.Get)
		admin.PUT("/api-settings/:id", h.APISetting.Update)
		admin.DELETE("/api-settings/:id", h.APISetting.Delete)

		admin.GET("/orders", h.Order.List)
		admin.POST("/orders/:id/approve", h.Order.Approve)
		admin.POST("/orders/:id/reject", h.Order.Reject)

		admin.GET("/user-products", h.UserProduct.List)
		admin.POST("/user-products", h.UserProduct.Assign)
		admin.GET("/user-products/:id", h.UserProduct.Get)
		admin.PUT("/user-products/:id", h.UserProduct.Update)
		admin.DELETE("/user-products/:id", h.UserProduct.Delete)
		admin.POST("/user-products/:id/endpoints", h.UserProduct.AddEndpoint)
		admin.DELETE("/endpoints/:id", h.UserProduct.DeleteEndpoint)

		admin.GET("/diagnostics/errors", h.Diagnostics.RecentErrors)
		admin.DELETE("/diagnostics/errors", h.Diagnostics.ClearErrors)
	}

	stream := v1.Group("/admin")
	stream.Use(jwtMiddleware.WithQueryToken().Handle(), middleware.RequireRole(string(models.RoleAdmin)))
	stream.GET("/events", h.SSE.Stream)
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
