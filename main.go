package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propertyservices/config"
	"propertyservices/cron"
	"propertyservices/database"
	"propertyservices/database/repository"
	"propertyservices/handlers"
	"propertyservices/middleware"
	"propertyservices/observability"
	"propertyservices/routes"
	"propertyservices/services/location"
	"propertyservices/services/matching"
	"propertyservices/services/pricing"
	"propertyservices/services/tasks"
	"propertyservices/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	utils.InitRedis()

	engineStore, err := config.OpenEngineStore(config.AppConfig.EngineConfigPath, logger)
	if err != nil {
		logger.Fatal("main: failed to load engine configuration",
			zap.String("path", config.AppConfig.EngineConfigPath),
			zap.Error(err))
	}
	engineStore.Watch()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewEngineCollector(registry)
	if err != nil {
		logger.Fatal("main: failed to register metrics", zap.Error(err))
	}

	// repositories.
	providerRepo := repository.NewMongoProviderRepo(database.DB(), logger)
	marketRepo := repository.NewMongoMarketRepo(database.DB(), logger)
	locationRepo := repository.NewRedisLocationRepo(utils.GetGeoClient(), utils.LocationKeyPrefix)
	quoteLog := repository.NewRedisQuoteLog(utils.GetCacheClient(), utils.QuoteSampleRetention, logger.Named("quotes"))

	// services.
	matchingService := &matching.DefaultMatchingService{
		Locations: locationRepo,
		Providers: providerRepo,
		Markets:   marketRepo,
		Config:    engineStore,
		Metrics:   metrics,
		Logger:    logger.Named("matching"),
	}
	pricingService := &pricing.DefaultPricingService{
		Providers: providerRepo,
		Locations: locationRepo,
		Markets:   marketRepo,
		Quotes:    quoteLog,
		Matching:  matchingService,
		Config:    engineStore,
		Metrics:   metrics,
		Logger:    logger.Named("pricing"),
	}
	locationService := &location.DefaultLocationService{
		Locations: locationRepo,
		Config:    engineStore,
		Metrics:   metrics,
		Logger:    logger.Named("location"),
	}

	worker, err := cron.NewLocationWorker(config.AppConfig, locationService, logger.Named("worker"))
	if err != nil {
		logger.Fatal("main: failed to initialize location worker", zap.Error(err))
	}
	worker.Start()

	var queue tasks.Enqueuer
	var queueClient *asynq.Client
	if config.AppConfig.AsyncLocationUpdates {
		queueClient = asynq.NewClient(cron.QueueRedisOpt(config.AppConfig))
		queue = queueClient
		logger.Info("Location reports are processed asynchronously")
	}

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(healthCtx, 30*time.Second, map[string]*redis.Client{
		"geo":   utils.GetGeoClient(),
		"cache": utils.GetCacheClient(),
	}, database.MongoClient)

	// handlers.
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewServiceHandler(matchingService, pricingService, engineStore),
		handlers.NewLocationHandler(locationService, matchingService, queue),
		handlers.NewProximityAdminHandler(pricingService, engineStore),
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(metrics))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.RegisterRoutes(router, handlerBundle, metrics.Handler())

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	worker.Shutdown()
	if queueClient != nil {
		if err := queueClient.Close(); err != nil {
			logger.Warn("main: failed to close queue client", zap.Error(err))
		}
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
