package main

import (
	"context"
	"fmt"
	"log"
	"makerLink/app/echo-server/router"
	"makerLink/business/experiment"
	"makerLink/business/learning"
	"makerLink/business/manufacturer"
	"makerLink/business/matching"
	"makerLink/business/orders"
	"makerLink/business/personalization"
	userService "makerLink/business/user"
	"makerLink/internal/middleware"
	psqlRepo "makerLink/internal/repository/postgres"
	redisRepo "makerLink/internal/repository/redis"
	"makerLink/internal/rest"
	"makerLink/pkg/config"
	"makerLink/pkg/database"
	redisdb "makerLink/pkg/database/redis"
	"makerLink/pkg/logger"
	"makerLink/pkg/metrics"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting MakerLink", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	logger.Info("Redis connected successfully")

	metrics.Init()

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	requirementRepo := psqlRepo.NewRequirementRepository(db)
	manufacturerRepo := psqlRepo.NewManufacturerRepository(db)
	capabilityRepo := psqlRepo.NewCapabilityRepository(db)
	weightProfileRepo := psqlRepo.NewWeightProfileRepository(db)
	experimentRepo := psqlRepo.NewExperimentRepository(db)
	matchHistoryRepo := psqlRepo.NewMatchHistoryRepository(db)
	assignmentRepo := redisRepo.NewAssignmentRepository(redisClient)

	// Init service
	usrService := userService.NewUserService(userRepo, validate)
	ordersService := orders.NewOrdersService(ordersRepo, requirementRepo)
	manufacturerService := manufacturer.NewManufacturerService(manufacturerRepo, capabilityRepo)

	composer := matching.NewComposer(matching.NewMatcher())
	learner := learning.NewLearner(weightProfileRepo)
	engine := experiment.NewEngine(experimentRepo, assignmentRepo)
	orchestrator := personalization.NewOrchestrator(composer, learner, engine, matchHistoryRepo)

	// Init handler
	userHandler := rest.NewUserHandler(usrService)
	ordersHandler := rest.NewOrdersHandler(ordersService)
	manufacturerHandler := rest.NewManufacturerHandler(manufacturerService)
	matchingHandler := rest.NewMatchingHandler(orchestrator, ordersService, manufacturerService)
	experimentHandler := rest.NewExperimentAdminHandler(engine)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	// Prometheus endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetOrdersRoutes(api, ordersHandler)
	router.SetupManufacturerRoutes(api, manufacturerHandler, authRequired, adminOnly)
	router.SetMatchingRoutes(api, matchingHandler)
	router.SetExperimentAdminRoutes(api, experimentHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
