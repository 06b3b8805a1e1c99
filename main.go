package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clearledger/vigil/api/audit"
	"github.com/clearledger/vigil/api/config"
	"github.com/clearledger/vigil/api/controller"
	"github.com/clearledger/vigil/api/dao"
	"github.com/clearledger/vigil/api/db"
	logger "github.com/clearledger/vigil/api/logging"
	"github.com/clearledger/vigil/api/router"
	"github.com/clearledger/vigil/api/search"
	"github.com/clearledger/vigil/api/service"
	"github.com/clearledger/vigil/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger("logging")
	defer logger.Sync()

	// Initialize the audit chain store
	if err := db.InitAuditDB(); err != nil {
		logger.Fatal("Failed to initialize audit chain store", zap.Error(err))
	}
	defer db.CloseAuditDB()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil()
	cacheService := util.NewCacheService()
	notificationService := util.NewNotificationService()

	auditRepository := audit.NewGormRepository(db.AuditDB)
	auditService := audit.NewService(auditRepository, config.GetString("audit.secret"), eventBus)

	// Best-effort search mirror; the chain store stays the record of truth
	searchIndexer, err := search.NewIndexer(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Warn("Search mirror disabled", zap.Error(err))
	} else {
		searchIndexer.Subscribe(eventBus)
	}

	// Initialize DAOs
	clientDAO := dao.NewClientDAO(db.Neo4jDriver)

	// Initialize services
	clientService := service.NewClientService(
		clientDAO,
		validationUtil,
		cacheService,
		notificationService,
		eventBus,
		auditService,
	)

	// Initialize controllers
	controllers := controller.NewControllers(
		controller.NewAuditController(auditService, cacheService, notificationService),
		controller.NewClientController(clientService),
	)

	// Set up the router and server
	engine := router.SetupRouter(controllers, 100, time.Minute) // 100 requests per minute
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
