package main

import (
	"log"
	"os"

	_ "salesops/api/swagger" // swagger docs
	"salesops/internal/database"
	"salesops/internal/handler"
	"salesops/internal/middleware"
	"salesops/internal/repository"
	"salesops/internal/service"
	"salesops/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Sales Operations API
// @version         1.0
// @description     Role-based sales operations: hierarchy, daily targets, SD collections and tasks.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	logger, err := zap.NewProduction()
	if os.Getenv("GIN_MODE") != "release" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to postgres")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	accountRepo := repository.NewAccountRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	hierarchyRepo := repository.NewHierarchyRepository(db)
	targetRepo := repository.NewTargetRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	geographyRepo := repository.NewGeographyRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	accountService := service.NewAccountService(accountRepo, tokenRepo, geographyRepo)
	hierarchyService := service.NewHierarchyService(hierarchyRepo, accountRepo, logger)
	targetService := service.NewTargetService(targetRepo, hierarchyRepo, auditRepo, txManager)
	collectionService := service.NewCollectionService(collectionRepo, hierarchyRepo, auditRepo)
	taskService := service.NewTaskService(taskRepo, accountRepo, hierarchyRepo, auditRepo, wsHub)
	dashboardService := service.NewDashboardService(targetRepo, collectionRepo, accountRepo, hierarchyRepo)
	geographyService := service.NewGeographyService(geographyRepo, auditRepo, txManager, logger)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	accountHandler := handler.NewAccountHandler(accountService)
	hierarchyHandler := handler.NewHierarchyHandler(hierarchyService)
	targetHandler := handler.NewTargetHandler(targetService)
	collectionHandler := handler.NewCollectionHandler(collectionService)
	taskHandler := handler.NewTaskHandler(taskService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	geographyHandler := handler.NewGeographyHandler(geographyService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for the task event stream
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	accountHandler.RegisterRoutes(router.Group(""))
	hierarchyHandler.RegisterRoutes(router.Group(""))
	targetHandler.RegisterRoutes(router.Group(""))
	collectionHandler.RegisterRoutes(router.Group(""))
	taskHandler.RegisterRoutes(router.Group(""))
	dashboardHandler.RegisterRoutes(router.Group(""))
	geographyHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
