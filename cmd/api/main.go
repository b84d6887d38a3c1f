package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "backoffice/api/swagger" // swagger docs
	"backoffice/internal/confirm"
	"backoffice/internal/database"
	"backoffice/internal/handler"
	"backoffice/internal/middleware"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/internal/websocket"
)

// @title           Back-Office Administration API
// @version         1.0
// @description     Multi-tenant back-office API for managing branches, warehouses, managers, and suppliers with confirmation-gated mutations and a full audit trail.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("no configs/.env file found, using environment")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "backoffice")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.Info("connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	companyRepo := repository.NewCompanyRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	managerRepo := repository.NewManagerRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	assignRepo := repository.NewAssignmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	gate := confirm.NewGate(adminRepo, log)

	auditService := service.NewAuditService(auditRepo, wsHub, log)
	authService := service.NewAuthService(adminRepo, companyRepo)
	companyService := service.NewCompanyService(companyRepo)
	managerService := service.NewManagerService(managerRepo, companyRepo, assignRepo, gate, txManager, auditService)
	branchService := service.NewBranchService(branchRepo, warehouseRepo, assignRepo, gate, txManager, auditService)
	warehouseService := service.NewWarehouseService(warehouseRepo, branchRepo, assignRepo, gate, txManager, auditService)
	supplierService := service.NewSupplierService(supplierRepo, managerRepo, assignRepo, gate, txManager, auditService)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	companyHandler := handler.NewCompanyHandler(companyService)
	managerHandler := handler.NewManagerHandler(managerService)
	branchHandler := handler.NewBranchHandler(branchService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Frontend URL
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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("")
	authHandler.RegisterRoutes(api)
	companyHandler.RegisterRoutes(api)
	managerHandler.RegisterRoutes(api)
	branchHandler.RegisterRoutes(api)
	warehouseHandler.RegisterRoutes(api)
	supplierHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := getenv("PORT", "8080")
	log.WithField("port", port).Info("server listening")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
