package main

import (
	"fmt"
	"net/http"
	"os"
	"tally/internal/config"
	"tally/internal/database"
	"tally/internal/handlers"
	"tally/internal/logger"
	"tally/internal/middleware"
	"tally/internal/models"
	"tally/internal/services"
	"tally/internal/validator"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Tally API
// @version         1.0
// @description     Tally is a multi-tenant finance tracker: teams record transactions against accounts, categories, and merchants, with balance counters kept consistent by construction and reconciled on a schedule.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey PipelineKey
// @in header
// @name X-API-Key
// @description Operator key for the batch import and reconciliation endpoints.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	balanceService := services.NewBalanceService()
	transactionService := services.NewTransactionService(db, balanceService)
	accountService := services.NewAccountService(db, transactionService)
	categoryService := services.NewCategoryService(db, transactionService)
	merchantService := services.NewMerchantService(db, transactionService)
	tagService := services.NewTagService(db)
	reconciliationService := services.NewReconciliationService(db)
	importService := services.NewImportService(db, transactionService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	merchantHandler := handlers.NewMerchantHandler(merchantService, auditService)
	tagHandler := handlers.NewTagHandler(tagService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	reconciliationHandler := handlers.NewReconciliationHandler(reconciliationService)
	importHandler := handlers.NewImportHandler(importService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Merchant routes
	merchants := protected.Group("/merchants")
	merchants.POST("", merchantHandler.CreateMerchant)
	merchants.GET("", merchantHandler.ListMerchants)
	merchants.GET("/:id", merchantHandler.GetMerchant)
	merchants.PUT("/:id", merchantHandler.UpdateMerchant)
	merchants.DELETE("/:id", merchantHandler.DeleteMerchant)

	// Tag routes
	tags := protected.Group("/tags")
	tags.POST("", tagHandler.CreateTag)
	tags.GET("", tagHandler.ListTags)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Pipeline routes: batch import and reconciliation, keyed separately
	// from user auth.
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/import", importHandler.Run)
	pipeline.POST("/reconciliation/:kind/refresh", reconciliationHandler.Refresh)
	pipeline.GET("/reconciliation/:kind/drift", reconciliationHandler.Drift)
	pipeline.GET("/reconciliation/:kind/:id", reconciliationHandler.Lookup)

	startReconcileLoop(reconciliationService, appConfig.ReconcileInterval)

	log.Infof("Starting Tally backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// startReconcileLoop periodically rebuilds the aggregate balance views for
// every parent kind. A failed refresh is logged and retried on the next tick.
func startReconcileLoop(recon services.ReconciliationServicer, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			for _, kind := range models.ParentKinds {
				if err := recon.Refresh(kind); err != nil {
					logger.Get().Errorw("scheduled reconciliation failed",
						"error", err,
						"parent_kind", string(kind),
					)
				}
			}
		}
	}()
}
