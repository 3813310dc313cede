package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"moneta/internal/config"
	"moneta/internal/database"
	"moneta/internal/handlers"
	"moneta/internal/lock"
	"moneta/internal/logger"
	"moneta/internal/middleware"
	"moneta/internal/notify"
	"moneta/internal/services"
	"moneta/internal/validator"

	_ "moneta/internal/docs" // Import swagger docs
)

// @title           Moneta API
// @version         1.0
// @description     Moneta tracks expenses, recurring payments, income paydays, and budget limits.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

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
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Per-user processing lease: Redis when configured, in-process otherwise
	var locker lock.Locker = lock.NewMemoryLocker()
	if appConfig.RedisAddr != "" {
		redisLocker, err := lock.NewRedisLocker(ctx, appConfig.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = redisLocker
		log.Infof("Using Redis processing lease at %s", appConfig.RedisAddr)
	}

	// Occurrence publishing: AMQP when configured, discarded otherwise
	var publisher notify.Publisher = notify.NopPublisher{}
	if appConfig.AMQPURL != "" {
		amqpPublisher, err := notify.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Infof("Publishing occurrences to exchange %s", appConfig.AMQPExchange)
	}

	// Initialize services
	db := dbManager.DB()
	expenseService := services.NewExpenseService(db)
	recurringService := services.NewRecurringService(db)
	incomeService := services.NewIncomeService(db)
	budgetService := services.NewBudgetService(db)
	processor := services.NewRecurringProcessor(db, locker, publisher)

	// Initialize handlers
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	recurringHandler := handlers.NewRecurringHandler(recurringService, processor)
	incomeHandler := handlers.NewIncomeHandler(incomeService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

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

	// API v1 group, scoped to the requesting user
	v1 := router.Group("/api/v1")
	v1.Use(middleware.UserScope())

	// Expense routes
	expenses := v1.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/summary", expenseHandler.GetExpenseSummary)
	expenses.GET("/:id", expenseHandler.GetExpenseByID)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Recurring expense routes
	recurring := v1.Group("/recurring-expenses")
	recurring.POST("", recurringHandler.CreateRecurringExpense)
	recurring.GET("", recurringHandler.GetRecurringExpenses)
	recurring.POST("/process", recurringHandler.ProcessRecurringExpenses)
	recurring.GET("/:id", recurringHandler.GetRecurringExpenseByID)
	recurring.PUT("/:id", recurringHandler.UpdateRecurringExpense)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurringExpense)

	// Income routes
	income := v1.Group("/income")
	income.GET("", incomeHandler.GetIncome)
	income.PUT("", incomeHandler.PutIncome)

	// Budget routes
	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/progress", budgetHandler.GetBudgetProgress)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Infof("Starting Moneta API server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// In-process scheduler so due templates materialize even without the
	// dedicated worker running.
	group.Go(func() error {
		ticker := time.NewTicker(appConfig.ProcessInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				count, err := processor.ProcessAll(gctx, time.Now())
				if err != nil {
					log.Errorw("scheduled processing run failed", "error", err)
					continue
				}
				if count > 0 {
					log.Infow("scheduled processing run complete", "materialized", count)
				}
			}
		}
	})

	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
