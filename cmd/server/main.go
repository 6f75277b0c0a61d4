package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/bookerloo/booking-api/internal/config"
	"github.com/bookerloo/booking-api/internal/constants"
	"github.com/bookerloo/booking-api/internal/database"
	"github.com/bookerloo/booking-api/internal/events"
	"github.com/bookerloo/booking-api/internal/handlers"
	"github.com/bookerloo/booking-api/internal/middleware"
	"github.com/bookerloo/booking-api/internal/progress"
	"github.com/bookerloo/booking-api/internal/repository"
	"github.com/bookerloo/booking-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Progress event fan-out; delivery systems subscribe here
	dispatcher := events.NewDispatcher()
	dispatcher.Subscribe(events.LogSubscriber{})

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)

	// Core services
	policy := progress.Policy{CountPendingApproval: cfg.CountPendingApprovals}
	recalc := services.NewRecalculator(db, policy, dispatcher, cfg.RecalcLockTimeout)
	guard := services.NewAccessGuard(userRepo)

	authService := services.NewAuthService(userRepo)
	bookingService := services.NewBookingService(bookingRepo, userRepo, guard)
	milestoneService := services.NewMilestoneService(milestoneRepo, bookingRepo, guard, recalc)
	taskService := services.NewTaskService(taskRepo, milestoneRepo, bookingRepo, guard, recalc)
	approvalService := services.NewApprovalService(approvalRepo, taskRepo, milestoneRepo, bookingRepo, guard, recalc, dispatcher)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	bookingHandler := handlers.NewBookingHandler(bookingService, milestoneService)
	milestoneHandler := handlers.NewMilestoneHandler(milestoneService)
	taskHandler := handlers.NewTaskHandler(taskService)
	approvalHandler := handlers.NewApprovalHandler(approvalService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Booking API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Booking routes (protected)
		bookings := api.Group("/bookings")
		bookings.Use(middleware.RequireAuth())
		{
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", middleware.RequireBookingAccess(), bookingHandler.GetBooking)
			bookings.DELETE("/:id", middleware.RequireBookingAccess(), bookingHandler.DeleteBooking)
			bookings.GET("/:id/milestones", middleware.RequireBookingAccess(), bookingHandler.ListMilestones)
			bookings.POST("/:id/milestones", middleware.RequireBookingAccess(), milestoneHandler.CreateMilestone)
		}

		// Milestone routes (protected)
		milestones := api.Group("/milestones")
		milestones.Use(middleware.RequireAuth())
		{
			milestones.GET("/:id", middleware.RequireMilestoneAccess(), milestoneHandler.GetMilestone)
			milestones.PATCH("/:id", middleware.RequireMilestoneAccess(), milestoneHandler.UpdateMilestone)
			milestones.PATCH("/:id/status", middleware.RequireMilestoneAccess(), milestoneHandler.UpdateMilestoneStatus)
			milestones.DELETE("/:id", middleware.RequireMilestoneAccess(), milestoneHandler.DeleteMilestone)
			milestones.GET("/:id/tasks", middleware.RequireMilestoneAccess(), taskHandler.ListTasks)
			milestones.POST("/:id/tasks", middleware.RequireMilestoneAccess(), taskHandler.CreateTask)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", middleware.RequireTaskAccess(), taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), taskHandler.DeleteTask)
		}

		// Approval routes (protected)
		approvals := api.Group("/approvals")
		approvals.Use(middleware.RequireAuth())
		{
			approvals.GET("", approvalHandler.ListApprovals)
			approvals.POST("", approvalHandler.RequestApproval)
			approvals.POST("/:id/resolve", approvalHandler.ResolveApproval)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
