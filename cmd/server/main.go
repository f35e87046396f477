package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/kimshinchol/nnponline-sub000/internal/config"
	"github.com/kimshinchol/nnponline-sub000/internal/constants"
	"github.com/kimshinchol/nnponline-sub000/internal/database"
	"github.com/kimshinchol/nnponline-sub000/internal/handlers"
	"github.com/kimshinchol/nnponline-sub000/internal/middleware"
	"github.com/kimshinchol/nnponline-sub000/internal/repository"
	"github.com/kimshinchol/nnponline-sub000/internal/services"
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
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Printf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// CORS for the browser frontend
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Connection supervisor: circuit breaker plus idle shutdown
	idleStop := make(chan struct{})
	supervisor := database.NewSupervisor(time.Now, func() { close(idleStop) })
	supervisor.StartIdleWatch(idleStop)

	sqlDB, err := database.GetDB().DB()
	if err != nil {
		log.Fatalf("Failed to access connection pool: %v", err)
	}
	r.Use(middleware.DBHealth(supervisor, sqlDB.Ping))

	// Repositories and services
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, projectRepo)
	backupService := services.NewBackupService(taskRepo, userRepo)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	backupHandler := handlers.NewBackupHandler(backupService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task tracker API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Admin user management
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		// Projects
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth(), middleware.RequireApproved())
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.DELETE("/:id", middleware.RequireAdmin(), projectHandler.DeleteProject)
		}

		// Tasks
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(), middleware.RequireApproved())
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/user", taskHandler.ListUserTasks)
			tasks.GET("/date", taskHandler.ListTasksByDate)
			tasks.GET("/team/:team", taskHandler.ListTeamTasks)
			tasks.GET("/project", taskHandler.ListProjectTasks)
			tasks.GET("/project/:id", taskHandler.ListProjectTasks)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/move-to-cowork", taskHandler.MoveToCoWork)

			tasks.GET("/co-work", taskHandler.ListCoWorkTasks)
			tasks.POST("/co-work", taskHandler.CreateCoWorkTask)
			tasks.POST("/co-work/:id/accept", taskHandler.AcceptCoWork)
			tasks.DELETE("/co-work/:id", taskHandler.DeleteTask)

			tasks.POST("/archive", middleware.RequireAdmin(), taskHandler.ArchiveTasks)
			tasks.GET("/archived", taskHandler.ListArchivedTasks)
		}

		// Backup / export (admin)
		backup := api.Group("/backup")
		backup.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			backup.GET("/tasks", backupHandler.ExportTasks)
			backup.DELETE("/tasks", backupHandler.DeleteTasks)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until the idle watchdog decides to stop the process.
	<-idleStop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Server stopped")
}
