package main

import (
	"movie-catalog/internal/handler"
	"movie-catalog/internal/middleware"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/config"
	"movie-catalog/pkg/database"
	"movie-catalog/pkg/logger"
	"movie-catalog/pkg/session"
	"movie-catalog/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting movie catalog service...", zap.String("environment", cfg.Server.Env))

	// Initialize database (includes migrations)
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Stores and session manager
	db := database.GetDB()
	users := store.NewGormUserStore(db)
	videos := store.NewGormVideoStore(db)
	lookups := store.NewGormLookupStore(db)
	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.MaxAge)

	// Handlers
	authHandler := handler.NewAuthHandler(users, lookups, sessions)
	userHandler := handler.NewUserHandler(users, lookups, sessions, cfg.Catalog.PageSize)
	videoHandler := handler.NewVideoHandler(videos, lookups, sessions, cfg.Catalog.PageSize)
	lookupHandler := handler.NewLookupHandler(lookups)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	e.Use(middleware.AntiForgery())

	// Public routes - no authentication required
	e.GET("/", handler.Hello)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", prometheus.HandlerFunc())

	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Authenticated routes
	authed := e.Group("", middleware.RequireAuth(sessions))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/me", authHandler.MyDetails)

	authed.GET("/genres", lookupHandler.Genres)
	authed.GET("/countries", lookupHandler.Countries)
	authed.GET("/images", lookupHandler.Images)

	videosGroup := authed.Group("/videos")
	videosGroup.GET("", videoHandler.List, middleware.RequirePermission(middleware.ActionVideosList))
	videosGroup.GET("/new", videoHandler.CreateForm, middleware.RequirePermission(middleware.ActionVideosCreate))
	videosGroup.POST("", videoHandler.Create, middleware.RequirePermission(middleware.ActionVideosCreate))
	videosGroup.GET("/:id", videoHandler.Detail, middleware.RequirePermission(middleware.ActionVideosDetail))
	videosGroup.GET("/:id/edit", videoHandler.EditForm, middleware.RequirePermission(middleware.ActionVideosEdit))
	videosGroup.POST("/:id", videoHandler.Update, middleware.RequirePermission(middleware.ActionVideosEdit))
	videosGroup.GET("/:id/delete", videoHandler.DeleteConfirm, middleware.RequirePermission(middleware.ActionVideosDelete))
	videosGroup.POST("/:id/delete", videoHandler.Delete, middleware.RequirePermission(middleware.ActionVideosDelete))

	// Admin-only user management
	usersGroup := authed.Group("/users")
	usersGroup.GET("", userHandler.List, middleware.RequirePermission(middleware.ActionUsersList))
	usersGroup.GET("/new", userHandler.CreateForm, middleware.RequirePermission(middleware.ActionUsersCreate))
	usersGroup.POST("", userHandler.Create, middleware.RequirePermission(middleware.ActionUsersCreate))
	usersGroup.GET("/:id", userHandler.Detail, middleware.RequirePermission(middleware.ActionUsersDetail))
	usersGroup.GET("/:id/edit", userHandler.EditForm, middleware.RequirePermission(middleware.ActionUsersEdit))
	usersGroup.POST("/:id", userHandler.Update, middleware.RequirePermission(middleware.ActionUsersEdit))
	usersGroup.GET("/:id/delete", userHandler.DeleteConfirm, middleware.RequirePermission(middleware.ActionUsersDelete))
	usersGroup.POST("/:id/delete", userHandler.Delete, middleware.RequirePermission(middleware.ActionUsersDelete))

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
