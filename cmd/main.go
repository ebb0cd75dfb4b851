package main

import (
	"net/http"

	"polling-service/internal/event"
	"polling-service/internal/handler"
	"polling-service/internal/middleware"
	"polling-service/internal/push"
	"polling-service/internal/realtime"
	"polling-service/internal/service"
	"polling-service/internal/session"
	"polling-service/internal/store"
	"polling-service/pkg/config"
	"polling-service/pkg/database"
	"polling-service/pkg/jwtutil"
	"polling-service/pkg/logger"
	"polling-service/prometheus"

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
	log.Info("Starting polling service...", cfg.LogConfig()...)

	// Main database holds the shared tenant registry
	registryDB, err := database.InitRegistry(cfg)
	if err != nil {
		log.Fatal("Failed to initialize registry database", zap.Error(err))
	}
	log.Info("Registry database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Tenant routing: one storage handle per tenant key, created on first use
	router := database.NewRouter(&cfg.DB)
	stores := store.NewManager(router)
	tenants := store.NewTenantStore(registryDB)

	// Session authority layered over the tenant-partitioned token records
	sessions := session.NewAuthority(stores)

	// Event fanout: in-process websocket hub plus the external push channel
	hub := realtime.NewHub(log)
	pushClient := push.NewClient(&cfg.Pusher)
	bus := event.NewBus(hub, pushClient, log)

	// Domain services
	authService := service.NewAuthService(tenants, stores, sessions)
	userService := service.NewUserService(stores)
	questionService := service.NewQuestionService(stores, bus)
	responseService := service.NewResponseService(stores, bus)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	questionHandler := handler.NewQuestionHandler(questionService)
	responseHandler := handler.NewResponseHandler(responseService)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.Server.FrontendOrigin},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Polling service is running"})
	})
	e.GET("/api/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	authenticated := middleware.Authenticate(sessions)

	// Authentication surface
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authenticated)
	auth.GET("/me", authHandler.Me, authenticated)

	// Account management
	users := e.Group("/api/users")
	users.Use(authenticated)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Add, middleware.RequireAdmin)
	users.PUT("/:id", userHandler.Update, middleware.RequireAdmin)
	users.DELETE("/:id", userHandler.Delete, middleware.RequireAdmin)

	// Questions
	questions := e.Group("/api/questions")
	questions.Use(authenticated)
	questions.GET("", questionHandler.List)
	questions.GET("/:id", questionHandler.Get)
	questions.GET("/:id/stats", questionHandler.Stats, middleware.RequireAdmin)
	questions.POST("", questionHandler.Create, middleware.RequireAdmin)
	questions.PUT("/:id", questionHandler.Update, middleware.RequireAdmin)
	questions.DELETE("/:id", questionHandler.Delete, middleware.RequireAdmin)

	// Responses
	responses := e.Group("/api/responses")
	responses.Use(authenticated)
	responses.POST("", responseHandler.Submit)
	responses.GET("", responseHandler.ListAll)
	responses.GET("/:questionId", responseHandler.ListByQuestion)
	responses.GET("/:questionId/user", responseHandler.OwnResponse)

	// Push-channel handshake
	e.GET("/api/beams/auth", handler.BeamsAuth, authenticated)

	// In-process real-time channel
	e.GET("/ws", realtime.ServeWS(hub, cfg.Server.FrontendOrigin))

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
