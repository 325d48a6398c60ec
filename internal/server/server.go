package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"fuelcards/internal/auth"
	"fuelcards/internal/cache"
	"fuelcards/internal/card"
	"fuelcards/internal/client"
	"fuelcards/internal/config"
	"fuelcards/internal/fueltype"
	"fuelcards/internal/operation"
	"fuelcards/internal/station"
	"fuelcards/internal/store"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
}

func New(storeClient *store.Client, rdb *redis.Client, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateBurst))
	router.Use(corsMiddleware())

	opsCache := cache.NewOperations(rdb, cfg.CacheTTL)
	operationService := operation.NewService(storeClient, opsCache)
	cardService := card.NewService(storeClient, operationService)
	clientService := client.NewService(storeClient)

	clientHandler := client.NewHandler(clientService, cfg.JWTSecret)
	cardHandler := card.NewHandler(cardService)
	operationHandler := operation.NewHandler(operationService)
	stationHandler := station.NewHandler(storeClient)
	fuelTypeHandler := fueltype.NewHandler(storeClient)

	public := router.Group("/auth")
	{
		public.POST("/login", clientHandler.Login)
		public.POST("/refresh", clientHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", clientHandler.Me)
		protected.GET("/cards", cardHandler.ListMine)
		protected.GET("/cards/:cardID/operations", operationHandler.CardStatement)
		protected.PUT("/cards/:cardID/limit", cardHandler.SetLimit)
		protected.POST("/cards/:cardID/block", cardHandler.Block)
		protected.POST("/cards/:cardID/unblock", cardHandler.Unblock)
		protected.POST("/transfers", cardHandler.Transfer)
		protected.GET("/stations", stationHandler.List)
		protected.GET("/fuel-types", fuelTypeHandler.List)
	}

	adminMiddleware := auth.RequireRole(auth.RoleAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/clients", clientHandler.List)
		admin.POST("/clients", clientHandler.Create)
		admin.PUT("/clients", clientHandler.Update)
		admin.DELETE("/clients", clientHandler.Delete)

		admin.GET("/stations", stationHandler.List)
		admin.POST("/stations", stationHandler.Create)
		admin.PUT("/stations", stationHandler.Update)
		admin.DELETE("/stations", stationHandler.Delete)

		admin.GET("/fuel-types", fuelTypeHandler.List)
		admin.POST("/fuel-types", fuelTypeHandler.Create)
		admin.PUT("/fuel-types", fuelTypeHandler.Update)
		admin.DELETE("/fuel-types", fuelTypeHandler.Delete)

		admin.GET("/cards", cardHandler.List)
		admin.POST("/cards", cardHandler.Create)
		admin.PUT("/cards", cardHandler.Update)
		admin.DELETE("/cards", cardHandler.Delete)
		admin.POST("/cards/:cardID/reconcile", cardHandler.Reconcile)

		admin.GET("/operations", operationHandler.List)
		admin.POST("/operations", operationHandler.Create)
		admin.PUT("/operations", operationHandler.Update)
		admin.DELETE("/operations", operationHandler.Delete)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
