package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/printware/printdesk/internal/server/http/handlers"
	"github.com/printware/printdesk/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.OpsFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	bulkHandler := handlers.NewBulkOrderHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	bulk := authed.Group("/bulk-orders")
	bulk.POST("/upload", bulkHandler.Upload)
	bulk.GET("", bulkHandler.List)
	bulk.GET("/:id/status", bulkHandler.Status)
	bulk.POST("/:id/cancel", bulkHandler.Cancel)

	orders := authed.Group("/orders")
	orders.GET("/:id", orderHandler.Get)
	orders.GET("/:id/timeline", orderHandler.Timeline)

	payment := authed.Group("/payment")
	payment.POST("/initialize", paymentHandler.Initialize)
	payment.POST("/verify", paymentHandler.Verify)

	return engine
}
