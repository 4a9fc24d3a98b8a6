package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/server/handlers"
)

// Options holds the handlers and static paths served by the engine.
type Options struct {
	Inventory *handlers.InventoryHandler
	// Webhook is optional; the WhatsApp routes are skipped when nil.
	Webhook   *handlers.WebhookHandler
	ImagesDir string
}

// New wires the Gin engine with required routes and middlewares.
func New(opts Options, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", opts.Inventory.Gallery)
	if opts.ImagesDir != "" {
		r.Static("/images", opts.ImagesDir)
	}

	api := r.Group("/api")
	api.GET("/available", opts.Inventory.Available)
	api.GET("/search", opts.Inventory.Search)
	api.GET("/profit/expected", opts.Inventory.ExpectedProfit)
	api.GET("/profit/net", opts.Inventory.NetProfit)

	if opts.Webhook != nil {
		r.GET("/webhook", opts.Webhook.Verify)
		r.POST("/webhook", opts.Webhook.Receive)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Bool("webhook", opts.Webhook != nil))
	}

	return r
}

// zapLoggerMiddleware logs one line per request. Health checks and image
// hits go to debug; failures are raised to warn or error by status class.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		case c.Request.URL.Path == "/healthz" || strings.HasPrefix(c.Request.URL.Path, "/images/"):
			logger.Debug("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
