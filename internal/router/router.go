package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/getmentor/notion-notifier/config"
	"github.com/getmentor/notion-notifier/internal/handlers"
	"github.com/getmentor/notion-notifier/internal/middleware"
	"github.com/getmentor/notion-notifier/pkg/metrics"
)

// WebhookPath is the endpoint configured as the Notion automation webhook URL
const WebhookPath = "/api/v1/webhooks/notion"

// New builds the gin engine with global middleware and all routes
func New(cfg *config.Config, webhookHandler *handlers.WebhookHandler, healthHandler *handlers.HealthHandler) *gin.Engine {
	router := gin.New()

	// Non-POST requests to the webhook path get 405 before any route middleware runs
	router.HandleMethodNotAllowed = true
	router.NoMethod(handlers.MethodNotAllowed)

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())

	// CORS covers the read-only /api endpoints only; the webhook route and the
	// 405 fallback never see it.
	api := router.Group("/api")
	if len(cfg.Server.AllowedOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.Server.AllowedOrigins,
			AllowMethods:  []string{"GET"},
			AllowHeaders:  []string{"Origin", "Accept", "traceparent", "tracestate"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	api.GET("/healthcheck", healthHandler.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	router.POST(WebhookPath,
		middleware.BodySizeLimitMiddleware(cfg.Webhook.MaxBodyBytes),
		middleware.WebhookSecretMiddleware(cfg.Webhook.Secret),
		webhookHandler.HandleNotionWebhook,
	)

	return router
}
