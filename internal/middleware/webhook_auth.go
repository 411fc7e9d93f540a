package middleware

import (
	"net/http"

	apperrors "github.com/getmentor/notion-notifier/pkg/errors"
	"github.com/getmentor/notion-notifier/pkg/logger"
	"github.com/getmentor/notion-notifier/pkg/metrics"
	"github.com/getmentor/notion-notifier/pkg/secret"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookSecretHeader carries the shared secret configured in the Notion automation
const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookSecretMiddleware validates the shared webhook secret.
// With an empty secret every request is let through.
func WebhookSecretMiddleware(webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if webhookSecret == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(WebhookSecretHeader)
		if provided == "" || !secret.TimingSafeCompare(provided, webhookSecret) {
			logger.Warn("Invalid or missing webhook secret",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Bool("header_present", provided != ""),
			)
			metrics.WebhooksReceived.WithLabelValues("unauthorized").Inc()
			_ = c.Error(apperrors.ErrUnauthorized) //nolint:errcheck
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}
