package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/getmentor/notion-notifier/internal/models"
	"github.com/getmentor/notion-notifier/internal/services"
	apperrors "github.com/getmentor/notion-notifier/pkg/errors"
	"github.com/getmentor/notion-notifier/pkg/logger"
	"github.com/getmentor/notion-notifier/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Response bodies of the webhook endpoint
const (
	respOK                 = "OK"
	respInvalidJSON        = "Bad Request: invalid JSON"
	respMissingProperties  = "Bad Request: missing data.properties"
	respDeliveryFailed     = "Bad Gateway: delivery failed"
	respInternalError      = "Internal Server Error"
	respMethodNotAllowed   = "Method Not Allowed"
	missingPropertiesField = "data.properties"
)

type WebhookHandler struct {
	service  services.NotificationServiceInterface
	validate *validator.Validate
}

func NewWebhookHandler(service services.NotificationServiceInterface) *WebhookHandler {
	return &WebhookHandler{
		service:  service,
		validate: validator.New(),
	}
}

// HandleNotionWebhook parses a Notion automation payload and forwards it to Telegram.
// The secret check runs in middleware before this handler.
func (h *WebhookHandler) HandleNotionWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("invalid_json").Inc()
		respondError(c, http.StatusBadRequest, respInvalidJSON, apperrors.InvalidInputError("failed to read body", err))
		return
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.WebhooksReceived.WithLabelValues("invalid_json").Inc()
		respondError(c, http.StatusBadRequest, respInvalidJSON, apperrors.InvalidInputError("failed to parse body", err))
		return
	}

	if err := h.validate.Struct(&payload); err != nil {
		metrics.WebhooksReceived.WithLabelValues("invalid_payload").Inc()
		logger.Warn("Rejected webhook payload", zap.Any("validation_errors", ParseValidationErrors(err)))
		respondError(c, http.StatusBadRequest, respMissingProperties, apperrors.ValidationError(missingPropertiesField))
		return
	}

	if err := h.service.Notify(c.Request.Context(), &payload); err != nil {
		if apperrors.Is(err, apperrors.ErrDeliveryFailed) {
			metrics.WebhooksReceived.WithLabelValues("delivery_failed").Inc()
			respondError(c, http.StatusBadGateway, respDeliveryFailed, err)
			return
		}
		metrics.WebhooksReceived.WithLabelValues("error").Inc()
		respondError(c, http.StatusInternalServerError, respInternalError, err)
		return
	}

	metrics.WebhooksReceived.WithLabelValues("delivered").Inc()
	c.String(http.StatusOK, respOK)
}

// MethodNotAllowed answers requests whose path matched a route registered for another method
func MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, respMethodNotAllowed, nil)
}
