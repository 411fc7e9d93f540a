package services

import (
	"context"

	"github.com/getmentor/notion-notifier/internal/models"
	"github.com/getmentor/notion-notifier/pkg/telegram"
)

// NotificationServiceInterface defines the interface for webhook notification operations
type NotificationServiceInterface interface {
	Notify(ctx context.Context, payload *models.WebhookPayload) error
}

// MessageSender delivers a formatted message to a single chat destination
type MessageSender interface {
	SendMessage(ctx context.Context, dest telegram.Destination, text string) error
}
