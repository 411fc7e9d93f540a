package services

import (
	"context"
	"errors"

	"github.com/getmentor/notion-notifier/config"
	"github.com/getmentor/notion-notifier/internal/formatter"
	"github.com/getmentor/notion-notifier/internal/models"
	apperrors "github.com/getmentor/notion-notifier/pkg/errors"
	"github.com/getmentor/notion-notifier/pkg/logger"
	"github.com/getmentor/notion-notifier/pkg/metrics"
	"github.com/getmentor/notion-notifier/pkg/telegram"
	"github.com/getmentor/notion-notifier/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	destinationGroup    = "group"
	destinationPersonal = "personal"
)

type NotificationService struct {
	formatter formatter.Formatter
	sender    MessageSender
	group     telegram.Destination
	personal  *telegram.Destination
}

// NewNotificationService builds the service from the Telegram section of the config.
// A configured personal chat switches delivery to the dual-destination mode.
func NewNotificationService(f formatter.Formatter, sender MessageSender, cfg *config.Config) NotificationServiceInterface {
	s := &NotificationService{
		formatter: f,
		sender:    sender,
		group: telegram.Destination{
			Name:     destinationGroup,
			ChatID:   cfg.Telegram.GroupChatID,
			ThreadID: cfg.Telegram.GroupThreadID,
		},
	}

	if cfg.HasPersonalChat() {
		s.personal = &telegram.Destination{
			Name:     destinationPersonal,
			ChatID:   cfg.Telegram.PersonalChatID,
			ThreadID: cfg.Telegram.PersonalThreadID,
		}
	}

	return s
}

// Notify formats the payload and delivers it. With a single destination any
// failure fails the call; with two destinations the call fails only when both do.
func (s *NotificationService) Notify(ctx context.Context, payload *models.WebhookPayload) error {
	ctx, span := tracing.StartSpan(ctx, "notification.notify")
	defer span.End()

	text := s.formatter.Format(payload)
	span.SetAttributes(
		attribute.String("message.style", s.formatter.Style()),
		attribute.Int("message.length", len(text)),
	)
	logger.Debug("Formatted message", zap.String("style", s.formatter.Style()), zap.String("text", text))

	fields := []zap.Field{zap.String("page_id", pageID(payload))}
	if payload.Source != nil {
		fields = append(fields,
			zap.String("automation_id", payload.Source.AutomationID),
			zap.Int("attempt", payload.Source.Attempt))
	}
	logger.Info("Delivering Notion notification", fields...)

	// Outbound sends finish even if the webhook caller disconnects
	ctx = context.WithoutCancel(ctx)

	var err error
	if s.personal == nil {
		err = s.deliver(ctx, s.group, text)
	} else {
		err = s.deliverBoth(ctx, *s.personal, s.group, text)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
	}
	return err
}

// deliverBoth sends to both destinations concurrently and waits for both
// outcomes. Neither send is cancelled when the other fails.
func (s *NotificationService) deliverBoth(ctx context.Context, personal, group telegram.Destination, text string) error {
	var personalErr, groupErr error

	var g errgroup.Group
	g.Go(func() error {
		personalErr = s.deliver(ctx, personal, text)
		return nil
	})
	g.Go(func() error {
		groupErr = s.deliver(ctx, group, text)
		return nil
	})
	_ = g.Wait() //nolint:errcheck // goroutines report through personalErr/groupErr

	switch {
	case personalErr != nil && groupErr != nil:
		return errors.Join(personalErr, groupErr)
	case personalErr != nil:
		logger.Warn("Partial delivery: personal chat failed, group chat succeeded", zap.Error(personalErr))
	case groupErr != nil:
		logger.Warn("Partial delivery: group chat failed, personal chat succeeded", zap.Error(groupErr))
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, dest telegram.Destination, text string) error {
	ctx, span := tracing.StartSpan(ctx, "notification.deliver")
	defer span.End()
	span.SetAttributes(attribute.String("destination", dest.Name))

	if err := s.sender.SendMessage(ctx, dest, text); err != nil {
		metrics.Deliveries.WithLabelValues(dest.Name, "error").Inc()
		span.RecordError(err)

		fields := []zap.Field{
			zap.String("destination", dest.Name),
			zap.String("chat_id", dest.ChatID),
			zap.String("thread_id", dest.ThreadID),
		}
		var apiErr *telegram.APIError
		if apperrors.As(err, &apiErr) {
			fields = append(fields,
				zap.Int("status_code", apiErr.StatusCode),
				zap.String("response_body", apiErr.Body))
		}
		logger.LogError(err, "Failed to deliver message", fields...)

		return apperrors.DeliveryError(dest.Name, err)
	}

	metrics.Deliveries.WithLabelValues(dest.Name, "success").Inc()
	return nil
}

func pageID(payload *models.WebhookPayload) string {
	if payload == nil || payload.Data == nil {
		return ""
	}
	return payload.Data.ID
}
