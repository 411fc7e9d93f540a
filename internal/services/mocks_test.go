package services_test

import (
	"context"

	"github.com/getmentor/notion-notifier/internal/models"
	"github.com/getmentor/notion-notifier/pkg/telegram"
	"github.com/stretchr/testify/mock"
)

// MockSender is a mock implementation of MessageSender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendMessage(ctx context.Context, dest telegram.Destination, text string) error {
	args := m.Called(ctx, dest, text)
	return args.Error(0)
}

// MockFormatter is a mock implementation of formatter.Formatter
type MockFormatter struct {
	mock.Mock
}

func (m *MockFormatter) Format(payload *models.WebhookPayload) string {
	args := m.Called(payload)
	return args.String(0)
}

func (m *MockFormatter) Style() string {
	return "mock"
}
