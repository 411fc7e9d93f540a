// Package telegram is a minimal Telegram Bot API client for sending messages.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/getmentor/notion-notifier/pkg/httpclient"
	"github.com/getmentor/notion-notifier/pkg/logger"
	"github.com/getmentor/notion-notifier/pkg/metrics"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public Bot API endpoint
	DefaultBaseURL = "https://api.telegram.org"

	parseModeHTML = "HTML"

	// maxErrorBodySize caps how much of an error response is kept for diagnostics
	maxErrorBodySize = 64 * 1024
)

// Destination is a chat, optionally narrowed to a forum topic
type Destination struct {
	Name     string
	ChatID   string
	ThreadID string
}

// APIError is returned when the Bot API answers with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API returned status %d: %s", e.StatusCode, e.Body)
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
	MessageThreadID       *int64 `json:"message_thread_id,omitempty"`
}

// Client sends messages through the Bot API. Each call makes exactly one request.
type Client struct {
	httpClient httpclient.Client
	baseURL    string
	token      string
}

// NewClient creates a Bot API client. An empty baseURL means DefaultBaseURL.
func NewClient(httpClient httpclient.Client, baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// SendMessage posts an HTML message to the destination
func (c *Client) SendMessage(ctx context.Context, dest Destination, text string) error {
	const operation = "sendMessage"

	body := sendMessageRequest{
		ChatID:                dest.ChatID,
		Text:                  text,
		ParseMode:             parseModeHTML,
		DisableWebPagePreview: true,
	}

	if threadID := strings.TrimSpace(dest.ThreadID); threadID != "" {
		id, err := strconv.ParseInt(threadID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid message thread id %q: %w", dest.ThreadID, err)
		}
		body.MessageThreadID = &id
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode sendMessage request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(operation), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		c.record(operation, "error", duration, dest, zap.Error(redactURL(err)))
		return fmt.Errorf("telegram %s request failed: %w", operation, redactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			respBody = []byte(fmt.Sprintf("<failed to read body: %v>", readErr))
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		c.record(operation, "error", duration, dest,
			zap.Int("status_code", apiErr.StatusCode),
			zap.String("response_body", apiErr.Body))
		return apiErr
	}

	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
	c.record(operation, "success", duration, dest, zap.Int("status_code", resp.StatusCode))
	return nil
}

func (c *Client) methodURL(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

func (c *Client) record(operation, status string, duration float64, dest Destination, fields ...zap.Field) {
	metrics.TelegramRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.TelegramRequestTotal.WithLabelValues(operation, status).Inc()

	fields = append([]zap.Field{
		zap.String("destination", dest.Name),
		zap.String("chat_id", dest.ChatID),
		zap.String("thread_id", dest.ThreadID),
	}, fields...)
	logger.LogAPICall("telegram", operation, status, duration, fields...)
}

// redactURL strips the request URL, which embeds the bot token, from transport errors
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
