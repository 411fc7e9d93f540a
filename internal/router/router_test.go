package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmentor/notion-notifier/config"
	"github.com/getmentor/notion-notifier/internal/formatter"
	"github.com/getmentor/notion-notifier/internal/handlers"
	"github.com/getmentor/notion-notifier/internal/identity"
	"github.com/getmentor/notion-notifier/internal/services"
	"github.com/getmentor/notion-notifier/pkg/httpclient"
	"github.com/getmentor/notion-notifier/pkg/telegram"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testSecret     = "webhook-secret"
	groupChatID    = "-100500"
	personalChatID = "42"
)

// fakeTelegram is a Bot API stand-in that records sendMessage calls
type fakeTelegram struct {
	mu       sync.Mutex
	messages []map[string]any
	failing  map[string]bool
	server   *httptest.Server
}

func newFakeTelegram(t *testing.T, failingChats ...string) *fakeTelegram {
	t.Helper()
	ft := &fakeTelegram{failing: map[string]bool{}}
	for _, chat := range failingChats {
		ft.failing[chat] = true
	}
	ft.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		ft.mu.Lock()
		ft.messages = append(ft.messages, body)
		ft.mu.Unlock()

		if chatID, _ := body["chat_id"].(string); ft.failing[chatID] {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Internal Server Error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(ft.server.Close)
	return ft
}

func (ft *fakeTelegram) calls() []map[string]any {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]map[string]any(nil), ft.messages...)
}

func testConfig(style string, dual bool) *config.Config {
	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			BotToken:    "123:ABC",
			GroupChatID: groupChatID,
		},
		Webhook: config.WebhookConfig{Secret: testSecret, MaxBodyBytes: 1 << 20},
		Message: config.MessageConfig{Style: style},
		Observability: config.ObservabilityConfig{
			ServiceName: "notion-notifier-test",
		},
	}
	if dual {
		cfg.Telegram.PersonalChatID = personalChatID
	}
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, ft *fakeTelegram) *gin.Engine {
	t.Helper()
	f, err := formatter.New(cfg.Message.Style, identity.Default())
	require.NoError(t, err)

	client := telegram.NewClient(httpclient.NewStandardClient(5*time.Second), ft.server.URL, cfg.Telegram.BotToken)
	service := services.NewNotificationService(f, client, cfg)
	return New(cfg, handlers.NewWebhookHandler(service), handlers.NewHealthHandler())
}

func send(engine *gin.Engine, method, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, WebhookPath, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	engine.ServeHTTP(w, req)
	return w
}

var withSecret = map[string]string{"X-Webhook-Secret": testSecret}

const curatedBody = `{
	"source": {"type": "automation", "attempt": 1},
	"data": {
		"object": "page",
		"id": "p1",
		"url": "https://www.notion.so/p1",
		"properties": {
			"Name": {"type": "title", "title": [{"plain_text": "тест"}]},
			"Status": {"type": "status", "status": {"name": "Briefing"}},
			"Reviewer": {"type": "people", "people": []}
		}
	}
}`

func TestWebhook_NonPostIs405(t *testing.T) {
	ft := newFakeTelegram(t)
	engine := newTestEngine(t, testConfig(formatter.StyleCurated, false), ft)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions} {
		w := send(engine, method, curatedBody, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)

		w = send(engine, method, curatedBody, withSecret)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}
	assert.Empty(t, ft.calls())
}

func TestWebhook_BadSecretIs401WithoutDelivery(t *testing.T) {
	ft := newFakeTelegram(t)
	engine := newTestEngine(t, testConfig(formatter.StyleCurated, false), ft)

	assert.Equal(t, http.StatusUnauthorized, send(engine, http.MethodPost, curatedBody, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, send(engine, http.MethodPost, curatedBody, map[string]string{"X-Webhook-Secret": "nope"}).Code)
	// Secret is checked before the body is parsed
	assert.Equal(t, http.StatusUnauthorized, send(engine, http.MethodPost, `{not json`, nil).Code)
	assert.Empty(t, ft.calls())
}

func TestWebhook_InvalidBodiesAre400WithoutDelivery(t *testing.T) {
	ft := newFakeTelegram(t)
	engine := newTestEngine(t, testConfig(formatter.StyleCurated, false), ft)

	w := send(engine, http.MethodPost, `{"data":`, withSecret)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Bad Request: invalid JSON", w.Body.String())

	w = send(engine, http.MethodPost, `{"data": {"id": "x"}}`, withSecret)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Bad Request: missing data.properties", w.Body.String())

	assert.Empty(t, ft.calls())
}

func TestWebhook_CuratedGroupOnly(t *testing.T) {
	ft := newFakeTelegram(t)
	engine := newTestEngine(t, testConfig(formatter.StyleCurated, false), ft)

	w := send(engine, http.MethodPost, curatedBody, withSecret)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	calls := ft.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, groupChatID, calls[0]["chat_id"])
	assert.Equal(t, "<a href=\"https://www.notion.so/p1\">тест</a>\nСтатус: Briefing", calls[0]["text"])
	assert.Equal(t, "HTML", calls[0]["parse_mode"])
}

func TestWebhook_GroupOnlyFailureIs502(t *testing.T) {
	ft := newFakeTelegram(t, groupChatID)
	engine := newTestEngine(t, testConfig(formatter.StyleCurated, false), ft)

	w := send(engine, http.MethodPost, curatedBody, withSecret)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Len(t, ft.calls(), 1)
}

func TestWebhook_DualPartialFailureIs200(t *testing.T) {
	ft := newFakeTelegram(t, personalChatID)
	engine := newTestEngine(t, testConfig(formatter.StyleCurated, true), ft)

	w := send(engine, http.MethodPost, curatedBody, withSecret)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ft.calls(), 2)
}

func TestWebhook_DualTotalFailureIs502(t *testing.T) {
	ft := newFakeTelegram(t, personalChatID, groupChatID)
	engine := newTestEngine(t, testConfig(formatter.StyleCurated, true), ft)

	w := send(engine, http.MethodPost, curatedBody, withSecret)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Len(t, ft.calls(), 2)
}

func TestWebhook_GenericCheckbox(t *testing.T) {
	ft := newFakeTelegram(t)
	engine := newTestEngine(t, testConfig(formatter.StyleGeneric, false), ft)

	body := `{"data": {"properties": {
		"Name": {"type": "title", "title": [{"plain_text": "Task"}]},
		"Done": {"type": "checkbox", "checkbox": true}
	}}}`

	w := send(engine, http.MethodPost, body, withSecret)
	require.Equal(t, http.StatusOK, w.Code)

	calls := ft.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "<b>Task</b>\n\n<b>Done:</b> Yes", calls[0]["text"])
}

func TestWebhook_NoSecretConfigured(t *testing.T) {
	ft := newFakeTelegram(t)
	cfg := testConfig(formatter.StyleCurated, false)
	cfg.Webhook.Secret = ""
	engine := newTestEngine(t, cfg, ft)

	w := send(engine, http.MethodPost, curatedBody, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthcheckRoute(t *testing.T) {
	ft := newFakeTelegram(t)
	engine := newTestEngine(t, testConfig(formatter.StyleCurated, false), ft)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthcheck", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhook_OriginHeaderDoesNotChangeOutcome(t *testing.T) {
	ft := newFakeTelegram(t)
	cfg := testConfig(formatter.StyleCurated, false)
	cfg.Server.AllowedOrigins = []string{"https://allowed.example"}
	engine := newTestEngine(t, cfg, ft)

	preflight := map[string]string{
		"Origin":                        "https://allowed.example",
		"Access-Control-Request-Method": http.MethodPost,
	}
	w := send(engine, http.MethodOptions, "", preflight)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = send(engine, http.MethodGet, "", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Empty(t, ft.calls())

	w = send(engine, http.MethodPost, curatedBody, map[string]string{
		"Origin":           "https://evil.example",
		"X-Webhook-Secret": testSecret,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ft.calls(), 1)
}

func TestHealthcheckRoute_CORS(t *testing.T) {
	ft := newFakeTelegram(t)
	cfg := testConfig(formatter.StyleCurated, false)
	cfg.Server.AllowedOrigins = []string{"https://allowed.example"}
	engine := newTestEngine(t, cfg, ft)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthcheck", http.NoBody)
	req.Header.Set("Origin", "https://allowed.example")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://allowed.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebhook_MalformedCellsAreSkipped(t *testing.T) {
	ft := newFakeTelegram(t)
	engine := newTestEngine(t, testConfig(formatter.StyleGeneric, false), ft)

	body := `{"data": {"properties": {
		"Name": {"type": "title", "title": [{"plain_text": "Task"}]},
		"Weird": "x",
		"Typed": {"type": 5},
		"Done": {"type": "checkbox", "checkbox": true}
	}}}`

	w := send(engine, http.MethodPost, body, withSecret)
	require.Equal(t, http.StatusOK, w.Code)

	calls := ft.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "<b>Task</b>\n\n<b>Done:</b> Yes", calls[0]["text"])
}
