package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Telegram      TelegramConfig
	Webhook       WebhookConfig
	Message       MessageConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type TelegramConfig struct {
	BotToken         string
	APIBaseURL       string
	TimeoutSeconds   int
	GroupChatID      string
	GroupThreadID    string
	PersonalChatID   string // Optional: enables delivery to a second chat
	PersonalThreadID string
}

type WebhookConfig struct {
	Secret       string // Optional: when empty the X-Webhook-Secret header is not checked
	MaxBodyBytes int64
}

type MessageConfig struct {
	Style               string
	ReviewerHandlesFile string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("TELEGRAM_API_BASE_URL", "https://api.telegram.org")
	v.SetDefault("TELEGRAM_TIMEOUT_SECONDS", 10)
	v.SetDefault("WEBHOOK_MAX_BODY_BYTES", 1024*1024)
	v.SetDefault("MESSAGE_STYLE", "curated")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_BE_SERVICE_NAME", "notion-notifier")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "getmentor-dev")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "notion-notifier")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Telegram: TelegramConfig{
			BotToken:         v.GetString("TELEGRAM_BOT_TOKEN"),
			APIBaseURL:       v.GetString("TELEGRAM_API_BASE_URL"),
			TimeoutSeconds:   v.GetInt("TELEGRAM_TIMEOUT_SECONDS"),
			GroupChatID:      strings.TrimSpace(v.GetString("TELEGRAM_GROUP_CHAT_ID")),
			GroupThreadID:    strings.TrimSpace(v.GetString("TELEGRAM_GROUP_THREAD_ID")),
			PersonalChatID:   strings.TrimSpace(v.GetString("TELEGRAM_PERSONAL_CHAT_ID")),
			PersonalThreadID: strings.TrimSpace(v.GetString("TELEGRAM_PERSONAL_THREAD_ID")),
		},
		Webhook: WebhookConfig{
			Secret:       v.GetString("WEBHOOK_SECRET"),
			MaxBodyBytes: v.GetInt64("WEBHOOK_MAX_BODY_BYTES"),
		},
		Message: MessageConfig{
			Style:               strings.ToLower(strings.TrimSpace(v.GetString("MESSAGE_STYLE"))),
			ReviewerHandlesFile: v.GetString("REVIEWER_HANDLES_FILE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Telegram.GroupChatID == "" {
		return fmt.Errorf("TELEGRAM_GROUP_CHAT_ID is required")
	}
	if c.Telegram.PersonalThreadID != "" && c.Telegram.PersonalChatID == "" {
		return fmt.Errorf("TELEGRAM_PERSONAL_CHAT_ID is required when TELEGRAM_PERSONAL_THREAD_ID is set")
	}

	switch c.Message.Style {
	case "curated", "generic":
	default:
		return fmt.Errorf("MESSAGE_STYLE must be one of: curated, generic (got %q)", c.Message.Style)
	}

	if c.Webhook.MaxBodyBytes <= 0 {
		return fmt.Errorf("WEBHOOK_MAX_BODY_BYTES must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// HasPersonalChat reports whether messages also go to the personal chat
func (c *Config) HasPersonalChat() bool {
	return c.Telegram.PersonalChatID != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// splitList parses a comma-separated list, dropping empty entries
func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
