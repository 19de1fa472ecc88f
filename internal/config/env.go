package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables
const (
	EnvBotToken       = "BOT_TOKEN"
	EnvWebhookURL     = "WEBHOOK_URL"
	EnvWebhookPath    = "WEBHOOK_PATH"
	EnvPort           = "PORT"
	EnvLocalAPIURL    = "LOCAL_BOT_API_URL"
	EnvCookies        = "YTDLP_COOKIES"
	EnvTempDir        = "TMP_DIR"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"
	EnvMaxConcurrent  = "MAX_CONCURRENT"
	EnvSessionBackend = "SESSION_BACKEND"
	EnvSessionDSN     = "SESSION_DSN"
	EnvSessionTTL     = "SESSION_TTL"
	EnvRabbitMQURL    = "RABBITMQ_URL"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvLanguage       = "BOT_LANGUAGE"
)

// applyEnv overrides file values with environment variables that are set
func applyEnv(s *Settings) {
	s.Telegram.Token = getEnv(EnvBotToken, s.Telegram.Token)
	s.Telegram.WebhookURL = getEnv(EnvWebhookURL, s.Telegram.WebhookURL)
	s.Telegram.WebhookPath = getEnv(EnvWebhookPath, s.Telegram.WebhookPath)
	if port := getEnv(EnvPort, ""); port != "" {
		s.Telegram.ListenAddr = ":" + strings.TrimPrefix(port, ":")
	}
	s.Telegram.LocalAPIURL = getEnv(EnvLocalAPIURL, s.Telegram.LocalAPIURL)
	s.Telegram.MaxConcurrent = getEnvAsInt(EnvMaxConcurrent, s.Telegram.MaxConcurrent)

	s.Download.CookiesPath = getEnv(EnvCookies, s.Download.CookiesPath)
	s.Download.TempDir = getEnv(EnvTempDir, s.Download.TempDir)
	s.Download.MaxUploadBytes = getEnvAsInt64(EnvMaxUploadSize, s.Download.MaxUploadBytes)

	s.Session.Backend = getEnv(EnvSessionBackend, s.Session.Backend)
	s.Session.DSN = getEnv(EnvSessionDSN, s.Session.DSN)
	s.Session.TTL.Duration = getEnvAsDuration(EnvSessionTTL, s.Session.TTL.Duration)

	if url := getEnv(EnvRabbitMQURL, ""); url != "" {
		s.Events.URL = url
		s.Events.Enabled = true
	}

	s.Log.Level = getEnv(EnvLogLevel, s.Log.Level)
	s.Log.Format = getEnv(EnvLogFormat, s.Log.Format)
	s.Language = getEnv(EnvLanguage, s.Language)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
