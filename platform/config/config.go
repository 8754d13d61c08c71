// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// CRMConfig provides settings for the CRM contact API (ActiveCampaign).
type CRMConfig interface {
	GetCRMAPIURL() string
	GetCRMAPIKey() string
	GetCRMTagID() int
	IsCRMEnabled() bool
}

// GroupsConfig provides settings for the group-campaign analytics API (SendFlow).
type GroupsConfig interface {
	GetGroupsAPIURL() string
	GetGroupsAPIToken() string
	GetGroupsCampaignID() string
	GetGroupsManualParticipants() int
	IsGroupsEnabled() bool
}

// MessagingConfig provides settings for the messaging automation API (Unnichat).
type MessagingConfig interface {
	GetMessagingAPIURL() string
	GetMessagingAPIToken() string
	GetMessagingAutomationURL() string
	GetMessagingManualDiagnostics() int
	IsMessagingEnabled() bool
}

// TTSConfig provides settings for the text-to-speech API (ElevenLabs).
type TTSConfig interface {
	GetTTSAPIKey() string
	GetTTSVoiceID() string
	GetTTSModelID() string
	IsTTSEnabled() bool
}

// ScriptAIConfig provides settings for the optional Gemini script rewriter.
type ScriptAIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsScriptAIEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketAudioMessages() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides settings for SMTP email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetSummaryRecipient() string
}

// MetricsConfig provides settings for the metrics aggregation pipeline.
type MetricsConfig interface {
	GetQuadrantIntensityThreshold() float64
	GetExternalFetchTimeout() time.Duration
	GetReportTimeZone() string
	GetTimeSeriesDays() int
}

// AudioConfig provides settings for the personalized audio pipeline.
type AudioConfig interface {
	GetAudioCopiesFile() string
	GetSimulationMode() bool
	GetAppBaseURL() string
	GetAutoAudioOnStudentFlag() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                        string
	HTTPAddr                   string
	DatabaseURL                string
	CORSAllowAll               bool
	CORSOrigins                []string
	CORSAllowCreds             bool
	AppBaseURL                 string
	CRMAPIURL                  string
	CRMAPIKey                  string
	CRMTagID                   int
	GroupsAPIURL               string
	GroupsAPIToken             string
	GroupsCampaignID           string
	GroupsManualParticipants   int
	MessagingAPIURL            string
	MessagingAPIToken          string
	MessagingAutomationURL     string
	MessagingManualDiagnostics int
	TTSAPIKey                  string
	TTSVoiceID                 string
	TTSModelID                 string
	GeminiAPIKey               string
	GeminiModel                string
	MinIOEndpoint              string
	MinIOAccessKey             string
	MinIOSecretKey             string
	MinIOUseSSL                bool
	MinIOMaxFileSize           int64
	MinioBucketAudioMessages   string
	RedisURL                   string
	RedisTLSInsecure           bool
	AsynqQueueName             string
	AsynqConcurrency           int
	EmailEnabled               bool
	SMTPHost                   string
	SMTPPort                   int
	SMTPUsername               string
	SMTPPassword               string
	EmailFromName              string
	EmailFromAddress           string
	SummaryRecipient           string
	QuadrantIntensityThreshold float64
	ExternalFetchTimeout       time.Duration
	ReportTimeZone             string
	TimeSeriesDays             int
	AudioCopiesFile            string
	SimulationMode             bool
	AutoAudioOnStudentFlag     bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// CRMConfig implementation
func (c *Config) GetCRMAPIURL() string { return c.CRMAPIURL }
func (c *Config) GetCRMAPIKey() string { return c.CRMAPIKey }
func (c *Config) GetCRMTagID() int     { return c.CRMTagID }
func (c *Config) IsCRMEnabled() bool  { return c.CRMAPIURL != "" && c.CRMAPIKey != "" }

// GroupsConfig implementation
func (c *Config) GetGroupsAPIURL() string          { return c.GroupsAPIURL }
func (c *Config) GetGroupsAPIToken() string        { return c.GroupsAPIToken }
func (c *Config) GetGroupsCampaignID() string      { return c.GroupsCampaignID }
func (c *Config) GetGroupsManualParticipants() int { return c.GroupsManualParticipants }
func (c *Config) IsGroupsEnabled() bool            { return c.GroupsAPIToken != "" }

// MessagingConfig implementation
func (c *Config) GetMessagingAPIURL() string         { return c.MessagingAPIURL }
func (c *Config) GetMessagingAPIToken() string       { return c.MessagingAPIToken }
func (c *Config) GetMessagingAutomationURL() string  { return c.MessagingAutomationURL }
func (c *Config) GetMessagingManualDiagnostics() int { return c.MessagingManualDiagnostics }
func (c *Config) IsMessagingEnabled() bool           { return c.MessagingAPIToken != "" }

// TTSConfig implementation
func (c *Config) GetTTSAPIKey() string  { return c.TTSAPIKey }
func (c *Config) GetTTSVoiceID() string { return c.TTSVoiceID }
func (c *Config) GetTTSModelID() string { return c.TTSModelID }
func (c *Config) IsTTSEnabled() bool   { return c.TTSAPIKey != "" }

// ScriptAIConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsScriptAIEnabled() bool { return c.GeminiAPIKey != "" }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketAudioMessages() string {
	return c.MinioBucketAudioMessages
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetSummaryRecipient() string { return c.SummaryRecipient }

// MetricsConfig implementation
func (c *Config) GetQuadrantIntensityThreshold() float64 { return c.QuadrantIntensityThreshold }
func (c *Config) GetExternalFetchTimeout() time.Duration { return c.ExternalFetchTimeout }
func (c *Config) GetReportTimeZone() string              { return c.ReportTimeZone }
func (c *Config) GetTimeSeriesDays() int                 { return c.TimeSeriesDays }

// AudioConfig implementation
func (c *Config) GetAudioCopiesFile() string      { return c.AudioCopiesFile }
func (c *Config) GetSimulationMode() bool         { return c.SimulationMode }
func (c *Config) GetAppBaseURL() string           { return c.AppBaseURL }
func (c *Config) GetAutoAudioOnStudentFlag() bool { return c.AutoAudioOnStudentFlag }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                        getEnv("APP_ENV", "development"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		CORSAllowAll:               corsAllowAll,
		CORSOrigins:                corsOrigins,
		CORSAllowCreds:             strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:                 getEnv("APP_BASE_URL", "https://mestreye.com"),
		CRMAPIURL:                  strings.TrimRight(getEnv("ACTIVECAMPAIGN_API_URL", ""), "/"),
		CRMAPIKey:                  getEnv("ACTIVECAMPAIGN_API_KEY", ""),
		CRMTagID:                   mustInt(getEnv("ACTIVECAMPAIGN_TAG_ID", "583")),
		GroupsAPIURL:               strings.TrimRight(getEnv("SENDFLOW_API_URL", "https://sendflow.pro/sendapi"), "/"),
		GroupsAPIToken:             getEnv("SENDFLOW_API_TOKEN", ""),
		GroupsCampaignID:           getEnv("SENDFLOW_CAMPAIGN_ID", ""),
		GroupsManualParticipants:   mustInt(getEnv("SENDFLOW_MANUAL_PARTICIPANTS", "0")),
		MessagingAPIURL:            strings.TrimRight(getEnv("UNNICHAT_API_URL", "https://unnichat.com.br/api"), "/"),
		MessagingAPIToken:          getEnv("UNNICHAT_API_TOKEN", ""),
		MessagingAutomationURL:     getEnv("UNNICHAT_AUTOMATION_URL", ""),
		MessagingManualDiagnostics: mustInt(getEnv("UNNICHAT_MANUAL_DIAGNOSTICS", "0")),
		TTSAPIKey:                  getEnv("ELEVENLABS_API_KEY", ""),
		TTSVoiceID:                 getEnv("ELEVENLABS_VOICE_ID", "hdFLFm20uYE7qa0TxNDq"),
		TTSModelID:                 getEnv("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
		GeminiAPIKey:               getEnv("GEMINI_API_KEY", ""),
		GeminiModel:                getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MinIOEndpoint:              getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:             getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:             getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:           mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "104857600")),
		MinioBucketAudioMessages:   getEnv("MINIO_BUCKET_AUDIO_MESSAGES", "audio-messages"),
		RedisURL:                   getEnv("REDIS_URL", ""),
		RedisTLSInsecure:           strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:             getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:           mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		EmailEnabled:               emailEnabled && smtpHost != "",
		SMTPHost:                   smtpHost,
		SMTPPort:                   mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:               getEnv("SMTP_USERNAME", ""),
		SMTPPassword:               getEnv("SMTP_PASSWORD", ""),
		EmailFromName:              getEnv("EMAIL_FROM_NAME", "Lead Dashboard"),
		EmailFromAddress:           getEnv("EMAIL_FROM_ADDRESS", ""),
		SummaryRecipient:           getEnv("SUMMARY_RECIPIENT", ""),
		QuadrantIntensityThreshold: mustFloat(getEnv("QUADRANT_INTENSITY_THRESHOLD", "70")),
		ExternalFetchTimeout:       mustDuration(getEnv("EXTERNAL_FETCH_TIMEOUT", "4s")),
		ReportTimeZone:             getEnv("REPORT_TIMEZONE", "America/Sao_Paulo"),
		TimeSeriesDays:             mustInt(getEnv("TIMESERIES_DAYS", "30")),
		AudioCopiesFile:            getEnv("AUDIO_COPIES_FILE", ""),
		SimulationMode:             strings.EqualFold(getEnv("WHATSAPP_SIMULATION_MODE", "false"), "true"),
		AutoAudioOnStudentFlag:     strings.EqualFold(getEnv("AUTO_AUDIO_ON_STUDENT_FLAG", "false"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.ExternalFetchTimeout <= 0 {
		cfg.ExternalFetchTimeout = 4 * time.Second
	}
	if cfg.TimeSeriesDays <= 0 {
		cfg.TimeSeriesDays = 30
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
