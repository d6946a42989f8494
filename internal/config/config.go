package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the daybrief server.
type Config struct {
	Port      int
	Version   string
	Google    GoogleConfig
	Notion    NotionConfig
	Gemini    GeminiConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
}

type GoogleConfig struct {
	// ClientID is the OAuth client id tokens must be issued for.
	ClientID string
	// AllowedDomain restricts sign-in to one Google Workspace domain.
	// Empty means any account is accepted.
	AllowedDomain string
}

type NotionConfig struct {
	Token       string
	DatabaseIDs []string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type CacheConfig struct {
	TTL time.Duration
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("DAYBRIEF_PORT", 8080),
		Version: envStr("DAYBRIEF_VERSION", "0.2.0"),
		Google: GoogleConfig{
			ClientID:      envStr("GOOGLE_CLIENT_ID", ""),
			AllowedDomain: envStr("ALLOWED_DOMAIN", ""),
		},
		Notion: NotionConfig{
			Token:       envStr("NOTION_TOKEN", ""),
			DatabaseIDs: ParseDatabaseIDs(envStr("NOTION_DATABASE_IDS", os.Getenv("NOTION_DATABASE_ID"))),
		},
		Gemini: GeminiConfig{
			APIKey: envStr("GEMINI_API_KEY", ""),
			Model:  envStr("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Cache: CacheConfig{
			TTL: envDuration("CONTEXT_CACHE_TTL", 5*time.Minute),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "daybrief"),
		},
	}
}

// ParseDatabaseIDs splits a comma-separated list of Notion database ids,
// trimming whitespace and dropping empty entries.
func ParseDatabaseIDs(s string) []string {
	ids := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
