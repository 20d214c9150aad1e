package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Upstream REST collaborators
	PyskedBaseURL      string
	DiagnosticsBaseURL string
	UpstreamTimeout    time.Duration

	// Slot resolution
	AppTimezone    string
	SlotStep       time.Duration
	CalendarMonths int

	// Transient state (booking sessions, chat transcripts)
	UseMemoryStore bool
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	SessionTTL     time.Duration

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	PatientJWTSecret   string
	RequirePatientAuth bool
	ProviderListLimit  int

	// Diagnostic assistant
	GeminiAPIKey   string
	GeminiModelID  string
	SpeechLanguage string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PyskedBaseURL:      getEnv("PYSKED_BASE_URL", "https://pyskedev.azurewebsites.net"),
		DiagnosticsBaseURL: getEnv("DIAGNOSTICS_BASE_URL", "https://careappsstg.azurewebsites.net"),
		UpstreamTimeout:    getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		AppTimezone:    getEnv("APP_TIMEZONE", "UTC"),
		SlotStep:       getEnvAsDuration("SLOT_STEP", 15*time.Minute),
		CalendarMonths: getEnvAsInt("CALENDAR_MONTHS", 12),

		UseMemoryStore: getEnvAsBool("USE_MEMORY_STORE", false),
		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 2*time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
		PatientJWTSecret:   getEnv("PATIENT_JWT_SECRET", ""),
		RequirePatientAuth: getEnvAsBool("REQUIRE_PATIENT_AUTH", false),
		ProviderListLimit:  getEnvAsInt("PROVIDER_LIST_LIMIT", 5),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		SpeechLanguage: getEnv("SPEECH_LANGUAGE", "en"),
	}
}

// Location resolves AppTimezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
