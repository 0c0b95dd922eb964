package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	// Email provider selection: resend, smtp or log
	EmailProvider string
	// Resend Configuration
	ResendAPIKey  string
	ResendBaseURL string
	// Contact notification envelope
	ContactFromEmail     string
	ContactFromName      string
	ContactEmailTo       string
	ContactSubjectPrefix string
	EmailSendTimeout     time.Duration
	// SMTP Configuration (fallback provider)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	// CORS
	FrontendURL        string
	CORSAllowedOrigins []string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	ContactRateLimit       int
	ContactDailyLimit      int
	RateLimitWindowSeconds int
	MaxBodyBytes           int64
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; missing file is fine in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		EmailProvider: strings.ToLower(getEnv("EMAIL_PROVIDER", "resend")),
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		ResendBaseURL: strings.TrimRight(getEnv("RESEND_BASE_URL", "https://api.resend.com"), "/"),

		ContactFromEmail:     getEnv("CONTACT_FROM_EMAIL", "onboarding@resend.dev"),
		ContactFromName:      getEnv("CONTACT_FROM_NAME", "Portfolio Contact"),
		ContactEmailTo:       getEnv("CONTACT_EMAIL_TO", ""),
		ContactSubjectPrefix: getEnv("CONTACT_SUBJECT_PREFIX", "Portfolio Contact"),
		EmailSendTimeout:     time.Duration(getEnvInt("EMAIL_SEND_TIMEOUT_SECONDS", 10)) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		FrontendURL:        strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),

		ContactRateLimit:       getEnvInt("CONTACT_RATE_LIMIT", 5),         // 5 messages
		ContactDailyLimit:      getEnvInt("CONTACT_DAILY_LIMIT", 20),       // per rolling day, Redis only
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60), // per minute
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 64<<10)),
	}

	if cfg.EmailSendTimeout <= 0 {
		cfg.EmailSendTimeout = 10 * time.Second
	}

	if cfg.ContactEmailTo == "" {
		log.Println("WARNING: CONTACT_EMAIL_TO is missing. Contact form will not be able to deliver messages.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// AllowedOrigins returns the frontend URL plus any extra CORS origins,
// deduplicated and restricted to http(s) origins.
func (c *Config) AllowedOrigins() []string {
	seen := make(map[string]bool)
	var origins []string
	for _, o := range append([]string{c.FrontendURL}, c.CORSAllowedOrigins...) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	return origins
}

// RateLimitWindow is the contact rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvList splits a comma separated environment variable
func getEnvList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
