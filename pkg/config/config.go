// Package config loads process configuration from the environment (.env
// file plus real env vars, via joho/godotenv) into enumerated option
// records, and builds the LLM provider registry consulted by pkg/llmclient.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerOptions controls the HTTP surface.
type ServerOptions struct {
	Port       string
	CORSOrigins []string
	FrontendURL string
}

// AuthOptions controls JWT-based authentication and RBAC.
type AuthOptions struct {
	Enabled             bool
	JWTSecret           string
	AccessTokenExpire   time.Duration
	RefreshTokenExpire  time.Duration
	EncryptionSecret    string
}

// RateLimitOptions bounds API, LLM-call, and auth request rates.
type RateLimitOptions struct {
	APIMaxRequests   int
	APIWindow        time.Duration
	LLMMaxRequests   int
	AuthMaxRequests  int
}

// EventsOptions selects and sizes the event bus.
type EventsOptions struct {
	Backend       EventsBackend
	BrokerURL     string // REDIS_URL in the spec's env table; we speak it over Postgres LISTEN/NOTIFY, see pkg/events
	QueueCapacity int
}

// LLMOptions bounds LLM call behavior shared across providers.
type LLMOptions struct {
	CallTimeout  time.Duration
	RetryMax     int
}

// ContextOptions bounds the context extractor's output size.
type ContextOptions struct {
	BudgetChars int
}

// Config is the umbrella object returned by Load and threaded through the
// rest of the process — no component reads os.Getenv directly once Load
// has run.
type Config struct {
	ConfigDir   string
	DatabaseURL string

	Server      ServerOptions
	Auth        AuthOptions
	RateLimit   RateLimitOptions
	Events      EventsOptions
	LLM         LLMOptions
	Context     ContextOptions
	LLMProviders *LLMProviderRegistry
}

// Load reads a .env file (if present in configDir, ignored if absent) and
// then the process environment, producing a fully populated Config.
// Required fields missing from the environment return a ValidationError.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = "."
	}
	_ = godotenv.Load(configDir + "/.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, NewValidationError("DATABASE_URL", ErrMissingRequiredField)
	}

	cfg := &Config{
		ConfigDir:   configDir,
		DatabaseURL: dbURL,
		Server: ServerOptions{
			Port:        envOr("HTTP_PORT", "8080"),
			CORSOrigins: splitCSV(os.Getenv("CORS_ORIGINS")),
			FrontendURL: os.Getenv("FRONTEND_URL"),
		},
		Auth: AuthOptions{
			Enabled:            envBool("AUTH_ENABLED", false),
			JWTSecret:          os.Getenv("JWT_SECRET"),
			AccessTokenExpire:  time.Duration(envInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
			RefreshTokenExpire: time.Duration(envInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
			EncryptionSecret:   os.Getenv("ENCRYPTION_SECRET"),
		},
		RateLimit: RateLimitOptions{
			APIMaxRequests:  envInt("RATE_LIMIT_API_MAX_REQUESTS", 100),
			APIWindow:       time.Duration(envInt("RATE_LIMIT_API_WINDOW_SECONDS", 60)) * time.Second,
			LLMMaxRequests:  envInt("RATE_LIMIT_LLM_MAX_REQUESTS", 20),
			AuthMaxRequests: envInt("RATE_LIMIT_AUTH_MAX_REQUESTS", 10),
		},
		Events: EventsOptions{
			Backend:       eventsBackend(),
			BrokerURL:     os.Getenv("REDIS_URL"),
			QueueCapacity: envInt("EVENT_QUEUE_CAPACITY", 256),
		},
		LLM: LLMOptions{
			CallTimeout: time.Duration(envInt("LLM_CALL_TIMEOUT_SECONDS", 120)) * time.Second,
			RetryMax:    envInt("LLM_RETRY_MAX_ATTEMPTS", 3),
		},
		Context: ContextOptions{
			BudgetChars: envInt("CONTEXT_BUDGET_CHARS", 3000),
		},
		LLMProviders: DefaultLLMProviderRegistry(),
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return nil, NewValidationError("JWT_SECRET", ErrMissingRequiredField)
	}

	return cfg, nil
}

// eventsBackend selects the broker-backed bus whenever REDIS_URL is set, as
// specified; "broker" here is realized over Postgres LISTEN/NOTIFY rather
// than Redis — see DESIGN.md.
func eventsBackend() EventsBackend {
	if os.Getenv("REDIS_URL") != "" {
		return EventsBackendBroker
	}
	return EventsBackendInProcess
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			if i > start {
				out = append(out, trimSpace(v[start:i]))
			}
			start = i + 1
		}
	}
	return out
}

func trimSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
