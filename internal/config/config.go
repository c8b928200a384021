package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	SupabaseURL string
	SupabaseKey string // anon key, sent as apikey to the identity service
	// Service role key; only cmd/seed and scripts read it
	SupabaseServiceKey string
	SupabaseDBURL      string
	SupabaseJWKSURL    string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins        string
	TablePrefix        string
	// Create missing tables on startup
	AutoMigrate bool
	// Public origin used to build share URLs (e.g. https://app.example.com)
	PublicBaseURL string
	// Session cookie lifetime; the refresh token outlives the access token
	SessionCookieMaxAge time.Duration
	// Timeout for each identity service round trip
	IdentityTimeout time.Duration
	// Per-IP limiter for anonymous link endpoints
	AnonRateLimit float64
	AnonRateBurst int
	// OAuth providers offered on the login page (enabled in the identity service)
	OAuthProviders []string
	// Optional file logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
	port := getEnv("PORT", "8080")

	// Construct JWKS URL from Supabase URL
	jwksURL := getEnv("SUPABASE_JWKS_URL", supabaseURL+"/auth/v1/.well-known/jwks.json")

	return &Config{
		Port:                port,
		Environment:         env,
		SupabaseURL:         supabaseURL,
		SupabaseKey:         getEnv("SUPABASE_KEY", ""),
		SupabaseServiceKey:  getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseDBURL:       getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL:     jwksURL,
		CORSOrigins:         getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:         tablePrefix,
		AutoMigrate:         getBool("AUTO_MIGRATE", env != "prod"),
		PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		SessionCookieMaxAge: getDuration("SESSION_COOKIE_MAX_AGE", 7*24*time.Hour),
		IdentityTimeout:     getDuration("IDENTITY_TIMEOUT", 10*time.Second),
		AnonRateLimit:       getFloat("ANON_RATE_LIMIT", 5),
		AnonRateBurst:       getInt("ANON_RATE_BURST", 20),
		OAuthProviders:      getList("OAUTH_PROVIDERS", "github,google"),
		LogDir:              getEnv("LOG_DIR", ""),
		LogMaxFiles:         getInt("LOG_MAX_FILES", 10),
	}
}

// SecureCookies reports whether cookies must carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Environment == "prod" || c.Environment == "staging"
}

// ProjectRef is the Supabase project reference: the first host label of SupabaseURL.
// "https://abcd.supabase.co" -> "abcd". Empty if the URL cannot be parsed.
func (c *Config) ProjectRef() string {
	u, err := url.Parse(c.SupabaseURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.Split(u.Hostname(), ".")[0]
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return ""
	case "test":
		return "test_"
	case "staging":
		return "staging_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList splits a comma separated value, dropping empty entries
func getList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

// getDuration accepts Go durations ("36h") or plain seconds ("3600")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
