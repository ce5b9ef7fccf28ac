package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultScopes matches the scopes the app has always requested at install.
const DefaultScopes = "read_products,write_products,read_script_tags,write_script_tags"

var ErrMissingEnv = errors.New("missing required environment variable")

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// DatabaseURL is only used by the postgres session store.
	DatabaseURL string

	// RedisURL is only used by the redis session store.
	// Example: redis://localhost:6379/0
	RedisURL string

	// SessionStore selects the session backend: memory (default), postgres or redis.
	SessionStore string

	// CookieSecure marks the OAuth cookie session Secure. Keep it on behind TLS.
	CookieSecure bool

	Log LogConfig

	Shopify ShopifyConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type ShopifyConfig struct {
	APIKey    string
	APISecret string
	Scopes    []string

	// Host is the public host name of this app with the scheme stripped,
	// e.g. "my-tunnel.ngrok.io". OAuth redirects and webhook addresses are built from it.
	Host string

	// Shop is the default shop for requests that do not name one (local dev).
	Shop string

	APIVersion string
}

// AppURL returns the public base URL of the app.
func (s ShopifyConfig) AppURL() string {
	return "https://" + s.Host
}

func Load() (Config, error) {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	rawHost, ok := os.LookupEnv("SHOPIFY_HOST")
	if !ok || strings.TrimSpace(rawHost) == "" {
		return Config{}, fmt.Errorf("%w: SHOPIFY_HOST", ErrMissingEnv)
	}
	for _, key := range []string{"SHOPIFY_API_KEY", "SHOPIFY_API_SECRET"} {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			return Config{}, fmt.Errorf("%w: %s", ErrMissingEnv, key)
		}
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":" + env("PORT", "3000")
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       env("REDIS_URL", "redis://localhost:6379/0"),
		SessionStore:   strings.ToLower(env("SESSION_STORE", "memory")),
		CookieSecure:   env("COOKIE_SECURE", "true") != "false",
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "text"),
		},
		Shopify: ShopifyConfig{
			APIKey:     os.Getenv("SHOPIFY_API_KEY"),
			APISecret:  os.Getenv("SHOPIFY_API_SECRET"),
			Scopes:     envList("SHOPIFY_SCOPES", DefaultScopes),
			Host:       StripScheme(rawHost),
			Shop:       strings.TrimSpace(os.Getenv("SHOPIFY_SHOP")),
			APIVersion: env("SHOPIFY_API_VERSION", "2020-10"),
		},
	}, nil
}

// StripScheme turns "https://example.ngrok.io/" into "example.ngrok.io".
func StripScheme(host string) string {
	h := strings.TrimSpace(host)
	h = strings.TrimPrefix(h, "https://")
	h = strings.TrimPrefix(h, "http://")
	return strings.TrimRight(h, "/")
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
