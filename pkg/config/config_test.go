package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
	t.Setenv("SHOPIFY_HOST", "https://app.example.com")
}

func TestLoad_MissingHostFailsFast(t *testing.T) {
	setRequired(t)
	t.Setenv("SHOPIFY_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingEnv))
	assert.Contains(t, err.Error(), "SHOPIFY_HOST")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SHOPIFY_SCOPES", "")
	t.Setenv("SESSION_STORE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "app.example.com", cfg.Shopify.Host)
	assert.Equal(t, "https://app.example.com", cfg.Shopify.AppURL())
	assert.Equal(t, []string{"read_products", "write_products", "read_script_tags", "write_script_tags"}, cfg.Shopify.Scopes)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_PortAndScopes(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "8080")
	t.Setenv("SHOPIFY_SCOPES", " read_products , ,write_products")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"read_products", "write_products"}, cfg.Shopify.Scopes)
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "a.ngrok.io", StripScheme("https://a.ngrok.io/"))
	assert.Equal(t, "a.ngrok.io", StripScheme("a.ngrok.io"))
}
