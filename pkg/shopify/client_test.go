package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient("my-shop.myshopify.com", "shpat_abc", "2020-10")
	c.BaseURL = srv.URL
	return c
}

func TestClient_LatestProduct(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2020-10/graphql.json", r.URL.Path)
		assert.Equal(t, "shpat_abc", r.Header.Get("X-Shopify-Access-Token"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["query"], "products(first: 1, reverse: true)")

		_, _ = io.WriteString(w, `{
		  "data": {
		    "products": {"edges": [{"node": {"id": "gid://shopify/Product/1", "title": "Widget"}}]},
		    "currentBulkOperation": {"status": "RUNNING"}
		  },
		  "extensions": {"cost": {"throttleStatus": {"maximumAvailable": 1000.0, "currentlyAvailable": 994, "restoreRate": 50.0}}}
		}`)
	})

	got, err := c.LatestProduct(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.LatestProductTitle)
	assert.Equal(t, "RUNNING", got.BulkOperationStatus)
	assert.Equal(t, "994", got.Throttle.CurrentlyAvailable.String())
	assert.Equal(t, "1000", got.Throttle.MaximumAvailable.String())
}

func TestClient_LatestProduct_NoBulkOperation(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": {"products": {"edges": []}, "currentBulkOperation": null}}`)
	})

	got, err := c.LatestProduct(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.LatestProductTitle)
	assert.Empty(t, got.BulkOperationStatus)
}

func TestClient_GraphQLErrors(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errors": [{"message": "Throttled", "extensions": {"code": "THROTTLED"}}]}`)
	})

	_, err := c.LatestProduct(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "THROTTLED")
}

func TestClient_ProductCount(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/api/2020-10/products/count.json", r.URL.Path)
		_, _ = io.WriteString(w, `{"count": 42}`)
	})

	n, err := c.ProductCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestClient_APIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"[API] Invalid API key or access token"}`, http.StatusUnauthorized)
	})

	_, err := c.ProductCount(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClient_CreateWebhook(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2020-10/webhooks.json", r.URL.Path)
		var req webhookCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "app/uninstalled", req.Webhook.Topic)
		assert.Equal(t, "https://app.example.com/webhooks", req.Webhook.Address)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"webhook": {"id": 7}}`)
	})

	id, err := c.CreateWebhook(context.Background(), "APP_UNINSTALLED", "https://app.example.com/webhooks")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestTopicToREST(t *testing.T) {
	assert.Equal(t, "app/uninstalled", TopicToREST("APP_UNINSTALLED"))
	assert.Equal(t, "orders/paid", TopicToREST("orders/paid"))
	assert.Equal(t, "products/create", TopicToREST("PRODUCTS_CREATE"))
	assert.Equal(t, "inventory_levels/update", TopicToREST("INVENTORY_LEVELS_UPDATE"))
}
