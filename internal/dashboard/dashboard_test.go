package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapp/internal/api"
	"shopapp/internal/session"
	"shopapp/pkg/shopify"
)

const shop = "my-shop.myshopify.com"

type stubAPI struct {
	overview *shopify.ProductsOverview
	count    int
	err      error
}

func (s stubAPI) LatestProduct(context.Context) (*shopify.ProductsOverview, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.overview, nil
}

func (s stubAPI) ProductCount(context.Context) (int, error) {
	return s.count, nil
}

func newHandler(st session.Store, stub stubAPI) Handler {
	log, _ := test.NewNullLogger()
	return Handler{
		Sessions:    st,
		NewAdminAPI: func(string, string) AdminAPI { return stub },
		Log:         log,
	}
}

func seeded(t *testing.T) session.Store {
	t.Helper()
	st := session.NewMemoryStore()
	require.NoError(t, st.Set(context.Background(), &session.Session{Shop: shop, AccessToken: "t"}))
	return st
}

func TestHandler_RendersOverview(t *testing.T) {
	h := newHandler(seeded(t), stubAPI{
		count: 42,
		overview: &shopify.ProductsOverview{
			LatestProductTitle: "Widget",
			Throttle: shopify.ThrottleStatus{
				MaximumAvailable:   decimal.NewFromInt(1000),
				CurrentlyAvailable: decimal.NewFromInt(990),
			},
		},
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?shop="+shop, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "42")
	assert.Contains(t, body, "Widget")
	assert.Contains(t, body, "990/1000")
	assert.Contains(t, body, "NO BULK OPERATION FOUND")
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
}

func TestHandler_BulkStatusAndEscaping(t *testing.T) {
	h := newHandler(seeded(t), stubAPI{
		overview: &shopify.ProductsOverview{
			LatestProductTitle:  "<b>Bold</b>",
			BulkOperationStatus: "RUNNING",
		},
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?shop="+shop, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "RUNNING")
	assert.Contains(t, rr.Body.String(), "&lt;b&gt;Bold&lt;/b&gt;")
}

func TestHandler_UnknownShopRedirects(t *testing.T) {
	h := newHandler(session.NewMemoryStore(), stubAPI{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?shop="+shop, nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/auth?shop="+shop, rr.Header().Get("Location"))
}

func TestHandler_DefaultShop(t *testing.T) {
	h := newHandler(session.NewMemoryStore(), stubAPI{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	h.DefaultShop = shop
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
}

func TestHandler_UpstreamFailure(t *testing.T) {
	h := newHandler(seeded(t), stubAPI{err: errors.New("throttled")})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?shop="+shop, nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), api.CodeUpstreamFailed)
}

func TestHandler_UsesContextSession(t *testing.T) {
	var gotShop, gotToken string
	log, _ := test.NewNullLogger()
	h := Handler{
		Sessions: session.NewMemoryStore(),
		NewAdminAPI: func(shop, token string) AdminAPI {
			gotShop, gotToken = shop, token
			return stubAPI{overview: &shopify.ProductsOverview{}}
		},
		Log: log,
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(api.WithSession(req.Context(), &session.Session{Shop: shop, AccessToken: "ctx-token"}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, shop, gotShop)
	assert.Equal(t, "ctx-token", gotToken)
}
