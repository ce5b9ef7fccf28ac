package dashboard

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"shopapp/internal/api"
	"shopapp/internal/session"
	"shopapp/pkg/shopify"
)

const noBulkOperation = "NO BULK OPERATION FOUND"

// AdminAPI is the part of shopify.Client the page reads from.
type AdminAPI interface {
	LatestProduct(ctx context.Context) (*shopify.ProductsOverview, error)
	ProductCount(ctx context.Context) (int, error)
}

// Overview is the page view model.
type Overview struct {
	ProductCount        int
	LatestProductTitle  string
	CurrentlyAvailable  decimal.Decimal
	MaximumAvailable    decimal.Decimal
	BulkOperationStatus string
}

var page = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<body>
<div>
  <p>
    <strong>Total Product Count: </strong>
    {{.ProductCount}}
  </p>
  <p>
    <strong>Latest Product: </strong>
    {{.LatestProductTitle}}
  </p>
  <p>
    <strong>Total Calls Remaining: </strong>
    {{.CurrentlyAvailable}}/{{.MaximumAvailable}}
  </p>
  <p>
    <strong>Bulk Operation status: </strong>
    {{.BulkOperationStatus}}
  </p>
</div>
</body>
</html>
`))

type Handler struct {
	Sessions    session.Store
	NewAdminAPI func(shop, accessToken string) AdminAPI
	DefaultShop string
	Log         logrus.FieldLogger
}

// NewHandler builds a Handler talking to the real Admin API.
func NewHandler(st session.Store, apiVersion, defaultShop string, log logrus.FieldLogger) Handler {
	return Handler{
		Sessions: st,
		NewAdminAPI: func(shop, accessToken string) AdminAPI {
			return shopify.NewClient(shop, accessToken, apiVersion)
		},
		DefaultShop: defaultShop,
		Log:         log,
	}
}

// ServeHTTP handles GET /?shop=...
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		shop := shopify.NormalizeShopDomain(r.URL.Query().Get("shop"))
		if shop == "" {
			shop = shopify.NormalizeShopDomain(h.DefaultShop)
		}
		if shop == "" {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing shop")
			return
		}

		var err error
		s, err = h.Sessions.Get(r.Context(), shop)
		if errors.Is(err, session.ErrNotFound) {
			http.Redirect(w, r, "/auth?shop="+url.QueryEscape(shop), http.StatusFound)
			return
		}
		if err != nil {
			h.Log.WithError(err).WithField("shop", shop).Error("load session failed")
			api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "failed to load session")
			return
		}
	}

	ov, err := h.load(r.Context(), h.NewAdminAPI(s.Shop, s.AccessToken))
	if err != nil {
		h.Log.WithError(err).WithField("shop", s.Shop).Error("admin api request failed")
		api.WriteError(w, http.StatusBadGateway, api.CodeUpstreamFailed, "shopify admin api request failed")
		return
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, ov); err != nil {
		h.Log.WithError(err).Error("render dashboard failed")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h Handler) load(ctx context.Context, client AdminAPI) (Overview, error) {
	var (
		products *shopify.ProductsOverview
		count    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = client.LatestProduct(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = client.ProductCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	ov := Overview{
		ProductCount:        count,
		LatestProductTitle:  products.LatestProductTitle,
		CurrentlyAvailable:  products.Throttle.CurrentlyAvailable,
		MaximumAvailable:    products.Throttle.MaximumAvailable,
		BulkOperationStatus: products.BulkOperationStatus,
	}
	if ov.BulkOperationStatus == "" {
		ov.BulkOperationStatus = noBulkOperation
	}
	return ov, nil
}
