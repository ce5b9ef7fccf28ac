package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"shopapp/internal/api"
	"shopapp/internal/session"
	"shopapp/pkg/shopify"
)

// Verifier guards merchant pages. The shop comes from, in order: an App Bridge
// bearer token, the shop query param, the OAuth cookie, the configured default.
// A shop without a stored session is redirected to BeginPath.
type Verifier struct {
	APIKey      string
	APISecret   string
	DefaultShop string
	Sessions    session.Store
	Cookies     sessions.Store
	Log         logrus.FieldLogger

	// Now defaults to time.Now.
	Now func() time.Time
}

func (v Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shop, ok := v.resolveShop(w, r)
		if !ok {
			return
		}

		s, err := v.Sessions.Get(r.Context(), shop)
		if errors.Is(err, session.ErrNotFound) {
			if shopify.BearerToken(r) != "" {
				reauthorize(w, shop)
				return
			}
			http.Redirect(w, r, BeginPath(shop), http.StatusFound)
			return
		}
		if err != nil {
			v.Log.WithError(err).WithField("shop", shop).Error("load session failed")
			api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "failed to load session")
			return
		}

		next.ServeHTTP(w, r.WithContext(api.WithSession(r.Context(), s)))
	})
}

func (v Verifier) resolveShop(w http.ResponseWriter, r *http.Request) (string, bool) {
	if tok := shopify.BearerToken(r); tok != "" {
		now := time.Now
		if v.Now != nil {
			now = v.Now
		}
		vs, err := shopify.VerifySessionToken(tok, v.APIKey, v.APISecret, now())
		if err != nil {
			v.Log.WithError(err).Debug("invalid session token")
			api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid session token")
			return "", false
		}
		return vs.ShopDomain, true
	}

	shop := shopify.NormalizeShopDomain(r.URL.Query().Get("shop"))
	if shop == "" && v.Cookies != nil {
		shop = stringValue(cookieSession(v.Cookies, r), keyShop)
	}
	if shop == "" {
		shop = shopify.NormalizeShopDomain(v.DefaultShop)
	}
	// Domain validation is left to Begin; an unknown shop is sent there.
	if shop == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing shop")
		return "", false
	}
	return shop, true
}

// reauthorize tells App Bridge to send the top frame through OAuth; a plain
// redirect would only navigate the fetch.
func reauthorize(w http.ResponseWriter, shop string) {
	w.Header().Set("X-Shopify-API-Request-Failure-Reauthorize", "1")
	w.Header().Set("X-Shopify-API-Request-Failure-Reauthorize-Url", BeginPath(shop))
	api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "shop must reauthorize")
}
