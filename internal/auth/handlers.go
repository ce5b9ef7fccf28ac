package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"shopapp/internal/api"
	"shopapp/pkg/shopify"
)

// AfterAuthEvent is handed to the after-auth hook once a shop finished OAuth.
type AfterAuthEvent struct {
	Shop        string
	AccessToken string
	Scope       string
}

// AfterAuthResult reports what the hook did. Err means the shop could not be
// marked active; a failed webhook registration only sets WebhookRegistered=false.
type AfterAuthResult struct {
	WebhookRegistered bool
	Result            string
	Err               error
}

type AfterAuthFunc func(ctx context.Context, ev AfterAuthEvent) AfterAuthResult

type Exchanger interface {
	AuthorizeURL(shopDomain, state string) string
	ExchangeCodeForToken(ctx context.Context, shopDomain, code string) (shopify.AccessToken, error)
}

type InstallRecorder interface {
	InstallCompleted(webhookRegistered bool)
}

type Handlers struct {
	APISecret    string
	CookieSecure bool
	Cookies      sessions.Store
	Exchanger    Exchanger
	AfterAuth    AfterAuthFunc
	Log          logrus.FieldLogger
	Metrics      InstallRecorder
}

// BeginPath is where a shop without a session gets sent.
func BeginPath(shop string) string {
	return "/auth?shop=" + url.QueryEscape(shop)
}

// Begin starts OAuth: GET /auth?shop=...
func (h Handlers) Begin(w http.ResponseWriter, r *http.Request) {
	shop := shopify.NormalizeShopDomain(r.URL.Query().Get("shop"))
	if !shopify.ValidShopDomain(shop) {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid shop (expected like your-store.myshopify.com)")
		return
	}

	state, err := randomHex(16)
	if err != nil {
		h.Log.WithError(err).WithField("shop", shop).Error("generate oauth state failed")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "failed to start oauth")
		return
	}
	sess := cookieSession(h.Cookies, r)
	sess.Values[keyState] = state
	if err := sess.Save(r, w); err != nil {
		h.Log.WithError(err).WithField("shop", shop).Error("save oauth state failed")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "failed to start oauth")
		return
	}

	http.Redirect(w, r, h.Exchanger.AuthorizeURL(shop, state), http.StatusFound)
}

// Callback finishes OAuth: GET /auth/callback?shop=&code=&state=&hmac=...
func (h Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	shop := shopify.NormalizeShopDomain(qs.Get("shop"))
	code := strings.TrimSpace(qs.Get("code"))
	log := h.Log.WithField("shop", shop)

	if !shopify.ValidShopDomain(shop) || code == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing shop or code")
		return
	}

	sess := cookieSession(h.Cookies, r)
	state := stringValue(sess, keyState)
	if state == "" || state != qs.Get("state") {
		clearCookie(w, h.CookieSecure)
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid oauth state")
		return
	}

	if !VerifyOAuthHMAC(qs, h.APISecret) {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid hmac")
		return
	}

	tok, err := h.Exchanger.ExchangeCodeForToken(r.Context(), shop, code)
	if err != nil {
		log.WithError(err).Error("token exchange failed")
		api.WriteError(w, http.StatusBadGateway, api.CodeUpstreamFailed, "token exchange failed")
		return
	}

	delete(sess.Values, keyState)
	sess.Values[keyShop] = shop
	if err := sess.Save(r, w); err != nil {
		log.WithError(err).Warn("save cookie session failed")
	}

	res := h.AfterAuth(r.Context(), AfterAuthEvent{Shop: shop, AccessToken: tok.Token, Scope: tok.Scope})
	if res.Err != nil {
		log.WithError(res.Err).Error("after auth failed")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "failed to save session")
		return
	}
	if !res.WebhookRegistered {
		log.Warnf("Failed to register APP_UNINSTALLED webhook: %s", res.Result)
	}
	if h.Metrics != nil {
		h.Metrics.InstallCompleted(res.WebhookRegistered)
	}

	http.Redirect(w, r, "/?shop="+url.QueryEscape(shop), http.StatusFound)
}

// randReader is swapped in tests.
var randReader io.Reader = rand.Reader

func randomHex(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}
