package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"shopapp/internal/api"
	"shopapp/internal/auth"
	"shopapp/internal/dashboard"
	"shopapp/internal/lifecycle"
	"shopapp/internal/metrics"
	"shopapp/internal/session"
	"shopapp/internal/webhook"
	"shopapp/pkg/config"
	"shopapp/pkg/shopify"
)

type Dependencies struct {
	Cfg      config.Config
	Log      logrus.FieldLogger
	Sessions session.Store
	Webhooks *webhook.Registry
	Metrics  *metrics.Metrics

	// Exchanger defaults to the shop's OAuth endpoints.
	Exchanger auth.Exchanger
	// AdminAPI defaults to shopify.NewClient.
	AdminAPI func(shop, accessToken string) dashboard.AdminAPI
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Cfg
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	exchanger := deps.Exchanger
	if exchanger == nil {
		exchanger = shopify.OAuthExchanger{
			APIKey:      cfg.Shopify.APIKey,
			APISecret:   cfg.Shopify.APISecret,
			Scopes:      cfg.Shopify.Scopes,
			RedirectURL: cfg.Shopify.AppURL() + "/auth/callback",
		}
	}

	installer := lifecycle.Installer{
		Sessions: deps.Sessions,
		Webhooks: deps.Webhooks,
		Log:      deps.Log,
		Metrics:  deps.Metrics,
	}
	// Stored sessions may predate this process.
	deps.Webhooks.AddHandler(lifecycle.UninstallTopic, installer.HandleUninstall)

	cookies := auth.NewCookieStore(cfg.Shopify.APISecret, cfg.CookieSecure)
	authHandlers := auth.Handlers{
		APISecret:    cfg.Shopify.APISecret,
		CookieSecure: cfg.CookieSecure,
		Cookies:      cookies,
		Exchanger:    exchanger,
		AfterAuth:    installer.AfterAuth,
		Log:          deps.Log,
		Metrics:      deps.Metrics,
	}
	verifier := auth.Verifier{
		APIKey:      cfg.Shopify.APIKey,
		APISecret:   cfg.Shopify.APISecret,
		DefaultShop: cfg.Shopify.Shop,
		Sessions:    deps.Sessions,
		Cookies:     cookies,
		Log:         deps.Log,
	}

	home := dashboard.NewHandler(deps.Sessions, cfg.Shopify.APIVersion, cfg.Shopify.Shop, deps.Log)
	if deps.AdminAPI != nil {
		home.NewAdminAPI = deps.AdminAPI
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(api.Recoverer(deps.Log))
	r.Use(api.AccessLog(deps.Log))
	r.Use(deps.Metrics.Middleware)
	r.Use(api.CORSMiddleware(api.CORSOptions{}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Get("/auth", authHandlers.Begin)
	r.Get("/auth/callback", authHandlers.Callback)

	r.With(verifier.Middleware).Method(http.MethodGet, "/", home)

	// Shopify signs deliveries itself; no session auth here.
	r.Method(http.MethodPost, "/webhooks", webhook.Receiver{
		Registry: deps.Webhooks,
		Log:      deps.Log,
		Metrics:  deps.Metrics,
	})

	return r
}
