package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopapp/internal/api"
	"shopapp/internal/httpapi"
	"shopapp/internal/metrics"
	"shopapp/internal/session"
	"shopapp/internal/webhook"
	"shopapp/pkg/config"
	"shopapp/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logg := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeStore, err := session.Open(ctx, cfg)
	if err != nil {
		logg.Fatalf("session store: %v", err)
	}
	defer closeStore()

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:      cfg,
		Log:      logg,
		Sessions: sessions,
		Webhooks: webhook.NewRegistry(cfg.Shopify.APISecret, cfg.Shopify.AppURL(), cfg.Shopify.APIVersion),
		Metrics:  metrics.New(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	api.Go(logg, "http server", func() {
		logg.WithField("store", cfg.SessionStore).Infof("> Ready on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Errorf("http serve: %v", err)
			stop()
		}
	})

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
