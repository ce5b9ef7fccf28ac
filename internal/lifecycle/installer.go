package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"shopapp/internal/auth"
	"shopapp/internal/session"
	"shopapp/internal/webhook"
)

const (
	UninstallTopic = "APP_UNINSTALLED"
	WebhookPath    = "/webhooks"
)

// WebhookRegistrar is satisfied by *webhook.Registry.
type WebhookRegistrar interface {
	Register(ctx context.Context, opts webhook.RegisterOptions) webhook.RegisterResult
}

type UninstallRecorder interface {
	Uninstalled()
}

// Installer moves shops between unauthenticated and authenticated: OAuth
// completion stores the session, the uninstall webhook removes it.
type Installer struct {
	Sessions session.Store
	Webhooks WebhookRegistrar
	Log      logrus.FieldLogger
	Metrics  UninstallRecorder

	// Now defaults to time.Now.
	Now func() time.Time
}

// AfterAuth is the auth.AfterAuthFunc. The shop is active once the session is
// stored, whether or not the webhook subscription succeeds.
func (in Installer) AfterAuth(ctx context.Context, ev auth.AfterAuthEvent) auth.AfterAuthResult {
	now := time.Now
	if in.Now != nil {
		now = in.Now
	}

	err := in.Sessions.Set(ctx, &session.Session{
		Shop:        ev.Shop,
		AccessToken: ev.AccessToken,
		Scope:       ev.Scope,
		InstalledAt: now().UTC(),
	})
	if err != nil {
		return auth.AfterAuthResult{Err: fmt.Errorf("activate shop=%s: %w", ev.Shop, err)}
	}

	res := in.Webhooks.Register(ctx, webhook.RegisterOptions{
		Shop:        ev.Shop,
		AccessToken: ev.AccessToken,
		Path:        WebhookPath,
		Topic:       UninstallTopic,
	})
	return auth.AfterAuthResult{WebhookRegistered: res.Success, Result: res.Result}
}

// HandleUninstall drops the shop session so the next visit goes through OAuth.
// It is added to the webhook registry at startup for UninstallTopic.
func (in Installer) HandleUninstall(ctx context.Context, ev webhook.Event) error {
	if err := in.Sessions.Delete(ctx, ev.Shop); err != nil {
		return fmt.Errorf("deactivate shop=%s: %w", ev.Shop, err)
	}
	if in.Metrics != nil {
		in.Metrics.Uninstalled()
	}
	in.Log.WithField("shop", ev.Shop).Info("shop uninstalled, session removed")
	return nil
}
