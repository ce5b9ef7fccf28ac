package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"shopapp/pkg/shopify"
)

var (
	ErrMissingHeaders   = errors.New("missing webhook headers or body")
	ErrInvalidSignature = errors.New("could not validate webhook request")
	ErrNoHandler        = errors.New("no webhook is registered for topic")
)

// Event is one verified delivery. Topic is normalized ("app_uninstalled").
type Event struct {
	Topic     string
	Shop      string
	WebhookID string
	Body      []byte
}

type HandlerFunc func(ctx context.Context, ev Event) error

// Subscriber creates webhook subscriptions for one shop.
type Subscriber interface {
	CreateWebhook(ctx context.Context, topic, address string) (int64, error)
}

type RegisterOptions struct {
	Shop        string
	AccessToken string
	Path        string
	Topic       string
}

// RegisterResult mirrors what callers log: Result is the reason when Success is false.
type RegisterResult struct {
	Success bool
	Result  string
}

// Registry holds one handler per topic for the whole process and verifies
// and dispatches incoming deliveries.
type Registry struct {
	// Secret is the app API secret Shopify signs deliveries with.
	Secret string
	// AppURL is prepended to RegisterOptions.Path to build the callback address.
	AppURL string
	// NewSubscriber returns the Admin API client for a shop.
	NewSubscriber func(shop, accessToken string) Subscriber

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewRegistry(secret, appURL, apiVersion string) *Registry {
	return &Registry{
		Secret: secret,
		AppURL: strings.TrimRight(appURL, "/"),
		NewSubscriber: func(shop, accessToken string) Subscriber {
			return shopify.NewClient(shop, accessToken, apiVersion)
		},
		handlers: make(map[string]HandlerFunc),
	}
}

// AddHandler sets the process-wide handler for topic (any spelling). It is
// called at startup so deliveries are served for shops installed before the
// process started. Adding a topic twice keeps the latest handler.
func (r *Registry) AddHandler(topic string, h HandlerFunc) {
	topic = NormalizeTopic(topic)
	if topic == "" || h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = make(map[string]HandlerFunc)
	}
	r.handlers[topic] = h
}

// Register subscribes the shop to opts.Topic. Handlers are added separately
// with AddHandler.
func (r *Registry) Register(ctx context.Context, opts RegisterOptions) RegisterResult {
	if NormalizeTopic(opts.Topic) == "" {
		return RegisterResult{Result: "missing topic"}
	}

	address := r.AppURL + "/" + strings.TrimLeft(opts.Path, "/")
	id, err := r.NewSubscriber(opts.Shop, opts.AccessToken).CreateWebhook(ctx, opts.Topic, address)
	if err != nil {
		if alreadySubscribed(err) {
			return RegisterResult{Success: true, Result: "already registered"}
		}
		return RegisterResult{Result: err.Error()}
	}
	return RegisterResult{Success: true, Result: fmt.Sprintf("webhook id=%d", id)}
}

func (r *Registry) handler(topic string) HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[topic]
}

// IsRegistered reports whether a handler exists for topic (any spelling).
func (r *Registry) IsRegistered(topic string) bool {
	return r.handler(NormalizeTopic(topic)) != nil
}

// Process verifies and dispatches one delivery and writes the response status:
// 400 missing headers, 403 bad signature or unknown topic, 500 handler failure,
// 200 otherwise. The returned error explains any non-200 answer.
func (r *Registry) Process(w http.ResponseWriter, req *http.Request) error {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return fmt.Errorf("read webhook body: %w", err)
	}

	rawTopic := strings.TrimSpace(req.Header.Get("X-Shopify-Topic"))
	shop := strings.TrimSpace(req.Header.Get("X-Shopify-Shop-Domain"))
	sig := strings.TrimSpace(req.Header.Get("X-Shopify-Hmac-Sha256"))
	if len(body) == 0 || rawTopic == "" || shop == "" || sig == "" {
		w.WriteHeader(http.StatusBadRequest)
		return ErrMissingHeaders
	}

	if !VerifySignature(body, sig, r.Secret) {
		w.WriteHeader(http.StatusForbidden)
		return fmt.Errorf("%w: topic=%s", ErrInvalidSignature, rawTopic)
	}

	topic := NormalizeTopic(rawTopic)
	h := r.handler(topic)
	if h == nil {
		w.WriteHeader(http.StatusForbidden)
		return fmt.Errorf("%w %s", ErrNoHandler, rawTopic)
	}

	ev := Event{
		Topic:     topic,
		Shop:      shop,
		WebhookID: strings.TrimSpace(req.Header.Get("X-Shopify-Webhook-Id")),
		Body:      body,
	}
	if err := runHandler(req.Context(), h, ev); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("webhook handler topic=%s shop=%s: %w", topic, shop, err)
	}

	w.WriteHeader(http.StatusOK)
	return nil
}

func runHandler(ctx context.Context, h HandlerFunc, ev Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return h(ctx, ev)
}

// VerifySignature checks the base64(HMAC_SHA256(body)) header.
func VerifySignature(body []byte, hmacHeader string, secret string) bool {
	if hmacHeader == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(hmacHeader))
}

// Sign returns the signature Shopify would send for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// NormalizeTopic makes REST ("app/uninstalled") and GraphQL ("APP_UNINSTALLED")
// spellings compare equal: both become "app_uninstalled".
func NormalizeTopic(topic string) string {
	t := strings.TrimSpace(strings.ToLower(topic))
	t = strings.NewReplacer("/", "_", ".", "_", "-", "_").Replace(t)
	for strings.Contains(t, "__") {
		t = strings.ReplaceAll(t, "__", "_")
	}
	return strings.Trim(t, "_")
}

func alreadySubscribed(err error) bool {
	var apiErr *shopify.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnprocessableEntity && strings.Contains(apiErr.Body, "already been taken")
}
