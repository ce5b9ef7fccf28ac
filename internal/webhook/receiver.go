package webhook

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Recorder receives one call per delivery. *metrics.Metrics satisfies it.
type Recorder interface {
	WebhookProcessed(topic string, err error)
}

// Receiver is the POST /webhooks endpoint. Processing failures are logged and
// swallowed; the status is whatever Process already wrote.
type Receiver struct {
	Registry *Registry
	Log      logrus.FieldLogger
	Metrics  Recorder
}

func (h Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := NormalizeTopic(r.Header.Get("X-Shopify-Topic"))
	log := h.Log.WithFields(logrus.Fields{
		"topic": topic,
		"shop":  r.Header.Get("X-Shopify-Shop-Domain"),
	})

	err := h.Registry.Process(w, r)
	if h.Metrics != nil {
		h.Metrics.WebhookProcessed(topic, err)
	}
	if err != nil {
		log.WithError(err).Errorf("Failed to process webhook: %v", err)
		return
	}
	log.Info("Webhook processed, returned status code 200")
}
