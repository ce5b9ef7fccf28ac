package shopify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type webhookCreateRequest struct {
	Webhook webhookPayload `json:"webhook"`
}

type webhookPayload struct {
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format"`
}

type webhookCreateResponse struct {
	Webhook struct {
		ID int64 `json:"id"`
	} `json:"webhook"`
}

// TopicToREST turns "APP_UNINSTALLED" or "app/uninstalled" into "app/uninstalled".
// The last underscore separates resource from event ("INVENTORY_LEVELS_UPDATE").
func TopicToREST(topic string) string {
	t := strings.ToLower(strings.TrimSpace(topic))
	if strings.Contains(t, "/") {
		return t
	}
	if i := strings.LastIndex(t, "_"); i > 0 {
		return t[:i] + "/" + t[i+1:]
	}
	return t
}

// CreateWebhook subscribes address to topic and returns the subscription id.
func (c Client) CreateWebhook(ctx context.Context, topic string, address string) (int64, error) {
	topic = TopicToREST(topic)
	address = strings.TrimSpace(address)
	if topic == "" || address == "" {
		return 0, fmt.Errorf("missing topic or address")
	}

	req := webhookCreateRequest{
		Webhook: webhookPayload{
			Topic:   topic,
			Address: address,
			Format:  "json",
		},
	}
	var resp webhookCreateResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/webhooks.json", req, &resp); err != nil {
		return 0, fmt.Errorf("create webhook %s: %w", topic, err)
	}
	return resp.Webhook.ID, nil
}
