package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"shopapp/internal/webhook"
)

func main() {
	_ = godotenv.Load()

	var (
		url       = flag.String("url", "", "webhook endpoint url (defaults to http://localhost:<PORT>/webhooks)")
		topic     = flag.String("topic", "app/uninstalled", "X-Shopify-Topic header value")
		shop      = flag.String("shop", os.Getenv("SHOPIFY_SHOP"), "X-Shopify-Shop-Domain")
		secret    = flag.String("secret", os.Getenv("SHOPIFY_API_SECRET"), "signing secret (SHOPIFY_API_SECRET)")
		payload   = flag.String("payload", "", "path to json payload file (defaults to {})")
		webhookID = flag.String("id", "", "optional webhook id header value")
	)
	flag.Parse()

	if *url == "" {
		addr := os.Getenv("HTTP_ADDR")
		if addr == "" {
			port := os.Getenv("PORT")
			if port == "" {
				port = "3000"
			}
			addr = ":" + port
		}
		if strings.HasPrefix(addr, ":") {
			addr = "localhost" + addr
		}
		*url = "http://" + addr + "/webhooks"
	}

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret")
		os.Exit(2)
	}
	if *shop == "" {
		fmt.Fprintln(os.Stderr, "missing -shop")
		os.Exit(2)
	}

	body := []byte(`{}`)
	if *payload != "" {
		b, err := os.ReadFile(*payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read payload: %v\n", err)
			os.Exit(2)
		}
		body = b
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "new request: %v\n", err)
		os.Exit(2)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Topic", *topic)
	req.Header.Set("X-Shopify-Shop-Domain", *shop)
	req.Header.Set("X-Shopify-Hmac-Sha256", webhook.Sign(body, *secret))
	if *webhookID != "" {
		req.Header.Set("X-Shopify-Webhook-Id", *webhookID)
	}

	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d\n%s\n", resp.StatusCode, string(out))
}
