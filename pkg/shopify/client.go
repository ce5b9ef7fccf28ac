package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultAPIVersion = "2020-10"

// Client talks to the Admin API of a single shop.
type Client struct {
	HTTPClient  *http.Client
	ShopDomain  string
	AccessToken string
	APIVersion  string

	// BaseURL overrides "https://<ShopDomain>" (tests, proxies).
	BaseURL string
}

// NewClient returns a client with the default timeout.
func NewClient(shopDomain, accessToken, apiVersion string) Client {
	return Client{
		HTTPClient:  &http.Client{Timeout: 20 * time.Second},
		ShopDomain:  shopDomain,
		AccessToken: accessToken,
		APIVersion:  apiVersion,
	}
}

func (c Client) adminURL(path string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://" + c.ShopDomain
	}
	version := c.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	return fmt.Sprintf("%s/admin/api/%s%s", base, version, path)
}

func (c Client) doJSON(ctx context.Context, method, path string, reqBody any, respBody any) (int, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.ShopDomain == "" || c.AccessToken == "" {
		return 0, fmt.Errorf("missing shop domain or access token")
	}

	var body io.Reader
	if reqBody != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return 0, err
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.adminURL(path), body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Shopify-Access-Token", c.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, readErr
	}

	// Surface the error body so callers can see missing scopes, throttling, etc.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(b) > 0 {
			return resp.StatusCode, &APIError{Status: resp.StatusCode, Body: string(b)}
		}
		return resp.StatusCode, &APIError{Status: resp.StatusCode}
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return resp.StatusCode, fmt.Errorf("decode shopify response failed: %w body=%s", err, string(b))
		}
	}

	return resp.StatusCode, nil
}

// APIError is a non-2xx answer from the Admin API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("shopify api error: status=%d", e.Status)
	}
	return fmt.Sprintf("shopify api error: status=%d body=%s", e.Status, e.Body)
}
