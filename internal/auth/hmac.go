package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyOAuthHMAC verifies the hmac parameter Shopify adds to OAuth redirects.
// The message is the query string without hmac/signature, keys sorted.
func VerifyOAuthHMAC(values url.Values, apiSecret string) bool {
	given := strings.ToLower(values.Get("hmac"))
	if given == "" || apiSecret == "" {
		return false
	}
	return hmac.Equal([]byte(SignOAuthQuery(values, apiSecret)), []byte(given))
}

// SignOAuthQuery computes the hex HMAC-SHA256 Shopify would attach to values.
func SignOAuthQuery(values url.Values, apiSecret string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range values[k] {
			parts = append(parts, k+"="+strings.ReplaceAll(v, "&", "%26"))
		}
	}

	mac := hmac.New(sha256.New, []byte(apiSecret))
	_, _ = mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
