package shopify

import "strings"

// ValidShopDomain accepts "<name>.myshopify.com" hosts only.
func ValidShopDomain(shop string) bool {
	if !strings.HasSuffix(shop, ".myshopify.com") {
		return false
	}
	if strings.ContainsAny(shop, "/ ?#@:") {
		return false
	}
	return len(shop) >= len("a.myshopify.com")
}

// NormalizeShopDomain lowercases and trims a shop parameter.
func NormalizeShopDomain(shop string) string {
	return strings.ToLower(strings.TrimSpace(shop))
}
