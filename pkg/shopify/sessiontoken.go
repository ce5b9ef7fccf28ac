package shopify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenClaims are the claims App Bridge puts into embedded session tokens.
type SessionTokenClaims struct {
	jwt.RegisteredClaims

	Dest string `json:"dest,omitempty"` // https://{shop}
	Sid  string `json:"sid,omitempty"`
}

type VerifiedSession struct {
	ShopDomain string
	UserID     string
	SessionID  string
	ExpiresAt  time.Time
}

// VerifySessionToken verifies an App Bridge session token (HS256 signed with
// the app secret, audience = API key) and returns the shop it was minted for.
func VerifySessionToken(tokenString, apiKey, apiSecret string, now time.Time) (*VerifiedSession, error) {
	if tokenString == "" {
		return nil, errors.New("missing token")
	}
	if apiSecret == "" {
		return nil, errors.New("missing api secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if apiKey != "" {
		opts = append(opts, jwt.WithAudience(apiKey))
	}

	claims := &SessionTokenClaims{}
	if _, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(apiSecret), nil
	}); err != nil {
		return nil, fmt.Errorf("session token: %w", err)
	}

	shopDomain := hostOf(claims.Dest)
	if shopDomain == "" {
		shopDomain = hostOf(claims.Issuer)
	}
	if !ValidShopDomain(shopDomain) {
		return nil, fmt.Errorf("session token: invalid shop %q", shopDomain)
	}

	return &VerifiedSession{
		ShopDomain: shopDomain,
		UserID:     claims.Subject,
		SessionID:  claims.Sid,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[7:])
}

// hostOf reduces "https://shop.myshopify.com/admin" to "shop.myshopify.com".
func hostOf(v string) string {
	s := strings.TrimSpace(v)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	return s
}
