package shopify

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims SessionTokenClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestVerifySessionToken_AudienceAndDest(t *testing.T) {
	apiKey := "test_api_key"
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s := signToken(t, SessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  []string{apiKey},
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		},
		Dest: "https://my-shop.myshopify.com",
		Sid:  "sess-1",
	}, secret)

	got, err := VerifySessionToken(s, apiKey, secret, now)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ShopDomain != "my-shop.myshopify.com" {
		t.Fatalf("shop domain mismatch: %q", got.ShopDomain)
	}
	if got.UserID != "42" || got.SessionID != "sess-1" {
		t.Fatalf("unexpected ids: %+v", got)
	}
}

func TestVerifySessionToken_Rejects(t *testing.T) {
	now := time.Unix(1700000000, 0)
	base := jwt.RegisteredClaims{
		Audience:  []string{"key"},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}

	wrongAud := base
	wrongAud.Audience = []string{"other"}

	expired := base
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))

	cases := map[string]string{
		"wrong secret":   signToken(t, SessionTokenClaims{RegisteredClaims: base, Dest: "https://a.myshopify.com"}, "nope"),
		"wrong audience": signToken(t, SessionTokenClaims{RegisteredClaims: wrongAud, Dest: "https://a.myshopify.com"}, "secret"),
		"expired":        signToken(t, SessionTokenClaims{RegisteredClaims: expired, Dest: "https://a.myshopify.com"}, "secret"),
		"bad shop":       signToken(t, SessionTokenClaims{RegisteredClaims: base, Dest: "https://evil.example.com"}, "secret"),
	}
	for name, tok := range cases {
		if _, err := VerifySessionToken(tok, "key", "secret", now); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := BearerToken(r); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	r.Header.Set("Authorization", "bearer abc.def")
	if got := BearerToken(r); got != "abc.def" {
		t.Fatalf("expected token, got %q", got)
	}
}

func TestValidShopDomain(t *testing.T) {
	for _, ok := range []string{"a.myshopify.com", "my-shop.myshopify.com"} {
		if !ValidShopDomain(ok) {
			t.Fatalf("expected valid: %s", ok)
		}
	}
	for _, bad := range []string{"", "myshopify.com", "evil.com", "a.myshopify.com/x", "a b.myshopify.com"} {
		if ValidShopDomain(bad) {
			t.Fatalf("expected invalid: %s", bad)
		}
	}
}
