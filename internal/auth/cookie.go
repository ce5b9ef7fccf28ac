package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

const (
	cookieName   = "shopify_app_session"
	keyState     = "state"
	keyShop      = "shop"
	cookieMaxAge = 24 * 60 * 60
)

// NewCookieStore signs the OAuth cookie with the app secret. Embedded apps run
// inside the admin iframe, so a secure cookie has to be SameSite=None.
func NewCookieStore(apiSecret string, secure bool) *sessions.CookieStore {
	st := sessions.NewCookieStore([]byte(apiSecret))
	st.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		st.Options.SameSite = http.SameSiteNoneMode
	}
	return st
}

// cookieSession returns the OAuth cookie session. A cookie signed with an
// old secret is discarded and a fresh session returned.
func cookieSession(st sessions.Store, r *http.Request) *sessions.Session {
	s, err := st.Get(r, cookieName)
	if err != nil || s == nil {
		s, _ = st.New(r, cookieName)
		if s == nil {
			s = sessions.NewSession(st, cookieName)
		}
		// Drop values decoded from a bad cookie.
		s.Values = map[any]any{}
		s.IsNew = true
	}
	return s
}

func stringValue(s *sessions.Session, key string) string {
	v, _ := s.Values[key].(string)
	return strings.TrimSpace(v)
}

func clearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
