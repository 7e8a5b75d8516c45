package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/storefront-backend/pkg/logger"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "cart_session"

	maxCartSessionLength = 128
)

// CartSession identifies the shopper's cart: the X-Cart-Session header, then
// the cart_session cookie, else a freshly minted id that is handed back in
// both. ttl bounds the cookie lifetime.
func CartSession(ttl time.Duration, secure bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := validSession(r.Header.Get(CartSessionHeader))
			if sessionID == "" {
				if cookie, err := r.Cookie(CartSessionCookie); err == nil {
					sessionID = validSession(cookie.Value)
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				cookie := &http.Cookie{
					Name:     CartSessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				}
				if ttl > 0 {
					cookie.MaxAge = int(ttl.Seconds())
				}
				http.SetCookie(w, cookie)
			}
			w.Header().Set(CartSessionHeader, sessionID)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validSession(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxCartSessionLength || strings.ContainsAny(raw, ": \t") {
		return ""
	}
	return raw
}
