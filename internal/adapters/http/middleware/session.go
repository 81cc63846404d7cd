package middleware

import (
	"context"
	"net/http"
	"strings"

	"tagdesk/internal/application/lookup"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const cacheContextKey contextKey = "lookup_cache"

// SessionCookieName names the browser session cookie.
const SessionCookieName = "tagdesk_session"

// SecureCookies controls the Secure flag on the session cookie. Set by NewMux.
var SecureCookies bool

// sessionless reports whether a path is served without a browser session.
// Scrapers and probes would otherwise open a new session on every hit.
func sessionless(path string) bool {
	return path == "/metrics" || path == "/healthz" || strings.HasPrefix(path, "/debug/")
}

// Session returns middleware that binds each browser to its own lookup cache.
// An unknown or expired cookie starts a fresh session; requests are never blocked.
func Session(sessions *lookup.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessionless(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			var cache *lookup.Cache
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				cache, _ = sessions.Get(cookie.Value)
			}
			if cache == nil {
				var id string
				id, cache = sessions.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   SecureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(ContextWithCache(r.Context(), cache)))
		})
	}
}

// ContextWithCache attaches a session cache to ctx.
func ContextWithCache(ctx context.Context, c *lookup.Cache) context.Context {
	return context.WithValue(ctx, cacheContextKey, c)
}

// CacheFromContext returns the session cache, if any.
func CacheFromContext(ctx context.Context) (*lookup.Cache, bool) {
	c, ok := ctx.Value(cacheContextKey).(*lookup.Cache)
	return c, ok && c != nil
}
