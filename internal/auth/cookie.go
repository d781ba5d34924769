package auth

import (
	"net/http"
	"time"
)

// CookieName is the session cookie shared between server and client.
const CookieName = "relife_session"

// cookieMaxAge bounds how long a browser keeps a session token (30 days).
const cookieMaxAge = 30 * 24 * time.Hour

// SetSessionCookie instructs the client to store the session token. The
// Secure attribute is set only when serving over TLS in production.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie instructs the client to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadSessionToken extracts the session token from the request cookie, or ""
// if absent.
func ReadSessionToken(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
