package auth

import (
	"net/http"
	"strings"
	"time"

	"investmate-backend/internal/models"
)

const (
	CookieStartup  = "startup_token"
	CookieInvestor = "investor_token"
	CookieGeneric  = "token"
)

// CookieName returns the role-scoped cookie so that a startup and an investor
// session can coexist in one browser.
func CookieName(role string) string {
	if role == models.RoleInvestor {
		return CookieInvestor
	}
	return CookieStartup
}

// TokenForRole looks up the token for a role-gated endpoint: the role's own
// cookie, then the generic cookie, then a bearer header.
func TokenForRole(r *http.Request, role string) string {
	return firstToken(r, CookieName(role), CookieGeneric)
}

// TokenFromRequest looks up the token for an endpoint any role may call.
// requestedRole narrows the lookup to that role's cookie; when it is empty
// both role cookies and the generic one are tried.
func TokenFromRequest(r *http.Request, requestedRole string) string {
	switch requestedRole {
	case models.RoleStartup:
		return firstToken(r, CookieStartup)
	case models.RoleInvestor:
		return firstToken(r, CookieInvestor)
	default:
		return firstToken(r, CookieStartup, CookieInvestor, CookieGeneric)
	}
}

func firstToken(r *http.Request, names ...string) string {
	for _, name := range names {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func SetSessionCookie(w http.ResponseWriter, role, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(role),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(TokenTTL / time.Second),
	})
}

func ClearSessionCookie(w http.ResponseWriter, role string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(role),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
