package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"investmate-backend/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// RequireRole gates a route on a session of the given role. The role's own
// cookie is read first, then the generic one. A valid session of the other
// role is forbidden rather than unauthorized.
func RequireRole(jwtSecret, role string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, status, msg := verify(auth.TokenForRole(r, role), secret)
			if claims == nil {
				writeError(w, status, msg)
				return
			}
			if claims.Role != role {
				writeError(w, http.StatusForbidden, "only "+role+"s can use this feature")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Authenticate accepts a session of either role. An optional ?role= query
// parameter selects the cookie and must match the token's role.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, status, msg := Resolve(r, secret, r.URL.Query().Get("role"))
			if claims == nil {
				writeError(w, status, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Resolve finds and verifies the session token for a role-agnostic endpoint.
// On failure it returns nil claims with the status and message to send.
func Resolve(r *http.Request, secret []byte, requestedRole string) (*auth.Claims, int, string) {
	claims, status, msg := verify(auth.TokenFromRequest(r, requestedRole), secret)
	if claims == nil {
		return nil, status, msg
	}
	if requestedRole != "" && claims.Role != requestedRole {
		return nil, http.StatusUnauthorized, "role mismatch"
	}
	return claims, 0, ""
}

func verify(token string, secret []byte) (*auth.Claims, int, string) {
	if token == "" {
		return nil, http.StatusUnauthorized, "unauthorized"
	}
	claims, err := auth.ParseToken(token, secret)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, http.StatusUnauthorized, "session expired"
		}
		return nil, http.StatusUnauthorized, "invalid token"
	}
	return claims, 0, ""
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func GetUserID(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.UserID
	}
	return ""
}

func GetRole(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.Role
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
