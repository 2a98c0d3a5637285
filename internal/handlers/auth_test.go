package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"investmate-backend/internal/auth"
	"investmate-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestRegister_Validation(t *testing.T) {
	e := newTestEnv(t)
	e.seedStartup(t, "taken@example.com", "Taken")

	cases := []struct {
		name string
		body map[string]any
		want string
	}{
		{"missing email", map[string]any{"password": "secret123", "role": "startup"}, "email is required"},
		{"short password", map[string]any{"email": "a@b.c", "password": "123", "role": "startup"}, "password must be at least 6 characters"},
		{"bad role", map[string]any{"email": "a@b.c", "password": "secret123", "role": "admin"}, "role must be startup or investor"},
		{"existing email", map[string]any{"email": "Taken@example.com", "password": "secret123", "role": "startup"}, "User already exists"},
		{"bad field type", map[string]any{"email": "a@b.c", "password": "secret123", "role": "startup", "tagline": 12.5, "socialLinks": "nope"}, "socialLinks"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: tc.body})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorMessage(t, rec), tc.want)
		})
	}
}

func TestRegister_StartupDefaults(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]any{
		"name":     "Ada",
		"email":    " Ada@Example.com ",
		"password": "secret123",
		"role":     "startup",
		"industry": "Fintech",
		"_id":      "64b7f0c2a1b2c3d4e5f60718",
		"isAdmin":  true,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "User registered successfully", body["message"])
	userID, err := bson.ObjectIDFromHex(body["userId"])
	require.NoError(t, err)

	user := e.users.get(userID)
	require.NotNil(t, user)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "secret123"))

	st, _ := e.startups.FindByUserID(t.Context(), userID)
	require.NotNil(t, st)
	assert.Equal(t, "Ada", st.StartupName)
	assert.Equal(t, "No tagline", st.Tagline)
	assert.Equal(t, "Ada", st.FounderName)
	assert.Equal(t, "To be updated", st.Problem)
	assert.Equal(t, "To be updated", st.Solution)
	assert.Equal(t, "Fintech", st.Industry)
}

func TestRegister_InvestorSectors(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]any{
		"name":     "Ivan",
		"email":    "ivan@example.com",
		"password": "secret123",
		"role":     "investor",
		"sectors":  "Fintech, Health ,",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	userID, _ := bson.ObjectIDFromHex(decode[map[string]string](t, rec)["userId"])
	inv, _ := e.investors.FindByUserID(t.Context(), userID)
	require.NotNil(t, inv)
	assert.Equal(t, "Ivan", inv.FullName)
	assert.Equal(t, []string{"Fintech", "Health"}, inv.Sectors)
	assert.Equal(t, []string{"Fintech", "Health"}, inv.PreferredSectors)
}

func TestRegister_RollsBackUserWhenProfileFails(t *testing.T) {
	e := newTestEnv(t)
	e.startups.createErr = errStore

	rec := e.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]any{
		"name": "Ada", "email": "ada@example.com", "password": "secret123", "role": "startup",
	}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, e.users.deleted, 1)

	u, err := e.users.FindByEmail(t.Context(), "ada@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	user, _ := e.seedInvestor(t, "ivan@example.com", "Ivan")

	rec := e.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: LoginRequest{Email: "ivan@example.com", Password: "wrong-pass"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, rec))

	rec = e.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: LoginRequest{Email: "nobody@example.com", Password: "secret123"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: LoginRequest{Email: "IVAN@example.com", Password: "secret123"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Message string      `json:"message"`
		User    SessionUser `json:"user"`
	}](t, rec)
	assert.Equal(t, "Login successful", body.Message)
	assert.Equal(t, user.ID.Hex(), body.User.ID)
	assert.Equal(t, models.RoleInvestor, body.User.Role)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, auth.CookieInvestor, c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	claims, err := auth.ParseToken(c.Value, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleInvestor, claims.Role)
}

func TestLogin_RateLimited(t *testing.T) {
	e := newTestEnv(t, withRateLimit(2))
	e.seedStartup(t, "ada@example.com", "Ada")

	req := request{method: http.MethodPost, path: "/api/auth/login", body: LoginRequest{Email: "ada@example.com", Password: "bad-pass"}}
	assert.Equal(t, http.StatusUnauthorized, e.do(t, req).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, req).Code)
	assert.Equal(t, http.StatusTooManyRequests, e.do(t, req).Code)
}

func TestLogin_RateLimitIgnoresForwardedHeaders(t *testing.T) {
	e := newTestEnv(t, withRateLimit(1))
	e.seedStartup(t, "ada@example.com", "Ada")

	codes := make([]int, 0, 4)
	for i := 1; i <= 4; i++ {
		req := request{
			method:  http.MethodPost,
			path:    "/api/auth/login",
			body:    LoginRequest{Email: "ada@example.com", Password: "bad-pass"},
			headers: map[string]string{"X-Real-IP": fmt.Sprintf("10.0.0.%d", i), "X-Forwarded-For": fmt.Sprintf("10.0.1.%d", i)},
		}
		codes = append(codes, e.do(t, req).Code)
	}
	assert.Equal(t, []int{
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestLogin_RateLimitTrustsProxyWhenConfigured(t *testing.T) {
	e := newTestEnv(t, withRateLimit(1), withTrustedProxy())
	e.seedStartup(t, "ada@example.com", "Ada")

	login := func(ip string) int {
		return e.do(t, request{
			method:  http.MethodPost,
			path:    "/api/auth/login",
			body:    LoginRequest{Email: "ada@example.com", Password: "bad-pass"},
			headers: map[string]string{"X-Real-IP": ip},
		}).Code
	}
	assert.Equal(t, http.StatusUnauthorized, login("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, login("10.0.0.1"))
	assert.Equal(t, http.StatusUnauthorized, login("10.0.0.2"))
}

func TestLogout_ClearsRoleCookie(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, request{method: http.MethodPost, path: "/api/auth/logout?role=investor"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out", decode[map[string]string](t, rec)["message"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieInvestor, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)

	rec = e.do(t, request{method: http.MethodPost, path: "/api/auth/logout"})
	assert.Equal(t, auth.CookieStartup, rec.Result().Cookies()[0].Name)
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	user, st := e.seedStartup(t, "ada@example.com", "Ada")
	tok := sessionToken(t, user)

	rec := e.do(t, request{method: http.MethodGet, path: "/api/auth/me", cookies: []*http.Cookie{cookie(auth.CookieStartup, tok)}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, "ada@example.com", body["user"]["email"])
	assert.NotContains(t, body["user"], "password")
	assert.Equal(t, st.ID.Hex(), body["profile"]["_id"])
}

func TestMe_RoleMismatchAndMissingUser(t *testing.T) {
	e := newTestEnv(t)
	user, _ := e.seedStartup(t, "ada@example.com", "Ada")
	tok := sessionToken(t, user)

	// a startup token presented as the investor cookie
	rec := e.do(t, request{method: http.MethodGet, path: "/api/auth/me?role=investor", cookies: []*http.Cookie{cookie(auth.CookieInvestor, tok)}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// the startup cookie is not consulted when the investor role is requested
	rec = e.do(t, request{method: http.MethodGet, path: "/api/auth/me?role=investor", cookies: []*http.Cookie{cookie(auth.CookieStartup, tok)}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ghost := tokenFor(t, bson.NewObjectID(), models.RoleStartup, time.Hour)
	rec = e.do(t, request{method: http.MethodGet, path: "/api/auth/me", cookies: []*http.Cookie{cookie(auth.CookieGeneric, ghost)}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	user, _ := e.seedStartup(t, "ada@example.com", "Ada")
	session := []*http.Cookie{cookie(auth.CookieStartup, sessionToken(t, user))}

	rec := e.do(t, request{method: http.MethodPost, path: "/api/auth/change-password", cookies: session,
		body: ChangePasswordRequest{CurrentPassword: "secret123"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, request{method: http.MethodPost, path: "/api/auth/change-password", cookies: session,
		body: ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "123"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, request{method: http.MethodPost, path: "/api/auth/change-password", cookies: session,
		body: ChangePasswordRequest{CurrentPassword: "not-it", NewPassword: "n3w-secret"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Current password is incorrect", errorMessage(t, rec))

	rec = e.do(t, request{method: http.MethodPost, path: "/api/auth/change-password", cookies: session,
		body: ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "n3w-secret"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: LoginRequest{Email: "ada@example.com", Password: "n3w-secret"}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGate(t *testing.T) {
	e := newTestEnv(t)
	startupUser, _ := e.seedStartup(t, "ada@example.com", "Ada")
	investorUser, _ := e.seedInvestor(t, "ivan@example.com", "Ivan")

	path := "/api/startup/profile"
	body := map[string]any{"tagline": "x"}

	rec := e.do(t, request{method: http.MethodPatch, path: path, body: body})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token")

	rec = e.do(t, request{method: http.MethodPatch, path: path, body: body,
		cookies: []*http.Cookie{cookie(auth.CookieStartup, sessionToken(t, startupUser)+"x")}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "tampered token")

	expired := tokenFor(t, startupUser.ID, models.RoleStartup, -time.Minute)
	rec = e.do(t, request{method: http.MethodPatch, path: path, body: body,
		cookies: []*http.Cookie{cookie(auth.CookieStartup, expired)}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "expired token")

	rec = e.do(t, request{method: http.MethodPatch, path: path, body: body,
		cookies: []*http.Cookie{cookie(auth.CookieGeneric, sessionToken(t, investorUser))}})
	assert.Equal(t, http.StatusForbidden, rec.Code, "wrong role")

	rec = e.do(t, request{method: http.MethodPatch, path: path, body: body,
		headers: map[string]string{"Authorization": "Bearer " + sessionToken(t, startupUser)}})
	assert.Equal(t, http.StatusOK, rec.Code, "bearer token")
}
