package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"investmate-backend/internal/aiclient"
	"investmate-backend/internal/auth"
	"investmate-backend/internal/logging"
	"investmate-backend/internal/matchmaking"
	"investmate-backend/internal/metrics"
	"investmate-backend/internal/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const testSecret = "handler-test-secret"

type testEnv struct {
	users       *memUsers
	startups    *memStartups
	investors   *memInvestors
	connections *memConnections
	uploader    *fakeUploader
	notifier    *recordingNotifier
	metrics     *metrics.Metrics
	router      http.Handler
}

type envOption func(*RouterConfig, *testEnv)

func withRateLimit(perMin int) envOption {
	return func(c *RouterConfig, _ *testEnv) { c.LoginRatePerMin = perMin }
}

func withTrustedProxy() envOption {
	return func(c *RouterConfig, _ *testEnv) { c.TrustProxy = true }
}

func withoutUploader() envOption {
	return func(c *RouterConfig, e *testEnv) {
		c.Uploads = NewUploadHandler(nil, e.startups, e.investors, testSecret, logging.Discard())
	}
}

func withAI(ai matchmaking.AI) envOption {
	return func(c *RouterConfig, e *testEnv) {
		svc := matchmaking.NewService(ai, e.startups, e.investors, e.metrics, logging.Discard())
		c.AI = NewAIHandler(svc, e.startups, e.investors, logging.Discard())
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	log := logging.Discard()
	e := &testEnv{
		users:       newMemUsers(),
		startups:    &memStartups{},
		investors:   &memInvestors{},
		connections: &memConnections{},
		uploader:    &fakeUploader{},
		notifier:    &recordingNotifier{},
		metrics:     metrics.New(),
	}

	conns := NewConnectionHandler(e.connections, e.startups, e.investors, e.users, e.notifier, log)
	conns.spawn = func(f func()) { f() }

	// an unconfigured AI client always fails, so every AI route falls back
	svc := matchmaking.NewService(aiclient.New("", time.Second), e.startups, e.investors, e.metrics, log)

	cfg := RouterConfig{
		JWTSecret:       testSecret,
		CORSOrigins:     []string{"*"},
		LoginRatePerMin: 100,
		Metrics:         e.metrics,
		Auth:            NewAuthHandler(e.users, e.startups, e.investors, testSecret, false, log),
		Profiles:        NewProfileHandler(e.startups, e.investors, log),
		Startups:        NewStartupHandler(e.startups, log),
		Uploads:         NewUploadHandler(e.uploader, e.startups, e.investors, testSecret, log),
		Connections:     conns,
		AI:              NewAIHandler(svc, e.startups, e.investors, log),
	}
	for _, o := range opts {
		o(&cfg, e)
	}
	e.router = NewRouter(cfg)
	return e
}

// seedStartup stores a startup user with a profile and returns both.
func (e *testEnv) seedStartup(t *testing.T, email, name string) (*models.User, *models.Startup) {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{Name: name, Email: email, Password: hash, Role: models.RoleStartup}
	require.NoError(t, e.users.Create(t.Context(), u))
	st := &models.Startup{UserID: u.ID, StartupName: name, Industry: "Fintech", Stage: "seed"}
	require.NoError(t, e.startups.Create(t.Context(), st))
	return u, st
}

func (e *testEnv) seedInvestor(t *testing.T, email, name string, sectors ...string) (*models.User, *models.Investor) {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{Name: name, Email: email, Password: hash, Role: models.RoleInvestor}
	require.NoError(t, e.users.Create(t.Context(), u))
	inv := &models.Investor{UserID: u.ID, FullName: name, PreferredSectors: sectors}
	require.NoError(t, e.investors.Create(t.Context(), inv))
	return u, inv
}

func sessionToken(t *testing.T, user *models.User) string {
	t.Helper()
	return tokenFor(t, user.ID, user.Role, auth.TokenTTL)
}

func tokenFor(t *testing.T, userID bson.ObjectID, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID.Hex(), "user@example.com", role, []byte(testSecret), ttl)
	require.NoError(t, err)
	return tok
}

type request struct {
	method  string
	path    string
	body    any
	raw     io.Reader
	cookies []*http.Cookie
	headers map[string]string
}

func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader = req.raw
	if req.body != nil {
		data, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

func cookie(name, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}
