// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/greeter/internal/api"
	"github.com/taibuivan/greeter/internal/greeting"
	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/config"
	"github.com/taibuivan/greeter/internal/platform/constants"
	"github.com/taibuivan/greeter/internal/platform/metrics"
	"github.com/taibuivan/greeter/internal/platform/sec"
	"github.com/taibuivan/greeter/internal/ratelimit"
	"github.com/taibuivan/greeter/internal/users/auth"
	"github.com/taibuivan/greeter/internal/users/rememberme"
	"github.com/taibuivan/greeter/pkg/pagination"
)

// # Fakes

type userRepository struct {
	mu    sync.Mutex
	users []*auth.User
}

func (repository *userRepository) find(match func(*auth.User) bool) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, user := range repository.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *userRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return !user.IsGuest() && user.Username == username })
}

func (repository *userRepository) FindGuest(_ context.Context) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.IsGuest() })
}

func (repository *userRepository) Create(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	user.ID = int64(len(repository.users) + 1)
	user.CreatedAt = time.Now()
	clone := *user
	repository.users = append(repository.users, &clone)
	return nil
}

type greetingStore struct {
	mu     sync.Mutex
	counts map[int64]int
}

func (store *greetingStore) Create(_ context.Context, g *greeting.Greeting) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.counts[g.UserID]++
	return nil
}

func (store *greetingStore) CountByUser(_ context.Context, userID int64) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.counts[userID], nil
}

func (store *greetingStore) ListByUser(context.Context, int64, pagination.Params) ([]*greeting.Greeting, int, error) {
	return nil, 0, errors.New("not used")
}

// # Harness

type harness struct {
	server   *api.Server
	tokens   *rememberme.MemoryTokenRepository
	guest    *auth.User
	registry *prometheus.Registry
}

func newHarness(t *testing.T, capacity int) *harness {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		ServerPort:          "0",
		RateLimitCapacity:   capacity,
		RateLimitPathPrefix: "/api/",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := &userRepository{}
	authService := auth.NewService(users)
	guest, err := authService.EnsureGuest(ctx)
	require.NoError(t, err)
	_, err = authService.Signup(ctx, auth.SignupInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	tokens := rememberme.NewMemoryTokenRepository()
	rememberMe := rememberme.NewService(rememberme.NewEngine(tokens), time.Hour)
	signer := sec.NewSessionSigner("secret", "key", constants.SessionIssuer, 30*time.Minute)
	sessions := auth.NewSessions(signer, auth.NewMemorySessionRepository(), rememberMe, authService, collector, auth.SessionOptions{})

	frozen := ratelimit.ClockFunc(func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) })
	limiter := ratelimit.New(ratelimit.Config{Capacity: capacity, Period: constants.RateLimitPeriod}, frozen)
	collector.WatchBuckets(limiter.Len)

	liveness, readiness := api.NewHealthHandlers(nil, logger)
	greetingService := greeting.NewService(&greetingStore{counts: map[int64]int{}})

	server := api.NewServer(cfg, logger,
		api.Guard{Sessions: sessions, Limiter: limiter, Metrics: collector},
		api.Handlers{
			Liveness:  liveness,
			Readiness: readiness,
			Metrics:   metrics.Handler(registry),
			Auth:      auth.NewHandler(authService, sessions),
			Greeting:  greeting.NewHandler(greetingService, guest.ID),
		},
	)

	return &harness{server: server, tokens: tokens, guest: guest, registry: registry}
}

func (h *harness) do(request *http.Request) *http.Response {
	recorder := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(recorder, request)
	return recorder.Result()
}

func cookieNamed(response *http.Response, name string) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decode(t *testing.T, response *http.Response) map[string]any {
	t.Helper()
	defer response.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	return body
}

// # Tests

/*
TestServer_RateLimitsApiByAddress exhausts the anonymous bucket through the full chain.
*/
func TestServer_RateLimitsApiByAddress(t *testing.T) {
	h := newHarness(t, 3)

	for i := 0; i < 3; i++ {
		request := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
		request.RemoteAddr = "127.0.0.2:5000"
		assert.Equal(t, http.StatusOK, h.do(request).StatusCode)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
	request.RemoteAddr = "127.0.0.2:5000"
	response := h.do(request)
	require.Equal(t, http.StatusTooManyRequests, response.StatusCode)
	assert.NotEmpty(t, response.Header.Get(constants.HeaderRetryAfter))

	body := decode(t, response)
	assert.Equal(t, "Too Many Requests", body["error"])

	// Infrastructure endpoints are outside the guarded prefix.
	health := httptest.NewRequest(http.MethodGet, "/health", nil)
	health.RemoteAddr = "127.0.0.2:5000"
	assert.Equal(t, http.StatusOK, h.do(health).StatusCode)
}

/*
TestServer_RememberMeFlow logs in, drops the session and returns with only the remember-me cookie.
*/
func TestServer_RememberMeFlow(t *testing.T) {
	h := newHarness(t, 100)

	login := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"alice","password":"correct-horse","rememberMe":true}`))
	login.Header.Set("Content-Type", "application/json")
	response := h.do(login)
	require.Equal(t, http.StatusOK, response.StatusCode)

	rememberCookie := cookieNamed(response, constants.RememberMeCookieName)
	require.NotNil(t, rememberCookie)

	whoami := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	whoami.AddCookie(&http.Cookie{Name: constants.RememberMeCookieName, Value: rememberCookie.Value})
	response = h.do(whoami)
	require.Equal(t, http.StatusOK, response.StatusCode)

	rotated := cookieNamed(response, constants.RememberMeCookieName)
	require.NotNil(t, rotated)
	assert.NotEqual(t, rememberCookie.Value, rotated.Value)
	session := cookieNamed(response, constants.SessionCookieName)
	require.NotNil(t, session)

	body := decode(t, response)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, sec.MethodRememberMe, body["method"])

	// The new session cookie alone authenticates the next call.
	count := httptest.NewRequest(http.MethodGet, "/api/me/greetings", nil)
	count.AddCookie(session)
	response = h.do(count)
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.EqualValues(t, 0, decode(t, response)["total"])

	// Logout revokes the series.
	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout.AddCookie(session)
	assert.Equal(t, http.StatusNoContent, h.do(logout).StatusCode)

	logins, err := h.tokens.FindAllByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, logins)
}

func loginAlice(t *testing.T, h *harness, remember bool) *http.Response {
	t.Helper()

	body := `{"username":"alice","password":"correct-horse","rememberMe":false}`
	if remember {
		body = `{"username":"alice","password":"correct-horse","rememberMe":true}`
	}
	login := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	login.Header.Set("Content-Type", "application/json")

	response := h.do(login)
	require.Equal(t, http.StatusOK, response.StatusCode)
	return response
}

func myGreetings(h *harness, cookies ...*http.Cookie) int {
	request := httptest.NewRequest(http.MethodGet, "/api/me/greetings", nil)
	for _, cookie := range cookies {
		request.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	return h.do(request).StatusCode
}

/*
TestServer_LogoutRevokesSession replays a session cookie after logout.
*/
func TestServer_LogoutRevokesSession(t *testing.T) {
	h := newHarness(t, 100)

	session := cookieNamed(loginAlice(t, h, false), constants.SessionCookieName)
	require.NotNil(t, session)
	require.Equal(t, http.StatusOK, myGreetings(h, session))

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout.AddCookie(session)
	require.Equal(t, http.StatusNoContent, h.do(logout).StatusCode)

	assert.Equal(t, http.StatusUnauthorized, myGreetings(h, session))

	whoami := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	whoami.AddCookie(session)
	assert.Equal(t, false, decode(t, h.do(whoami))["authenticated"])
}

/*
TestServer_TheftRevokesMintedSessions verifies that a session obtained with a
stolen remember-me cookie stops working once the owner's replay exposes it.
*/
func TestServer_TheftRevokesMintedSessions(t *testing.T) {
	h := newHarness(t, 100)

	stolen := cookieNamed(loginAlice(t, h, true), constants.RememberMeCookieName)
	require.NotNil(t, stolen)

	// The thief resumes first and receives a session of their own.
	whoami := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	whoami.AddCookie(&http.Cookie{Name: stolen.Name, Value: stolen.Value})
	response := h.do(whoami)
	require.Equal(t, http.StatusOK, response.StatusCode)
	thiefSession := cookieNamed(response, constants.SessionCookieName)
	require.NotNil(t, thiefSession)
	require.Equal(t, http.StatusOK, myGreetings(h, thiefSession))

	// The owner's browser presents the now superseded token.
	replay := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	replay.AddCookie(&http.Cookie{Name: stolen.Name, Value: stolen.Value})
	assert.Equal(t, false, decode(t, h.do(replay))["authenticated"])

	assert.Equal(t, http.StatusUnauthorized, myGreetings(h, thiefSession))
}

/*
TestServer_AnonymousGreetingUsesGuest verifies that anonymous callers cannot read user data.
*/
func TestServer_AnonymousGreetingUsesGuest(t *testing.T) {
	h := newHarness(t, 100)

	response := h.do(httptest.NewRequest(http.MethodGet, "/api/hello?name=Ada", nil))
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, decode(t, response)["message"], ", Ada!")

	assert.Equal(t, http.StatusUnauthorized, h.do(httptest.NewRequest(http.MethodGet, "/api/me/greetings", nil)).StatusCode)

	whoami := decode(t, h.do(httptest.NewRequest(http.MethodGet, "/api/whoami", nil)))
	assert.Equal(t, false, whoami["authenticated"])
}

/*
TestServer_Metrics verifies the prometheus endpoint exposes the gate counters.
*/
func TestServer_Metrics(t *testing.T) {
	h := newHarness(t, 100)
	h.do(httptest.NewRequest(http.MethodGet, "/api/hello", nil))

	response := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, response.StatusCode)

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `greeter_ratelimit_decisions_total{decision="admitted"} 1`)
	assert.Contains(t, string(raw), "greeter_ratelimit_buckets 1")
}
