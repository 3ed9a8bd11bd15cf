// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/greeter/internal/platform/constants"
	"github.com/taibuivan/greeter/internal/platform/ctxutil"
	"github.com/taibuivan/greeter/internal/platform/metrics"
	"github.com/taibuivan/greeter/internal/platform/sec"
	"github.com/taibuivan/greeter/internal/users/auth"
	"github.com/taibuivan/greeter/internal/users/rememberme"
)

type fixture struct {
	users    *fakeUsers
	tokens   *rememberme.MemoryTokenRepository
	records  *auth.MemorySessionRepository
	service  *auth.Service
	sessions *auth.Sessions
	handler  *auth.Handler
}

func newFixture(t *testing.T, options auth.SessionOptions) *fixture {
	t.Helper()

	users := &fakeUsers{}
	tokens := rememberme.NewMemoryTokenRepository()
	records := auth.NewMemorySessionRepository()
	service := auth.NewService(users)
	signer := sec.NewSessionSigner("test-secret", "test-key", constants.SessionIssuer, time.Hour)
	rememberMe := rememberme.NewService(rememberme.NewEngine(tokens), 14*24*time.Hour)
	sessions := auth.NewSessions(signer, records, rememberMe, service, metrics.Nop, options)

	_, err := service.Signup(context.Background(), auth.SignupInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	return &fixture{
		users:    users,
		tokens:   tokens,
		records:  records,
		service:  service,
		sessions: sessions,
		handler:  auth.NewHandler(service, sessions),
	}
}

func cookieByName(response *http.Response, name string) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func loginForm(t *testing.T, f *fixture, remember bool) *http.Response {
	t.Helper()

	form := url.Values{"username": {"alice"}, "password": {"correct-horse"}}
	if remember {
		form.Set("rememberMe", "on")
	}

	request := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()

	f.handler.Login(recorder, request)
	return recorder.Result()
}

/*
TestHandler_Login covers the cookie set issued with and without remember-me.
*/
func TestHandler_Login(t *testing.T) {
	t.Run("without_remember_me", func(t *testing.T) {
		f := newFixture(t, auth.SessionOptions{})

		response := loginForm(t, f, false)
		require.Equal(t, http.StatusOK, response.StatusCode)
		assert.NotNil(t, cookieByName(response, constants.SessionCookieName))
		assert.Nil(t, cookieByName(response, constants.RememberMeCookieName))
	})

	t.Run("with_remember_me", func(t *testing.T) {
		f := newFixture(t, auth.SessionOptions{})

		response := loginForm(t, f, true)
		require.Equal(t, http.StatusOK, response.StatusCode)

		cookie := cookieByName(response, constants.RememberMeCookieName)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, int((14 * 24 * time.Hour).Seconds()), cookie.MaxAge)

		logins, err := f.tokens.FindAllByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Len(t, logins, 1)
	})

	t.Run("always_remember", func(t *testing.T) {
		f := newFixture(t, auth.SessionOptions{AlwaysRemember: true})

		response := loginForm(t, f, false)
		assert.NotNil(t, cookieByName(response, constants.RememberMeCookieName))
	})

	t.Run("bad_password", func(t *testing.T) {
		f := newFixture(t, auth.SessionOptions{})

		request := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"username":"alice","password":"nope-nope"}`))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()

		f.handler.Login(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Empty(t, recorder.Result().Cookies())
	})
}

/*
TestSessions_Resume covers automatic login, rotation and theft detection.
*/
func TestSessions_Resume(t *testing.T) {
	f := newFixture(t, auth.SessionOptions{})
	original := cookieByName(loginForm(t, f, true), constants.RememberMeCookieName)
	require.NotNil(t, original)

	resume := func(value string) (*sec.SessionClaims, *http.Response, error) {
		request := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
		request.AddCookie(&http.Cookie{Name: constants.RememberMeCookieName, Value: value})
		recorder := httptest.NewRecorder()
		claims, err := f.sessions.Resume(recorder, request)
		return claims, recorder.Result(), err
	}

	claims, response, err := resume(original.Value)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, sec.MethodRememberMe, claims.Method)

	rotated := cookieByName(response, constants.RememberMeCookieName)
	require.NotNil(t, rotated)
	assert.NotEqual(t, original.Value, rotated.Value)
	minted := cookieByName(response, constants.SessionCookieName)
	require.NotNil(t, minted)

	_, err = f.sessions.Verify(context.Background(), minted.Value)
	require.NoError(t, err)

	// Replaying the superseded cookie is treated as theft.
	_, response, err = resume(original.Value)
	assert.ErrorIs(t, err, rememberme.ErrCookieTheft)
	assert.Equal(t, -1, cookieByName(response, constants.RememberMeCookieName).MaxAge)

	// The session minted from the stolen series dies with it.
	_, err = f.sessions.Verify(context.Background(), minted.Value)
	assert.ErrorIs(t, err, auth.ErrSessionRevoked)

	// Every series of the victim is gone, including the legitimate one.
	_, _, err = resume(rotated.Value)
	assert.ErrorIs(t, err, rememberme.ErrUnknownSeries)
}

/*
TestSessions_Resume_NoCookie verifies anonymous requests pass through untouched.
*/
func TestSessions_Resume_NoCookie(t *testing.T) {
	f := newFixture(t, auth.SessionOptions{})

	recorder := httptest.NewRecorder()
	claims, err := f.sessions.Resume(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NoError(t, err)
	assert.Nil(t, claims)
	assert.Empty(t, recorder.Result().Cookies())
}

/*
TestSessions_Resume_AccountGone verifies cookies of deleted accounts are revoked.
*/
func TestSessions_Resume_AccountGone(t *testing.T) {
	f := newFixture(t, auth.SessionOptions{})
	cookie := cookieByName(loginForm(t, f, true), constants.RememberMeCookieName)
	require.NotNil(t, cookie)

	f.users.delete("alice")

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(cookie)
	recorder := httptest.NewRecorder()

	_, err := f.sessions.Resume(recorder, request)
	assert.ErrorIs(t, err, auth.ErrAccountGone)

	logins, err := f.tokens.FindAllByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, logins)
}

/*
TestHandler_Logout verifies revocation and cookie clearing.
*/
func TestHandler_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, auth.SessionOptions{})
	session := cookieByName(loginForm(t, f, true), constants.SessionCookieName)
	require.NotNil(t, session)

	claims, err := f.sessions.Verify(ctx, session.Value)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/logout", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
	recorder := httptest.NewRecorder()

	f.handler.Logout(recorder, request)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	response := recorder.Result()
	assert.Equal(t, -1, cookieByName(response, constants.SessionCookieName).MaxAge)
	assert.Equal(t, -1, cookieByName(response, constants.RememberMeCookieName).MaxAge)

	logins, err := f.tokens.FindAllByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, logins)

	// A copy of the cookie no longer authenticates.
	_, err = f.sessions.Verify(ctx, session.Value)
	assert.ErrorIs(t, err, auth.ErrSessionRevoked)

	record, err := f.records.FindByID(ctx, claims.ID)
	require.NoError(t, err)
	assert.NotNil(t, record.RevokedAt)
}

/*
TestHandler_Logout_Anonymous verifies that logging out without a session only clears cookies.
*/
func TestHandler_Logout_Anonymous(t *testing.T) {
	f := newFixture(t, auth.SessionOptions{})

	recorder := httptest.NewRecorder()
	f.handler.Logout(recorder, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, -1, cookieByName(recorder.Result(), constants.SessionCookieName).MaxAge)
}

/*
TestSessions_Verify covers unknown, expired and foreign session records.
*/
func TestSessions_Verify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, auth.SessionOptions{})
	signer := sec.NewSessionSigner("test-secret", "test-key", constants.SessionIssuer, time.Hour)

	t.Run("unrecorded_token", func(t *testing.T) {
		token, _, err := signer.Issue(1, "alice", sec.RoleUser, sec.MethodPassword)
		require.NoError(t, err)

		_, err = f.sessions.Verify(ctx, token)
		assert.ErrorIs(t, err, auth.ErrSessionRevoked)
	})

	t.Run("record_of_another_user", func(t *testing.T) {
		token, _, err := signer.Issue(1, "alice", sec.RoleUser, sec.MethodPassword)
		require.NoError(t, err)
		claims, err := signer.Verify(token)
		require.NoError(t, err)

		require.NoError(t, f.records.Create(ctx, &auth.Session{
			ID: claims.ID, UserID: 99, Method: sec.MethodPassword,
			ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
		}))

		_, err = f.sessions.Verify(ctx, token)
		assert.ErrorIs(t, err, auth.ErrSessionRevoked)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.sessions.Verify(ctx, "not-a-token")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrSessionRevoked)
	})
}

/*
TestHandler_Signup verifies account creation and the duplicate conflict.
*/
func TestHandler_Signup(t *testing.T) {
	f := newFixture(t, auth.SessionOptions{})

	signup := func(body string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		f.handler.Signup(recorder, request)
		return recorder
	}

	created := signup(`{"username":"bob","password":"battery-staple","rememberMe":true}`)
	require.Equal(t, http.StatusCreated, created.Code)
	assert.NotNil(t, cookieByName(created.Result(), constants.RememberMeCookieName))
	assert.NotContains(t, created.Body.String(), "passwordHash")

	assert.Equal(t, http.StatusConflict, signup(`{"username":"alice","password":"battery-staple"}`).Code)
}

/*
TestHandler_WhoAmI reports anonymous and authenticated callers.
*/
func TestHandler_WhoAmI(t *testing.T) {
	f := newFixture(t, auth.SessionOptions{})

	var body struct {
		Authenticated bool     `json:"authenticated"`
		Username      string   `json:"username"`
		Authorities   []string `json:"authorities"`
	}

	recorder := httptest.NewRecorder()
	f.handler.WhoAmI(recorder, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.False(t, body.Authenticated)
	assert.Empty(t, body.Authorities)

	request := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.SessionClaims{Username: "alice", Role: string(sec.RoleUser)}))
	recorder = httptest.NewRecorder()
	f.handler.WhoAmI(recorder, request)

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, []string{"ROLE_USER"}, body.Authorities)
}
