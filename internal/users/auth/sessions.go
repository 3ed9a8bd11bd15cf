// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/constants"
	"github.com/taibuivan/greeter/internal/platform/metrics"
	"github.com/taibuivan/greeter/internal/platform/sec"
	"github.com/taibuivan/greeter/internal/users/rememberme"
)

var (
	// ErrAccountGone rejects a remember-me cookie whose owner no longer exists.
	ErrAccountGone = apperr.Unauthorized("Account no longer exists")

	// ErrSessionRevoked rejects a well-signed session cookie without an active record.
	ErrSessionRevoked = apperr.Unauthorized("Session has been revoked")
)

// SessionOptions controls cookie attributes and the remember-me policy.
type SessionOptions struct {
	// Secure marks both cookies Secure.
	Secure bool

	// AlwaysRemember issues a remember-me cookie on every login.
	AlwaysRemember bool
}

// Sessions issues, verifies and revokes the session and remember-me cookies.
//
// Every signed session has a record in the [SessionRepository]; a cookie whose
// record is missing or revoked no longer authenticates.
type Sessions struct {
	signer     *sec.SessionSigner
	store      SessionRepository
	rememberMe *rememberme.Service
	service    *Service
	metrics    metrics.Recorder
	options    SessionOptions
	now        func() time.Time
}

// NewSessions constructs the cookie manager and subscribes it to remember-me
// theft detection, so a stolen cookie also loses the sessions it minted.
func NewSessions(signer *sec.SessionSigner, store SessionRepository, rememberMe *rememberme.Service, service *Service, recorder metrics.Recorder, options SessionOptions) *Sessions {
	sessions := &Sessions{
		signer:     signer,
		store:      store,
		rememberMe: rememberMe,
		service:    service,
		metrics:    recorder,
		options:    options,
		now:        time.Now,
	}
	rememberMe.OnTheft(sessions.RevokeAllFor)

	return sessions
}

/*
Verify implements the session verifier used by the authentication middleware.

Parameters:
  - context: context.Context
  - token: string (session cookie value)

Returns:
  - *sec.SessionClaims: The verified session
  - error: Signature failures, ErrSessionRevoked or STORAGE_ERROR
*/
func (sessions *Sessions) Verify(context context.Context, token string) (*sec.SessionClaims, error) {
	claims, err := sessions.signer.Verify(token)
	if err != nil {
		return nil, err
	}

	record, err := sessions.store.FindByID(context, claims.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}

	if record.UserID != claims.UserID || !record.Active(sessions.now()) {
		return nil, ErrSessionRevoked
	}

	return claims, nil
}

/*
RevokeAllFor revokes every session of username. Unknown users are ignored.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - error: STORAGE_ERROR
*/
func (sessions *Sessions) RevokeAllFor(context context.Context, username string) error {
	user, err := sessions.service.FindByUsername(context, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	return sessions.store.RevokeAll(context, user.ID)
}

/*
Establish signs in user after a password check.

A remember-me series is opened when remember is set or the policy forces it.

Parameters:
  - context: context.Context
  - writer: http.ResponseWriter
  - user: *User
  - remember: bool

Returns:
  - *sec.SessionClaims: The new session
  - error: STORAGE_ERROR or signing failures
*/
func (sessions *Sessions) Establish(context context.Context, writer http.ResponseWriter, user *User, remember bool) (*sec.SessionClaims, error) {
	if remember || sessions.options.AlwaysRemember {
		cookie, err := sessions.rememberMe.LoginSuccess(context, user.Username)
		if err != nil {
			return nil, err
		}
		sessions.setCookie(writer, constants.RememberMeCookieName, cookie.Value, cookie.MaxAge)
		sessions.metrics.RecordRememberMe(metrics.RememberMeIssued)
	}

	return sessions.issue(context, writer, user, sec.MethodPassword)
}

/*
Resume authenticates a request from its remember-me cookie.

Returns (nil, nil) when the request carries no cookie. Any rejection clears
the cookie and returns an UNAUTHORIZED error; storage failures are returned
as they are and leave the cookie in place.

Parameters:
  - writer: http.ResponseWriter
  - request: *http.Request

Returns:
  - *sec.SessionClaims: The session established from the cookie
  - error: UNAUTHORIZED or STORAGE_ERROR
*/
func (sessions *Sessions) Resume(writer http.ResponseWriter, request *http.Request) (*sec.SessionClaims, error) {
	cookie, err := request.Cookie(constants.RememberMeCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	ctx := request.Context()

	login, err := sessions.rememberMe.AutoLogin(ctx, cookie.Value)
	if err != nil {
		if apperr.IsStorage(err) {
			return nil, err
		}
		sessions.metrics.RecordRememberMe(rejectionOutcome(err))
		sessions.clearCookie(writer, constants.RememberMeCookieName)
		return nil, err
	}

	user, err := sessions.service.FindByUsername(ctx, login.Username)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, err
		}
		if err := sessions.rememberMe.Logout(ctx, login.Username); err != nil {
			return nil, err
		}
		sessions.metrics.RecordRememberMe(metrics.RememberMeRejected)
		sessions.clearCookie(writer, constants.RememberMeCookieName)
		return nil, ErrAccountGone
	}

	sessions.setCookie(writer, constants.RememberMeCookieName, login.Cookie.Value, login.Cookie.MaxAge)
	sessions.metrics.RecordRememberMe(metrics.RememberMeRotated)

	return sessions.issue(ctx, writer, user, sec.MethodRememberMe)
}

/*
Terminate ends the caller's login and clears both cookies.

The current session record is revoked and every remember-me series of the
user is deleted. Nil claims only clear the cookies.

Parameters:
  - context: context.Context
  - writer: http.ResponseWriter
  - claims: *sec.SessionClaims (may be nil)

Returns:
  - error: STORAGE_ERROR
*/
func (sessions *Sessions) Terminate(context context.Context, writer http.ResponseWriter, claims *sec.SessionClaims) error {
	if claims != nil {
		if err := sessions.store.Revoke(context, claims.ID); err != nil {
			return err
		}

		if claims.Username != "" {
			if err := sessions.rememberMe.Logout(context, claims.Username); err != nil {
				return err
			}
			sessions.metrics.RecordRememberMe(metrics.RememberMeRevoked)
		}
	}

	sessions.clearCookie(writer, constants.SessionCookieName)
	sessions.clearCookie(writer, constants.RememberMeCookieName)

	return nil
}

// # Session Records

/*
PurgeExpired deletes session records that can no longer authenticate.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of removed records
  - error: STORAGE_ERROR
*/
func (sessions *Sessions) PurgeExpired(context context.Context) (int64, error) {
	return sessions.store.DeleteExpired(context, sessions.now())
}

// RunPurge calls [Sessions.PurgeExpired] every interval until ctx is cancelled.
func (sessions *Sessions) RunPurge(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := sessions.PurgeExpired(ctx)
			if err != nil {
				log.Error("session_purge_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				log.Info("session_purge_completed", slog.Int64("removed", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (sessions *Sessions) issue(context context.Context, writer http.ResponseWriter, user *User, method string) (*sec.SessionClaims, error) {
	token, _, err := sessions.signer.Issue(user.ID, user.Username, user.Role, method)
	if err != nil {
		return nil, fmt.Errorf("auth_session_issue_failed: %w", err)
	}

	claims, err := sessions.signer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("auth_session_issue_failed: %w", err)
	}

	record := &Session{
		ID:        claims.ID,
		UserID:    user.ID,
		Method:    method,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: claims.IssuedAt.Time,
	}
	if err := sessions.store.Create(context, record); err != nil {
		return nil, err
	}

	sessions.setCookie(writer, constants.SessionCookieName, token, int(sessions.signer.TTL()/time.Second))

	return claims, nil
}

// # Cookies

func (sessions *Sessions) setCookie(writer http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sessions.options.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sessions *Sessions) clearCookie(writer http.ResponseWriter, name string) {
	sessions.setCookie(writer, name, "", -1)
}

func rejectionOutcome(err error) string {
	switch {
	case errors.Is(err, rememberme.ErrCookieTheft):
		return metrics.RememberMeTheft
	case errors.Is(err, rememberme.ErrCookieExpired):
		return metrics.RememberMeExpired
	default:
		return metrics.RememberMeRejected
	}
}
