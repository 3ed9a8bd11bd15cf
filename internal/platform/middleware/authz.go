// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/constants"
	"github.com/taibuivan/greeter/internal/platform/ctxutil"
	"github.com/taibuivan/greeter/internal/platform/respond"
	"github.com/taibuivan/greeter/internal/platform/sec"
)

// SessionVerifier defines the interface needed to verify session cookies in middleware.
//
// Defining it here decouples the middleware from the auth package and lets
// tests inject a plain signer.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*sec.SessionClaims, error)
}

// SessionAuth reads the session cookie and attaches its claims to the request.
//
// # Flow
//  1. No cookie: the request proceeds as anonymous.
//  2. Invalid, expired or revoked cookie: also anonymous, a stale cookie never
//     blocks the remember-me filter from signing the user back in. A storage
//     failure while checking revocation ends the request with 503.
//  3. Valid cookie: [*sec.SessionClaims] are injected into the context.
func SessionAuth(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			cookie, err := request.Cookie(constants.SessionCookieName)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(request.Context(), cookie.Value)
			if apperr.IsStorage(err) {
				respond.Error(writer, request, err)
				return
			}
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "session_cookie_rejected",
					"error", err.Error(),
				)
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			next.ServeHTTP(writer, withClaims(request, claims))
		})
	}
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// Anonymous requests get 401, insufficient roles 403. Must be registered
// AFTER [SessionAuth] and [RememberMe].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Identity Tracking

type trackerKey struct{}

// identityTracker lets the outer logger observe claims attached further down the chain.
type identityTracker struct {
	claims *sec.SessionClaims
}

func withIdentityTracker(ctx context.Context, tracker *identityTracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, tracker)
}

// withClaims attaches claims to the request context and reports them to the logger.
func withClaims(request *http.Request, claims *sec.SessionClaims) *http.Request {
	if tracker, ok := request.Context().Value(trackerKey{}).(*identityTracker); ok {
		tracker.claims = claims
	}
	return request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
}
