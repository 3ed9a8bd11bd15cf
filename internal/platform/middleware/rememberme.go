// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/ctxutil"
	"github.com/taibuivan/greeter/internal/platform/respond"
	"github.com/taibuivan/greeter/internal/platform/sec"
)

// # Remember-Me

// SessionResumer signs a request in from its remember-me cookie.
//
// It returns (nil, nil) when the request carries no cookie.
type SessionResumer interface {
	Resume(writer http.ResponseWriter, request *http.Request) (*sec.SessionClaims, error)
}

// RememberMe performs automatic login for requests without a valid session.
//
// # Flow
//  1. A request that already has a user session passes through.
//  2. A valid cookie is rotated and the new session is attached.
//  3. A rejected cookie is cleared by the resumer and the request continues
//     anonymously.
//  4. A storage failure aborts the request with 503.
func RememberMe(resumer SessionResumer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if ctxutil.IsAuthenticated(request.Context()) {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := resumer.Resume(writer, request)
			if err != nil {
				if apperr.IsStorage(err) {
					respond.Error(writer, request, err)
					return
				}
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "remember_me_rejected",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(writer, request)
				return
			}

			if claims != nil {
				ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "remember_me_login",
					slog.String("username", claims.Username),
				)
				request = withClaims(request, claims)
			}

			next.ServeHTTP(writer, request)
		})
	}
}
