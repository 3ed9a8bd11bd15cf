// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rememberme

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/sec"
)

// Random byte lengths of the two cookie halves.
const (
	SeriesLength = 16
	TokenLength  = 16
)

// Rejections of [Service.AutoLogin]. All of them are 401s.
var (
	ErrUnknownSeries = apperr.Unauthorized("No persistent login found for this cookie")
	ErrCookieTheft   = apperr.Unauthorized("Remember-me token mismatch, all persistent logins revoked")
	ErrCookieExpired = apperr.Unauthorized("Remember-me login has expired")
)

// Cookie is the value and lifetime of a remember-me cookie to set.
type Cookie struct {
	Value  string
	MaxAge int
}

// Login is the outcome of a successful cookie login.
type Login struct {
	Username string
	Series   string
	Cookie   *Cookie
}

// TheftHook is told the owner of a series whose token was replayed.
type TheftHook func(context context.Context, username string) error

// Service runs the remember-me cookie protocol.
type Service struct {
	engine   *Engine
	validity time.Duration
	now      func() time.Time
	generate func(length int) (string, error)
	onTheft  []TheftHook
}

// NewService creates a Service honouring cookies for validity since their last use.
func NewService(engine *Engine, validity time.Duration) *Service {
	return &Service{
		engine:   engine,
		validity: validity,
		now:      time.Now,
		generate: sec.GenerateSecureToken,
	}
}

// WithClock replaces the time source. Used by tests.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// OnTheft registers hook to run after a theft signal has revoked the owner's series.
func (service *Service) OnTheft(hook TheftHook) {
	service.onTheft = append(service.onTheft, hook)
}

// Validity returns the inactivity window.
func (service *Service) Validity() time.Duration {
	return service.validity
}

/*
LoginSuccess opens a new series for username after a password login.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Cookie: The value to send to the client
  - error: STORAGE_ERROR or random source failures
*/
func (service *Service) LoginSuccess(context context.Context, username string) (*Cookie, error) {
	series, err := service.generate(SeriesLength)
	if err != nil {
		return nil, fmt.Errorf("rememberme_series_generation_failed: %w", err)
	}

	token, err := service.generate(TokenLength)
	if err != nil {
		return nil, fmt.Errorf("rememberme_token_generation_failed: %w", err)
	}

	if err := service.engine.IssueToken(context, username, series, token, service.now()); err != nil {
		return nil, err
	}

	return service.cookie(series, token), nil
}

/*
AutoLogin authenticates a request from its remember-me cookie.

Flow:
 1. Decode the cookie into series and token.
 2. Look up the series. Unknown series are rejected.
 3. Compare the presented token with the stored one in constant time. A
    mismatch revokes every series of the owner and runs the theft hooks.
 4. Reject slots unused for longer than the validity window.
 5. Rotate the token and return the replacement cookie.

Parameters:
  - context: context.Context
  - cookieValue: string

Returns:
  - *Login: The owner and the rotated cookie
  - error: UNAUTHORIZED rejections or STORAGE_ERROR
*/
func (service *Service) AutoLogin(context context.Context, cookieValue string) (*Login, error) {

	// 1. Decode
	series, presented, err := DecodeCookie(cookieValue)
	if err != nil {
		return nil, err
	}

	// 2. Lookup
	stored, err := service.engine.LookupBySeries(context, series)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrUnknownSeries
		}
		return nil, err
	}

	// 3. Theft detection
	if !sec.ConstantTimeEqual(presented, stored.Token) {
		if err := service.engine.RevokeAllForUser(context, stored.Username); err != nil {
			return nil, err
		}
		for _, hook := range service.onTheft {
			if err := hook(context, stored.Username); err != nil {
				return nil, err
			}
		}
		return nil, ErrCookieTheft
	}

	// 4. Validity window
	currentTime := service.now()
	if stored.ExpiredAt(currentTime, service.validity) {
		return nil, ErrCookieExpired
	}

	// 5. Rotation
	token, err := service.generate(TokenLength)
	if err != nil {
		return nil, fmt.Errorf("rememberme_token_generation_failed: %w", err)
	}

	if err := service.engine.RotateToken(context, series, token, currentTime); err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrUnknownSeries
		}
		return nil, err
	}

	return &Login{
		Username: stored.Username,
		Series:   series,
		Cookie:   service.cookie(series, token),
	}, nil
}

// Logout revokes every series of username.
func (service *Service) Logout(context context.Context, username string) error {
	return service.engine.RevokeAllForUser(context, username)
}

func (service *Service) cookie(series, token string) *Cookie {
	return &Cookie{
		Value:  EncodeCookie(series, token),
		MaxAge: int(service.validity / time.Second),
	}
}
