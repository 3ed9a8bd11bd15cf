// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the service.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: refill period and header names.
  - Security: cookie names and session issuer.

Tunable values live in [config.Config]; only protocol-fixed values live here.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "greeter-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitPeriod is the window in which a full bucket capacity refills.
	RateLimitPeriod = 1 * time.Minute

	// RateLimitSweepInterval is how often idle buckets are considered for eviction.
	RateLimitSweepInterval = 1 * time.Minute

	// SessionPurgeInterval is how often expired session records are deleted.
	SessionPurgeInterval = 1 * time.Hour

	// RateLimitKeyUser prefixes the bucket key of an authenticated actor.
	RateLimitKeyUser = "user:"

	// RateLimitKeyIP prefixes the bucket key of an anonymous actor.
	RateLimitKeyIP = "ip:"
)

// # Authentication

const (
	// SessionIssuer is the 'iss' claim of session tokens.
	SessionIssuer = "greeter"

	// SessionCookieName is the name of the cookie carrying the session token.
	SessionCookieName = "session"

	// RememberMeCookieName is the conventional persistent-login cookie name.
	RememberMeCookieName = "remember-me"

	// CookiePath scopes both authentication cookies to the whole site.
	CookiePath = "/"
)

// # HTTP Headers

const (
	HeaderXRequestID          = "X-Request-ID"
	HeaderXRealIP             = "X-Real-IP"
	HeaderXForwardedFor       = "X-Forwarded-For"
	HeaderRetryAfter          = "Retry-After"
	HeaderRateLimitRemaining  = "X-RateLimit-Remaining"
	HeaderRateLimitLimit      = "X-RateLimit-Limit"
	HeaderContentType         = "Content-Type"
	ContentTypeJSON           = "application/json; charset=utf-8"
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

// # JSON Field Identifiers

const (
	FieldData       = "data"
	FieldError      = "error"
	FieldCode       = "code"
	FieldDetails    = "details"
	FieldStatus     = "status"
	FieldChecks     = "checks"
	FieldRetryAfter = "retryAfter"
)

// # Redis Prefixes

const (
	RedisPrefixRememberMeSeries = "rememberme:series:"
	RedisPrefixRememberMeUser   = "rememberme:user:"
	RedisPrefixSession          = "session:id:"
	RedisPrefixSessionUser      = "session:user:"
)
