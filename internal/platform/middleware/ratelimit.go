// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/taibuivan/greeter/internal/platform/constants"
	"github.com/taibuivan/greeter/internal/platform/ctxutil"
	"github.com/taibuivan/greeter/internal/platform/metrics"
	"github.com/taibuivan/greeter/internal/platform/respond"
	"github.com/taibuivan/greeter/internal/ratelimit"
)

// # Rate Limiting

// GateConfig scopes the rate-limit gate.
type GateConfig struct {
	// PathPrefix selects the guarded requests. Empty guards every path.
	PathPrefix string

	// TrustProxy keys anonymous actors on X-Real-IP / X-Forwarded-For.
	TrustProxy bool
}

// Decision is the outcome of the gate for one request.
type Decision struct {
	Key               string
	Admitted          bool
	Remaining         int64
	Limit             int
	RetryAfterSeconds int64
}

// Decide consumes one token for key and translates the probe into a [Decision].
func Decide(limiter *ratelimit.Limiter, key string) Decision {
	probe := limiter.Consume(key)

	return Decision{
		Key:               key,
		Admitted:          probe.Admitted,
		Remaining:         probe.Remaining,
		Limit:             limiter.Capacity(),
		RetryAfterSeconds: probe.RetryAfterSeconds(),
	}
}

/*
RateLimit admits or rejects each guarded request against the bucket of its actor.

Authenticated requests are keyed on the username, anonymous ones on the client
address. A rejection ends the chain with 429 and a Retry-After hint.

Parameters:
  - limiter: *ratelimit.Limiter (shared, constructed once at startup)
  - config: GateConfig
  - recorder: metrics.Recorder

Returns:
  - func(http.Handler) http.Handler: The middleware
*/
func RateLimit(limiter *ratelimit.Limiter, config GateConfig, recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !strings.HasPrefix(request.URL.Path, config.PathPrefix) {
				next.ServeHTTP(writer, request)
				return
			}

			username := ""
			if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
				username = claims.Username
			}

			decision := Decide(limiter, ratelimit.ActorKey(username, ClientAddress(request, config.TrustProxy)))

			if !decision.Admitted {
				recorder.RecordRateLimit(metrics.DecisionDenied)
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "rate_limit_exceeded",
					slog.String("key", decision.Key),
					slog.Int64("retry_after_s", decision.RetryAfterSeconds),
				)
				respond.TooManyRequests(writer, decision.RetryAfterSeconds)
				return
			}

			recorder.RecordRateLimit(metrics.DecisionAdmitted)
			header := writer.Header()
			header.Set(constants.HeaderRateLimitRemaining, strconv.FormatInt(decision.Remaining, 10))
			header.Set(constants.HeaderRateLimitLimit, strconv.Itoa(decision.Limit))

			next.ServeHTTP(writer, request)
		})
	}
}
