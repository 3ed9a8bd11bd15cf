// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rememberme implements persistent "remember me" login.

A login with remember-me enabled creates a series: a stable identifier that
survives across uses, paired with a token value that is replaced every time
the cookie is presented. Presenting a known series with a stale token value
means the cookie was copied and used elsewhere.

Layers:

  - [TokenRepository]: durable series to token mapping (postgres, redis, memory).
  - [Engine]: issue, lookup, rotate, revoke. Stores timestamps, never expires rows.
  - [Service]: the cookie protocol built on the engine, including the
    validity window and theft handling.
*/
package rememberme

import "time"

// # Domain Entities

// PersistentLogin is one remember-me slot.
type PersistentLogin struct {
	// Series identifies the slot and never changes.
	Series string `json:"series"`

	// Username owns the slot.
	Username string `json:"username"`

	// Token is the current secret half of the cookie.
	Token string `json:"-"`

	// LastUsed is the time of issue or of the latest rotation.
	LastUsed time.Time `json:"last_used"`
}

// ExpiredAt reports whether the slot has been inactive for longer than validity at now.
func (login *PersistentLogin) ExpiredAt(now time.Time, validity time.Duration) bool {
	return now.Sub(login.LastUsed) > validity
}
