// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential store and the login session lifecycle.

It owns user accounts (including the single shared guest), password
verification, and the two cookies that carry identity: the short-lived signed
session and the persistent remember-me cookie issued through the rememberme
package.

# Architecture

  - Repository: [UserRepository] over postgres, [SessionRepository] over
    postgres, redis or memory.
  - Service: signup, password authentication and guest bootstrap.
  - Sessions: cookie issue, revocation, remember-me resume and logout.
  - Handler: HTTP endpoints.
*/
package auth

import (
	"time"

	"github.com/taibuivan/greeter/internal/platform/sec"
)

// # Domain Entities

// User is an account. Exactly one account holds the GUEST role.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
}

// IsGuest reports whether u is the shared anonymous account.
func (u *User) IsGuest() bool {
	return u.Role == sec.RoleGuest
}

// Session is the server-side record of one signed session cookie.
//
// The cookie authenticates only while the record exists and is active.
type Session struct {
	ID        string
	UserID    int64
	Method    string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session is unrevoked and unexpired at t.
func (s *Session) Active(t time.Time) bool {
	return s.RevokedAt == nil && t.Before(s.ExpiresAt)
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldPassword = "password"
)
