// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByUsername returns the registered account with the given username.
		The guest is never returned.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: NOT_FOUND or STORAGE_ERROR
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindGuest returns the shared guest account.

		Parameters:
		  - context: context.Context

		Returns:
		  - *User: Hydrated entity
		  - error: NOT_FOUND before bootstrap, or STORAGE_ERROR
	*/
	FindGuest(context context.Context) (*User, error)

	/*
		Create persists a new account and fills its ID and CreatedAt.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: CONFLICT on a taken username or second guest, or STORAGE_ERROR
	*/
	Create(context context.Context, user *User) error
}

// # Session Data Access

// SessionRepository tracks issued session cookies so they can be revoked
// before they expire.
type SessionRepository interface {

	/*
		Create persists the record of a newly signed session.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: STORAGE_ERROR
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByID returns the session record named by a cookie's 'jti'.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - *Session: Hydrated entity
		  - error: NOT_FOUND or STORAGE_ERROR
	*/
	FindByID(context context.Context, sessionID string) (*Session, error)

	/*
		Revoke invalidates a single session. Unknown ids are ignored.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: STORAGE_ERROR
	*/
	Revoke(context context.Context, sessionID string) error

	/*
		RevokeAll invalidates every active session of userID.

		Parameters:
		  - context: context.Context
		  - userID: int64

		Returns:
		  - error: STORAGE_ERROR
	*/
	RevokeAll(context context.Context, userID int64) error

	/*
		DeleteExpired removes records that expired before the cutoff.

		Parameters:
		  - context: context.Context
		  - before: time.Time

		Returns:
		  - int64: Number of removed records
		  - error: STORAGE_ERROR
	*/
	DeleteExpired(context context.Context, before time.Time) (int64, error)
}
