// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/greeter/internal/platform/database/schema"
	"github.com/taibuivan/greeter/internal/platform/dberr"
	"github.com/taibuivan/greeter/internal/platform/postgres"
	"github.com/taibuivan/greeter/internal/platform/sec"
)

const (
	resourceUser    = "User"
	resourceSession = "Session"
)

var (
	userColumns    = strings.Join(schema.User.Columns(), ", ")
	sessionColumns = strings.Join(schema.Session.Columns(), ", ")
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	db postgres.DB
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db postgres.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
Create inserts the account and reads back the generated id and timestamp.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: CONFLICT from the partial unique indexes, or STORAGE_ERROR
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s`,
		schema.User.Table,
		schema.User.Username, schema.User.PasswordHash, schema.User.Role,
		schema.User.ID, schema.User.CreatedAt,
	)

	err := repository.db.QueryRow(context, query, user.Username, user.PasswordHash, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, resourceUser, "postgres_user_create_failed")
	}

	return nil
}

/*
FindByUsername looks up a registered account.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: NOT_FOUND or STORAGE_ERROR
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s <> $2`,
		userColumns, schema.User.Table, schema.User.Username, schema.User.Role,
	)

	return repository.scanOne(context, query, username, string(sec.RoleGuest))
}

/*
FindGuest looks up the single guest row.

Parameters:
  - context: context.Context

Returns:
  - *User: Hydrated account entity
  - error: NOT_FOUND or STORAGE_ERROR
*/
func (repository *PostgresUserRepository) FindGuest(context context.Context) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		userColumns, schema.User.Table, schema.User.Role,
	)

	return repository.scanOne(context, query, string(sec.RoleGuest))
}

func (repository *PostgresUserRepository) scanOne(context context.Context, query string, arguments ...any) (*User, error) {
	user := &User{}
	var role string

	err := repository.db.QueryRow(context, query, arguments...).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, resourceUser, "postgres_user_find_failed")
	}

	user.Role = sec.UserRole(role)
	return user, nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] on the sessions table.
type PostgresSessionRepository struct {
	db postgres.DB
}

// NewSessionRepository creates a PostgreSQL-backed [SessionRepository].
func NewSessionRepository(db postgres.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Create implements [SessionRepository].
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)`,
		schema.Session.Table,
		schema.Session.ID, schema.Session.UserID, schema.Session.Method,
		schema.Session.ExpiresAt, schema.Session.CreatedAt,
	)

	_, err := repository.db.Exec(context, query,
		session.ID, session.UserID, session.Method, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, resourceSession, "postgres_session_create_failed")
	}

	return nil
}

/*
FindByID loads a session record, revoked or not.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - *Session: Hydrated entity
  - error: NOT_FOUND or STORAGE_ERROR
*/
func (repository *PostgresSessionRepository) FindByID(context context.Context, sessionID string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		sessionColumns, schema.Session.Table, schema.Session.ID,
	)

	session := &Session{}
	err := repository.db.QueryRow(context, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.Method,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.RevokedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, resourceSession, "postgres_session_find_failed")
	}

	return session, nil
}

// Revoke implements [SessionRepository].
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = now()
		WHERE %s = $1 AND %s IS NULL`,
		schema.Session.Table,
		schema.Session.RevokedAt,
		schema.Session.ID, schema.Session.RevokedAt,
	)

	if _, err := repository.db.Exec(context, query, sessionID); err != nil {
		return dberr.Wrap(err, resourceSession, "postgres_session_revoke_failed")
	}

	return nil
}

// RevokeAll implements [SessionRepository].
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = now()
		WHERE %s = $1 AND %s IS NULL`,
		schema.Session.Table,
		schema.Session.RevokedAt,
		schema.Session.UserID, schema.Session.RevokedAt,
	)

	if _, err := repository.db.Exec(context, query, userID); err != nil {
		return dberr.Wrap(err, resourceSession, "postgres_session_revoke_all_failed")
	}

	return nil
}

// DeleteExpired implements [SessionRepository].
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, before time.Time) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s < $1`,
		schema.Session.Table, schema.Session.ExpiresAt,
	)

	tag, err := repository.db.Exec(context, query, before)
	if err != nil {
		return 0, dberr.Wrap(err, resourceSession, "postgres_session_delete_expired_failed")
	}

	return tag.RowsAffected(), nil
}
