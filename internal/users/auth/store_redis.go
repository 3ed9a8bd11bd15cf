// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/constants"
)

// Hash fields of a session key.
const (
	fieldUserID    = "user_id"
	fieldMethod    = "method"
	fieldExpiresAt = "expires_at"
	fieldCreatedAt = "created_at"
)

// # Redis Session Repository

// RedisSessionRepository implements [SessionRepository] with one hash per
// session, expiring with the cookie, and one set of session ids per user.
//
// Revocation deletes the hash, so a revoked session reads as NOT_FOUND.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a Redis-backed [SessionRepository].
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

func userSessionsKey(userID int64) string {
	return constants.RedisPrefixSessionUser + strconv.FormatInt(userID, 10)
}

// Create implements [SessionRepository].
func (repository *RedisSessionRepository) Create(context context.Context, session *Session) error {
	key := sessionKey(session.ID)
	index := userSessionsKey(session.UserID)

	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, key,
			fieldUserID, session.UserID,
			fieldMethod, session.Method,
			fieldExpiresAt, session.ExpiresAt.UnixNano(),
			fieldCreatedAt, session.CreatedAt.UnixNano(),
		)
		pipe.ExpireAt(context, key, session.ExpiresAt)
		pipe.SAdd(context, index, session.ID)
		pipe.ExpireAt(context, index, session.ExpiresAt)
		return nil
	})
	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("redis_session_create_failed: %w", err))
	}

	return nil
}

// FindByID implements [SessionRepository].
func (repository *RedisSessionRepository) FindByID(context context.Context, sessionID string) (*Session, error) {
	fields, err := repository.client.HGetAll(context, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("redis_session_find_failed: %w", err))
	}

	if len(fields) == 0 {
		return nil, apperr.NotFound(resourceSession)
	}

	return decodeSession(sessionID, fields)
}

// Revoke implements [SessionRepository].
func (repository *RedisSessionRepository) Revoke(context context.Context, sessionID string) error {
	key := sessionKey(sessionID)

	userID, err := repository.client.HGet(context, key, fieldUserID).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("redis_session_revoke_failed: %w", err))
	}

	_, err = repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Del(context, key)
		pipe.SRem(context, userSessionsKey(userID), sessionID)
		return nil
	})
	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("redis_session_revoke_failed: %w", err))
	}

	return nil
}

// RevokeAll implements [SessionRepository].
func (repository *RedisSessionRepository) RevokeAll(context context.Context, userID int64) error {
	index := userSessionsKey(userID)

	members, err := repository.client.SMembers(context, index).Result()
	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("redis_session_index_failed: %w", err))
	}

	_, err = repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		for _, sessionID := range members {
			pipe.Del(context, sessionKey(sessionID))
		}
		pipe.Del(context, index)
		return nil
	})
	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("redis_session_revoke_all_failed: %w", err))
	}

	return nil
}

// DeleteExpired implements [SessionRepository]. Redis expires the keys itself.
func (repository *RedisSessionRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func decodeSession(sessionID string, fields map[string]string) (*Session, error) {
	userID, err := strconv.ParseInt(fields[fieldUserID], 10, 64)
	if err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("redis_session_corrupt: %w", err))
	}

	expiresAt, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("redis_session_corrupt: %w", err))
	}

	createdAt, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("redis_session_corrupt: %w", err))
	}

	return &Session{
		ID:        sessionID,
		UserID:    userID,
		Method:    fields[fieldMethod],
		ExpiresAt: time.Unix(0, expiresAt).UTC(),
		CreatedAt: time.Unix(0, createdAt).UTC(),
	}, nil
}
