// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rememberme

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

// Hash fields of a series key.
const (
	fieldUsername = "username"
	fieldToken    = "token"
	fieldLastUsed = "last_used"
)

// # Redis Repository

// RedisTokenRepository implements [TokenRepository] with one hash per series
// and one set of series per username.
type RedisTokenRepository struct {
	client *redis.Client
}

// NewRedisTokenRepository creates a Redis-backed [TokenRepository].
func NewRedisTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client}
}

func seriesKey(series string) string {
	return constants.RedisPrefixRememberMeSeries + series
}

func userKey(username string) string {
	return constants.RedisPrefixRememberMeUser + username
}

/*
Save creates the series hash and indexes it under its owner.

The existence check and the writes run in one WATCH transaction.

Parameters:
  - context: context.Context
  - login: *PersistentLogin

Returns:
  - error: STORAGE_ERROR (ErrSeriesExists on a duplicate series)
*/
func (repository *RedisTokenRepository) Save(context context.Context, login *PersistentLogin) error {
	key := seriesKey(login.Series)

	err := repository.client.Watch(context, func(tx *redis.Tx) error {
		exists, err := tx.Exists(context, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return ErrSeriesExists
		}

		_, err = tx.TxPipelined(context, func(pipe redis.Pipeliner) error {
			pipe.HSet(context, key,
				fieldUsername, login.Username,
				fieldToken, login.Token,
				fieldLastUsed, encodeTime(login.LastUsed),
			)
			pipe.SAdd(context, userKey(login.Username), login.Series)
			return nil
		})
		return err
	}, key)

	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("redis_persistent_login_save_failed: %w", err))
	}

	return nil
}

/*
Update replaces token and last_used when the series still exists.

Parameters:
  - context: context.Context
  - login: *PersistentLogin

Returns:
  - error: NOT_FOUND when the series is unknown
*/
func (repository *RedisTokenRepository) Update(context context.Context, login *PersistentLogin) error {
	key := seriesKey(login.Series)
	missing := false

	err := repository.client.Watch(context, func(tx *redis.Tx) error {
		exists, err := tx.Exists(context, key).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			missing = true
			return nil
		}

		_, err = tx.TxPipelined(context, func(pipe redis.Pipeliner) error {
			pipe.HSet(context, key,
				fieldToken, login.Token,
				fieldLastUsed, encodeTime(login.LastUsed),
			)
			return nil
		})
		return err
	}, key)

	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("redis_persistent_login_update_failed: %w", err))
	}

	if missing {
		return apperr.NotFound(resourcePersistentLogin)
	}

	return nil
}

/*
FindBySeries reads the series hash.

Parameters:
  - context: context.Context
  - series: string

Returns:
  - *PersistentLogin: Hydrated entity
  - error: NOT_FOUND or STORAGE_ERROR
*/
func (repository *RedisTokenRepository) FindBySeries(context context.Context, series string) (*PersistentLogin, error) {
	fields, err := repository.client.HGetAll(context, seriesKey(series)).Result()
	if err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("redis_persistent_login_find_failed: %w", err))
	}

	if len(fields) == 0 {
		return nil, apperr.NotFound(resourcePersistentLogin)
	}

	return decodeLogin(series, fields)
}

/*
FindAllByUsername resolves the owner's series set and loads each hash.

Index entries whose hash has vanished are skipped.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - []*PersistentLogin: Possibly empty
  - error: STORAGE_ERROR
*/
func (repository *RedisTokenRepository) FindAllByUsername(context context.Context, username string) ([]*PersistentLogin, error) {
	members, err := repository.client.SMembers(context, userKey(username)).Result()
	if err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("redis_persistent_login_index_failed: %w", err))
	}

	logins := []*PersistentLogin{}
	if len(members) == 0 {
		return logins, nil
	}

	pipe := repository.client.Pipeline()
	commands := make([]*redis.MapStringStringCmd, len(members))
	for index, series := range members {
		commands[index] = pipe.HGetAll(context, seriesKey(series))
	}

	if _, err := pipe.Exec(context); err != nil && !errors.Is(err, redis.Nil) {
		return nil, apperr.StorageFailure(fmt.Errorf("redis_persistent_login_list_failed: %w", err))
	}

	for index, command := range commands {
		fields := command.Val()
		if len(fields) == 0 {
			continue
		}

		login, err := decodeLogin(members[index], fields)
		if err != nil {
			return nil, err
		}
		logins = append(logins, login)
	}

	return logins, nil
}

/*
DeleteAll removes the series hashes and their index entries.

Parameters:
  - context: context.Context
  - logins: []*PersistentLogin

Returns:
  - error: STORAGE_ERROR
*/
func (repository *RedisTokenRepository) DeleteAll(context context.Context, logins []*PersistentLogin) error {
	if len(logins) == 0 {
		return nil
	}

	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		for _, login := range logins {
			pipe.Del(context, seriesKey(login.Series))
			pipe.SRem(context, userKey(login.Username), login.Series)
		}
		return nil
	})
	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("redis_persistent_login_delete_failed: %w", err))
	}

	return nil
}

// # Encoding

func encodeTime(at time.Time) string {
	return strconv.FormatInt(at.UnixNano(), 10)
}

func decodeLogin(series string, fields map[string]string) (*PersistentLogin, error) {
	nanos, err := strconv.ParseInt(fields[fieldLastUsed], 10, 64)
	if err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("redis_persistent_login_corrupt: %w", err))
	}

	return &PersistentLogin{
		Series:   series,
		Username: fields[fieldUsername],
		Token:    fields[fieldToken],
		LastUsed: time.Unix(0, nanos).UTC(),
	}, nil
}
