// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rememberme

import (
	"context"
	"time"
)

// Engine drives the per-series state machine on top of a [TokenRepository].
//
//	ABSENT --IssueToken--> ACTIVE --RotateToken--> ACTIVE'
//	ACTIVE --RevokeAllForUser--> ABSENT
//
// It stores timestamps but never expires rows; the validity window is applied
// by [Service].
type Engine struct {
	repository TokenRepository
}

// NewEngine creates an Engine over repository.
func NewEngine(repository TokenRepository) *Engine {
	return &Engine{repository: repository}
}

// IssueToken creates the slot series owned by username with its first token value.
func (engine *Engine) IssueToken(context context.Context, username, series, tokenValue string, issuedAt time.Time) error {
	return engine.repository.Save(context, &PersistentLogin{
		Series:   series,
		Username: username,
		Token:    tokenValue,
		LastUsed: issuedAt,
	})
}

// LookupBySeries returns the current state of series. NOT_FOUND is a normal outcome.
func (engine *Engine) LookupBySeries(context context.Context, series string) (*PersistentLogin, error) {
	return engine.repository.FindBySeries(context, series)
}

// RotateToken replaces the token value of series and advances its last-used time.
//
// The caller compares the presented value with the stored one before rotating.
// NOT_FOUND means the series vanished between lookup and rotation.
func (engine *Engine) RotateToken(context context.Context, series, newTokenValue string, usedAt time.Time) error {
	return engine.repository.Update(context, &PersistentLogin{
		Series:   series,
		Token:    newTokenValue,
		LastUsed: usedAt,
	})
}

// RevokeAllForUser deletes every slot owned by username. Revoking a user
// without slots succeeds.
func (engine *Engine) RevokeAllForUser(context context.Context, username string) error {
	logins, err := engine.repository.FindAllByUsername(context, username)
	if err != nil {
		return err
	}

	if len(logins) == 0 {
		return nil
	}

	return engine.repository.DeleteAll(context, logins)
}
