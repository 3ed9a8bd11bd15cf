// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rememberme

import (
	"context"
	"errors"
)

// ErrSeriesExists is the cause of the storage error returned when Save meets a taken series.
var ErrSeriesExists = errors.New("rememberme: series already exists")

// # Token Data Access

// TokenRepository defines the data access contract for persistent logins.
//
// Every implementation reports failures as [apperr.AppError]: NOT_FOUND for an
// unknown series, STORAGE_ERROR for anything else.
type TokenRepository interface {

	/*
		Save inserts a new slot.

		Parameters:
		  - context: context.Context
		  - login: *PersistentLogin

		Returns:
		  - error: STORAGE_ERROR wrapping ErrSeriesExists when the series is taken
	*/
	Save(context context.Context, login *PersistentLogin) error

	/*
		Update overwrites the token value and last-used time of an existing slot.

		Parameters:
		  - context: context.Context
		  - login: *PersistentLogin

		Returns:
		  - error: NOT_FOUND when the series is unknown
	*/
	Update(context context.Context, login *PersistentLogin) error

	/*
		FindBySeries returns the slot with the given series.

		Parameters:
		  - context: context.Context
		  - series: string

		Returns:
		  - *PersistentLogin: Current slot state
		  - error: NOT_FOUND when the series is unknown
	*/
	FindBySeries(context context.Context, series string) (*PersistentLogin, error)

	/*
		FindAllByUsername returns every slot owned by username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - []*PersistentLogin: Possibly empty
		  - error: Storage failures
	*/
	FindAllByUsername(context context.Context, username string) ([]*PersistentLogin, error)

	/*
		DeleteAll removes the given slots. Slots already gone are ignored.

		Parameters:
		  - context: context.Context
		  - logins: []*PersistentLogin

		Returns:
		  - error: Storage failures
	*/
	DeleteAll(context context.Context, logins []*PersistentLogin) error
}
