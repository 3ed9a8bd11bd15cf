// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package greeting_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/greeter/internal/greeting"
	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/pkg/pagination"
)

/*
TestPostgresStore_CreateAndCount verifies the insert and count statements.
*/
func TestPostgresStore_CreateAndCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := greeting.NewPostgresStore(mock)
	createdAt := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO greetings")).
		WithArgs("g-1", "World", "API", int64(1), createdAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM greetings WHERE user_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(int64(2)).
		WillReturnError(errors.New("connection reset"))

	err = store.Create(context.Background(), &greeting.Greeting{
		ID: "g-1", Name: "World", RequestType: greeting.RequestTypeAPI, UserID: 1, CreatedAt: createdAt,
	})
	require.NoError(t, err)

	total, err := store.CountByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	_, err = store.CountByUser(context.Background(), 2)
	assert.True(t, apperr.IsStorage(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresStore_ListByUser verifies paging arguments and row mapping.
*/
func TestPostgresStore_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := greeting.NewPostgresStore(mock)
	createdAt := time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs(int64(5), 10, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "request_type", "user_id", "created_at"}).
			AddRow("g-9", "Ada", "WEB", int64(5), createdAt))

	greetings, total, err := store.ListByUser(context.Background(), 5, pagination.Params{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, greetings, 1)
	assert.Equal(t, greeting.RequestTypeWeb, greetings[0].RequestType)
	assert.Equal(t, "Good Night, Ada!", greetings[0].Message())

	assert.NoError(t, mock.ExpectationsWereMet())
}
