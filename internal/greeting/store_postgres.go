// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package greeting

import (
	"context"
	"fmt"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/database/schema"
	"github.com/taibuivan/greeter/internal/platform/dberr"
	"github.com/taibuivan/greeter/internal/platform/postgres"
	"github.com/taibuivan/greeter/pkg/pagination"
)

const resourceGreeting = "Greeting"

// PostgresStore implements [Store] on the greetings table.
type PostgresStore struct {
	db postgres.DB
}

// NewPostgresStore creates a PostgreSQL-backed [Store].
func NewPostgresStore(db postgres.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts one greeting row.
func (store *PostgresStore) Create(context context.Context, greeting *Greeting) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)`,
		schema.Greeting.Table,
		schema.Greeting.ID, schema.Greeting.Name, schema.Greeting.RequestType,
		schema.Greeting.UserID, schema.Greeting.CreatedAt,
	)

	_, err := store.db.Exec(context, query,
		greeting.ID,
		greeting.Name,
		string(greeting.RequestType),
		greeting.UserID,
		greeting.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, resourceGreeting, "postgres_greeting_create_failed")
	}

	return nil
}

// CountByUser counts the greetings attributed to userID.
func (store *PostgresStore) CountByUser(context context.Context, userID int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.Greeting.Table, schema.Greeting.UserID)

	var total int
	if err := store.db.QueryRow(context, query, userID).Scan(&total); err != nil {
		return 0, apperr.StorageFailure(fmt.Errorf("postgres_greeting_count_failed: %w", err))
	}

	return total, nil
}

/*
ListByUser pages through the greetings of userID, newest first.

Parameters:
  - context: context.Context
  - userID: int64
  - params: pagination.Params

Returns:
  - []*Greeting: One page, possibly empty
  - int: Total number of greetings of the user
  - error: STORAGE_ERROR
*/
func (store *PostgresStore) ListByUser(context context.Context, userID int64, params pagination.Params) ([]*Greeting, int, error) {
	total, err := store.CountByUser(context, userID)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3`,
		schema.Greeting.ID, schema.Greeting.Name, schema.Greeting.RequestType,
		schema.Greeting.UserID, schema.Greeting.CreatedAt,
		schema.Greeting.Table,
		schema.Greeting.UserID,
		schema.Greeting.CreatedAt,
	)

	rows, err := store.db.Query(context, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, apperr.StorageFailure(fmt.Errorf("postgres_greeting_list_failed: %w", err))
	}
	defer rows.Close()

	greetings := []*Greeting{}
	for rows.Next() {
		greeting := &Greeting{}
		var requestType string
		if err := rows.Scan(&greeting.ID, &greeting.Name, &requestType, &greeting.UserID, &greeting.CreatedAt); err != nil {
			return nil, 0, apperr.StorageFailure(fmt.Errorf("postgres_greeting_scan_failed: %w", err))
		}
		greeting.RequestType = RequestType(requestType)
		greetings = append(greetings, greeting)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, apperr.StorageFailure(fmt.Errorf("postgres_greeting_rows_failed: %w", err))
	}

	return greetings, total, nil
}
