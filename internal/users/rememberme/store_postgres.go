// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rememberme

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/database/schema"
	"github.com/taibuivan/greeter/internal/platform/dberr"
	"github.com/taibuivan/greeter/internal/platform/postgres"
)

const resourcePersistentLogin = "Persistent login"

var loginColumns = strings.Join(schema.PersistentLogin.Columns(), ", ")

// # Postgres Repository

// PostgresTokenRepository implements [TokenRepository] on the persistent_logins table.
type PostgresTokenRepository struct {
	db postgres.DB
}

// NewPostgresTokenRepository creates a PostgreSQL-backed [TokenRepository].
func NewPostgresTokenRepository(db postgres.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

/*
Save inserts a new row. The series primary key rejects duplicates.

Parameters:
  - context: context.Context
  - login: *PersistentLogin

Returns:
  - error: STORAGE_ERROR (ErrSeriesExists on a duplicate series)
*/
func (repository *PostgresTokenRepository) Save(context context.Context, login *PersistentLogin) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)`,
		schema.PersistentLogin.Table,
		schema.PersistentLogin.Series, schema.PersistentLogin.Username,
		schema.PersistentLogin.Token, schema.PersistentLogin.LastUsed,
	)

	_, err := repository.db.Exec(context, query, login.Series, login.Username, login.Token, login.LastUsed)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.StorageFailure(fmt.Errorf("%w: %v", ErrSeriesExists, err))
		}
		return apperr.StorageFailure(fmt.Errorf("postgres_persistent_login_save_failed: %w", err))
	}

	return nil
}

/*
Update overwrites token and last_used for an existing series.

Parameters:
  - context: context.Context
  - login: *PersistentLogin

Returns:
  - error: NOT_FOUND when no row matched
*/
func (repository *PostgresTokenRepository) Update(context context.Context, login *PersistentLogin) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3
		WHERE %s = $1`,
		schema.PersistentLogin.Table,
		schema.PersistentLogin.Token, schema.PersistentLogin.LastUsed,
		schema.PersistentLogin.Series,
	)

	tag, err := repository.db.Exec(context, query, login.Series, login.Token, login.LastUsed)
	if err != nil {
		return apperr.StorageFailure(fmt.Errorf("postgres_persistent_login_update_failed: %w", err))
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourcePersistentLogin)
	}

	return nil
}

/*
FindBySeries loads one row by primary key.

Parameters:
  - context: context.Context
  - series: string

Returns:
  - *PersistentLogin: Hydrated entity
  - error: NOT_FOUND or STORAGE_ERROR
*/
func (repository *PostgresTokenRepository) FindBySeries(context context.Context, series string) (*PersistentLogin, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		loginColumns, schema.PersistentLogin.Table, schema.PersistentLogin.Series,
	)

	login := &PersistentLogin{}
	err := repository.db.QueryRow(context, query, series).Scan(
		&login.Series,
		&login.Username,
		&login.Token,
		&login.LastUsed,
	)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePersistentLogin, "postgres_persistent_login_find_failed")
	}

	return login, nil
}

/*
FindAllByUsername loads every row owned by username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - []*PersistentLogin: Possibly empty
  - error: STORAGE_ERROR
*/
func (repository *PostgresTokenRepository) FindAllByUsername(context context.Context, username string) ([]*PersistentLogin, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC`,
		loginColumns, schema.PersistentLogin.Table,
		schema.PersistentLogin.Username, schema.PersistentLogin.LastUsed,
	)

	rows, err := repository.db.Query(context, query, username)
	if err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("postgres_persistent_login_list_failed: %w", err))
	}
	defer rows.Close()

	logins := []*PersistentLogin{}
	for rows.Next() {
		login := &PersistentLogin{}
		if err := rows.Scan(&login.Series, &login.Username, &login.Token, &login.LastUsed); err != nil {
			return nil, apperr.StorageFailure(fmt.Errorf("postgres_persistent_login_scan_failed: %w", err))
		}
		logins = append(logins, login)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure(fmt.Errorf("postgres_persistent_login_rows_failed: %w", err))
	}

	return logins, nil
}

/*
DeleteAll removes the rows of the given series in one statement.

Parameters:
  - context: context.Context
  - logins: []*PersistentLogin

Returns:
  - error: STORAGE_ERROR
*/
func (repository *PostgresTokenRepository) DeleteAll(context context.Context, logins []*PersistentLogin) error {
	if len(logins) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1)`,
		schema.PersistentLogin.Table, schema.PersistentLogin.Series)

	if _, err := repository.db.Exec(context, query, seriesOf(logins)); err != nil {
		return apperr.StorageFailure(fmt.Errorf("postgres_persistent_login_delete_failed: %w", err))
	}

	return nil
}

func seriesOf(logins []*PersistentLogin) []string {
	series := make([]string, 0, len(logins))
	for _, login := range logins {
		series = append(series, login.Series)
	}
	return series
}
