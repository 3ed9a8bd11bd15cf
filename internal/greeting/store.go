// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package greeting

import (
	"context"

	"github.com/taibuivan/greeter/pkg/pagination"
)

// Store persists greetings.
type Store interface {
	// Create inserts a greeting whose ID and CreatedAt are already set.
	Create(ctx context.Context, greeting *Greeting) error

	// CountByUser returns how many greetings were recorded for userID.
	CountByUser(ctx context.Context, userID int64) (int, error)

	// ListByUser returns a page of greetings for userID, newest first, and
	// the total count.
	ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]*Greeting, int, error)
}
