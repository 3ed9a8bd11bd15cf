// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package greeting

import (
	"context"
	"strings"
	"time"

	"github.com/taibuivan/greeter/internal/platform/validate"
	"github.com/taibuivan/greeter/pkg/pagination"
	"github.com/taibuivan/greeter/pkg/uuidv7"
)

// DefaultName is greeted when the caller gives no name.
const DefaultName = "World"

const nameMaxLength = 100

// Service records greetings and answers history queries.
type Service struct {
	store Store
	now   func() time.Time
	newID uuidv7.Generator
}

// NewService constructs a new [Service] using the wall clock and UUIDv7 ids.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now, newID: uuidv7.New}
}

// WithClock replaces the time source. It returns the service for chaining.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// WithIDs replaces the id generator. It returns the service for chaining.
func (service *Service) WithIDs(generator uuidv7.Generator) *Service {
	service.newID = generator
	return service
}

/*
Greet records a greeting for name on behalf of userID.

A blank name is replaced by [DefaultName].

Parameters:
  - context: context.Context
  - name: string
  - requestType: RequestType
  - userID: int64 (the caller, or the guest account)

Returns:
  - *Greeting: The stored greeting
  - error: VALIDATION_ERROR or STORAGE_ERROR
*/
func (service *Service) Greet(context context.Context, name string, requestType RequestType, userID int64) (*Greeting, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	validator := &validate.Validator{}
	validator.MaxLen(FieldName, name, nameMaxLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	id, err := service.newID()
	if err != nil {
		return nil, err
	}

	greeting := &Greeting{
		ID:          id,
		Name:        name,
		RequestType: requestType,
		UserID:      userID,
		CreatedAt:   service.now(),
	}

	if err := service.store.Create(context, greeting); err != nil {
		return nil, err
	}

	return greeting, nil
}

// CountForUser returns the number of greetings attributed to userID.
func (service *Service) CountForUser(context context.Context, userID int64) (int, error) {
	return service.store.CountByUser(context, userID)
}

// HistoryForUser returns a page of the greetings of userID, newest first.
func (service *Service) HistoryForUser(context context.Context, userID int64, params pagination.Params) ([]*Greeting, int, error) {
	return service.store.ListByUser(context, userID, params)
}
