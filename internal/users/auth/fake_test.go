// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/users/auth"
)

// fakeUsers is an in-memory [auth.UserRepository].
type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	users  []*auth.User
	err    error
}

func (repository *fakeUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.err != nil {
		return nil, repository.err
	}
	for _, user := range repository.users {
		if !user.IsGuest() && user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUsers) FindGuest(_ context.Context) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.err != nil {
		return nil, repository.err
	}
	for _, user := range repository.users {
		if user.IsGuest() {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUsers) Create(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.err != nil {
		return repository.err
	}
	for _, existing := range repository.users {
		if existing.IsGuest() && user.IsGuest() {
			return apperr.Conflict("User already exists")
		}
		if !existing.IsGuest() && !user.IsGuest() && existing.Username == user.Username {
			return apperr.Conflict("User already exists")
		}
	}

	repository.nextID++
	user.ID = repository.nextID
	user.CreatedAt = time.Now()
	stored := *user
	repository.users = append(repository.users, &stored)
	return nil
}

// delete removes a registered account, simulating an out-of-band deletion.
func (repository *fakeUsers) delete(username string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	kept := repository.users[:0]
	for _, user := range repository.users {
		if user.IsGuest() || user.Username != username {
			kept = append(kept, user)
		}
	}
	repository.users = kept
}
