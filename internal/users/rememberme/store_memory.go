// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rememberme

import (
	"context"
	"fmt"
	"sync"

	"github.com/taibuivan/greeter/internal/platform/apperr"
)

// MemoryTokenRepository keeps slots in process memory.
//
// Slots do not survive a restart. Used by tests and REMEMBER_ME_STORE=memory.
type MemoryTokenRepository struct {
	mu     sync.RWMutex
	logins map[string]PersistentLogin
}

// NewMemoryTokenRepository creates an empty in-memory [TokenRepository].
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{logins: make(map[string]PersistentLogin)}
}

// Save implements [TokenRepository].
func (repository *MemoryTokenRepository) Save(_ context.Context, login *PersistentLogin) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.logins[login.Series]; exists {
		return apperr.StorageFailure(fmt.Errorf("%w: %s", ErrSeriesExists, login.Series))
	}

	repository.logins[login.Series] = *login
	return nil
}

// Update implements [TokenRepository].
func (repository *MemoryTokenRepository) Update(_ context.Context, login *PersistentLogin) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, exists := repository.logins[login.Series]
	if !exists {
		return apperr.NotFound(resourcePersistentLogin)
	}

	stored.Token = login.Token
	stored.LastUsed = login.LastUsed
	repository.logins[login.Series] = stored

	return nil
}

// FindBySeries implements [TokenRepository]. It returns a copy.
func (repository *MemoryTokenRepository) FindBySeries(_ context.Context, series string) (*PersistentLogin, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	stored, exists := repository.logins[series]
	if !exists {
		return nil, apperr.NotFound(resourcePersistentLogin)
	}

	return &stored, nil
}

// FindAllByUsername implements [TokenRepository].
func (repository *MemoryTokenRepository) FindAllByUsername(_ context.Context, username string) ([]*PersistentLogin, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	logins := []*PersistentLogin{}
	for _, stored := range repository.logins {
		if stored.Username == username {
			login := stored
			logins = append(logins, &login)
		}
	}

	return logins, nil
}

// DeleteAll implements [TokenRepository].
func (repository *MemoryTokenRepository) DeleteAll(_ context.Context, logins []*PersistentLogin) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, login := range logins {
		delete(repository.logins, login.Series)
	}

	return nil
}
