// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/greeter/internal/platform/apperr"
)

// MemorySessionRepository keeps session records in process memory.
//
// Records do not survive a restart, so every cookie is refused after one.
// Used by tests and SESSION_STORE=memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemorySessionRepository creates an empty in-memory [SessionRepository].
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create implements [SessionRepository].
func (repository *MemorySessionRepository) Create(_ context.Context, session *Session) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.sessions[session.ID] = *session
	return nil
}

// FindByID implements [SessionRepository]. It returns a copy.
func (repository *MemorySessionRepository) FindByID(_ context.Context, sessionID string) (*Session, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	stored, exists := repository.sessions[sessionID]
	if !exists {
		return nil, apperr.NotFound(resourceSession)
	}

	return &stored, nil
}

// Revoke implements [SessionRepository].
func (repository *MemorySessionRepository) Revoke(_ context.Context, sessionID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if stored, exists := repository.sessions[sessionID]; exists && stored.RevokedAt == nil {
		revokedAt := repository.now()
		stored.RevokedAt = &revokedAt
		repository.sessions[sessionID] = stored
	}

	return nil
}

// RevokeAll implements [SessionRepository].
func (repository *MemorySessionRepository) RevokeAll(_ context.Context, userID int64) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	revokedAt := repository.now()
	for id, stored := range repository.sessions {
		if stored.UserID == userID && stored.RevokedAt == nil {
			stored.RevokedAt = &revokedAt
			repository.sessions[id] = stored
		}
	}

	return nil
}

// DeleteExpired implements [SessionRepository].
func (repository *MemorySessionRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var removed int64
	for id, stored := range repository.sessions {
		if stored.ExpiresAt.Before(before) {
			delete(repository.sessions, id)
			removed++
		}
	}

	return removed, nil
}
