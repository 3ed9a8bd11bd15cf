// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// Greeting and session rows are keyed by UUIDv7 so that the primary key index
// grows at its right edge and ids sort by creation time.
package uuidv7

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces identifiers. Tests substitute a deterministic one.
type Generator func() (string, error)

// New generates a new UUIDv7 string.
func New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("uuidv7_generate_failed: %w", err)
	}
	return id.String(), nil
}
