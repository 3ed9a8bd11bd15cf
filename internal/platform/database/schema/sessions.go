// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SessionTable represents the 'sessions' table
type SessionTable struct {
	Table     string
	ID        string
	UserID    string
	Method    string
	ExpiresAt string
	CreatedAt string
	RevokedAt string
}

// Session is the schema definition for sessions
var Session = SessionTable{
	Table:     "sessions",
	ID:        "id",
	UserID:    "user_id",
	Method:    "method",
	ExpiresAt: "expires_at",
	CreatedAt: "created_at",
	RevokedAt: "revoked_at",
}

// Columns returns all standard column names
func (t SessionTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Method, t.ExpiresAt, t.CreatedAt, t.RevokedAt}
}
