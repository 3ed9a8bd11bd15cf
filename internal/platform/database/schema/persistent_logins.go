// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// PersistentLoginTable represents the 'persistent_logins' table
type PersistentLoginTable struct {
	Table    string
	Series   string
	Username string
	Token    string
	LastUsed string
}

// PersistentLogin is the schema definition for persistent_logins
var PersistentLogin = PersistentLoginTable{
	Table:    "persistent_logins",
	Series:   "series",
	Username: "username",
	Token:    "token",
	LastUsed: "last_used",
}

// Columns returns all standard column names
func (t PersistentLoginTable) Columns() []string {
	return []string{t.Series, t.Username, t.Token, t.LastUsed}
}
