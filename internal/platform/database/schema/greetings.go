// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the greeter database so that
// hand-written SQL refers to them through one definition.
package schema

// GreetingTable represents the 'greetings' table
type GreetingTable struct {
	Table       string
	ID          string
	Name        string
	RequestType string
	UserID      string
	CreatedAt   string
}

// Greeting is the schema definition for greetings
var Greeting = GreetingTable{
	Table:       "greetings",
	ID:          "id",
	Name:        "name",
	RequestType: "request_type",
	UserID:      "user_id",
	CreatedAt:   "created_at",
}

// Columns returns all standard column names
func (t GreetingTable) Columns() []string {
	return []string{t.ID, t.Name, t.RequestType, t.UserID, t.CreatedAt}
}
