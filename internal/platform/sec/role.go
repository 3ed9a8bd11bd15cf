// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// RoleGuest is held by the single shared anonymous account.
	RoleGuest UserRole = "GUEST"

	// RoleUser is the default role for registered accounts.
	RoleUser UserRole = "USER"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// Authority renders the role the way access rules name it, e.g. "ROLE_USER".
func (r UserRole) Authority() string {
	return "ROLE_" + string(r)
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

func (r UserRole) level() int {
	switch r {
	case RoleUser:
		return 20
	case RoleGuest:
		return 10
	default:
		return 0
	}
}
