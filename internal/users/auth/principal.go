// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// Principal is the read-only security view of a [User].
type Principal struct {
	username     string
	passwordHash string
	authorities  []string
}

// NewPrincipal maps user onto its security view.
func NewPrincipal(user *User) Principal {
	return Principal{
		username:     user.Username,
		passwordHash: user.PasswordHash,
		authorities:  []string{user.Role.Authority()},
	}
}

func (p Principal) Username() string      { return p.username }
func (p Principal) PasswordHash() string  { return p.passwordHash }
func (p Principal) Authorities() []string { return p.authorities }
