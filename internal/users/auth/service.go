// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/sec"
	"github.com/taibuivan/greeter/internal/platform/validate"
)

// Credential limits. bcrypt ignores input beyond 72 bytes.
const (
	usernameMinLength = 3
	usernameMaxLength = 64
	passwordMinLength = 8
	passwordMaxLength = 72
)

var (
	// ErrUsernameTaken is returned by Signup when the username is registered.
	ErrUsernameTaken = apperr.Conflict("Username is already taken")

	// ErrBadCredentials hides whether the username or the password was wrong.
	ErrBadCredentials = apperr.Unauthorized("Invalid username or password")
)

// Service implements account use cases.
type Service struct {
	userRepository UserRepository
}

// NewService constructs a new [Service].
func NewService(userRepository UserRepository) *Service {
	return &Service{userRepository: userRepository}
}

// # Registration

// SignupInput holds the data required to create an account.
type SignupInput struct {
	Username string
	Password string
}

/*
Signup validates, hashes and persists a new USER account.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *User: Created entity
  - error: VALIDATION_ERROR, ErrUsernameTaken or STORAGE_ERROR
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*User, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Username(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, usernameMinLength).
		MaxLen(FieldUsername, input.Username, usernameMaxLength).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, passwordMinLength).
		Custom(FieldPassword, len(input.Password) > passwordMaxLength, fmt.Sprintf("Maximum %d bytes", passwordMaxLength))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		Username:     input.Username,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// # Authentication

/*
Authenticate verifies a username and password pair.

Parameters:
  - context: context.Context
  - username: string
  - password: string

Returns:
  - *User: The authenticated account
  - error: ErrBadCredentials or STORAGE_ERROR
*/
func (service *Service) Authenticate(context context.Context, username, password string) (*User, error) {
	user, err := service.userRepository.FindByUsername(context, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrBadCredentials
	}

	return user, nil
}

// FindByUsername loads a registered account. NOT_FOUND is passed through.
func (service *Service) FindByUsername(context context.Context, username string) (*User, error) {
	return service.userRepository.FindByUsername(context, username)
}

// # Guest Bootstrap

/*
EnsureGuest returns the guest account, creating it on first start.

A concurrent creator losing the unique-index race reads the winner's row.

Parameters:
  - context: context.Context

Returns:
  - *User: The guest
  - error: STORAGE_ERROR
*/
func (service *Service) EnsureGuest(context context.Context) (*User, error) {
	guest, err := service.userRepository.FindGuest(context)
	if err == nil {
		return guest, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	guest = &User{Role: sec.RoleGuest}
	if err := service.userRepository.Create(context, guest); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return service.userRepository.FindGuest(context)
		}
		return nil, err
	}

	return guest, nil
}
