// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/greeter/internal/platform/sec"
)

/*
TestPasswordHash verifies the bcrypt round trip and the empty-hash guard.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, sec.CheckPasswordHash("wrong", hash))
	assert.False(t, sec.CheckPasswordHash("", ""))
}

/*
TestGenerateSecureToken checks length and uniqueness of random tokens.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(16)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(16)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, 16)
	assert.NotEqual(t, first, second)
}

/*
TestSessionSigner_RoundTrip verifies that issued sessions verify and carry the identity.
*/
func TestSessionSigner_RoundTrip(t *testing.T) {
	signer := sec.NewSessionSigner("secret", "rm-key", "greeter", time.Hour)

	token, expiresAt, err := signer.Issue(3, "alice", sec.RoleUser, sec.MethodPassword)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"ROLE_USER"}, claims.Authorities())
	assert.Empty(t, claims.KeyHash)
	assert.NotEmpty(t, claims.ID)

	again, _, err := signer.Issue(3, "alice", sec.RoleUser, sec.MethodPassword)
	require.NoError(t, err)
	second, err := signer.Verify(again)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, second.ID)
}

/*
TestSessionSigner_UnknownRole verifies that a signed session with an unknown role is refused.
*/
func TestSessionSigner_UnknownRole(t *testing.T) {
	signer := sec.NewSessionSigner("secret", "k", "greeter", time.Hour)

	token, _, err := signer.Issue(1, "root", sec.UserRole("ADMIN"), sec.MethodPassword)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, sec.ErrMalformedSession)
	assert.False(t, sec.UserRole("ADMIN").Valid())
	assert.True(t, sec.RoleGuest.Valid())
}

/*
TestSessionSigner_Expired verifies that expired sessions are rejected.
*/
func TestSessionSigner_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := sec.NewSessionSigner("secret", "rm-key", "greeter", time.Minute).
		WithClock(func() time.Time { return issuedAt })

	token, _, err := signer.Issue(1, "alice", sec.RoleUser, sec.MethodPassword)
	require.NoError(t, err)

	signer.WithClock(func() time.Time { return issuedAt.Add(2 * time.Minute) })
	_, err = signer.Verify(token)
	assert.Error(t, err)
}

/*
TestSessionSigner_RememberMeKeyRotation verifies that remember-me sessions die with their key.
*/
func TestSessionSigner_RememberMeKeyRotation(t *testing.T) {
	original := sec.NewSessionSigner("secret", "key-v1", "greeter", time.Hour)
	rotated := sec.NewSessionSigner("secret", "key-v2", "greeter", time.Hour)

	token, _, err := original.Issue(1, "alice", sec.RoleUser, sec.MethodRememberMe)
	require.NoError(t, err)

	claims, err := original.Verify(token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.KeyHash)

	_, err = rotated.Verify(token)
	assert.ErrorIs(t, err, sec.ErrKeyMismatch)
}

/*
TestSessionSigner_WrongSecret verifies signature enforcement.
*/
func TestSessionSigner_WrongSecret(t *testing.T) {
	issuer := sec.NewSessionSigner("secret-a", "k", "greeter", time.Hour)
	verifier := sec.NewSessionSigner("secret-b", "k", "greeter", time.Hour)

	token, _, err := issuer.Issue(1, "alice", sec.RoleUser, sec.MethodPassword)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}
