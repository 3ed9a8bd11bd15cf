// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives: password hashing, random
// tokens and the signed session cookie.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain packages.
// Domain services consume it through small interfaces so tests can swap it.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/greeter/pkg/uuidv7"
)

// Authentication methods recorded in the session.
const (
	MethodPassword   = "password"
	MethodRememberMe = "remember-me"
)

var (
	// ErrKeyMismatch is returned when a remember-me session was minted under a different key.
	ErrKeyMismatch = errors.New("sec: remember-me key fingerprint mismatch")

	// ErrMalformedSession is returned for a well-signed token missing its id or carrying an unknown role.
	ErrMalformedSession = errors.New("sec: malformed session claims")
)

// SessionClaims is the payload of the session cookie.
//
// Custom claims are abbreviated to keep the cookie small. The registered 'jti'
// claim names the server-side session record.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID   int64  `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
	Method   string `json:"amr"`

	// KeyHash is present only on sessions created from a remember-me cookie.
	KeyHash string `json:"rmk,omitempty"`
}

// Authorities returns the granted authorities of the session.
func (claims *SessionClaims) Authorities() []string {
	return []string{UserRole(claims.Role).Authority()}
}

// SessionSigner mints and verifies HS256 session tokens.
type SessionSigner struct {
	secret        []byte
	rememberMeKey string
	issuer        string
	timeToLive    time.Duration
	now           func() time.Time
}

// NewSessionSigner creates a signer. rememberMeKey fingerprints sessions
// established from a persistent-login cookie.
func NewSessionSigner(secret, rememberMeKey, issuer string, timeToLive time.Duration) *SessionSigner {
	return &SessionSigner{
		secret:        []byte(secret),
		rememberMeKey: rememberMeKey,
		issuer:        issuer,
		timeToLive:    timeToLive,
		now:           time.Now,
	}
}

// WithClock replaces the signer's time source. Used by tests.
func (signer *SessionSigner) WithClock(now func() time.Time) *SessionSigner {
	signer.now = now
	return signer
}

// TTL returns the session lifetime.
func (signer *SessionSigner) TTL() time.Duration {
	return signer.timeToLive
}

// Issue signs a session token for the given identity.
func (signer *SessionSigner) Issue(userID int64, username string, role UserRole, method string) (string, time.Time, error) {
	sessionID, err := uuidv7.New()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to generate session id: %w", err)
	}

	currentTime := signer.now()
	expiresAt := currentTime.Add(signer.timeToLive)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   username,
			Issuer:    signer.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   userID,
		Username: username,
		Role:     string(role),
		Method:   method,
	}

	if method == MethodRememberMe {
		claims.KeyHash = KeyFingerprint(signer.rememberMeKey, username)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(signer.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign session: %w", err)
	}

	return signedToken, expiresAt, nil
}

// Verify checks the signature, issuer, expiry, session id, role and
// remember-me fingerprint. Revocation is the caller's concern.
func (signer *SessionSigner) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return signer.secret, nil
	},
		jwt.WithIssuer(signer.issuer),
		jwt.WithTimeFunc(signer.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid session: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid session claims")
	}

	if claims.ID == "" || !UserRole(claims.Role).Valid() {
		return nil, ErrMalformedSession
	}

	if claims.Method == MethodRememberMe &&
		!ConstantTimeEqual(claims.KeyHash, KeyFingerprint(signer.rememberMeKey, claims.Username)) {
		return nil, ErrKeyMismatch
	}

	return claims, nil
}
