// internal/app/system/auth/tokens.go

// Package auth holds the credential type, its cookie carrier, and the
// TokenManager that mints and verifies the signed bearer token. The route
// gate only ever calls Verify; minting belongs to the login feature.
package auth

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential is the single verification failure. Structural
// problems, bad signatures, and expiry all collapse into it so a caller
// probing the gate learns nothing about which check failed.
var ErrInvalidCredential = errors.New("invalid or expired credential")

// tokenClaims is the JWT claims shape for the credential.
// sub carries the subject id; exp the expiry instant.
type tokenClaims struct {
	Role  string   `json:"role"`
	Perms []string `json:"perms"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies credentials with an HMAC secret.
//
// The secret lives behind an atomic pointer so a rotation is a single
// swap of an immutable value: concurrent verifications always observe one
// consistent secret, never a partial write.
type TokenManager struct {
	secret atomic.Pointer[[]byte]
}

// NewTokenManager creates a manager with the given signing secret.
func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is empty; provide 32+ random chars")
	}
	m := &TokenManager{}
	key := []byte(secret)
	m.secret.Store(&key)
	return m, nil
}

// Rotate atomically replaces the signing secret. Tokens minted under the
// previous secret stop verifying immediately.
func (m *TokenManager) Rotate(secret string) {
	key := []byte(secret)
	m.secret.Store(&key)
}

// Mint signs a credential token expiring at now+ttl. Used by the login
// flow; the gate never mints.
func (m *TokenManager) Mint(cred Credential, now time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		Role:  cred.Role,
		Perms: cred.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(*m.secret.Load())
}

// Verify checks structure, signature, and expiry of a raw token and
// returns the credential it carries. The same clock reading is used for
// every time comparison; expiry is inclusive (now == exp is expired).
// Any failure yields ErrInvalidCredential.
func (m *TokenManager) Verify(raw string, now time.Time) (*Credential, error) {
	secret := *m.secret.Load()

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var claims tokenClaims
	tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidCredential
	}
	// The parser already rejects expired tokens; this restates the
	// inclusive boundary so the contract does not depend on library leeway.
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidCredential
	}

	return &Credential{
		SubjectID:   claims.Subject,
		Role:        claims.Role,
		Permissions: claims.Perms,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
