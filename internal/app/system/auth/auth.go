package auth

import (
	"context"
	"net/http"
	"time"
)

// CookieName is the credential carrier: a single named cookie holding the
// signed bearer token. Absence of the cookie means "unauthenticated".
const CookieName = "opsdesk_token"

// Credential is the verified identity extracted from the bearer token.
// It is read-only for the lifetime of a request; the gate attaches it to
// the request context on allow so downstream handlers never re-verify.
type Credential struct {
	SubjectID   string
	Role        string // display label only, never used for authorization
	Permissions []string
	ExpiresAt   time.Time
}

type ctxKey string

const credentialKey ctxKey = "credential"

// CurrentCredential returns the verified credential attached to the request
// by the gate, and whether one is present.
func CurrentCredential(r *http.Request) (*Credential, bool) {
	c, ok := r.Context().Value(credentialKey).(*Credential)
	return c, ok
}

// WithCredential returns a shallow copy of r carrying the credential in its
// context. The gate calls this on allow; tests use it to simulate an
// authenticated request without minting a token.
func WithCredential(r *http.Request, c *Credential) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), credentialKey, c))
}

// RawToken extracts the bearer token from the request's credential cookie.
// ok is false when the cookie is absent or empty.
func RawToken(r *http.Request) (raw string, ok bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// SetTokenCookie writes the credential cookie. Secure should be true in
// production so the token never travels over plain HTTP.
func SetTokenCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie expires the credential cookie (logout).
func ClearTokenCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
