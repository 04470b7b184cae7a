package testutil

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/corefield/opsdesk/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents credential data for testing HTTP handlers.
type TestUser struct {
	ID          string
	Role        string
	Permissions []string
}

// AdminUser returns a TestUser carrying the ADMIN override.
func AdminUser() TestUser {
	return TestUser{
		ID:          primitive.NewObjectID().Hex(),
		Role:        "admin",
		Permissions: []string{"ADMIN"},
	}
}

// UserWithPermissions returns a TestUser granted exactly the given
// permissions.
func UserWithPermissions(perms ...string) TestUser {
	return TestUser{
		ID:          primitive.NewObjectID().Hex(),
		Role:        "staff",
		Permissions: perms,
	}
}

// WithUser adds a verified credential to the request context for testing
// handlers behind the gate. This bypasses token verification entirely.
func WithUser(r *http.Request, user TestUser) *http.Request {
	cred := &auth.Credential{
		SubjectID:   user.ID,
		Role:        user.Role,
		Permissions: user.Permissions,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	return auth.WithCredential(r, cred)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a credential in
// context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}
