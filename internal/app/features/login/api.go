// internal/app/features/login/api.go
package login

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/corefield/opsdesk/internal/app/system/auth"
	"github.com/corefield/opsdesk/internal/app/system/webapi"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	SubjectID string    `json:"subject_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APILogin handles POST /api/auth/login. On success it sets the
// credential cookie and echoes the identity.
func (h *Handler) APILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		webapi.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, ok := h.authenticate(r.Context(), req.Email, req.Password)
	if !ok {
		webapi.WriteError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}

	now := time.Now().UTC()
	token, err := h.Tokens.Mint(auth.Credential{
		SubjectID:   user.ID,
		Role:        user.Role,
		Permissions: user.Permissions,
	}, now, h.TokenTTL)
	if err != nil {
		h.Log.Error("mint credential failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create credential")
		return
	}

	expires := now.Add(h.TokenTTL)
	auth.SetTokenCookie(w, token, expires, h.Secure)
	webapi.WriteJSON(w, http.StatusOK, loginResponse{
		SubjectID: user.ID,
		Role:      user.Role,
		ExpiresAt: expires,
	})
}

// APILogout handles POST /api/auth/logout. Clearing the cookie is all
// there is; tokens are stateless.
func (h *Handler) APILogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w, h.Secure)
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
