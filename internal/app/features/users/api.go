// internal/app/features/users/api.go
package users

import (
	"context"
	"encoding/json"
	"net/http"

	userstore "github.com/corefield/opsdesk/internal/app/store/users"
	"github.com/corefield/opsdesk/internal/app/system/authz"
	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/webapi"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// APIList handles GET /api/users.
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list users failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load accounts")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.User{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"users":    rows,
		"has_next": hasNext,
	})
}

type userRequest struct {
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status"`
}

func (req userRequest) permissions() []string {
	var perms []string
	for _, p := range req.Permissions {
		if authz.IsKnown(p) {
			perms = append(perms, p)
		}
	}
	return perms
}

// APICreate handles POST /api/users.
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FullName == "" || req.Email == "" {
		webapi.WriteError(w, http.StatusBadRequest, "full_name and email are required")
		return
	}
	if len(req.Password) < 8 {
		webapi.WriteError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("api hash password failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create account")
		return
	}

	status := req.Status
	if status != "disabled" {
		status = "active"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Permissions:  req.permissions(),
		Status:       status,
	})
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusCreated, created)
	case userstore.ErrDuplicateEmail:
		webapi.WriteError(w, http.StatusConflict, "an account with this email already exists")
	default:
		h.Log.Error("api create user failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create account")
	}
}

// APIGet handles GET /api/users/{id}.
func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, u)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "account not found")
	default:
		h.Log.Error("api get user failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load account")
	}
}

// APIUpdate handles PUT /api/users/{id}. Email never changes; a
// non-empty password replaces the stored hash.
func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FullName == "" {
		webapi.WriteError(w, http.StatusBadRequest, "full_name is required")
		return
	}

	status := req.Status
	if status != "disabled" {
		status = "active"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateInfo(ctx, id, req.FullName, req.Role, status, req.permissions()); err != nil {
		h.Log.Error("api update user failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update account")
		return
	}

	if req.Password != "" {
		if len(req.Password) < 8 {
			webapi.WriteError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.Log.Error("api hash password failed", zap.Error(err))
			webapi.WriteError(w, http.StatusInternalServerError, "could not update account")
			return
		}
		if err := h.Store.SetPasswordHash(ctx, id, string(hash)); err != nil {
			h.Log.Error("api set password failed", zap.Error(err))
			webapi.WriteError(w, http.StatusInternalServerError, "could not update account")
			return
		}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// APIDelete handles DELETE /api/users/{id}.
func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete user failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete account")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusNotFound, "account not found")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
