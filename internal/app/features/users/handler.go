// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	userstore "github.com/corefield/opsdesk/internal/app/store/users"
	"github.com/corefield/opsdesk/internal/app/system/authz"
	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/viewdata"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Store  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Users   []models.User
	Range   paging.Range
	HasNext bool
}

type formData struct {
	viewdata.BaseVM
	User        models.User
	Permissions []string
	Error       string
	IsEdit      bool
}

type viewData struct {
	viewdata.BaseVM
	User models.User
}

// List handles GET /users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list users failed", err, "Could not load accounts.", "/")
		return
	}
	hasNext := paging.Trim(&rows)

	templates.Render(w, r, "users_list", listData{
		BaseVM:  viewdata.NewBaseVM(r, "Accounts", "/"),
		Users:   rows,
		Range:   paging.ComputeRange(start, len(rows)),
		HasNext: hasNext,
	})
}

// New handles GET /users/new.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "users_form", formData{
		BaseVM:      viewdata.NewBaseVM(r, "New account", "/users"),
		User:        models.User{Status: "active"},
		Permissions: authz.All,
	})
}

// Create handles POST /users/new.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/users")
		return
	}

	u := userFromForm(r)
	password := r.FormValue("password")
	switch {
	case u.FullName == "" || u.Email == "":
		h.renderFormWithError(w, r, u, "Name and email are required.", false)
		return
	case len(password) < 8:
		h.renderFormWithError(w, r, u, "Password must be at least 8 characters.", false)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Could not create the account.", "/users")
		return
	}
	u.PasswordHash = string(hash)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, u)
	switch err {
	case nil:
		http.Redirect(w, r, "/users/"+created.ID.Hex(), http.StatusSeeOther)
	case userstore.ErrDuplicateEmail:
		h.renderFormWithError(w, r, u, "An account with this email already exists.", false)
	default:
		h.ErrLog.LogServerError(w, r, "create user failed", err, "Could not create the account.", "/users")
	}
}

// View handles GET /users/{id}.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	u, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "users_view", viewData{
		BaseVM: viewdata.NewBaseVM(r, u.FullName, "/users"),
		User:   u,
	})
}

// Edit handles GET /users/{id}/edit.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	u, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "users_form", formData{
		BaseVM:      viewdata.NewBaseVM(r, "Edit "+u.FullName, "/users"),
		User:        u,
		Permissions: authz.All,
		IsEdit:      true,
	})
}

// Update handles POST /users/{id}/edit. A blank password leaves the
// current one in place. Changes to role or permissions take effect on
// the user's next login, when a fresh credential is minted.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid account.", "/users")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/users")
		return
	}

	u := userFromForm(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateInfo(ctx, id, u.FullName, u.Role, u.Status, u.Permissions); err != nil {
		h.ErrLog.LogServerError(w, r, "update user failed", err, "Could not save the account.", "/users")
		return
	}

	if password := r.FormValue("password"); password != "" {
		if len(password) < 8 {
			u.ID = id
			h.renderFormWithError(w, r, u, "Password must be at least 8 characters.", true)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "hash password failed", err, "Could not save the account.", "/users")
			return
		}
		if err := h.Store.SetPasswordHash(ctx, id, string(hash)); err != nil {
			h.ErrLog.LogServerError(w, r, "set password failed", err, "Could not save the account.", "/users")
			return
		}
	}
	http.Redirect(w, r, "/users/"+id.Hex(), http.StatusSeeOther)
}

// Delete handles POST /users/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid account.", "/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "delete user failed", err, "Could not delete the account.", "/users")
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid account.", "/users")
		return models.User{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return u, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That account does not exist.", "/users")
	default:
		h.ErrLog.LogServerError(w, r, "load user failed", err, "Could not load the account.", "/users")
	}
	return models.User{}, false
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, u models.User, msg string, isEdit bool) {
	title := "New account"
	if isEdit {
		title = "Edit " + u.FullName
	}
	templates.Render(w, r, "users_form", formData{
		BaseVM:      viewdata.NewBaseVM(r, title, "/users"),
		User:        u,
		Permissions: authz.All,
		Error:       msg,
		IsEdit:      isEdit,
	})
}

// userFromForm keeps only known permission names from the checkbox set.
func userFromForm(r *http.Request) models.User {
	var perms []string
	for _, p := range r.PostForm["permissions"] {
		if authz.IsKnown(p) {
			perms = append(perms, p)
		}
	}
	status := r.FormValue("status")
	if status != "disabled" {
		status = "active"
	}
	return models.User{
		FullName:    strings.TrimSpace(r.FormValue("full_name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Role:        strings.TrimSpace(r.FormValue("role")),
		Permissions: perms,
		Status:      status,
	}
}
