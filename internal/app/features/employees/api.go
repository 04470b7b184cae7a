// internal/app/features/employees/api.go
package employees

import (
	"context"
	"encoding/json"
	"net/http"

	employeestore "github.com/corefield/opsdesk/internal/app/store/employees"
	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/webapi"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// APIList handles GET /api/employees.
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, query.Get(r, "department"), int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list employees failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load employees")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.Employee{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"employees": rows,
		"has_next":  hasNext,
	})
}

// APICreate handles POST /api/employees.
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var emp models.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if emp.FullName == "" || emp.Email == "" {
		webapi.WriteError(w, http.StatusBadRequest, "full_name and email are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, emp)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusCreated, created)
	case employeestore.ErrDuplicateEmail:
		webapi.WriteError(w, http.StatusConflict, "an employee with this email already exists")
	default:
		h.Log.Error("api create employee failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create employee")
	}
}

// APIGet handles GET /api/employees/{id}.
func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	emp, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, emp)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "employee not found")
	default:
		h.Log.Error("api get employee failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load employee")
	}
}

// APIUpdate handles PUT /api/employees/{id}.
func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	var emp models.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.UpdateInfo(ctx, id, emp); err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case employeestore.ErrDuplicateEmail:
		webapi.WriteError(w, http.StatusConflict, "an employee with this email already exists")
	default:
		h.Log.Error("api update employee failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update employee")
	}
}

// APIDelete handles DELETE /api/employees/{id}.
func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete employee failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete employee")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusNotFound, "employee not found")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
