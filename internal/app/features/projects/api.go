// internal/app/features/projects/api.go
package projects

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	projectstore "github.com/corefield/opsdesk/internal/app/store/projects"
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

// APIList handles GET /api/manage-projects.
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, query.Get(r, "status"), int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list projects failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load projects")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.Project{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"projects": rows,
		"has_next": hasNext,
	})
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// APICreate handles POST /api/manage-projects.
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		webapi.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	owner, ok := h.callerID(r)
	if !ok {
		webapi.WriteError(w, http.StatusBadRequest, "could not identify caller")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, models.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     owner,
	})
	if err != nil {
		h.Log.Error("api create project failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create project")
		return
	}
	webapi.WriteJSON(w, http.StatusCreated, created)
}

// APIGet handles GET /api/manage-projects/{id}.
func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, p)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "project not found")
	default:
		h.Log.Error("api get project failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load project")
	}
}

// APIUpdate handles PUT /api/manage-projects/{id}.
func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		webapi.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.UpdateInfo(ctx, id, req.Name, req.Description); err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case projectstore.ErrBadTransition:
		webapi.WriteError(w, http.StatusConflict, "submitted projects cannot be edited")
	default:
		h.Log.Error("api update project failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update project")
	}
}

// APISubmit handles POST /api/manage-projects/{id}/submit.
func (h *Handler) APISubmit(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.Submit(ctx, id); err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": models.ProjectSubmitted})
	case projectstore.ErrBadTransition:
		webapi.WriteError(w, http.StatusConflict, "only draft projects can be submitted")
	default:
		h.Log.Error("api submit project failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not submit project")
	}
}

// APIApprove handles POST /api/manage-projects/{id}/approve.
func (h *Handler) APIApprove(w http.ResponseWriter, r *http.Request) {
	h.apiDecide(w, r, true)
}

// APIReject handles POST /api/manage-projects/{id}/reject.
func (h *Handler) APIReject(w http.ResponseWriter, r *http.Request) {
	h.apiDecide(w, r, false)
}

func (h *Handler) apiDecide(w http.ResponseWriter, r *http.Request, approved bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	req := struct {
		Note string `json:"note"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	decider, ok := h.callerID(r)
	if !ok {
		webapi.WriteError(w, http.StatusBadRequest, "could not identify caller")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	status := models.ProjectRejected
	if approved {
		status = models.ProjectApproved
	}
	switch err := h.Store.Decide(ctx, id, approved, decider, req.Note); err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
	case projectstore.ErrBadTransition:
		webapi.WriteError(w, http.StatusConflict, "only submitted projects can be decided")
	default:
		h.Log.Error("api decide project failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not record decision")
	}
}

// APIDelete handles DELETE /api/manage-projects/{id}.
func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete project failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete project")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusConflict, "only draft or rejected projects can be deleted")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
