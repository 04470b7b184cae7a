// internal/app/features/pages/api.go
package pages

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pagestore "github.com/corefield/opsdesk/internal/app/store/pages"
	"github.com/corefield/opsdesk/internal/app/system/htmlsanitize"
	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/webapi"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// APIList handles GET /api/pages.
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list pages failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load pages")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.Page{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"pages":    rows,
		"has_next": hasNext,
	})
}

type pageRequest struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
}

// APICreate handles POST /api/pages.
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		webapi.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		webapi.WriteError(w, http.StatusBadRequest, "slug must be lowercase words separated by hyphens")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, models.Page{
		Slug:     req.Slug,
		Title:    req.Title,
		BodyHTML: htmlsanitize.Sanitize(req.BodyHTML),
	})
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusCreated, created)
	case pagestore.ErrDuplicateSlug:
		webapi.WriteError(w, http.StatusConflict, "a page with this slug already exists")
	default:
		h.Log.Error("api create page failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create page")
	}
}

// APIGet handles GET /api/pages/{id}.
func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, p)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "page not found")
	default:
		h.Log.Error("api get page failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load page")
	}
}

// APIUpdate handles PUT /api/pages/{id}. The slug is fixed at creation.
func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid page id")
		return
	}
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		webapi.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateContent(ctx, id, req.Title, htmlsanitize.Sanitize(req.BodyHTML)); err != nil {
		h.Log.Error("api update page failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update page")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// APIPublish handles POST /api/pages/{id}/publish. An empty body
// publishes; {"published": false} unpublishes.
func (h *Handler) APIPublish(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid page id")
		return
	}
	req := struct {
		Published *bool `json:"published"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	published := req.Published == nil || *req.Published

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.SetPublished(ctx, id, published); err != nil {
		h.Log.Error("api publish page failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update page")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]bool{"published": published})
}

// APIDelete handles DELETE /api/pages/{id}.
func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete page failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete page")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusNotFound, "page not found")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
