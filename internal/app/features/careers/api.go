// internal/app/features/careers/api.go
package careers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corefield/opsdesk/internal/app/system/htmlsanitize"
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

func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, query.Get(r, "open") == "1", int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list careers failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load postings")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.Career{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"careers":  rows,
		"has_next": hasNext,
	})
}

func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var c models.Career
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Title == "" {
		webapi.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	c.Description = htmlsanitize.Sanitize(c.Description)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, c)
	if err != nil {
		h.Log.Error("api create career failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create posting")
		return
	}
	webapi.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid posting id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, c)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "posting not found")
	default:
		h.Log.Error("api get career failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load posting")
	}
}

func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid posting id")
		return
	}
	var c models.Career
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.Description = htmlsanitize.Sanitize(c.Description)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateInfo(ctx, id, c); err != nil {
		h.Log.Error("api update career failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update posting")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid posting id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete career failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete posting")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusNotFound, "posting not found")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
