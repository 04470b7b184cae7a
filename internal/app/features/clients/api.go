// internal/app/features/clients/api.go
package clients

import (
	"context"
	"encoding/json"
	"net/http"

	clientstore "github.com/corefield/opsdesk/internal/app/store/clients"
	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/webapi"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list clients failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load clients")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.Client{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"clients":  rows,
		"has_next": hasNext,
	})
}

func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var cl models.Client
	if err := json.NewDecoder(r.Body).Decode(&cl); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cl.Name == "" {
		webapi.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, cl)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusCreated, created)
	case clientstore.ErrDuplicateName:
		webapi.WriteError(w, http.StatusConflict, "a client with this name already exists")
	default:
		h.Log.Error("api create client failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create client")
	}
}

func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cl, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, cl)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "client not found")
	default:
		h.Log.Error("api get client failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load client")
	}
}

func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var cl models.Client
	if err := json.NewDecoder(r.Body).Decode(&cl); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.UpdateInfo(ctx, id, cl); err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case clientstore.ErrDuplicateName:
		webapi.WriteError(w, http.StatusConflict, "a client with this name already exists")
	default:
		h.Log.Error("api update client failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update client")
	}
}

func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete client failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete client")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusNotFound, "client not found")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
